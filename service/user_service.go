package service

import (
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"complaintdesk/models"
	"complaintdesk/utils"
)

// UserDirectory is the full persistence contract for user management; it
// extends the read-side UserStore with mutations.
type UserDirectory interface {
	UserStore
	CreateUser(u *models.User) error
	GetUserByEmail(email string) (*models.User, error)
	ListUsers() ([]models.User, error)
	UpdateUser(u *models.User) error
	DeleteUser(userID int64) error
}

// UserService implements authentication and user administration.
type UserService struct {
	users       UserDirectory
	jwtSecret   []byte
	jwtTTLHours int
	log         *zap.SugaredLogger
}

// NewUserService creates a new user service
func NewUserService(users UserDirectory, jwtSecret []byte, jwtTTLHours int, log *zap.SugaredLogger) *UserService {
	return &UserService{users: users, jwtSecret: jwtSecret, jwtTTLHours: jwtTTLHours, log: log}
}

// Login verifies credentials and issues a signed token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *UserService) Login(email, password string) (*models.LoginResponse, error) {
	user, err := s.users.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := utils.CheckPassword(password, user.PasswordHash); err != nil {
		return nil, models.ErrInvalidCredentials
	}

	token, err := utils.GenerateJWT(user.UserID, string(user.Role), s.jwtSecret, s.jwtTTLHours)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.log.Infow("user logged in", "user", user.UserID, "role", user.Role)
	return &models.LoginResponse{Token: token, User: *user}, nil
}

// Create registers a new user with a hashed password. Admin only.
func (s *UserService) Create(actor Actor, req *models.CreateUserRequest) (*models.User, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("user creation requires admin: %w", models.ErrForbidden)
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("name, email and password are required: %w", models.ErrValidation)
	}
	role := models.Role(req.Role)
	if role != models.RoleAdmin && role != models.RoleAgent {
		return nil, fmt.Errorf("unknown role %q: %w", req.Role, models.ErrValidation)
	}
	if role == models.RoleAgent && (req.BranchID == nil || req.LineOfBusinessID == nil) {
		return nil, fmt.Errorf("agents need a branch and line of business: %w", models.ErrValidation)
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
	}
	if req.BranchID != nil {
		user.BranchID = sql.NullInt64{Int64: *req.BranchID, Valid: true}
	}
	if req.LineOfBusinessID != nil {
		user.LineOfBusinessID = sql.NullInt64{Int64: *req.LineOfBusinessID, Valid: true}
	}

	if err := s.users.CreateUser(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Get returns a user by id
func (s *UserService) Get(userID int64) (*models.User, error) {
	return s.users.GetUserByID(userID)
}

// List returns all users
func (s *UserService) List() ([]models.User, error) {
	return s.users.ListUsers()
}

// Update applies partial updates to a user. Admin only.
func (s *UserService) Update(actor Actor, userID int64, req *models.UpdateUserRequest) (*models.User, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("user update requires admin: %w", models.ErrForbidden)
	}

	user, err := s.users.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Password != nil {
		hash, err := utils.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = hash
	}
	if req.Role != nil {
		role := models.Role(*req.Role)
		if role != models.RoleAdmin && role != models.RoleAgent {
			return nil, fmt.Errorf("unknown role %q: %w", *req.Role, models.ErrValidation)
		}
		user.Role = role
	}
	if req.BranchID != nil {
		user.BranchID = sql.NullInt64{Int64: *req.BranchID, Valid: true}
	}
	if req.LineOfBusinessID != nil {
		user.LineOfBusinessID = sql.NullInt64{Int64: *req.LineOfBusinessID, Valid: true}
	}

	if err := s.users.UpdateUser(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes a user. Admin only; self-deletion is rejected.
func (s *UserService) Delete(actor Actor, userID int64) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("user deletion requires admin: %w", models.ErrForbidden)
	}
	if actor.UserID == userID {
		return fmt.Errorf("cannot delete own account: %w", models.ErrForbidden)
	}
	return s.users.DeleteUser(userID)
}
