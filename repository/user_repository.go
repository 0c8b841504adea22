package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"complaintdesk/models"
)

// UserRepository handles database operations for users
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `user_id, name, email, password_hash, role, branch_id, line_of_business_id, created_at`

func scanUser(scanner interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	var role string
	err := scanner.Scan(
		&u.UserID, &u.Name, &u.Email, &u.PasswordHash, &role,
		&u.BranchID, &u.LineOfBusinessID, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.Role = models.Role(role)
	return &u, nil
}

// CreateUser creates a new user
func (r *UserRepository) CreateUser(user *models.User) error {
	query := `
		INSERT INTO users (name, email, password_hash, role, branch_id, line_of_business_id)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.Exec(query,
		user.Name, user.Email, user.PasswordHash, string(user.Role),
		user.BranchID, user.LineOfBusinessID,
	)
	if err != nil {
		if strings.Contains(err.Error(), "Duplicate entry") {
			return fmt.Errorf("user %s: %w", user.Email, models.ErrDuplicateEmail)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	userID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get user ID: %w", err)
	}
	user.UserID = userID
	return nil
}

// GetUserByID retrieves a user by id
func (r *UserRepository) GetUserByID(userID int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = ?`
	user, err := scanUser(r.db.QueryRow(query, userID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %d: %w", userID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email
func (r *UserRepository) GetUserByEmail(email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	user, err := scanUser(r.db.QueryRow(query, email))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %s: %w", email, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

// ListUsers returns all users ordered by id
func (r *UserRepository) ListUsers() ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY user_id`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

// GetAdmins returns all ADMIN-role users
func (r *UserRepository) GetAdmins() ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE role = 'ADMIN' ORDER BY user_id`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query admins: %w", err)
	}
	defer rows.Close()

	var admins []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan admin: %w", err)
		}
		admins = append(admins, *user)
	}
	return admins, rows.Err()
}

// GetUsersByBranch returns all users in a branch ordered by id
func (r *UserRepository) GetUsersByBranch(branchID int64) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE branch_id = ? ORDER BY user_id`
	rows, err := r.db.Query(query, branchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query branch users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan branch user: %w", err)
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

// GetAssignmentCandidates returns AGENT-role users in the given branch and
// line of business together with their active (PENDING or IN_PROGRESS)
// complaint counts, ordered by active count ascending with user id as the
// deterministic tie-break.
func (r *UserRepository) GetAssignmentCandidates(branchID, lineOfBusinessID int64) ([]models.CandidateLoad, error) {
	query := `
		SELECT u.user_id, u.name, u.email, u.password_hash, u.role,
		       u.branch_id, u.line_of_business_id, u.created_at,
		       COALESCE(load.active_count, 0)
		FROM users u
		LEFT JOIN (
			SELECT c.assigned_to_id AS user_id, COUNT(*) AS active_count
			FROM complaints c
			JOIN complaint_statuses s ON s.status_id = c.status_id
			WHERE s.name IN ('PENDING', 'IN_PROGRESS') AND c.assigned_to_id IS NOT NULL
			GROUP BY c.assigned_to_id
		) load ON load.user_id = u.user_id
		WHERE u.role = 'AGENT' AND u.branch_id = ? AND u.line_of_business_id = ?
		ORDER BY COALESCE(load.active_count, 0) ASC, u.user_id ASC
	`
	rows, err := r.db.Query(query, branchID, lineOfBusinessID)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignment candidates: %w", err)
	}
	defer rows.Close()

	var candidates []models.CandidateLoad
	for rows.Next() {
		var c models.CandidateLoad
		var role string
		err := rows.Scan(
			&c.User.UserID, &c.User.Name, &c.User.Email, &c.User.PasswordHash, &role,
			&c.User.BranchID, &c.User.LineOfBusinessID, &c.User.CreatedAt,
			&c.ActiveCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		c.User.Role = models.Role(role)
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// UpdateUser overwrites the mutable fields of a user
func (r *UserRepository) UpdateUser(user *models.User) error {
	query := `
		UPDATE users
		SET name = ?, email = ?, password_hash = ?, role = ?, branch_id = ?, line_of_business_id = ?
		WHERE user_id = ?
	`
	result, err := r.db.Exec(query,
		user.Name, user.Email, user.PasswordHash, string(user.Role),
		user.BranchID, user.LineOfBusinessID, user.UserID,
	)
	if err != nil {
		if strings.Contains(err.Error(), "Duplicate entry") {
			return fmt.Errorf("user %s: %w", user.Email, models.ErrDuplicateEmail)
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		// UPDATE with identical values also reports 0; verify existence
		if _, getErr := r.GetUserByID(user.UserID); getErr != nil {
			return getErr
		}
	}
	return nil
}

// DeleteUser removes a user by id
func (r *UserRepository) DeleteUser(userID int64) error {
	result, err := r.db.Exec(`DELETE FROM users WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("user %d: %w", userID, models.ErrNotFound)
	}
	return nil
}
