package service

import (
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"complaintdesk/models"
	"complaintdesk/utils"
)

func newUserService(f *fakeStore) *UserService {
	return NewUserService(f, []byte("test-secret"), 24, zap.NewNop().Sugar())
}

func int64Ptr(v int64) *int64 { return &v }

func strPtr(s string) *string { return &s }

func TestLoginIssuesToken(t *testing.T) {
	f := newFakeStore(testClock)
	svc := newUserService(f)

	hash, err := utils.HashPassword("hunter2")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	u := f.addUser(1, "admin", models.RoleAdmin, 0, 0)
	u.PasswordHash = hash

	resp, err := svc.Login("admin@example.com", "hunter2")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("expected a non-empty token")
	}
	if resp.User.UserID != 1 {
		t.Fatalf("logged in as user %d, want 1", resp.User.UserID)
	}

	token, err := jwt.Parse(resp.Token, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("issued token does not verify: %v", err)
	}
	claims := token.Claims.(jwt.MapClaims)
	if claims["user_id"].(float64) != 1 || claims["role"] != string(models.RoleAdmin) {
		t.Fatalf("claims = %+v, want user 1 with ADMIN role", claims)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newFakeStore(testClock)
	svc := newUserService(f)

	hash, _ := utils.HashPassword("hunter2")
	u := f.addUser(1, "admin", models.RoleAdmin, 0, 0)
	u.PasswordHash = hash

	if _, err := svc.Login("admin@example.com", "wrong"); !errors.Is(err, models.ErrInvalidCredentials) {
		t.Fatalf("wrong password: got %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login("nobody@example.com", "hunter2"); !errors.Is(err, models.ErrInvalidCredentials) {
		t.Fatalf("unknown email: got %v, want ErrInvalidCredentials", err)
	}
}

func TestCreateUserRequiresAdmin(t *testing.T) {
	f := newFakeStore(testClock)
	svc := newUserService(f)

	agent := Actor{UserID: 10, Name: "agent", Role: models.RoleAgent}
	_, err := svc.Create(agent, &models.CreateUserRequest{
		Name: "x", Email: "x@example.com", Password: "pw", Role: "AGENT",
		BranchID: int64Ptr(1), LineOfBusinessID: int64Ptr(1),
	})
	if !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("got %v, want ErrForbidden", err)
	}
}

func TestCreateUserValidation(t *testing.T) {
	f := newFakeStore(testClock)
	svc := newUserService(f)
	admin := Actor{UserID: 1, Name: "admin", Role: models.RoleAdmin}

	cases := []struct {
		name string
		req  models.CreateUserRequest
	}{
		{"missing fields", models.CreateUserRequest{Name: "x", Role: "AGENT"}},
		{"unknown role", models.CreateUserRequest{Name: "x", Email: "x@example.com", Password: "pw", Role: "SUPERVISOR"}},
		{"agent without branch", models.CreateUserRequest{Name: "x", Email: "x@example.com", Password: "pw", Role: "AGENT"}},
	}
	for _, tc := range cases {
		if _, err := svc.Create(admin, &tc.req); !errors.Is(err, models.ErrValidation) {
			t.Errorf("%s: got %v, want ErrValidation", tc.name, err)
		}
	}
}

func TestCreateUserHashesPassword(t *testing.T) {
	f := newFakeStore(testClock)
	svc := newUserService(f)
	admin := Actor{UserID: 1, Name: "admin", Role: models.RoleAdmin}

	user, err := svc.Create(admin, &models.CreateUserRequest{
		Name: "Claims Agent", Email: "claims@example.com", Password: "agentpw", Role: "AGENT",
		BranchID: int64Ptr(2), LineOfBusinessID: int64Ptr(3),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if user.PasswordHash == "agentpw" {
		t.Fatal("password stored in the clear")
	}
	if err := utils.CheckPassword("agentpw", user.PasswordHash); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
	if !user.BranchID.Valid || user.BranchID.Int64 != 2 {
		t.Fatalf("branch = %+v, want 2", user.BranchID)
	}

	_, err = svc.Create(admin, &models.CreateUserRequest{
		Name: "Dup", Email: "claims@example.com", Password: "pw", Role: "AGENT",
		BranchID: int64Ptr(2), LineOfBusinessID: int64Ptr(3),
	})
	if !errors.Is(err, models.ErrDuplicateEmail) {
		t.Fatalf("duplicate email: got %v, want ErrDuplicateEmail", err)
	}
}

func TestUpdateUserPartial(t *testing.T) {
	f := newFakeStore(testClock)
	svc := newUserService(f)
	admin := Actor{UserID: 1, Name: "admin", Role: models.RoleAdmin}
	f.addUser(10, "agent-a", models.RoleAgent, 1, 1)

	updated, err := svc.Update(admin, 10, &models.UpdateUserRequest{Name: strPtr("Renamed")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "Renamed" {
		t.Fatalf("name = %q, want Renamed", updated.Name)
	}
	if updated.Email != "agent-a@example.com" {
		t.Fatalf("email changed unexpectedly: %q", updated.Email)
	}

	if _, err := svc.Update(admin, 10, &models.UpdateUserRequest{Role: strPtr("SUPERVISOR")}); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("bad role: got %v, want ErrValidation", err)
	}
}

func TestDeleteUserGuards(t *testing.T) {
	f := newFakeStore(testClock)
	svc := newUserService(f)
	admin := Actor{UserID: 1, Name: "admin", Role: models.RoleAdmin}
	f.addUser(1, "admin", models.RoleAdmin, 0, 0)
	f.addUser(10, "agent-a", models.RoleAgent, 1, 1)

	if err := svc.Delete(admin, 1); !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("self-deletion: got %v, want ErrForbidden", err)
	}
	if err := svc.Delete(Actor{UserID: 10, Role: models.RoleAgent}, 1); !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("non-admin: got %v, want ErrForbidden", err)
	}
	if err := svc.Delete(admin, 10); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(10); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("deleted user still readable: %v", err)
	}
}
