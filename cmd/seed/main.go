// Command seed provisions a development database with an admin account,
// sample branches, lines of business and agents. Safe to re-run: existing
// rows are left alone.
package main

import (
	"database/sql"
	"errors"
	"fmt"
	"log"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"complaintdesk/config"
	"complaintdesk/logging"
	"complaintdesk/models"
	"complaintdesk/repository"
	"complaintdesk/schema"
	"complaintdesk/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	cfg := config.LoadConfig()

	logger, err := logging.NewLogger(cfg.Log.Env, cfg.Log.Level)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DBName,
	)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		sugar.Fatalw("failed to open database connection", "error", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		sugar.Fatalw("failed to ping database", "error", err)
	}

	schema.InitializeDatabase(db, sugar)

	statusRepo := repository.NewStatusRepository(db)
	branchRepo := repository.NewBranchRepository(db)
	lobRepo := repository.NewLineOfBusinessRepository(db)
	userRepo := repository.NewUserRepository(db)

	if err := statusRepo.EnsureDefaults(); err != nil {
		sugar.Fatalw("failed to seed statuses", "error", err)
	}

	branches := map[string]int64{}
	for _, b := range []models.Branch{
		{Name: "Head Office", Description: sql.NullString{String: "Main branch", Valid: true}},
		{Name: "North Branch", Description: sql.NullString{String: "Northern region branch", Valid: true}},
	} {
		branch := b
		if err := branchRepo.CreateBranch(&branch); err != nil {
			sugar.Infow("branch already present", "name", branch.Name)
			existing, ferr := findBranch(branchRepo, branch.Name)
			if ferr != nil {
				sugar.Fatalw("failed to look up branch", "name", branch.Name, "error", ferr)
			}
			branches[branch.Name] = existing
			continue
		}
		branches[branch.Name] = branch.BranchID
		sugar.Infow("branch created", "name", branch.Name)
	}

	lobs := map[string]int64{}
	for _, l := range []models.LineOfBusiness{
		{Name: "Claims", Description: sql.NullString{String: "Claims department", Valid: true}},
		{Name: "IT", Description: sql.NullString{String: "Information Technology department", Valid: true}},
		{Name: "HR", Description: sql.NullString{String: "Human Resources department", Valid: true}},
	} {
		lob := l
		if err := lobRepo.CreateLineOfBusiness(&lob); err != nil {
			sugar.Infow("line of business already present", "name", lob.Name)
			existing, ferr := findLOB(lobRepo, lob.Name)
			if ferr != nil {
				sugar.Fatalw("failed to look up line of business", "name", lob.Name, "error", ferr)
			}
			lobs[lob.Name] = existing
			continue
		}
		lobs[lob.Name] = lob.LineOfBusinessID
		sugar.Infow("line of business created", "name", lob.Name)
	}

	seedUser(userRepo, sugar, "admin@example.com", "Admin User", "admin123", models.RoleAdmin, 0, 0)
	seedUser(userRepo, sugar, "agent1@example.com", "Claims Agent", "agent123", models.RoleAgent,
		branches["Head Office"], lobs["Claims"])
	seedUser(userRepo, sugar, "agent2@example.com", "IT Agent", "agent123", models.RoleAgent,
		branches["North Branch"], lobs["IT"])

	sugar.Info("seed complete")
}

func seedUser(repo *repository.UserRepository, sugar *zap.SugaredLogger,
	email, name, password string, role models.Role, branchID, lobID int64) {
	hash, err := utils.HashPassword(password)
	if err != nil {
		sugar.Fatalw("failed to hash password", "email", email, "error", err)
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if branchID != 0 {
		user.BranchID = sql.NullInt64{Int64: branchID, Valid: true}
	}
	if lobID != 0 {
		user.LineOfBusinessID = sql.NullInt64{Int64: lobID, Valid: true}
	}

	if err := repo.CreateUser(user); err != nil {
		if errors.Is(err, models.ErrDuplicateEmail) {
			sugar.Infow("user already present", "email", email)
			return
		}
		sugar.Fatalw("failed to create user", "email", email, "error", err)
	}
	sugar.Infow("user created", "email", email, "role", role)
}

func findBranch(repo *repository.BranchRepository, name string) (int64, error) {
	all, err := repo.ListBranches()
	if err != nil {
		return 0, err
	}
	for _, b := range all {
		if b.Name == name {
			return b.BranchID, nil
		}
	}
	return 0, models.ErrNotFound
}

func findLOB(repo *repository.LineOfBusinessRepository, name string) (int64, error) {
	all, err := repo.ListLinesOfBusiness()
	if err != nil {
		return 0, err
	}
	for _, l := range all {
		if l.Name == name {
			return l.LineOfBusinessID, nil
		}
	}
	return 0, models.ErrNotFound
}
