package main

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"

	"complaintdesk/config"
	"complaintdesk/logging"
	"complaintdesk/models"
	"complaintdesk/notification"
	"complaintdesk/repository"
	"complaintdesk/routes"
	"complaintdesk/schema"
	"complaintdesk/service"
	"complaintdesk/worker"
)

const defaultSLAIntervalSec = 7200

func main() {
	// Load .env file
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

	// Initialize database connection (UTC for consistent timestamps)
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
	sugar.Info("database connection established")

	schema.InitializeDatabase(db, sugar)

	// Initialize repositories
	complaintRepo := repository.NewComplaintRepository(db)
	userRepo := repository.NewUserRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	actionRepo := repository.NewActionRepository(db)
	branchRepo := repository.NewBranchRepository(db)
	lobRepo := repository.NewLineOfBusinessRepository(db)
	statusRepo := repository.NewStatusRepository(db)
	outboxRepo := repository.NewOutboxRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)

	if err := statusRepo.EnsureDefaults(); err != nil {
		sugar.Fatalw("failed to seed complaint statuses", "error", err)
	}

	// Initialize services
	userService := service.NewUserService(userRepo, []byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTLHours, sugar)
	dispatcher := service.NewAssignmentService(
		complaintRepo, userRepo, notificationRepo, actionRepo, branchRepo, lobRepo, outboxRepo, sugar)
	complaintService := service.NewComplaintService(
		complaintRepo, userRepo, notificationRepo, actionRepo, branchRepo, lobRepo, outboxRepo, dispatcher, sugar)
	slaService := service.NewSLAService(complaintRepo, userRepo, notificationRepo, outboxRepo, sugar)

	mailerConfig := models.DefaultMailerConfig()
	if cfg.Email.SendTimeoutSec > 0 {
		mailerConfig.SendTimeout = time.Duration(cfg.Email.SendTimeoutSec) * time.Second
	}

	var sender notification.Sender
	if cfg.Email.SendGridAPIKey != "" {
		sender = notification.NewSendGridSender(cfg.Email.SendGridAPIKey, cfg.Email.FromEmail, cfg.Email.FromName, sugar)
		sugar.Info("email delivery via SendGrid")
	} else {
		sender = notification.NewLogSender(sugar)
		sugar.Warn("SENDGRID_API_KEY not set, emails will be logged only")
	}
	mailerService := service.NewMailerService(outboxRepo, sender, mailerConfig, sugar)

	// Background workers
	mailWorker := worker.NewMailWorker(mailerService, mailerConfig.WorkerInterval, sugar)
	mailWorker.Start()
	defer mailWorker.Stop()

	if cfg.SLA.WorkerEnabled {
		intervalSec := cfg.SLA.WorkerIntervalSeconds
		if intervalSec <= 0 {
			intervalSec = defaultSLAIntervalSec
		}
		slaWorker := worker.NewSLAWorker(slaService, time.Duration(intervalSec)*time.Second, sugar)
		slaWorker.Start()
		defer slaWorker.Stop()
	} else {
		sugar.Info("in-process SLA worker disabled, expecting external cron trigger")
	}

	// Setup routes
	router := routes.SetupRoutes(&routes.Deps{
		UserService:      userService,
		ComplaintService: complaintService,
		Dispatcher:       dispatcher,
		SLAService:       slaService,
		ComplaintRepo:    complaintRepo,
		ActionRepo:       actionRepo,
		NotificationRepo: notificationRepo,
		AttachmentRepo:   attachmentRepo,
		BranchRepo:       branchRepo,
		LOBRepo:          lobRepo,
		StatusRepo:       statusRepo,
		JWTSecret:        []byte(cfg.Auth.JWTSecret),
		CronSecret:       cfg.Auth.CronSecret,
		UploadBasePath:   cfg.Server.UploadBasePath,
		Log:              sugar,
	})

	// Add CORS middleware
	corsHandler := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "3600")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	sugar.Infow("server starting", "addr", addr)
	sugar.Fatal(http.ListenAndServe(addr, corsHandler(router)))
}
