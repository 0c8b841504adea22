package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"complaintdesk/handler"
	"complaintdesk/metrics"
	"complaintdesk/middleware"
	"complaintdesk/repository"
	"complaintdesk/service"
)

// Deps bundles the services and repositories the router wires into handlers.
type Deps struct {
	UserService      *service.UserService
	ComplaintService *service.ComplaintService
	Dispatcher       *service.AssignmentService
	SLAService       *service.SLAService
	ComplaintRepo    *repository.ComplaintRepository
	ActionRepo       *repository.ActionRepository
	NotificationRepo *repository.NotificationRepository
	AttachmentRepo   *repository.AttachmentRepository
	BranchRepo       *repository.BranchRepository
	LOBRepo          *repository.LineOfBusinessRepository
	StatusRepo       *repository.StatusRepository
	JWTSecret        []byte
	CronSecret       string
	UploadBasePath   string
	Log              *zap.SugaredLogger
}

// SetupRoutes configures all API routes
func SetupRoutes(deps *Deps) *mux.Router {
	router := mux.NewRouter()
	router.Use(metrics.Middleware)

	authHandler := handler.NewAuthHandler(deps.UserService)
	complaintHandler := handler.NewComplaintHandler(deps.ComplaintService, deps.Dispatcher, deps.ActionRepo)
	notificationHandler := handler.NewNotificationHandler(deps.NotificationRepo)
	userHandler := handler.NewUserHandler(deps.UserService)
	lookupHandler := handler.NewLookupHandler(deps.BranchRepo, deps.LOBRepo, deps.StatusRepo)
	slaHandler := handler.NewSLAHandler(deps.SLAService)
	dashboardHandler := handler.NewDashboardHandler(deps.ComplaintRepo)
	attachmentHandler := handler.NewAttachmentHandler(deps.ComplaintService, deps.AttachmentRepo, deps.UploadBasePath, deps.Log)

	authMiddleware := middleware.NewAuthMiddleware(deps.UserService, deps.JWTSecret, deps.CronSecret)
	auth := func(h http.HandlerFunc) http.Handler {
		return authMiddleware.RequireAuth(h)
	}
	admin := func(h http.HandlerFunc) http.Handler {
		return authMiddleware.RequireAuth(authMiddleware.RequireAdmin(h))
	}
	cron := func(h http.HandlerFunc) http.Handler {
		return authMiddleware.RequireCron(h)
	}

	// Health and metrics
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")
	router.Handle("/metrics", metrics.Handler()).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()

	// Auth
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Complaints
	complaints := api.PathPrefix("/complaints").Subrouter()
	complaints.Handle("", auth(complaintHandler.ListComplaints)).Methods("GET")
	complaints.Handle("", auth(complaintHandler.CreateComplaint)).Methods("POST")
	complaints.Handle("/{id}", auth(complaintHandler.GetComplaint)).Methods("GET")
	complaints.Handle("/{id}", auth(complaintHandler.UpdateComplaint)).Methods("PUT")
	complaints.Handle("/{id}/status", auth(complaintHandler.SetStatus)).Methods("POST")
	complaints.Handle("/{id}/assign", auth(complaintHandler.AssignComplaint)).Methods("POST")
	complaints.Handle("/{id}/actions", auth(complaintHandler.ListActions)).Methods("GET")
	complaints.Handle("/{id}/actions", auth(complaintHandler.AddAction)).Methods("POST")
	complaints.Handle("/{id}/attachments", auth(attachmentHandler.ListAttachments)).Methods("GET")
	complaints.Handle("/{id}/attachments", auth(attachmentHandler.UploadAttachment)).Methods("POST")

	// Attachments
	api.Handle("/attachments/{id}", auth(attachmentHandler.DownloadAttachment)).Methods("GET")
	api.Handle("/attachments/{id}", auth(attachmentHandler.DeleteAttachment)).Methods("DELETE")

	// Notifications
	notifications := api.PathPrefix("/notifications").Subrouter()
	notifications.Handle("", auth(notificationHandler.ListNotifications)).Methods("GET")
	notifications.Handle("/{id}/read", auth(notificationHandler.MarkRead)).Methods("POST")
	notifications.Handle("/{id}", auth(notificationHandler.DeleteNotification)).Methods("DELETE")

	// Users (admin except listing and self-lookup)
	users := api.PathPrefix("/users").Subrouter()
	users.Handle("", auth(userHandler.ListUsers)).Methods("GET")
	users.Handle("", admin(userHandler.CreateUser)).Methods("POST")
	users.Handle("/{id}", auth(userHandler.GetUser)).Methods("GET")
	users.Handle("/{id}", admin(userHandler.UpdateUser)).Methods("PUT")
	users.Handle("/{id}", admin(userHandler.DeleteUser)).Methods("DELETE")

	// Lookups
	api.Handle("/branches", auth(lookupHandler.ListBranches)).Methods("GET")
	api.Handle("/branches", admin(lookupHandler.CreateBranch)).Methods("POST")
	api.Handle("/branches/{id}", admin(lookupHandler.UpdateBranch)).Methods("PUT")
	api.Handle("/branches/{id}", admin(lookupHandler.DeleteBranch)).Methods("DELETE")
	api.Handle("/lines-of-business", auth(lookupHandler.ListLinesOfBusiness)).Methods("GET")
	api.Handle("/lines-of-business", admin(lookupHandler.CreateLineOfBusiness)).Methods("POST")
	api.Handle("/lines-of-business/{id}", admin(lookupHandler.UpdateLineOfBusiness)).Methods("PUT")
	api.Handle("/lines-of-business/{id}", admin(lookupHandler.DeleteLineOfBusiness)).Methods("DELETE")
	api.Handle("/statuses", auth(lookupHandler.ListStatuses)).Methods("GET")

	// Dashboard
	api.Handle("/dashboard/stats", admin(dashboardHandler.GetStats)).Methods("GET")

	// SLA sweeps (admin-triggered) and the external cron trigger
	api.Handle("/sla/check-reminders", admin(slaHandler.RunReminder1H)).Methods("POST")
	api.Handle("/sla/check-reminders-2h", admin(slaHandler.RunReminder2H)).Methods("POST")
	api.Handle("/sla/check-breaches", admin(slaHandler.RunBreachCheck)).Methods("POST")
	api.Handle("/cron/run", cron(slaHandler.RunAll)).Methods("POST")

	return router
}
