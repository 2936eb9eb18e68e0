package main

import (
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Benru1503/kazzaz-hours-log/config"
	"github.com/Benru1503/kazzaz-hours-log/database"
	"github.com/Benru1503/kazzaz-hours-log/handlers"
	"github.com/Benru1503/kazzaz-hours-log/middleware"
	"github.com/Benru1503/kazzaz-hours-log/models"
	"github.com/Benru1503/kazzaz-hours-log/shiftlogic"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	// Initialize JWT secret
	middleware.SetJWTSecret(cfg.JWTSecret)

	// Initialize database
	if err := database.Init(cfg.DatabaseURL, logger); err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}

	service := shiftlogic.NewService(database.NewStore(database.GetDB()))

	// Define template functions
	funcMap := template.FuncMap{
		"minutesToHours": func(p *float64) float64 {
			if p == nil {
				return 0
			}
			return *p / 60
		},
	}

	// Parse templates - each page template paired with base
	templates := make(map[string]*template.Template)
	pages := []string{
		"login", "register", "change-password", "dashboard",
		"checkin", "log-form", "students", "review", "invites",
	}
	for _, page := range pages {
		templates[page] = template.Must(template.New("").Funcs(funcMap).ParseFiles(
			"templates/base.html",
			"templates/"+page+".html",
		))
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(cfg, templates, logger)
	shiftHandler := handlers.NewShiftHandler(cfg, templates, service, logger)
	adminHandler := handlers.NewAdminHandler(cfg, templates, service, logger)

	// Setup router
	router := chi.NewRouter()
	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)

	// Public routes
	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	})
	router.Get("/login", authHandler.LoginPage)
	router.Post("/login", authHandler.Login)
	router.Get("/register", authHandler.RegisterPage)
	router.Post("/register", authHandler.Register)

	// Protected routes
	router.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware)

		// Logout (doesn't need password change check)
		r.Get("/logout", authHandler.Logout)

		// Password change routes (accessible even when password change required)
		r.Get("/change-password", authHandler.ChangePasswordPage)
		r.Post("/change-password", authHandler.ChangePassword)

		// Routes that require password to be changed first
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePasswordChange)

			// Dashboard and hour tracking (all authenticated users)
			r.Get("/dashboard", shiftHandler.Dashboard)
			r.Get("/shifts/checkin", shiftHandler.CheckInPage)
			r.Post("/shifts/checkin", shiftHandler.CheckIn)
			r.Post("/shifts/checkout", shiftHandler.CheckOut)
			r.Get("/logs/new", shiftHandler.NewLogPage)
			r.Post("/logs/new", shiftHandler.SubmitLog)

			// Admin only routes
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleAdmin))
				r.Get("/admin/students", adminHandler.StudentsPage)
				r.Get("/admin/review", adminHandler.ReviewPage)
				r.Post("/admin/review/approve", adminHandler.ApproveLog)
				r.Post("/admin/review/reject", adminHandler.RejectLog)
				r.Get("/admin/export/csv", adminHandler.ExportCSV)
				r.Get("/invites", authHandler.InvitesPage)
				r.Post("/invites", authHandler.CreateInvite)
			})
		})
	})

	logger.Info("server starting", zap.String("port", cfg.ServerPort))
	if err := http.ListenAndServe(":"+cfg.ServerPort, router); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
