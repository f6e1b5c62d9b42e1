// Package server wires the repositories, services and handlers together and
// owns the HTTP server lifecycle.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/nutrition-tracker/internal/auth"
	"github.com/sakif/nutrition-tracker/internal/config"
	"github.com/sakif/nutrition-tracker/internal/fatsecret"
	"github.com/sakif/nutrition-tracker/internal/handler"
	"github.com/sakif/nutrition-tracker/internal/middleware"
	sqliteRepo "github.com/sakif/nutrition-tracker/internal/repository/sqlite"
	"github.com/sakif/nutrition-tracker/internal/service"
)

const shutdownTimeout = 30 * time.Second

// Deps are the long-lived resources the server routes requests to. The
// server closes DB and Sessions on shutdown.
type Deps struct {
	DB        *sqliteRepo.DB
	Sessions  auth.Store
	Foods     handler.FoodSearcher
	Passwords *auth.PasswordService
}

type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	deps   Deps
}

// New opens the database and session store described by cfg and builds
// the router.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	if cfg.DBPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	sessions, err := openSessionStore(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	return newServer(cfg, Deps{
		DB:        db,
		Sessions:  sessions,
		Foods:     fatsecret.NewClient(cfg.FatSecret, logger),
		Passwords: auth.NewPasswordService(),
	}, logger), nil
}

func openSessionStore(cfg config.Config) (auth.Store, error) {
	switch cfg.SessionStore {
	case config.SessionStoreRedis:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		store, err := auth.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("opening redis session store: %w", err)
		}
		return store, nil
	default:
		return auth.NewMemoryStore(), nil
	}
}

func newServer(cfg config.Config, deps Deps, logger *slog.Logger) *Server {
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		deps:   deps,
	}
	s.setupRoutes()
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes builds the service and handler graph and registers the API.
//
// MIDDLEWARE ORDER:
//  1. RequestID  assigns the id the logger prints
//  2. RealIP     rewrites RemoteAddr from X-Forwarded-For / X-Real-IP
//  3. Logger     logs every request, including ones Recoverer turns into 500
//  4. Recoverer  catches handler panics
//
// Auth is per route, not global: RequireAuth on the protected group,
// OptionalAuth on the plan listing, nothing on the public reads.
//
// ROUTES:
//	GET  /healthz
//	POST /api/register, /api/login, /api/logout
//	GET  /api/auth/check
//	PUT  /api/user
//	GET  /api/user, /api/user/metrics                      (auth)
//	GET  /api/daily_food, POST /api/daily_food (auth)
//	GET  /api/daily_food/me                                (auth)
//	GET  /api/meals/{id}
//	GET  /api/meal_plans                                   (optional auth)
//	GET  /api/meal_plan/{id}
//	POST /api/meal_plan, /api/meal_plan/{id}/food, /api/meal_plan/{id}/meals (auth)
//	GET  /api/search-food, /api/food-detail
func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	authService := service.NewAuthService(s.deps.DB, s.deps.Sessions, s.deps.Passwords, s.logger)
	userService := service.NewUserService(s.deps.DB, s.logger)
	foodService := service.NewFoodService(s.deps.DB, s.logger)
	planService := service.NewMealPlanService(s.deps.DB, foodService, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.config.CookieSecure, s.logger)
	userHandler := handler.NewUserHandler(userService, s.logger)
	foodHandler := handler.NewFoodHandler(foodService, s.logger)
	planHandler := handler.NewMealPlanHandler(planService, s.logger)
	searchHandler := handler.NewSearchHandler(s.deps.Foods, s.logger)
	healthHandler := handler.NewHealthHandler(s.deps.DB, s.logger)

	s.router.Get("/healthz", healthHandler.HandleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/logout", authHandler.HandleLogout)
		r.Get("/auth/check", authHandler.HandleCheck)

		// The profile update identifies the user by the id in the body.
		r.Put("/user", userHandler.HandleUpdate)

		r.Get("/daily_food", foodHandler.HandleList)
		r.Get("/meals/{id}", foodHandler.HandleMealItems)
		r.Get("/meal_plan/{id}", planHandler.HandleGet)
		r.Get("/search-food", searchHandler.HandleSearch)
		r.Get("/food-detail", searchHandler.HandleDetail)

		r.With(auth.OptionalAuth(authService, s.logger)).Get("/meal_plans", planHandler.HandleList)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(authService, s.logger))

			r.Get("/user", userHandler.HandleMe)
			r.Get("/user/metrics", userHandler.HandleMetrics)
			r.Post("/daily_food", foodHandler.HandleLog)
			r.Get("/daily_food/me", foodHandler.HandleMine)
			r.Post("/meal_plan", planHandler.HandleCreate)
			r.Post("/meal_plan/{id}/food", planHandler.HandleAddFood)
			r.Post("/meal_plan/{id}/meals", planHandler.HandleAddMeal)
		})
	})
}

// Start serves until SIGINT or SIGTERM, then drains in-flight requests for
// up to 30 seconds and releases the database and session store.
func (s *Server) Start() error {
	defer s.close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
			slog.String("session_store", s.config.SessionStore),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}

func (s *Server) close() {
	if err := s.deps.Sessions.Close(); err != nil {
		s.logger.Warn("closing session store", slog.String("error", err.Error()))
	}
	if err := s.deps.DB.Close(); err != nil {
		s.logger.Warn("closing database", slog.String("error", err.Error()))
	}
}
