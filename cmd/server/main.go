package main

import (
	"context"
	"errors"
	"fmt"
	"linklyst/internal/auth"
	"linklyst/internal/cache"
	"linklyst/internal/config"
	"linklyst/internal/data"
	"linklyst/internal/handler"
	"linklyst/internal/logger"
	"linklyst/internal/middleware"
	"linklyst/internal/service"
	"linklyst/internal/view"
	"linklyst/web"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/mysqlstore"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	_ "github.com/mattn/go-sqlite3"
)

func main() {
	// --- Configuration Loading ---
	cfg, err := config.LoadConfig()
	if err != nil {
		// Use fmt.Printf here because the logger is not yet initialized.
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// --- Logger Initialization ---
	log := logger.New(cfg.Log)

	// --- Database Initialization and Migration ---
	if cfg.DB.Driver == "mysql" {
		log.Info("Applying database migrations...")
		if err := data.ApplyMigrations(cfg.DB.DSN, "migrations"); err != nil {
			log.Fatal(err, "Failed to apply migrations")
		}
		log.Info("Migrations applied successfully.")
	}

	log.Info("Connecting to the database...")
	db, err := data.NewDB(cfg.DB.Driver, cfg.DB.DSN)
	if err != nil {
		log.Fatal(err, "Failed to connect to database")
	}
	defer db.Close()
	log.Info("Database connection successful.")

	// --- Session Management Setup ---
	sessionManager := scs.New()
	if cfg.DB.Driver == "sqlite3" {
		sessionManager.Store = sqlite3store.New(db.DB)
	} else {
		sessionManager.Store = mysqlstore.New(db.DB)
	}
	sessionManager.Lifetime = time.Duration(cfg.Session.Lifetime) * time.Hour
	sessionManager.Cookie.Persist = true
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode
	sessionManager.Cookie.Secure = cfg.Server.TLS.Enabled

	// --- Authentication and Authorization Setup ---
	log.Info("Initializing authentication and authorization...")
	authenticator, err := auth.NewAuthenticator(&cfg.OIDC)
	if err != nil {
		log.Fatal(err, "Failed to initialize authenticator")
	}
	enforcer, err := auth.NewEnforcer(cfg.DB.Driver, cfg.DB.DSN, "auth_model.conf")
	if err != nil {
		log.Fatal(err, "Failed to initialize enforcer")
	}
	auth.SeedDefaultPolicies(enforcer, log)
	log.Info("Auth components initialized and policies seeded.")

	// --- View Template Initialization ---
	log.Info("Initializing view templates...")
	viewService, err := view.New(web.TemplateFS)
	if err != nil {
		log.Fatal(err, "Failed to initialize view templates")
	}
	log.Info("View templates initialized.")

	// --- Cache Initialization ---
	log.Info("Initializing SQLite payload cache...")
	payloadCache, err := cache.New(cfg.Cache)
	if err != nil {
		log.Fatal(err, "Failed to initialize cache")
	}
	defer payloadCache.Close()
	log.Info("Cache initialized.")

	// --- Dependency Injection and Handler Initialization ---
	// Initialize the application layers, injecting dependencies from top to bottom.
	userRepository := data.NewUserRepository(db)
	profileRepository := data.NewProfileRepository(db)
	categoryRepository := data.NewCategoryRepository(db)
	subcategoryRepository := data.NewSubcategoryRepository(db)
	linkRepository := data.NewLinkRepository(db)
	clickRepository := data.NewClickRepository(db)

	identityService := service.NewIdentityService(userRepository, profileRepository, cfg.Trial.Days, log)
	hierarchyService := service.NewHierarchyService(categoryRepository, subcategoryRepository, linkRepository, log)
	clickService := service.NewClickService(userRepository, categoryRepository, subcategoryRepository, linkRepository, clickRepository, log)
	publicService := service.NewPublicService(userRepository, profileRepository, categoryRepository, subcategoryRepository, linkRepository, payloadCache, cfg.Cache.TTL, log)

	publicHandler := handler.NewPublicHandler(publicService, clickService, sessionManager, viewService, log)
	authHandler := handler.NewAuthHandler(identityService, authenticator, sessionManager, viewService, log)
	dashboardHandler := handler.NewDashboardHandler(hierarchyService, clickService, identityService, publicService, sessionManager, viewService, log, cfg.Site.BaseURL)
	categoryHandler := handler.NewCategoryHandler(hierarchyService, publicService, sessionManager, viewService, log)
	linkHandler := handler.NewLinkHandler(hierarchyService, publicService, sessionManager, viewService, log)

	authzMiddleware := middleware.Authorizer(enforcer, sessionManager, identityService, log)
	errorMiddleware := middleware.Error(log, viewService)

	// --- Router Setup ---
	// The router is the central hub that directs incoming requests to the correct handlers.
	router := handler.NewRouter(
		publicHandler,
		authHandler,
		dashboardHandler,
		categoryHandler,
		linkHandler,
		authzMiddleware,
		errorMiddleware,
		sessionManager,
		cfg.Server.RequestTimeout,
	)

	// --- Server Initialization and Graceful Shutdown ---
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}
	go func() {
		if cfg.Server.TLS.Enabled {
			log.Info(fmt.Sprintf("Starting HTTPS server on %s", server.Addr))
			if err := server.ListenAndServeTLS(cfg.Server.TLS.CertFile, cfg.Server.TLS.KeyFile); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal(err, "Could not start HTTPS server")
			}
		} else {
			log.Info(fmt.Sprintf("Starting HTTP server on %s", server.Addr))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal(err, "Could not start HTTP server")
			}
		}
	}()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Warn("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal(err, "Server forced to shutdown")
	}
	log.Info("Server exiting")
}
