package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Dias221467/friendgraph/internal/config"
	"github.com/Dias221467/friendgraph/internal/database"
	"github.com/Dias221467/friendgraph/internal/handlers"
	"github.com/Dias221467/friendgraph/internal/repository"
	"github.com/Dias221467/friendgraph/internal/services"
	"github.com/Dias221467/friendgraph/pkg/logger"
	"github.com/Dias221467/friendgraph/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Log.Fatalf("Configuration error: %v", err)
	}

	logger.InitLogger(cfg.LogLevel)
	logger.Log.Info("Logger initialized")

	// --- Store ---
	store, closeStore, err := openStore(cfg)
	if err != nil {
		logger.Log.Fatalf("Database connection error: %v", err)
	}
	defer closeStore()

	// --- Services ---
	userService := services.NewUserService(store)
	friendService := services.NewFriendService(store)

	// --- Handlers ---
	userHandler := handlers.NewUserHandler(userService)
	friendHandler := handlers.NewFriendHandler(friendService)

	router := handlers.NewRouter(userHandler, friendHandler)
	router.Use(middleware.LoggingMiddleware)
	if cfg.RateLimitRPS > 0 {
		limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, 5*time.Minute)
		router.Use(limiter.Middleware)
	}
	logRoutes(router)

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Handler(router),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	go func() {
		logger.Log.Infof("Server running on port %s (store: %s)", cfg.Port, cfg.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatalf("Server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Errorf("Graceful shutdown failed: %v", err)
	}
	logger.Log.Info("Server stopped")
}

func openStore(cfg *config.Config) (repository.UserStore, func(), error) {
	if cfg.StoreBackend == config.BackendMemory {
		logger.Log.Warn("Using in-memory store, data is lost on restart")
		return repository.NewMemoryUserRepository(), func() {}, nil
	}

	db, err := database.ConnectDB(cfg)
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.MongoTimeout)
	defer cancel()
	if err := database.EnsureIndexes(ctx, db); err != nil {
		disconnect(db)
		return nil, nil, err
	}

	return repository.NewUserRepository(db, cfg.UseTransactions), func() { disconnect(db) }, nil
}

func disconnect(db *mongo.Database) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.Client().Disconnect(ctx); err != nil {
		logger.Log.Errorf("Failed to disconnect from MongoDB: %v", err)
	}
}

func logRoutes(router *mux.Router) {
	_ = router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		path, err := route.GetPathTemplate()
		if err != nil {
			return nil
		}
		methods, _ := route.GetMethods()
		logger.Log.Infof("%-6s %s", strings.Join(methods, ","), path)
		return nil
	})
}
