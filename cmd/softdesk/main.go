package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/softdeskhq/softdesk/internal/application/auth"
	"github.com/softdeskhq/softdesk/internal/application/authz"
	"github.com/softdeskhq/softdesk/internal/application/contributors"
	"github.com/softdeskhq/softdesk/internal/application/issues"
	"github.com/softdeskhq/softdesk/internal/application/ports"
	"github.com/softdeskhq/softdesk/internal/application/resolver"
	"github.com/softdeskhq/softdesk/internal/application/users"
	"github.com/softdeskhq/softdesk/internal/config"
	infraauth "github.com/softdeskhq/softdesk/internal/infrastructure/auth"
	httprouter "github.com/softdeskhq/softdesk/internal/infrastructure/http"
	"github.com/softdeskhq/softdesk/internal/infrastructure/http/handlers"
	"github.com/softdeskhq/softdesk/internal/infrastructure/http/middleware"
	"github.com/softdeskhq/softdesk/internal/infrastructure/persistence/memory"
	"github.com/softdeskhq/softdesk/internal/infrastructure/persistence/postgres"
	"github.com/softdeskhq/softdesk/internal/infrastructure/security"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}

	ctx := context.Background()

	var (
		pool            *pgxpool.Pool
		userRepo        ports.UserRepository
		projectRepo     ports.ProjectRepository
		contributorRepo ports.ContributorRepository
		issueRepo       ports.IssueRepository
		commentRepo     ports.CommentRepository
	)
	switch cfg.Database.Storage {
	case "memory":
		store := memory.New()
		userRepo = store.Users()
		projectRepo = store.Projects()
		contributorRepo = store.Contributors()
		issueRepo = store.Issues()
		commentRepo = store.Comments()
		log.Warn().Msg("using in-memory storage; data is lost on restart")
	default:
		pool, err = pgxpool.New(ctx, cfg.Database.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("connect to database")
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			log.Fatal().Err(err).Msg("ping database")
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("run migrations")
		}
		userRepo = postgres.NewUserRepository(pool)
		projectRepo = postgres.NewProjectRepository(pool)
		contributorRepo = postgres.NewContributorRepository(pool)
		issueRepo = postgres.NewIssueRepository(pool)
		commentRepo = postgres.NewCommentRepository(pool)
	}

	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		opt, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("parse REDIS_URL")
		}
		redisClient = redis.NewClient(opt)
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis ping failed; continuing without redis")
			redisClient = nil
		}
	}

	hasher := security.NewArgon2Hasher(security.DefaultArgon2Params())
	issuer := infraauth.NewTokenIssuer([]byte(cfg.JWT.Secret), cfg.JWT.Issuer)

	registry := contributors.NewRegistry(contributorRepo, redisClient, log)
	engine := authz.NewEngine(registry)
	resolve := resolver.New(projectRepo, issueRepo, commentRepo)

	registerUC := users.NewRegister(userRepo, hasher)
	loginUC := auth.NewLogin(userRepo, hasher, issuer, cfg.JWT.AccessExpiry, cfg.JWT.RefreshExpiry)
	refreshUC := auth.NewRefresh(userRepo, issuer, cfg.JWT.AccessExpiry)
	createIssueUC := issues.NewCreate(issueRepo, registry)

	validator := middleware.NewAuthValidator(issuer, userRepo)
	secureMiddleware := middleware.SecureHeaders(cfg.Secure.IsDevelopment)

	router := httprouter.NewRouter(httprouter.RouterConfig{
		AuthHandler:     handlers.NewAuthHandler(loginUC, refreshUC, log),
		HealthHandler:   handlers.NewHealthHandler(pool, redisClient),
		UsersHandler:    handlers.NewUsersHandler(userRepo, registerUC, engine, log),
		ProjectsHandler: handlers.NewProjectsHandler(projectRepo, issueRepo, userRepo, registry, engine, resolve, log),
		IssuesHandler:   handlers.NewIssuesHandler(issueRepo, commentRepo, createIssueUC, engine, resolve, log),
		CommentsHandler: handlers.NewCommentsHandler(commentRepo, engine, resolve, log),
		RequireJWT:      validator.Handler,
		OptionalJWT:     validator.OptionalHandler,
		Log:             log,
		Secure:          secureMiddleware,
		Metrics:         true,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	log.Info().Msg("server stopped")
}
