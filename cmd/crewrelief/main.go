package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/crewrelief/crewrelief/internal/application/account"
	"github.com/crewrelief/crewrelief/internal/application/matching"
	"github.com/crewrelief/crewrelief/internal/application/ports"
	"github.com/crewrelief/crewrelief/internal/application/profile"
	"github.com/crewrelief/crewrelief/internal/application/status"
	"github.com/crewrelief/crewrelief/internal/config"
	"github.com/crewrelief/crewrelief/internal/domain"
	infraauth "github.com/crewrelief/crewrelief/internal/infrastructure/auth"
	"github.com/crewrelief/crewrelief/internal/infrastructure/cache"
	httprouter "github.com/crewrelief/crewrelief/internal/infrastructure/http"
	"github.com/crewrelief/crewrelief/internal/infrastructure/http/handlers"
	"github.com/crewrelief/crewrelief/internal/infrastructure/http/middleware"
	"github.com/crewrelief/crewrelief/internal/infrastructure/identity"
	"github.com/crewrelief/crewrelief/internal/infrastructure/lockout"
	"github.com/crewrelief/crewrelief/internal/infrastructure/persistence/memory"
	"github.com/crewrelief/crewrelief/internal/infrastructure/persistence/postgres"
	"github.com/crewrelief/crewrelief/internal/infrastructure/persistence/repository"
	"github.com/crewrelief/crewrelief/internal/infrastructure/queue"
	"github.com/crewrelief/crewrelief/internal/infrastructure/security"
	"github.com/crewrelief/crewrelief/internal/infrastructure/storage"
	"github.com/crewrelief/crewrelief/internal/infrastructure/webhook"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	ctx := context.Background()
	var store ports.DocumentStore
	if cfg.Database.URL == "" {
		log.Warn().Msg("DATABASE_URL not set; using the in-memory store, data is lost on restart")
		memStore, err := memory.NewDocumentStore()
		if err != nil {
			log.Fatal().Err(err).Msg("create memory store")
		}
		store = memStore
	} else {
		pool, err := pgxpool.New(ctx, cfg.Database.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("connect to database")
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			log.Fatal().Err(err).Msg("ping database")
		}
		if err := postgres.RunMigrations(pool, log); err != nil {
			log.Fatal().Err(err).Msg("run migrations")
		}
		store = postgres.NewDocumentStore(pool)
	}

	var (
		redisClient *redis.Client
		redisOpt    *redis.Options
	)
	if cfg.Redis.URL != "" {
		redisOpt, err = redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("parse REDIS_URL")
		}
		redisClient = redis.NewClient(redisOpt)
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis ping failed; continuing without redis")
			redisClient = nil
		}
	}

	var profiles ports.ProfileRepository = repository.NewProfileRepository(store)
	assignments := repository.NewAssignmentRepository(store)
	var revocations ports.RevocationStore = cache.NewMemoryRevocationStore()
	if redisClient != nil {
		profiles = cache.NewProfileCache(profiles, redisClient, cfg.Cache.ProfileTTL, log)
		revocations = cache.NewRedisRevocationStore(redisClient)
	}
	metrics := middleware.PromMatchMetrics{}
	cleanup := status.NewCleanupDuplicates(profiles, assignments, log)
	reconcile := func(ctx context.Context, userID domain.UserID) error {
		_, err := cleanup.Reconcile(ctx, userID)
		return err
	}

	var emitter ports.WebhookEmitter = webhook.NewNoopEmitter()
	if cfg.Webhook.URL != "" {
		var opts []webhook.HTTPEmitterOption
		if cfg.Webhook.Secret != "" {
			opts = append(opts, webhook.WithSigningSecret(cfg.Webhook.Secret))
		}
		emitter = webhook.NewHTTPEmitter(cfg.Webhook.URL, opts...)
	}

	var taskEnqueuer ports.TaskEnqueuer
	var asynqWorker *queue.Worker
	if redisClient != nil {
		asynqOpt := asynq.RedisClientOpt{Addr: redisOpt.Addr, Password: redisOpt.Password, DB: redisOpt.DB}
		asynqEnq := queue.NewAsynqEnqueuer(asynqOpt, log)
		defer asynqEnq.Close()
		taskEnqueuer = asynqEnq
		asynqWorker = queue.NewWorker(asynqOpt, cfg.Redis.WorkerConcurrency, reconcile, emitter, log)
		go func() {
			if err := asynqWorker.Run(); err != nil {
				log.Warn().Err(err).Msg("asynq worker stopped")
			}
		}()
	} else {
		taskEnqueuer = queue.NewInlineEnqueuer(reconcile, emitter, log)
	}

	hasher := security.NewArgon2Hasher(security.Argon2Params{
		Memory:      cfg.Argon2.Memory,
		Iterations:  cfg.Argon2.Iterations,
		Parallelism: cfg.Argon2.Parallelism,
		SaltLength:  16,
		KeyLength:   32,
	})

	privateKey, ephemeral, err := infraauth.LoadOrGenerateKey(cfg.JWT.PrivateKeyPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load JWT private key")
	}
	if ephemeral {
		log.Warn().Msg("JWT_PRIVATE_KEY_PATH not set; using an ephemeral signing key, tokens die with the process")
	}
	issuer := infraauth.NewTokenIssuer(privateKey, cfg.JWT.Issuer, cfg.JWT.Audience)
	validators := infraauth.ChainValidator{issuer}
	if cfg.OIDC.IssuerURL != "" {
		oidcValidator, err := infraauth.NewOIDCValidator(ctx, cfg.OIDC.IssuerURL, cfg.OIDC.ClientID)
		if err != nil {
			log.Fatal().Err(err).Str("issuer", cfg.OIDC.IssuerURL).Msg("discover OIDC issuer")
		}
		validators = append(validators, oidcValidator)
	}

	idp := identity.NewLocalProvider(repository.NewAccountRepository(store), repository.NewPasswordResetRepository(store),
		hasher, taskEnqueuer, cfg.PasswordReset.BaseURL, cfg.PasswordReset.Expiry, log)
	loginLockout := lockout.NewSignInLockout(cfg.Lockout.MaxAttempts, cfg.Lockout.CooldownSeconds)
	tracker := matching.NewTracker()
	ensureProfile := account.NewEnsureProfile(profiles, log)

	authHandler := handlers.NewAuthHandler(
		account.NewSignUp(idp, profiles, issuer, cfg.JWT.AccessExpiry, log),
		account.NewSignIn(idp, ensureProfile, loginLockout, taskEnqueuer, issuer, cfg.JWT.AccessExpiry, log),
		account.NewSignOut(revocations),
		account.NewForgotPassword(idp, log),
		account.NewResetPassword(idp),
		taskEnqueuer, log)
	profileHandler := handlers.NewProfileHandler(
		profile.NewGetProfile(profiles),
		profile.NewUpdateProfile(profiles, assignments, log),
		profile.NewViewProfile(profiles, assignments),
		account.NewDeleteAccount(idp, profiles, assignments, storage.NewNoopPhotoStore(log), revocations, tracker, log),
		taskEnqueuer, log)
	assignmentsHandler := handlers.NewAssignmentsHandler(
		profile.NewGetAssignments(profiles, assignments),
		status.NewChangeStatus(profiles, assignments, metrics, log),
		taskEnqueuer, log)
	matchesHandler := handlers.NewMatchesHandler(
		matching.NewFindMatches(profiles, assignments, tracker, metrics, log, cfg.Matching.FanOutLimit, cfg.Matching.WindowDays),
		log)

	ipLimit, err := middleware.NewIPRateLimiter(cfg.RateLimit.RatePerIP)
	if err != nil {
		log.Fatal().Err(err).Msg("create IP rate limiter")
	}
	userLimit, err := middleware.NewUserRateLimiter(cfg.RateLimit.RatePerUser)
	if err != nil {
		log.Fatal().Err(err).Msg("create user rate limiter")
	}
	secureMiddleware := middleware.NewSecure(middleware.SecureOptions(middleware.SecureConfig{
		IsDevelopment: cfg.Secure.IsDevelopment,
		HSTSSeconds:   cfg.Secure.HSTSSeconds,
		AllowedHosts:  cfg.Secure.AllowedHosts,
	}))

	// A nil *redis.Client must not reach the health check as a non-nil interface.
	health := handlers.NewHealthHandler(store, nil)
	if redisClient != nil {
		health = handlers.NewHealthHandler(store, redisClient)
	}

	router := httprouter.NewRouter(httprouter.RouterConfig{
		AuthHandler:        authHandler,
		HealthHandler:      health,
		ProfileHandler:     profileHandler,
		AssignmentsHandler: assignmentsHandler,
		MatchesHandler:     matchesHandler,
		AdminHandler:       handlers.NewAdminHandler(cleanup, log),
		RequireJWT:         middleware.NewAuthValidator(validators, revocations, ensureProfile, log).Handler,
		RequireAdmin:       middleware.RequireAdminSecret(cfg.Admin.Secret),
		Log:                log,
		Secure:             secureMiddleware,
		CORS:               middleware.CORS(cfg.Server.CORSOrigins, nil, nil),
		IPRateLimit:        ipLimit,
		UserRateLimit:      userLimit,
		APIVersion:         cfg.Server.APIVersion,
		Metrics:            true,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Bool("redis", redisClient != nil).Bool("postgres", cfg.Database.URL != "").
			Msg("server starting")
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
	if asynqWorker != nil {
		asynqWorker.Shutdown()
	}
	log.Info().Msg("server stopped")
}
