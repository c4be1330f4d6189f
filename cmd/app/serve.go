package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"cledumemoire/internal/config"
	"cledumemoire/internal/domain/ports/adapter"
	aiAdapters "cledumemoire/internal/infra/adapters/ai"
	"cledumemoire/internal/infra/adapters/pdf"
	"cledumemoire/internal/infra/adapters/storage"
	"cledumemoire/internal/infra/api"
	"cledumemoire/internal/infra/api/apiv1"
	pg "cledumemoire/internal/infra/db/postgres"
	"cledumemoire/internal/infra/i18n"
	"cledumemoire/internal/infra/logging"
	"cledumemoire/internal/infra/metrics"
	red "cledumemoire/internal/infra/redis"
	"cledumemoire/internal/infra/sched"
	"cledumemoire/internal/infra/security"
	"cledumemoire/internal/infra/worker"
	"cledumemoire/internal/usecase"
)

const localUploadDir = "uploads"

func serveCmd(flags *rootFlags) *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(flags.configPath, flags.dev)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply the schema before serving")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, migrate bool) error {
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	log := logging.Component(logger, "Main")
	if cfg.Runtime.Dev {
		log.Warn().Msg("developer mode enabled")
	}

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	if migrate {
		if err := pg.Migrate(ctx, pool); err != nil {
			return err
		}
		log.Info().Msg("schema applied")
	}

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer func() { _ = redisClient.Close() }()
	rateLimiter := red.NewRateLimiter(redisClient)

	// ---- Security ----
	cipher, err := security.NewEncryptionService(cfg.Security.EncryptionKey)
	if err != nil {
		return fmt.Errorf("encryption: %w", err)
	}
	hasher := security.NewBcryptHasher(cfg.Auth.BcryptCost)
	tokens := api.NewAuthManager(cfg.Auth.JWTSecret, cfg.Auth.JWTRefreshSecret, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)

	// ---- Repositories ----
	tm := pg.NewTxManager(pool)
	locker := pg.NewAdvisoryLocker(pool)
	userRepo := pg.NewUserRepo(pool)
	packRepo := pg.NewPackRepoCacheDecorator(pg.NewPackRepo(pool), redisClient, cfg.Redis.TTL, logger)
	subRepo := pg.NewSubscriptionRepo(pool)
	payRepo := pg.NewPaymentRepo(pool)
	memoireRepo := pg.NewMemoireRepo(pool)
	documentRepo := pg.NewDocumentRepo(pool)
	resourceRepo := pg.NewResourceRepo(pool)
	conversationRepo := pg.NewConversationRepo(pool)
	messageRepo := pg.NewMessageRepo(pool)
	notificationRepo := pg.NewNotificationRepo(pool)
	eventRepo := pg.NewEventRepo(pool)
	activityRepo := pg.NewActivityLogRepo(pool)

	// ---- Adapters ----
	files, uploadDir, err := newObjectStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	ai, err := newAI(ctx, cfg, logger)
	if err != nil {
		return err
	}
	bundle, err := i18n.NewBundle(i18n.LocalesFS, "fr", "en")
	if err != nil {
		return fmt.Errorf("i18n: %w", err)
	}

	// ---- Background work ----
	// Tasks outlive the signal: requests still in flight during Shutdown
	// may submit activity writes, and Stop runs them before exit.
	tasks := worker.NewPool(cfg.Worker.Workers, cfg.Worker.QueueSize, logger)
	tasks.Start(context.WithoutCancel(ctx))
	defer tasks.Stop()

	refresher := sched.NewMetricsRefresher(cfg.Scheduler.MetricsInterval, subRepo, pool.Stat, red.NewLocker(redisClient), logger)
	go func() {
		if err := refresher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("metrics refresher stopped")
		}
	}()

	// ---- Use cases ----
	activity := usecase.NewActivityRecorder(activityRepo, tasks, logger)
	notifications := usecase.NewNotificationUseCase(notificationRepo, bundle.For(""), logger)
	packs := usecase.NewPackUseCase(packRepo, logger)
	subs := usecase.NewSubscriptionUseCase(subRepo, packRepo, payRepo, userRepo, locker, tm, notifications, activity, logger)
	auth := usecase.NewAuthUseCase(userRepo, memoireRepo, subs, hasher, tokens, rateLimiter,
		usecase.LoginThrottle{MaxAttempts: cfg.Auth.MaxLoginFailures, Window: cfg.Auth.LoginWindow},
		tm, activity, logger)
	users := usecase.NewUserUseCase(userRepo, memoireRepo, files, tm, logger)
	admin := usecase.NewAdminUseCase(userRepo, subRepo, payRepo, activityRepo, subs, logger)
	memoires := usecase.NewMemoireUseCase(memoireRepo, userRepo, tm, logger)
	messaging := usecase.NewMessagingUseCase(userRepo, memoireRepo, conversationRepo, messageRepo, cipher, notifications, tm, logger)
	calendar := usecase.NewCalendarUseCase(eventRepo, tm, logger)
	documents := usecase.NewDocumentUseCase(documentRepo, memoireRepo, files, locker, notifications, tm, activity, logger)
	resources := usecase.NewResourceUseCase(resourceRepo, files, logger)
	export := usecase.NewExportUseCase(memoires, userRepo, documentRepo, pdf.NewRenderer(""), logger)
	correction := usecase.NewCorrectionUseCase(ai, aiAdapters.NewTiktokenCounter(), usecase.CorrectionConfig{
		Model:          cfg.AI.DefaultModel,
		Temperature:    cfg.AI.Temperature,
		MaxInputTokens: cfg.AI.MaxInputTokens,
	}, logger)

	// ---- HTTP ----
	resp := apiv1.NewResponder(bundle, logger)
	v1 := apiv1.NewServer(apiv1.Deps{
		Auth:           auth,
		Users:          users,
		Packs:          packs,
		Subscriptions:  subs,
		Admin:          admin,
		Memoires:       memoires,
		Messaging:      messaging,
		Notifications:  notifications,
		Calendar:       calendar,
		Documents:      documents,
		Resources:      resources,
		Correction:     correction,
		Export:         export,
		Tokens:         tokens,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
	}, resp, logger)

	router := api.NewRouter(v1, resp, rateLimiter, api.RouterConfig{
		ClientURL:      cfg.Server.ClientURL,
		RequestTimeout: cfg.Server.RequestTimeout,
		RateLimit:      cfg.RateLimit.Requests,
		RateWindow:     cfg.RateLimit.Window,
		UploadDir:      uploadDir,
	}, healthChecks(pool, redisClient), logger)

	server := api.NewServer(cfg.Server.Port, router, logger)
	errc := make(chan error, 1)
	go func() { errc <- server.Start() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	log.Info().Msg("shutdown requested")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	tasks.Stop()
	log.Info().Msg("background tasks drained")
	return nil
}

// newObjectStorage returns S3 when a bucket is configured. Without one it
// falls back to the local disk, whose directory is then served by the API.
func newObjectStorage(ctx context.Context, cfg *config.Config, log *zerolog.Logger) (adapter.ObjectStorage, string, error) {
	if cfg.Storage.Bucket != "" {
		s3, err := storage.NewS3Storage(ctx, cfg.Storage)
		if err != nil {
			return nil, "", fmt.Errorf("s3: %w", err)
		}
		log.Info().Str("bucket", cfg.Storage.Bucket).Msg("object storage: s3")
		return s3, "", nil
	}
	base := cfg.Storage.PublicBaseURL
	if base == "" {
		base = "/uploads"
	}
	local, err := storage.NewLocalStorage(localUploadDir, base)
	if err != nil {
		return nil, "", err
	}
	log.Warn().Str("dir", local.Root()).Msg("object storage: local disk")
	return local, local.Root(), nil
}

// newAI routes gpt-* models to OpenAI and gemini-* models to Gemini, each
// falling back to the other. With no key at all the noop adapter answers.
func newAI(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (adapter.AIServiceAdapter, error) {
	providers := map[string]adapter.AIServiceAdapter{}
	var fallback []string
	if cfg.AI.OpenAIKey != "" {
		oa, err := aiAdapters.NewOpenAIAdapter(cfg.AI.OpenAIKey, cfg.AI.DefaultModel, cfg.AI.OpenAIBaseURL)
		if err != nil {
			return nil, fmt.Errorf("openai adapter: %w", err)
		}
		providers["openai"] = oa
		fallback = append(fallback, "openai")
	}
	if cfg.AI.GeminiKey != "" {
		gm, err := aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("gemini adapter: %w", err)
		}
		providers["gemini"] = gm
		fallback = append(fallback, "gemini")
	}
	if len(providers) == 0 {
		logging.Component(logger, "Main").Warn().Msg("no AI provider configured; corrections run in demo mode")
		return aiAdapters.NewNoopAIAdapter(), nil
	}
	multi := aiAdapters.NewMultiAIAdapter(fallback[0], providers, map[string]string{
		cfg.AI.DefaultModel: fallback[0],
		cfg.AI.GeminiModel:  "gemini",
	}, fallback, logger)
	return aiAdapters.NewLimitedAI(multi, cfg.AI.ConcurrentLimit), nil
}

func healthChecks(pool *pgxpool.Pool, redisClient red.RedisClient) map[string]api.HealthCheck {
	return map[string]api.HealthCheck{
		"postgres": pool.Ping,
		"redis":    redisClient.Ping,
	}
}
