package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/MilktreeAgency/landco/apperrors"
	"github.com/MilktreeAgency/landco/catalog"
	"github.com/MilktreeAgency/landco/config"
	"github.com/MilktreeAgency/landco/controllers"
	"github.com/MilktreeAgency/landco/database"
	"github.com/MilktreeAgency/landco/logger"
	"github.com/MilktreeAgency/landco/middleware"
	"github.com/MilktreeAgency/landco/models"
	aws_pkg "github.com/MilktreeAgency/landco/pkg/aws"
	"github.com/MilktreeAgency/landco/providers"
	"github.com/MilktreeAgency/landco/repository"
	"github.com/MilktreeAgency/landco/routes"
	"github.com/MilktreeAgency/landco/services"
	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

const (
	chatSessionTTL    = 2 * time.Hour
	ledgerPurgeEvery  = time.Hour
	relayQueueSize    = 256
	relayBackoff      = 5 * time.Second
	requestTimeout    = 30 * time.Second
	shutdownTimeout   = 10 * time.Second
	rateLimiterMaxAge = 10 * time.Minute
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// AWS is optional; every client below degrades when it is unavailable.
	var awsCfg *sdkaws.Config
	if cfg.AWSUseSecrets || cfg.CloudWatchEnabled || cfg.RelayQueueURL != "" || cfg.PaymentSNSTopicARN != "" {
		c, awsErr := aws_pkg.LoadAWSConfig(ctx)
		if awsErr != nil {
			log.Printf("AWS config unavailable, AWS integrations disabled: %v", awsErr)
		} else {
			awsCfg = &c
		}
	}

	if cfg.AWSUseSecrets && awsCfg != nil {
		if err := cfg.ApplySecrets(ctx, aws_pkg.NewSecretsClient(*awsCfg)); err != nil {
			log.Printf("Failed to load secrets from Secrets Manager, using environment: %v", err)
		}
	}

	var cwLogs *aws_pkg.CloudWatchLogsClient
	if cfg.CloudWatchEnabled && awsCfg != nil {
		cwLogs, err = aws_pkg.NewCloudWatchLogsClient(ctx, *awsCfg, cfg.CloudWatchLogGroup, "landco", true)
		if err != nil {
			log.Printf("CloudWatch Logs unavailable: %v", err)
			cwLogs = nil
		}
	}
	if cwLogs != nil {
		err = logger.Initialize(cfg.Env, cwLogs)
	} else {
		err = logger.Initialize(cfg.Env, nil)
	}
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	zl := logger.Log
	defer zl.Sync() //nolint:errcheck

	var metrics aws_pkg.MetricsRecorder
	if awsCfg != nil && cfg.CloudWatchEnabled {
		metrics = aws_pkg.NewMetricsClient(*awsCfg, cfg.CloudWatchNamespace, true)
	}

	// Optional stores
	var db *gorm.DB
	if cfg.WebhookDedupEnabled && cfg.PostgresConfigured() {
		db, err = database.ConnectPostgres(ctx, cfg.PostgresDSN(), zl, &models.ProcessedEvent{})
		if err != nil {
			zl.Error("Postgres unavailable, webhook ledger falls back", zap.Error(err))
			db = nil
		} else {
			defer database.Close(db) //nolint:errcheck
		}
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = database.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			zl.Error("Redis unavailable, using in-memory stores", zap.Error(err))
			rdb = nil
		} else {
			defer rdb.Close() //nolint:errcheck
		}
	}

	var wg sync.WaitGroup

	// Payments
	var (
		checkoutCreator services.CheckoutCreator
		verifier        services.WebhookVerifier
	)
	if cfg.StripeConfigured() {
		stripeClient := services.NewStripeClient(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
		checkoutCreator = stripeClient
		if cfg.StripeWebhookSecret != "" {
			verifier = stripeClient
		}
	} else {
		zl.Warn("STRIPE_SECRET_KEY not set, checkout and webhooks are disabled")
	}

	var crm providers.CRM
	if cfg.CRMConfigured() {
		crm = providers.NewGHLClient(cfg.GHLAPIKey, cfg.GHLLocationID, cfg.GHLBaseURL)
	} else {
		zl.Warn("GHL_API_KEY or GHL_LOCATION_ID not set, CRM sync is disabled")
	}

	recOpts := []services.ReconcilerOption{services.WithMetrics(metrics)}
	if cfg.WebhookDedupEnabled {
		switch {
		case db != nil:
			ledger := repository.NewGormEventLedger(db)
			recOpts = append(recOpts, services.WithLedger(ledger))
			wg.Add(1)
			go func() {
				defer wg.Done()
				purgeLedger(ctx, ledger, cfg.WebhookDedupTTL, zl)
			}()
			zl.Info("webhook idempotency ledger enabled", zap.String("backend", "postgres"))
		case rdb != nil:
			recOpts = append(recOpts, services.WithLedger(repository.NewRedisEventLedger(rdb, cfg.WebhookDedupTTL)))
			zl.Info("webhook idempotency ledger enabled", zap.String("backend", "redis"))
		default:
			zl.Warn("WEBHOOK_DEDUP_ENABLED is set but neither Postgres nor Redis is available, redeliveries will be reprocessed")
		}
	}
	if cfg.PaymentSNSTopicARN != "" && awsCfg != nil {
		recOpts = append(recOpts, services.WithDepositPublisher(aws_pkg.NewSNSClient(*awsCfg), cfg.PaymentSNSTopicARN))
	}

	checkoutService := services.NewCheckoutService(checkoutCreator, services.CheckoutConfig{
		DepositAmount: cfg.DepositAmount,
		Currency:      cfg.CheckoutCurrency,
		SiteURL:       cfg.SiteURL,
	}, metrics, zl)
	reconciler := services.NewReconciler(crm, zl, recOpts...)
	webhookService := services.NewWebhookService(cfg.StripeConfigured(), verifier, reconciler, zl)
	leadService := services.NewLeadService(crm, cfg.GHLLeadWorkflowID, metrics, zl)

	// Form relay
	var relayQueue services.RelayQueue
	if cfg.RelayQueueURL != "" && awsCfg != nil {
		relayQueue = services.NewSQSRelayQueue(aws_pkg.NewSQSQueue(*awsCfg, cfg.RelayQueueURL, zl), zl)
		zl.Info("form relay using SQS", zap.String("queue_url", cfg.RelayQueueURL))
	} else {
		relayQueue = services.NewChannelQueue(relayQueueSize)
	}
	relay := services.NewRelay(providers.NewFormspreeClient(""), relayQueue, services.RelayConfig{
		MaxAttempts: cfg.RelayMaxAttempts,
		Backoff:     relayBackoff,
	}, metrics, zl)
	// The relay outlives ctx so forms accepted while the server drains are still sent.
	relayCtx, stopRelay := context.WithCancel(context.Background())
	defer stopRelay()
	wg.Add(1)
	go func() {
		defer wg.Done()
		relay.Run(relayCtx)
	}()
	formService := services.NewFormService(relay, services.FormIDs{
		Lead: cfg.FormspreeLeadFormID,
		Land: cfg.FormspreeLandFormID,
	}, zl)

	// Chat
	var chatModel providers.ChatModel
	if cfg.GeminiAPIKey != "" {
		chatModel = providers.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel, "")
	} else {
		zl.Warn("GEMINI_API_KEY not set, chat runs in mock mode")
	}
	var chatStore repository.ChatSessionStore = repository.NewMemoryChatStore(chatSessionTTL)
	if rdb != nil {
		chatStore = repository.NewRedisChatStore(rdb, chatSessionTTL)
	}
	chatService := services.NewChatService(chatModel, chatStore, 0, metrics, zl)

	catalogService := services.NewCatalogService(catalog.Yards(), catalog.CityHubs())

	checks := map[string]controllers.Check{}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	if db != nil {
		checks["postgres"] = func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}
	health := controllers.NewHealthController(map[string]bool{
		"stripe":    checkoutCreator != nil,
		"crm":       crm != nil,
		"chat":      chatModel != nil,
		"formsLead": cfg.FormspreeLeadFormID != "",
		"formsLand": cfg.FormspreeLandFormID != "",
	}, checks)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(zl),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.AllowedOrigins),
		middleware.Metrics(metrics),
		middleware.Timeout(requestTimeout),
		apperrors.Middleware(),
	)

	routes.RegisterRoutes(r, routes.Controllers{
		Checkout: controllers.NewCheckoutController(checkoutService),
		Webhook:  controllers.NewWebhookController(webhookService),
		Lead:     controllers.NewLeadController(leadService),
		Forms:    controllers.NewFormController(formService),
		Chat:     controllers.NewChatController(chatService),
		Property: controllers.NewPropertyController(catalogService),
		Health:   health,
	}, routes.Limiters{
		Chat:  middleware.NewRateLimiter(ctx, rate.Every(3*time.Second), 10, rateLimiterMaxAge),
		Forms: middleware.NewRateLimiter(ctx, rate.Every(10*time.Second), 5, rateLimiterMaxAge),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("Server failed", zap.Error(err))
		}
	}()
	zl.Info("Landco service started", zap.String("port", cfg.Port), zap.String("env", cfg.Env))

	<-ctx.Done()
	zl.Info("Shutting down landco service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("Server forced to shutdown", zap.Error(err))
	}
	stopRelay()
	wg.Wait()
	zl.Info("Server exited cleanly")
}

// purgeLedger trims webhook ledger rows older than retention until ctx ends.
func purgeLedger(ctx context.Context, ledger *repository.GormEventLedger, retention time.Duration, zl *zap.Logger) {
	ticker := time.NewTicker(ledgerPurgeEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := ledger.Purge(ctx, retention)
			if err != nil {
				zl.Warn("webhook ledger purge failed", zap.Error(err))
				continue
			}
			if n > 0 {
				zl.Info("webhook ledger purged", zap.Int64("rows", n))
			}
		}
	}
}
