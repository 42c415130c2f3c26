package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/mentorgrid/scheduling/internal/cache"
	"github.com/mentorgrid/scheduling/internal/consumer"
	"github.com/mentorgrid/scheduling/internal/handlers"
	"github.com/mentorgrid/scheduling/internal/inbox"
	"github.com/mentorgrid/scheduling/internal/outbox"
	"github.com/mentorgrid/scheduling/internal/scheduling"
	"github.com/mentorgrid/scheduling/internal/storage"
	"github.com/mentorgrid/scheduling/libs/config"
	"github.com/mentorgrid/scheduling/libs/db"
	"github.com/mentorgrid/scheduling/libs/httpx"
	"github.com/mentorgrid/scheduling/libs/kafkax"
	otelx "github.com/mentorgrid/scheduling/libs/otel"
	"github.com/mentorgrid/scheduling/libs/runtime"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	service := config.String("SERVICE_NAME", "scheduling-service")
	port, err := config.Port("PORT", "8084")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}

	pool, err := db.Open(ctx, dbURL)
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	var rdb *redis.Client
	if addr := config.String("REDIS_ADDR", ""); addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: addr})
		defer rdb.Close()
	}

	availabilityRepo := storage.NewAvailabilityRepository(pool)
	sessionTypeRepo := storage.NewSessionTypeRepository(pool)
	outboxRepo := outbox.NewRepository(pool)
	bookingRepo := storage.NewBookingRepository(pool, outboxRepo)

	var slotCache scheduling.SlotCache
	if rdb != nil {
		slotCache = cache.NewSlotCache(rdb, logger, config.Seconds("SLOT_CACHE_TTL_SECONDS", 60*time.Second))
	}

	svc := scheduling.NewService(
		availabilityRepo,
		sessionTypeRepo,
		bookingRepo,
		slotCache,
		logger,
		config.Int("SLOT_STEP_MINUTES", 0),
	)

	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   config.String("KAFKA_BROKERS", ""),
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go outboxPublisher.Run(ctx)

	inboxRepo := inbox.NewRepository(pool)
	if brokers := config.String("KAFKA_BROKERS", ""); strings.TrimSpace(brokers) != "" {
		consumerCfg := consumer.Config{
			Brokers: brokers,
			GroupID: config.String("KAFKA_GROUP_ID", "scheduling-service"),
			Topic:   config.String("KAFKA_CONSUME_TOPIC", consumer.TopicAvailabilityUpdated),
		}
		eventConsumer := consumer.New(logger, inboxRepo, consumerCfg, func(ctx context.Context, msg kafka.Message) error {
			var payload struct {
				MentorID string `json:"mentor_id"`
			}
			if err := json.Unmarshal(msg.Value, &payload); err != nil {
				logger.Error("invalid event payload", "err", err, "topic", msg.Topic)
				return nil
			}
			if payload.MentorID == "" {
				logger.Error("missing mentor_id in event", "topic", msg.Topic)
				return nil
			}
			if slotCache != nil {
				slotCache.Invalidate(ctx, payload.MentorID)
			}
			logger.Info("availability updated, slot cache invalidated", "mentor_id", payload.MentorID)
			return nil
		})
		go eventConsumer.Run(ctx)
	}

	schedulingHandler := handlers.NewSchedulingHandler(svc, logger)

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(config.String("KAFKA_BROKERS", ""))},
	)
	mux.HandleFunc("/api/v1/public/available-dates", schedulingHandler.AvailableDates)
	mux.HandleFunc("/api/v1/public/slots", schedulingHandler.Slots)
	mux.HandleFunc("/api/v1/public/book", schedulingHandler.Book)
	mux.HandleFunc("/api/v1/bookings", schedulingHandler.List)

	rateLimit := config.Int("RATE_LIMIT", 120)
	rateWindow := config.Seconds("RATE_LIMIT_WINDOW_SECONDS", time.Minute)
	var rateLimitMw httpx.Middleware
	if rdb != nil {
		rateLimitMw = httpx.NewRedisRateLimiter(rdb, rateLimit, rateWindow, service).Middleware(logger, true)
	} else {
		rateLimitMw = httpx.NewRateLimiter(rateLimit, rateWindow).Middleware()
	}

	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins: strings.Split(config.String("CORS_ALLOWED_ORIGINS", ""), ","),
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", "Authorization"},
			MaxAge:         10 * time.Minute,
		}),
		httpx.WithBodyLimit(1<<20),
		httpx.WithTimeout(config.Seconds("REQUEST_TIMEOUT_SECONDS", 15*time.Second)),
		rateLimitMw,
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "scheduling")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}
