package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/diagnosis/salvatore-shoes/internal/chat"
	"github.com/diagnosis/salvatore-shoes/internal/hours"
	"github.com/diagnosis/salvatore-shoes/internal/http/handlers"
	httpmw "github.com/diagnosis/salvatore-shoes/internal/http/middleware"
	"github.com/diagnosis/salvatore-shoes/internal/http/response"
	"github.com/diagnosis/salvatore-shoes/internal/intro"
	"github.com/diagnosis/salvatore-shoes/internal/notify"
	"github.com/diagnosis/salvatore-shoes/internal/platform/mailer"
	"github.com/diagnosis/salvatore-shoes/internal/repo"
	"github.com/diagnosis/salvatore-shoes/internal/repo/memory"
	"github.com/diagnosis/salvatore-shoes/internal/repo/postgres"
	redisrepo "github.com/diagnosis/salvatore-shoes/internal/repo/redis"
	"github.com/diagnosis/salvatore-shoes/pkg/config"
	"github.com/diagnosis/salvatore-shoes/pkg/database"
	"github.com/diagnosis/salvatore-shoes/pkg/events"
	"github.com/diagnosis/salvatore-shoes/pkg/logger"
	mw "github.com/diagnosis/salvatore-shoes/pkg/middleware"
)

const (
	serviceName     = "salvatore-api"
	idempotencyTTL  = 24 * time.Hour
	cleanupInterval = 10 * time.Minute
)

func main() {
	if err := run(); err != nil {
		logger.Error("API exited", "error", err)
		os.Exit(1)
	}
}

// backends holds the optional connections; nil fields fall back to memory.
type backends struct {
	pool  *pgxpool.Pool
	redis *redis.Client
	bus   *events.NATSEventBus
}

func (b *backends) close() {
	if b.bus != nil {
		if err := b.bus.Close(); err != nil {
			logger.Warn("Failed to drain NATS connection", "error", err)
		}
	}
	if b.redis != nil {
		b.redis.Close()
	}
	if b.pool != nil {
		b.pool.Close()
	}
}

func run() error {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.Shop.Location()
	if err != nil {
		return fmt.Errorf("shop timezone: %w", err)
	}
	schedule, err := hours.ParseSchedule(cfg.Shop.Schedule)
	if err != nil {
		return fmt.Errorf("shop schedule: %w", err)
	}
	evaluator := hours.NewEvaluator(schedule, loc)

	b, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.close()

	// Stores
	var (
		quotes      repo.QuoteRepo      = memory.NewQuoteRepo()
		contacts    repo.ContactRepo    = memory.NewContactRepo()
		rateLimits  repo.RateLimitRepo  = memory.NewRateLimitRepo()
		idempotency mw.IdempotencyStore = memory.NewIdempotencyStore()
	)
	if b.pool != nil {
		quotes = postgres.NewQuoteRepo(b.pool)
		contacts = postgres.NewContactRepo(b.pool)
		rateLimits = postgres.NewRateLimitRepo(b.pool)
		idempotency = postgres.NewIdempotencyStore(b.pool)
	}
	if b.redis != nil {
		rateLimits = redisrepo.NewRateLimitRepo(b.redis)
		idempotency = redisrepo.NewIdempotencyStore(b.redis)
	}

	introStore, err := selectIntroStore(cfg.Intro.StoreDriver, b)
	if err != nil {
		return err
	}
	gate := intro.NewGate(introStore, intro.Policy{Window: cfg.Intro.Window, MaxShows: cfg.Intro.MaxShows})

	// Events: with NATS the notifier service mails the shop, otherwise the
	// API does it inline.
	var publisher events.Publisher = events.NoopPublisher{}
	var quoteNotifier handlers.QuoteNotifier
	var contactNotifier handlers.ContactNotifier
	if b.bus != nil {
		publisher = b.bus
	} else {
		n := notify.New(mailer.FromConfig(cfg.Email), cfg.Email.ShopEmail)
		quoteNotifier, contactNotifier = n, n
	}

	completer := chat.NewOpenAICompleter(chat.OpenAIConfig{
		APIKey:      cfg.Chat.APIKey,
		BaseURL:     cfg.Chat.BaseURL,
		Model:       cfg.Chat.Model,
		MaxTokens:   cfg.Chat.MaxTokens,
		Temperature: cfg.Chat.Temperature,
		Timeout:     cfg.Chat.Timeout,
		MaxRetries:  1,
	})
	if cfg.Chat.APIKey == "" {
		logger.Warn("OPENAI_API_KEY is not set, chat requests will fail")
	}
	relay := chat.NewRelay(completer, chat.SystemPrompt(schedule), cfg.Chat.HistoryLimit)

	// Handlers
	storeH := handlers.NewStoreHandler(evaluator)
	introH := handlers.NewIntroHandler(gate, publisher)
	chatH := handlers.NewChatHandler(relay, publisher, cfg.Chat.Model)
	quoteH := handlers.NewQuoteHandler(quotes, evaluator, publisher, quoteNotifier)
	contactH := handlers.NewContactHandler(contacts, publisher, contactNotifier)

	chatLimiter := httpmw.NewRateLimiter(rateLimits, httpmw.RateLimitConfig{
		Name:     "chat",
		Requests: cfg.RateLimit.ChatRequests,
		Window:   cfg.RateLimit.ChatWindow,
	})
	formLimiter := httpmw.NewRateLimiter(rateLimits, httpmw.RateLimitConfig{
		Name:     "forms",
		Requests: cfg.RateLimit.FormRequests,
		Window:   cfg.RateLimit.FormWindow,
	})

	r := chi.NewRouter()
	r.Use(mw.RequestID)
	r.Use(mw.ServiceName(serviceName))
	r.Use(mw.Logging)
	r.Use(mw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Idempotency-Key", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Idempotent-Replayed"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(mw.Health)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "route not found")
	})

	r.Route("/api", func(r chi.Router) {
		r.Mount("/store", storeH.Routes())

		r.Group(func(r chi.Router) {
			r.Use(httpmw.Visitor(httpmw.VisitorConfig{
				Secret:     cfg.Auth.VisitorSecret,
				TTL:        cfg.Auth.VisitorTTL,
				CookieName: cfg.Auth.VisitorCookieName,
				Secure:     cfg.Auth.CookieSecure,
			}))
			r.Mount("/intro", introH.Routes())
		})

		r.With(chatLimiter.Middleware()).Mount("/chat", chatH.Routes())

		r.Group(func(r chi.Router) {
			r.Use(formLimiter.Middleware())
			r.Use(mw.IdempotencyMiddleware(idempotency, idempotencyTTL))
			r.Mount("/quotes", quoteH.Routes())
			r.Mount("/contact", contactH.Routes())
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting API", "port", cfg.Server.Port, "timezone", loc.String(), "intro_store", cfg.Intro.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down API...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		cleanupExpired(gctx, rateLimits, idempotency)
		return nil
	})

	return g.Wait()
}

// connect opens the configured backends. Each one is optional.
func connect(ctx context.Context, cfg *config.Config) (*backends, error) {
	b := &backends{}

	if cfg.Database.URL != "" {
		pool, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		b.pool = pool
		logger.Info("Connected to PostgreSQL")
	}

	if cfg.Redis.Enabled || cfg.Intro.StoreDriver == "redis" {
		client, err := database.ConnectRedis(ctx, cfg.Redis)
		if err != nil {
			b.close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		b.redis = client
		logger.Info("Connected to Redis")
	}

	if cfg.NATS.URL != "" {
		bus, err := events.NewNATSEventBus(cfg.NATS.URL)
		if err != nil {
			b.close()
			return nil, err
		}
		b.bus = bus
		logger.Info("Connected to NATS")
	}

	return b, nil
}

func selectIntroStore(driver string, b *backends) (intro.Store, error) {
	switch driver {
	case "", "memory":
		return intro.NewMemoryStore(), nil
	case "redis":
		return redisrepo.NewIntroRepo(b.redis), nil
	case "postgres":
		if b.pool == nil {
			return nil, errors.New("INTRO_STORE=postgres requires DATABASE_URL")
		}
		return postgres.NewIntroRepo(b.pool), nil
	default:
		return nil, fmt.Errorf("unknown INTRO_STORE %q", driver)
	}
}

type expirer interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

// cleanupExpired periodically deletes expired rate-limit and idempotency
// rows from stores that keep them.
func cleanupExpired(ctx context.Context, stores ...interface{}) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, s := range stores {
				e, ok := s.(expirer)
				if !ok {
					continue
				}
				n, err := e.CleanupExpired(ctx)
				if err != nil {
					logger.Warn("Cleanup of expired rows failed", "store", fmt.Sprintf("%T", s), "error", err)
					continue
				}
				if n > 0 {
					logger.Debug("Removed expired rows", "store", fmt.Sprintf("%T", s), "count", n)
				}
			}
		}
	}
}
