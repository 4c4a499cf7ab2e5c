package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"lendaround/internal/app/commands"
	availabilityapp "lendaround/internal/app/handlers/availability"
	bookingapp "lendaround/internal/app/handlers/booking"
	"lendaround/internal/app/locks"
	"lendaround/internal/app/middleware"
	appoutbox "lendaround/internal/app/outbox"
	"lendaround/internal/app/queries"
	"lendaround/internal/app/uow"
	"lendaround/internal/domain/listings"
	"lendaround/internal/infra/broker/kafka"
	"lendaround/internal/infra/config"
	"lendaround/internal/infra/db/mongo"
	ginserver "lendaround/internal/infra/http/gin"
	"lendaround/internal/infra/obs"
	infraoutbox "lendaround/internal/infra/outbox"
	"lendaround/internal/infra/storage/memory"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration invalid", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("application wiring failed", "error", err)
		os.Exit(1)
	}
	defer app.close(logger)

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	if cfg.ListingFixtures != "" {
		if err := app.loadListingFixtures(ctx, cfg.ListingFixtures, logger); err != nil {
			logger.Warn("listing fixtures load failed", "error", err, "path", cfg.ListingFixtures)
		}
	}

	if app.worker != nil {
		go func() {
			if err := app.worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers ginserver.Handlers
	listings listings.Repository
	worker   *infraoutbox.Worker
	producer *kafka.Producer
	mongo    *mongo.Client
	ready    func() error
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (application, error) {
	var app application

	var (
		factory  uow.Factory
		box      appoutbox.Outbox
		idStore  middleware.IdempotencyStore
		outStore infraoutbox.Store
	)

	switch cfg.StorageMode {
	case config.StorageMongo:
		client, err := mongo.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return application{}, fmt.Errorf("mongo connect: %w", err)
		}
		app.mongo = client
		app.ready = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		}
		factory = mongo.Factory{Client: client}
		store := mongo.NewOutboxStore(client.DB)
		box = store
		outStore = store
		idStore = mongo.NewIdempotencyStore(client.DB, cfg.IdempotencyTTL)
		app.listings = mongo.NewListingRepository(client.DB)
	default:
		listingsRepo := memory.NewListingRepository()
		memFactory := memory.Factory{
			ListingsRepo:  listingsRepo,
			SchedulesRepo: memory.NewScheduleRepository(),
			BookingsRepo:  memory.NewBookingRepository(),
		}
		memBox := memory.NewOutbox()
		factory = memFactory
		box = memBox
		outStore = memBox
		idStore = memory.NewIdempotencyStore()
		app.listings = listingsRepo
		app.ready = func() error { return nil }
	}

	listingLocks := locks.NewKeyed()

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, bookingapp.RequestBookingCommand{}.Key(),
		&bookingapp.RequestBookingHandler{Locks: listingLocks, Outbox: box, Logger: logger})
	transitions := &bookingapp.TransitionHandler{Outbox: box, Logger: logger}
	commands.RegisterHandler(commandBus, bookingapp.ConfirmBookingCommand{}.Key(),
		bookingapp.ConfirmBookingHandler{TransitionHandler: transitions})
	commands.RegisterHandler(commandBus, bookingapp.CancelBookingCommand{}.Key(),
		bookingapp.CancelBookingHandler{TransitionHandler: transitions})
	commands.RegisterHandler(commandBus, bookingapp.CompleteBookingCommand{}.Key(),
		bookingapp.CompleteBookingHandler{TransitionHandler: transitions})
	commands.RegisterHandler(commandBus, availabilityapp.ReplaceRulesCommand{}.Key(),
		&availabilityapp.ReplaceRulesHandler{Outbox: box, Logger: logger})
	commands.RegisterHandler(commandBus, availabilityapp.AddBlackoutCommand{}.Key(),
		&availabilityapp.AddBlackoutHandler{Locks: listingLocks, Outbox: box, Logger: logger})
	commands.RegisterHandler(commandBus, availabilityapp.RemoveBlackoutCommand{}.Key(),
		&availabilityapp.RemoveBlackoutHandler{Outbox: box, Logger: logger})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, availabilityapp.GetCalendarQuery{}.Key(),
		&availabilityapp.GetCalendarHandler{UoWFactory: factory})
	queries.RegisterHandler(queryBus, availabilityapp.ValidateRangeQuery{}.Key(),
		&availabilityapp.ValidateRangeHandler{UoWFactory: factory})

	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Validation(middleware.SelfValidation{}),
		middleware.Idempotency(idStore, nil),
		middleware.Transaction(factory, nil),
		middleware.OutboxFlush(box),
	)
	queryBusWithMiddleware := middleware.ChainQueries(
		queryBus,
		middleware.QueryValidation(middleware.SelfValidation{}),
		middleware.ReadOnlyTransaction(factory),
	)

	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			return application{}, fmt.Errorf("kafka producer: %w", err)
		}
		app.producer = producer
		app.worker = &infraoutbox.Worker{
			Store:       outStore,
			Producer:    producer,
			Interval:    cfg.OutboxPollInterval,
			TopicPrefix: cfg.KafkaTopicPrefix,
			Backoff:     cfg.RetryBackoff,
		}
	}

	authMW := ginserver.AuthMiddleware{Sessions: sessionsFromEnv(), Logger: logger}
	app.handlers = ginserver.Handlers{
		Booking:          ginserver.BookingHandler{Commands: commandBusWithMiddleware},
		Availability:     ginserver.AvailabilityHandler{Queries: queryBusWithMiddleware},
		HostAvailability: ginserver.HostAvailabilityHandler{Commands: commandBusWithMiddleware},
		AuthMiddleware:   authMW.Handle,
	}
	return app, nil
}

func (a application) close(logger *slog.Logger) {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			logger.Warn("kafka producer close failed", "error", err)
		}
	}
	if a.mongo != nil {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.mongo.Close(closeCtx); err != nil {
			logger.Warn("mongo close failed", "error", err)
		}
	}
}

// sessionsFromEnv reads SESSION_TOKENS as "token=userID" pairs separated by
// commas. The upstream gateway owns real authentication.
func sessionsFromEnv() ginserver.StaticSessions {
	raw := os.Getenv("SESSION_TOKENS")
	if raw == "" {
		return nil
	}
	sessions := ginserver.StaticSessions{}
	for _, pair := range strings.Split(raw, ",") {
		token, user, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || token == "" || user == "" {
			continue
		}
		sessions[token] = user
	}
	return sessions
}

func (a application) loadListingFixtures(ctx context.Context, path string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("listing fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}

	var fixtures []listingFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}

	now := time.Now()
	for _, fx := range fixtures {
		listing, err := listings.NewListing(listings.CreateParams{
			ID:             listings.ListingID(fx.ID),
			Owner:          listings.OwnerID(fx.Owner),
			Title:          fx.Title,
			Description:    fx.Description,
			DailyRateCents: fx.DailyRateCents,
			Now:            now,
		})
		if err != nil {
			logger.Error("fixture invalid", "listing_id", fx.ID, "error", err)
			continue
		}
		if err := listing.Activate(now); err != nil {
			logger.Error("fixture activation failed", "listing_id", fx.ID, "error", err)
			continue
		}
		if err := a.listings.Save(ctx, listing); err != nil {
			logger.Error("cannot store fixture listing", "listing_id", fx.ID, "error", err)
			continue
		}
		logger.Info("listing fixture imported", "listing_id", listing.ID)
	}
	return nil
}

type listingFixture struct {
	ID             string `json:"id"`
	Owner          string `json:"owner"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	DailyRateCents int64  `json:"daily_rate_cents"`
}
