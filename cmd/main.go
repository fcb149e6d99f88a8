package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	cancelBookingHandler "github.com/m04kA/SMC-AvailabilityService/internal/api/handlers/cancel_booking"
	createBookingHandler "github.com/m04kA/SMC-AvailabilityService/internal/api/handlers/create_booking"
	createSlotHandler "github.com/m04kA/SMC-AvailabilityService/internal/api/handlers/create_slot"
	deactivateSlotHandler "github.com/m04kA/SMC-AvailabilityService/internal/api/handlers/deactivate_slot"
	getBookingHandler "github.com/m04kA/SMC-AvailabilityService/internal/api/handlers/get_booking"
	getSlotHandler "github.com/m04kA/SMC-AvailabilityService/internal/api/handlers/get_slot"
	listSlotBookingsHandler "github.com/m04kA/SMC-AvailabilityService/internal/api/handlers/list_slot_bookings"
	listSlotsHandler "github.com/m04kA/SMC-AvailabilityService/internal/api/handlers/list_slots"
	updateBookingNotesHandler "github.com/m04kA/SMC-AvailabilityService/internal/api/handlers/update_booking_notes"
	updateBookingStatusHandler "github.com/m04kA/SMC-AvailabilityService/internal/api/handlers/update_booking_status"
	"github.com/m04kA/SMC-AvailabilityService/internal/api/middleware"
	"github.com/m04kA/SMC-AvailabilityService/internal/config"
	"github.com/m04kA/SMC-AvailabilityService/internal/events"
	"github.com/m04kA/SMC-AvailabilityService/internal/infra/storage"
	"github.com/m04kA/SMC-AvailabilityService/internal/infra/storage/memdoc"
	"github.com/m04kA/SMC-AvailabilityService/internal/infra/storage/postgres"
	"github.com/m04kA/SMC-AvailabilityService/internal/infra/storage/redisdoc"
	bookingsService "github.com/m04kA/SMC-AvailabilityService/internal/service/bookings"
	"github.com/m04kA/SMC-AvailabilityService/internal/service/capacity"
	slotsService "github.com/m04kA/SMC-AvailabilityService/internal/service/slots"
	createBookingUC "github.com/m04kA/SMC-AvailabilityService/internal/usecase/create_booking"
	"github.com/m04kA/SMC-AvailabilityService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AvailabilityService/pkg/logger"
	"github.com/m04kA/SMC-AvailabilityService/pkg/metrics"
	"github.com/m04kA/SMC-AvailabilityService/pkg/simpletxmanager"
	"github.com/m04kA/SMC-AvailabilityService/pkg/txmanager"
)

func main() {
	// Переменные окружения из .env перекрывают config.toml
	_ = godotenv.Load()

	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-AvailabilityService...")
	log.Info("Configuration loaded from config.toml, storage backend: %s", cfg.Storage.Backend)

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Интерфейс transaction manager для usecase создания бронирования
	type TxManager interface {
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	}

	var (
		slotStore    storage.SlotStore
		bookingStore storage.BookingStore
		txMgr        TxManager
	)

	// Выбираем бэкенд хранилища
	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		db, err := sql.Open("postgres", cfg.Database.DSN())
		if err != nil {
			log.Fatal("Failed to connect to database: %v", err)
		}
		defer db.Close()

		// Настраиваем connection pool
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Minute)

		if err := db.Ping(); err != nil {
			log.Fatal("Failed to ping database: %v", err)
		}
		log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
			cfg.Database.Host, cfg.Database.Port, cfg.Database.Name)

		if cfg.Metrics.Enabled {
			wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
			log.Info("Database metrics collection started")

			slotStore = postgres.NewSlotRepository(wrappedDB)
			bookingStore = postgres.NewBookingRepository(wrappedDB)
			txMgr = txmanager.NewTransactionManager(wrappedDB)
		} else {
			slotStore = postgres.NewSlotRepository(db)
			bookingStore = postgres.NewBookingRepository(db)
			txMgr = simpletxmanager.NewTransactionManager(db)
		}

	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Fatal("Failed to ping redis: %v", err)
		}
		log.Info("Successfully connected to redis (addr=%s, db=%d)", cfg.Redis.Addr, cfg.Redis.DB)

		var opts []redisdoc.Option
		if cfg.Redis.KeyPrefix != "" {
			opts = append(opts, redisdoc.WithPrefix(cfg.Redis.KeyPrefix))
		}
		slotStore = redisdoc.NewSlotStore(rdb, opts...)
		bookingStore = redisdoc.NewBookingStore(rdb, opts...)

		// Атомарность документного хранилища обеспечивает per-document CAS
		txMgr = storage.NopTxManager{}

	case config.BackendMemory:
		log.Warn("Using in-memory storage backend, data will not survive restart")
		slotStore = memdoc.NewSlotStore()
		bookingStore = memdoc.NewBookingStore()
		txMgr = storage.NopTxManager{}

	default:
		log.Fatal("Unknown storage backend: %s", cfg.Storage.Backend)
	}

	// Инициализируем публикацию событий
	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.Events.Enabled {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.Events.URL, cfg.Events.Exchange)
		if err != nil {
			log.Fatal("Failed to connect to message broker: %v", err)
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
		log.Info("Event publisher connected (exchange=%s)", cfg.Events.Exchange)
	}

	// Инициализируем reconciler вместимости
	var capacityMetrics capacity.MetricsCollector
	if cfg.Metrics.Enabled {
		capacityMetrics = metricsCollector
	}
	reconciler := capacity.NewReconciler(slotStore, log, capacityMetrics)

	// Инициализируем сервисы
	slotSvc := slotsService.NewService(slotStore, publisher, log)
	bookingSvc := bookingsService.NewService(bookingStore, reconciler, publisher, log)

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		slotStore,
		bookingStore,
		reconciler,
		txMgr,
		publisher,
		log,
	)

	// Инициализируем handlers
	createSlot := createSlotHandler.NewHandler(slotSvc, log)
	getSlot := getSlotHandler.NewHandler(slotSvc, log)
	listSlots := listSlotsHandler.NewHandler(slotSvc, log)
	deactivateSlot := deactivateSlotHandler.NewHandler(slotSvc, log)
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	listSlotBookings := listSlotBookingsHandler.NewHandler(bookingSvc, log)
	updateBookingStatus := updateBookingStatusHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	updateBookingNotes := updateBookingNotesHandler.NewHandler(bookingSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		r.Use(limiter.Middleware)
		log.Info("Rate limiting enabled (rps=%.1f, burst=%d)", cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Слоты доступности площадки
	api.HandleFunc("/sites/{siteId}/slots", listSlots.Handle).Methods(http.MethodGet)

	// Создание бронирования клиентом: слот адресуется через площадку
	api.HandleFunc("/sites/{siteId}/slots/{slotId}/bookings", createBooking.Handle).Methods(http.MethodPost)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Управление слотами ---
	protected.HandleFunc("/slots", createSlot.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/slots/{slotId}", getSlot.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/slots/{slotId}/deactivate", deactivateSlot.Handle).Methods(http.MethodPatch)

	// --- Бронирования ---
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/slots/{slotId}/bookings", listSlotBookings.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}/status", updateBookingStatus.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/notes", updateBookingNotes.Handle).Methods(http.MethodPatch)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
