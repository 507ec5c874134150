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
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	acquireLockHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/acquire_lock"
	cancelBookingHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/cancel_booking"
	createBookingHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/create_booking"
	getAvailabilityHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/get_availability"
	getBookingHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/get_booking"
	getBookingGroupHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/get_booking_group"
	getScheduleConfigHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/get_schedule_config"
	getTenantBookingsHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/get_tenant_bookings"
	getUserBookingsHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/get_user_bookings"
	releaseLockHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/release_lock"
	scanAdmissionHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/scan_admission"
	updateBookingStatusHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/update_booking_status"
	updateScheduleConfigHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/update_schedule_config"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	"github.com/m04kA/SMC-SchedulingService/internal/config"
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/events"
	"github.com/m04kA/SMC-SchedulingService/internal/infra/locker"
	admissionRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/admission"
	bookingRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/booking"
	entitlementRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/entitlement"
	rotationRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/rotation"
	scheduleConfigRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/scheduleconfig"
	shiftRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/shift"
	slotRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/slot"
	resourceServiceClient "github.com/m04kA/SMC-SchedulingService/internal/integrations/resourceservice"
	materializeJob "github.com/m04kA/SMC-SchedulingService/internal/jobs/materialize"
	admissionService "github.com/m04kA/SMC-SchedulingService/internal/service/admission"
	allocationService "github.com/m04kA/SMC-SchedulingService/internal/service/allocation"
	bookingsService "github.com/m04kA/SMC-SchedulingService/internal/service/bookings"
	rotationService "github.com/m04kA/SMC-SchedulingService/internal/service/rotation"
	scheduleConfigService "github.com/m04kA/SMC-SchedulingService/internal/service/scheduleconfig"
	createBookingUC "github.com/m04kA/SMC-SchedulingService/internal/usecase/create_booking"
	getAvailabilityUC "github.com/m04kA/SMC-SchedulingService/internal/usecase/get_availability"
	"github.com/m04kA/SMC-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
	"github.com/m04kA/SMC-SchedulingService/pkg/metrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/simpletxmanager"
	"github.com/m04kA/SMC-SchedulingService/pkg/txmanager"
)

// nopPublisher заглушка публикации событий, когда брокер отключен
type nopPublisher struct{}

func (nopPublisher) PublishBookingCreated(context.Context, events.BookingCreatedEvent)     {}
func (nopPublisher) PublishBookingCancelled(context.Context, events.BookingCancelledEvent) {}

func main() {
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

	log.Info("Starting SMC-SchedulingService...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Подключаемся к Redis для блокировок слотов
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		cancelPing()
		log.Fatal("Failed to ping redis: %v", err)
	}
	cancelPing()
	log.Info("Successfully connected to redis (addr=%s)", cfg.Redis.Addr)

	slotLocker := locker.New(redisClient, time.Duration(domain.DefaultLockTTLSeconds)*time.Second)

	// Подключаемся к RabbitMQ (если события включены)
	// Публикация best-effort, поэтому при отключенном брокере ставим заглушку
	var publisher interface {
		PublishBookingCreated(ctx context.Context, event events.BookingCreatedEvent)
		PublishBookingCancelled(ctx context.Context, event events.BookingCancelledEvent)
	}
	if cfg.Events.Enabled {
		rabbitPublisher, err := events.NewPublisher(cfg.Events.URL, log)
		if err != nil {
			log.Fatal("Failed to connect to rabbitmq: %v", err)
		}
		defer rabbitPublisher.Close()
		publisher = rabbitPublisher
		log.Info("Event publisher connected (url=%s)", cfg.Events.URL)
	} else {
		publisher = nopPublisher{}
		log.Info("Event publishing disabled")
	}

	// Инициализируем интеграционного клиента
	resourceClient := resourceServiceClient.NewClient(
		cfg.ResourceService.URL,
		time.Duration(cfg.ResourceService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration client initialized (ResourceService=%s timeout=%ds)",
		cfg.ResourceService.URL, cfg.ResourceService.Timeout)

	// Инициализируем репозитории (с метриками или без)
	var (
		slotRepository           *slotRepo.Repository
		shiftRepository          *shiftRepo.Repository
		bookingRepository        *bookingRepo.Repository
		entitlementRepository    *entitlementRepo.Repository
		admissionRepository      *admissionRepo.Repository
		rotationRepository       *rotationRepo.Repository
		scheduleConfigRepository *scheduleConfigRepo.Repository
	)

	// Интерфейс для transaction manager (используется в сервисах и usecases)
	type TxManager interface {
		Do(ctx context.Context, fn func(ctx context.Context) error) error
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		slotRepository = slotRepo.NewRepository(wrappedDB)
		shiftRepository = shiftRepo.NewRepository(wrappedDB)
		bookingRepository = bookingRepo.NewRepository(wrappedDB)
		entitlementRepository = entitlementRepo.NewRepository(wrappedDB)
		admissionRepository = admissionRepo.NewRepository(wrappedDB)
		rotationRepository = rotationRepo.NewRepository(wrappedDB)
		scheduleConfigRepository = scheduleConfigRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		slotRepository = slotRepo.NewRepository(db)
		shiftRepository = shiftRepo.NewRepository(db)
		bookingRepository = bookingRepo.NewRepository(db)
		entitlementRepository = entitlementRepo.NewRepository(db)
		admissionRepository = admissionRepo.NewRepository(db)
		rotationRepository = rotationRepo.NewRepository(db)
		scheduleConfigRepository = scheduleConfigRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Инициализируем сервисы
	allocatorSvc := allocationService.NewService()
	rotationSvc := rotationService.NewService(rotationRepository, log)
	scheduleConfigSvc := scheduleConfigService.NewService(scheduleConfigRepository, log)
	admissionSvc := admissionService.NewService(admissionRepository, log)
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		slotRepository,
		entitlementRepository,
		txMgr,
		publisher,
		log,
	)

	// Инициализируем use cases
	getAvailabilityUseCase := getAvailabilityUC.NewUseCase(
		slotRepository,
		shiftRepository,
		scheduleConfigSvc,
		slotLocker,
		rotationSvc,
		resourceClient,
		log,
	)
	createBookingUseCase := createBookingUC.NewUseCase(
		slotRepository,
		shiftRepository,
		bookingRepository,
		entitlementRepository,
		scheduleConfigSvc,
		allocatorSvc,
		rotationSvc,
		slotLocker,
		publisher,
		resourceClient,
		txMgr,
		log,
	)

	// Бизнес-метрики в обработчиках опциональны
	var (
		bookingMetrics   createBookingHandler.Metrics
		lockMetrics      acquireLockHandler.Metrics
		admissionMetrics scanAdmissionHandler.Metrics
	)
	if cfg.Metrics.Enabled {
		bookingMetrics = metricsCollector
		lockMetrics = metricsCollector
		admissionMetrics = metricsCollector
	}

	// Инициализируем handlers
	getAvailability := getAvailabilityHandler.NewHandler(getAvailabilityUseCase, log)
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, bookingMetrics, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	getBookingGroup := getBookingGroupHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	updateBookingStatus := updateBookingStatusHandler.NewHandler(bookingSvc, log)
	getUserBookings := getUserBookingsHandler.NewHandler(bookingSvc, log)
	getTenantBookings := getTenantBookingsHandler.NewHandler(bookingSvc, log)
	getScheduleConfig := getScheduleConfigHandler.NewHandler(scheduleConfigSvc, log)
	updateScheduleConfig := updateScheduleConfigHandler.NewHandler(scheduleConfigSvc, log)
	acquireLock := acquireLockHandler.NewHandler(slotLocker, scheduleConfigSvc, lockMetrics, log)
	releaseLock := releaseLockHandler.NewHandler(slotLocker, log)
	scanAdmission := scanAdmissionHandler.NewHandler(admissionSvc, admissionMetrics, log)

	// Ежедневная материализация слотов для resource-driven тенантов
	var cronRunner *cron.Cron
	if cfg.Materialization.Enabled {
		cronRunner = cron.New()
		job := materializeJob.NewJob(scheduleConfigRepository, resourceClient, log)
		if _, err := cronRunner.AddJob(cfg.Materialization.Spec, job); err != nil {
			log.Fatal("Failed to schedule materialization job: %v", err)
		}
		cronRunner.Start()
		log.Info("Materialization job scheduled (spec=%q)", cfg.Materialization.Spec)
	}

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.Auth)

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// --- Доступность и конфигурация расписания ---
	api.HandleFunc("/tenants/{tenantId}/services/{serviceId}/availability",
		getAvailability.Handle).Methods(http.MethodGet)
	api.HandleFunc("/tenants/{tenantId}/services/{serviceId}/schedule-config",
		getScheduleConfig.Handle).Methods(http.MethodGet)
	api.HandleFunc("/tenants/{tenantId}/services/{serviceId}/schedule-config",
		updateScheduleConfig.Handle).Methods(http.MethodPut)

	// --- Блокировки слотов ---
	api.HandleFunc("/slots/{slotId}/lock", acquireLock.Handle).Methods(http.MethodPost)
	api.HandleFunc("/slots/{slotId}/lock", releaseLock.Handle).Methods(http.MethodDelete)

	// --- Бронирования ---
	api.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)
	api.HandleFunc("/bookings/groups/{groupId}", getBookingGroup.Handle).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)
	api.HandleFunc("/bookings/{bookingId}/status", updateBookingStatus.Handle).Methods(http.MethodPatch)
	api.HandleFunc("/users/{userId}/bookings", getUserBookings.Handle).Methods(http.MethodGet)
	api.HandleFunc("/tenants/{tenantId}/bookings", getTenantBookings.Handle).Methods(http.MethodGet)

	// --- Коды допуска ---
	api.HandleFunc("/admissions/scan", scanAdmission.Handle).Methods(http.MethodPost)

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

	// Останавливаем cron и сбор метрик connection pool
	if cronRunner != nil {
		cronRunner.Stop()
		log.Info("Materialization job stopped")
	}
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
