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

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	cancelAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/cancel_appointment"
	completeAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/complete_appointment"
	createAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/create_appointment"
	createBlockedTimeHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/create_blocked_time"
	createLocationHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/create_location"
	deleteBlockedTimeHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/delete_blocked_time"
	deleteProviderScheduleHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/delete_provider_schedule"
	getAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_appointment"
	getAvailabilityHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_availability"
	getProviderAppointmentsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_provider_appointments"
	getProviderScheduleHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_provider_schedule"
	rescheduleAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/reschedule_appointment"
	updateBusinessHoursHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/update_business_hours"
	updateProviderScheduleHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/update_provider_schedule"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/config"
	rulesCache "github.com/m04kA/SMC-AppointmentService/internal/infra/cache/rules"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	blockedTimeRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/blockedtime"
	locationRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/location"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/storage/migrations"
	scheduleRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/schedule"
	catalogServiceClient "github.com/m04kA/SMC-AppointmentService/internal/integrations/catalogservice"
	customerServiceClient "github.com/m04kA/SMC-AppointmentService/internal/integrations/customerservice"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/notifier"
	appointmentsService "github.com/m04kA/SMC-AppointmentService/internal/service/appointments"
	scheduleService "github.com/m04kA/SMC-AppointmentService/internal/service/schedule"
	bookAppointmentUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/book_appointment"
	getAvailabilityUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/get_availability"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/metrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/txmanager"
)

const txRetryBackoff = 25 * time.Millisecond

func main() {
	// Загружаем конфигурацию
	cfgPath := config.Path()
	cfg, err := config.Load(cfgPath)
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

	log.Info("Starting SMC-AppointmentService...")
	log.Info("Configuration loaded from %s", cfgPath)

	// Метрики (nil коллектор - метрики отключены, все методы безопасны)
	var metricsCollector *metrics.Metrics
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

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)

	if cfg.Database.AutoMigrate {
		migrateCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
		err := migrations.Up(migrateCtx, wrappedDB, log)
		cancel()
		if err != nil {
			log.Fatal("Failed to apply migrations: %v", err)
		}
	}

	// Repositories
	appointmentRepository := appointmentRepo.NewRepository(wrappedDB)
	scheduleRepository := scheduleRepo.NewRepository(wrappedDB)
	locationRepository := locationRepo.NewRepository(wrappedDB)
	blockedTimeRepository := blockedTimeRepo.NewRepository(wrappedDB)
	txMgr := txmanager.NewTransactionManager(wrappedDB,
		txmanager.WithRetries(cfg.Booking.TxMaxRetries, txRetryBackoff))

	// Кэш правил расписания (только путь чтения доступности)
	var redisClient redis.Cmdable
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := client.Ping(pingCtx).Err(); err != nil {
			log.Warn("Redis %s is not reachable, rules cache will fall back to database: %v", cfg.Redis.Addr, err)
		}
		cancel()
		redisClient = client
		log.Info("Rules cache enabled (redis=%s, ttl=%s)", cfg.Redis.Addr, cfg.Booking.RulesCacheTTL())
	} else {
		log.Warn("Rules cache disabled (redis.addr is empty)")
	}
	cachedRules := rulesCache.NewCache(
		redisClient,
		cfg.Booking.RulesCacheTTL(),
		scheduleRepository,
		locationRepository,
		blockedTimeRepository,
		metricsCollector,
		log,
	)

	// Интеграции
	catalogClient := catalogServiceClient.NewClient(
		cfg.CatalogService.URL,
		time.Duration(cfg.CatalogService.Timeout)*time.Second,
		log,
	)
	customerClient := customerServiceClient.NewClient(
		cfg.CustomerService.URL,
		time.Duration(cfg.CustomerService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (CatalogService=%s timeout=%ds, CustomerService=%s timeout=%ds)",
		cfg.CatalogService.URL, cfg.CatalogService.Timeout, cfg.CustomerService.URL, cfg.CustomerService.Timeout)

	eventDispatcher := notifier.NewKafkaDispatcher(notifier.Config{
		Brokers:      cfg.Kafka.Brokers,
		Topic:        cfg.Kafka.Topic,
		QueueSize:    cfg.Kafka.QueueSize,
		WriteTimeout: time.Duration(cfg.Kafka.WriteTimeout) * time.Second,
	}, log, metricsCollector)

	// Use cases
	bookAppointmentUseCase := bookAppointmentUC.NewUseCase(
		appointmentRepository,
		scheduleRepository,
		locationRepository,
		blockedTimeRepository,
		catalogClient,
		customerClient,
		txMgr,
		eventDispatcher,
		metricsCollector,
		bookAppointmentUC.Config{
			PastGrace:      cfg.Booking.PastGrace(),
			MaxAdvanceDays: cfg.Booking.MaxAdvanceDays,
			Step:           cfg.Booking.Step(),
		},
		log,
	)
	getAvailabilityUseCase := getAvailabilityUC.NewUseCase(
		cachedRules,
		cachedRules,
		cachedRules,
		appointmentRepository,
		catalogClient,
		metricsCollector,
		getAvailabilityUC.Config{
			PastGrace:        cfg.Booking.PastGrace(),
			MaxAdvanceDays:   cfg.Booking.MaxAdvanceDays,
			NextOpenScanDays: cfg.Booking.NextOpenScanDays,
			Step:             cfg.Booking.Step(),
		},
		log,
	)

	// Сервисы
	appointmentSvc := appointmentsService.NewService(appointmentRepository, txMgr, eventDispatcher, log)
	scheduleSvc := scheduleService.NewService(
		scheduleRepository,
		locationRepository,
		blockedTimeRepository,
		cachedRules,
		log,
	)

	// Handlers
	getAvailability := getAvailabilityHandler.NewHandler(getAvailabilityUseCase, log)
	createAppointment := createAppointmentHandler.NewHandler(bookAppointmentUseCase, log)
	rescheduleAppointment := rescheduleAppointmentHandler.NewHandler(bookAppointmentUseCase, log)
	getAppointment := getAppointmentHandler.NewHandler(appointmentSvc, log)
	cancelAppointment := cancelAppointmentHandler.NewHandler(appointmentSvc, log)
	completeAppointment := completeAppointmentHandler.NewHandler(appointmentSvc, log)
	getProviderAppointments := getProviderAppointmentsHandler.NewHandler(appointmentSvc, log)
	getProviderSchedule := getProviderScheduleHandler.NewHandler(scheduleSvc, log)
	updateProviderSchedule := updateProviderScheduleHandler.NewHandler(scheduleSvc, log)
	deleteProviderSchedule := deleteProviderScheduleHandler.NewHandler(scheduleSvc, log)
	updateBusinessHours := updateBusinessHoursHandler.NewHandler(scheduleSvc, log)
	createLocation := createLocationHandler.NewHandler(scheduleSvc, log)
	createBlockedTime := createBlockedTimeHandler.NewHandler(scheduleSvc, log)
	deleteBlockedTime := deleteBlockedTimeHandler.NewHandler(scheduleSvc, log)

	// Роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID, middleware.AccessLog(log))

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	r.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()
		if err := wrappedDB.PingContext(ctx); err != nil {
			log.Warn("GET /healthz - database unavailable: %v", err)
			handlers.RespondServiceUnavailable(w)
			return
		}
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	api.HandleFunc("/providers/{providerId}/availability", getAvailability.Handle).Methods(http.MethodGet)
	api.HandleFunc("/providers/{providerId}/schedule", getProviderSchedule.Handle).Methods(http.MethodGet)
	api.HandleFunc("/providers/{providerId}/appointments", getProviderAppointments.Handle).Methods(http.MethodGet)
	api.HandleFunc("/appointments/{appointmentId}", getAppointment.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Записи ---
	protected.HandleFunc("/appointments", createAppointment.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/{appointmentId}/reschedule", rescheduleAppointment.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/{appointmentId}/cancel", cancelAppointment.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/appointments/{appointmentId}/complete", completeAppointment.Handle).Methods(http.MethodPatch)

	// --- Расписание ---
	protected.HandleFunc("/providers/{providerId}/schedule/{weekday}", updateProviderSchedule.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/providers/{providerId}/schedule/{weekday}", deleteProviderSchedule.Handle).Methods(http.MethodDelete)
	protected.HandleFunc("/providers/{providerId}/locations", createLocation.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/providers/{providerId}/blocked-times", createBlockedTime.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/providers/{providerId}/blocked-times/{blockedTimeId}", deleteBlockedTime.Handle).Methods(http.MethodDelete)
	protected.HandleFunc("/business-hours/{weekday}", updateBusinessHours.Handle).Methods(http.MethodPut)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

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

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	// Дожидаемся отправки накопленных событий
	if err := eventDispatcher.Close(); err != nil {
		log.Error("Failed to close event dispatcher: %v", err)
	}

	close(stopMetricsCh)
	log.Info("Server stopped gracefully")
}
