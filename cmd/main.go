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

	cancelBookingHandler "github.com/vkotlyarr/VF-BookingEngine/internal/api/handlers/cancel_booking"
	createBookingHandler "github.com/vkotlyarr/VF-BookingEngine/internal/api/handlers/create_booking"
	createBulkBookingHandler "github.com/vkotlyarr/VF-BookingEngine/internal/api/handlers/create_bulk_booking"
	generateSlotsHandler "github.com/vkotlyarr/VF-BookingEngine/internal/api/handlers/generate_slots"
	getAvailableSlotsHandler "github.com/vkotlyarr/VF-BookingEngine/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/vkotlyarr/VF-BookingEngine/internal/api/handlers/get_booking"
	getTenantBookingsHandler "github.com/vkotlyarr/VF-BookingEngine/internal/api/handlers/get_tenant_bookings"
	getTicketHandler "github.com/vkotlyarr/VF-BookingEngine/internal/api/handlers/get_ticket"
	rescheduleBookingHandler "github.com/vkotlyarr/VF-BookingEngine/internal/api/handlers/reschedule_booking"
	scanTicketHandler "github.com/vkotlyarr/VF-BookingEngine/internal/api/handlers/scan_ticket"
	setSlotAvailabilityHandler "github.com/vkotlyarr/VF-BookingEngine/internal/api/handlers/set_slot_availability"
	tenantSettingsHandler "github.com/vkotlyarr/VF-BookingEngine/internal/api/handlers/tenant_settings"
	updateBookingHandler "github.com/vkotlyarr/VF-BookingEngine/internal/api/handlers/update_booking"
	"github.com/vkotlyarr/VF-BookingEngine/internal/api/middleware"
	"github.com/vkotlyarr/VF-BookingEngine/internal/config"
	bookingRepo "github.com/vkotlyarr/VF-BookingEngine/internal/infra/storage/booking"
	employeeRepo "github.com/vkotlyarr/VF-BookingEngine/internal/infra/storage/employee"
	outboxRepo "github.com/vkotlyarr/VF-BookingEngine/internal/infra/storage/outbox"
	shiftRepo "github.com/vkotlyarr/VF-BookingEngine/internal/infra/storage/shift"
	slotRepo "github.com/vkotlyarr/VF-BookingEngine/internal/infra/storage/slot"
	settingsRepo "github.com/vkotlyarr/VF-BookingEngine/internal/infra/storage/tenantsettings"
	invoiceServiceClient "github.com/vkotlyarr/VF-BookingEngine/internal/integrations/invoiceservice"
	notifyServiceClient "github.com/vkotlyarr/VF-BookingEngine/internal/integrations/notifyservice"
	"github.com/vkotlyarr/VF-BookingEngine/internal/service/assignment"
	bookingsService "github.com/vkotlyarr/VF-BookingEngine/internal/service/bookings"
	settingsService "github.com/vkotlyarr/VF-BookingEngine/internal/service/settings"
	slotsService "github.com/vkotlyarr/VF-BookingEngine/internal/service/slots"
	ticketsService "github.com/vkotlyarr/VF-BookingEngine/internal/service/tickets"
	cancelBookingUC "github.com/vkotlyarr/VF-BookingEngine/internal/usecase/cancel_booking"
	createBookingUC "github.com/vkotlyarr/VF-BookingEngine/internal/usecase/create_booking"
	createBulkBookingUC "github.com/vkotlyarr/VF-BookingEngine/internal/usecase/create_bulk_booking"
	rescheduleBookingUC "github.com/vkotlyarr/VF-BookingEngine/internal/usecase/reschedule_booking"
	scanTicketUC "github.com/vkotlyarr/VF-BookingEngine/internal/usecase/scan_ticket"
	"github.com/vkotlyarr/VF-BookingEngine/internal/worker"
	"github.com/vkotlyarr/VF-BookingEngine/pkg/dbmetrics"
	"github.com/vkotlyarr/VF-BookingEngine/pkg/logger"
	"github.com/vkotlyarr/VF-BookingEngine/pkg/metrics"
	"github.com/vkotlyarr/VF-BookingEngine/pkg/simpletxmanager"
	"github.com/vkotlyarr/VF-BookingEngine/pkg/txmanager"
)

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

	log.Info("Starting VF-BookingEngine...")
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

	// Инициализируем интеграционных клиентов
	invoiceClient := invoiceServiceClient.NewClient(
		cfg.InvoiceService.URL,
		time.Duration(cfg.InvoiceService.Timeout)*time.Second,
		log,
	)
	notifyClient := notifyServiceClient.NewClient(
		cfg.NotifyService.URL,
		time.Duration(cfg.NotifyService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (InvoiceService=%s timeout=%ds, NotifyService=%s timeout=%ds)",
		cfg.InvoiceService.URL, cfg.InvoiceService.Timeout, cfg.NotifyService.URL, cfg.NotifyService.Timeout)

	// Инициализируем репозитории (с метриками или без)
	var (
		bookingRepository  *bookingRepo.Repository
		slotRepository     *slotRepo.Repository
		shiftRepository    *shiftRepo.Repository
		employeeRepository *employeeRepo.Repository
		settingsRepository *settingsRepo.Repository
		outboxRepository   *outboxRepo.Repository
	)

	type TxManager interface {
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		bookingRepository = bookingRepo.NewRepository(wrappedDB)
		slotRepository = slotRepo.NewRepository(wrappedDB)
		shiftRepository = shiftRepo.NewRepository(wrappedDB)
		employeeRepository = employeeRepo.NewRepository(wrappedDB)
		settingsRepository = settingsRepo.NewRepository(wrappedDB)
		outboxRepository = outboxRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		bookingRepository = bookingRepo.NewRepository(db)
		slotRepository = slotRepo.NewRepository(db)
		shiftRepository = shiftRepo.NewRepository(db)
		employeeRepository = employeeRepo.NewRepository(db)
		settingsRepository = settingsRepo.NewRepository(db)
		outboxRepository = outboxRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Инициализируем сервисы
	resolver := assignment.NewResolver(
		employeeRepository,
		shiftRepository,
		bookingRepository,
		log,
	)
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		slotRepository,
		txMgr,
		log,
	)
	slotSvc := slotsService.NewService(
		slotRepository,
		shiftRepository,
		txMgr,
		log,
	)
	ticketSvc := ticketsService.NewService(
		bookingRepository,
		slotRepository,
		log,
	)
	settingsSvc := settingsService.NewService(settingsRepository, log)

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		slotRepository,
		shiftRepository,
		bookingRepository,
		settingsRepository,
		outboxRepository,
		resolver,
		txMgr,
		log,
	)
	createBulkBookingUseCase := createBulkBookingUC.NewUseCase(
		slotRepository,
		shiftRepository,
		bookingRepository,
		settingsRepository,
		outboxRepository,
		resolver,
		txMgr,
		log,
	)
	cancelBookingUseCase := cancelBookingUC.NewUseCase(
		bookingRepository,
		slotRepository,
		txMgr,
		log,
	)
	rescheduleBookingUseCase := rescheduleBookingUC.NewUseCase(
		bookingRepository,
		slotRepository,
		shiftRepository,
		settingsRepository,
		outboxRepository,
		resolver,
		txMgr,
		log,
	)
	scanTicketUseCase := scanTicketUC.NewUseCase(
		bookingRepository,
		txMgr,
		log,
	)

	// Инициализируем handlers
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	createBulkBooking := createBulkBookingHandler.NewHandler(createBulkBookingUseCase, log)
	cancelBooking := cancelBookingHandler.NewHandler(cancelBookingUseCase, log)
	rescheduleBooking := rescheduleBookingHandler.NewHandler(rescheduleBookingUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	getTenantBookings := getTenantBookingsHandler.NewHandler(bookingSvc, log)
	updateBooking := updateBookingHandler.NewHandler(bookingSvc, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(slotSvc, log)
	generateSlots := generateSlotsHandler.NewHandler(slotSvc, log)
	setSlotAvailability := setSlotAvailabilityHandler.NewHandler(slotSvc, log)
	tenantSettings := tenantSettingsHandler.NewHandler(settingsSvc, log)
	getTicket := getTicketHandler.NewHandler(ticketSvc, log)
	scanTicket := scanTicketHandler.NewHandler(scanTicketUseCase, log)

	// Запускаем диспетчер outbox-событий
	dispatcher := worker.NewDispatcher(
		outboxRepository,
		bookingRepository,
		invoiceClient,
		notifyClient,
		txMgr,
		log,
		time.Duration(cfg.Worker.PollIntervalSeconds)*time.Second,
		cfg.Worker.BatchSize,
		cfg.Worker.MaxAttempts,
	)
	dispatcher.Start()
	log.Info("Outbox dispatcher started (interval=%ds, batch=%d, max_attempts=%d)",
		cfg.Worker.PollIntervalSeconds, cfg.Worker.BatchSize, cfg.Worker.MaxAttempts)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		log.Info("HTTP metrics middleware enabled")
	}

	// Metrics endpoint (публичный, без аутентификации)
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Доступные слоты тенанта
	api.HandleFunc("/tenants/{tenantId}/available-slots",
		getAvailableSlots.Handle).Methods(http.MethodGet)

	// Настройки планирования тенанта
	api.HandleFunc("/tenants/{tenantId}/settings",
		tenantSettings.HandleGet).Methods(http.MethodGet)

	// Билеты: просмотр, QR и PDF по коду или голому uuid
	api.HandleFunc("/tickets/{ticketRef}", getTicket.Handle).Methods(http.MethodGet)
	api.HandleFunc("/tickets/{ticketRef}/qr", getTicket.HandleQR).Methods(http.MethodGet)
	api.HandleFunc("/tickets/{ticketRef}/pdf", getTicket.HandlePDF).Methods(http.MethodGet)

	// ============================================================
	// SCANNER ROUTES (требуют Bearer JWT сканера)
	// ============================================================

	scanner := api.PathPrefix("").Subrouter()
	scanner.Use(middleware.ScannerAuth(cfg.Scanner.JWTSecret))

	// Гашение билета
	scanner.HandleFunc("/tickets/scan", scanTicket.Handle).Methods(http.MethodPost)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	// Создание бронирования
	protected.HandleFunc("/tenants/{tenantId}/bookings",
		createBooking.Handle).Methods(http.MethodPost)

	// Групповое бронирование: несколько слотов атомарно, один билет
	protected.HandleFunc("/tenants/{tenantId}/bookings/bulk",
		createBulkBooking.Handle).Methods(http.MethodPost)

	// Список бронирований тенанта
	protected.HandleFunc("/tenants/{tenantId}/bookings",
		getTenantBookings.Handle).Methods(http.MethodGet)

	// Получение бронирования по ID
	protected.HandleFunc("/tenants/{tenantId}/bookings/{bookingId}",
		getBooking.Handle).Methods(http.MethodGet)

	// Редактирование бронирования и переходы статуса
	protected.HandleFunc("/tenants/{tenantId}/bookings/{bookingId}",
		updateBooking.Handle).Methods(http.MethodPatch)

	// Отмена бронирования
	protected.HandleFunc("/tenants/{tenantId}/bookings/{bookingId}/cancel",
		cancelBooking.Handle).Methods(http.MethodPatch)

	// Перенос бронирования в другой слот
	protected.HandleFunc("/tenants/{tenantId}/bookings/{bookingId}/reschedule",
		rescheduleBooking.Handle).Methods(http.MethodPost)

	// Группа бронирований по общему идентификатору
	protected.HandleFunc("/tenants/{tenantId}/booking-groups/{groupId}",
		getBooking.HandleGroup).Methods(http.MethodGet)

	// --- Управление тенантом ---
	// Генерация слотов из смены
	protected.HandleFunc("/tenants/{tenantId}/shifts/{shiftId}/slots",
		generateSlots.Handle).Methods(http.MethodPost)

	// Генерация слотов сразу по всем сменам услуги
	protected.HandleFunc("/tenants/{tenantId}/services/{serviceId}/slots",
		generateSlots.HandleForService).Methods(http.MethodPost)

	// Ручное закрытие и открытие слота
	protected.HandleFunc("/tenants/{tenantId}/slots/{slotId}/availability",
		setSlotAvailability.Handle).Methods(http.MethodPatch)

	// Обновление настроек планирования
	protected.HandleFunc("/tenants/{tenantId}/settings",
		tenantSettings.HandleUpdate).Methods(http.MethodPut)

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

	// Останавливаем диспетчер, чтобы не бросать события на середине батча
	dispatcher.Stop()
	log.Info("Outbox dispatcher stopped")

	// Останавливаем сбор метрик connection pool
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
