// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "printer-service/docs"
	"printer-service/internal/config"
	"printer-service/internal/discovery/serial"
	"printer-service/internal/discovery/usb"
	"printer-service/internal/driver"
	"printer-service/internal/handler"
	"printer-service/internal/repository"
	"printer-service/internal/routes"
	"printer-service/internal/service"
	"printer-service/internal/utils"
)

// Application represents the main application
type Application struct {
	config *config.Config
	logger *zap.Logger
	server *http.Server
	router *routes.Router

	modelRegistry    *driver.Registry
	eventBus         *handler.EventBus
	printerService   *service.PrinterService
	discoveryService *service.DiscoveryService
	operationService *service.OperationService

	stopMonitor context.CancelFunc
}

// @title Printer Service API
// @version 1.0.0
// @description Thermal receipt printer driver: styled text, paper feed and raster images over serial, TCP or USB

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8085
// @BasePath /api/v1
func main() {
	configPath := flag.String("config", "", "path to config file (default: search ./, ./configs, /etc/printer-service)")
	flag.Parse()

	app, err := NewApplication(*configPath)
	if err != nil {
		fmt.Printf("Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	if err := app.Start(); err != nil {
		app.logger.Fatal("Failed to start application", zap.Error(err))
	}
}

// NewApplication creates a new application instance
func NewApplication(configPath string) (*Application, error) {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := utils.NewLogger(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	serviceLogger := utils.NewServiceLogger(logger, "printer-service")
	serviceLogger.LogServiceStart(cfg.App.Version, cfg)

	app := &Application{
		config: cfg,
		logger: logger,
	}

	app.initializeModelRegistry()

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.initializeServer()

	return app, nil
}

// initializeModelRegistry registers the supported printer models
func (app *Application) initializeModelRegistry() {
	app.modelRegistry = driver.NewRegistry(app.logger)
	driver.RegisterDefaultModels(app.modelRegistry, app.logger)

	app.logger.Info("Model registry initialized",
		zap.Int("registered_models", len(app.modelRegistry.List())),
	)
}

// initializeServices creates the event bus, the printer service, the
// operation history and port discovery
func (app *Application) initializeServices() error {
	app.eventBus = handler.NewEventBus(app.logger)
	go app.eventBus.Start()

	operationRepo := repository.NewMemoryOperationRepository(app.config.Printer.HistorySize, app.logger)

	printerService, err := service.NewPrinterService(
		&app.config.Printer,
		app.modelRegistry,
		app.eventBus,
		app.logger,
		service.WithOperationRepository(operationRepo),
	)
	if err != nil {
		return err
	}
	app.printerService = printerService
	app.operationService = service.NewOperationService(operationRepo, app.logger)

	app.discoveryService = service.NewDiscoveryService(app.logger,
		serial.NewScanner(app.logger, nil),
		usb.NewScanner(app.logger),
	)

	app.logger.Info("Services initialized successfully")
	return nil
}

// initializeServer sets up the HTTP server
func (app *Application) initializeServer() {
	app.router = routes.NewRouter(
		app.config,
		app.logger,
		app.printerService,
		app.discoveryService,
		app.operationService,
		app.eventBus,
	)

	app.server = &http.Server{
		Addr:         app.config.GetServerAddr(),
		Handler:      app.router.SetupRouter(),
		ReadTimeout:  app.config.Server.ReadTimeout,
		WriteTimeout: app.config.Server.WriteTimeout,
		IdleTimeout:  app.config.Server.IdleTimeout,
	}

	app.logger.Info("HTTP server initialized",
		zap.String("address", app.config.GetServerAddr()),
		zap.Bool("tls_enabled", app.config.Server.TLS.Enabled),
	)
}

// connectPrinter makes the first connection. A printer that is off at
// startup is not fatal; the monitor keeps trying.
func (app *Application) connectPrinter(ctx context.Context) {
	if err := app.printerService.Connect(ctx); err != nil {
		app.logger.Warn("Printer not available at startup", zap.Error(err))
		return
	}
	app.logger.Info("Printer connected")
}

// startPrinterMonitoring reconnects an offline printer every interval
func (app *Application) startPrinterMonitoring(ctx context.Context) {
	interval := app.config.Printer.HealthCheckInterval
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	app.logger.Info("Printer monitoring started", zap.Duration("interval", interval))

	for {
		select {
		case <-ticker.C:
			if app.printerService.Ready() {
				continue
			}
			app.connectPrinter(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// waitForShutdown waits for shutdown signal and performs graceful shutdown
func (app *Application) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	app.logger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	app.shutdown()
}

// shutdown performs graceful shutdown
func (app *Application) shutdown() {
	serviceLogger := utils.NewServiceLogger(app.logger, "printer-service")
	serviceLogger.LogServiceStop("shutdown signal received")

	app.stopMonitor()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		app.logger.Info("HTTP server stopped")
	}

	if err := app.printerService.Close(); err != nil {
		app.logger.Error("Printer close error", zap.Error(err))
	} else {
		app.logger.Info("Printer session closed")
	}

	app.router.Close()
	app.eventBus.Stop()

	app.logger.Info("Application shutdown completed")

	if err := utils.CloseLogger(app.logger); err != nil {
		fmt.Printf("Logger close error: %v\n", err)
	}
}

// Start serves HTTP until a shutdown signal arrives
func (app *Application) Start() error {
	go func() {
		app.logger.Info("Starting HTTP server",
			zap.String("address", app.server.Addr),
		)

		var err error
		if app.config.Server.TLS.Enabled {
			err = app.server.ListenAndServeTLS(
				app.config.Server.TLS.CertFile,
				app.config.Server.TLS.KeyFile,
			)
		} else {
			err = app.server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	app.stopMonitor = cancel

	app.connectPrinter(ctx)
	go app.startPrinterMonitoring(ctx)

	app.waitForShutdown()

	return nil
}
