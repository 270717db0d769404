package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tendermarket/internal/config"
	"tendermarket/internal/controller"
	"tendermarket/internal/logging"
	"tendermarket/internal/repository"
	"tendermarket/internal/router"
	"tendermarket/internal/service"

	"go.uber.org/zap"
)

type App struct {
	repo       *repository.Repository
	service    *service.Service
	controller *controller.Controller
	log        *zap.Logger
	stopSig    chan os.Signal
	cfg        *config.Config

	Done chan struct{}
}

type option func(*App)

func WithConfig(cfg *config.Config) option {
	return func(app *App) {
		app.cfg = cfg
	}
}

func WithLogger(log *zap.Logger) option {
	return func(app *App) {
		app.log = log
	}
}

func NewApp(opts ...option) (*App, error) {
	var err error

	app := &App{
		stopSig: make(chan os.Signal, 2),
		Done:    make(chan struct{}),
	}

	for _, opt := range opts {
		opt(app)
	}

	if app.cfg == nil {
		cfg, err := config.NewConfig()
		if err != nil {
			return nil, err
		}
		app.cfg = cfg
	}

	if app.log == nil {
		app.log, err = logging.NewLogger("tendermarket", app.cfg.LogLevel)
		if err != nil {
			return nil, err
		}
	}

	app.repo, err = repository.NewRepository(nil, &app.cfg.PostgresConfig)
	if err != nil {
		return nil, err
	}

	app.service = service.NewService(app.repo)
	app.controller = controller.NewController(app.service, app.log)

	return app, nil
}

func (app *App) Run() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		signal.Notify(app.stopSig, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
		sig := <-app.stopSig
		app.log.Info("received signal", zap.String("signal", sig.String()))
		cancel()
	}()

	server := http.Server{
		Addr:         app.cfg.ServerAddress,
		Handler:      router.NewRouter(app.controller, app.log),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			app.log.Error("http server error", zap.Error(err))
		}
	}()

	app.log.Info("server started", zap.String("address", app.cfg.ServerAddress))
	<-ctx.Done()

	timeout, tcancel := context.WithTimeout(context.Background(), app.cfg.ShutdownTimeout)
	defer tcancel()
	app.log.Info("shutting down http server")
	server.Shutdown(timeout)

	app.log.Info("closing repository")
	err := app.repo.Close()
	if err != nil {
		app.log.Error("repository closing error", zap.Error(err))
	}

	close(app.Done)
	app.log.Info("exiting app")
}

// Stop triggers the same teardown path as an OS signal.
func (app *App) Stop() {
	app.stopSig <- syscall.SIGTERM
}
