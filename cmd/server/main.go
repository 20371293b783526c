package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/panemexpress/rail-booking/internal/config"
	"github.com/panemexpress/rail-booking/internal/database"
	"github.com/panemexpress/rail-booking/internal/handler"
	"github.com/panemexpress/rail-booking/internal/logger"
	"github.com/panemexpress/rail-booking/internal/mailer"
	"github.com/panemexpress/rail-booking/internal/middleware"
	"github.com/panemexpress/rail-booking/internal/queue"
	"github.com/panemexpress/rail-booking/internal/repository"
	"github.com/panemexpress/rail-booking/internal/router"
	"github.com/panemexpress/rail-booking/internal/service"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Env, cfg.LogLevel)
	log := logger.Module("main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("open database")
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		log.WithError(err).Fatal("migrate schema")
	}
	if n, err := database.SeedRoutes(ctx, db, database.DefaultRoutes); err != nil {
		log.WithError(err).Fatal("seed routes")
	} else if n > 0 {
		log.WithField("routes", n).Info("seeded route network")
	}

	rdb := config.NewRedisClient()
	if rdb != nil {
		defer rdb.Close()
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	routes := repository.NewRouteRepo(db)
	bookings := repository.NewBookingRepo(db)

	ncfg := config.LoadNotifyConfig()
	notifier, closeNotifier := buildNotifier(ctx, ncfg)
	defer closeNotifier()

	svc := service.NewBookingService(routes, bookings, users, notifier,
		service.WithDispatcher(service.NewDispatcher(ncfg.Timeout)))

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewRequestValidator()
	e.Use(middleware.RequestID())
	e.Use(middleware.AccessLog())
	e.Use(echomw.Recover())

	router.Register(e, router.Deps{
		JWTSecret: cfg.JWTSecret,
		DB:        db,
		Redis:     rdb,
		Cache:     config.LoadCacheConfig(),
		RateLimit: config.LoadRateLimitConfig(),
		Auth:      handler.NewAuthHandler(cfg, users, tokens),
		Bookings:  handler.NewBookingHandler(svc),
	})

	go func() {
		addr := ":" + cfg.Port
		log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env, "notify": ncfg.Mode}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http shutdown")
	}
	if err := svc.Dispatcher().Wait(shutdownCtx); err != nil {
		log.WithError(err).Warn("pending notifications abandoned")
	}
}

// buildNotifier wires the notification path for the configured mode.  The
// returned func releases the broker connection and the audit file.
func buildNotifier(ctx context.Context, ncfg config.NotifyConfig) (service.Notifier, func()) {
	log := logger.Module("main")
	audit := logger.RotatingFile(ncfg.AuditLogPath)
	m := mailer.New(mailer.Config{
		Host:     ncfg.SMTPHost,
		Port:     ncfg.SMTPPort,
		Username: ncfg.SMTPUsername,
		Password: ncfg.SMTPPassword,
		From:     ncfg.MailFrom,
		FromName: ncfg.MailFromName,
		Timeout:  ncfg.Timeout,
	})
	sinks := []queue.Sink{&queue.AuditLog{W: audit}, queue.MailSink{Sender: m}}
	closers := []io.Closer{audit}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i].Close()
		}
	}

	switch ncfg.Mode {
	case config.NotifyDirect:
		return &queue.LocalNotifier{Sinks: sinks}, closeAll
	case config.NotifyLog:
		return &queue.LocalNotifier{Sinks: sinks[:1]}, closeAll
	}

	pub := queue.NewPublisher(ncfg.AMQPURL)
	closers = append(closers, pub)
	if ncfg.RunConsumer {
		go func() {
			if err := queue.NewConsumer(ncfg.AMQPURL, sinks...).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.WithError(err).Error("notification consumer stopped")
			}
		}()
	}
	return pub, closeAll
}
