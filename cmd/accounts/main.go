package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/viewtube/accounts/internal/config"
	"github.com/viewtube/accounts/internal/events"
	"github.com/viewtube/accounts/internal/httpserver"
	"github.com/viewtube/accounts/internal/logging"
	"github.com/viewtube/accounts/internal/media"
	"github.com/viewtube/accounts/internal/models"
	"github.com/viewtube/accounts/internal/repo"
	"github.com/viewtube/accounts/internal/search"
	"github.com/viewtube/accounts/internal/service"
	"github.com/viewtube/accounts/pkg/db"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	gormDB, err := db.Open(initCtx, cfg.DSN())
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	if err := gormDB.AutoMigrate(
		&models.User{}, &models.Video{}, &models.Subscription{}, &models.WatchEntry{},
	); err != nil {
		log.Fatalf("db migrate error: %v", err)
	}

	store, err := media.NewS3Store(initCtx, media.S3Config{
		Endpoint:   cfg.S3Endpoint,
		Region:     cfg.S3Region,
		Bucket:     cfg.S3Bucket,
		AccessKey:  cfg.S3AccessKey,
		SecretKey:  cfg.S3SecretKey,
		PublicBase: cfg.MediaPublicBase,
	})
	if err != nil {
		log.Fatalf("media store init error: %v", err)
	}

	svc := &service.AccountService{
		Users:         &repo.UserRepo{DB: gormDB},
		Media:         store,
		JWTSecret:     cfg.JWTSecret,
		RefreshSecret: cfg.RefreshSecret,
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
	}

	if brokers := cfg.KafkaBrokers(); len(brokers) > 0 {
		producer := events.NewProducer(brokers, cfg.KafkaTopic)
		defer producer.Close()
		svc.Events = producer
	} else {
		logger.Warn("KAFKA_ADDRESS not set, account events disabled")
	}

	if cfg.ESURL != "" {
		index, err := search.NewIndex(search.Config{
			URL:      cfg.ESURL,
			User:     cfg.ESUser,
			Password: cfg.ESPassword,
		})
		if err != nil {
			log.Fatalf("search index init error: %v", err)
		}
		svc.Search = index
	} else {
		logger.Warn("ES_URL not set, channel indexing disabled")
	}

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second
	e.Use(logging.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		Account: &httpserver.AccountHTTP{
			Svc:     svc,
			TempDir: cfg.UploadTempDir,
		},
		JWTSecret: cfg.JWTSecret,
	})

	go func() {
		if err := e.Start(cfg.HTTPAddr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("echo start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("echo shutdown: %v", err)
	}
}
