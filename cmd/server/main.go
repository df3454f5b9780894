package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/pdv/internal/config"
	"github.com/Skotchmaster/pdv/internal/es"
	"github.com/Skotchmaster/pdv/internal/handlers"
	"github.com/Skotchmaster/pdv/internal/logging"
	"github.com/Skotchmaster/pdv/internal/middleware/loggingmw"
	"github.com/Skotchmaster/pdv/internal/mykafka"
	"github.com/Skotchmaster/pdv/internal/service"
	httpserver "github.com/Skotchmaster/pdv/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	config.MustNonEmpty(configuration.JWT_SECRET, "JWT_SECRET")

	logger := logging.New(configuration.LOG_LEVEL)
	slog.SetDefault(logger)

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("DB init failed: %v", err)
	}

	jwtSecret := []byte(configuration.JWT_SECRET)

	prod := mykafka.NewProducer(config.CSV(configuration.KAFKA_ADDRESS))

	var indexer *es.ProductIndexer
	var searchHandler *handlers.SearchHandler
	if configuration.ES_URL != "" {
		esClient, err := es.NewClient(configuration)
		if err != nil {
			log.Fatal(err)
		}
		indexer = &es.ProductIndexer{Client: esClient, IndexName: "products"}
		searchHandler = &handlers.SearchHandler{ES: esClient, Index: "products"}
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		DB:             db,
		JWTSecret:      jwtSecret,
		AuthHandler:    &handlers.AuthHandler{DB: db, JWTSecret: jwtSecret, Producer: prod},
		ProductHandler: &handlers.ProductHandler{DB: db, Producer: prod, Indexer: indexer},
		SaleHandler:    &handlers.SaleHandler{DB: db, Svc: &service.SaleService{DB: db}, Producer: prod},
		ReportHandler:  &handlers.ReportHandler{DB: db},
		SearchHandler:  searchHandler,
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", configuration.SERVER_PORT),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
