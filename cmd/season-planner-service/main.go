package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/trimline/seasonplan/internal/archive"
	"github.com/trimline/seasonplan/internal/catalog"
	"github.com/trimline/seasonplan/internal/config"
	"github.com/trimline/seasonplan/internal/history"
	"github.com/trimline/seasonplan/internal/httpserver"
	"github.com/trimline/seasonplan/internal/progress"
	"github.com/trimline/seasonplan/internal/store"
	"github.com/trimline/seasonplan/internal/workflow"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		log.Fatalf("db ping: %v", err)
	}

	stores, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		log.Fatalf("store catalog load: %v", err)
	}
	log.Printf("loaded %d stores from %s", len(stores), cfg.CatalogPath)

	var emitter progress.Emitter
	if len(cfg.KafkaBrokers) > 0 {
		kafkaEmitter, err := progress.NewKafkaEmitter(progress.KafkaEmitterConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
		})
		if err != nil {
			log.Fatalf("kafka emitter init: %v", err)
		}
		defer kafkaEmitter.Close()
		emitter = kafkaEmitter
	} else {
		log.Printf("no kafka brokers configured, progress events disabled")
		emitter = progress.NopEmitter{}
	}

	var archiver archive.Archiver
	if cfg.S3Bucket != "" {
		s3Archiver, err := archive.NewS3Archiver(context.Background(), cfg.S3Bucket, cfg.S3Prefix)
		if err != nil {
			log.Fatalf("s3 archiver init: %v", err)
		}
		archiver = s3Archiver
	} else {
		log.Printf("no s3 bucket configured, plan archival disabled")
	}

	planStore := store.NewPGStore(db)
	orch := workflow.New(planStore, emitter, history.NewPGSource(db), stores, archiver, workflow.Config{
		MaxReforecasts:      cfg.MaxReforecasts,
		ClusterCount:        cfg.ClusterCount,
		MarkdownGranularity: cfg.MarkdownGranularity,
	})

	server := httpserver.New(planStore, orch)
	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: server.Router(),
	}

	go func() {
		log.Printf("Season planning service listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	shutdown(httpServer)
}

func shutdown(s *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
