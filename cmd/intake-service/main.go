package main

import (
	"database/sql"
	"log"
	"net/http"

	_ "github.com/lib/pq"

	"github.com/resolvedesk/resolvedesk/internal/api"
	"github.com/resolvedesk/resolvedesk/internal/classifier"
	"github.com/resolvedesk/resolvedesk/internal/config"
	"github.com/resolvedesk/resolvedesk/internal/credentials"
	"github.com/resolvedesk/resolvedesk/internal/failover"
	"github.com/resolvedesk/resolvedesk/internal/notify"
	"github.com/resolvedesk/resolvedesk/internal/provider"
	"github.com/resolvedesk/resolvedesk/internal/router"
	"github.com/resolvedesk/resolvedesk/internal/service"
	"github.com/resolvedesk/resolvedesk/internal/store"
	"github.com/resolvedesk/resolvedesk/internal/translate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Printf("warning: database unreachable: %v", err)
	}
	st := store.NewPGStore(db)

	pool := credentials.NewPool(cfg.ProviderAPIKeys, cfg.ProviderDenylist)
	if pool.Size() == 0 {
		log.Printf("warning: no provider credentials configured; classification will use the local heuristic")
	} else {
		log.Printf("provider credential pool initialized with %d keys", pool.Size())
	}

	client, err := provider.NewClient(provider.ClientConfig{
		BaseURL: cfg.ProviderBaseURL,
		Model:   cfg.ProviderModel,
		Timeout: cfg.ProviderTimeout,
	})
	if err != nil {
		log.Fatalf("provider client: %v", err)
	}

	var publisher notify.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := notify.NewKafkaProducer(notify.KafkaProducerConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
		})
		if err != nil {
			log.Fatalf("kafka producer: %v", err)
		}
		defer producer.Close()
		publisher = producer
	} else {
		log.Printf("KAFKA_BROKERS unset; notification events disabled, rows only")
	}

	exec := failover.New(pool)
	sink := notify.NewStoreSink(st, publisher)
	cls := classifier.New(exec, client)
	intake := service.NewIntakeService(st,
		translate.New(exec, client),
		cls,
		router.New(st, sink),
		sink)

	srv := api.NewServer(intake, cls, st)
	log.Printf("intake service listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, srv.Router()); err != nil {
		log.Fatalf("server: %v", err)
	}
}
