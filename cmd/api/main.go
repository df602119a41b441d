package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/ritmoapp/ritmo-engine/internal/adapters/cache"
	adapterHTTP "github.com/ritmoapp/ritmo-engine/internal/adapters/handler/http"
	"github.com/ritmoapp/ritmo-engine/internal/adapters/notify"
	"github.com/ritmoapp/ritmo-engine/internal/adapters/repository"
	"github.com/ritmoapp/ritmo-engine/internal/core/domain"
	"github.com/ritmoapp/ritmo-engine/internal/core/services"
	"github.com/ritmoapp/ritmo-engine/internal/core/workers"
)

// dayHooks bridges the lazy daily-reset middleware to the ledger's
// login-streak touch and the flow store's checkbox prune.
type dayHooks struct {
	ledger *services.LedgerService
	flows  *services.FlowService
}

func (h *dayHooks) TouchLogin(ctx context.Context, today string) {
	h.ledger.TouchLogin(ctx, today)
}

func (h *dayHooks) ResetFlows(ctx context.Context, today string) error {
	return h.flows.ResetDaily(ctx, today)
}

func main() {
	_ = godotenv.Load()

	startTime := time.Now()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverPort := os.Getenv("PORT")
	if serverPort == "" {
		serverPort = "8080"
	}

	var db *sqlx.DB

	var flowRepo domain.FlowRepository
	var eventRepo domain.EventRepository
	var masteryRepo domain.MasteryRepository
	var workingRepo domain.WorkingRepository
	var progressRepo domain.ProgressRepository

	if dbName := os.Getenv("DB_NAME"); dbName != "" {
		dbUser := os.Getenv("DB_USER")
		dbPass := os.Getenv("DB_PASSWORD")

		dbHost := os.Getenv("DB_HOST")
		if dbHost == "" {
			dbHost = "localhost"
		}

		dbPort := os.Getenv("DB_PORT")
		if dbPort == "" {
			dbPort = "5432"
		}

		dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
			dbUser, dbPass, dbHost, dbPort, dbName)

		log.Println("Connecting to database...")

		var err error
		db, err = sqlx.Connect("pgx", dsn)
		if err != nil {
			log.Fatalf("Critical: Failed to connect to database: %v", err)
		}
		defer db.Close()

		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)

		log.Println("Database connected successfully.")

		flowRepo = repository.NewPostgresFlowRepository(db)
		eventRepo = repository.NewPostgresEventRepository(db)
		masteryRepo = repository.NewPostgresMasteryRepository(db)
		workingRepo = repository.NewPostgresWorkingRepository(db)
		progressRepo = repository.NewPostgresProgressRepository(db)
	} else {
		log.Println("No database configured, using in-memory stores.")

		flowRepo = repository.NewInMemoryFlowRepository()
		eventRepo = repository.NewInMemoryEventRepository()
		masteryRepo = repository.NewInMemoryMasteryRepository()
		workingRepo = repository.NewInMemoryWorkingRepository()
		progressRepo = repository.NewInMemoryProgressRepository()
	}

	rdb, err := cache.NewRedisClient(
		getEnv("REDIS_HOST", "localhost"),
		getEnv("REDIS_PORT", "6379"),
		os.Getenv("REDIS_PASSWORD"),
		0,
	)
	if err != nil {
		log.Printf("Redis unavailable, continuing without cache and snapshots: %v", err)
		rdb = nil
	}

	if rdb != nil {
		flowRepo = repository.NewCachedFlowRepository(flowRepo, rdb)
	}

	notifier := notify.NewLogNotifier(domain.DefaultSettings().SoundEnabled)

	ledger := services.NewLedgerService(progressRepo, masteryRepo, notifier)
	if err := ledger.Load(ctx); err != nil {
		log.Printf("Could not load persisted progress, starting fresh: %v", err)
	}

	flowService := services.NewFlowService(flowRepo, ledger)
	scheduleService := services.NewScheduleService(flowRepo, eventRepo)
	runnerService := services.NewRunnerService(flowRepo, ledger, notifier)
	pomodoroService := services.NewPomodoroService(ledger, notifier)
	masteryService := services.NewMasteryService(masteryRepo, ledger)
	workingService := services.NewWorkingService(workingRepo, ledger, notifier)
	snapshotService := services.NewSnapshotService(
		flowRepo, eventRepo, masteryRepo, workingRepo,
		ledger, pomodoroService, runnerService,
	)

	if rdb != nil {
		store := cache.NewRedisSnapshotStore(rdb)

		// In-memory stores are empty on boot; the latest snapshot is
		// the only source of prior state. With Postgres the database
		// is authoritative and the snapshot is write-only.
		if db == nil {
			if snap, err := store.Load(ctx); err != nil {
				log.Printf("Could not load snapshot: %v", err)
			} else if snap != nil {
				if err := snapshotService.Import(ctx, snap); err != nil {
					log.Printf("Snapshot restore failed: %v", err)
				} else {
					log.Printf("State restored from snapshot saved at %s.", snap.SavedAt.Format(time.RFC3339))
				}
			}
		}

		worker := workers.NewSnapshotWorker(snapshotService, store)
		worker.Start(ctx)
		ledger.AttachBackup(worker)
	}

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		FlowHandler:     adapterHTTP.NewFlowHandler(flowService),
		ScheduleHandler: adapterHTTP.NewScheduleHandler(scheduleService),
		SessionHandler:  adapterHTTP.NewSessionHandler(runnerService),
		MasteryHandler:  adapterHTTP.NewMasteryHandler(masteryService),
		WorkingHandler:  adapterHTTP.NewWorkingHandler(workingService),
		PomodoroHandler: adapterHTTP.NewPomodoroHandler(pomodoroService),
		ProgressHandler: adapterHTTP.NewProgressHandler(ledger, snapshotService),
		SnapshotHandler: adapterHTTP.NewSnapshotHandler(snapshotService),
		DayHooks:        &dayHooks{ledger: ledger, flows: flowService},
		DB:              db,
		Redis:           rdb,
		StartTime:       startTime,
	})

	srv := &http.Server{
		Addr:         ":" + serverPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Ritmo Engine running on http://localhost:%s", serverPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Critical server error: %v", err)
		}
	}()

	<-ctx.Done()

	log.Println("Stop signal received. Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Forced shutdown error:", err)
	}

	log.Println("Server stopped gracefully.")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
