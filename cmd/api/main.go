// server/cmd/api/main.go
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"port-ops-api-server/config"
	"port-ops-api-server/internal/api/routes"
	"port-ops-api-server/internal/auth"
	"port-ops-api-server/internal/database"
	"port-ops-api-server/internal/idgen"
	"port-ops-api-server/internal/monitoring"
	"port-ops-api-server/internal/s3"
	"port-ops-api-server/internal/scheduler"
	"port-ops-api-server/internal/socket"
	"port-ops-api-server/internal/store"
	"port-ops-api-server/internal/telemetry"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	// 1. Load configuration (.env is optional)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Could not read .env: %v", err)
	}
	cfg, err := config.LoadConfig("./config")
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	if cfg.JWT.Secret == "" {
		log.Fatal("jwt.secret must be set (JWT_SECRET)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Database, seed rows and id sequences
	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	if err := database.Seed(db, cfg); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	if err := idgen.PrimeAll(ctx, db); err != nil {
		log.Fatalf("Failed to prime id sequences: %v", err)
	}

	tokens, err := auth.NewTokenManager(cfg.JWT.Secret, config.Duration(cfg.JWT.Expiration, 24*time.Hour))
	if err != nil {
		log.Fatalf("Failed to create token manager: %v", err)
	}

	// 3. Tracing
	shutdownTracing := telemetry.Setup(cfg.Telemetry)
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Printf("tracing shutdown: %v", err)
		}
	}()

	// 4. Request monitoring, optionally persisted to MongoDB
	var sink monitoring.Sink
	if cfg.Mongo.URI != "" {
		client, err := monitoring.ConnectMongo(ctx, cfg.Mongo)
		if err != nil {
			log.Printf("MongoDB unavailable, request samples stay in memory: %v", err)
		} else {
			mongoSink := monitoring.NewMongoSink(client.Database(cfg.Mongo.DBName).Collection(monitoring.SamplesCollection))
			defer func() {
				mongoSink.Close()
				client.Disconnect(context.Background())
			}()
			sink = mongoSink
		}
	}
	collector := monitoring.NewCollector(sink)

	// 5. Wire services and handlers
	deps := routes.NewDependencies(cfg, store.New(db), tokens, socket.NewHub(), collector)
	if cfg.S3.Bucket != "" {
		uploader, err := s3.NewUploader(ctx, cfg.S3)
		if err != nil {
			log.Printf("Photo uploads disabled: %v", err)
		} else {
			deps.Photos = uploader
		}
	}
	router := routes.SetupRouter(deps)

	// 6. Background cleanup of ships whose port call is over
	var cleanup *scheduler.Runner
	if cfg.Cleanup.Enabled {
		interval := config.Duration(cfg.Cleanup.Interval, 30*time.Minute)
		cleanup = scheduler.NewRunner("cleanup", interval, true, func(ctx context.Context) error {
			_, err := deps.Cleanup.RunOnce(ctx, time.Now())
			return err
		})
		cleanup.Start(ctx)
	}

	// 7. Start server
	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           otelhttp.NewHandler(router, cfg.Telemetry.ServiceName),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("Starting API server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to run server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	if cleanup != nil {
		cleanup.Wait()
	}
	log.Println("Server exiting")
}
