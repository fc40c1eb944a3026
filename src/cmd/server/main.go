package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"strconv"
	"time"

	"productbom/src/adapters/http"
	"productbom/src/helper/env"
	"productbom/src/infra/kafka"
	"productbom/src/infra/postgres"
	"productbom/src/infra/redis"
	"productbom/src/repositories"
	"productbom/src/services/composition"
	"productbom/src/services/events"

	"go.uber.org/fx"
)

func main() {
	// Configurar logger
	log.SetOutput(os.Stdout)
	log.Println("Starting API server with Uber Fx...")

	app := fx.New(
		// Providers
		fx.Provide(
			newLogger,
			newDualStoreClient,
			newRedisClient,
			newKafkaClient,
			newProductRepository,
			newGraphRepository,
			newCachedGraphRepository,
			newEventPublisher,
			newCompositionService,
			newServer,
		),

		// Invocations
		fx.Invoke(ensureSchemas),
		fx.Invoke(registerServerHooks),
	)

	// Start the application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	// Wait for app to exit gracefully
	<-app.Done()
}

func newLogger() *slog.Logger {
	logLevel := env.GetString("LOG_LEVEL", "info")
	var level slog.Level

	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}

// newDualStoreClient abre os dois pools: document store e graph store.
func newDualStoreClient() (*postgres.DualStoreClient, error) {
	docHost := env.MustGetString("DOC_DB_HOST")
	docPort := env.GetString("DOC_DB_PORT", "5432")
	docName := env.MustGetString("DOC_DB_NAME")

	graphHost := env.MustGetString("GRAPH_DB_HOST")
	graphPort := env.GetString("GRAPH_DB_PORT", "5432")
	graphName := env.MustGetString("GRAPH_DB_NAME")

	dbUser := env.MustGetString("DB_USER")
	dbPassword := env.MustGetString("DB_PASSWORD")
	maxConnections := env.GetInt("DB_MAX_POOL_CONNECTIONS", 25)

	return postgres.NewDualStoreClient(
		docHost, graphHost,
		docPort, graphPort,
		docName, graphName,
		dbUser, dbPassword,
		maxConnections,
	)
}

func newRedisClient() *redis.RedisClient {
	addr := env.GetString("REDIS_ADDR", "localhost:6379")
	poolSize := env.GetInt("REDIS_POOL_SIZE", 50)
	ttlSeconds := env.GetInt("CACHE_TTL_SECONDS", 300)

	return redis.NewRedisClient(addr, poolSize, time.Duration(ttlSeconds)*time.Second)
}

func newKafkaClient() (*kafka.KafkaClient, error) {
	brokers := env.GetString("KAFKA_BROKERS", "localhost:9092")
	return kafka.NewKafkaClient(brokers)
}

func newProductRepository(dualStore *postgres.DualStoreClient) *repositories.ProductRepository {
	return repositories.NewProductRepository(dualStore.GetDocPool())
}

func newGraphRepository(dualStore *postgres.DualStoreClient) *repositories.GraphRepository {
	return repositories.NewGraphRepository(dualStore.GetGraphPool())
}

func newCachedGraphRepository(
	graphRepository *repositories.GraphRepository,
	redisClient *redis.RedisClient,
) *repositories.CachedGraphRepository {
	return repositories.NewCachedGraphRepository(graphRepository, redisClient)
}

func newEventPublisher(logger *slog.Logger, kafkaClient *kafka.KafkaClient) *events.DomainEventPublisher {
	topic := env.GetString("KAFKA_EVENTS_TOPIC", "productbom.domain-events")
	return events.NewDomainEventPublisher(logger, kafkaClient, topic)
}

func newCompositionService(
	logger *slog.Logger,
	productRepository *repositories.ProductRepository,
	graphRepository *repositories.GraphRepository,
	cachedGraphRepository *repositories.CachedGraphRepository,
	eventPublisher *events.DomainEventPublisher,
) *composition.CompositionService {
	return composition.NewCompositionService(
		logger,
		productRepository,
		graphRepository,
		cachedGraphRepository,
		cachedGraphRepository,
		eventPublisher,
	)
}

func newServer(
	logger *slog.Logger,
	compositionService *composition.CompositionService,
) *http.Server {

	port := 8888 // default value
	if portStr := os.Getenv("SERVER_ADDR"); portStr != "" {
		if val, err := strconv.Atoi(portStr); err == nil {
			port = val
		}
	}

	server := http.NewServer(logger, port, compositionService)

	return server
}

// ensureSchemas garante as tabelas dos dois stores antes de aceitar tráfego.
func ensureSchemas(dualStore *postgres.DualStoreClient) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := repositories.EnsureDocSchema(ctx, dualStore.GetDocPool()); err != nil {
		return err
	}
	return repositories.EnsureGraphSchema(ctx, dualStore.GetGraphPool())
}

// registerServerHooks registers lifecycle hooks for the HTTP server
func registerServerHooks(
	lc fx.Lifecycle,
	srv *http.Server,
	dualStore *postgres.DualStoreClient,
	kafkaClient *kafka.KafkaClient,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// Start server in a separate goroutine
			go func() {
				if err := srv.Start(); err != nil && err != nethttp.ErrServerClosed {
					log.Fatalf("Server failed: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			// Create timeout context for graceful shutdown
			shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()

			log.Println("Shutting down server...")
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Printf("Server forced to shutdown: %v", err)
				return err
			}

			if err := kafkaClient.Close(); err != nil {
				log.Printf("Kafka producer close failed: %v", err)
			}
			dualStore.Close()

			log.Println("Server exited gracefully")
			return nil
		},
	})
}
