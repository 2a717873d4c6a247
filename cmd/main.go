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

	"github.com/joho/godotenv"

	"furnistock/config"
	"furnistock/internal/api/inventory"
	"furnistock/internal/api/router"
	"furnistock/internal/event/kafka"
	"furnistock/internal/pkg/cache"
	"furnistock/internal/pkg/database"
	"furnistock/internal/pkg/logger"
	"furnistock/internal/pkg/metrics"
	"furnistock/internal/pkg/token"
	"furnistock/internal/repository/memoryrepo"
	"furnistock/internal/repository/stockrepo"
	"furnistock/internal/service/inventoryservice"
)

func main() {
	// 0. CARREGAR VARIÁVEIS DE AMBIENTE (.env)
	// Sem .env seguimos com o ambiente do sistema (ex: Docker).
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ Aviso: Arquivo .env não encontrado. Carregando configs apenas do ambiente do sistema.")
	}

	// 1. Configuração e Logger
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	var appLog logger.Logger
	if cfg.IsProduction() {
		appLog = logger.NewLogger(cfg.LogLevel)
	} else {
		appLog = logger.NewDevelopmentLogger(cfg.LogLevel)
	}
	if zl, ok := appLog.(*logger.ZapLogger); ok {
		defer zl.Sync()
	}
	appLog.Info("Inicializando serviço FurniStock...", map[string]interface{}{"env": cfg.Environment, "store": cfg.StoreDriver})

	ctx := context.Background()

	// 2. Armazenamento
	var (
		repo inventoryservice.StockRepository
		db   *sql.DB
	)
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err = database.NewPostgresDB(ctx, cfg.DatabaseURL, database.DefaultPoolConfig())
		if err != nil {
			appLog.Fatal("Falha ao conectar ao banco de dados.", err)
		}
		defer db.Close()
		repo = stockrepo.NewStockRepository(db, cfg.DBTimeout, appLog)
		appLog.Info("Conexão PostgreSQL estabelecida.", nil)
	case config.DriverMemory:
		memRepo := memoryrepo.NewStockRepository()
		if err := memoryrepo.SeedCatalog(memRepo, cfg.SeedQuantity); err != nil {
			appLog.Fatal("Falha ao semear o catálogo em memória.", err)
		}
		repo = memRepo
		appLog.Warn("Usando armazenamento em memória; os dados não sobrevivem ao processo.", map[string]interface{}{"seed_quantity": cfg.SeedQuantity})
	}

	// 3. Redis (rate limiting)
	var cacheClient cache.Client
	if cfg.RedisAddr != "" {
		redisClient := cache.NewRedisClient(cfg.RedisAddr)
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(pingCtx); err != nil {
			appLog.Warn("Redis indisponível; o rate limiter vai liberar as requisições até ele voltar.", map[string]interface{}{"addr": cfg.RedisAddr, "error": err.Error()})
		} else {
			appLog.Info("Conexão Redis estabelecida.", nil)
		}
		cancel()
		defer redisClient.Close()
		cacheClient = redisClient
	}

	// 4. Métricas e eventos
	recorder := metrics.NewPrometheusRecorder("furnistock")

	var publisher inventoryservice.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher := kafka.NewStockEventPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, appLog)
		defer func() {
			if err := kafkaPublisher.Close(); err != nil {
				appLog.Error("Falha ao fechar o publisher Kafka.", err)
			}
		}()
		publisher = kafkaPublisher
		appLog.Info("Publisher Kafka configurado.", map[string]interface{}{"topic": cfg.KafkaTopic})
	}

	// 5. INJEÇÃO DE DEPENDÊNCIAS: Repository -> Service -> Handler
	inventorySvc := inventoryservice.NewService(repo, appLog, inventoryservice.Options{
		MaxRetries:        cfg.AdjustMaxRetries,
		RetryBase:         cfg.AdjustRetryBase,
		LowStockThreshold: cfg.LowStockThreshold,
		Publisher:         publisher,
		Metrics:           recorder,
	})
	inventoryHandler := inventory.NewHandler(inventorySvc, appLog)

	// Os tokens são emitidos por outro serviço; aqui apenas validamos. A expiração só vale para cmd/token.
	tokenSvc := token.NewService(cfg.JWTSecretKey, time.Hour)

	r := router.NewRouter(router.Deps{
		Inventory:       inventoryHandler,
		Tokens:          tokenSvc,
		Cache:           cacheClient,
		RateLimit:       cfg.RateLimitMaxRequests,
		RateLimitWindow: cfg.RateLimitPeriod,
		Metrics:         recorder.Handler(),
		Logger:          appLog,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 6. Execução e Graceful Shutdown
	go func() {
		appLog.Info("Servidor FurniStock ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal("Servidor falhou.", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	appLog.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLog.Error("Desligamento do servidor forçado.", err)
	}

	appLog.Info("Servidor encerrado com sucesso.", nil)
}
