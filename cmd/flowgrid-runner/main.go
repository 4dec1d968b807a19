// Flowgrid Runner — выполняет workflows.
//
// Runner:
//   - Получает триггер-события из RabbitMQ
//   - Линеаризует граф workflow и выполняет узлы по порядку
//   - Журналирует durable steps в PostgreSQL
//   - Публикует статусы узлов в Redis
//
// Runners масштабируются горизонтально: уникальный индекс по
// correlation id и журнал шагов делают параллельную обработку
// одного события безопасной.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/shaiso/Flowgrid/internal/executor"
	"github.com/shaiso/Flowgrid/internal/mq"
	"github.com/shaiso/Flowgrid/internal/repo"
	"github.com/shaiso/Flowgrid/internal/runner"
	"github.com/shaiso/Flowgrid/internal/secret"
	"github.com/shaiso/Flowgrid/internal/status"
	"github.com/shaiso/Flowgrid/internal/steps"
	"github.com/shaiso/Flowgrid/internal/telemetry"
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting flowgrid-runner")

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// DB pool
	pool, err := repo.NewPool(ctx)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("database connected")

	// Шифрование credentials
	secrets, err := secret.FromEnv()
	if err != nil {
		logger.Error("failed to init encryption", "error", err)
		os.Exit(1)
	}

	// RabbitMQ
	mqURL := os.Getenv("RABBITMQ_URL")
	if mqURL == "" {
		mqURL = mq.DefaultURL()
	}

	mqConn, err := mq.NewConnection(mqURL, logger)
	if err != nil {
		logger.Error("failed to connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer mqConn.Close()
	logger.Info("RabbitMQ connected")

	if err := mq.SetupTopology(ctx, mqConn); err != nil {
		logger.Error("failed to setup topology", "error", err)
		os.Exit(1)
	}
	logger.Info("topology ready", "topology", mq.TopologyInfo())

	// Redis для realtime статусов. Без Redis runner работает,
	// статусы отбрасываются.
	var statusPub status.Publisher = status.NopPublisher{}
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisClient := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis not available, node statuses disabled", "error", err)
	} else {
		defer redisClient.Close()
		logger.Info("Redis connected")
		statusPub = status.NewRedisPublisher(redisClient, logger)
	}

	// Исполнители узлов
	registry := executor.NewRegistry(executor.Deps{
		Credentials: repo.NewCredentialRepo(pool),
		Secrets:     secrets,
		Logger:      logger,
	})

	// Создаём runner
	svc := runner.New(runner.Config{
		Workflows:  repo.NewWorkflowRepo(pool),
		Executions: repo.NewExecutionRepo(pool),
		Registry:   registry,
		Steps:      steps.NewLedger(pool, logger),
		Status:     statusPub,
		Conn:       mqConn,
		Logger:     logger,
	})

	// Запускаем runner
	if err := svc.Start(ctx); err != nil {
		logger.Error("failed to start runner", "error", err)
		os.Exit(1)
	}

	// HTTP mux: /healthz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	port := ":8082"
	if v := os.Getenv("RUNNER_PORT"); v != "" {
		port = ":" + v
	}

	go func() {
		logger.Info("listening", "addr", port)
		if err := http.ListenAndServe(port, mux); err != nil {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	// Ожидаем сигнал завершения
	<-ctx.Done()

	// Останавливаем runner
	svc.Stop()
	logger.Info("flowgrid-runner stopped")
}
