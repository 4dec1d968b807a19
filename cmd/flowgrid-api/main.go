// Flowgrid API — HTTP-сервер платформы.
//
// API:
//   - Принимает запуски workflows и webhooks, публикует триггер-события
//   - Отдаёт workflows и executions на чтение
//   - Управляет credentials (шифрование на запись)
//   - Выписывает токены на realtime-каналы статусов
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Flowgrid/internal/api"
	"github.com/shaiso/Flowgrid/internal/mq"
	"github.com/shaiso/Flowgrid/internal/repo"
	"github.com/shaiso/Flowgrid/internal/secret"
	"github.com/shaiso/Flowgrid/internal/status"
	"github.com/shaiso/Flowgrid/internal/telemetry"
)

var (
	startTime = time.Now()
	reqTotal  = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flowgrid_api_http_requests_total",
		Help: "Total HTTP requests handled by flowgrid_api",
	})
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting flowgrid-api")

	// Подключаемся к базе данных
	pool, err := repo.NewPool(context.Background())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("connected to database")

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

	if err := mq.SetupTopology(context.Background(), mqConn); err != nil {
		logger.Error("failed to setup topology", "error", err)
		os.Exit(1)
	}
	logger.Info("topology ready", "topology", mq.TopologyInfo())

	// Создаём API handler
	handler := api.NewHandler(api.Config{
		WorkflowRepo:   repo.NewWorkflowRepo(pool),
		ExecutionRepo:  repo.NewExecutionRepo(pool),
		CredentialRepo: repo.NewCredentialRepo(pool),
		Publisher:      mq.NewPublisher(mqConn, logger),
		Secrets:        secrets,
		Tokens:         status.NewTokenIssuer(0),
		Logger:         logger,
	})

	mux := http.NewServeMux()

	// Health и metrics
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		reqTotal.Inc()
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "ok %s", time.Since(startTime))
	})
	mux.Handle("/metrics", promhttp.Handler())

	// Регистрируем API маршруты
	handler.RegisterRoutes(mux)

	addr := ":8080"
	if v := os.Getenv("API_PORT"); v != "" {
		addr = ":" + v
	}

	// Создаём HTTP сервер с возможностью graceful shutdown
	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	// Запускаем сервер в горутине
	go func() {
		logger.Info("listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Ожидаем сигнал завершения
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	<-ctx.Done()
	logger.Info("shutting down")

	// Graceful shutdown с таймаутом 10 секунд
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	logger.Info("stopped")
}
