// Package mq предоставляет инфраструктуру для работы с RabbitMQ.
//
// Структура:
//   - connection.go — управление соединением с RabbitMQ (reconnect, graceful shutdown)
//   - topology.go   — объявление exchanges, queues, bindings
//   - publisher.go  — публикация сообщений в очереди
//   - consumer.go   — потребление сообщений из очередей
//
// Типы сообщений:
//   - execution.requested — триггер-событие запуска workflow
//
// Exchanges:
//   - flowgrid.executions — триггер-события
//   - flowgrid.dlq        — dead letter queue
package mq
