// Package api содержит HTTP API сервер.
//
// Структура:
//   - handler.go            — Handler с DI (репозитории, publisher, logger)
//   - routes.go             — регистрация маршрутов
//   - middleware.go         — middleware (logging, recovery)
//   - response.go           — унифицированные JSON-ответы и обработка ошибок
//   - dto.go                — Data Transfer Objects (request/response)
//   - workflow_handler.go   — обработчики для /workflows
//   - execution_handler.go  — запуск и чтение /executions
//   - webhook_handler.go    — входящие webhooks (Google Forms, Stripe)
//   - credential_handler.go — обработчики для /credentials
//   - status_handler.go     — токены на realtime-каналы статусов
//
// Запуск workflow всегда асинхронный: API публикует триггер-событие
// в очередь и отвечает 202, выполнением занимается runner.
package api
