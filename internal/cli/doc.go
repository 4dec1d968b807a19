// Package cli реализует инструмент командной строки Flowgrid.
//
// # Обзор
//
// CLI — клиентская утилита для взаимодействия с Flowgrid API.
// Работает через HTTP, не импортирует внутренние пакеты системы.
// CLI используется для просмотра workflows, запуска executions и
// управления credentials.
//
// # Ключевые компоненты
//
// ## Client
//
// HTTP-клиент для Flowgrid API. Инкапсулирует все HTTP-запросы,
// парсинг ответов (DataResponse, ListResponse, ErrorResponse)
// и обработку ошибок. Пользователь задаётся флагом --user и
// передаётся в заголовке X-User-ID.
//
//	client := cli.NewClient("http://localhost:8080", userID)
//	workflows, err := client.ListWorkflows()
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON (json.MarshalIndent) — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Error) — в stderr.
// Это позволяет использовать pipe: flowgrid workflow list --json | jq .
//
// ## Commands
//
// Cobra-команды организованы по ресурсам:
//   - workflow:   list, show
//   - execution:  trigger, list, show
//   - credential: list, create, delete
//
// Каждая группа создаётся через фабричную функцию (NewWorkflowCmd и т.д.),
// принимающую clientFn и outputFn — замыкания для ленивого создания
// Client и Output после парсинга PersistentFlags.
package cli
