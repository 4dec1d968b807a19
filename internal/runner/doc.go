// Package runner выполняет workflows по триггер-событиям.
//
// Runner — центральный компонент системы, который:
//   - Получает триггер-события из очереди RabbitMQ
//   - Создаёт execution (ровно один на correlation id)
//   - Загружает граф workflow и линеаризует его
//   - Прогоняет контекст через исполнителей узлов по порядку
//   - Финализирует execution (SUCCESS/FAILED)
//
// Повторная доставка события безопасна: завершённый execution
// возвращается как есть, незавершённый продолжается с воспроизведением
// уже выполненных durable steps.
package runner
