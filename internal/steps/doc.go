// Package steps реализует durable steps — мемоизированные шаги выполнения.
//
// Шаг — именованный побочный эффект внутри execution (HTTP-запрос, вызов
// LLM, чтение credential). Результат шага сохраняется в журнал по ключу
// (execution, имя шага); при повторной доставке того же триггер-события
// шаг не выполняется заново, а воспроизводится из журнала. Так каждый
// побочный эффект случается не более одного раза на execution.
//
// Включает:
//   - runner.go   — интерфейс Runner и декодирование результатов
//   - memory.go   — in-memory реализация для тестов
//   - postgres.go — журнал шагов в PostgreSQL с ретраями
package steps
