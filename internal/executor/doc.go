// Package executor содержит исполнителей узлов workflow.
//
// Каждый тип узла регистрируется в Registry и реализует NodeExecutor:
// на входе конфигурация узла и контекст выполнения, на выходе новый
// контекст с результатом узла под именем переменной пользователя.
//
// Исполнители публикуют статусы узла (loading / success / error) в
// realtime-канал и оборачивают побочные эффекты в durable steps, чтобы
// повторная доставка триггер-события не дублировала HTTP-запросы и
// вызовы LLM.
package executor
