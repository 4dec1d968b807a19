// Package engine содержит ядро выполнения workflow.
//
// Включает:
//   - context.go   — неизменяемый контекст выполнения (результаты узлов)
//   - template.go  — рендеринг шаблонов конфигурации против контекста
//   - linearize.go — линеаризация графа узлов (топологическая сортировка)
//
// Engine отвечает за понимание структуры workflow и определение
// порядка выполнения узлов на основе соединений между ними.
package engine
