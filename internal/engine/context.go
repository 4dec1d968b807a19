package engine

// Context — накапливаемый результат выполнения workflow.
//
// Контекст передаётся от узла к узлу: каждый executor читает из него
// (через рендеринг шаблонов) и возвращает новый контекст со своим
// результатом под выбранным пользователем именем переменной.
//
// Context — значение: методы With и Merge возвращают копию, исходная
// карта никогда не мутируется. Это избавляет выполнение от aliasing
// багов и делает executors тривиально тестируемыми.
type Context map[string]any

// NewContext создаёт контекст из начальных данных триггера.
// Данные копируются; nil даёт пустой контекст.
func NewContext(initial map[string]any) Context {
	ctx := make(Context, len(initial))
	for k, v := range initial {
		ctx[k] = v
	}
	return ctx
}

// With возвращает новый контекст с добавленной парой ключ-значение.
// Остальные записи переходят без изменений.
func (c Context) With(key string, value any) Context {
	next := make(Context, len(c)+1)
	for k, v := range c {
		next[k] = v
	}
	next[key] = value
	return next
}

// Merge возвращает новый контекст, дополненный записями из other.
// При совпадении ключей значения из other имеют приоритет.
func (c Context) Merge(other map[string]any) Context {
	next := make(Context, len(c)+len(other))
	for k, v := range c {
		next[k] = v
	}
	for k, v := range other {
		next[k] = v
	}
	return next
}

// AsMap возвращает контекст как обычную карту для сериализации.
func (c Context) AsMap() map[string]any {
	return map[string]any(c)
}
