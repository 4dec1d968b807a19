package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
)

// templateFuncs — дополнительные функции для шаблонов.
var templateFuncs = template.FuncMap{
	// json — сериализует значение в JSON с отступами.
	// Используется для подстановки результатов узлов в тела запросов
	// и промпты: {{ json .httpResponse }}.
	"json": func(v any) string {
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Sprintf("error: %v", err)
		}
		return string(b)
	},

	// default — возвращает значение по умолчанию, если аргумент пустой.
	"default": func(def, val any) any {
		if val == nil {
			return def
		}
		if s, ok := val.(string); ok && s == "" {
			return def
		}
		return val
	},

	// lower — приводит к нижнему регистру.
	"lower": strings.ToLower,

	// upper — приводит к верхнему регистру.
	"upper": strings.ToUpper,

	// trim — удаляет пробелы по краям.
	"trim": strings.TrimSpace,
}

// Render рендерит строковый шаблон против контекста выполнения.
//
// Шаблон обращается к результатам предыдущих узлов по имени переменной:
//
//	{{ .googleForm.respondentEmail }}
//	{{ .apiResult.httpResponse.status }}
//	{{ json .apiResult }}
//
// Строка без шаблонных выражений возвращается как есть.
func Render(tmpl string, ctx Context) (string, error) {
	if !strings.Contains(tmpl, "{{") {
		return tmpl, nil
	}

	t, err := template.New("").Funcs(templateFuncs).Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplateParse, err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, ctx.AsMap()); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplateRender, err)
	}

	return buf.String(), nil
}

// MustRender рендерит шаблон и паникует при ошибке.
// Используется только в тестах.
func MustRender(tmpl string, ctx Context) string {
	result, err := Render(tmpl, ctx)
	if err != nil {
		panic(err)
	}
	return result
}
