// Package slug приводит отображаемые имена к каноничному машинному идентификатору.
package slug

import (
	"regexp"
	"strings"
)

var (
	whitespaceRun   = regexp.MustCompile(`\s+`)
	disallowed      = regexp.MustCompile(`[^a-z0-9-]`)
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// Normalize возвращает slug для имени.
// Пример: "  Home & Garden!!  " → "home-garden".
// Результат может быть пустым, если в имени нет латинских букв, цифр или дефисов;
// вызывающий код обязан считать пустой slug ошибкой валидации.
func Normalize(name string) string {
	result := strings.ToLower(strings.TrimSpace(name))
	result = whitespaceRun.ReplaceAllString(result, "-")
	result = disallowed.ReplaceAllString(result, "")
	result = multipleHyphens.ReplaceAllString(result, "-")
	return result
}
