package correlation

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// ErrBadPattern возвращается для некорректного шаблона пути
var ErrBadPattern = errors.New("bad path pattern")

// DefaultInclude шаблоны путей, которые обрабатываются по умолчанию.
var DefaultInclude = []string{"/**"}

// DefaultExclude статические файлы и служебные эндпоинты, которые обходят middleware.
var DefaultExclude = []string{"/static/**", "/favicon.ico", "/robots.txt", "/metrics"}

// Matcher решает, какие запросы получают correlation id.
// Шаблоны используют синтаксис path.Match, суффикс "/**" совпадает
// с самим префиксом и со всеми вложенными путями.
type Matcher struct {
	include []string
	exclude []string
}

// NewMatcher создает Matcher. Пустой include означает DefaultInclude.
func NewMatcher(include, exclude []string) (*Matcher, error) {
	if len(include) == 0 {
		include = DefaultInclude
	}
	for _, p := range append(append([]string{}, include...), exclude...) {
		if err := checkPattern(p); err != nil {
			return nil, err
		}
	}
	return &Matcher{
		include: append([]string(nil), include...),
		exclude: append([]string(nil), exclude...),
	}, nil
}

// DefaultMatcher обрабатывает все пути, кроме DefaultExclude.
func DefaultMatcher() *Matcher {
	m, err := NewMatcher(DefaultInclude, DefaultExclude)
	if err != nil {
		panic(err)
	}
	return m
}

// Match сообщает, должен ли запрос с данным путем пройти через middleware.
// Путь сравнивается после path.Clean, поэтому "//static/a.css" и
// "/static/../static/a.css" исключаются так же, как "/static/a.css".
func (m *Matcher) Match(p string) bool {
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	p = path.Clean(p)
	matched := false
	for _, pattern := range m.include {
		if matchPattern(pattern, p) {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}
	for _, pattern := range m.exclude {
		if matchPattern(pattern, p) {
			return false
		}
	}
	return true
}

func checkPattern(pattern string) error {
	if !strings.HasPrefix(pattern, "/") {
		return fmt.Errorf("%w: %q must start with /", ErrBadPattern, pattern)
	}
	base := strings.TrimSuffix(pattern, "/**")
	if strings.Contains(base, "**") {
		return fmt.Errorf("%w: %q uses ** outside of trailing /**", ErrBadPattern, pattern)
	}
	if _, err := path.Match(base, "/"); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrBadPattern, pattern, err)
	}
	return nil
}

func matchPattern(pattern, p string) bool {
	if base, ok := strings.CutSuffix(pattern, "/**"); ok {
		if base == "" {
			return true
		}
		if ok, _ := path.Match(base, p); ok {
			return true
		}
		// сравниваем префикс из того же числа сегментов
		depth := strings.Count(base, "/")
		segments := strings.SplitAfterN(p, "/", depth+2)
		if len(segments) <= depth+1 {
			return false
		}
		prefix := strings.TrimSuffix(strings.Join(segments[:depth+1], ""), "/")
		ok, _ := path.Match(base, prefix)
		return ok
	}
	ok, _ := path.Match(pattern, p)
	return ok
}
