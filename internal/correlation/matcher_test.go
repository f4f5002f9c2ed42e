package correlation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatcher_Match(t *testing.T) {
	tests := []struct {
		name    string
		include []string
		exclude []string
		path    string
		want    bool
	}{
		{"default matches api", nil, DefaultExclude, "/api/users", true},
		{"default matches root page", nil, DefaultExclude, "/", true},
		{"default matches empty path", nil, DefaultExclude, "", true},
		{"default skips static subtree", nil, DefaultExclude, "/static/css/site.css", false},
		{"default skips static root", nil, DefaultExclude, "/static", false},
		{"prefix is segment aware", nil, DefaultExclude, "/staticfiles/a.js", true},
		{"default skips favicon", nil, DefaultExclude, "/favicon.ico", false},
		{"default skips metrics", nil, DefaultExclude, "/metrics", false},
		{"api only matches api", []string{"/api/**"}, nil, "/api/users/1", true},
		{"api only skips pages", []string{"/api/**"}, nil, "/users/1", false},
		{"single segment glob", []string{"/users/*"}, nil, "/users/1", true},
		{"single segment glob does not cross slash", []string{"/users/*"}, nil, "/users/1/edit", false},
		{"glob inside subtree prefix", []string{"/api/*/**"}, nil, "/api/v1/users", true},
		{"glob inside subtree prefix needs segment", []string{"/api/*/**"}, nil, "/api", false},
		{"double slash is cleaned before exclude", nil, DefaultExclude, "//static/app.css", false},
		{"dot segments are cleaned before exclude", nil, DefaultExclude, "/api/../static/app.css", false},
		{"trailing slash is cleaned", nil, DefaultExclude, "/metrics/", false},
		{"exclude wins over include", []string{"/api/**"}, []string{"/api/internal/**"}, "/api/internal/x", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMatcher(tt.include, tt.exclude)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Match(tt.path))
		})
	}
}

func TestNewMatcher_BadPattern(t *testing.T) {
	tests := []struct {
		name    string
		include []string
		exclude []string
	}{
		{"relative include", []string{"api/**"}, nil},
		{"broken glob", []string{"/api/["}, nil},
		{"double star in the middle", nil, []string{"/a/**/b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMatcher(tt.include, tt.exclude)
			assert.ErrorIs(t, err, ErrBadPattern)
		})
	}
}

func TestDefaultMatcher(t *testing.T) {
	m := DefaultMatcher()
	assert.True(t, m.Match("/api/users"))
	assert.False(t, m.Match("/robots.txt"))
}
