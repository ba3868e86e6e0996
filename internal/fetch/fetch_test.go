package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURL_Success(t *testing.T) {
	var gotUA, gotHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotHeader = r.Header.Get("Accept-Language")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body><h1>Test</h1></body></html>"))
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, &Options{
		Timeout: DefaultTimeout,
		Headers: map[string]string{"Accept-Language": "en-US"},
	})
	require.NoError(t, err)
	assert.Equal(t, server.URL, result.URL)
	assert.Contains(t, result.HTML, "<h1>Test</h1>")
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Equal(t, "text/html", result.ContentType)
	assert.Equal(t, DefaultUserAgent, gotUA)
	assert.Equal(t, "en-US", gotHeader)
}

func TestURL_InvalidURL(t *testing.T) {
	for _, raw := range []string{"not-a-valid-url", "ftp://example.com/job", "https://"} {
		t.Run(raw, func(t *testing.T) {
			_, err := URL(context.Background(), raw, nil)
			require.Error(t, err)

			var fetchErr *Error
			assert.ErrorAs(t, err, &fetchErr)
			assert.Contains(t, err.Error(), "invalid URL")
		})
	}
}

func TestURL_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.Error(t, err)
	require.NotNil(t, result)
	assert.Equal(t, http.StatusNotFound, result.StatusCode)

	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "404")
}

func TestURL_CanceledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := URL(ctx, server.URL, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtractMainText(t *testing.T) {
	tests := []struct {
		name      string
		html      string
		selectors []string
		noise     []string
		want      []string
		wantNot   []string
	}{
		{
			name:      "main element",
			html:      `<html><body><nav>Navigation</nav><main><h1>Senior Engineer</h1><p>Build services.</p></main><footer>Footer</footer></body></html>`,
			selectors: JobPostingSelectors(),
			want:      []string{"Senior Engineer", "Build services."},
			wantNot:   []string{"Navigation", "Footer"},
		},
		{
			name:      "job description class wins over main",
			html:      `<html><body><main><div class="job-description"><p>Write Go.</p></div><div>Related jobs</div></main></body></html>`,
			selectors: JobPostingSelectors(),
			want:      []string{"Write Go."},
			wantNot:   []string{"Related jobs"},
		},
		{
			name:      "fallback to body",
			html:      `<html><body><p>Just a paragraph</p><script>var x = 1;</script></body></html>`,
			selectors: JobPostingSelectors(),
			want:      []string{"Just a paragraph"},
			wantNot:   []string{"var x"},
		},
		{
			name:      "noise removed",
			html:      `<html><body><main><p>Requirements</p><form>Upload resume</form></main></body></html>`,
			selectors: JobPostingSelectors(),
			noise:     []string{"form"},
			want:      []string{"Requirements"},
			wantNot:   []string{"Upload resume"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := ExtractMainText(tt.html, tt.selectors, tt.noise...)
			require.NoError(t, err)
			for _, want := range tt.want {
				assert.Contains(t, text, want)
			}
			for _, unwanted := range tt.wantNot {
				assert.NotContains(t, text, unwanted)
			}
		})
	}
}

func TestExtractMainText_LineBreaks(t *testing.T) {
	html := `<main><h2>Requirements</h2><ul><li>Go</li><li>Postgres</li></ul></main>`

	text, err := ExtractMainText(html, []string{"main"})
	require.NoError(t, err)
	assert.Equal(t, "Requirements\nGo\nPostgres", text)
}

func TestCleanWhitespace(t *testing.T) {
	got := cleanWhitespace("  first   line \n\n\t\n second\tline  ")
	assert.Equal(t, "first line\nsecond line", got)
	assert.Empty(t, cleanWhitespace(strings.Repeat(" \n", 4)))
}
