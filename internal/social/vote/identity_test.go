package vote_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/personae/internal/social/vote"
)

func TestIdentify(t *testing.T) {
	tests := []struct {
		name      string
		forwarded string
		remote    string
		agent     string
		want      string
	}{
		{"first forwarded entry", "203.0.113.9, 10.0.0.1", "10.0.0.1:443", "curl/8.0", "20301139_curl80"},
		{"connection address", "", "192.0.2.44:51234", "Mozilla/5.0", "1920244_Mozilla50"},
		{"ipv6 connection address", "", "[2001:db8::1]:8080", "", "2001db81_"},
		{"no address", "", "", "bot", "anonymous_bot"},
		{"strips punctuation", "", "192.0.2.1:1", "A b;c<script>", "192021_Abcscript"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodPost, "/", nil)
			request.RemoteAddr = tt.remote
			if tt.forwarded != "" {
				request.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if tt.agent != "" {
				request.Header.Set("User-Agent", tt.agent)
			}
			assert.Equal(t, tt.want, vote.Identify(request))
		})
	}
}

func TestIdentify_TruncatesAgentByCharacters(t *testing.T) {
	request := httptest.NewRequest(http.MethodPost, "/", nil)
	request.RemoteAddr = "192.0.2.1:1"
	request.Header.Set("User-Agent", strings.Repeat("é", 40)+strings.Repeat("a", 40))

	// 40 non-ASCII runes and 10 ASCII ones survive the prefix cut, then the
	// non-ASCII runes are stripped.
	assert.Equal(t, "192021_"+strings.Repeat("a", 10), vote.Identify(request))
}

func TestIdentify_Deterministic(t *testing.T) {
	build := func() *http.Request {
		request := httptest.NewRequest(http.MethodPost, "/", nil)
		request.RemoteAddr = "198.51.100.3:4000"
		request.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64)")
		return request
	}
	assert.Equal(t, vote.Identify(build()), vote.Identify(build()))
}
