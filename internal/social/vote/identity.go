package vote

import (
	"net"
	"net/http"
	"strings"

	"github.com/taibuivan/personae/internal/platform/constants"
)

// anonymousIP stands in for a request without any usable address.
const anonymousIP = "anonymous"

/*
Identify derives the anonymous voter identifier of a request.

Description: the client address is the first X-Forwarded-For entry, or the host
part of the connection address. It is joined with the leading characters of
the User-Agent, and every character outside [A-Za-z0-9_-] is dropped. The
result depends only on those headers, so a returning browser maps to the same
voter.
*/
func Identify(request *http.Request) string {
	ip := clientIP(request)

	agent := []rune(request.Header.Get(constants.HeaderUserAgent))
	if len(agent) > constants.VoterAgentPrefixLength {
		agent = agent[:constants.VoterAgentPrefixLength]
	}

	return strings.Map(keepIdentifierRune, ip+"_"+string(agent))
}

func clientIP(request *http.Request) string {
	if forwarded := request.Header.Get(constants.HeaderXForwardedFor); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}

	if request.RemoteAddr == "" {
		return anonymousIP
	}
	if host, _, err := net.SplitHostPort(request.RemoteAddr); err == nil && host != "" {
		return host
	}
	return request.RemoteAddr
}

func keepIdentifierRune(r rune) rune {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		return r
	default:
		return -1
	}
}
