package cors

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/geolocus/geolocus/config"
)

// AllowOriginHeader is the only header the matcher ever emits. The value is
// the exact origin a request supplied, never a wildcard.
const AllowOriginHeader = "Access-Control-Allow-Origin"

// Matcher decides whether a request origin is allowed to read lookup
// responses. It is immutable after construction; configuration reloads swap
// the whole matcher out.
type Matcher struct {
	origins []string
	regex   *regexp.Regexp
}

// New sanitizes the configured origin allowlist and compiles the origin
// expression. Origins which do not parse as absolute URLs are logged and
// dropped; the surviving ones are reduced to a lowercased scheme://host
// form. A broken expression is logged and disables regex matching only.
func New(conf config.Cors, log zerolog.Logger) *Matcher {
	return &Matcher{
		origins: sanitizeOrigins(conf.Origins, log),
		regex:   compileRegex(conf, log),
	}
}

func sanitizeOrigins(origins []string, log zerolog.Logger) []string {
	var sanitized []string

	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}

		parsed, err := url.Parse(origin)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			log.Warn().Str("origin", origin).Msg("dropping origin which is not a url")

			continue
		}

		sanitized = append(sanitized,
			strings.ToLower(parsed.Scheme)+"://"+strings.ToLower(parsed.Host))
	}

	return sanitized
}

func compileRegex(conf config.Cors, log zerolog.Logger) *regexp.Regexp {
	if conf.Regex != nil {
		return conf.Regex
	}

	if conf.Pattern == "" {
		return nil
	}

	regex, err := regexp.Compile("(?i)" + conf.Pattern)
	if err != nil {
		log.Warn().Err(err).Str("pattern", conf.Pattern).Msg("cannot compile origin expression")

		return nil
	}

	return regex
}

// Origins returns the sanitized allowlist. It is nil, not empty, when no
// configured origin survived sanitization.
func (m *Matcher) Origins() []string {
	return m.origins
}

// IsAllowedOrigin reports whether the given request origin may read
// responses. An absent origin is never allowed.
func (m *Matcher) IsAllowedOrigin(origin string) bool {
	if origin == "" {
		return false
	}

	for _, allowed := range m.origins {
		if origin == allowed {
			return true
		}
	}

	return m.regex != nil && m.regex.MatchString(origin)
}

// Headers returns the CORS headers to emit for the given request origin,
// nil when the origin is absent or not allowed.
func (m *Matcher) Headers(origin string) map[string]string {
	if !m.IsAllowedOrigin(origin) {
		return nil
	}

	return map[string]string{AllowOriginHeader: origin}
}
