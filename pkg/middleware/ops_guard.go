package middleware

import (
	"crypto/subtle"
	"net"
	"net/http"
	"net/netip"
	"slices"
	"strings"

	"github.com/gorilla/mux"

	"github.com/iota-uz/crewplan/pkg/httpapi"
	"github.com/iota-uz/crewplan/pkg/routing"
)

const opsTokenHeader = "X-Ops-Token"

type OpsGuardOptions struct {
	// Token is accepted from the X-Ops-Token header or as a bearer token.
	Token string
	// CIDRs lists networks allowed without a token; bare addresses mean a single host.
	CIDRs        string
	RealIPHeader string
	Classifier   *routing.Classifier
}

// OpsGuard protects admin and ops routes. Without a token and without CIDRs it lets
// everything through. Denied admin requests get a 401 envelope; ops routes pretend not
// to exist.
func OpsGuard(opts OpsGuardOptions) mux.MiddlewareFunc {
	token := []byte(strings.TrimSpace(opts.Token))
	networks := parseCIDRs(opts.CIDRs)
	if len(token) == 0 && len(networks) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	classifier := opts.Classifier
	if classifier == nil {
		classifier = routing.NewClassifier(routing.DefaultRules())
	}

	allowed := func(r *http.Request) bool {
		if len(networks) > 0 {
			if ip, ok := realIP(r, opts.RealIPHeader); ok {
				if addr, err := netip.ParseAddr(ip); err == nil {
					addr = addr.Unmap()
					if slices.ContainsFunc(networks, func(p netip.Prefix) bool { return p.Contains(addr) }) {
						return true
					}
				}
			}
		}
		return len(token) > 0 && subtle.ConstantTimeCompare([]byte(tokenFromRequest(r)), token) == 1
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			class := classifier.ClassifyPath(r.URL.Path)
			switch {
			case !class.Guarded(), allowed(r):
				next.ServeHTTP(w, r)
			case class == routing.RouteClassAdmin:
				_ = httpapi.WriteRequestError(w, r, http.StatusUnauthorized, httpapi.CodeUnauthorized, "ops token required")
			default:
				http.NotFound(w, r)
			}
		})
	}
}

// parseCIDRs accepts comma, semicolon or whitespace separated prefixes and skips
// entries that do not parse.
func parseCIDRs(raw string) []netip.Prefix {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\n' || r == '\t' || r == '\r'
	})
	if len(fields) == 0 {
		return nil
	}
	out := make([]netip.Prefix, 0, len(fields))
	for _, f := range fields {
		if p, err := netip.ParsePrefix(f); err == nil {
			out = append(out, p.Masked())
			continue
		}
		if addr, err := netip.ParseAddr(f); err == nil {
			addr = addr.Unmap()
			out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
		}
	}
	return out
}

func tokenFromRequest(r *http.Request) string {
	if t := strings.TrimSpace(r.Header.Get(opsTokenHeader)); t != "" {
		return t
	}
	scheme, value, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	if ok && strings.EqualFold(scheme, "bearer") {
		return strings.TrimSpace(value)
	}
	return ""
}

// realIP prefers header (first item of a forwarded list) over RemoteAddr.
func realIP(r *http.Request, header string) (string, bool) {
	candidate := r.RemoteAddr
	if header != "" {
		if v := r.Header.Get(header); strings.TrimSpace(v) != "" {
			candidate, _, _ = strings.Cut(v, ",")
		}
	}
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return "", false
	}
	if host, _, err := net.SplitHostPort(candidate); err == nil {
		return host, true
	}
	return candidate, true
}
