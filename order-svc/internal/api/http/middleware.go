package httpapi

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"tabletap/order-svc/internal/domain"
	"tabletap/order-svc/internal/identity"
	"tabletap/pkg/authtoken"

	"golang.org/x/time/rate"
)

type contextKey int

const sessionKey contextKey = iota

// CartSessionHeader identifies an anonymous browser's cart.
const CartSessionHeader = "X-Cart-Session"

func withSession(ctx context.Context, session *identity.Session) context.Context {
	return context.WithValue(ctx, sessionKey, session)
}

// sessionFrom never returns nil; requests without credentials get an anonymous session.
func sessionFrom(r *http.Request) *identity.Session {
	if session, ok := r.Context().Value(sessionKey).(*identity.Session); ok && session != nil {
		return session
	}
	return identity.Anonymous(r.Header.Get(CartSessionHeader))
}

// authenticate resolves a bearer token into a session. A request without a token
// continues anonymously; a request with a bad token is rejected.
func (h *Handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r.WithContext(withSession(r.Context(), identity.Anonymous(r.Header.Get(CartSessionHeader)))))
			return
		}

		session, err := h.Resolver.FromToken(r.Context(), authtoken.FromHeader(header))
		if err != nil {
			writeError(w, h.Logger, domain.ErrUnauthenticated)
			return
		}
		session.AnonymousID = r.Header.Get(CartSessionHeader)
		next.ServeHTTP(w, r.WithContext(withSession(r.Context(), session)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusRecorder) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// logRequests writes one line per request and turns a panic into a 500.
func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		defer func() {
			if rec := recover(); rec != nil {
				h.Logger.Error().
					Interface("panic", rec).
					Bytes("stack", debug.Stack()).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Msg("handler panicked")
				writeJSON(recorder, http.StatusInternalServerError, errorResponse{Error: "internal error"})
			}

			h.Logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", recorder.status).
				Dur("duration", time.Since(start)).
				Msg("request completed")
		}()

		next.ServeHTTP(recorder, r)
	})
}

// LoginLimiter throttles login attempts per client address.
type LoginLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
	trusted  []*net.IPNet
}

func NewLoginLimiter(perSecond float64, burst int) *LoginLimiter {
	return &LoginLimiter{
		limiters: map[string]*rate.Limiter{},
		limit:    rate.Limit(perSecond),
		burst:    burst,
	}
}

// TrustProxies lists the networks whose X-Forwarded-For header is believed.
func (l *LoginLimiter) TrustProxies(cidrs []string) error {
	trusted := make([]*net.IPNet, 0, len(cidrs))
	for _, cidr := range cidrs {
		_, network, err := net.ParseCIDR(strings.TrimSpace(cidr))
		if err != nil {
			return fmt.Errorf("trusted proxy %q: %w", cidr, err)
		}
		trusted = append(trusted, network)
	}
	l.trusted = trusted
	return nil
}

func (l *LoginLimiter) allow(key string) bool {
	l.mu.Lock()
	limiter, ok := l.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[key] = limiter
	}
	l.mu.Unlock()
	return limiter.Allow()
}

func (l *LoginLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l != nil && !l.allow(l.clientAddr(r)) {
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "too many login attempts"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (l *LoginLimiter) fromTrustedProxy(host string) bool {
	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	for _, network := range l.trusted {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// clientAddr is the peer address, or the rightmost X-Forwarded-For entry when
// the peer is a trusted proxy. Entries further left come from the client.
func (l *LoginLimiter) clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if !l.fromTrustedProxy(host) {
		return host
	}

	entries := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	if last := strings.TrimSpace(entries[len(entries)-1]); last != "" {
		return last
	}
	return host
}
