package httpadapter

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Mo-nish/Invensis-Requiter/internal/chatapi"
	"github.com/Mo-nish/Invensis-Requiter/internal/domain"
	"github.com/Mo-nish/Invensis-Requiter/internal/metrics"
	"github.com/Mo-nish/Invensis-Requiter/internal/observability"
)

type ctxKey string

const ctxKeyIdentity ctxKey = "identity"

// withRequestContext copies chi's request id into the observability context
// so service logs carry it.
func withRequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := middleware.GetReqID(r.Context())
		if reqID != "" {
			w.Header().Set(middleware.RequestIDHeader, reqID)
			r = r.WithContext(observability.WithRequestID(r.Context(), reqID))
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging logs every request once it has been served.
func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		observability.LoggerFromContext(r.Context()).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

// withMetrics records request counts and latency by route pattern.
func withMetrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m == nil {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			m.RequestsInFlight.Inc()
			defer m.RequestsInFlight.Dec()

			next.ServeHTTP(ww, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			m.RecordRequest(route, r.Method, strconv.Itoa(status), time.Since(start))
		})
	}
}

// withCORS adds CORS headers so the widget can call from the portal origin.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", strings.Join([]string{
			"Content-Type",
			"Authorization",
			chatapi.HeaderUserID,
			chatapi.HeaderUserRole,
			chatapi.HeaderUserName,
			chatapi.HeaderUserEmail,
		}, ", "))

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withIdentity reads the caller identity set by the portal gateway. Missing
// headers mean an anonymous visitor.
func withIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := domain.Identity{
			UserID: domain.UserID(strings.TrimSpace(r.Header.Get(chatapi.HeaderUserID))),
			Role:   domain.ParseRole(r.Header.Get(chatapi.HeaderUserRole)),
			Name:   strings.TrimSpace(r.Header.Get(chatapi.HeaderUserName)),
			Email:  strings.TrimSpace(r.Header.Get(chatapi.HeaderUserEmail)),
		}
		ctx := context.WithValue(r.Context(), ctxKeyIdentity, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func identityFrom(ctx context.Context) domain.Identity {
	id, ok := ctx.Value(ctxKeyIdentity).(domain.Identity)
	if !ok {
		return domain.VisitorIdentity()
	}
	return id
}
