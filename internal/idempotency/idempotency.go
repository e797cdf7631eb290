// internal/idempotency/idempotency.go
package idempotency

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"sika-wallet/internal/api/middleware"
)

// Header is the request header callers set to deduplicate submissions.
const Header = "Idempotency-Key"

// NewRedisClient connects to Redis at addr. An empty addr or an unreachable
// server disables the idempotency cache rather than failing startup.
func NewRedisClient(addr string, logger *slog.Logger) *redis.Client {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis unreachable, idempotency cache disabled", "error", err)
		return nil
	}
	return client
}

// Cache is a keyed store of prior responses. Callers that resubmit the same
// Idempotency-Key within the TTL get the first response replayed instead of
// executing the operation twice. The ledger engine itself is unaware of it.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCache creates a Cache. A nil client yields a passthrough cache.
func NewCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Cache {
	return &Cache{client: client, ttl: ttl, logger: logger}
}

type storedResponse struct {
	Status int    `json:"status"`
	Body   []byte `json:"body"`
}

// Key builds the cache key for a request. Keys are scoped per account and
// per endpoint: two callers reusing the same Idempotency-Key must never see
// each other's responses.
func Key(r *http.Request) string {
	accountID, _ := middleware.AccountIDFromContext(r.Context())
	return fmt.Sprintf("idem:%d:%s:%s:%s", accountID, r.Method, r.URL.Path, r.Header.Get(Header))
}

// Middleware replays cached responses for repeated mutating requests that
// carry an Idempotency-Key header. Responses with 5xx statuses are not
// cached, since those are the retryable failures.
func (c *Cache) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c.client == nil || r.Method != http.MethodPost || r.Header.Get(Header) == "" {
			next.ServeHTTP(w, r)
			return
		}

		key := Key(r)
		cached, err := c.client.Get(r.Context(), key).Bytes()
		if err == nil {
			var stored storedResponse
			if json.Unmarshal(cached, &stored) == nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(stored.Status)
				_, _ = w.Write(stored.Body)
				return
			}
		} else if err != redis.Nil {
			c.logger.Warn("Idempotency cache read failed", "error", err)
		}

		recorder := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		if recorder.status < http.StatusInternalServerError {
			payload, err := json.Marshal(storedResponse{Status: recorder.status, Body: recorder.body.Bytes()})
			if err == nil {
				if err := c.client.Set(r.Context(), key, payload, c.ttl).Err(); err != nil {
					c.logger.Warn("Idempotency cache write failed", "error", err)
				}
			}
		}
	})
}

// responseRecorder tees the response body so it can be cached.
type responseRecorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}
