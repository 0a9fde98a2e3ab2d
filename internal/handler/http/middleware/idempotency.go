package middleware

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sitework/workforce-backend-go/internal/handler/http/response"
)

const (
	IdempotencyKeyHeader = "Idempotency-Key"
	ReplayedHeader       = "Idempotent-Replayed"

	idempotencyLockTTL = 30 * time.Second
)

// Idempotency replays the stored reply of a POST already completed with the
// same Idempotency-Key, and rejects a concurrent duplicate with 409 while
// the first one is still in flight. Replies with a 5xx status are not stored
// so the client can retry them. Requests without the header pass through.
func Idempotency(rdb redis.Cmdable, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			idempKey := r.Header.Get(IdempotencyKeyHeader)
			if idempKey == "" || r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			cacheKey := fmt.Sprintf("idemp:%s:%s:%s", r.URL.Path, adminIDFromRequest(r), idempKey)
			lockKey := cacheKey + ":lock"

			cached, err := rdb.Get(ctx, cacheKey).Result()
			switch {
			case err == nil:
				if replay(w, cached) {
					return
				}
				slog.Warn("discarding malformed idempotency entry", "key", cacheKey)
			case !errors.Is(err, redis.Nil):
				slog.Warn("idempotency store unavailable, serving without replay", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			locked, err := rdb.SetNX(ctx, lockKey, "locked", idempotencyLockTTL).Result()
			if err != nil {
				slog.Warn("idempotency lock failed, serving without replay", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !locked {
				response.Conflict(w, "A request with this idempotency key is still being processed")
				return
			}

			rec := &recordingWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			if rec.status < http.StatusInternalServerError {
				entry := fmt.Sprintf("%d\n%s", rec.status, rec.body.String())
				if err := rdb.Set(ctx, cacheKey, entry, ttl).Err(); err != nil {
					slog.Warn("store idempotent reply failed", "key", cacheKey, "error", err)
				}
			}
			if err := rdb.Del(ctx, lockKey).Err(); err != nil {
				slog.Warn("release idempotency lock failed", "key", lockKey, "error", err)
			}
		})
	}
}

func replay(w http.ResponseWriter, entry string) bool {
	statusText, body, ok := strings.Cut(entry, "\n")
	if !ok {
		return false
	}
	status, err := strconv.Atoi(statusText)
	if err != nil {
		return false
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(ReplayedHeader, "true")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
	return true
}

type recordingWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	body        bytes.Buffer
}

func (w *recordingWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.status = status
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *recordingWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}
