package middleware

import (
	"context"
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"storvbox-be/internal/logger"
	"storvbox-be/internal/utils"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Tier is a rate limit policy. Limits are per identity per tier.
type Tier struct {
	Name  string
	Limit rate.Limit
	Burst int
}

var (
	// login, register, admin login, forms
	TierStrict = Tier{Name: "strict", Limit: rate.Every(time.Minute / 10), Burst: 10}
	// default for the API
	TierGeneral = Tier{Name: "general", Limit: rate.Every(time.Minute / 100), Burst: 100}
	// public catalog and content reads
	TierGenerous = Tier{Name: "generous", Limit: rate.Every(time.Minute / 200), Burst: 200}
)

const msgTooManyRequests = "Твърде много заявки. Моля, опитайте по-късно."

// visitor holds the rate limiter and the last time it was seen.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type Limiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	idleTTL  time.Duration
}

// NewLimiter starts a cleanup loop that runs until ctx is done.
func NewLimiter(ctx context.Context) *Limiter {
	l := &Limiter{
		visitors: make(map[string]*visitor),
		idleTTL:  3 * time.Minute,
	}
	go l.cleanup(ctx, time.Minute)
	return l
}

func (l *Limiter) get(key string, tier Tier) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, exists := l.visitors[key]
	if !exists {
		limiter := rate.NewLimiter(tier.Limit, tier.Burst)
		l.visitors[key] = &visitor{limiter, time.Now()}
		return limiter
	}

	v.lastSeen = time.Now()
	return v.limiter
}

func (l *Limiter) cleanup(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.evictIdle()
		}
	}
}

func (l *Limiter) evictIdle() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, v := range l.visitors {
		if time.Since(v.lastSeen) > l.idleTTL {
			delete(l.visitors, key)
		}
	}
}

// Middleware limits requests under the given tier.
func (l *Limiter) Middleware(tier Tier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := fmt.Sprintf("%s:%s", identityKey(r), tier.Name)

			if !l.get(key, tier).Allow() {
				logger.FromCtx(r.Context()).Warn("rate limit exceeded",
					zap.String("tier", tier.Name),
					zap.String("key", key),
				)
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(1/float64(tier.Limit)))))
				utils.WriteJSONError(w, msgTooManyRequests, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// identityKey prefers the session user, then a client device id, then the IP.
func identityKey(r *http.Request) string {
	if id, ok := utils.IdentityFromContext(r.Context()); ok {
		if id.UserID != "" {
			return "user:" + id.UserID
		}
		if id.IsAdmin {
			return "admin:" + id.Email
		}
	}
	if deviceID := r.Header.Get("X-Device-ID"); deviceID != "" {
		return "device:" + deviceID
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	return "ip:" + ip
}
