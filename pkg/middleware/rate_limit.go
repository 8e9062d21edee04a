package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/yeisme/docchat/pkg/configs"
	"github.com/yeisme/docchat/pkg/metrics"
)

// limiterIdleTTL 超过该时长未访问的 limiter 会被回收.
const limiterIdleTTL = 10 * time.Minute

type keyedLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterSet 按键维护 limiter，访问时顺带回收闲置项.
type limiterSet struct {
	mu       sync.Mutex
	rps      rate.Limit
	burst    int
	entries  map[string]*keyedLimiter
	lastSwep time.Time
}

func newLimiterSet(rps float64, burst int) *limiterSet {
	return &limiterSet{
		rps:      rate.Limit(rps),
		burst:    burst,
		entries:  map[string]*keyedLimiter{},
		lastSwep: time.Now(),
	}
}

func (s *limiterSet) allow(key string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Sub(s.lastSwep) > limiterIdleTTL {
		for k, e := range s.entries {
			if now.Sub(e.lastSeen) > limiterIdleTTL {
				delete(s.entries, k)
			}
		}

		s.lastSwep = now
	}

	e, ok := s.entries[key]
	if !ok {
		e = &keyedLimiter{limiter: rate.NewLimiter(s.rps, s.burst)}
		s.entries[key] = e
	}

	e.lastSeen = now

	return e.limiter.AllowN(now, 1)
}

// RateLimitMiddleware 返回一个基于配置的限流中间件.
// key 支持 global、ip 与 header:Header-Name，请求头缺失时回退到客户端 IP.
func RateLimitMiddleware(cfg configs.RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled || cfg.RPS <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	keyMode := strings.TrimSpace(cfg.Key)
	limiters := newLimiterSet(cfg.RPS, cfg.Burst)

	return func(c *gin.Context) {
		if isRateLimitExempt(c.Request.URL.Path, cfg.ExemptPaths) {
			c.Next()
			return
		}

		key := limitKey(c, keyMode)
		if !limiters.allow(key, time.Now()) {
			metrics.RateLimited.Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				gin.H{"error": "Rate limit exceeded, please try again later"})

			return
		}

		c.Next()
	}
}

func limitKey(c *gin.Context, mode string) string {
	var key string

	switch lower := strings.ToLower(mode); {
	case lower == "" || lower == "global":
		return "global"
	case strings.HasPrefix(lower, "header:"):
		key = c.GetHeader(mode[len("header:"):])
		if key == "" {
			key = clientIP(c)
		}
	default:
		key = clientIP(c)
	}

	if key == "" {
		key = "unknown"
	}

	return key
}

func isRateLimitExempt(path string, exempt []string) bool {
	for _, p := range exempt {
		if p != "" && strings.HasPrefix(path, p) {
			return true
		}
	}

	return false
}

func clientIP(c *gin.Context) string {
	ip := c.ClientIP()
	if ip == "" {
		host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
		if err == nil {
			ip = host
		} else {
			ip = c.Request.RemoteAddr
		}
	}

	return ip
}
