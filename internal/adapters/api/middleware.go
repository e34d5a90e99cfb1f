package api

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/andrescamacho/imperium/internal/application/auth"
	"github.com/andrescamacho/imperium/internal/application/common"
	"github.com/andrescamacho/imperium/internal/infrastructure/config"
)

const (
	actorKey     = "actor"
	requestIDKey = "X-Request-ID"
)

// RequestLogger logs every request and attaches a request-scoped logger to
// the request context for the application layer
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(requestIDKey)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDKey, requestID)

		reqLogger := logger.With(zap.String("request_id", requestID))
		c.Request = c.Request.WithContext(common.WithLogger(c.Request.Context(), reqLogger))

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if actor := c.GetString(actorKey); actor != "" {
			fields = append(fields, zap.String("actor", actor))
		}

		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			reqLogger.Error("request completed", fields...)
		case c.Writer.Status() >= http.StatusBadRequest:
			reqLogger.Info("request completed", fields...)
		default:
			reqLogger.Debug("request completed", fields...)
		}
	}
}

// ActorAuth identifies the acting player. In jwt mode the subject of an
// HS256 bearer token is the actor; in header mode a trusted gateway header is.
func ActorAuth(cfg config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		var (
			actor string
			err   error
		)
		if cfg.Mode == "jwt" {
			actor, err = actorFromBearer(c.GetHeader("Authorization"), cfg)
		} else {
			actor = strings.TrimSpace(c.GetHeader(cfg.Header))
			if actor == "" {
				err = fmt.Errorf("missing %s header", cfg.Header)
			}
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{
				Code:    codeUnauthenticated,
				Message: err.Error(),
			})
			return
		}

		c.Set(actorKey, actor)
		c.Request = c.Request.WithContext(auth.WithActor(c.Request.Context(), actor))
		c.Next()
	}
}

func actorFromBearer(header string, cfg config.AuthConfig) (string, error) {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("missing bearer token")
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(strings.TrimSpace(raw), claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(cfg.JWTSecret), nil
	}, opts...)
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid || claims.Subject == "" {
		return "", fmt.Errorf("invalid token")
	}
	return claims.Subject, nil
}

// RateLimiter keeps one token bucket per actor
type RateLimiter struct {
	limit   rate.Limit
	burst   int
	clients map[string]*actorLimiter
	mu      sync.Mutex
}

type actorLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// idleLimiterTTL is how long an unused bucket is kept
const idleLimiterTTL = 10 * time.Minute

// NewRateLimiter creates a limiter allowing requestsPerSecond with burst per actor
func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		limit:   rate.Limit(cfg.Requests),
		burst:   cfg.Burst,
		clients: make(map[string]*actorLimiter),
	}
}

func (rl *RateLimiter) allow(actor string, now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, exists := rl.clients[actor]
	if !exists {
		entry = &actorLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[actor] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

// Prune drops buckets idle since before now minus the idle TTL
func (rl *RateLimiter) Prune(now time.Time) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	for actor, entry := range rl.clients {
		if now.Sub(entry.lastSeen) > idleLimiterTTL {
			delete(rl.clients, actor)
			removed++
		}
	}
	return removed
}

// Middleware rejects requests above the actor's rate with 429. It must run
// after ActorAuth.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := c.GetString(actorKey)
		if !rl.allow(actor, time.Now()) {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse{
				Code:    codeRateLimited,
				Message: "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
