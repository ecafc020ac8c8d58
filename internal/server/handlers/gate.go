package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/agrodepot/internal/domain/models"
)

const actorContextKey = "actor"

// ActorResolver builds capability tokens for authenticated identities.
type ActorResolver interface {
	ResolveActor(ctx context.Context, userID string) (models.Actor, error)
}

type actorEntry struct {
	actor     models.Actor
	expiresAt time.Time
}

// ActorCache keeps recently resolved capability tokens. Entries expire
// quickly so keeper reassignments and role changes propagate without a
// restart.
type ActorCache struct {
	mu      sync.RWMutex
	entries map[string]actorEntry
	ttl     time.Duration
}

// NewActorCache creates a cache with the given entry lifetime.
func NewActorCache(ttl time.Duration) *ActorCache {
	return &ActorCache{
		entries: make(map[string]actorEntry),
		ttl:     ttl,
	}
}

// Get returns the cached token for a user when still fresh.
func (c *ActorCache) Get(userID string) (models.Actor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[userID]
	if !ok || time.Now().After(entry.expiresAt) {
		return models.Actor{}, false
	}
	return entry.actor, true
}

// Put stores a freshly resolved token.
func (c *ActorCache) Put(userID string, actor models.Actor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[userID] = actorEntry{actor: actor, expiresAt: time.Now().Add(c.ttl)}
}

// Invalidate drops a user's cached token.
func (c *ActorCache) Invalidate(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
}

// ActorMiddleware is the access gate: it maps the authenticated
// identity (X-User-ID, injected by the fronting auth layer) to a
// capability token and attaches it to the request context. Requests
// without a resolvable identity never reach the core.
func ActorMiddleware(resolver ActorResolver, cache *ActorCache, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing X-User-ID header"})
			return
		}

		if actor, ok := cache.Get(userID); ok {
			c.Set(actorContextKey, actor)
			c.Next()
			return
		}

		actor, err := resolver.ResolveActor(c.Request.Context(), userID)
		if err != nil {
			logger.Warn("failed resolving actor", zap.String("user_id", userID), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown identity"})
			return
		}

		cache.Put(userID, actor)
		c.Set(actorContextKey, actor)
		c.Next()
	}
}

func actorFrom(c *gin.Context) models.Actor {
	if value, ok := c.Get(actorContextKey); ok {
		if actor, ok := value.(models.Actor); ok {
			return actor
		}
	}
	return models.Actor{}
}
