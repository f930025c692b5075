package repository

import (
	"sync"
	"time"

	"paygate/internal/models"
)

// GatewayResolver fronts GatewayRepository with a small TTL cache so
// every storefront request does not hit the database for credentials
// that change rarely. Entries expire after ttl; a site's credential
// update is picked up on the next miss.
type GatewayResolver struct {
	repo *GatewayRepository
	ttl  time.Duration

	mu    sync.Mutex
	cache map[string]cachedGateway
}

type cachedGateway struct {
	gateway *models.Gateway
	expires time.Time
}

// NewGatewayResolver creates a resolver with the given cache TTL.
func NewGatewayResolver(repo *GatewayRepository, ttl time.Duration) *GatewayResolver {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &GatewayResolver{
		repo:  repo,
		ttl:   ttl,
		cache: make(map[string]cachedGateway),
	}
}

// Resolve returns the enabled gateway credentials for a site and
// payment type, from cache when fresh.
func (g *GatewayResolver) Resolve(site, paymentType string) (*models.Gateway, error) {
	key := site + "|" + paymentType
	now := time.Now()

	g.mu.Lock()
	if entry, ok := g.cache[key]; ok && entry.expires.After(now) {
		g.mu.Unlock()
		return entry.gateway, nil
	}
	g.mu.Unlock()

	gw, err := g.repo.FindEnabled(site, paymentType)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	g.cache[key] = cachedGateway{gateway: gw, expires: now.Add(g.ttl)}
	g.mu.Unlock()

	return gw, nil
}

// Invalidate drops a site's cached credentials, called after an upsert.
func (g *GatewayResolver) Invalidate(site string) {
	g.mu.Lock()
	for key := range g.cache {
		if len(key) > len(site) && key[:len(site)] == site && key[len(site)] == '|' {
			delete(g.cache, key)
		}
	}
	g.mu.Unlock()
}
