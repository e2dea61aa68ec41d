package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ambulance-dispatch-service/internal/domain"
	"ambulance-dispatch-service/internal/platform/obs"
)

// RedisRutaCache caches computed routes keyed by lot id. The service
// layer invalidates on every membership change and stop transition, so
// the TTL only bounds staleness against out-of-band writers.
type RedisRutaCache struct {
	Cliente *redis.Client
	TTL     time.Duration
}

func NewRedisRutaCache(cliente *redis.Client, ttl time.Duration) *RedisRutaCache {
	return &RedisRutaCache{Cliente: cliente, TTL: ttl}
}

func claveRuta(loteID string) string { return "despacho:ruta:" + loteID }

func (c *RedisRutaCache) ObtenerRuta(ctx context.Context, loteID string) (_ *domain.Ruta, _ bool, err error) {
	defer obs.Time(ctx, "cache.ObtenerRuta")(&err)

	payload, err := c.Cliente.Get(ctx, claveRuta(loteID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache ruta: get lote %s: %w", loteID, err)
	}

	var ruta domain.Ruta
	if err := json.Unmarshal(payload, &ruta); err != nil {
		// A corrupt entry behaves like a miss; the next write heals it.
		return nil, false, fmt.Errorf("cache ruta: decode lote %s: %w", loteID, err)
	}

	return &ruta, true, nil
}

func (c *RedisRutaCache) GuardarRuta(ctx context.Context, ruta *domain.Ruta) error {
	payload, err := json.Marshal(ruta)
	if err != nil {
		return fmt.Errorf("cache ruta: encode lote %s: %w", ruta.LoteID, err)
	}

	if err := c.Cliente.Set(ctx, claveRuta(ruta.LoteID), payload, c.TTL).Err(); err != nil {
		return fmt.Errorf("cache ruta: set lote %s: %w", ruta.LoteID, err)
	}

	return nil
}

func (c *RedisRutaCache) InvalidarRuta(ctx context.Context, loteID string) error {
	if err := c.Cliente.Del(ctx, claveRuta(loteID)).Err(); err != nil {
		return fmt.Errorf("cache ruta: del lote %s: %w", loteID, err)
	}
	return nil
}
