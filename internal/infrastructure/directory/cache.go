package directory

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jhoicas/oficialia-api/internal/application/correspondence"
	"github.com/jhoicas/oficialia-api/internal/domain/entity"
)

var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oficialia_directorio_cache_hits_total",
		Help: "Consultas de área resueltas desde el caché.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oficialia_directorio_cache_misses_total",
		Help: "Consultas de área que llegaron al directorio.",
	})
)

var _ correspondence.DirectoryClient = (*CachedClient)(nil)

// CachedClient envuelve un DirectoryClient con un LRU con TTL para GetArea.
// Solo se guardan respuestas exitosas; ListAreas siempre consulta al directorio.
type CachedClient struct {
	next  correspondence.DirectoryClient
	areas *expirable.LRU[int64, entity.Area]
}

// NewCachedClient size = máximo de áreas en caché, ttl = vida de cada entrada.
func NewCachedClient(next correspondence.DirectoryClient, size int, ttl time.Duration) *CachedClient {
	if size <= 0 {
		size = 256
	}
	return &CachedClient{
		next:  next,
		areas: expirable.NewLRU[int64, entity.Area](size, nil, ttl),
	}
}

// GetArea área desde caché o directorio.
func (c *CachedClient) GetArea(ctx context.Context, id int64) (*entity.Area, error) {
	if a, ok := c.areas.Get(id); ok {
		cacheHitsTotal.Inc()
		return &a, nil
	}
	cacheMissesTotal.Inc()
	a, err := c.next.GetArea(ctx, id)
	if err != nil {
		return nil, err
	}
	if a != nil {
		c.areas.Add(id, *a)
	}
	return a, nil
}

// ListAreas también refresca el caché con lo recibido.
func (c *CachedClient) ListAreas(ctx context.Context) ([]entity.Area, error) {
	list, err := c.next.ListAreas(ctx)
	if err != nil {
		return nil, err
	}
	for _, a := range list {
		c.areas.Add(a.ID, a)
	}
	return list, nil
}
