package ports

import (
	"context"

	"ambulance-dispatch-service/internal/domain"
)

// Optional cache for computed routes, keyed by lot id.
// A cache must never serve a route for stale membership: writers
// invalidate before returning from any membership change.
type RutaCache interface {
	// ObtenerRuta returns (ruta, true, nil) on a hit and
	// (nil, false, nil) on a miss.
	ObtenerRuta(ctx context.Context, loteID string) (*domain.Ruta, bool, error)

	GuardarRuta(ctx context.Context, ruta *domain.Ruta) error

	InvalidarRuta(ctx context.Context, loteID string) error
}
