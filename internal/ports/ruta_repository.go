package ports

import (
	"context"

	"ambulance-dispatch-service/internal/domain"
)

// Port: a boundary for storing computed routes.
type RutaRepository interface {
	// The current route for a lot. Returns domain.ErrNoEncontrado when
	// no route has been computed yet.
	ObtenerRutaPorLote(ctx context.Context, loteID string) (*domain.Ruta, error)

	// GuardarRuta replaces any previously stored route for the same lot.
	GuardarRuta(ctx context.Context, ruta *domain.Ruta) error

	// ActualizarParada persists one stop's status, notes and milestone
	// timestamps in place. Estimates and ordering are only ever changed
	// by a full GuardarRuta.
	ActualizarParada(ctx context.Context, rutaID string, parada domain.Parada) error
}
