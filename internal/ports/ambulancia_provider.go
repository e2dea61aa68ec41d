package ports

import (
	"context"

	"ambulance-dispatch-service/internal/domain"
)

// Contract for read-only vehicle lookups. The dispatch core validates
// and displays assignments; it does not own ambulance lifecycle.
type AmbulanciaProvider interface {
	// Returns domain.ErrNoEncontrado for unknown ids.
	ObtenerAmbulancia(ctx context.Context, id string) (*domain.Ambulancia, error)

	ListarAmbulancias(ctx context.Context) ([]*domain.Ambulancia, error)
}
