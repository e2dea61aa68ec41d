package ports

import (
	"context"

	"ambulance-dispatch-service/internal/domain"
)

// Port: a boundary for storing programmed lots.
type LoteRepository interface {
	CrearLote(ctx context.Context, lote *domain.Lote) error

	// Returns domain.ErrNoEncontrado for unknown ids.
	ObtenerLote(ctx context.Context, id string) (*domain.Lote, error)

	// Persist the full lot record (status, vehicle, route pointer, notas).
	GuardarLote(ctx context.Context, lote *domain.Lote) error

	// ReemplazarMiembros applies a membership change as one atomic unit:
	// each added request gets LoteID set and status batched, each removed
	// request gets LoteID cleared and status pending, and the lot's
	// ServiciosIDs becomes the resulting set with status modificado.
	//
	// Implementations validate inside the same transaction boundary:
	// unknown ids fail with domain.ErrNoEncontrado, requests that are not
	// addable/removable fail with domain.ErrMiembrosInconsistentes, and
	// in either case nothing is written.
	ReemplazarMiembros(ctx context.Context, loteID string, agregar, quitar []string) (*domain.Lote, error)
}
