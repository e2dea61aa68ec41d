package ports

import (
	"context"

	"ambulance-dispatch-service/internal/domain"
)

// Port: a boundary for retrieving and mutating transport requests.
type SolicitudRepository interface {
	// Retrieve one request by id. Returns domain.ErrNoEncontrado for
	// unknown ids; membership code depends on that (silent no-ops are
	// how pointers drift).
	ObtenerSolicitud(ctx context.Context, id string) (*domain.Solicitud, error)

	// Requests with status pending for a service date, available to
	// add to a lot.
	SolicitudesPendientesPorFecha(ctx context.Context, fecha string) ([]*domain.Solicitud, error)

	// All requests currently assigned to a lot.
	SolicitudesPorLote(ctx context.Context, loteID string) ([]*domain.Solicitud, error)

	// Update a request's lifecycle status without touching membership.
	ActualizarEstadoSolicitud(ctx context.Context, id string, estado domain.EstadoSolicitud) error
}
