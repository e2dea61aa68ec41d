package domain

import "errors"

// Sentinel errors for the dispatch core. Callers match with errors.Is;
// every layer wraps these with operation context via fmt.Errorf + %w.
var (
	// A lot, route, request or ambulance id does not exist.
	ErrNoEncontrado = errors.New("no encontrado")

	// A stop status change violates the sequential state machine.
	ErrTransicionInvalida = errors.New("transicion invalida")

	// Mutation attempted on a finalized stop or lot.
	ErrEstadoTerminal = errors.New("estado terminal")

	// The requested membership change would leave lot.ServiciosIDs and
	// the requests' LoteID pointers in disagreement.
	ErrMiembrosInconsistentes = errors.New("miembros inconsistentes")

	// Ambulance exists but cannot take an assignment.
	ErrAmbulanciaNoDisponible = errors.New("ambulancia no disponible")
)
