package domain

import (
	"slices"
	"time"
)

// EstadoLote is the lifecycle status of a programmed lot.
type EstadoLote string

const (
	// LotePendienteCalculo: the lot has no computed route yet.
	LotePendienteCalculo EstadoLote = "pendienteCalculo"

	// LoteCalculado: a route exists for the current membership.
	LoteCalculado EstadoLote = "calculado"

	// LoteAsignado: an ambulance is attached.
	LoteAsignado EstadoLote = "asignado"

	// LoteEnCurso: the crew started executing the route.
	LoteEnCurso EstadoLote = "enCurso"

	// LoteModificado: membership changed after the last computation;
	// the route must be regenerated before it is served again.
	LoteModificado EstadoLote = "modificado"

	LoteCompletado EstadoLote = "completado"
	LoteCancelado  EstadoLote = "cancelado"
)

// DestinoPrincipal is the shared destination a lot is routed towards.
type DestinoPrincipal struct {
	Nombre    string
	Direccion string
}

// Lote is a same-day grouping of transport requests routed together.
// ServiciosIDs is the single source of truth for membership; stop
// ordering is computed by the route builder, never stored here.
type Lote struct {
	ID               string
	Fecha            string // "YYYY-MM-DD"
	DestinoPrincipal DestinoPrincipal
	ServiciosIDs     []string
	AmbulanciaID     *string
	RutaID           *string
	Estado           EstadoLote
	Notas            string
	CreadoEn         time.Time
	ActualizadoEn    time.Time
}

func (l *Lote) Contiene(servicioID string) bool {
	return slices.Contains(l.ServiciosIDs, servicioID)
}

// EsTerminal reports whether the lot accepts no further mutation.
func (l *Lote) EsTerminal() bool {
	return l.Estado == LoteCompletado || l.Estado == LoteCancelado
}
