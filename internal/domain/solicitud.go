package domain

import "time"

// EstadoSolicitud is the lifecycle status of a transport request.
// These values follow the intake system's English vocabulary; lot and
// stop statuses keep the operators' Spanish vocabulary.
type EstadoSolicitud string

const (
	// SolicitudPendiente means the request is available for planning.
	SolicitudPendiente EstadoSolicitud = "pending"

	// SolicitudPlanificada means the request belongs to a lot.
	SolicitudPlanificada EstadoSolicitud = "batched"

	// SolicitudDespachada means the crew is on its way to the pickup.
	SolicitudDespachada EstadoSolicitud = "dispatched"

	// SolicitudTransportando means the patient is on board.
	SolicitudTransportando EstadoSolicitud = "transporting"

	// SolicitudEnDestino means the crew is at the destination center.
	SolicitudEnDestino EstadoSolicitud = "onScene"

	SolicitudCompletada EstadoSolicitud = "completed"
	SolicitudCancelada  EstadoSolicitud = "cancelled"
)

// Movilidad is the mobility mode a patient requires for transport.
type Movilidad string

const (
	MovilidadCamilla     Movilidad = "camilla"
	MovilidadSillaRuedas Movilidad = "sillaRuedas"
	MovilidadAndando     Movilidad = "andando"
)

// Solicitud is a single programmed patient transport need, the unit of
// scheduling. LoteID is set if and only if Estado is batched-or-later
// for that lot; removing the request from a lot clears LoteID and
// resets Estado to pending.
type Solicitud struct {
	ID                string
	PacienteNombre    string
	PacienteDocumento string
	CentroOrigen      string
	DireccionOrigen   string
	Destino           string
	Fecha             string // service date, "YYYY-MM-DD"
	HoraServicio      Horario
	HoraCita          *Horario
	Movilidad         Movilidad
	Prioridad         string
	Contacto          string
	Observaciones     string
	Estado            EstadoSolicitud
	LoteID            *string
	CreadaEn          time.Time
}

// HoraOrden is the stop ordering key: the appointment time when one
// exists, otherwise the scheduled service time.
func (s *Solicitud) HoraOrden() Horario {
	if s.HoraCita != nil {
		return *s.HoraCita
	}
	return s.HoraServicio
}

// EsTerminal reports whether the request reached a final status.
func (e EstadoSolicitud) EsTerminal() bool {
	return e == SolicitudCompletada || e == SolicitudCancelada
}
