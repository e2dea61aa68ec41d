package dto

import (
	"time"

	"ambulance-dispatch-service/internal/domain"
)

type SolicitudResponse struct {
	ID                string    `json:"id"`
	PacienteNombre    string    `json:"paciente_nombre"`
	PacienteDocumento string    `json:"paciente_documento"`
	CentroOrigen      string    `json:"centro_origen"`
	DireccionOrigen   string    `json:"direccion_origen"`
	Destino           string    `json:"destino"`
	Fecha             string    `json:"fecha"`
	HoraServicio      string    `json:"hora_servicio"`
	HoraCita          *string   `json:"hora_cita"`
	Movilidad         string    `json:"movilidad"`
	Prioridad         string    `json:"prioridad"`
	Contacto          string    `json:"contacto"`
	Observaciones     string    `json:"observaciones"`
	Estado            string    `json:"estado"`
	LoteID            *string   `json:"lote_id"`
	CreadaEn          time.Time `json:"creada_en"`
}

type ListSolicitudesResponse struct {
	Solicitudes []SolicitudResponse `json:"solicitudes"`
}

func NuevaSolicitudResponse(s *domain.Solicitud) SolicitudResponse {
	res := SolicitudResponse{
		ID:                s.ID,
		PacienteNombre:    s.PacienteNombre,
		PacienteDocumento: s.PacienteDocumento,
		CentroOrigen:      s.CentroOrigen,
		DireccionOrigen:   s.DireccionOrigen,
		Destino:           s.Destino,
		Fecha:             s.Fecha,
		HoraServicio:      s.HoraServicio.String(),
		Movilidad:         string(s.Movilidad),
		Prioridad:         s.Prioridad,
		Contacto:          s.Contacto,
		Observaciones:     s.Observaciones,
		Estado:            string(s.Estado),
		LoteID:            s.LoteID,
		CreadaEn:          s.CreadaEn,
	}
	if s.HoraCita != nil {
		cita := s.HoraCita.String()
		res.HoraCita = &cita
	}
	return res
}
