package domain

import "time"

// Ruta is the computed visiting order and timing for one lot. It is
// derived entirely from the lot's ServiciosIDs and is regenerated, not
// patched, whenever membership changes.
type Ruta struct {
	ID               string
	LoteID           string
	HoraSalidaBase   Horario
	DuracionTotalMin int
	DistanciaTotalKm int
	CalculadaEn      time.Time
	Paradas          []Parada
}

// Parada is one patient pickup-and-delivery visit within a route.
// Orden is 1-based, unique and contiguous within the route. The patient
// fields are a snapshot taken at computation time so a crew sheet stays
// readable even if the intake record changes afterwards.
type Parada struct {
	ServicioID                 string
	Orden                      int
	PacienteNombre             string
	DireccionRecogida          string
	Contacto                   string
	Movilidad                  Movilidad
	Observaciones              string
	HoraCita                   Horario
	HoraRecogidaEstimada       Horario
	HoraLlegadaDestinoEstimada Horario
	TiempoDesdeAnteriorMin     int
	Estado                     EstadoParada
	Notas                      string

	// Milestone timestamps, stamped as the crew advances the stop.
	// They are monotonically non-decreasing within one stop's history.
	SalidaRecogidaEn *time.Time
	RecogidaEn       *time.Time
	LlegadaDestinoEn *time.Time
	FinalizadaEn     *time.Time
}

// Parada returns the stop for a request id, or nil when absent.
func (r *Ruta) Parada(servicioID string) *Parada {
	for i := range r.Paradas {
		if r.Paradas[i].ServicioID == servicioID {
			return &r.Paradas[i]
		}
	}
	return nil
}

// Completa reports whether the lot is eligible for LoteCompletado:
// every stop terminal and at least one stop present.
func (r *Ruta) Completa() bool {
	if len(r.Paradas) == 0 {
		return false
	}
	for i := range r.Paradas {
		if !r.Paradas[i].Estado.EsTerminal() {
			return false
		}
	}
	return true
}
