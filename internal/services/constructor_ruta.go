package services

import (
	"hash/fnv"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"

	"ambulance-dispatch-service/internal/domain"
)

// Estimation constants. These are planning placeholders, not routing
// computations: the reference behavior is a fixed sort by appointment
// time with constant offsets, and upgrading to real geospatial routing
// would change observable behavior.
const (
	// Crews are expected at the pickup one hour before the appointment.
	offsetRecogidaMin = 60

	// Travel estimate for the first leg out of base.
	viajePrimeraParadaMin = 30

	// Later legs get a deterministic estimate in [15,25) minutes.
	viajeBaseMin   = 15
	viajeRangoMin  = 10
	permanenciaMin = 20 // fixed dwell time per stop

	distanciaPorParadaKm = 15
)

// ConstruirParadas maps a lot's requests to its ordered stop sequence.
//
// Ordering is a stable sort on (appointment-or-scheduled time, creation
// timestamp, id); the two extra keys make the order total so it cannot
// depend on store iteration order. Orden is assigned 1..N in sorted
// order. The function is pure and re-runnable: the same request set
// always produces the same sequence and the same estimates.
func ConstruirParadas(solicitudes []*domain.Solicitud) []domain.Parada {
	ordenadas := slices.Clone(solicitudes)
	sort.SliceStable(ordenadas, func(i, j int) bool {
		hi, hj := ordenadas[i].HoraOrden(), ordenadas[j].HoraOrden()
		if hi.Minutos() != hj.Minutos() {
			return hi.Minutos() < hj.Minutos()
		}
		if !ordenadas[i].CreadaEn.Equal(ordenadas[j].CreadaEn) {
			return ordenadas[i].CreadaEn.Before(ordenadas[j].CreadaEn)
		}
		return ordenadas[i].ID < ordenadas[j].ID
	})

	paradas := make([]domain.Parada, 0, len(ordenadas))
	for i, s := range ordenadas {
		cita := s.HoraOrden()

		viaje := viajePrimeraParadaMin
		if i > 0 {
			viaje = viajeEstimadoMin(s.ID)
		}

		estado := domain.ParadaPendiente
		switch s.Estado {
		case domain.SolicitudCompletada:
			estado = domain.ParadaFinalizada
		case domain.SolicitudCancelada:
			estado = domain.ParadaCancelada
		}

		paradas = append(paradas, domain.Parada{
			ServicioID:                 s.ID,
			Orden:                      i + 1,
			PacienteNombre:             s.PacienteNombre,
			DireccionRecogida:          s.DireccionOrigen,
			Contacto:                   s.Contacto,
			Movilidad:                  s.Movilidad,
			Observaciones:              s.Observaciones,
			HoraCita:                   cita,
			HoraRecogidaEstimada:       cita.RestarMinutos(offsetRecogidaMin),
			HoraLlegadaDestinoEstimada: cita,
			TiempoDesdeAnteriorMin:     viaje,
			Estado:                     estado,
		})
	}

	return paradas
}

// viajeEstimadoMin returns a deterministic travel estimate in
// [viajeBaseMin, viajeBaseMin+viajeRangoMin) derived from the request
// id, so recomputation never shuffles estimates.
func viajeEstimadoMin(servicioID string) int {
	h := fnv.New32a()
	h.Write([]byte(servicioID))
	return viajeBaseMin + int(h.Sum32()%viajeRangoMin)
}

// ConstruirRuta computes a fresh route for a lot from its current
// member requests. When a previous route is given, in-flight stop state
// (status, notes, milestone timestamps) carries over for requests that
// remain members; estimates and ordering always come from the rebuild.
func ConstruirRuta(loteID string, solicitudes []*domain.Solicitud, anterior *domain.Ruta, ahora time.Time) *domain.Ruta {
	paradas := ConstruirParadas(solicitudes)

	if anterior != nil {
		for i := range paradas {
			previa := anterior.Parada(paradas[i].ServicioID)
			if previa == nil || previa.Estado == domain.ParadaPendiente {
				continue
			}
			paradas[i].Estado = previa.Estado
			paradas[i].Notas = previa.Notas
			paradas[i].SalidaRecogidaEn = previa.SalidaRecogidaEn
			paradas[i].RecogidaEn = previa.RecogidaEn
			paradas[i].LlegadaDestinoEn = previa.LlegadaDestinoEn
			paradas[i].FinalizadaEn = previa.FinalizadaEn
		}
	}

	duracion := 0
	for i := range paradas {
		duracion += paradas[i].TiempoDesdeAnteriorMin + permanenciaMin
	}

	var salida domain.Horario
	if len(paradas) > 0 {
		salida = paradas[0].HoraRecogidaEstimada.RestarMinutos(paradas[0].TiempoDesdeAnteriorMin)
	}

	return &domain.Ruta{
		ID:               uuid.NewString(),
		LoteID:           loteID,
		HoraSalidaBase:   salida,
		DuracionTotalMin: duracion,
		DistanciaTotalKm: distanciaPorParadaKm * len(paradas),
		CalculadaEn:      ahora,
		Paradas:          paradas,
	}
}
