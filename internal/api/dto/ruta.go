package dto

import (
	"time"

	"ambulance-dispatch-service/internal/domain"
)

type EstadoParadaRequest struct {
	Estado string `json:"estado"`
}

type ParadaResponse struct {
	ServicioID                 string     `json:"servicio_id"`
	Orden                      int        `json:"orden"`
	PacienteNombre             string     `json:"paciente_nombre"`
	DireccionRecogida          string     `json:"direccion_recogida"`
	Contacto                   string     `json:"contacto"`
	Movilidad                  string     `json:"movilidad"`
	Observaciones              string     `json:"observaciones"`
	HoraCita                   string     `json:"hora_cita"`
	HoraRecogidaEstimada       string     `json:"hora_recogida_estimada"`
	HoraLlegadaDestinoEstimada string     `json:"hora_llegada_destino_estimada"`
	TiempoDesdeAnteriorMin     int        `json:"tiempo_desde_anterior_min"`
	Estado                     string     `json:"estado"`
	Notas                      string     `json:"notas"`
	SalidaRecogidaEn           *time.Time `json:"salida_recogida_en"`
	RecogidaEn                 *time.Time `json:"recogida_en"`
	LlegadaDestinoEn           *time.Time `json:"llegada_destino_en"`
	FinalizadaEn               *time.Time `json:"finalizada_en"`
}

type RutaResponse struct {
	ID               string           `json:"id"`
	LoteID           string           `json:"lote_id"`
	HoraSalidaBase   string           `json:"hora_salida_base"`
	DuracionTotalMin int              `json:"duracion_total_min"`
	DistanciaTotalKm int              `json:"distancia_total_km"`
	CalculadaEn      time.Time        `json:"calculada_en"`
	Paradas          []ParadaResponse `json:"paradas"`
}

func NuevaParadaResponse(p *domain.Parada) ParadaResponse {
	return ParadaResponse{
		ServicioID:                 p.ServicioID,
		Orden:                      p.Orden,
		PacienteNombre:             p.PacienteNombre,
		DireccionRecogida:          p.DireccionRecogida,
		Contacto:                   p.Contacto,
		Movilidad:                  string(p.Movilidad),
		Observaciones:              p.Observaciones,
		HoraCita:                   p.HoraCita.String(),
		HoraRecogidaEstimada:       p.HoraRecogidaEstimada.String(),
		HoraLlegadaDestinoEstimada: p.HoraLlegadaDestinoEstimada.String(),
		TiempoDesdeAnteriorMin:     p.TiempoDesdeAnteriorMin,
		Estado:                     string(p.Estado),
		Notas:                      p.Notas,
		SalidaRecogidaEn:           p.SalidaRecogidaEn,
		RecogidaEn:                 p.RecogidaEn,
		LlegadaDestinoEn:           p.LlegadaDestinoEn,
		FinalizadaEn:               p.FinalizadaEn,
	}
}

func NuevaRutaResponse(r *domain.Ruta) RutaResponse {
	paradas := make([]ParadaResponse, 0, len(r.Paradas))
	for i := range r.Paradas {
		paradas = append(paradas, NuevaParadaResponse(&r.Paradas[i]))
	}
	return RutaResponse{
		ID:               r.ID,
		LoteID:           r.LoteID,
		HoraSalidaBase:   r.HoraSalidaBase.String(),
		DuracionTotalMin: r.DuracionTotalMin,
		DistanciaTotalKm: r.DistanciaTotalKm,
		CalculadaEn:      r.CalculadaEn,
		Paradas:          paradas,
	}
}
