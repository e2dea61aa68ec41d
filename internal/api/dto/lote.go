package dto

import (
	"time"

	"ambulance-dispatch-service/internal/domain"
)

type DestinoPrincipal struct {
	Nombre    string `json:"nombre"`
	Direccion string `json:"direccion"`
}

type CrearLoteRequest struct {
	Fecha            string           `json:"fecha"`
	DestinoPrincipal DestinoPrincipal `json:"destino_principal"`
	Notas            string           `json:"notas"`
}

// ActualizarServiciosRequest carries a membership delta; the server
// applies both lists as one transaction.
type ActualizarServiciosRequest struct {
	Agregar []string `json:"agregar"`
	Quitar  []string `json:"quitar"`
}

// AsignarAmbulanciaRequest with a null ambulancia_id unassigns.
type AsignarAmbulanciaRequest struct {
	AmbulanciaID *string `json:"ambulancia_id"`
}

type LoteResponse struct {
	ID               string           `json:"id"`
	Fecha            string           `json:"fecha"`
	DestinoPrincipal DestinoPrincipal `json:"destino_principal"`
	ServiciosIDs     []string         `json:"servicios_ids"`
	AmbulanciaID     *string          `json:"ambulancia_id"`
	RutaID           *string          `json:"ruta_id"`
	Estado           string           `json:"estado"`
	Notas            string           `json:"notas"`
	CreadoEn         time.Time        `json:"creado_en"`
	ActualizadoEn    time.Time        `json:"actualizado_en"`
}

func NuevoLoteResponse(l *domain.Lote) LoteResponse {
	servicios := l.ServiciosIDs
	if servicios == nil {
		servicios = []string{}
	}
	return LoteResponse{
		ID:    l.ID,
		Fecha: l.Fecha,
		DestinoPrincipal: DestinoPrincipal{
			Nombre:    l.DestinoPrincipal.Nombre,
			Direccion: l.DestinoPrincipal.Direccion,
		},
		ServiciosIDs:  servicios,
		AmbulanciaID:  l.AmbulanciaID,
		RutaID:        l.RutaID,
		Estado:        string(l.Estado),
		Notas:         l.Notas,
		CreadoEn:      l.CreadoEn,
		ActualizadoEn: l.ActualizadoEn,
	}
}
