package handlers

import (
	"net/http"
	"strings"

	"ambulance-dispatch-service/internal/api/dto"
	"ambulance-dispatch-service/internal/services"
)

// SolicitudHandler exposes read-only request retrieval for the planning
// screens ("available to add to a lot" for a service date).
type SolicitudHandler struct {
	Servicio *services.ServicioDespacho
}

func (h *SolicitudHandler) ListPendientes(w http.ResponseWriter, r *http.Request) {
	fecha := strings.TrimSpace(r.URL.Query().Get("fecha"))
	if fecha == "" {
		writeError(w, r, http.StatusBadRequest, "fecha query parameter is required")
		return
	}

	solicitudes, err := h.Servicio.SolicitudesPendientes(r.Context(), fecha)
	if err != nil {
		respondError(w, r, err)
		return
	}

	res := dto.ListSolicitudesResponse{
		Solicitudes: make([]dto.SolicitudResponse, 0, len(solicitudes)),
	}
	for _, s := range solicitudes {
		res.Solicitudes = append(res.Solicitudes, dto.NuevaSolicitudResponse(s))
	}

	writeJSON(w, r, http.StatusOK, res)
}
