package handlers

import (
	"net/http"

	"ambulance-dispatch-service/internal/api/dto"
	"ambulance-dispatch-service/internal/services"
)

// AmbulanciaHandler feeds the assignment dropdowns. Read-only.
type AmbulanciaHandler struct {
	Servicio *services.ServicioDespacho
}

func (h *AmbulanciaHandler) List(w http.ResponseWriter, r *http.Request) {
	flota, err := h.Servicio.Ambulancias(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	res := dto.ListAmbulanciasResponse{
		Ambulancias: make([]dto.AmbulanciaResponse, 0, len(flota)),
	}
	for _, a := range flota {
		res.Ambulancias = append(res.Ambulancias, dto.NuevaAmbulanciaResponse(a))
	}

	writeJSON(w, r, http.StatusOK, res)
}
