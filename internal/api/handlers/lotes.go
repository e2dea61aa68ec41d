package handlers

import (
	"net/http"
	"strings"

	"ambulance-dispatch-service/internal/api/dto"
	"ambulance-dispatch-service/internal/domain"
	"ambulance-dispatch-service/internal/services"
)

// LoteHandler exposes the lot lifecycle: creation, membership changes,
// vehicle assignment, route retrieval and stop execution.
type LoteHandler struct {
	Servicio *services.ServicioDespacho
}

func (h *LoteHandler) Crear(w http.ResponseWriter, r *http.Request) {
	var req dto.CrearLoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}

	if strings.TrimSpace(req.Fecha) == "" {
		writeError(w, r, http.StatusBadRequest, "fecha is required")
		return
	}
	if strings.TrimSpace(req.DestinoPrincipal.Nombre) == "" {
		writeError(w, r, http.StatusBadRequest, "destino_principal.nombre is required")
		return
	}

	destino := domain.DestinoPrincipal{
		Nombre:    strings.TrimSpace(req.DestinoPrincipal.Nombre),
		Direccion: strings.TrimSpace(req.DestinoPrincipal.Direccion),
	}

	lote, err := h.Servicio.CrearLote(r.Context(), req.Fecha, destino, req.Notas)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, dto.NuevoLoteResponse(lote))
}

func (h *LoteHandler) Obtener(w http.ResponseWriter, r *http.Request) {
	lote, err := h.Servicio.ObtenerLote(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NuevoLoteResponse(lote))
}

func (h *LoteHandler) Cancelar(w http.ResponseWriter, r *http.Request) {
	lote, err := h.Servicio.CancelarLote(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NuevoLoteResponse(lote))
}

func (h *LoteHandler) ActualizarServicios(w http.ResponseWriter, r *http.Request) {
	var req dto.ActualizarServiciosRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}

	if len(req.Agregar) == 0 && len(req.Quitar) == 0 {
		writeError(w, r, http.StatusBadRequest, "agregar and quitar cannot both be empty")
		return
	}

	lote, err := h.Servicio.ActualizarMiembros(r.Context(), r.PathValue("id"), req.Agregar, req.Quitar)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NuevoLoteResponse(lote))
}

func (h *LoteHandler) AsignarAmbulancia(w http.ResponseWriter, r *http.Request) {
	var req dto.AsignarAmbulanciaRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}

	lote, err := h.Servicio.AsignarAmbulancia(r.Context(), r.PathValue("id"), req.AmbulanciaID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NuevoLoteResponse(lote))
}

func (h *LoteHandler) ObtenerRuta(w http.ResponseWriter, r *http.Request) {
	ruta, err := h.Servicio.ObtenerRuta(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NuevaRutaResponse(ruta))
}

func (h *LoteHandler) AvanzarParada(w http.ResponseWriter, r *http.Request) {
	var req dto.EstadoParadaRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}

	estado := domain.EstadoParada(req.Estado)
	if !estado.EsValido() {
		writeError(w, r, http.StatusBadRequest, "estado is not a valid stop status")
		return
	}

	parada, err := h.Servicio.AvanzarParada(r.Context(), r.PathValue("id"), r.PathValue("servicioId"), estado)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NuevaParadaResponse(parada))
}
