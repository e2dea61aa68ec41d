package api

import (
	"net/http"

	"ambulance-dispatch-service/internal/api/handlers"
	"ambulance-dispatch-service/internal/services"
)

// NewRouter wires HTTP handlers with their dependencies and returns an
// http.Handler. This is the API composition root (handlers only see the
// dispatch service, never concrete adapters).
func NewRouter(servicio *services.ServicioDespacho) http.Handler {
	mux := http.NewServeMux()

	loteHandler := &handlers.LoteHandler{Servicio: servicio}
	solicitudHandler := &handlers.SolicitudHandler{Servicio: servicio}
	ambulanciaHandler := &handlers.AmbulanciaHandler{Servicio: servicio}

	mux.HandleFunc("GET /health", handlers.Health)

	mux.HandleFunc("GET /solicitudes", solicitudHandler.ListPendientes)
	mux.HandleFunc("GET /ambulancias", ambulanciaHandler.List)

	mux.HandleFunc("POST /lotes", loteHandler.Crear)
	mux.HandleFunc("GET /lotes/{id}", loteHandler.Obtener)
	mux.HandleFunc("DELETE /lotes/{id}", loteHandler.Cancelar)
	mux.HandleFunc("PUT /lotes/{id}/servicios", loteHandler.ActualizarServicios)
	mux.HandleFunc("PUT /lotes/{id}/ambulancia", loteHandler.AsignarAmbulancia)
	mux.HandleFunc("GET /lotes/{id}/ruta", loteHandler.ObtenerRuta)
	mux.HandleFunc("POST /lotes/{id}/paradas/{servicioId}/estado", loteHandler.AvanzarParada)

	return loggingMiddleware(mux)
}
