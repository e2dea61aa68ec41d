package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"ambulance-dispatch-service/internal/adapters/repositories"
	"ambulance-dispatch-service/internal/api/dto"
	"ambulance-dispatch-service/internal/domain"
	"ambulance-dispatch-service/internal/services"
)

func nuevoServidorDePrueba(t *testing.T) http.Handler {
	t.Helper()

	almacen := repositories.NuevoAlmacenMemoria()
	base := time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC)
	citaA := domain.MustHorario("10:00")
	citaB := domain.MustHorario("09:00")
	almacen.AgregarSolicitud(domain.Solicitud{
		ID: "SOL-A", PacienteNombre: "Paciente A", DireccionOrigen: "Calle A",
		Destino: "Hospital Central", Fecha: "2025-03-10",
		HoraServicio: citaA.RestarMinutos(30), HoraCita: &citaA,
		Movilidad: domain.MovilidadAndando, Estado: domain.SolicitudPendiente,
		CreadaEn: base,
	})
	almacen.AgregarSolicitud(domain.Solicitud{
		ID: "SOL-B", PacienteNombre: "Paciente B", DireccionOrigen: "Calle B",
		Destino: "Hospital Central", Fecha: "2025-03-10",
		HoraServicio: citaB.RestarMinutos(30), HoraCita: &citaB,
		Movilidad: domain.MovilidadCamilla, Estado: domain.SolicitudPendiente,
		CreadaEn: base.Add(time.Minute),
	})
	almacen.AgregarAmbulancia(domain.Ambulancia{
		ID: "AMB-01", Nombre: "Unidad 01", Tipo: domain.AmbulanciaConvencional,
		Estado: domain.AmbulanciaDisponible, Matricula: "1234-KLM",
	})

	servicio := services.NuevoServicioDespacho(almacen, almacen, almacen, almacen, nil, zerolog.Nop())
	return NewRouter(servicio)
}

func hacerJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodificar[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealthEndpoint(t *testing.T) {
	router := nuevoServidorDePrueba(t)

	rec := hacerJSON(t, router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decodificar[map[string]string](t, rec)
	require.Equal(t, "ok", res["status"])
}

func TestListSolicitudesPendientes(t *testing.T) {
	router := nuevoServidorDePrueba(t)

	rec := hacerJSON(t, router, http.MethodGet, "/solicitudes?fecha=2025-03-10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decodificar[dto.ListSolicitudesResponse](t, rec)
	require.Len(t, res.Solicitudes, 2)

	rec = hacerJSON(t, router, http.MethodGet, "/solicitudes", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListAmbulancias(t *testing.T) {
	router := nuevoServidorDePrueba(t)

	rec := hacerJSON(t, router, http.MethodGet, "/ambulancias", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decodificar[dto.ListAmbulanciasResponse](t, rec)
	require.Len(t, res.Ambulancias, 1)
	require.Equal(t, "AMB-01", res.Ambulancias[0].ID)
}

func TestLoteLifecycleOverHTTP(t *testing.T) {
	router := nuevoServidorDePrueba(t)

	// Create.
	rec := hacerJSON(t, router, http.MethodPost, "/lotes", dto.CrearLoteRequest{
		Fecha:            "2025-03-10",
		DestinoPrincipal: dto.DestinoPrincipal{Nombre: "Hospital Central", Direccion: "Avenida Salud 1"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	lote := decodificar[dto.LoteResponse](t, rec)
	require.NotEmpty(t, lote.ID)
	require.Equal(t, "pendienteCalculo", lote.Estado)
	require.NotNil(t, lote.ServiciosIDs)

	// Add members; the response reflects the computed route.
	rec = hacerJSON(t, router, http.MethodPut, "/lotes/"+lote.ID+"/servicios", dto.ActualizarServiciosRequest{
		Agregar: []string{"SOL-A", "SOL-B"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	lote = decodificar[dto.LoteResponse](t, rec)
	require.Equal(t, "calculado", lote.Estado)
	require.ElementsMatch(t, []string{"SOL-A", "SOL-B"}, lote.ServiciosIDs)

	// Read the route: earliest appointment first.
	rec = hacerJSON(t, router, http.MethodGet, "/lotes/"+lote.ID+"/ruta", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ruta := decodificar[dto.RutaResponse](t, rec)
	require.Len(t, ruta.Paradas, 2)
	require.Equal(t, "SOL-B", ruta.Paradas[0].ServicioID)
	require.Equal(t, "08:00", ruta.Paradas[0].HoraRecogidaEstimada)

	// Assign a vehicle.
	ambID := "AMB-01"
	rec = hacerJSON(t, router, http.MethodPut, "/lotes/"+lote.ID+"/ambulancia", dto.AsignarAmbulanciaRequest{AmbulanciaID: &ambID})
	require.Equal(t, http.StatusOK, rec.Code)
	lote = decodificar[dto.LoteResponse](t, rec)
	require.Equal(t, "asignado", lote.Estado)

	// Advance the first stop.
	rec = hacerJSON(t, router, http.MethodPost, "/lotes/"+lote.ID+"/paradas/SOL-B/estado", dto.EstadoParadaRequest{Estado: "enRutaRecogida"})
	require.Equal(t, http.StatusOK, rec.Code)
	parada := decodificar[dto.ParadaResponse](t, rec)
	require.Equal(t, "enRutaRecogida", parada.Estado)
	require.NotNil(t, parada.SalidaRecogidaEn)

	// Skipping ahead conflicts.
	rec = hacerJSON(t, router, http.MethodPost, "/lotes/"+lote.ID+"/paradas/SOL-B/estado", dto.EstadoParadaRequest{Estado: "finalizado"})
	require.Equal(t, http.StatusConflict, rec.Code)

	// Cancel.
	rec = hacerJSON(t, router, http.MethodDelete, "/lotes/"+lote.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	lote = decodificar[dto.LoteResponse](t, rec)
	require.Equal(t, "cancelado", lote.Estado)
	require.Empty(t, lote.ServiciosIDs)
}

func TestLoteErroresHTTP(t *testing.T) {
	router := nuevoServidorDePrueba(t)

	// Unknown lot.
	rec := hacerJSON(t, router, http.MethodGet, "/lotes/no-existe", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	// Invalid body.
	req := httptest.NewRequest(http.MethodPost, "/lotes", bytes.NewBufferString("{nope"))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	require.Equal(t, http.StatusBadRequest, res.Code)

	// Missing destination name.
	rec = hacerJSON(t, router, http.MethodPost, "/lotes", dto.CrearLoteRequest{Fecha: "2025-03-10"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Empty membership delta.
	recCrear := hacerJSON(t, router, http.MethodPost, "/lotes", dto.CrearLoteRequest{
		Fecha:            "2025-03-10",
		DestinoPrincipal: dto.DestinoPrincipal{Nombre: "Hospital Central"},
	})
	require.Equal(t, http.StatusCreated, recCrear.Code)
	lote := decodificar[dto.LoteResponse](t, recCrear)
	rec = hacerJSON(t, router, http.MethodPut, "/lotes/"+lote.ID+"/servicios", dto.ActualizarServiciosRequest{})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown member request.
	rec = hacerJSON(t, router, http.MethodPut, "/lotes/"+lote.ID+"/servicios", dto.ActualizarServiciosRequest{
		Agregar: []string{"SOL-ZZ"},
	})
	require.Equal(t, http.StatusNotFound, rec.Code)

	// Unknown stop status.
	rec = hacerJSON(t, router, http.MethodPost, "/lotes/"+lote.ID+"/paradas/SOL-A/estado", dto.EstadoParadaRequest{Estado: "volando"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
