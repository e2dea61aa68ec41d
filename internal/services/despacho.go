package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"ambulance-dispatch-service/internal/domain"
	"ambulance-dispatch-service/internal/ports"
)

// ServicioDespacho orchestrates the lot/route core: lot lifecycle,
// transactional membership changes, route computation, vehicle
// assignment and stop execution.
//
// Mutations on the same lot are serialized behind a per-lot mutex;
// different lots proceed concurrently. Route regeneration is always a
// full recompute from ServiciosIDs, never an incremental patch.
type ServicioDespacho struct {
	solicitudes ports.SolicitudRepository
	lotes       ports.LoteRepository
	rutas       ports.RutaRepository
	ambulancias ports.AmbulanciaProvider
	cache       ports.RutaCache // optional; nil disables caching
	log         zerolog.Logger
	ahora       func() time.Time

	mu       sync.Mutex
	candados map[string]*sync.Mutex
}

func NuevoServicioDespacho(
	solicitudes ports.SolicitudRepository,
	lotes ports.LoteRepository,
	rutas ports.RutaRepository,
	ambulancias ports.AmbulanciaProvider,
	cache ports.RutaCache,
	log zerolog.Logger,
) *ServicioDespacho {
	return &ServicioDespacho{
		solicitudes: solicitudes,
		lotes:       lotes,
		rutas:       rutas,
		ambulancias: ambulancias,
		cache:       cache,
		log:         log,
		ahora:       time.Now,
		candados:    make(map[string]*sync.Mutex),
	}
}

// candado returns the mutex serializing mutations for one lot id.
func (s *ServicioDespacho) candado(loteID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.candados[loteID]
	if !ok {
		c = &sync.Mutex{}
		s.candados[loteID] = c
	}
	return c
}

// CrearLote registers a new empty lot in pendienteCalculo.
func (s *ServicioDespacho) CrearLote(ctx context.Context, fecha string, destino domain.DestinoPrincipal, notas string) (*domain.Lote, error) {
	if _, err := time.Parse("2006-01-02", fecha); err != nil {
		return nil, fmt.Errorf("crear lote: invalid fecha %q: %w", fecha, err)
	}
	if destino.Nombre == "" {
		return nil, errors.New("crear lote: destino principal must have a name")
	}

	ahora := s.ahora()
	lote := &domain.Lote{
		ID:               uuid.NewString(),
		Fecha:            fecha,
		DestinoPrincipal: destino,
		ServiciosIDs:     []string{},
		Estado:           domain.LotePendienteCalculo,
		Notas:            notas,
		CreadoEn:         ahora,
		ActualizadoEn:    ahora,
	}

	if err := s.lotes.CrearLote(ctx, lote); err != nil {
		return nil, fmt.Errorf("crear lote: %w", err)
	}

	s.log.Info().Str("lote_id", lote.ID).Str("fecha", fecha).Msg("lote creado")
	return lote, nil
}

func (s *ServicioDespacho) ObtenerLote(ctx context.Context, id string) (*domain.Lote, error) {
	lote, err := s.lotes.ObtenerLote(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("obtener lote %s: %w", id, err)
	}
	return lote, nil
}

// ObtenerRuta serves the computed route for a lot, cache-aside when a
// cache is configured. Cache failures degrade to a repository read.
func (s *ServicioDespacho) ObtenerRuta(ctx context.Context, loteID string) (*domain.Ruta, error) {
	if s.cache != nil {
		ruta, ok, err := s.cache.ObtenerRuta(ctx, loteID)
		if err != nil {
			s.log.Warn().Err(err).Str("lote_id", loteID).Msg("cache de ruta fallo en lectura")
		} else if ok {
			return ruta, nil
		}
	}

	ruta, err := s.rutas.ObtenerRutaPorLote(ctx, loteID)
	if err != nil {
		return nil, fmt.Errorf("obtener ruta de lote %s: %w", loteID, err)
	}

	s.guardarEnCache(ctx, ruta)
	return ruta, nil
}

// SolicitudesPendientes lists requests available to add to a lot for a
// service date. Delegated to the request store collaborator.
func (s *ServicioDespacho) SolicitudesPendientes(ctx context.Context, fecha string) ([]*domain.Solicitud, error) {
	if _, err := time.Parse("2006-01-02", fecha); err != nil {
		return nil, fmt.Errorf("solicitudes pendientes: invalid fecha %q: %w", fecha, err)
	}
	pendientes, err := s.solicitudes.SolicitudesPendientesPorFecha(ctx, fecha)
	if err != nil {
		return nil, fmt.Errorf("solicitudes pendientes para %s: %w", fecha, err)
	}
	return pendientes, nil
}

func (s *ServicioDespacho) Ambulancias(ctx context.Context) ([]*domain.Ambulancia, error) {
	flota, err := s.ambulancias.ListarAmbulancias(ctx)
	if err != nil {
		return nil, fmt.Errorf("listar ambulancias: %w", err)
	}
	return flota, nil
}

// ActualizarMiembros applies an add/remove membership change as one
// logical transaction and regenerates the route before returning, so a
// stale stop list is never served after a membership change.
func (s *ServicioDespacho) ActualizarMiembros(ctx context.Context, loteID string, agregar, quitar []string) (*domain.Lote, error) {
	c := s.candado(loteID)
	c.Lock()
	defer c.Unlock()

	lote, err := s.lotes.ObtenerLote(ctx, loteID)
	if err != nil {
		return nil, fmt.Errorf("actualizar miembros de lote %s: %w", loteID, err)
	}
	if lote.EsTerminal() {
		return nil, fmt.Errorf("actualizar miembros de lote %s: %w: lote %s", loteID, domain.ErrEstadoTerminal, lote.Estado)
	}

	lote, err = s.lotes.ReemplazarMiembros(ctx, loteID, agregar, quitar)
	if err != nil {
		return nil, fmt.Errorf("actualizar miembros de lote %s: %w", loteID, err)
	}

	if _, err := s.calcularRuta(ctx, lote); err != nil {
		return nil, fmt.Errorf("actualizar miembros de lote %s: %w", loteID, err)
	}

	s.log.Info().
		Str("lote_id", loteID).
		Int("agregadas", len(agregar)).
		Int("quitadas", len(quitar)).
		Int("miembros", len(lote.ServiciosIDs)).
		Msg("miembros de lote actualizados")
	return lote, nil
}

// CalcularRuta regenerates the route for a lot's current membership.
func (s *ServicioDespacho) CalcularRuta(ctx context.Context, loteID string) (*domain.Ruta, error) {
	c := s.candado(loteID)
	c.Lock()
	defer c.Unlock()

	lote, err := s.lotes.ObtenerLote(ctx, loteID)
	if err != nil {
		return nil, fmt.Errorf("calcular ruta de lote %s: %w", loteID, err)
	}
	if lote.EsTerminal() {
		return nil, fmt.Errorf("calcular ruta de lote %s: %w: lote %s", loteID, domain.ErrEstadoTerminal, lote.Estado)
	}

	ruta, err := s.calcularRuta(ctx, lote)
	if err != nil {
		return nil, fmt.Errorf("calcular ruta de lote %s: %w", loteID, err)
	}
	return ruta, nil
}

// calcularRuta rebuilds, persists and re-caches the route, and moves
// the lot to calculado (or back to pendienteCalculo when empty).
// Callers hold the lot's mutex.
func (s *ServicioDespacho) calcularRuta(ctx context.Context, lote *domain.Lote) (*domain.Ruta, error) {
	miembros, err := s.solicitudes.SolicitudesPorLote(ctx, lote.ID)
	if err != nil {
		return nil, fmt.Errorf("cargar miembros: %w", err)
	}

	anterior, err := s.rutas.ObtenerRutaPorLote(ctx, lote.ID)
	if err != nil && !errors.Is(err, domain.ErrNoEncontrado) {
		return nil, fmt.Errorf("cargar ruta anterior: %w", err)
	}

	ruta := ConstruirRuta(lote.ID, miembros, anterior, s.ahora())
	if err := s.rutas.GuardarRuta(ctx, ruta); err != nil {
		return nil, fmt.Errorf("guardar ruta: %w", err)
	}

	lote.RutaID = &ruta.ID
	if len(ruta.Paradas) > 0 {
		lote.Estado = domain.LoteCalculado
	} else {
		lote.Estado = domain.LotePendienteCalculo
	}
	lote.ActualizadoEn = s.ahora()
	if err := s.lotes.GuardarLote(ctx, lote); err != nil {
		return nil, fmt.Errorf("guardar lote: %w", err)
	}

	s.invalidarCache(ctx, lote.ID)
	s.guardarEnCache(ctx, ruta)

	s.log.Info().
		Str("lote_id", lote.ID).
		Str("ruta_id", ruta.ID).
		Int("paradas", len(ruta.Paradas)).
		Int("duracion_min", ruta.DuracionTotalMin).
		Msg("ruta calculada")
	return ruta, nil
}

// AsignarAmbulancia attaches a vehicle to the lot, or detaches it when
// ambulanciaID is nil. The vehicle must exist and not be fueraServicio.
func (s *ServicioDespacho) AsignarAmbulancia(ctx context.Context, loteID string, ambulanciaID *string) (*domain.Lote, error) {
	c := s.candado(loteID)
	c.Lock()
	defer c.Unlock()

	lote, err := s.lotes.ObtenerLote(ctx, loteID)
	if err != nil {
		return nil, fmt.Errorf("asignar ambulancia a lote %s: %w", loteID, err)
	}
	if lote.EsTerminal() {
		return nil, fmt.Errorf("asignar ambulancia a lote %s: %w: lote %s", loteID, domain.ErrEstadoTerminal, lote.Estado)
	}

	if ambulanciaID == nil {
		lote.AmbulanciaID = nil
		if lote.RutaID != nil {
			lote.Estado = domain.LoteCalculado
		} else {
			lote.Estado = domain.LotePendienteCalculo
		}
	} else {
		amb, err := s.ambulancias.ObtenerAmbulancia(ctx, *ambulanciaID)
		if err != nil {
			return nil, fmt.Errorf("asignar ambulancia a lote %s: %w", loteID, err)
		}
		if !amb.Asignable() {
			return nil, fmt.Errorf("asignar ambulancia a lote %s: %w: %s esta %s", loteID, domain.ErrAmbulanciaNoDisponible, amb.ID, amb.Estado)
		}
		lote.AmbulanciaID = &amb.ID
		lote.Estado = domain.LoteAsignado
	}

	lote.ActualizadoEn = s.ahora()
	if err := s.lotes.GuardarLote(ctx, lote); err != nil {
		return nil, fmt.Errorf("asignar ambulancia a lote %s: %w", loteID, err)
	}

	evt := s.log.Info().Str("lote_id", loteID)
	if ambulanciaID != nil {
		evt = evt.Str("ambulancia_id", *ambulanciaID)
	}
	evt.Str("estado", string(lote.Estado)).Msg("asignacion de ambulancia actualizada")
	return lote, nil
}

// AvanzarParada drives one stop through the crew state machine, stamps
// the milestone for the new state, keeps the request's lifecycle status
// in step, and re-evaluates lot completion.
func (s *ServicioDespacho) AvanzarParada(ctx context.Context, loteID, servicioID string, nuevo domain.EstadoParada) (*domain.Parada, error) {
	c := s.candado(loteID)
	c.Lock()
	defer c.Unlock()

	lote, err := s.lotes.ObtenerLote(ctx, loteID)
	if err != nil {
		return nil, fmt.Errorf("avanzar parada %s de lote %s: %w", servicioID, loteID, err)
	}
	if lote.EsTerminal() {
		return nil, fmt.Errorf("avanzar parada %s de lote %s: %w: lote %s", servicioID, loteID, domain.ErrEstadoTerminal, lote.Estado)
	}

	ruta, err := s.rutas.ObtenerRutaPorLote(ctx, loteID)
	if err != nil {
		return nil, fmt.Errorf("avanzar parada %s de lote %s: %w", servicioID, loteID, err)
	}

	parada := ruta.Parada(servicioID)
	if parada == nil {
		return nil, fmt.Errorf("avanzar parada: servicio %s no esta en la ruta de lote %s: %w", servicioID, loteID, domain.ErrNoEncontrado)
	}

	if err := domain.ValidarTransicion(parada.Estado, nuevo); err != nil {
		return nil, fmt.Errorf("avanzar parada %s de lote %s: %w", servicioID, loteID, err)
	}

	anterior := parada.Estado
	ts := s.ahora()
	parada.Estado = nuevo
	switch nuevo {
	case domain.ParadaEnRutaRecogida:
		parada.SalidaRecogidaEn = &ts
	case domain.ParadaPacienteRecogido:
		parada.RecogidaEn = &ts
	case domain.ParadaEnDestino:
		parada.LlegadaDestinoEn = &ts
	case domain.ParadaFinalizada, domain.ParadaCancelada, domain.ParadaNoPresentado:
		parada.FinalizadaEn = &ts
	}

	if err := s.rutas.ActualizarParada(ctx, ruta.ID, *parada); err != nil {
		return nil, fmt.Errorf("avanzar parada %s de lote %s: %w", servicioID, loteID, err)
	}

	if err := s.solicitudes.ActualizarEstadoSolicitud(ctx, servicioID, domain.EstadoSolicitudParaParada(nuevo)); err != nil {
		return nil, fmt.Errorf("avanzar parada %s de lote %s: actualizar solicitud: %w", servicioID, loteID, err)
	}

	// Completion is re-evaluated on every transition, never polled.
	cambiado := false
	if lote.Estado == domain.LoteAsignado && nuevo != domain.ParadaPendiente {
		lote.Estado = domain.LoteEnCurso
		cambiado = true
	}
	if ruta.Completa() {
		lote.Estado = domain.LoteCompletado
		cambiado = true
	}
	if cambiado {
		lote.ActualizadoEn = ts
		if err := s.lotes.GuardarLote(ctx, lote); err != nil {
			return nil, fmt.Errorf("avanzar parada %s de lote %s: guardar lote: %w", servicioID, loteID, err)
		}
	}

	s.invalidarCache(ctx, loteID)

	s.log.Info().
		Str("lote_id", loteID).
		Str("servicio_id", servicioID).
		Str("de", string(anterior)).
		Str("a", string(nuevo)).
		Str("estado_lote", string(lote.Estado)).
		Msg("parada avanzada")

	copia := *parada
	return &copia, nil
}

// CancelarLote cancels the lot: every non-terminal stop becomes
// cancelado (the route stays stored as the operational record), all
// member requests are released, and the lot turns terminal.
func (s *ServicioDespacho) CancelarLote(ctx context.Context, loteID string) (*domain.Lote, error) {
	c := s.candado(loteID)
	c.Lock()
	defer c.Unlock()

	lote, err := s.lotes.ObtenerLote(ctx, loteID)
	if err != nil {
		return nil, fmt.Errorf("cancelar lote %s: %w", loteID, err)
	}
	if lote.EsTerminal() {
		return nil, fmt.Errorf("cancelar lote %s: %w: lote %s", loteID, domain.ErrEstadoTerminal, lote.Estado)
	}

	ruta, err := s.rutas.ObtenerRutaPorLote(ctx, loteID)
	if err != nil && !errors.Is(err, domain.ErrNoEncontrado) {
		return nil, fmt.Errorf("cancelar lote %s: %w", loteID, err)
	}

	ts := s.ahora()
	if ruta != nil {
		for i := range ruta.Paradas {
			if ruta.Paradas[i].Estado.EsTerminal() {
				continue
			}
			ruta.Paradas[i].Estado = domain.ParadaCancelada
			ruta.Paradas[i].FinalizadaEn = &ts
			if err := s.rutas.ActualizarParada(ctx, ruta.ID, ruta.Paradas[i]); err != nil {
				return nil, fmt.Errorf("cancelar lote %s: parada %s: %w", loteID, ruta.Paradas[i].ServicioID, err)
			}
		}
	}

	if len(lote.ServiciosIDs) > 0 {
		quitar := append([]string(nil), lote.ServiciosIDs...)
		lote, err = s.lotes.ReemplazarMiembros(ctx, loteID, nil, quitar)
		if err != nil {
			return nil, fmt.Errorf("cancelar lote %s: liberar miembros: %w", loteID, err)
		}
	}

	lote.Estado = domain.LoteCancelado
	lote.ActualizadoEn = ts
	if err := s.lotes.GuardarLote(ctx, lote); err != nil {
		return nil, fmt.Errorf("cancelar lote %s: %w", loteID, err)
	}

	s.invalidarCache(ctx, loteID)

	s.log.Info().Str("lote_id", loteID).Msg("lote cancelado")
	return lote, nil
}

// FijarReloj replaces the service clock. Test hook.
func (s *ServicioDespacho) FijarReloj(ahora func() time.Time) { s.ahora = ahora }

func (s *ServicioDespacho) guardarEnCache(ctx context.Context, ruta *domain.Ruta) {
	if s.cache == nil || ruta == nil {
		return
	}
	if err := s.cache.GuardarRuta(ctx, ruta); err != nil {
		s.log.Warn().Err(err).Str("lote_id", ruta.LoteID).Msg("cache de ruta fallo en escritura")
	}
}

func (s *ServicioDespacho) invalidarCache(ctx context.Context, loteID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidarRuta(ctx, loteID); err != nil {
		s.log.Warn().Err(err).Str("lote_id", loteID).Msg("cache de ruta fallo en invalidacion")
	}
}
