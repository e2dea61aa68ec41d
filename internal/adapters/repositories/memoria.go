package repositories

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"ambulance-dispatch-service/internal/domain"
)

// AlmacenMemoria is an in-memory store implementing every dispatch
// port. It backs the demo mode and the service/API tests; production
// runs use the SQLite store. All reads and writes copy, so callers can
// never alias internal state (the reference system's shared mutable
// arrays are exactly what this adapter exists to avoid).
type AlmacenMemoria struct {
	mu          sync.RWMutex
	solicitudes map[string]*domain.Solicitud
	lotes       map[string]*domain.Lote
	rutas       map[string]*domain.Ruta // keyed by lote id
	ambulancias map[string]*domain.Ambulancia
}

func NuevoAlmacenMemoria() *AlmacenMemoria {
	return &AlmacenMemoria{
		solicitudes: make(map[string]*domain.Solicitud),
		lotes:       make(map[string]*domain.Lote),
		rutas:       make(map[string]*domain.Ruta),
		ambulancias: make(map[string]*domain.Ambulancia),
	}
}

// AgregarSolicitud loads a request fixture.
func (a *AlmacenMemoria) AgregarSolicitud(s domain.Solicitud) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.solicitudes[s.ID] = &s
}

// AgregarAmbulancia loads a vehicle fixture.
func (a *AlmacenMemoria) AgregarAmbulancia(amb domain.Ambulancia) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ambulancias[amb.ID] = &amb
}

func copiarSolicitud(s *domain.Solicitud) *domain.Solicitud {
	c := *s
	if s.HoraCita != nil {
		cita := *s.HoraCita
		c.HoraCita = &cita
	}
	if s.LoteID != nil {
		id := *s.LoteID
		c.LoteID = &id
	}
	return &c
}

func copiarLote(l *domain.Lote) *domain.Lote {
	c := *l
	c.ServiciosIDs = slices.Clone(l.ServiciosIDs)
	if l.AmbulanciaID != nil {
		id := *l.AmbulanciaID
		c.AmbulanciaID = &id
	}
	if l.RutaID != nil {
		id := *l.RutaID
		c.RutaID = &id
	}
	return &c
}

func copiarRuta(r *domain.Ruta) *domain.Ruta {
	c := *r
	c.Paradas = slices.Clone(r.Paradas)
	return &c
}

// --- SolicitudRepository ---

func (a *AlmacenMemoria) ObtenerSolicitud(ctx context.Context, id string) (*domain.Solicitud, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	s, ok := a.solicitudes[id]
	if !ok {
		return nil, fmt.Errorf("obtener solicitud %s: %w", id, domain.ErrNoEncontrado)
	}
	return copiarSolicitud(s), nil
}

func (a *AlmacenMemoria) SolicitudesPendientesPorFecha(ctx context.Context, fecha string) ([]*domain.Solicitud, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	res := make([]*domain.Solicitud, 0, 8)
	for _, s := range a.solicitudes {
		if s.Fecha == fecha && s.Estado == domain.SolicitudPendiente {
			res = append(res, copiarSolicitud(s))
		}
	}
	ordenarSolicitudes(res)
	return res, nil
}

func (a *AlmacenMemoria) SolicitudesPorLote(ctx context.Context, loteID string) ([]*domain.Solicitud, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	res := make([]*domain.Solicitud, 0, 8)
	for _, s := range a.solicitudes {
		if s.LoteID != nil && *s.LoteID == loteID {
			res = append(res, copiarSolicitud(s))
		}
	}
	ordenarSolicitudes(res)
	return res, nil
}

// Map iteration order is random; expose a deterministic one.
func ordenarSolicitudes(solicitudes []*domain.Solicitud) {
	slices.SortFunc(solicitudes, func(x, y *domain.Solicitud) int {
		if !x.CreadaEn.Equal(y.CreadaEn) {
			if x.CreadaEn.Before(y.CreadaEn) {
				return -1
			}
			return 1
		}
		if x.ID < y.ID {
			return -1
		}
		if x.ID > y.ID {
			return 1
		}
		return 0
	})
}

func (a *AlmacenMemoria) ActualizarEstadoSolicitud(ctx context.Context, id string, estado domain.EstadoSolicitud) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	s, ok := a.solicitudes[id]
	if !ok {
		return fmt.Errorf("actualizar estado de solicitud %s: %w", id, domain.ErrNoEncontrado)
	}
	s.Estado = estado
	return nil
}

// --- LoteRepository ---

func (a *AlmacenMemoria) CrearLote(ctx context.Context, lote *domain.Lote) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lotes[lote.ID] = copiarLote(lote)
	return nil
}

func (a *AlmacenMemoria) ObtenerLote(ctx context.Context, id string) (*domain.Lote, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	l, ok := a.lotes[id]
	if !ok {
		return nil, fmt.Errorf("obtener lote %s: %w", id, domain.ErrNoEncontrado)
	}
	return copiarLote(l), nil
}

func (a *AlmacenMemoria) GuardarLote(ctx context.Context, lote *domain.Lote) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	existente, ok := a.lotes[lote.ID]
	if !ok {
		return fmt.Errorf("guardar lote %s: %w", lote.ID, domain.ErrNoEncontrado)
	}
	guardado := copiarLote(lote)
	// Membership is only written by ReemplazarMiembros.
	guardado.ServiciosIDs = slices.Clone(existente.ServiciosIDs)
	a.lotes[lote.ID] = guardado
	return nil
}

func (a *AlmacenMemoria) ReemplazarMiembros(ctx context.Context, loteID string, agregar, quitar []string) (*domain.Lote, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	lote, ok := a.lotes[loteID]
	if !ok {
		return nil, fmt.Errorf("reemplazar miembros de lote %s: %w", loteID, domain.ErrNoEncontrado)
	}

	// Validate before writing; the whole change applies or none of it.
	for _, id := range quitar {
		if !lote.Contiene(id) {
			return nil, fmt.Errorf("reemplazar miembros de lote %s: servicio %s no es miembro: %w",
				loteID, id, domain.ErrMiembrosInconsistentes)
		}
		if _, ok := a.solicitudes[id]; !ok {
			return nil, fmt.Errorf("reemplazar miembros de lote %s: servicio %s: %w",
				loteID, id, domain.ErrNoEncontrado)
		}
	}
	for _, id := range agregar {
		s, ok := a.solicitudes[id]
		if !ok {
			return nil, fmt.Errorf("reemplazar miembros de lote %s: servicio %s: %w",
				loteID, id, domain.ErrNoEncontrado)
		}
		if s.LoteID != nil && *s.LoteID == loteID {
			continue
		}
		if s.LoteID != nil {
			return nil, fmt.Errorf("reemplazar miembros de lote %s: servicio %s pertenece a lote %s: %w",
				loteID, id, *s.LoteID, domain.ErrMiembrosInconsistentes)
		}
		if s.Estado != domain.SolicitudPendiente {
			return nil, fmt.Errorf("reemplazar miembros de lote %s: servicio %s esta %s: %w",
				loteID, id, s.Estado, domain.ErrMiembrosInconsistentes)
		}
		if s.Fecha != lote.Fecha {
			return nil, fmt.Errorf("reemplazar miembros de lote %s: servicio %s es del %s, lote del %s: %w",
				loteID, id, s.Fecha, lote.Fecha, domain.ErrMiembrosInconsistentes)
		}
	}

	miembros := slices.Clone(lote.ServiciosIDs)
	for _, id := range quitar {
		miembros = slices.DeleteFunc(miembros, func(m string) bool { return m == id })
		s := a.solicitudes[id]
		s.LoteID = nil
		if !s.Estado.EsTerminal() {
			s.Estado = domain.SolicitudPendiente
		}
	}
	for _, id := range agregar {
		if slices.Contains(miembros, id) {
			continue
		}
		miembros = append(miembros, id)
		s := a.solicitudes[id]
		lid := loteID
		s.LoteID = &lid
		s.Estado = domain.SolicitudPlanificada
	}

	lote.ServiciosIDs = miembros
	lote.Estado = domain.LoteModificado
	lote.ActualizadoEn = time.Now().UTC()
	return copiarLote(lote), nil
}

// --- RutaRepository ---

func (a *AlmacenMemoria) ObtenerRutaPorLote(ctx context.Context, loteID string) (*domain.Ruta, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	r, ok := a.rutas[loteID]
	if !ok {
		return nil, fmt.Errorf("obtener ruta de lote %s: %w", loteID, domain.ErrNoEncontrado)
	}
	return copiarRuta(r), nil
}

func (a *AlmacenMemoria) GuardarRuta(ctx context.Context, ruta *domain.Ruta) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rutas[ruta.LoteID] = copiarRuta(ruta)
	return nil
}

func (a *AlmacenMemoria) ActualizarParada(ctx context.Context, rutaID string, parada domain.Parada) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, r := range a.rutas {
		if r.ID != rutaID {
			continue
		}
		p := r.Parada(parada.ServicioID)
		if p == nil {
			break
		}
		p.Estado = parada.Estado
		p.Notas = parada.Notas
		p.SalidaRecogidaEn = parada.SalidaRecogidaEn
		p.RecogidaEn = parada.RecogidaEn
		p.LlegadaDestinoEn = parada.LlegadaDestinoEn
		p.FinalizadaEn = parada.FinalizadaEn
		return nil
	}
	return fmt.Errorf("actualizar parada %s de ruta %s: %w", parada.ServicioID, rutaID, domain.ErrNoEncontrado)
}

// --- AmbulanciaProvider ---

func (a *AlmacenMemoria) ObtenerAmbulancia(ctx context.Context, id string) (*domain.Ambulancia, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	amb, ok := a.ambulancias[id]
	if !ok {
		return nil, fmt.Errorf("obtener ambulancia %s: %w", id, domain.ErrNoEncontrado)
	}
	c := *amb
	return &c, nil
}

func (a *AlmacenMemoria) ListarAmbulancias(ctx context.Context) ([]*domain.Ambulancia, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	flota := make([]*domain.Ambulancia, 0, len(a.ambulancias))
	for _, amb := range a.ambulancias {
		c := *amb
		flota = append(flota, &c)
	}
	slices.SortFunc(flota, func(x, y *domain.Ambulancia) int {
		if x.ID < y.ID {
			return -1
		}
		if x.ID > y.ID {
			return 1
		}
		return 0
	})
	return flota, nil
}
