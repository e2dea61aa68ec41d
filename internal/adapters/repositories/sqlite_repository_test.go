package repositories

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"ambulance-dispatch-service/internal/domain"
)

func nuevaBaseDePrueba(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("expected no error opening sqlite, got %v", err)
	}
	// One in-memory database per connection; keep the pool at one.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := InitSchema(db); err != nil {
		t.Fatalf("expected no error initializing schema, got %v", err)
	}
	// Re-running must be a no-op.
	if err := InitSchema(db); err != nil {
		t.Fatalf("expected schema init to be idempotent, got %v", err)
	}

	return db
}

func insertarSolicitudDePrueba(t *testing.T, db *sql.DB, id, fecha, cita string, creada time.Time) {
	t.Helper()
	_, err := db.Exec(`
	INSERT INTO solicitudes (
		id, paciente_nombre, paciente_documento, centro_origen,
		direccion_origen, destino, fecha, hora_servicio, hora_cita,
		movilidad, prioridad, contacto, observaciones, estado, lote_id, creada_en
	)
	VALUES (?, ?, '', '', ?, 'Hospital Central', ?, ?, ?, 'andando', 'normal', '', '', ?, NULL, ?);`,
		id, "Paciente "+id, "Calle "+id, fecha, cita, cita,
		string(domain.SolicitudPendiente), creada,
	)
	if err != nil {
		t.Fatalf("expected no error inserting fixture %s, got %v", id, err)
	}
}

func TestSqliteSolicitudRepository(t *testing.T) {
	db := nuevaBaseDePrueba(t)
	repo := NewSqliteSolicitudRepository(db)
	ctx := context.Background()
	base := time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC)

	insertarSolicitudDePrueba(t, db, "SOL-A", "2025-03-10", "10:00", base)
	insertarSolicitudDePrueba(t, db, "SOL-B", "2025-03-10", "09:00", base.Add(time.Minute))
	insertarSolicitudDePrueba(t, db, "SOL-X", "2025-03-11", "10:00", base)

	s, err := repo.ObtenerSolicitud(ctx, "SOL-A")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if s.PacienteNombre != "Paciente SOL-A" || s.Fecha != "2025-03-10" {
		t.Fatalf("unexpected request: %+v", s)
	}
	if s.HoraCita == nil || s.HoraCita.String() != "10:00" {
		t.Fatalf("expected hora_cita 10:00, got %v", s.HoraCita)
	}
	if s.LoteID != nil {
		t.Fatalf("expected no lot pointer, got %v", *s.LoteID)
	}

	_, err = repo.ObtenerSolicitud(ctx, "no-existe")
	if !errors.Is(err, domain.ErrNoEncontrado) {
		t.Fatalf("expected ErrNoEncontrado, got %v", err)
	}

	pendientes, err := repo.SolicitudesPendientesPorFecha(ctx, "2025-03-10")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(pendientes) != 2 {
		t.Fatalf("expected 2 pending requests, got %d", len(pendientes))
	}
	if pendientes[0].ID != "SOL-A" || pendientes[1].ID != "SOL-B" {
		t.Fatalf("expected creation order [SOL-A SOL-B], got [%s %s]", pendientes[0].ID, pendientes[1].ID)
	}

	if err := repo.ActualizarEstadoSolicitud(ctx, "SOL-A", domain.SolicitudCancelada); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	pendientes, err = repo.SolicitudesPendientesPorFecha(ctx, "2025-03-10")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(pendientes) != 1 {
		t.Fatalf("expected 1 pending request after cancellation, got %d", len(pendientes))
	}

	err = repo.ActualizarEstadoSolicitud(ctx, "no-existe", domain.SolicitudCancelada)
	if !errors.Is(err, domain.ErrNoEncontrado) {
		t.Fatalf("expected ErrNoEncontrado, got %v", err)
	}
}

func TestSqliteLoteRepositoryMembership(t *testing.T) {
	db := nuevaBaseDePrueba(t)
	lotes := NewSqliteLoteRepository(db)
	solicitudes := NewSqliteSolicitudRepository(db)
	ctx := context.Background()
	base := time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC)

	insertarSolicitudDePrueba(t, db, "SOL-A", "2025-03-10", "10:00", base)
	insertarSolicitudDePrueba(t, db, "SOL-B", "2025-03-10", "09:00", base.Add(time.Minute))
	insertarSolicitudDePrueba(t, db, "SOL-X", "2025-03-11", "10:00", base)

	ahora := time.Date(2025, 3, 10, 7, 0, 0, 0, time.UTC)
	lote := &domain.Lote{
		ID:               "lote-1",
		Fecha:            "2025-03-10",
		DestinoPrincipal: domain.DestinoPrincipal{Nombre: "Hospital Central", Direccion: "Avenida Salud 1"},
		Estado:           domain.LotePendienteCalculo,
		CreadoEn:         ahora,
		ActualizadoEn:    ahora,
	}
	if err := lotes.CrearLote(ctx, lote); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	guardado, err := lotes.ObtenerLote(ctx, "lote-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if guardado.Estado != domain.LotePendienteCalculo || len(guardado.ServiciosIDs) != 0 {
		t.Fatalf("unexpected lot: %+v", guardado)
	}

	// Add both requests in one transaction.
	guardado, err = lotes.ReemplazarMiembros(ctx, "lote-1", []string{"SOL-A", "SOL-B"}, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(guardado.ServiciosIDs) != 2 {
		t.Fatalf("expected 2 members, got %v", guardado.ServiciosIDs)
	}
	if guardado.Estado != domain.LoteModificado {
		t.Fatalf("expected modificado, got %s", guardado.Estado)
	}

	s, err := solicitudes.ObtenerSolicitud(ctx, "SOL-A")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if s.Estado != domain.SolicitudPlanificada || s.LoteID == nil || *s.LoteID != "lote-1" {
		t.Fatalf("expected SOL-A batched into lote-1, got %+v", s)
	}

	// Date mismatch rejects the whole batch, leaving SOL-X untouched.
	_, err = lotes.ReemplazarMiembros(ctx, "lote-1", []string{"SOL-X"}, nil)
	if !errors.Is(err, domain.ErrMiembrosInconsistentes) {
		t.Fatalf("expected ErrMiembrosInconsistentes, got %v", err)
	}

	// A batch mixing a valid removal with an invalid addition applies nothing.
	_, err = lotes.ReemplazarMiembros(ctx, "lote-1", []string{"SOL-X"}, []string{"SOL-A"})
	if !errors.Is(err, domain.ErrMiembrosInconsistentes) {
		t.Fatalf("expected ErrMiembrosInconsistentes, got %v", err)
	}
	s, err = solicitudes.ObtenerSolicitud(ctx, "SOL-A")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if s.LoteID == nil || *s.LoteID != "lote-1" {
		t.Fatal("expected the failed batch to leave SOL-A's membership intact")
	}

	// Removal releases the request back to pending.
	guardado, err = lotes.ReemplazarMiembros(ctx, "lote-1", nil, []string{"SOL-B"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(guardado.ServiciosIDs) != 1 || guardado.ServiciosIDs[0] != "SOL-A" {
		t.Fatalf("expected [SOL-A], got %v", guardado.ServiciosIDs)
	}
	s, err = solicitudes.ObtenerSolicitud(ctx, "SOL-B")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if s.Estado != domain.SolicitudPendiente || s.LoteID != nil {
		t.Fatalf("expected SOL-B released to pending, got %+v", s)
	}

	// Scalar updates never touch membership.
	guardado.Estado = domain.LoteCalculado
	rutaID := "ruta-1"
	guardado.RutaID = &rutaID
	if err := lotes.GuardarLote(ctx, guardado); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	releido, err := lotes.ObtenerLote(ctx, "lote-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if releido.Estado != domain.LoteCalculado || releido.RutaID == nil || *releido.RutaID != "ruta-1" {
		t.Fatalf("unexpected lot after save: %+v", releido)
	}
	if len(releido.ServiciosIDs) != 1 || releido.ServiciosIDs[0] != "SOL-A" {
		t.Fatalf("expected membership preserved, got %v", releido.ServiciosIDs)
	}
}

func TestSqliteRutaRepository(t *testing.T) {
	db := nuevaBaseDePrueba(t)
	repo := NewSqliteRutaRepository(db)
	ctx := context.Background()
	calculada := time.Date(2025, 3, 10, 7, 0, 0, 0, time.UTC)

	ruta := &domain.Ruta{
		ID:               "ruta-1",
		LoteID:           "lote-1",
		HoraSalidaBase:   domain.MustHorario("07:30"),
		DuracionTotalMin: 85,
		DistanciaTotalKm: 30,
		CalculadaEn:      calculada,
		Paradas: []domain.Parada{
			{
				ServicioID: "SOL-B", Orden: 1, PacienteNombre: "Paciente B",
				DireccionRecogida: "Calle B", Movilidad: domain.MovilidadCamilla,
				HoraCita:                   domain.MustHorario("09:00"),
				HoraRecogidaEstimada:       domain.MustHorario("08:00"),
				HoraLlegadaDestinoEstimada: domain.MustHorario("09:00"),
				TiempoDesdeAnteriorMin:     30,
				Estado:                     domain.ParadaPendiente,
			},
			{
				ServicioID: "SOL-A", Orden: 2, PacienteNombre: "Paciente A",
				DireccionRecogida: "Calle A", Movilidad: domain.MovilidadAndando,
				HoraCita:                   domain.MustHorario("10:00"),
				HoraRecogidaEstimada:       domain.MustHorario("09:00"),
				HoraLlegadaDestinoEstimada: domain.MustHorario("10:00"),
				TiempoDesdeAnteriorMin:     18,
				Estado:                     domain.ParadaPendiente,
			},
		},
	}

	if err := repo.GuardarRuta(ctx, ruta); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	leida, err := repo.ObtenerRutaPorLote(ctx, "lote-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if leida.ID != "ruta-1" || leida.HoraSalidaBase.String() != "07:30" {
		t.Fatalf("unexpected route: %+v", leida)
	}
	if len(leida.Paradas) != 2 || leida.Paradas[0].ServicioID != "SOL-B" || leida.Paradas[1].Orden != 2 {
		t.Fatalf("unexpected stops: %+v", leida.Paradas)
	}

	// Advance one stop and check the milestone survives.
	salida := calculada.Add(30 * time.Minute)
	parada := leida.Paradas[0]
	parada.Estado = domain.ParadaEnRutaRecogida
	parada.SalidaRecogidaEn = &salida
	if err := repo.ActualizarParada(ctx, "ruta-1", parada); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	leida, err = repo.ObtenerRutaPorLote(ctx, "lote-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if leida.Paradas[0].Estado != domain.ParadaEnRutaRecogida || leida.Paradas[0].SalidaRecogidaEn == nil {
		t.Fatalf("expected advanced stop persisted, got %+v", leida.Paradas[0])
	}

	err = repo.ActualizarParada(ctx, "ruta-1", domain.Parada{ServicioID: "no-existe"})
	if !errors.Is(err, domain.ErrNoEncontrado) {
		t.Fatalf("expected ErrNoEncontrado, got %v", err)
	}

	// Saving a new route for the same lot replaces the old one wholesale.
	nueva := &domain.Ruta{
		ID:               "ruta-2",
		LoteID:           "lote-1",
		HoraSalidaBase:   domain.MustHorario("08:30"),
		DuracionTotalMin: 50,
		DistanciaTotalKm: 15,
		CalculadaEn:      calculada.Add(time.Hour),
		Paradas: []domain.Parada{
			{
				ServicioID: "SOL-A", Orden: 1, PacienteNombre: "Paciente A",
				HoraCita:                   domain.MustHorario("10:00"),
				HoraRecogidaEstimada:       domain.MustHorario("09:00"),
				HoraLlegadaDestinoEstimada: domain.MustHorario("10:00"),
				TiempoDesdeAnteriorMin:     30,
				Estado:                     domain.ParadaPendiente,
			},
		},
	}
	if err := repo.GuardarRuta(ctx, nueva); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	leida, err = repo.ObtenerRutaPorLote(ctx, "lote-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if leida.ID != "ruta-2" || len(leida.Paradas) != 1 {
		t.Fatalf("expected the replacement route, got %+v", leida)
	}

	_, err = repo.ObtenerRutaPorLote(ctx, "lote-desconocido")
	if !errors.Is(err, domain.ErrNoEncontrado) {
		t.Fatalf("expected ErrNoEncontrado, got %v", err)
	}
}

func TestSeedFromJSON(t *testing.T) {
	db := nuevaBaseDePrueba(t)
	ctx := context.Background()

	seed := `{
	  "solicitudes": [
	    {"id": "SOL-1", "paciente_nombre": "Paciente 1", "fecha": "2025-03-10", "hora_servicio": "09:30", "hora_cita": "10:00", "movilidad": "andando"},
	    {"id": "SOL-2", "paciente_nombre": "Paciente 2", "fecha": "2025-03-10", "hora_servicio": "08:30", "movilidad": "camilla"}
	  ],
	  "ambulancias": [
	    {"id": "AMB-01", "nombre": "Unidad 01", "tipo": "convencional", "estado": "disponible"}
	  ]
	}`
	path := filepath.Join(t.TempDir(), "seed.json")
	if err := os.WriteFile(path, []byte(seed), 0o600); err != nil {
		t.Fatalf("expected no error writing seed file, got %v", err)
	}

	if err := SeedFromJSON(db, path); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	// Re-seeding is idempotent thanks to ON CONFLICT DO NOTHING.
	if err := SeedFromJSON(db, path); err != nil {
		t.Fatalf("expected re-seed to succeed, got %v", err)
	}

	repo := NewSqliteSolicitudRepository(db)
	pendientes, err := repo.SolicitudesPendientesPorFecha(ctx, "2025-03-10")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(pendientes) != 2 {
		t.Fatalf("expected 2 seeded requests, got %d", len(pendientes))
	}
	if pendientes[0].ID != "SOL-1" {
		t.Fatalf("expected SOL-1 first by creation time, got %s", pendientes[0].ID)
	}
	if pendientes[1].HoraCita != nil {
		t.Fatal("expected SOL-2 without an appointment time")
	}

	ambulancias := NewSqliteAmbulanciaRepository(db)
	flota, err := ambulancias.ListarAmbulancias(ctx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(flota) != 1 || flota[0].ID != "AMB-01" {
		t.Fatalf("expected the seeded ambulance, got %+v", flota)
	}

	if err := SeedFromJSON(db, filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected an error for a missing seed file")
	}

	malo := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(malo, []byte(`{"solicitudes":[{"id":"SOL-9","fecha":"hoy","hora_servicio":"09:00"}]}`), 0o600); err != nil {
		t.Fatalf("expected no error writing seed file, got %v", err)
	}
	if err := SeedFromJSON(db, malo); err == nil {
		t.Fatal("expected an error for an invalid fecha")
	}
}
