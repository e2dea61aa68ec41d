package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"ambulance-dispatch-service/internal/domain"
)

type SolicitudSeed struct {
	ID                string `json:"id"`
	PacienteNombre    string `json:"paciente_nombre"`
	PacienteDocumento string `json:"paciente_documento"`
	CentroOrigen      string `json:"centro_origen"`
	DireccionOrigen   string `json:"direccion_origen"`
	Destino           string `json:"destino"`
	Fecha             string `json:"fecha"`
	HoraServicio      string `json:"hora_servicio"`
	HoraCita          string `json:"hora_cita"`
	Movilidad         string `json:"movilidad"`
	Prioridad         string `json:"prioridad"`
	Contacto          string `json:"contacto"`
	Observaciones     string `json:"observaciones"`
}

type AmbulanciaSeed struct {
	ID        string `json:"id"`
	Nombre    string `json:"nombre"`
	Tipo      string `json:"tipo"`
	Estado    string `json:"estado"`
	Matricula string `json:"matricula"`
}

type DespachoSeed struct {
	Solicitudes []SolicitudSeed  `json:"solicitudes"`
	Ambulancias []AmbulanciaSeed `json:"ambulancias"`
}

// leerSeed parses and validates the seed file. Seeded requests always
// start as pending with no lot.
func leerSeed(jsonPath string) (*DespachoSeed, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("seed despacho: read %q: %w", jsonPath, err)
	}

	var data DespachoSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return nil, fmt.Errorf("seed despacho: parse json: %w", err)
	}

	for i, s := range data.Solicitudes {
		if strings.TrimSpace(s.ID) == "" {
			return nil, fmt.Errorf("seed despacho: solicitud at index %d: id cannot be empty", i+1)
		}
		if _, err := time.Parse("2006-01-02", s.Fecha); err != nil {
			return nil, fmt.Errorf("seed despacho: solicitud %s: invalid fecha %q", s.ID, s.Fecha)
		}
		if _, err := domain.ParseHorario(s.HoraServicio); err != nil {
			return nil, fmt.Errorf("seed despacho: solicitud %s: %w", s.ID, err)
		}
		if s.HoraCita != "" {
			if _, err := domain.ParseHorario(s.HoraCita); err != nil {
				return nil, fmt.Errorf("seed despacho: solicitud %s: %w", s.ID, err)
			}
		}
	}

	for i, a := range data.Ambulancias {
		if strings.TrimSpace(a.ID) == "" {
			return nil, fmt.Errorf("seed despacho: ambulancia at index %d: id cannot be empty", i+1)
		}
	}

	return &data, nil
}

// Populate the SQLite runtime database from a JSON seed file.
func SeedFromJSON(db *sql.DB, jsonPath string) error {
	data, err := leerSeed(jsonPath)
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed despacho: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	solicitudQuery := `
	INSERT INTO solicitudes (
		id, paciente_nombre, paciente_documento, centro_origen,
		direccion_origen, destino, fecha, hora_servicio, hora_cita,
		movilidad, prioridad, contacto, observaciones, estado, lote_id, creada_en
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL, ?)
	ON CONFLICT (id) DO NOTHING;
	`
	stmt, err := tx.Prepare(solicitudQuery)
	if err != nil {
		return fmt.Errorf("seed despacho: prepare solicitud insert: %w", err)
	}
	defer stmt.Close()

	ahora := time.Now().UTC()
	for i, s := range data.Solicitudes {
		var cita any
		if s.HoraCita != "" {
			cita = s.HoraCita
		}
		// Offset creation times so sort tie-breaking stays stable.
		creada := ahora.Add(time.Duration(i) * time.Millisecond)
		if _, err := stmt.Exec(
			s.ID, s.PacienteNombre, s.PacienteDocumento, s.CentroOrigen,
			s.DireccionOrigen, s.Destino, s.Fecha, s.HoraServicio, cita,
			s.Movilidad, s.Prioridad, s.Contacto, s.Observaciones,
			string(domain.SolicitudPendiente), creada,
		); err != nil {
			return fmt.Errorf("seed despacho: insert solicitud %s: %w", s.ID, err)
		}
	}

	ambulanciaQuery := `
	INSERT INTO ambulancias (id, nombre, tipo, estado, matricula)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (id) DO NOTHING;
	`
	ambStmt, err := tx.Prepare(ambulanciaQuery)
	if err != nil {
		return fmt.Errorf("seed despacho: prepare ambulancia insert: %w", err)
	}
	defer ambStmt.Close()

	for _, a := range data.Ambulancias {
		if _, err := ambStmt.Exec(a.ID, a.Nombre, a.Tipo, a.Estado, a.Matricula); err != nil {
			return fmt.Errorf("seed despacho: insert ambulancia %s: %w", a.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed despacho: commit tx: %w", err)
	}

	return nil
}

// SeedPostgresFromJSON mirrors SeedFromJSON for the dbtool's Postgres
// target ($N placeholders; pgx does not accept ?).
func SeedPostgresFromJSON(db *sql.DB, jsonPath string) error {
	data, err := leerSeed(jsonPath)
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed despacho: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	solicitudQuery := `
	INSERT INTO solicitudes (
		id, paciente_nombre, paciente_documento, centro_origen,
		direccion_origen, destino, fecha, hora_servicio, hora_cita,
		movilidad, prioridad, contacto, observaciones, estado, lote_id, creada_en
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NULL, $15)
	ON CONFLICT (id) DO NOTHING;
	`

	ahora := time.Now().UTC()
	for i, s := range data.Solicitudes {
		var cita any
		if s.HoraCita != "" {
			cita = s.HoraCita
		}
		creada := ahora.Add(time.Duration(i) * time.Millisecond)
		if _, err := tx.Exec(solicitudQuery,
			s.ID, s.PacienteNombre, s.PacienteDocumento, s.CentroOrigen,
			s.DireccionOrigen, s.Destino, s.Fecha, s.HoraServicio, cita,
			s.Movilidad, s.Prioridad, s.Contacto, s.Observaciones,
			string(domain.SolicitudPendiente), creada,
		); err != nil {
			return fmt.Errorf("seed despacho: insert solicitud %s: %w", s.ID, err)
		}
	}

	ambulanciaQuery := `
	INSERT INTO ambulancias (id, nombre, tipo, estado, matricula)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (id) DO NOTHING;
	`
	for _, a := range data.Ambulancias {
		if _, err := tx.Exec(ambulanciaQuery, a.ID, a.Nombre, a.Tipo, a.Estado, a.Matricula); err != nil {
			return fmt.Errorf("seed despacho: insert ambulancia %s: %w", a.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed despacho: commit tx: %w", err)
	}

	return nil
}
