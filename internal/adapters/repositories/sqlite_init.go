package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the dispatch schema. The DDL is deliberately portable: the
// same statements run on the SQLite runtime database and on Postgres
// via cmd/dbtool.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createSolicitudesQuery := `
	CREATE TABLE IF NOT EXISTS solicitudes (
		id TEXT PRIMARY KEY,
		paciente_nombre TEXT NOT NULL,
		paciente_documento TEXT NOT NULL DEFAULT '',
		centro_origen TEXT NOT NULL DEFAULT '',
		direccion_origen TEXT NOT NULL DEFAULT '',
		destino TEXT NOT NULL DEFAULT '',
		fecha TEXT NOT NULL,
		hora_servicio TEXT NOT NULL,
		hora_cita TEXT,
		movilidad TEXT NOT NULL,
		prioridad TEXT NOT NULL DEFAULT 'normal',
		contacto TEXT NOT NULL DEFAULT '',
		observaciones TEXT NOT NULL DEFAULT '',
		estado TEXT NOT NULL,
		lote_id TEXT,
		creada_en TIMESTAMP NOT NULL
	);
	`

	createLotesQuery := `
	CREATE TABLE IF NOT EXISTS lotes (
		id TEXT PRIMARY KEY,
		fecha TEXT NOT NULL,
		destino_nombre TEXT NOT NULL,
		destino_direccion TEXT NOT NULL DEFAULT '',
		ambulancia_id TEXT,
		ruta_id TEXT,
		estado TEXT NOT NULL,
		notas TEXT NOT NULL DEFAULT '',
		creado_en TIMESTAMP NOT NULL,
		actualizado_en TIMESTAMP NOT NULL
	);
	`

	createLoteServiciosQuery := `
	CREATE TABLE IF NOT EXISTS lote_servicios (
		lote_id TEXT NOT NULL,
		servicio_id TEXT NOT NULL,
		posicion INTEGER NOT NULL,
		PRIMARY KEY (lote_id, servicio_id)
	);
	`

	createRutasQuery := `
	CREATE TABLE IF NOT EXISTS rutas (
		id TEXT PRIMARY KEY,
		lote_id TEXT NOT NULL UNIQUE,
		hora_salida_base TEXT NOT NULL,
		duracion_total_min INTEGER NOT NULL,
		distancia_total_km INTEGER NOT NULL,
		calculada_en TIMESTAMP NOT NULL
	);
	`

	createParadasQuery := `
	CREATE TABLE IF NOT EXISTS paradas (
		ruta_id TEXT NOT NULL,
		servicio_id TEXT NOT NULL,
		orden INTEGER NOT NULL,
		paciente_nombre TEXT NOT NULL DEFAULT '',
		direccion_recogida TEXT NOT NULL DEFAULT '',
		contacto TEXT NOT NULL DEFAULT '',
		movilidad TEXT NOT NULL DEFAULT '',
		observaciones TEXT NOT NULL DEFAULT '',
		hora_cita TEXT NOT NULL,
		hora_recogida_estimada TEXT NOT NULL,
		hora_llegada_destino_estimada TEXT NOT NULL,
		tiempo_desde_anterior_min INTEGER NOT NULL,
		estado TEXT NOT NULL,
		notas TEXT NOT NULL DEFAULT '',
		salida_recogida_en TIMESTAMP,
		recogida_en TIMESTAMP,
		llegada_destino_en TIMESTAMP,
		finalizada_en TIMESTAMP,
		PRIMARY KEY (ruta_id, servicio_id)
	);
	`

	createAmbulanciasQuery := `
	CREATE TABLE IF NOT EXISTS ambulancias (
		id TEXT PRIMARY KEY,
		nombre TEXT NOT NULL,
		tipo TEXT NOT NULL,
		estado TEXT NOT NULL,
		matricula TEXT NOT NULL DEFAULT ''
	);
	`

	createIndexFechaQuery := `
	CREATE INDEX IF NOT EXISTS idx_solicitudes_fecha_estado
	ON solicitudes(fecha, estado);
	`

	createIndexLoteQuery := `
	CREATE INDEX IF NOT EXISTS idx_solicitudes_lote
	ON solicitudes(lote_id);
	`

	statements := []string{
		createSolicitudesQuery,
		createLotesQuery,
		createLoteServiciosQuery,
		createRutasQuery,
		createParadasQuery,
		createAmbulanciasQuery,
		createIndexFechaQuery,
		createIndexLoteQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
