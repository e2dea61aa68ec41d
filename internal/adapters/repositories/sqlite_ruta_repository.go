package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ambulance-dispatch-service/internal/domain"
	"ambulance-dispatch-service/internal/platform/obs"
)

// SQLite-backed implementation of the RutaRepository port. A lot has at
// most one stored route; saving replaces the previous one wholesale.
type SqliteRutaRepository struct{ DB *sql.DB }

func NewSqliteRutaRepository(db *sql.DB) *SqliteRutaRepository {
	return &SqliteRutaRepository{DB: db}
}

func (r *SqliteRutaRepository) ObtenerRutaPorLote(ctx context.Context, loteID string) (*domain.Ruta, error) {
	query := `
	SELECT id, lote_id, hora_salida_base, duracion_total_min,
	       distancia_total_km, calculada_en
	FROM rutas WHERE lote_id = ?;
	`

	var ruta domain.Ruta
	var salida string
	err := r.DB.QueryRowContext(ctx, query, loteID).Scan(
		&ruta.ID, &ruta.LoteID, &salida, &ruta.DuracionTotalMin,
		&ruta.DistanciaTotalKm, &ruta.CalculadaEn,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("obtener ruta de lote %s: %w", loteID, domain.ErrNoEncontrado)
	}
	if err != nil {
		return nil, fmt.Errorf("obtener ruta de lote %s: %w", loteID, err)
	}

	if ruta.HoraSalidaBase, err = domain.ParseHorario(salida); err != nil {
		return nil, fmt.Errorf("obtener ruta de lote %s: hora_salida_base: %w", loteID, err)
	}

	paradas, err := r.consultarParadas(ctx, ruta.ID)
	if err != nil {
		return nil, fmt.Errorf("obtener ruta de lote %s: %w", loteID, err)
	}
	ruta.Paradas = paradas

	return &ruta, nil
}

func (r *SqliteRutaRepository) consultarParadas(ctx context.Context, rutaID string) ([]domain.Parada, error) {
	query := `
	SELECT servicio_id, orden, paciente_nombre, direccion_recogida, contacto,
	       movilidad, observaciones, hora_cita, hora_recogida_estimada,
	       hora_llegada_destino_estimada, tiempo_desde_anterior_min, estado,
	       notas, salida_recogida_en, recogida_en, llegada_destino_en, finalizada_en
	FROM paradas WHERE ruta_id = ? ORDER BY orden;
	`
	rows, err := r.DB.QueryContext(ctx, query, rutaID)
	if err != nil {
		return nil, fmt.Errorf("consultar paradas: %w", err)
	}
	defer rows.Close()

	paradas := make([]domain.Parada, 0, 8)
	for rows.Next() {
		var p domain.Parada
		var cita, recogida, llegada string
		var salidaEn, recogidaEn, llegadaEn, finalizadaEn sql.NullTime

		err := rows.Scan(
			&p.ServicioID, &p.Orden, &p.PacienteNombre, &p.DireccionRecogida, &p.Contacto,
			&p.Movilidad, &p.Observaciones, &cita, &recogida, &llegada,
			&p.TiempoDesdeAnteriorMin, &p.Estado, &p.Notas,
			&salidaEn, &recogidaEn, &llegadaEn, &finalizadaEn,
		)
		if err != nil {
			return nil, fmt.Errorf("consultar paradas: scan row: %w", err)
		}

		if p.HoraCita, err = domain.ParseHorario(cita); err != nil {
			return nil, fmt.Errorf("consultar paradas: parada %s: %w", p.ServicioID, err)
		}
		if p.HoraRecogidaEstimada, err = domain.ParseHorario(recogida); err != nil {
			return nil, fmt.Errorf("consultar paradas: parada %s: %w", p.ServicioID, err)
		}
		if p.HoraLlegadaDestinoEstimada, err = domain.ParseHorario(llegada); err != nil {
			return nil, fmt.Errorf("consultar paradas: parada %s: %w", p.ServicioID, err)
		}

		if salidaEn.Valid {
			p.SalidaRecogidaEn = &salidaEn.Time
		}
		if recogidaEn.Valid {
			p.RecogidaEn = &recogidaEn.Time
		}
		if llegadaEn.Valid {
			p.LlegadaDestinoEn = &llegadaEn.Time
		}
		if finalizadaEn.Valid {
			p.FinalizadaEn = &finalizadaEn.Time
		}

		paradas = append(paradas, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("consultar paradas: row iteration: %w", err)
	}

	return paradas, nil
}

func (r *SqliteRutaRepository) GuardarRuta(ctx context.Context, ruta *domain.Ruta) (err error) {
	defer obs.Time(ctx, "rutas.GuardarRuta")(&err)

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("guardar ruta de lote %s: begin tx: %w", ruta.LoteID, err)
	}
	defer func() { _ = tx.Rollback() }()

	// Replace, never patch: drop the previous route and its stops.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM paradas WHERE ruta_id IN (SELECT id FROM rutas WHERE lote_id = ?);`,
		ruta.LoteID); err != nil {
		return fmt.Errorf("guardar ruta de lote %s: limpiar paradas: %w", ruta.LoteID, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM rutas WHERE lote_id = ?;`, ruta.LoteID); err != nil {
		return fmt.Errorf("guardar ruta de lote %s: limpiar ruta: %w", ruta.LoteID, err)
	}

	if _, err := tx.ExecContext(ctx, `
	INSERT INTO rutas (id, lote_id, hora_salida_base, duracion_total_min, distancia_total_km, calculada_en)
	VALUES (?, ?, ?, ?, ?, ?);`,
		ruta.ID, ruta.LoteID, ruta.HoraSalidaBase.String(),
		ruta.DuracionTotalMin, ruta.DistanciaTotalKm, ruta.CalculadaEn,
	); err != nil {
		return fmt.Errorf("guardar ruta de lote %s: insertar ruta: %w", ruta.LoteID, err)
	}

	insertParada := `
	INSERT INTO paradas (
		ruta_id, servicio_id, orden, paciente_nombre, direccion_recogida,
		contacto, movilidad, observaciones, hora_cita, hora_recogida_estimada,
		hora_llegada_destino_estimada, tiempo_desde_anterior_min, estado, notas,
		salida_recogida_en, recogida_en, llegada_destino_en, finalizada_en
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`
	stmt, err := tx.PrepareContext(ctx, insertParada)
	if err != nil {
		return fmt.Errorf("guardar ruta de lote %s: prepare insert: %w", ruta.LoteID, err)
	}
	defer stmt.Close()

	for _, p := range ruta.Paradas {
		if _, err := stmt.ExecContext(ctx,
			ruta.ID, p.ServicioID, p.Orden, p.PacienteNombre, p.DireccionRecogida,
			p.Contacto, string(p.Movilidad), p.Observaciones, p.HoraCita.String(),
			p.HoraRecogidaEstimada.String(), p.HoraLlegadaDestinoEstimada.String(),
			p.TiempoDesdeAnteriorMin, string(p.Estado), p.Notas,
			p.SalidaRecogidaEn, p.RecogidaEn, p.LlegadaDestinoEn, p.FinalizadaEn,
		); err != nil {
			return fmt.Errorf("guardar ruta de lote %s: insertar parada %s: %w", ruta.LoteID, p.ServicioID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("guardar ruta de lote %s: commit tx: %w", ruta.LoteID, err)
	}

	return nil
}

func (r *SqliteRutaRepository) ActualizarParada(ctx context.Context, rutaID string, parada domain.Parada) error {
	query := `
	UPDATE paradas
	SET estado = ?, notas = ?, salida_recogida_en = ?, recogida_en = ?,
	    llegada_destino_en = ?, finalizada_en = ?
	WHERE ruta_id = ? AND servicio_id = ?;
	`
	res, err := r.DB.ExecContext(ctx, query,
		string(parada.Estado), parada.Notas,
		parada.SalidaRecogidaEn, parada.RecogidaEn,
		parada.LlegadaDestinoEn, parada.FinalizadaEn,
		rutaID, parada.ServicioID,
	)
	if err != nil {
		return fmt.Errorf("actualizar parada %s de ruta %s: %w", parada.ServicioID, rutaID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("actualizar parada %s de ruta %s: %w", parada.ServicioID, rutaID, err)
	}
	if n == 0 {
		return fmt.Errorf("actualizar parada %s de ruta %s: %w", parada.ServicioID, rutaID, domain.ErrNoEncontrado)
	}

	return nil
}
