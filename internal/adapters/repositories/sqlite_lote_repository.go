package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	"ambulance-dispatch-service/internal/domain"
	"ambulance-dispatch-service/internal/platform/obs"
)

// SQLite-backed implementation of the LoteRepository port. Membership
// lives in two places on purpose (lotes_servicios rows and the
// solicitudes.lote_id pointer); ReemplazarMiembros is the only writer
// and keeps both sides inside one transaction.
type SqliteLoteRepository struct{ DB *sql.DB }

func NewSqliteLoteRepository(db *sql.DB) *SqliteLoteRepository {
	return &SqliteLoteRepository{DB: db}
}

func (r *SqliteLoteRepository) CrearLote(ctx context.Context, lote *domain.Lote) error {
	query := `
	INSERT INTO lotes (
		id, fecha, destino_nombre, destino_direccion, ambulancia_id,
		ruta_id, estado, notas, creado_en, actualizado_en
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`
	_, err := r.DB.ExecContext(ctx, query,
		lote.ID, lote.Fecha, lote.DestinoPrincipal.Nombre, lote.DestinoPrincipal.Direccion,
		lote.AmbulanciaID, lote.RutaID, string(lote.Estado), lote.Notas,
		lote.CreadoEn, lote.ActualizadoEn,
	)
	if err != nil {
		return fmt.Errorf("crear lote %s: %w", lote.ID, err)
	}
	return nil
}

func (r *SqliteLoteRepository) ObtenerLote(ctx context.Context, id string) (*domain.Lote, error) {
	lote, err := obtenerLoteTx(ctx, r.DB, id)
	if err != nil {
		return nil, fmt.Errorf("obtener lote %s: %w", id, err)
	}
	return lote, nil
}

// consultador abstracts *sql.DB and *sql.Tx so lot reads can run inside
// the membership transaction.
type consultador interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func obtenerLoteTx(ctx context.Context, q consultador, id string) (*domain.Lote, error) {
	query := `
	SELECT id, fecha, destino_nombre, destino_direccion, ambulancia_id,
	       ruta_id, estado, notas, creado_en, actualizado_en
	FROM lotes WHERE id = ?;
	`

	var lote domain.Lote
	var ambulanciaID, rutaID sql.NullString
	err := q.QueryRowContext(ctx, query, id).Scan(
		&lote.ID, &lote.Fecha, &lote.DestinoPrincipal.Nombre, &lote.DestinoPrincipal.Direccion,
		&ambulanciaID, &rutaID, &lote.Estado, &lote.Notas, &lote.CreadoEn, &lote.ActualizadoEn,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNoEncontrado
	}
	if err != nil {
		return nil, err
	}

	if ambulanciaID.Valid {
		lote.AmbulanciaID = &ambulanciaID.String
	}
	if rutaID.Valid {
		lote.RutaID = &rutaID.String
	}

	rows, err := q.QueryContext(ctx,
		`SELECT servicio_id FROM lote_servicios WHERE lote_id = ? ORDER BY posicion;`, id)
	if err != nil {
		return nil, fmt.Errorf("cargar miembros: %w", err)
	}
	defer rows.Close()

	lote.ServiciosIDs = make([]string, 0, 8)
	for rows.Next() {
		var servicioID string
		if err := rows.Scan(&servicioID); err != nil {
			return nil, fmt.Errorf("cargar miembros: scan row: %w", err)
		}
		lote.ServiciosIDs = append(lote.ServiciosIDs, servicioID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cargar miembros: row iteration: %w", err)
	}

	return &lote, nil
}

// GuardarLote persists the lot's scalar fields. Membership rows are
// only ever written by ReemplazarMiembros.
func (r *SqliteLoteRepository) GuardarLote(ctx context.Context, lote *domain.Lote) error {
	query := `
	UPDATE lotes
	SET fecha = ?, destino_nombre = ?, destino_direccion = ?,
	    ambulancia_id = ?, ruta_id = ?, estado = ?, notas = ?, actualizado_en = ?
	WHERE id = ?;
	`
	res, err := r.DB.ExecContext(ctx, query,
		lote.Fecha, lote.DestinoPrincipal.Nombre, lote.DestinoPrincipal.Direccion,
		lote.AmbulanciaID, lote.RutaID, string(lote.Estado), lote.Notas,
		lote.ActualizadoEn, lote.ID,
	)
	if err != nil {
		return fmt.Errorf("guardar lote %s: %w", lote.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("guardar lote %s: %w", lote.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("guardar lote %s: %w", lote.ID, domain.ErrNoEncontrado)
	}
	return nil
}

func (r *SqliteLoteRepository) ReemplazarMiembros(ctx context.Context, loteID string, agregar, quitar []string) (_ *domain.Lote, err error) {
	defer obs.Time(ctx, "lotes.ReemplazarMiembros")(&err)

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("reemplazar miembros de lote %s: begin tx: %w", loteID, err)
	}
	defer func() { _ = tx.Rollback() }()

	lote, err := obtenerLoteTx(ctx, tx, loteID)
	if err != nil {
		return nil, fmt.Errorf("reemplazar miembros de lote %s: %w", loteID, err)
	}

	// Validate everything before writing anything: a partial membership
	// update must be impossible, not repaired after the fact.
	miembros := slices.Clone(lote.ServiciosIDs)

	for _, id := range quitar {
		if !slices.Contains(miembros, id) {
			return nil, fmt.Errorf("reemplazar miembros de lote %s: servicio %s no es miembro: %w",
				loteID, id, domain.ErrMiembrosInconsistentes)
		}
	}

	for _, id := range agregar {
		solicitud, err := obtenerSolicitudTx(ctx, tx, id)
		if err != nil {
			return nil, fmt.Errorf("reemplazar miembros de lote %s: servicio %s: %w", loteID, id, err)
		}
		if solicitud.LoteID != nil && *solicitud.LoteID == loteID {
			continue // already a member, idempotent
		}
		if solicitud.LoteID != nil {
			return nil, fmt.Errorf("reemplazar miembros de lote %s: servicio %s pertenece a lote %s: %w",
				loteID, id, *solicitud.LoteID, domain.ErrMiembrosInconsistentes)
		}
		if solicitud.Estado != domain.SolicitudPendiente {
			return nil, fmt.Errorf("reemplazar miembros de lote %s: servicio %s esta %s: %w",
				loteID, id, solicitud.Estado, domain.ErrMiembrosInconsistentes)
		}
		if solicitud.Fecha != lote.Fecha {
			return nil, fmt.Errorf("reemplazar miembros de lote %s: servicio %s es del %s, lote del %s: %w",
				loteID, id, solicitud.Fecha, lote.Fecha, domain.ErrMiembrosInconsistentes)
		}
	}

	for _, id := range quitar {
		miembros = slices.DeleteFunc(miembros, func(m string) bool { return m == id })
	}
	for _, id := range agregar {
		if !slices.Contains(miembros, id) {
			miembros = append(miembros, id)
		}
	}

	// Released requests go back to pending unless they already reached a
	// terminal status; the pointer clears either way.
	for _, id := range quitar {
		solicitud, err := obtenerSolicitudTx(ctx, tx, id)
		if err != nil {
			return nil, fmt.Errorf("reemplazar miembros de lote %s: servicio %s: %w", loteID, id, err)
		}
		estado := domain.SolicitudPendiente
		if solicitud.Estado.EsTerminal() {
			estado = solicitud.Estado
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE solicitudes SET lote_id = NULL, estado = ? WHERE id = ?;`,
			string(estado), id); err != nil {
			return nil, fmt.Errorf("reemplazar miembros de lote %s: liberar servicio %s: %w", loteID, id, err)
		}
	}

	for _, id := range agregar {
		if _, err := tx.ExecContext(ctx,
			`UPDATE solicitudes SET lote_id = ?, estado = ? WHERE id = ?;`,
			loteID, string(domain.SolicitudPlanificada), id); err != nil {
			return nil, fmt.Errorf("reemplazar miembros de lote %s: asignar servicio %s: %w", loteID, id, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM lote_servicios WHERE lote_id = ?;`, loteID); err != nil {
		return nil, fmt.Errorf("reemplazar miembros de lote %s: limpiar miembros: %w", loteID, err)
	}
	for i, id := range miembros {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO lote_servicios (lote_id, servicio_id, posicion) VALUES (?, ?, ?);`,
			loteID, id, i); err != nil {
			return nil, fmt.Errorf("reemplazar miembros de lote %s: insertar miembro %s: %w", loteID, id, err)
		}
	}

	actualizado := time.Now().UTC()
	if _, err := tx.ExecContext(ctx,
		`UPDATE lotes SET estado = ?, actualizado_en = ? WHERE id = ?;`,
		string(domain.LoteModificado), actualizado, loteID); err != nil {
		return nil, fmt.Errorf("reemplazar miembros de lote %s: actualizar lote: %w", loteID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("reemplazar miembros de lote %s: commit tx: %w", loteID, err)
	}

	lote.ServiciosIDs = miembros
	lote.Estado = domain.LoteModificado
	lote.ActualizadoEn = actualizado
	return lote, nil
}

func obtenerSolicitudTx(ctx context.Context, tx *sql.Tx, id string) (*domain.Solicitud, error) {
	query := `SELECT ` + columnasSolicitud + ` FROM solicitudes WHERE id = ?;`

	s, err := escanearSolicitud(tx.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNoEncontrado
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}
