package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ambulance-dispatch-service/internal/domain"
)

// SQLite-backed implementation of the SolicitudRepository port.
type SqliteSolicitudRepository struct{ DB *sql.DB }

func NewSqliteSolicitudRepository(db *sql.DB) *SqliteSolicitudRepository {
	return &SqliteSolicitudRepository{DB: db}
}

const columnasSolicitud = `
	id, paciente_nombre, paciente_documento, centro_origen,
	direccion_origen, destino, fecha, hora_servicio, hora_cita,
	movilidad, prioridad, contacto, observaciones, estado, lote_id, creada_en
`

type filaScan interface {
	Scan(dest ...any) error
}

func escanearSolicitud(fila filaScan) (*domain.Solicitud, error) {
	var s domain.Solicitud
	var horaServicio string
	var horaCita, loteID sql.NullString

	err := fila.Scan(
		&s.ID, &s.PacienteNombre, &s.PacienteDocumento, &s.CentroOrigen,
		&s.DireccionOrigen, &s.Destino, &s.Fecha, &horaServicio, &horaCita,
		&s.Movilidad, &s.Prioridad, &s.Contacto, &s.Observaciones,
		&s.Estado, &loteID, &s.CreadaEn,
	)
	if err != nil {
		return nil, err
	}

	if s.HoraServicio, err = domain.ParseHorario(horaServicio); err != nil {
		return nil, fmt.Errorf("solicitud %s: hora_servicio: %w", s.ID, err)
	}
	if horaCita.Valid {
		cita, err := domain.ParseHorario(horaCita.String)
		if err != nil {
			return nil, fmt.Errorf("solicitud %s: hora_cita: %w", s.ID, err)
		}
		s.HoraCita = &cita
	}
	if loteID.Valid {
		s.LoteID = &loteID.String
	}

	return &s, nil
}

func (r *SqliteSolicitudRepository) ObtenerSolicitud(ctx context.Context, id string) (*domain.Solicitud, error) {
	query := `SELECT ` + columnasSolicitud + ` FROM solicitudes WHERE id = ?;`

	s, err := escanearSolicitud(r.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("obtener solicitud %s: %w", id, domain.ErrNoEncontrado)
	}
	if err != nil {
		return nil, fmt.Errorf("obtener solicitud %s: %w", id, err)
	}

	return s, nil
}

func (r *SqliteSolicitudRepository) SolicitudesPendientesPorFecha(ctx context.Context, fecha string) ([]*domain.Solicitud, error) {
	query := `
	SELECT ` + columnasSolicitud + `
	FROM solicitudes
	WHERE fecha = ? AND estado = ?
	ORDER BY creada_en, id;
	`
	return r.consultarSolicitudes(ctx, query, fecha, string(domain.SolicitudPendiente))
}

func (r *SqliteSolicitudRepository) SolicitudesPorLote(ctx context.Context, loteID string) ([]*domain.Solicitud, error) {
	query := `
	SELECT ` + columnasSolicitud + `
	FROM solicitudes
	WHERE lote_id = ?
	ORDER BY creada_en, id;
	`
	return r.consultarSolicitudes(ctx, query, loteID)
}

func (r *SqliteSolicitudRepository) consultarSolicitudes(ctx context.Context, query string, args ...any) ([]*domain.Solicitud, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("consultar solicitudes: %w", err)
	}
	defer rows.Close()

	solicitudes := make([]*domain.Solicitud, 0, 16)
	for rows.Next() {
		s, err := escanearSolicitud(rows)
		if err != nil {
			return nil, fmt.Errorf("consultar solicitudes: scan row: %w", err)
		}
		solicitudes = append(solicitudes, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("consultar solicitudes: row iteration: %w", err)
	}

	return solicitudes, nil
}

func (r *SqliteSolicitudRepository) ActualizarEstadoSolicitud(ctx context.Context, id string, estado domain.EstadoSolicitud) error {
	query := `UPDATE solicitudes SET estado = ? WHERE id = ?;`

	res, err := r.DB.ExecContext(ctx, query, string(estado), id)
	if err != nil {
		return fmt.Errorf("actualizar estado de solicitud %s: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("actualizar estado de solicitud %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("actualizar estado de solicitud %s: %w", id, domain.ErrNoEncontrado)
	}

	return nil
}
