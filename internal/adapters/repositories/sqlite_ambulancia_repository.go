package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ambulance-dispatch-service/internal/domain"
)

// SQLite-backed implementation of the AmbulanciaProvider port.
// Read-only: fleet lifecycle is managed by the vehicle administration
// screens, not by the dispatch core.
type SqliteAmbulanciaRepository struct{ DB *sql.DB }

func NewSqliteAmbulanciaRepository(db *sql.DB) *SqliteAmbulanciaRepository {
	return &SqliteAmbulanciaRepository{DB: db}
}

func (r *SqliteAmbulanciaRepository) ObtenerAmbulancia(ctx context.Context, id string) (*domain.Ambulancia, error) {
	query := `SELECT id, nombre, tipo, estado, matricula FROM ambulancias WHERE id = ?;`

	var a domain.Ambulancia
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&a.ID, &a.Nombre, &a.Tipo, &a.Estado, &a.Matricula)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("obtener ambulancia %s: %w", id, domain.ErrNoEncontrado)
	}
	if err != nil {
		return nil, fmt.Errorf("obtener ambulancia %s: %w", id, err)
	}

	return &a, nil
}

func (r *SqliteAmbulanciaRepository) ListarAmbulancias(ctx context.Context) ([]*domain.Ambulancia, error) {
	query := `SELECT id, nombre, tipo, estado, matricula FROM ambulancias ORDER BY id;`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listar ambulancias: %w", err)
	}
	defer rows.Close()

	flota := make([]*domain.Ambulancia, 0, 8)
	for rows.Next() {
		var a domain.Ambulancia
		if err := rows.Scan(&a.ID, &a.Nombre, &a.Tipo, &a.Estado, &a.Matricula); err != nil {
			return nil, fmt.Errorf("listar ambulancias: scan row: %w", err)
		}
		flota = append(flota, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listar ambulancias: row iteration: %w", err)
	}

	return flota, nil
}
