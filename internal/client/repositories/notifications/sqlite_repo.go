package notifications

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/sanes/internal/client/models"
	"github.com/dmitrijs2005/sanes/internal/dbx"
)

var _ Repository = (*SQLiteRepository)(nil)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const upsertQuery = `
	INSERT INTO notifications (id, titulo, mensaje, tipo, canal, prioridad, leido, fecha_creacion, fecha_lectura, datos_adicionales)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		titulo = excluded.titulo,
		mensaje = excluded.mensaje,
		tipo = excluded.tipo,
		canal = excluded.canal,
		prioridad = excluded.prioridad,
		leido = excluded.leido,
		fecha_creacion = excluded.fecha_creacion,
		fecha_lectura = excluded.fecha_lectura,
		datos_adicionales = excluded.datos_adicionales
`

func upsert(ctx context.Context, db dbx.DBTX, n *models.Notification) error {
	var readAt *int64
	if n.FechaLectura != nil {
		v := n.FechaLectura.UTC().UnixMilli()
		readAt = &v
	}

	_, err := db.ExecContext(ctx, upsertQuery,
		n.ID, n.Titulo, n.Mensaje, n.Tipo, n.Canal, n.Prioridad, n.Leido,
		n.FechaCreacion.UTC().UnixMilli(), readAt, []byte(n.DatosAdicionales))
	if err != nil {
		return fmt.Errorf("failed to upsert notification %d: %w", n.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) Upsert(ctx context.Context, n *models.Notification) error {
	return upsert(ctx, r.db, n)
}

func (r *SQLiteRepository) ReplaceAll(ctx context.Context, items []models.Notification) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM notifications`); err != nil {
			return fmt.Errorf("failed to clear notifications: %w", err)
		}
		for i := range items {
			if err := upsert(ctx, tx, &items[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Notification, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, titulo, mensaje, tipo, canal, prioridad, leido, fecha_creacion, fecha_lectura, datos_adicionales
		FROM notifications
		ORDER BY fecha_creacion DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to select notifications: %w", err)
	}
	defer rows.Close()

	result := []models.Notification{}
	for rows.Next() {
		var (
			n       models.Notification
			created int64
			readAt  sql.NullInt64
			extra   []byte
		)
		if err := rows.Scan(&n.ID, &n.Titulo, &n.Mensaje, &n.Tipo, &n.Canal, &n.Prioridad, &n.Leido, &created, &readAt, &extra); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		n.FechaCreacion = time.UnixMilli(created).UTC()
		if readAt.Valid {
			t := time.UnixMilli(readAt.Int64).UTC()
			n.FechaLectura = &t
		}
		if len(extra) > 0 {
			n.DatosAdicionales = extra
		}
		result = append(result, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) MarkRead(ctx context.Context, id int64, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE notifications SET leido = 1, fecha_lectura = ? WHERE id = ?`, at.UTC().UnixMilli(), id)
	if err != nil {
		return fmt.Errorf("failed to mark notification %d read: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) MarkAllRead(ctx context.Context, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE notifications SET leido = 1, fecha_lectura = ? WHERE leido = 0`, at.UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) CountUnread(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications WHERE leido = 0`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM notifications`); err != nil {
		return fmt.Errorf("failed to clear notifications: %w", err)
	}
	return nil
}
