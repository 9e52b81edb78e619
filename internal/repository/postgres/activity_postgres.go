package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"studymate/internal/model"
	"studymate/internal/repository"
)

// ActivityPostgres stores the activity journal in PostgreSQL.
type ActivityPostgres struct {
	db *sql.DB
}

func NewActivityPostgres(db *sql.DB) *ActivityPostgres {
	return &ActivityPostgres{db: db}
}

var _ repository.ActivityRepository = (*ActivityPostgres)(nil)

const activityColumns = `id, operation, principal_uid, state, error, started_at, duration_ms`

func (r *ActivityPostgres) Record(ctx context.Context, a *model.Activity) error {
	const q = `
		INSERT INTO activities (` + activityColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, q,
		a.ID,
		a.Operation,
		a.PrincipalUID,
		a.State,
		a.Error,
		a.StartedAt,
		a.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

func (r *ActivityPostgres) FindByID(ctx context.Context, id string) (*model.Activity, error) {
	const q = `SELECT ` + activityColumns + ` FROM activities WHERE id = $1`
	a, err := scanActivity(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("find activity: %w", err)
	}
	return a, nil
}

func (r *ActivityPostgres) List(ctx context.Context, f repository.ActivityFilter) (*repository.PageResult[model.Activity], error) {
	where, args := activityWhere(f)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM activities`+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count activities: %w", err)
	}

	limit := f.Page.Limit
	if limit <= 0 {
		limit = 50
	}
	n := len(args)
	q := fmt.Sprintf(`SELECT %s FROM activities%s ORDER BY started_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		activityColumns, where, n+1, n+2)
	rows, err := r.db.QueryContext(ctx, q, append(args, limit, f.Page.Offset)...)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	items := make([]model.Activity, 0)
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		items = append(items, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Activity]{Items: items, Total: total}, nil
}

func activityWhere(f repository.ActivityFilter) (string, []any) {
	var conds []string
	var args []any
	if f.PrincipalUID != "" {
		args = append(args, f.PrincipalUID)
		conds = append(conds, fmt.Sprintf("principal_uid = $%d", len(args)))
	}
	if f.Operation != "" {
		args = append(args, f.Operation)
		conds = append(conds, fmt.Sprintf("operation = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type scanner interface {
	Scan(dest ...any) error
}

func scanActivity(s scanner) (*model.Activity, error) {
	var (
		a  model.Activity
		ms int64
	)
	if err := s.Scan(&a.ID, &a.Operation, &a.PrincipalUID, &a.State, &a.Error, &a.StartedAt, &ms); err != nil {
		return nil, err
	}
	a.Duration = time.Duration(ms) * time.Millisecond
	return &a, nil
}
