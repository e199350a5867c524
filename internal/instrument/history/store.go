package history

import (
	"context"
	"database/sql"
	"strings"
)

type Store struct {
	db *sql.DB
}

func NewStore(dbc *sql.DB) *Store { return &Store{db: dbc} }

func (s *Store) Insert(ctx context.Context, r *operationRow) error {
	const q = `
INSERT INTO instrument_operations
	(operation_ulid, management_number, action, operator, occurred_at, operated_on)
VALUES (?, ?, ?, ?, ?, ?)
`
	_, err := s.db.ExecContext(ctx, q,
		r.OperationULID, r.ManagementNumber, r.Action, r.Operator, r.OccurredAt.UTC(), r.OperatedOn)
	return err
}

func (s *Store) List(ctx context.Context, q ListQuery) ([]operationRow, int64, error) {
	where := make([]string, 0, 4)
	args := make([]any, 0, 6)

	if q.ManagementNumber != "" {
		where = append(where, "management_number = ?")
		args = append(args, q.ManagementNumber)
	}
	if q.Action != "" {
		where = append(where, "action = ?")
		args = append(args, q.Action)
	}
	if q.From != "" {
		where = append(where, "operated_on >= ?")
		args = append(args, q.From)
	}
	if q.To != "" {
		where = append(where, "operated_on <= ?")
		args = append(args, q.To)
	}

	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM instrument_operations`+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listQ := `
SELECT operation_id, operation_ulid, management_number, action, operator, occurred_at,
       DATE_FORMAT(operated_on, '%Y-%m-%d')
FROM instrument_operations` + cond + `
ORDER BY occurred_at DESC
LIMIT ? OFFSET ?`
	listArgs := append(append([]any{}, args...), q.Limit, q.Offset)

	rows, err := s.db.QueryContext(ctx, listQ, listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []operationRow
	for rows.Next() {
		var r operationRow
		if err := rows.Scan(&r.OperationID, &r.OperationULID, &r.ManagementNumber,
			&r.Action, &r.Operator, &r.OccurredAt, &r.OperatedOn); err != nil {
			return nil, 0, err
		}
		out = append(out, r)
	}
	return out, total, rows.Err()
}

func (s *Store) Stats(ctx context.Context, from, to string) ([]StatsRow, error) {
	const q = `
SELECT DATE_FORMAT(operated_on, '%Y-%m-%d'), action, COUNT(*)
FROM instrument_operations
WHERE operated_on BETWEEN ? AND ?
GROUP BY operated_on, action
ORDER BY operated_on, action`

	rows, err := s.db.QueryContext(ctx, q, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]StatsRow, 0)
	for rows.Next() {
		var r StatsRow
		if err := rows.Scan(&r.OperatedOn, &r.Action, &r.Count); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
