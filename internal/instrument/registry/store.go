package registry

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

type Store struct {
	db *sql.DB
}

func NewStore(dbc *sql.DB) *Store { return &Store{db: dbc} }

const instrumentColumns = `
record_ulid, management_number, serial, name, model, manufacturer, location,
in_out_status, instrument_status, operator,
DATE_FORMAT(operation_date, '%Y-%m-%d'),
hidden_today, created_at`

func scanInstrument(sc interface{ Scan(dest ...any) error }) (*Instrument, error) {
	var m Instrument
	var hidden int
	err := sc.Scan(
		&m.RecordULID, &m.ManagementNumber, &m.Serial, &m.Name, &m.Model, &m.Manufacturer, &m.Location,
		&m.InOutStatus, &m.InstrumentStatus, &m.Operator,
		&m.OperationDate,
		&hidden, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.HiddenToday = hidden != 0
	return &m, nil
}

// Insert は台帳行＝入出レコードの新規作成。状態系は初期値で埋める
func (s *Store) Insert(ctx context.Context, m *Instrument) error {
	const q = `
INSERT INTO instrument_records
	(record_ulid, management_number, serial, name, model, manufacturer, location,
	 in_out_status, instrument_status, operator, operation_date, hidden_today, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, '', ?, 0, NOW(6))
`
	_, err := s.db.ExecContext(ctx, q,
		m.RecordULID, m.ManagementNumber, m.Serial, m.Name, m.Model, m.Manufacturer, m.Location,
		m.InOutStatus, m.InstrumentStatus, m.OperationDate,
	)
	return err
}

func (s *Store) GetByManagementNumber(ctx context.Context, mn string) (*Instrument, error) {
	q := `SELECT ` + instrumentColumns + ` FROM instrument_records WHERE management_number = ? LIMIT 1`
	m, err := scanInstrument(s.db.QueryRowContext(ctx, q, mn))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound("instrument not found: " + mn)
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Store) List(ctx context.Context) ([]Instrument, error) {
	q := `SELECT ` + instrumentColumns + ` FROM instrument_records ORDER BY management_number`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Instrument
	for rows.Next() {
		m, err := scanInstrument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

// UpdateDescriptive は渡されたフィールドだけをSETする部分更新
func (s *Store) UpdateDescriptive(ctx context.Context, mn string, in UpdateInstrumentRequest) error {
	sets := make([]string, 0, 5)
	args := make([]any, 0, 6)

	add := func(col string, p *string) {
		if p == nil {
			return
		}
		sets = append(sets, col+" = ?")
		if strings.TrimSpace(*p) == "" {
			args = append(args, nil)
		} else {
			args = append(args, strings.TrimSpace(*p))
		}
	}
	add("name", in.Name)
	add("serial", in.Serial)
	add("model", in.Model)
	add("manufacturer", in.Manufacturer)
	add("location", in.Location)

	if len(sets) == 0 {
		return ErrInvalid("no fields to update")
	}

	q := `UPDATE instrument_records SET ` + strings.Join(sets, ", ") + ` WHERE management_number = ?`
	args = append(args, mn)

	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists int
		if err := s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM instrument_records WHERE management_number = ?`, mn).Scan(&exists); err == nil && exists == 0 {
			return ErrNotFound("instrument not found: " + mn)
		}
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, mn string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM instrument_records WHERE management_number = ?`, mn)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound("instrument not found: " + mn)
	}
	return nil
}
