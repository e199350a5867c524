package inout

import (
	"context"
	"database/sql"
	"errors"

	"LITS-backend/internal/platform/db"
)

// Store は instrument_records テーブルへの read-modify-write 実装。
// DATE系カラムは文字列("YYYY-MM-DD")で出し入れし、瞬間には変換しない。
type Store struct {
	db *sql.DB
}

func NewStore(dbc *sql.DB) *Store { return &Store{db: dbc} }

const recordColumns = `
record_ulid, management_number, serial, name, model, manufacturer, location,
in_out_status, instrument_status, operator, borrowed_by,
outbound_at, inbound_at, used_at, borrowed_at, delay_at, cleared_at,
DATE_FORMAT(operation_date, '%Y-%m-%d'),
delay_days, delay_operator,
DATE_FORMAT(expected_return_date, '%Y-%m-%d'),
DATE_FORMAT(display_until, '%Y-%m-%d'),
hidden_today`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc rowScanner) (*Record, error) {
	var r Record
	var opDate sql.NullString
	var hidden int
	err := sc.Scan(
		&r.RecordULID, &r.ManagementNumber, &r.Serial, &r.Name, &r.Model, &r.Manufacturer, &r.Location,
		&r.InOutStatus, &r.InstrumentStatus, &r.Operator, &r.BorrowedBy,
		&r.OutboundAt, &r.InboundAt, &r.UsedAt, &r.BorrowedAt, &r.DelayAt, &r.ClearedAt,
		&opDate,
		&r.DelayDays, &r.DelayOperator,
		&r.ExpectedReturn,
		&r.DisplayUntil,
		&hidden,
	)
	if err != nil {
		return nil, err
	}
	r.OperationDate = opDate.String
	r.HiddenToday = hidden != 0
	return &r, nil
}

func (s *Store) GetByManagementNumber(ctx context.Context, mn string) (*Record, error) {
	q := `SELECT ` + recordColumns + ` FROM instrument_records WHERE management_number = ? LIMIT 1`
	rec, err := scanRecord(s.db.QueryRowContext(ctx, q, mn))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound("instrument record not found: " + mn)
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

const updateRecordQuery = `
UPDATE instrument_records SET
	in_out_status = ?, instrument_status = ?, operator = ?, borrowed_by = ?,
	outbound_at = ?, inbound_at = ?, used_at = ?, borrowed_at = ?, delay_at = ?, cleared_at = ?,
	operation_date = ?, delay_days = ?, delay_operator = ?,
	expected_return_date = ?, display_until = ?, hidden_today = ?
WHERE record_ulid = ?`

func updateArgs(r *Record) []any {
	return []any{
		r.InOutStatus, r.InstrumentStatus, r.Operator, r.BorrowedBy,
		r.OutboundAt, r.InboundAt, r.UsedAt, r.BorrowedAt, r.DelayAt, r.ClearedAt,
		nullIfEmpty(r.OperationDate), r.DelayDays, r.DelayOperator,
		r.ExpectedReturn, r.DisplayUntil, boolToInt(r.HiddenToday),
		r.RecordULID,
	}
}

// Update は状態系カラムの全列書き戻し（記述系カラムには触れない）
func (s *Store) Update(ctx context.Context, r *Record) error {
	res, err := s.db.ExecContext(ctx, updateRecordQuery, updateArgs(r)...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// 同値更新でも affected=0 になり得るのはMySQLの仕様だが、
		// エンジンの遷移は必ずどこかの時刻を書き換えるのでここは存在チェックとして扱える
		var exists int
		if err := s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM instrument_records WHERE record_ulid = ?`, r.RecordULID).Scan(&exists); err == nil && exists == 0 {
			return ErrNotFound("instrument record not found: " + r.ManagementNumber)
		}
	}
	return nil
}

// UpdateBatch は日次リセットの一括書き戻し。1トランザクションで行う
func (s *Store) UpdateBatch(ctx context.Context, recs []Record) error {
	if len(recs) == 0 {
		return nil
	}
	return db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		for i := range recs {
			if _, err := tx.ExecContext(ctx, updateRecordQuery, updateArgs(&recs[i])...); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) ListAll(ctx context.Context) ([]Record, error) {
	q := `SELECT ` + recordColumns + ` FROM instrument_records ORDER BY management_number`
	return s.list(ctx, q)
}

// ListActive は日次リセットのスキャン対象（未非表示のみ）
func (s *Store) ListActive(ctx context.Context) ([]Record, error) {
	q := `SELECT ` + recordColumns + ` FROM instrument_records WHERE hidden_today = 0 ORDER BY management_number`
	return s.list(ctx, q)
}

func (s *Store) list(ctx context.Context, q string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
