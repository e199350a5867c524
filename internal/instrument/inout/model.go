package inout

import (
	"database/sql"
	"time"
)

// 入出ステータス（物理的な所在。必ずこの3値のどれか）
type InOutStatus string

const (
	StatusIn       InOutStatus = "in"        // 在庫
	StatusOut      InOutStatus = "out"       // 持出中
	StatusUsingOut InOutStatus = "using_out" // 外部使用中
)

func (s InOutStatus) Valid() bool {
	return s == StatusIn || s == StatusOut || s == StatusUsingOut
}

// 機器ステータス（使用可否。入出ステータスとは独立の軸）
type InstrumentStatus string

const (
	InstAvailable   InstrumentStatus = "available"
	InstInUse       InstrumentStatus = "in_use"
	InstUsed        InstrumentStatus = "used"
	InstOverdue     InstrumentStatus = "overdue"
	InstStopped     InstrumentStatus = "stopped"
	InstMaintenance InstrumentStatus = "maintenance"
)

// 日付のみフィールドの書式。比較は必ずこの書式の文字列同士で行う
// （ISO日付は辞書順＝暦順なので、瞬間比較によるタイムゾーンずれを避けられる）
const DateLayout = "2006-01-02"

// Record は instrument_records テーブルの1行。
// 記述系フィールド（名称・型式など）はこのエンジンでは一切変更しない。
// 借用情報は operator への文字列連結ではなく borrowed_by に分けて持ち、
// 表示用の合成はDTO側でだけ行う。
type Record struct {
	RecordULID       string
	ManagementNumber string
	Serial           sql.NullString

	// 記述系（台帳側が所有。エンジンからは読み取りのみ）
	Name         string
	Model        sql.NullString
	Manufacturer sql.NullString
	Location     sql.NullString

	InOutStatus      InOutStatus
	InstrumentStatus InstrumentStatus
	Operator         string
	BorrowedBy       sql.NullString

	OutboundAt sql.NullTime
	InboundAt  sql.NullTime
	UsedAt     sql.NullTime
	BorrowedAt sql.NullTime
	DelayAt    sql.NullTime
	ClearedAt  sql.NullTime

	// "YYYY-MM-DD"。最後に状態を変えた操作の暦日
	OperationDate string

	DelayDays      sql.NullInt64
	DelayOperator  sql.NullString
	ExpectedReturn sql.NullString // DATE
	DisplayUntil   sql.NullString // DATE。この日まで日次リセットの対象外

	// trueなら入出画面から非表示（機器そのものは消えない）
	HiddenToday bool
}

// dayOf は指定タイムゾーンでの暦日文字列
func dayOf(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}

// addDays は "YYYY-MM-DD" + n日
func addDays(day string, n int, loc *time.Location) (string, error) {
	t, err := time.ParseInLocation(DateLayout, day, loc)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, n).Format(DateLayout), nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: true}
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}
