package registry

import (
	"database/sql"
	"time"
)

// Instrument は台帳画面用のビュー。記述系フィールドはこのパッケージが
// 所有し、状態系フィールドは読み取り専用で載せるだけ（遷移は inout 側）
type Instrument struct {
	RecordULID       string
	ManagementNumber string
	Serial           sql.NullString
	Name             string
	Model            sql.NullString
	Manufacturer     sql.NullString
	Location         sql.NullString

	InOutStatus      string
	InstrumentStatus string
	Operator         string
	OperationDate    sql.NullString
	HiddenToday      bool

	CreatedAt time.Time
}
