package history

import "time"

// DB行に対応（スキャン用）
type operationRow struct {
	OperationID      uint64
	OperationULID    string
	ManagementNumber string
	Action           string
	Operator         string
	OccurredAt       time.Time
	OperatedOn       string // DATE → "YYYY-MM-DD"
}

func (r operationRow) toDTO() OperationResponse {
	return OperationResponse{
		OperationID:      r.OperationID,
		OperationULID:    r.OperationULID,
		ManagementNumber: r.ManagementNumber,
		Action:           r.Action,
		Operator:         r.Operator,
		OccurredAt:       r.OccurredAt.UTC(),
		OperatedOn:       r.OperatedOn,
	}
}
