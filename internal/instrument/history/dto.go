package history

import "time"

type OperationResponse struct {
	OperationID      uint64    `json:"operation_id"`
	OperationULID    string    `json:"operation_ulid"`
	ManagementNumber string    `json:"management_number"`
	Action           string    `json:"action"`
	Operator         string    `json:"operator"`
	OccurredAt       time.Time `json:"occurred_at"`
	OperatedOn       string    `json:"operated_on"`
}

type ListQuery struct {
	ManagementNumber string
	Action           string
	From             string // "YYYY-MM-DD"
	To               string // "YYYY-MM-DD"
	Limit            int
	Offset           int
}

type ListOperationsResponse struct {
	Items []OperationResponse `json:"items"`
	Total int64               `json:"total"`
}

// 日別・操作別の件数
type StatsRow struct {
	OperatedOn string `json:"operated_on"`
	Action     string `json:"action"`
	Count      int64  `json:"count"`
}

type StatsResponse struct {
	Rows []StatsRow `json:"rows"`
}
