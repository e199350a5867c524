package inout

import (
	"database/sql"
	"fmt"
	"time"

	"LITS-backend/internal/platform/notify"
)

// ===== Requests =====

type CheckOutRequest struct {
	Operator string `json:"operator" binding:"required"`
}

type CheckInRequest struct {
	Operator string `json:"operator" binding:"required"`
}

type MarkUsedRequest struct {
	Operator string `json:"operator" binding:"required"`
}

type BorrowRequest struct {
	Borrower string `json:"borrower" binding:"required"`
}

type DelayRequest struct {
	Days     int    `json:"days"`
	Operator string `json:"operator" binding:"required"`
}

// ===== Responses =====

type RecordResponse struct {
	RecordULID       string  `json:"record_ulid"`
	ManagementNumber string  `json:"management_number"`
	Serial           *string `json:"serial,omitempty"`
	Name             string  `json:"name"`
	Model            *string `json:"model,omitempty"`
	Manufacturer     *string `json:"manufacturer,omitempty"`
	Location         *string `json:"location,omitempty"`

	InOutStatus      InOutStatus      `json:"in_out_status"`
	InstrumentStatus InstrumentStatus `json:"instrument_status"`

	// 借用中は "<操作者>（借用：<借用者>）" に合成した表示用文字列
	OperatorDisplay string  `json:"operator"`
	BorrowedBy      *string `json:"borrowed_by,omitempty"`

	OutboundAt *time.Time `json:"outbound_at,omitempty"`
	InboundAt  *time.Time `json:"inbound_at,omitempty"`
	UsedAt     *time.Time `json:"used_at,omitempty"`
	BorrowedAt *time.Time `json:"borrowed_at,omitempty"`
	DelayAt    *time.Time `json:"delay_at,omitempty"`

	OperationDate  string  `json:"operation_date"`
	DelayDays      *int64  `json:"delay_days,omitempty"`
	DelayOperator  *string `json:"delay_operator,omitempty"`
	ExpectedReturn *string `json:"expected_return_date,omitempty"`
	DisplayUntil   *string `json:"display_until,omitempty"`

	HiddenToday bool `json:"hidden_today"`
}

// 変更系エンドポイントの共通レスポンス
type ActionResponse struct {
	Record  RecordResponse `json:"record"`
	Message notify.Message `json:"message"`
}

type ListResponse struct {
	Items []RecordResponse `json:"items"`
	Total int              `json:"total"`
}

// OperatorDisplay は借用情報込みの表示文字列を合成する。
// 保存形式は構造化したままにして、連結はここでだけ行う。
func operatorDisplay(r *Record) string {
	if r.BorrowedBy.Valid && r.BorrowedBy.String != "" {
		return fmt.Sprintf("%s（借用：%s）", r.Operator, r.BorrowedBy.String)
	}
	return r.Operator
}

func toResponse(r *Record) RecordResponse {
	resp := RecordResponse{
		RecordULID:       r.RecordULID,
		ManagementNumber: r.ManagementNumber,
		Name:             r.Name,
		InOutStatus:      r.InOutStatus,
		InstrumentStatus: r.InstrumentStatus,
		OperatorDisplay:  operatorDisplay(r),
		OperationDate:    r.OperationDate,
		HiddenToday:      r.HiddenToday,
	}
	resp.Serial = strPtr(r.Serial.Valid, r.Serial.String)
	resp.Model = strPtr(r.Model.Valid, r.Model.String)
	resp.Manufacturer = strPtr(r.Manufacturer.Valid, r.Manufacturer.String)
	resp.Location = strPtr(r.Location.Valid, r.Location.String)
	resp.BorrowedBy = strPtr(r.BorrowedBy.Valid, r.BorrowedBy.String)
	resp.OutboundAt = timePtr(r.OutboundAt)
	resp.InboundAt = timePtr(r.InboundAt)
	resp.UsedAt = timePtr(r.UsedAt)
	resp.BorrowedAt = timePtr(r.BorrowedAt)
	resp.DelayAt = timePtr(r.DelayAt)
	if r.DelayDays.Valid {
		v := r.DelayDays.Int64
		resp.DelayDays = &v
	}
	resp.DelayOperator = strPtr(r.DelayOperator.Valid, r.DelayOperator.String)
	resp.ExpectedReturn = strPtr(r.ExpectedReturn.Valid, r.ExpectedReturn.String)
	resp.DisplayUntil = strPtr(r.DisplayUntil.Valid, r.DisplayUntil.String)
	return resp
}

func strPtr(valid bool, s string) *string {
	if !valid {
		return nil
	}
	return &s
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}
