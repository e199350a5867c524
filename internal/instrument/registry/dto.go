package registry

import "time"

// ===== Requests =====

type CreateInstrumentRequest struct {
	ManagementNumber string  `json:"management_number" binding:"required"`
	Name             string  `json:"name" binding:"required"`
	Serial           *string `json:"serial,omitempty"`
	Model            *string `json:"model,omitempty"`
	Manufacturer     *string `json:"manufacturer,omitempty"`
	Location         *string `json:"location,omitempty"`
}

// 記述系のみ更新可。状態系はこのAPIでは触れない
type UpdateInstrumentRequest struct {
	Name         *string `json:"name,omitempty"`
	Serial       *string `json:"serial,omitempty"`
	Model        *string `json:"model,omitempty"`
	Manufacturer *string `json:"manufacturer,omitempty"`
	Location     *string `json:"location,omitempty"`
}

// ===== Responses =====

type InstrumentResponse struct {
	RecordULID       string  `json:"record_ulid"`
	ManagementNumber string  `json:"management_number"`
	Serial           *string `json:"serial,omitempty"`
	Name             string  `json:"name"`
	Model            *string `json:"model,omitempty"`
	Manufacturer     *string `json:"manufacturer,omitempty"`
	Location         *string `json:"location,omitempty"`

	InOutStatus      string  `json:"in_out_status"`
	InstrumentStatus string  `json:"instrument_status"`
	Operator         string  `json:"operator"`
	OperationDate    *string `json:"operation_date,omitempty"`
	HiddenToday      bool    `json:"hidden_today"`

	CreatedAt time.Time `json:"created_at"`
}

type ListInstrumentsResponse struct {
	Items []InstrumentResponse `json:"items"`
	Total int                  `json:"total"`
}

func (m *Instrument) toDTO() InstrumentResponse {
	resp := InstrumentResponse{
		RecordULID:       m.RecordULID,
		ManagementNumber: m.ManagementNumber,
		Name:             m.Name,
		InOutStatus:      m.InOutStatus,
		InstrumentStatus: m.InstrumentStatus,
		Operator:         m.Operator,
		HiddenToday:      m.HiddenToday,
		CreatedAt:        m.CreatedAt.UTC(),
	}
	if m.Serial.Valid {
		v := m.Serial.String
		resp.Serial = &v
	}
	if m.Model.Valid {
		v := m.Model.String
		resp.Model = &v
	}
	if m.Manufacturer.Valid {
		v := m.Manufacturer.String
		resp.Manufacturer = &v
	}
	if m.Location.Valid {
		v := m.Location.String
		resp.Location = &v
	}
	if m.OperationDate.Valid {
		v := m.OperationDate.String
		resp.OperationDate = &v
	}
	return resp
}
