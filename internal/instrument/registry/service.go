package registry

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	mysql "github.com/go-sql-driver/mysql"
	ulid "github.com/oklog/ulid/v2"
)

// ===== Error model（assets/inout と同型） =====

type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeInternal        Code = "INTERNAL"
)

type APIError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string      { return fmt.Sprintf("%s: %s", e.Code, e.Message) }
func ErrInvalid(msg string) *APIError  { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrNotFound(msg string) *APIError { return &APIError{Code: CodeNotFound, Message: msg} }
func ErrConflict(msg string) *APIError { return &APIError{Code: CodeConflict, Message: msg} }
func ErrInternal(msg string) *APIError { return &APIError{Code: CodeInternal, Message: msg} }

func toHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument:
			return 400
		case CodeNotFound:
			return 404
		case CodeConflict:
			return 409
		default:
			return 500
		}
	}
	return 500
}

// ===== Clock & ID =====

type Clock interface{ Now() time.Time }
type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type IDGen interface{ NewULID(t time.Time) string }
type ulidGen struct{}

func (ulidGen) NewULID(t time.Time) string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(t.UTC()), entropy).String()
}

// ===== Service =====

type Service struct {
	store *Store
	clock Clock
	id    IDGen
	loc   *time.Location
}

func NewService(dbc *sql.DB, loc *time.Location) *Service {
	return &Service{
		store: NewStore(dbc),
		clock: realClock{},
		id:    ulidGen{},
		loc:   loc,
	}
}

// Create は台帳に1台追加し、入出レコードを「在庫・使用可能」で初期化する
func (s *Service) Create(ctx context.Context, in CreateInstrumentRequest) (InstrumentResponse, error) {
	if strings.TrimSpace(in.ManagementNumber) == "" || strings.TrimSpace(in.Name) == "" {
		return InstrumentResponse{}, ErrInvalid("management_number and name are required")
	}

	now := s.clock.Now()
	m := &Instrument{
		RecordULID:       s.id.NewULID(now),
		ManagementNumber: strings.TrimSpace(in.ManagementNumber),
		Name:             strings.TrimSpace(in.Name),
		InOutStatus:      "in",
		InstrumentStatus: "available",
		OperationDate:    sql.NullString{String: now.In(s.loc).Format("2006-01-02"), Valid: true},
		CreatedAt:        now,
	}
	m.Serial = toNullString(in.Serial)
	m.Model = toNullString(in.Model)
	m.Manufacturer = toNullString(in.Manufacturer)
	m.Location = toNullString(in.Location)

	if err := s.store.Insert(ctx, m); err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1062 {
			return InstrumentResponse{}, ErrConflict("management_number already exists")
		}
		return InstrumentResponse{}, err
	}
	return m.toDTO(), nil
}

// List は台帳画面用。非表示フラグに関わらず全件返す
func (s *Service) List(ctx context.Context) (ListInstrumentsResponse, error) {
	items, err := s.store.List(ctx)
	if err != nil {
		return ListInstrumentsResponse{}, err
	}
	out := make([]InstrumentResponse, 0, len(items))
	for i := range items {
		out = append(out, items[i].toDTO())
	}
	return ListInstrumentsResponse{Items: out, Total: len(out)}, nil
}

func (s *Service) Get(ctx context.Context, mn string) (InstrumentResponse, error) {
	m, err := s.store.GetByManagementNumber(ctx, mn)
	if err != nil {
		return InstrumentResponse{}, err
	}
	return m.toDTO(), nil
}

// Update は記述系フィールドのみ。状態系は inout の遷移エンジンを通す
func (s *Service) Update(ctx context.Context, mn string, in UpdateInstrumentRequest) (InstrumentResponse, error) {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return InstrumentResponse{}, ErrInvalid("name must not be empty")
	}
	if err := s.store.UpdateDescriptive(ctx, mn, in); err != nil {
		return InstrumentResponse{}, err
	}
	return s.Get(ctx, mn)
}

func (s *Service) Delete(ctx context.Context, mn string) error {
	return s.store.Delete(ctx, mn)
}

func toNullString(p *string) sql.NullString {
	if p == nil || strings.TrimSpace(*p) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: strings.TrimSpace(*p), Valid: true}
}
