package history

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"time"

	ulid "github.com/oklog/ulid/v2"
)

// ===== Error model（inout/registry と同型） =====

type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeInternal        Code = "INTERNAL"
)

type APIError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string      { return fmt.Sprintf("%s: %s", e.Code, e.Message) }
func ErrInvalid(msg string) *APIError  { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrInternal(msg string) *APIError { return &APIError{Code: CodeInternal, Message: msg} }

func toHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument:
			return 400
		case CodeNotFound:
			return 404
		default:
			return 500
		}
	}
	return 500
}

const (
	DateLayout       = "2006-01-02"
	DefaultPageLimit = 50
	MaxPageLimit     = 500
)

// ===== Service =====

type Service struct {
	store *Store
	loc   *time.Location
}

func NewService(dbc *sql.DB, loc *time.Location) *Service {
	return &Service{store: NewStore(dbc), loc: loc}
}

// Append は遷移エンジンからの履歴追記（inout.Journal 実装）。
// 追記のみで、既存行の更新・削除はない
func (s *Service) Append(ctx context.Context, managementNumber, action, operator string, at time.Time) error {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id := ulid.MustNew(ulid.Timestamp(at.UTC()), entropy).String()

	row := &operationRow{
		OperationULID:    id,
		ManagementNumber: managementNumber,
		Action:           action,
		Operator:         operator,
		OccurredAt:       at,
		OperatedOn:       at.In(s.loc).Format(DateLayout),
	}
	return s.store.Insert(ctx, row)
}

// GET /operations
func (s *Service) List(ctx context.Context, q ListQuery) (ListOperationsResponse, error) {
	if q.Limit <= 0 {
		q.Limit = DefaultPageLimit
	}
	if q.Limit > MaxPageLimit {
		q.Limit = MaxPageLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	if err := validateDay(q.From); err != nil {
		return ListOperationsResponse{}, ErrInvalid("from must be YYYY-MM-DD")
	}
	if err := validateDay(q.To); err != nil {
		return ListOperationsResponse{}, ErrInvalid("to must be YYYY-MM-DD")
	}

	rows, total, err := s.store.List(ctx, q)
	if err != nil {
		return ListOperationsResponse{}, err
	}
	out := make([]OperationResponse, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDTO())
	}
	return ListOperationsResponse{Items: out, Total: total}, nil
}

// GET /operations/stats
func (s *Service) Stats(ctx context.Context, from, to string) (StatsResponse, error) {
	if from == "" || to == "" {
		return StatsResponse{}, ErrInvalid("from and to are required")
	}
	if err := validateDay(from); err != nil {
		return StatsResponse{}, ErrInvalid("from must be YYYY-MM-DD")
	}
	if err := validateDay(to); err != nil {
		return StatsResponse{}, ErrInvalid("to must be YYYY-MM-DD")
	}
	if from > to {
		return StatsResponse{}, ErrInvalid("from must not be after to")
	}

	rows, err := s.store.Stats(ctx, from, to)
	if err != nil {
		return StatsResponse{}, err
	}
	return StatsResponse{Rows: rows}, nil
}

func validateDay(s string) error {
	if s == "" {
		return nil
	}
	_, err := time.Parse(DateLayout, s)
	return err
}
