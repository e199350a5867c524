package labels

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ===== Error model（他パッケージと同型） =====

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
func ErrNotFound(msg string) *APIError { return &APIError{Code: CodeNotFound, Message: msg} }

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

// ===== Service =====

type Service struct {
	db *sql.DB
}

func NewService(dbc *sql.DB) *Service { return &Service{db: dbc} }

// BuildCSV は指定された管理番号のラベルCSV(cp932)を返す。
// 1件でも見つからなければエラー（中途半端なラベルシートを作らない）
func (s *Service) BuildCSV(ctx context.Context, managementNumbers []string) ([]byte, error) {
	if len(managementNumbers) == 0 {
		return nil, ErrInvalid("management_numbers is required")
	}

	rows := make([]Row, 0, len(managementNumbers))
	for _, mn := range managementNumbers {
		mn = strings.TrimSpace(mn)
		if mn == "" {
			continue
		}
		r, err := s.fetch(ctx, mn)
		if err != nil {
			return nil, err
		}
		rows = append(rows, r)
	}
	if len(rows) == 0 {
		return nil, ErrInvalid("management_numbers is required")
	}

	return BuildCSVcp932(rows)
}

func (s *Service) fetch(ctx context.Context, mn string) (Row, error) {
	const q = `
SELECT management_number, name, COALESCE(serial, ''), COALESCE(location, '')
FROM instrument_records
WHERE management_number = ?
LIMIT 1`
	var r Row
	err := s.db.QueryRowContext(ctx, q, mn).Scan(&r.ManagementNumber, &r.Name, &r.Serial, &r.Location)
	if errors.Is(err, sql.ErrNoRows) {
		return Row{}, ErrNotFound("instrument not found: " + mn)
	}
	if err != nil {
		return Row{}, err
	}
	return r, nil
}
