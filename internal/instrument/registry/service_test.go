package registry

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	mysql "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type fixedIDGen struct{ id string }

func (g fixedIDGen) NewULID(time.Time) string { return g.id }

func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	dbc, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { dbc.Close() })

	svc := NewService(dbc, time.UTC)
	svc.clock = fixedClock{t: time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)}
	svc.id = fixedIDGen{id: "01TESTULID"}
	return svc, mock
}

func TestCreate_InsertsWithInitialState(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO instrument_records")).
		WithArgs("01TESTULID", "A-001", sqlmock.AnyArg(), "オシロスコープ",
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			"in", "available", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	got, err := svc.Create(context.Background(), CreateInstrumentRequest{
		ManagementNumber: "A-001",
		Name:             "オシロスコープ",
	})
	require.NoError(t, err)
	assert.Equal(t, "A-001", got.ManagementNumber)
	assert.Equal(t, "in", got.InOutStatus)
	assert.Equal(t, "available", got.InstrumentStatus)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_Validation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), CreateInstrumentRequest{Name: "テスター"})
	var api *APIError
	require.ErrorAs(t, err, &api)
	assert.Equal(t, CodeInvalidArgument, api.Code)

	_, err = svc.Create(context.Background(), CreateInstrumentRequest{ManagementNumber: "A-001"})
	require.ErrorAs(t, err, &api)
	assert.Equal(t, CodeInvalidArgument, api.Code)
}

func TestCreate_DuplicateManagementNumber(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO instrument_records")).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	_, err := svc.Create(context.Background(), CreateInstrumentRequest{
		ManagementNumber: "A-001",
		Name:             "オシロスコープ",
	})

	var api *APIError
	require.ErrorAs(t, err, &api)
	assert.Equal(t, CodeConflict, api.Code)
}

func TestUpdate_NoFields(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Update(context.Background(), "A-001", UpdateInstrumentRequest{})
	var api *APIError
	require.ErrorAs(t, err, &api)
	assert.Equal(t, CodeInvalidArgument, api.Code)
}

func TestUpdate_SetsOnlyGivenColumns(t *testing.T) {
	svc, mock := newTestService(t)
	name := "新しい名前"
	loc := ""

	mock.ExpectExec(regexp.QuoteMeta("UPDATE instrument_records SET name = ?, location = ? WHERE management_number = ?")).
		WithArgs("新しい名前", nil, "A-001").
		WillReturnResult(sqlmock.NewResult(0, 1))

	cols := []string{
		"record_ulid", "management_number", "serial", "name", "model", "manufacturer", "location",
		"in_out_status", "instrument_status", "operator", "operation_date", "hidden_today", "created_at",
	}
	mock.ExpectQuery(regexp.QuoteMeta("FROM instrument_records WHERE management_number = ?")).
		WithArgs("A-001").
		WillReturnRows(mock.NewRows(cols).AddRow(
			"01TESTULID", "A-001", nil, "新しい名前", nil, nil, nil,
			"in", "available", "", "2026-08-31", 0,
			time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC),
		))

	got, err := svc.Update(context.Background(), "A-001", UpdateInstrumentRequest{Name: &name, Location: &loc})
	require.NoError(t, err)
	assert.Equal(t, "新しい名前", got.Name)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_NotFound(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM instrument_records WHERE management_number = ?")).
		WithArgs("NOPE").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := svc.Delete(context.Background(), "NOPE")
	var api *APIError
	require.ErrorAs(t, err, &api)
	assert.Equal(t, CodeNotFound, api.Code)
}
