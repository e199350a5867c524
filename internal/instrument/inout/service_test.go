package inout

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LITS-backend/internal/platform/notify"
)

// ===== テスト用フェイク =====

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type fakeStore struct {
	recs      map[string]*Record
	updates   int
	batches   [][]Record
	listErr   error
	updateErr error
}

func newFakeStore(recs ...Record) *fakeStore {
	f := &fakeStore{recs: map[string]*Record{}}
	for i := range recs {
		cp := recs[i]
		f.recs[cp.ManagementNumber] = &cp
	}
	return f
}

func (f *fakeStore) GetByManagementNumber(_ context.Context, mn string) (*Record, error) {
	r, ok := f.recs[mn]
	if !ok {
		return nil, ErrNotFound("instrument record not found: " + mn)
	}
	cp := *r
	return &cp, nil
}

func (f *fakeStore) Update(_ context.Context, r *Record) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	cp := *r
	f.recs[r.ManagementNumber] = &cp
	f.updates++
	return nil
}

func (f *fakeStore) ListAll(_ context.Context) ([]Record, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]Record, 0, len(f.recs))
	for _, r := range f.recs {
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeStore) ListActive(_ context.Context) ([]Record, error) {
	all, err := f.ListAll(context.Background())
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, r := range all {
		if !r.HiddenToday {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateBatch(_ context.Context, recs []Record) error {
	for i := range recs {
		cp := recs[i]
		f.recs[cp.ManagementNumber] = &cp
	}
	f.batches = append(f.batches, recs)
	return nil
}

type fakeJournal struct{ actions []string }

func (j *fakeJournal) Append(_ context.Context, _, action, _ string, _ time.Time) error {
	j.actions = append(j.actions, action)
	return nil
}

type captureNotifier struct{ msgs []notify.Message }

func (n *captureNotifier) RecordsChanged(_ context.Context, m notify.Message) {
	n.msgs = append(n.msgs, m)
}

func newTestService(store *fakeStore, at time.Time) (*Service, *fakeJournal, *captureNotifier) {
	j := &fakeJournal{}
	n := &captureNotifier{}
	svc := &Service{
		store:    store,
		clock:    fixedClock{t: at},
		loc:      time.UTC,
		journal:  j,
		notifier: n,
	}
	return svc, j, n
}

func baseRecord(mn string) Record {
	return Record{
		RecordULID:       "01TESTULID" + mn,
		ManagementNumber: mn,
		Name:             "オシロスコープ",
		InOutStatus:      StatusIn,
		InstrumentStatus: InstAvailable,
		OperationDate:    "2026-08-30",
	}
}

var testNow = time.Date(2026, 8, 31, 10, 30, 0, 0, time.UTC)

const (
	today     = "2026-08-31"
	yesterday = "2026-08-30"
	tomorrow  = "2026-09-01"
)

// ===== CheckOut =====

func TestCheckOut_StampsAndReactivates(t *testing.T) {
	rec := baseRecord("A-001")
	rec.HiddenToday = true
	rec.InboundAt = nullTime(testNow.Add(-24 * time.Hour))
	store := newFakeStore(rec)
	svc, j, n := newTestService(store, testNow)

	res, err := svc.CheckOut(context.Background(), "A-001", "alice")
	require.NoError(t, err)

	got := store.recs["A-001"]
	assert.Equal(t, StatusOut, got.InOutStatus)
	assert.True(t, got.InOutStatus.Valid())
	assert.Equal(t, "alice", got.Operator)
	assert.True(t, got.OutboundAt.Valid)
	assert.Equal(t, testNow, got.OutboundAt.Time)
	assert.False(t, got.InboundAt.Valid, "入庫時刻は持出でクリアされる")
	assert.Equal(t, today, got.OperationDate)
	assert.False(t, got.HiddenToday, "新しい操作で再び表示対象になる")

	assert.Equal(t, "alice", res.Record.OperatorDisplay)
	assert.Equal(t, notify.SeverityInfo, res.Message.Severity)
	assert.Equal(t, []string{"checkout"}, j.actions)
	assert.Len(t, n.msgs, 1)
}

func TestCheckOut_AlreadyOutIsAllowed(t *testing.T) {
	rec := baseRecord("A-001")
	rec.InOutStatus = StatusOut
	rec.Operator = "bob"
	rec.OutboundAt = nullTime(testNow.Add(-2 * time.Hour))
	store := newFakeStore(rec)
	svc, _, _ := newTestService(store, testNow)

	// 持出中の再持出は拒否せず、時刻と操作者を打ち直す
	_, err := svc.CheckOut(context.Background(), "A-001", "alice")
	require.NoError(t, err)

	got := store.recs["A-001"]
	assert.Equal(t, StatusOut, got.InOutStatus)
	assert.Equal(t, "alice", got.Operator)
	assert.Equal(t, testNow, got.OutboundAt.Time)
}

func TestCheckOut_NotFound(t *testing.T) {
	store := newFakeStore()
	svc, j, n := newTestService(store, testNow)

	_, err := svc.CheckOut(context.Background(), "NOPE", "alice")
	var api *APIError
	require.ErrorAs(t, err, &api)
	assert.Equal(t, CodeNotFound, api.Code)
	assert.Zero(t, store.updates)
	assert.Empty(t, j.actions)
	assert.Empty(t, n.msgs)
}

func TestCheckOut_RequiresOperator(t *testing.T) {
	store := newFakeStore(baseRecord("A-001"))
	svc, _, _ := newTestService(store, testNow)

	_, err := svc.CheckOut(context.Background(), "A-001", "")
	var api *APIError
	require.ErrorAs(t, err, &api)
	assert.Equal(t, CodeInvalidArgument, api.Code)
	assert.Zero(t, store.updates)
}

// ===== CheckIn / MarkUsed =====

func TestCheckIn_SetsOperatorWithoutBorrow(t *testing.T) {
	rec := baseRecord("A-001")
	rec.InOutStatus = StatusOut
	rec.Operator = "alice"
	store := newFakeStore(rec)
	svc, _, _ := newTestService(store, testNow)

	res, err := svc.CheckIn(context.Background(), "A-001", "carol")
	require.NoError(t, err)

	got := store.recs["A-001"]
	assert.Equal(t, StatusIn, got.InOutStatus)
	assert.Equal(t, "carol", got.Operator)
	assert.Equal(t, testNow, got.InboundAt.Time)
	assert.Equal(t, today, got.OperationDate)
	assert.Equal(t, "carol", res.Record.OperatorDisplay)
}

// シナリオD: 借用が残っている間は入庫しても帰属が変わらない
func TestBorrowAttribution_SurvivesCheckIn(t *testing.T) {
	store := newFakeStore(baseRecord("X"))
	svc, _, _ := newTestService(store, testNow)
	ctx := context.Background()

	_, err := svc.CheckOut(ctx, "X", "alice")
	require.NoError(t, err)
	_, err = svc.Borrow(ctx, "X", "bob")
	require.NoError(t, err)

	res, err := svc.CheckIn(ctx, "X", "carol")
	require.NoError(t, err)

	assert.Equal(t, "alice（借用：bob）", res.Record.OperatorDisplay)
	got := store.recs["X"]
	assert.Equal(t, "alice", got.Operator, "保存形式は構造化されたまま")
	assert.Equal(t, "bob", got.BorrowedBy.String)
}

func TestMarkUsed_SetsBothAxes(t *testing.T) {
	rec := baseRecord("A-001")
	rec.InOutStatus = StatusOut
	rec.Operator = "alice"
	store := newFakeStore(rec)
	svc, _, _ := newTestService(store, testNow)

	_, err := svc.MarkUsed(context.Background(), "A-001", "alice")
	require.NoError(t, err)

	got := store.recs["A-001"]
	assert.Equal(t, StatusUsingOut, got.InOutStatus)
	assert.Equal(t, InstUsed, got.InstrumentStatus)
	assert.Equal(t, testNow, got.UsedAt.Time)
	assert.Equal(t, today, got.OperationDate)
}

// ===== Borrow =====

func TestBorrow_RequiresOutStatus(t *testing.T) {
	for _, status := range []InOutStatus{StatusIn, StatusUsingOut} {
		rec := baseRecord("A-001")
		rec.InOutStatus = status
		store := newFakeStore(rec)
		svc, _, _ := newTestService(store, testNow)

		_, err := svc.Borrow(context.Background(), "A-001", "bob")
		var api *APIError
		require.ErrorAs(t, err, &api)
		assert.Equal(t, CodeInvalidState, api.Code)

		// 失敗した操作はレコードに一切触れない
		got := store.recs["A-001"]
		assert.Equal(t, rec, *got)
		assert.Zero(t, store.updates)
	}
}

func TestBorrow_OnOutRecord(t *testing.T) {
	rec := baseRecord("A-001")
	rec.InOutStatus = StatusOut
	rec.Operator = "alice"
	store := newFakeStore(rec)
	svc, _, _ := newTestService(store, testNow)

	res, err := svc.Borrow(context.Background(), "A-001", "bob")
	require.NoError(t, err)

	got := store.recs["A-001"]
	assert.Equal(t, "bob", got.BorrowedBy.String)
	assert.Equal(t, testNow, got.BorrowedAt.Time)
	assert.Equal(t, StatusOut, got.InOutStatus, "借用は入出ステータスを変えない")
	assert.Equal(t, "alice（借用：bob）", res.Record.OperatorDisplay)
}

// ===== Delay =====

func TestDelay_RejectsNonPositiveDays(t *testing.T) {
	store := newFakeStore(baseRecord("A-001"))
	svc, _, _ := newTestService(store, testNow)

	for _, days := range []int{0, -1, -10} {
		_, err := svc.Delay(context.Background(), "A-001", days, "alice")
		var api *APIError
		require.ErrorAs(t, err, &api)
		assert.Equal(t, CodeInvalidArgument, api.Code)
	}
	assert.Zero(t, store.updates)
}

func TestDelay_SetsWindow(t *testing.T) {
	store := newFakeStore(baseRecord("A-001"))
	svc, _, _ := newTestService(store, testNow)

	res, err := svc.Delay(context.Background(), "A-001", 5, "alice")
	require.NoError(t, err)

	got := store.recs["A-001"]
	assert.Equal(t, "2026-09-05", got.DisplayUntil.String)
	assert.Equal(t, "2026-09-05", got.ExpectedReturn.String)
	assert.Equal(t, int64(5), got.DelayDays.Int64)
	assert.Equal(t, "alice", got.DelayOperator.String)
	assert.Equal(t, testNow, got.DelayAt.Time)
	assert.Equal(t, today, got.OperationDate)
	require.NotNil(t, res.Record.DisplayUntil)
	assert.Equal(t, "2026-09-05", *res.Record.DisplayUntil)
}

// 延期は延長専用：あとから小さい日数を入れても短縮されない
func TestDelay_NeverShortensWindow(t *testing.T) {
	store := newFakeStore(baseRecord("A-001"))
	svc, _, _ := newTestService(store, testNow)
	ctx := context.Background()

	_, err := svc.Delay(ctx, "A-001", 5, "alice")
	require.NoError(t, err)
	_, err = svc.Delay(ctx, "A-001", 2, "alice")
	require.NoError(t, err)

	got := store.recs["A-001"]
	assert.Equal(t, "2026-09-05", got.DisplayUntil.String)
	assert.Equal(t, int64(2), got.DelayDays.Int64, "日数の入力自体は記録される")
}

// ===== ClearToday =====

func TestClearToday_OnlyTouchesVisibility(t *testing.T) {
	rec := baseRecord("A-001")
	rec.InOutStatus = StatusOut
	rec.Operator = "alice"
	rec.BorrowedBy = nullStr("bob")
	rec.DisplayUntil = nullStr(tomorrow)
	store := newFakeStore(rec)
	svc, _, _ := newTestService(store, testNow)

	// 借用・延期が残っていてもブロックされない
	_, err := svc.ClearToday(context.Background(), "A-001")
	require.NoError(t, err)

	got := store.recs["A-001"]
	assert.True(t, got.HiddenToday)
	assert.Equal(t, testNow, got.ClearedAt.Time)
	assert.Equal(t, StatusOut, got.InOutStatus)
	assert.Equal(t, "bob", got.BorrowedBy.String)
	assert.Equal(t, tomorrow, got.DisplayUntil.String)
	assert.Equal(t, yesterday, got.OperationDate, "clearはoperation_dateを更新しない")
}

// I1/I2/I3: どの操作のあとも入出ステータスは3値のどれかで、
// operation_dateは当日、hidden_todayはfalseに戻る
func TestTransitions_RefreshOperationDateAndVisibility(t *testing.T) {
	ops := map[string]func(svc *Service, ctx context.Context) error{
		"checkout": func(svc *Service, ctx context.Context) error {
			_, err := svc.CheckOut(ctx, "A-001", "alice")
			return err
		},
		"checkin": func(svc *Service, ctx context.Context) error {
			_, err := svc.CheckIn(ctx, "A-001", "alice")
			return err
		},
		"use": func(svc *Service, ctx context.Context) error {
			_, err := svc.MarkUsed(ctx, "A-001", "alice")
			return err
		},
		"borrow": func(svc *Service, ctx context.Context) error {
			_, err := svc.Borrow(ctx, "A-001", "bob")
			return err
		},
		"delay": func(svc *Service, ctx context.Context) error {
			_, err := svc.Delay(ctx, "A-001", 3, "alice")
			return err
		},
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			rec := baseRecord("A-001")
			rec.InOutStatus = StatusOut // borrowの前提を満たす状態から始める
			rec.HiddenToday = true
			store := newFakeStore(rec)
			svc, _, _ := newTestService(store, testNow)

			require.NoError(t, op(svc, context.Background()))

			got := store.recs["A-001"]
			assert.True(t, got.InOutStatus.Valid())
			assert.Equal(t, today, got.OperationDate)
			assert.False(t, got.HiddenToday)
		})
	}
}

// ===== ListOperational =====

func TestListOperational_FiltersAndSurfacesExactMatch(t *testing.T) {
	visible := baseRecord("A-001")
	visible.InOutStatus = StatusOut

	hidden := baseRecord("A-002")
	hidden.InOutStatus = StatusOut
	hidden.HiddenToday = true

	stopped := baseRecord("A-003")
	stopped.InOutStatus = StatusOut
	stopped.InstrumentStatus = InstStopped

	store := newFakeStore(visible, hidden, stopped)
	svc, _, _ := newTestService(store, testNow)
	ctx := context.Background()

	res, err := svc.ListOperational(ctx, "")
	require.NoError(t, err)
	require.Equal(t, 1, res.Total)
	assert.Equal(t, "A-001", res.Items[0].ManagementNumber)

	// 完全一致検索なら自動で隠れたものも出てくる
	res, err = svc.ListOperational(ctx, "A-002")
	require.NoError(t, err)
	require.Equal(t, 2, res.Total)
}

func TestJournalFailureDoesNotFailOperation(t *testing.T) {
	store := newFakeStore(baseRecord("A-001"))
	svc, _, _ := newTestService(store, testNow)
	svc.journal = failingJournal{}

	_, err := svc.CheckOut(context.Background(), "A-001", "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, store.updates)
}

type failingJournal struct{}

func (failingJournal) Append(context.Context, string, string, string, time.Time) error {
	return sql.ErrConnDone
}
