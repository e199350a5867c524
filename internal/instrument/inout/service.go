package inout

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"LITS-backend/internal/platform/notify"
)

// ===== インターフェース群 =====

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// RecordStore は単一キーの read-modify-write だけを前提にする。
// 楽観ロック等はなし（last-write-wins）。
type RecordStore interface {
	GetByManagementNumber(ctx context.Context, mn string) (*Record, error)
	Update(ctx context.Context, r *Record) error
	ListAll(ctx context.Context) ([]Record, error)
	ListActive(ctx context.Context) ([]Record, error)
	UpdateBatch(ctx context.Context, recs []Record) error
}

// Journal は操作履歴への追記。履歴が書けなくても操作自体は成立させる
type Journal interface {
	Append(ctx context.Context, managementNumber, action, operator string, at time.Time) error
}

type Notifier interface {
	RecordsChanged(ctx context.Context, m notify.Message)
}

// ===== Service本体（遷移エンジン） =====
//
// 6種類の操作（持出・入庫・外部使用・借用・延期・本日非表示）を
// 1レコード単位で適用する。検証はフィールドを書く前に済ませ、
// 失敗時はレコードに一切触れない。

type Service struct {
	store    RecordStore
	clock    Clock
	loc      *time.Location
	journal  Journal
	notifier Notifier
}

func NewService(dbc *sql.DB, loc *time.Location, journal Journal, notifier Notifier) *Service {
	return &Service{
		store:    NewStore(dbc),
		clock:    realClock{},
		loc:      loc,
		journal:  journal,
		notifier: notifier,
	}
}

func (s *Service) resolve(ctx context.Context, mn string) (*Record, error) {
	if mn == "" {
		return nil, ErrInvalid("management_number is required")
	}
	rec, err := s.store.GetByManagementNumber(ctx, mn)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// 持出。前回の状態は問わない（持出中の再持出は時刻の打ち直しとして許容）
func (s *Service) CheckOut(ctx context.Context, mn, actor string) (ActionResponse, error) {
	if actor == "" {
		return ActionResponse{}, ErrInvalid("operator is required")
	}
	rec, err := s.resolve(ctx, mn)
	if err != nil {
		return ActionResponse{}, err
	}

	now := s.clock.Now()
	rec.InOutStatus = StatusOut
	rec.Operator = actor
	rec.OutboundAt = nullTime(now)
	rec.InboundAt = sql.NullTime{}
	rec.OperationDate = dayOf(now, s.loc)
	rec.HiddenToday = false

	return s.commit(ctx, rec, "checkout", actor, now, "持出を登録しました")
}

// 入庫。借用が残っている間は操作者の帰属を借用表示のまま保つ
func (s *Service) CheckIn(ctx context.Context, mn, actor string) (ActionResponse, error) {
	if actor == "" {
		return ActionResponse{}, ErrInvalid("operator is required")
	}
	rec, err := s.resolve(ctx, mn)
	if err != nil {
		return ActionResponse{}, err
	}

	now := s.clock.Now()
	rec.InOutStatus = StatusIn
	rec.InboundAt = nullTime(now)
	rec.OperationDate = dayOf(now, s.loc)
	rec.HiddenToday = false
	if !rec.BorrowedBy.Valid {
		rec.Operator = actor
	}

	return s.commit(ctx, rec, "checkin", actor, now, "入庫を登録しました")
}

// 外部使用。操作者の帰属ルールは入庫と同じ
func (s *Service) MarkUsed(ctx context.Context, mn, actor string) (ActionResponse, error) {
	if actor == "" {
		return ActionResponse{}, ErrInvalid("operator is required")
	}
	rec, err := s.resolve(ctx, mn)
	if err != nil {
		return ActionResponse{}, err
	}

	now := s.clock.Now()
	rec.InstrumentStatus = InstUsed
	rec.InOutStatus = StatusUsingOut
	rec.UsedAt = nullTime(now)
	rec.OperationDate = dayOf(now, s.loc)
	rec.HiddenToday = false
	if !rec.BorrowedBy.Valid {
		rec.Operator = actor
	}

	return s.commit(ctx, rec, "use", actor, now, "外部使用を登録しました")
}

// 借用。持出中のレコードにしか付けられない
func (s *Service) Borrow(ctx context.Context, mn, borrower string) (ActionResponse, error) {
	if borrower == "" {
		return ActionResponse{}, ErrInvalid("borrower is required")
	}
	rec, err := s.resolve(ctx, mn)
	if err != nil {
		return ActionResponse{}, err
	}
	if rec.InOutStatus != StatusOut {
		return ActionResponse{}, ErrInvalidState(
			fmt.Sprintf("cannot borrow: in_out_status is %q, must be %q", rec.InOutStatus, StatusOut))
	}

	now := s.clock.Now()
	rec.BorrowedBy = nullStr(borrower)
	rec.BorrowedAt = nullTime(now)
	rec.OperationDate = dayOf(now, s.loc)
	rec.HiddenToday = false

	return s.commit(ctx, rec, "borrow", borrower, now, "借用を登録しました")
}

// 延期。display_until = max(既存, today+days)。短縮はしない（延期は延長専用）
func (s *Service) Delay(ctx context.Context, mn string, days int, actor string) (ActionResponse, error) {
	if days <= 0 {
		return ActionResponse{}, ErrInvalid("days must be a positive integer")
	}
	if actor == "" {
		return ActionResponse{}, ErrInvalid("operator is required")
	}
	rec, err := s.resolve(ctx, mn)
	if err != nil {
		return ActionResponse{}, err
	}

	now := s.clock.Now()
	today := dayOf(now, s.loc)
	until, err := addDays(today, days, s.loc)
	if err != nil {
		return ActionResponse{}, ErrInternal("failed to compute display window: " + err.Error())
	}
	if rec.DisplayUntil.Valid && rec.DisplayUntil.String > until {
		until = rec.DisplayUntil.String
	}

	rec.DelayDays = sql.NullInt64{Int64: int64(days), Valid: true}
	rec.ExpectedReturn = nullStr(until)
	rec.DisplayUntil = nullStr(until)
	rec.DelayOperator = nullStr(actor)
	rec.DelayAt = nullTime(now)
	rec.OperationDate = today
	rec.HiddenToday = false

	return s.commit(ctx, rec, "delay", actor, now, fmt.Sprintf("%d日間の延期を登録しました", days))
}

// 本日の入出画面から隠す。可視性フラグだけで、機器は消えない。
// 借用・延期が残っていてもブロックしない
func (s *Service) ClearToday(ctx context.Context, mn string) (ActionResponse, error) {
	rec, err := s.resolve(ctx, mn)
	if err != nil {
		return ActionResponse{}, err
	}

	now := s.clock.Now()
	rec.HiddenToday = true
	rec.ClearedAt = nullTime(now)

	return s.commit(ctx, rec, "clear", rec.Operator, now, "本日の表示から除外しました")
}

func (s *Service) commit(ctx context.Context, rec *Record, action, operator string, at time.Time, text string) (ActionResponse, error) {
	if err := s.store.Update(ctx, rec); err != nil {
		return ActionResponse{}, err
	}
	if s.journal != nil {
		if err := s.journal.Append(ctx, rec.ManagementNumber, action, operator, at); err != nil {
			log.Printf("[WARN] inout: journal append failed (%s %s): %v", action, rec.ManagementNumber, err)
		}
	}
	msg := notify.Message{Text: text, Severity: notify.SeverityInfo}
	if s.notifier != nil {
		s.notifier.RecordsChanged(ctx, msg)
	}
	return ActionResponse{Record: toResponse(rec), Message: msg}, nil
}

// ===== 読み取り =====

// ListOperational は入出画面用の一覧。qが指定されていれば
// 管理番号・シリアル完全一致のレコードは非表示フラグを無視して出す
func (s *Service) ListOperational(ctx context.Context, q string) (ListResponse, error) {
	recs, err := s.store.ListAll(ctx)
	if err != nil {
		return ListResponse{}, err
	}
	today := dayOf(s.clock.Now(), s.loc)

	items := make([]RecordResponse, 0, len(recs))
	for i := range recs {
		if !isOperationallyVisible(&recs[i], today, q) {
			continue
		}
		items = append(items, toResponse(&recs[i]))
	}
	return ListResponse{Items: items, Total: len(items)}, nil
}

// GetByManagementNumber は個別取得（QRスキャン用）
func (s *Service) GetByManagementNumber(ctx context.Context, mn string) (RecordResponse, error) {
	rec, err := s.resolve(ctx, mn)
	if err != nil {
		return RecordResponse{}, err
	}
	return toResponse(rec), nil
}
