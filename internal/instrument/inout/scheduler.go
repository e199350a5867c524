package inout

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	"LITS-backend/internal/platform/notify"
)

// Scheduler は日付境界のリセットを唯一の場所で行う。
// 起動時に1回、以後は「次のローカル0時までの残り時間」を計って発火し、
// 発火のたびにタイマーを張り直す。スキャンは何度走っても安全
// （適用済みレコードには no-op）なので、時計のずれやサスペンド対策の
// 粗いポーリングを安全網として併用できる。
type Scheduler struct {
	store    RecordStore
	clock    Clock
	loc      *time.Location
	safety   time.Duration // 0なら安全網ポーリングなし
	notifier Notifier

	mu sync.Mutex // タイマー発火と手動実行の二重スキャンを直列化
}

func NewScheduler(dbc *sql.DB, loc *time.Location, safety time.Duration, notifier Notifier) *Scheduler {
	return &Scheduler{
		store:    NewStore(dbc),
		clock:    realClock{},
		loc:      loc,
		safety:   safety,
		notifier: notifier,
	}
}

// Run はctxが閉じるまでブロックする。goroutineで起動する想定
func (s *Scheduler) Run(ctx context.Context) {
	s.RunOnce(ctx)

	timer := time.NewTimer(untilNextBoundary(s.clock.Now(), s.loc))
	defer timer.Stop()

	var safetyCh <-chan time.Time
	if s.safety > 0 {
		ticker := time.NewTicker(s.safety)
		defer ticker.Stop()
		safetyCh = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			s.RunOnce(ctx)
			timer.Reset(untilNextBoundary(s.clock.Now(), s.loc))
		case <-safetyCh:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce は1回分のスキャンを実行し、変更したレコード数を返す。
// 呼び出し元にエラーは返さない方針（壊れた1件が残り全件を止めないよう、
// おかしなレコードはログに出してスキップする）
func (s *Scheduler) RunOnce(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := dayOf(s.clock.Now(), s.loc)

	recs, err := s.store.ListActive(ctx)
	if err != nil {
		log.Printf("[ERROR] scheduler: list failed: %v", err)
		return 0
	}

	changed, skipped := resetStale(recs, today)
	for _, msg := range skipped {
		log.Printf("[WARN] scheduler: %s", msg)
	}
	if len(changed) == 0 {
		return 0
	}

	if err := s.store.UpdateBatch(ctx, changed); err != nil {
		log.Printf("[ERROR] scheduler: batch update failed: %v", err)
		return 0
	}

	log.Printf("[INFO] scheduler: day-boundary reset applied to %d record(s) (today=%s)", len(changed), today)
	if s.notifier != nil {
		s.notifier.RecordsChanged(ctx, notify.Message{
			Text:     fmt.Sprintf("日次リセットを実行しました（%d件）", len(changed)),
			Severity: notify.SeverityInfo,
		})
	}
	return len(changed)
}

// resetStale は日次リセットの純スキャン。入力を変更せず、
// 書き戻すべきレコードのコピーと、スキップ理由を返す。
//
// 対象は hidden_today=false のレコードのうち、
//   - display_until が今日以降 → 延期ウィンドウ内なのでスキップ
//   - operation_date が今日   → まだ当日の操作なのでスキップ
//
// の両方に当てはまらない「昨日以前の残骸」。外部使用中で持出時刻と
// 使用時刻が揃っているものは在庫・使用可能へ戻した上で隠す。
// それ以外はフラグだけ立てる。
func resetStale(recs []Record, today string) (changed []Record, skipped []string) {
	for i := range recs {
		r := recs[i]

		if r.HiddenToday {
			continue
		}
		if !r.InOutStatus.Valid() {
			skipped = append(skipped, fmt.Sprintf("record %s: unknown in_out_status %q, skipped", r.ManagementNumber, r.InOutStatus))
			continue
		}
		if _, err := time.Parse(DateLayout, r.OperationDate); err != nil {
			skipped = append(skipped, fmt.Sprintf("record %s: bad operation_date %q, skipped", r.ManagementNumber, r.OperationDate))
			continue
		}

		if r.DisplayUntil.Valid && r.DisplayUntil.String >= today {
			continue
		}
		if r.OperationDate == today {
			continue
		}

		if r.InOutStatus == StatusUsingOut && r.OutboundAt.Valid && r.UsedAt.Valid {
			r.InOutStatus = StatusIn
			r.InstrumentStatus = InstAvailable
			r.BorrowedBy = sql.NullString{}
			r.BorrowedAt = sql.NullTime{}
			r.OperationDate = today
		}
		r.HiddenToday = true
		changed = append(changed, r)
	}
	return changed, skipped
}

// untilNextBoundary は次のローカル0時までの残り時間。
// サスペンド明けなどで既に過ぎていたら0を返して即発火させる
func untilNextBoundary(now time.Time, loc *time.Location) time.Duration {
	n := now.In(loc)
	next := time.Date(n.Year(), n.Month(), n.Day()+1, 0, 0, 0, 0, loc)
	d := next.Sub(n)
	if d < 0 {
		return 0
	}
	return d
}
