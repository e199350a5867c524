// records-changed 通知。
// 遷移エンジンと日次リセットの後に「再取得してね」をUI側へ知らせるためのもの。
// Redis未設定の環境でも動くよう、nil レシーバは no-op にしてある。
package notify

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Message はUIに表示するための文言。エンジン内部でのリトライはしない
type Message struct {
	Text     string   `json:"text"`
	Severity Severity `json:"severity"`
}

type Event struct {
	Kind       string    `json:"kind"` // "records_changed"
	Message    Message   `json:"message"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Publisher struct {
	rdb     *redis.Client
	channel string
}

func NewPublisher(addr, password string, db int, channel string) *Publisher {
	if addr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Publisher{rdb: rdb, channel: channel}
}

// RecordsChanged はベストエフォート。配信失敗でレコード更新は巻き戻さない
func (p *Publisher) RecordsChanged(ctx context.Context, m Message) {
	if p == nil {
		return
	}
	ev := Event{
		Kind:       "records_changed",
		Message:    m,
		OccurredAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Printf("[WARN] notify: marshal failed: %v", err)
		return
	}
	if err := p.rdb.Publish(ctx, p.channel, payload).Err(); err != nil {
		log.Printf("[WARN] notify: publish failed: %v", err)
	}
}

func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.rdb.Close()
}
