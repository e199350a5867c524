package inout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsOperationallyVisible(t *testing.T) {
	mk := func(mutate func(r *Record)) *Record {
		r := baseRecord("A-001")
		r.Serial = nullStr("SN-42")
		mutate(&r)
		return &r
	}

	tests := []struct {
		name string
		rec  *Record
		term string
		want bool
	}{
		{
			name: "持出中は表示",
			rec:  mk(func(r *Record) { r.InOutStatus = StatusOut }),
			want: true,
		},
		{
			name: "外部使用中は表示",
			rec:  mk(func(r *Record) { r.InOutStatus = StatusUsingOut }),
			want: true,
		},
		{
			name: "在庫でも今日操作があれば表示",
			rec:  mk(func(r *Record) { r.OperationDate = today }),
			want: true,
		},
		{
			name: "在庫で操作が昨日なら非表示",
			rec:  mk(func(r *Record) { r.OperationDate = yesterday }),
			want: false,
		},
		{
			name: "hidden_todayは非表示",
			rec: mk(func(r *Record) {
				r.InOutStatus = StatusOut
				r.HiddenToday = true
			}),
			want: false,
		},
		{
			name: "hiddenでも管理番号完全一致なら表示",
			rec: mk(func(r *Record) {
				r.InOutStatus = StatusOut
				r.HiddenToday = true
			}),
			term: "A-001",
			want: true,
		},
		{
			name: "hiddenでもシリアル完全一致なら表示",
			rec: mk(func(r *Record) {
				r.InOutStatus = StatusOut
				r.HiddenToday = true
			}),
			term: "SN-42",
			want: true,
		},
		{
			name: "部分一致では隠れたまま",
			rec: mk(func(r *Record) {
				r.InOutStatus = StatusOut
				r.HiddenToday = true
			}),
			term: "A-00",
			want: false,
		},
		{
			name: "usedは検索一致でも常に除外",
			rec: mk(func(r *Record) {
				r.InOutStatus = StatusUsingOut
				r.InstrumentStatus = InstUsed
			}),
			term: "A-001",
			want: false,
		},
		{
			name: "stoppedは常に除外",
			rec: mk(func(r *Record) {
				r.InOutStatus = StatusOut
				r.InstrumentStatus = InstStopped
			}),
			want: false,
		},
		{
			name: "maintenanceは状態ルールに従う",
			rec: mk(func(r *Record) {
				r.InOutStatus = StatusOut
				r.InstrumentStatus = InstMaintenance
			}),
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isOperationallyVisible(tt.rec, today, tt.term))
		})
	}
}
