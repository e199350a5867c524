package inout

// isOperationallyVisible は入出画面にレコードを出すかどうかの純関数。
// 台帳画面（全件表示）はこの判定を使わない。
//
//   - hidden_today のレコードは出さない。ただし検索語が管理番号か
//     シリアルに完全一致する場合だけは出す（自動で隠れたものを
//     明示的に探せるようにするため）
//   - instrument_status が used / stopped は常に出さない
//   - 残りは、持出中・外部使用中なら出す。在庫なら「今日何か操作が
//     あった」ものだけ出す
func isOperationallyVisible(r *Record, today, searchTerm string) bool {
	if r.HiddenToday && !exactMatch(r, searchTerm) {
		return false
	}
	if r.InstrumentStatus == InstUsed || r.InstrumentStatus == InstStopped {
		return false
	}
	switch r.InOutStatus {
	case StatusOut, StatusUsingOut:
		return true
	case StatusIn:
		return r.OperationDate == today
	}
	return false
}

func exactMatch(r *Record, term string) bool {
	if term == "" {
		return false
	}
	if term == r.ManagementNumber {
		return true
	}
	return r.Serial.Valid && term == r.Serial.String
}
