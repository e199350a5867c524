// 備品管理ラベル用のCSV生成。
// TEPRAのラベルエディタ(SPC10)が読む cp932 のCSVを吐くだけで、
// 印刷の実行はクライアント側のユーティリティに任せる。
package labels

import (
	"bytes"
	"encoding/csv"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// ラベル1枚分。列の並びはSPC10テンプレート側の差し込み順に合わせてある
type Row struct {
	ManagementNumber string
	Name             string
	Serial           string
	Location         string
}

// BuildCSVcp932 はラベル行を cp932（Windowsの「ANSI」相当）のCSVにする
func BuildCSVcp932(rows []Row) ([]byte, error) {
	var b bytes.Buffer
	enc := japanese.ShiftJIS.NewEncoder()
	w := csv.NewWriter(transform.NewWriter(&b, enc))

	for _, r := range rows {
		record := []string{r.ManagementNumber, r.Name, r.Serial, r.Location}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}
