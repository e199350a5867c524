package labels

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"
)

func TestBuildCSVcp932(t *testing.T) {
	rows := []Row{
		{ManagementNumber: "A-001", Name: "オシロスコープ", Serial: "SN-1", Location: "実験室1"},
		{ManagementNumber: "B-002", Name: "テスター", Serial: "", Location: ""},
	}

	got, err := BuildCSVcp932(rows)
	require.NoError(t, err)

	// cp932のまま比較すると読めないのでUTF-8へ戻して中身を確認する
	decoded, err := japanese.ShiftJIS.NewDecoder().Bytes(got)
	require.NoError(t, err)

	assert.Equal(t, "A-001,オシロスコープ,SN-1,実験室1\nB-002,テスター,,\n", string(decoded))

	// 生バイトはASCII範囲外を含む（=実際にエンコードされている）
	hasNonASCII := false
	for _, b := range got {
		if b >= 0x80 {
			hasNonASCII = true
			break
		}
	}
	assert.True(t, hasNonASCII)
}

func TestBuildCSVcp932_Empty(t *testing.T) {
	got, err := BuildCSVcp932(nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
