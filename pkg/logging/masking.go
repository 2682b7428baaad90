// Package logging はログ関連のユーティリティを提供する。
package logging

// MaskStudentID は学籍ID（SFU ID）をマスキングする。
// 先頭3桁 + マスク + 末尾1桁
// 例: 301234567 → 301*****7
// enabled=false の場合はマスキングせずにそのまま返す。
func MaskStudentID(id string, enabled bool) string {
	if !enabled {
		return id
	}
	return MaskPartial(id, 3, 1, '*')
}

// MaskPartial は文字列の一部をマスキングする。
// keepPrefix: 先頭から保持する文字数
// keepSuffix: 末尾から保持する文字数
// maskChar: マスキングに使用する文字
func MaskPartial(s string, keepPrefix, keepSuffix int, maskChar rune) string {
	runes := []rune(s)
	length := len(runes)

	// 短すぎる場合はそのまま返す
	if length <= keepPrefix+keepSuffix {
		return s
	}

	result := make([]rune, length)
	copy(result, runes[:keepPrefix])
	for i := keepPrefix; i < length-keepSuffix; i++ {
		result[i] = maskChar
	}
	copy(result[length-keepSuffix:], runes[length-keepSuffix:])

	return string(result)
}

// Masker はマスキング設定を保持する構造体。
type Masker struct {
	enabled bool
}

// NewMasker は新しいMaskerを生成する。
func NewMasker(enabled bool) *Masker {
	return &Masker{enabled: enabled}
}

// StudentID は学籍IDをマスキングする。
func (m *Masker) StudentID(id string) string {
	return MaskStudentID(id, m.enabled)
}

// IsEnabled はマスキングが有効かどうかを返す。
func (m *Masker) IsEnabled() bool {
	return m.enabled
}
