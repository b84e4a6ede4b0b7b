package parser

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
)

// Fold 大小写折叠，用于不区分大小写的比较与集合键
//
// cases.Caser 带内部状态，不能跨 goroutine 共享，这里每次新建。
func Fold(s string) string {
	return cases.Fold().String(s)
}

// EqualFold 不区分大小写比较（Unicode 折叠）
func EqualFold(a, b string) bool {
	return Fold(a) == Fold(b)
}

// HasPrefixFold 不区分大小写的前缀判断
func HasPrefixFold(s, prefix string) bool {
	return strings.HasPrefix(Fold(s), Fold(prefix))
}

// ColumnToIndex 列字母转 1 起始的列号（"A"=1, "AF"=32）
func ColumnToIndex(col string) (int, error) {
	col = strings.ToUpper(strings.TrimSpace(col))
	if col == "" {
		return 0, fmt.Errorf("empty column name")
	}
	sum := 0
	for _, c := range col {
		if c < 'A' || c > 'Z' {
			return 0, fmt.Errorf("invalid column name %q", col)
		}
		sum = sum*26 + int(c-'A'+1)
	}
	return sum, nil
}

// MustColumnToIndex 同 ColumnToIndex，非法列名直接 panic（仅用于常量列名）
func MustColumnToIndex(col string) int {
	idx, err := ColumnToIndex(col)
	if err != nil {
		panic(err)
	}
	return idx
}

// IndexToColumn 列号转列字母
func IndexToColumn(idx int) (string, error) {
	return excelize.ColumnNumberToName(idx)
}

// CellName 行列坐标转 A1 形式
func CellName(row, col int) (string, error) {
	return excelize.CoordinatesToCellName(col, row)
}

// NormalizeQuestionText 规范化问题文本：去除首尾空白，压缩换行
func NormalizeQuestionText(text string) string {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return text
}

// IsPerUnit 判断参考表 "Gründung" 字段是否为逐桩标记（Je Mast / Je Masttyp）
func IsPerUnit(value string) bool {
	v := strings.TrimSpace(value)
	if v == "" {
		return false
	}
	return EqualFold(v, "Je Mast") || HasPrefixFold(v, "Je Mast") || HasPrefixFold(v, "Je Masttyp")
}
