package rules

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/KKoehn92/Master-Document-Tool/internal/model"
)

// CellWriter 只写单元格访问
type CellWriter interface {
	SetCell(row, col int, value string) error
}

// HeaderWrite 一次表头写入
type HeaderWrite struct {
	Cell  string `json:"cell"`
	Row   int    `json:"row"`
	Col   int    `json:"col"`
	Value string `json:"value"`
}

// HeaderValues 计算表头写入；条件不成立且没有 otherwise 的单元格保持不变
func (rs *RuleSet) HeaderValues(answers model.AnswerMap) []HeaderWrite {
	out := make([]HeaderWrite, 0, len(rs.Header))
	for _, h := range rs.Header {
		var value string
		switch {
		case h.When.Holds(answers):
			value = answers.Get(h.Answer)
		case h.Otherwise != nil:
			value = *h.Otherwise
		default:
			continue
		}
		col, row, err := splitCell(h.Cell)
		if err != nil {
			continue
		}
		out = append(out, HeaderWrite{Cell: h.Cell, Row: row, Col: col, Value: value})
	}
	return out
}

// ApplyHeader 写入目标表表头
func (rs *RuleSet) ApplyHeader(sheet CellWriter, answers model.AnswerMap) ([]HeaderWrite, error) {
	writes := rs.HeaderValues(answers)
	for _, w := range writes {
		if err := sheet.SetCell(w.Row, w.Col, w.Value); err != nil {
			return nil, fmt.Errorf("write header %s: %w", w.Cell, err)
		}
	}
	return writes, nil
}

func splitCell(cell string) (col, row int, err error) {
	col, row, err = excelize.CellNameToCoordinates(cell)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid cell %q: %w", cell, err)
	}
	return col, row, nil
}
