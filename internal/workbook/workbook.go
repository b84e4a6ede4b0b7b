// Package workbook 表格存储抽象：按行列读写单元格、查询已用区域、清除区域。
//
// 引擎只依赖这里的接口；ExcelBook 基于 excelize 读写 .xlsx，MemoryBook 用于测试与预览。
package workbook

import (
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ErrSheetMissing 工作表不存在（阻断性错误）
var ErrSheetMissing = errors.New("sheet not found")

// Range 1 起始的矩形区域（含边界）
type Range struct {
	FirstRow int `json:"firstRow"`
	FirstCol int `json:"firstCol"`
	LastRow  int `json:"lastRow"`
	LastCol  int `json:"lastCol"`
}

// Empty 区域是否为空
func (r Range) Empty() bool {
	return r.LastRow < r.FirstRow || r.LastCol < r.FirstCol || r.LastRow <= 0 || r.LastCol <= 0
}

// String A1 形式，如 "A7:AF12"
func (r Range) String() string {
	if r.Empty() {
		return ""
	}
	from, err := excelize.CoordinatesToCellName(r.FirstCol, r.FirstRow)
	if err != nil {
		return ""
	}
	to, err := excelize.CoordinatesToCellName(r.LastCol, r.LastRow)
	if err != nil {
		return ""
	}
	return from + ":" + to
}

// Sheet 单个工作表
type Sheet interface {
	Name() string
	Cell(row, col int) (string, error)
	SetCell(row, col int, value string) error
	UsedRange() (Range, error)
	ClearRange(r Range) error
}

// IntWriter 支持写入数值单元格的工作表
type IntWriter interface {
	SetInt(row, col int, value int) error
}

// Book 工作簿
type Book interface {
	// Sheet 按名称查找（不区分大小写），不存在时返回 ErrSheetMissing
	Sheet(name string) (Sheet, error)
	EnsureSheet(name string) (Sheet, error)
	SheetNames() []string
}

// Painter 支持单元格底色的工作簿
type Painter interface {
	Fill(sheet string, r Range, color string) error
	ClearFill(sheet string, r Range) error
}

// PieChart 饼图定义
type PieChart struct {
	Anchor       string // 左上角单元格，如 "A9"
	Title        string
	Categories   Range
	Values       Range
	Width        uint
	Height       uint
	ShowCategory bool
	ShowValue    bool
	ShowPercent  bool
}

// Charter 支持插入图表的工作簿
type Charter interface {
	AddPieChart(sheet string, chart PieChart) error
}

// Resetter 支持原地重建（清除内容与指定锚点图表）的工作簿
type Resetter interface {
	ResetSheet(name string, chartAnchors ...string) (Sheet, error)
}

// ColumnSizer 支持设置列宽的工作簿
type ColumnSizer interface {
	SetColWidth(sheet, startCol, endCol string, width float64) error
}

// FirstSheet 依次尝试多个名称，返回第一个存在的工作表
func FirstSheet(b Book, names ...string) (Sheet, error) {
	for _, name := range names {
		s, err := b.Sheet(name)
		if err == nil {
			return s, nil
		}
		if !errors.Is(err, ErrSheetMissing) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrSheetMissing, names)
}

// ResetSheet 清空工作表；工作簿支持 Resetter 时一并删除 chartAnchors 处的图表
func ResetSheet(b Book, name string, chartAnchors ...string) (Sheet, error) {
	if r, ok := b.(Resetter); ok {
		return r.ResetSheet(name, chartAnchors...)
	}
	s, err := b.EnsureSheet(name)
	if err != nil {
		return nil, err
	}
	used, err := s.UsedRange()
	if err != nil {
		return nil, err
	}
	if !used.Empty() {
		if err := s.ClearRange(used); err != nil {
			return nil, err
		}
	}
	return s, nil
}
