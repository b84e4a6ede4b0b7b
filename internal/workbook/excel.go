package workbook

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/KKoehn92/Master-Document-Tool/internal/parser"
)

// ExcelBook 基于 excelize 的工作簿
type ExcelBook struct {
	file *excelize.File
	path string
}

// OpenExcelBook 打开 .xlsx/.xlsm 文件
func OpenExcelBook(path string) (*ExcelBook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	return &ExcelBook{file: f, path: path}, nil
}

// NewExcelBook 新建空工作簿（仅含 Sheet1）
func NewExcelBook() *ExcelBook {
	return &ExcelBook{file: excelize.NewFile()}
}

// File 返回底层 excelize 文件
func (b *ExcelBook) File() *excelize.File {
	return b.file
}

// Path 工作簿路径（新建时为空）
func (b *ExcelBook) Path() string {
	return b.path
}

// Save 保存回原路径
func (b *ExcelBook) Save() error {
	if b.path == "" {
		return fmt.Errorf("workbook has no path")
	}
	return b.file.SaveAs(b.path)
}

// SaveAs 另存为
func (b *ExcelBook) SaveAs(path string) error {
	if err := b.file.SaveAs(path); err != nil {
		return err
	}
	b.path = path
	return nil
}

// Close 关闭文件
func (b *ExcelBook) Close() error {
	return b.file.Close()
}

// SheetNames 工作表名列表
func (b *ExcelBook) SheetNames() []string {
	return b.file.GetSheetList()
}

func (b *ExcelBook) resolveName(name string) (string, bool) {
	for _, s := range b.file.GetSheetList() {
		if parser.EqualFold(s, name) {
			return s, true
		}
	}
	return "", false
}

// Sheet 按名称查找工作表（不区分大小写）
func (b *ExcelBook) Sheet(name string) (Sheet, error) {
	actual, ok := b.resolveName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSheetMissing, name)
	}
	return &excelSheet{file: b.file, name: actual}, nil
}

// EnsureSheet 不存在时在末尾新建
func (b *ExcelBook) EnsureSheet(name string) (Sheet, error) {
	if s, err := b.Sheet(name); err == nil {
		return s, nil
	}
	if _, err := b.file.NewSheet(name); err != nil {
		return nil, fmt.Errorf("failed to create sheet %s: %w", name, err)
	}
	return &excelSheet{file: b.file, name: name}, nil
}

// ResetSheet 原地清空工作表内容并删除指定锚点的图表
//
// 工作表位置、列宽与单元格样式保持不变；绘图部件被复用，不会随重建累积。
func (b *ExcelBook) ResetSheet(name string, chartAnchors ...string) (Sheet, error) {
	actual, ok := b.resolveName(name)
	if !ok {
		return b.EnsureSheet(name)
	}
	for _, anchor := range chartAnchors {
		if err := b.file.DeleteChart(actual, anchor); err != nil {
			return nil, fmt.Errorf("failed to delete chart at %s: %w", anchor, err)
		}
	}
	s := &excelSheet{file: b.file, name: actual}
	used, err := s.UsedRange()
	if err != nil {
		return nil, err
	}
	if err := s.ClearRange(used); err != nil {
		return nil, err
	}
	return s, nil
}

// SetColWidth 设置列宽
func (b *ExcelBook) SetColWidth(sheet, startCol, endCol string, width float64) error {
	actual, ok := b.resolveName(sheet)
	if !ok {
		return fmt.Errorf("%w: %s", ErrSheetMissing, sheet)
	}
	return b.file.SetColWidth(actual, startCol, endCol, width)
}

// Fill 设置实心底色，保留单元格其他样式
func (b *ExcelBook) Fill(sheet string, r Range, color string) error {
	return b.updateFill(sheet, r, excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1})
}

// ClearFill 去除底色，保留单元格其他样式
func (b *ExcelBook) ClearFill(sheet string, r Range) error {
	return b.updateFill(sheet, r, excelize.Fill{})
}

func (b *ExcelBook) updateFill(sheet string, r Range, fill excelize.Fill) error {
	actual, ok := b.resolveName(sheet)
	if !ok {
		return fmt.Errorf("%w: %s", ErrSheetMissing, sheet)
	}
	if r.Empty() {
		return nil
	}
	styles := map[int]int{}
	for row := r.FirstRow; row <= r.LastRow; row++ {
		for col := r.FirstCol; col <= r.LastCol; col++ {
			cell, err := excelize.CoordinatesToCellName(col, row)
			if err != nil {
				return err
			}
			current, err := b.file.GetCellStyle(actual, cell)
			if err != nil {
				return err
			}
			next, ok := styles[current]
			if !ok {
				base, err := b.file.GetStyle(current)
				if err != nil {
					return err
				}
				style := *base
				style.Fill = fill
				next, err = b.file.NewStyle(&style)
				if err != nil {
					return err
				}
				styles[current] = next
			}
			if err := b.file.SetCellStyle(actual, cell, cell, next); err != nil {
				return err
			}
		}
	}
	return nil
}

// AddPieChart 插入饼图
func (b *ExcelBook) AddPieChart(sheet string, chart PieChart) error {
	actual, ok := b.resolveName(sheet)
	if !ok {
		return fmt.Errorf("%w: %s", ErrSheetMissing, sheet)
	}
	ref := func(r Range) string {
		return fmt.Sprintf("'%s'!%s", actual, absoluteRange(r))
	}
	return b.file.AddChart(actual, chart.Anchor, &excelize.Chart{
		Type: excelize.Pie,
		Series: []excelize.ChartSeries{{
			Categories: ref(chart.Categories),
			Values:     ref(chart.Values),
		}},
		Title:     []excelize.RichTextRun{{Text: chart.Title}},
		Dimension: excelize.ChartDimension{Width: chart.Width, Height: chart.Height},
		Legend:    excelize.ChartLegend{Position: "right"},
		PlotArea: excelize.ChartPlotArea{
			ShowCatName: chart.ShowCategory,
			ShowVal:     chart.ShowValue,
			ShowPercent: chart.ShowPercent,
		},
	})
}

func absoluteRange(r Range) string {
	from, _ := excelize.CoordinatesToCellName(r.FirstCol, r.FirstRow, true)
	to, _ := excelize.CoordinatesToCellName(r.LastCol, r.LastRow, true)
	return from + ":" + to
}

// excelSheet excelize 工作表
type excelSheet struct {
	file *excelize.File
	name string
}

func (s *excelSheet) Name() string {
	return s.name
}

// Cell 读取原始值（不套用数字格式，日期为序列号）
func (s *excelSheet) Cell(row, col int) (string, error) {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "", err
	}
	return s.file.GetCellValue(s.name, cell, excelize.Options{RawCellValue: true})
}

func (s *excelSheet) SetCell(row, col int, value string) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return s.file.SetCellValue(s.name, cell, value)
}

// SetInt 写入数值
func (s *excelSheet) SetInt(row, col int, value int) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return s.file.SetCellValue(s.name, cell, value)
}

// UsedRange 由实际有值的单元格推算已用区域
func (s *excelSheet) UsedRange() (Range, error) {
	rows, err := s.file.GetRows(s.name, excelize.Options{RawCellValue: true})
	if err != nil {
		return Range{}, err
	}
	used := Range{}
	for i, row := range rows {
		for j, v := range row {
			if strings.TrimSpace(v) == "" {
				continue
			}
			r, c := i+1, j+1
			if used.FirstRow == 0 || r < used.FirstRow {
				used.FirstRow = r
			}
			if used.FirstCol == 0 || c < used.FirstCol {
				used.FirstCol = c
			}
			used.LastRow = max(used.LastRow, r)
			used.LastCol = max(used.LastCol, c)
		}
	}
	return used, nil
}

// ClearRange 清除区域内的值与公式
func (s *excelSheet) ClearRange(r Range) error {
	if r.Empty() {
		return nil
	}
	for row := r.FirstRow; row <= r.LastRow; row++ {
		for col := r.FirstCol; col <= r.LastCol; col++ {
			cell, err := excelize.CoordinatesToCellName(col, row)
			if err != nil {
				return err
			}
			if err := s.file.SetCellValue(s.name, cell, ""); err != nil {
				return err
			}
			if err := s.file.SetCellFormula(s.name, cell, ""); err != nil {
				return err
			}
		}
	}
	return nil
}
