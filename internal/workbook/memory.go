package workbook

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/KKoehn92/Master-Document-Tool/internal/parser"
)

type cellRef struct {
	row, col int
}

// MemoryBook 内存工作簿，用于测试与无文件预览
type MemoryBook struct {
	mu     sync.Mutex
	order  []string
	sheets map[string]*MemorySheet
	charts map[string][]PieChart
}

// NewMemoryBook 创建内存工作簿
func NewMemoryBook(names ...string) *MemoryBook {
	b := &MemoryBook{sheets: map[string]*MemorySheet{}, charts: map[string][]PieChart{}}
	for _, n := range names {
		b.addSheet(n)
	}
	return b
}

func (b *MemoryBook) addSheet(name string) *MemorySheet {
	s := &MemorySheet{name: name, cells: map[cellRef]string{}, fills: map[cellRef]string{}}
	b.order = append(b.order, name)
	b.sheets[parser.Fold(name)] = s
	return s
}

// SheetNames 工作表名列表（创建顺序）
func (b *MemoryBook) SheetNames() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.order...)
}

// Sheet 按名称查找工作表（不区分大小写）
func (b *MemoryBook) Sheet(name string) (Sheet, error) {
	s, err := b.MemorySheet(name)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// MemorySheet 返回具体类型，便于测试断言底色
func (b *MemoryBook) MemorySheet(name string) (*MemorySheet, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sheets[parser.Fold(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSheetMissing, name)
	}
	return s, nil
}

// EnsureSheet 不存在时新建
func (b *MemoryBook) EnsureSheet(name string) (Sheet, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s, ok := b.sheets[parser.Fold(name)]; ok {
		return s, nil
	}
	return b.addSheet(name), nil
}

// ResetSheet 清空内容并删除锚点处的图表，底色保留
func (b *MemoryBook) ResetSheet(name string, chartAnchors ...string) (Sheet, error) {
	s, err := b.EnsureSheet(name)
	if err != nil {
		return nil, err
	}
	ms := s.(*MemorySheet)
	ms.mu.Lock()
	ms.cells = map[cellRef]string{}
	ms.mu.Unlock()

	b.mu.Lock()
	defer b.mu.Unlock()
	key := parser.Fold(name)
	kept := b.charts[key][:0]
	for _, c := range b.charts[key] {
		if !slices.ContainsFunc(chartAnchors, func(a string) bool { return parser.EqualFold(a, c.Anchor) }) {
			kept = append(kept, c)
		}
	}
	b.charts[key] = kept
	return s, nil
}

// Fill 记录底色
func (b *MemoryBook) Fill(sheet string, r Range, color string) error {
	s, err := b.MemorySheet(sheet)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for row := r.FirstRow; row <= r.LastRow; row++ {
		for col := r.FirstCol; col <= r.LastCol; col++ {
			s.fills[cellRef{row, col}] = strings.ToUpper(color)
		}
	}
	return nil
}

// ClearFill 清除底色
func (b *MemoryBook) ClearFill(sheet string, r Range) error {
	s, err := b.MemorySheet(sheet)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for row := r.FirstRow; row <= r.LastRow; row++ {
		for col := r.FirstCol; col <= r.LastCol; col++ {
			delete(s.fills, cellRef{row, col})
		}
	}
	return nil
}

// AddPieChart 记录图表定义
func (b *MemoryBook) AddPieChart(sheet string, chart PieChart) error {
	if _, err := b.MemorySheet(sheet); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	key := parser.Fold(sheet)
	b.charts[key] = append(b.charts[key], chart)
	return nil
}

// Charts 已插入的图表
func (b *MemoryBook) Charts(sheet string) []PieChart {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]PieChart(nil), b.charts[parser.Fold(sheet)]...)
}

// MemorySheet 内存工作表
type MemorySheet struct {
	mu    sync.Mutex
	name  string
	cells map[cellRef]string
	fills map[cellRef]string
}

func (s *MemorySheet) Name() string {
	return s.name
}

func (s *MemorySheet) Cell(row, col int) (string, error) {
	if row < 1 || col < 1 {
		return "", fmt.Errorf("invalid cell coordinates %d,%d", row, col)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cells[cellRef{row, col}], nil
}

func (s *MemorySheet) SetCell(row, col int, value string) error {
	if row < 1 || col < 1 {
		return fmt.Errorf("invalid cell coordinates %d,%d", row, col)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if value == "" {
		delete(s.cells, cellRef{row, col})
		return nil
	}
	s.cells[cellRef{row, col}] = value
	return nil
}

func (s *MemorySheet) SetInt(row, col int, value int) error {
	return s.SetCell(row, col, strconv.Itoa(value))
}

// Set 按 A1 地址写入，测试用
func (s *MemorySheet) Set(cell, value string) {
	col, row, err := splitCellName(cell)
	if err != nil {
		panic(err)
	}
	_ = s.SetCell(row, col, value)
}

// Get 按 A1 地址读取，测试用
func (s *MemorySheet) Get(cell string) string {
	col, row, err := splitCellName(cell)
	if err != nil {
		panic(err)
	}
	v, _ := s.Cell(row, col)
	return v
}

// FillAt 单元格底色（无底色时为空）
func (s *MemorySheet) FillAt(row, col int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fills[cellRef{row, col}]
}

func (s *MemorySheet) UsedRange() (Range, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	used := Range{}
	for ref, v := range s.cells {
		if strings.TrimSpace(v) == "" {
			continue
		}
		if used.FirstRow == 0 || ref.row < used.FirstRow {
			used.FirstRow = ref.row
		}
		if used.FirstCol == 0 || ref.col < used.FirstCol {
			used.FirstCol = ref.col
		}
		used.LastRow = max(used.LastRow, ref.row)
		used.LastCol = max(used.LastCol, ref.col)
	}
	return used, nil
}

func (s *MemorySheet) ClearRange(r Range) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ref := range s.cells {
		if ref.row >= r.FirstRow && ref.row <= r.LastRow && ref.col >= r.FirstCol && ref.col <= r.LastCol {
			delete(s.cells, ref)
		}
	}
	return nil
}

func splitCellName(cell string) (col, row int, err error) {
	return excelize.CellNameToCoordinates(cell)
}
