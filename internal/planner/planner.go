// Package planner 目标表去重与追加计划
package planner

import (
	"fmt"
	"strings"

	"github.com/KKoehn92/Master-Document-Tool/internal/model"
	"github.com/KKoehn92/Master-Document-Tool/internal/parser"
	"github.com/KKoehn92/Master-Document-Tool/internal/workbook"
)

// Layout 目标表布局
type Layout struct {
	FirstDataRow int
	OwnedLastCol int
	IdentityCol  int
	KeyCol       int
	UnitCol      int
}

// DefaultLayout Master Document List 的布局
func DefaultLayout() Layout {
	return Layout{
		FirstDataRow: model.FirstDataRow,
		OwnedLastCol: parser.MustColumnToIndex(model.OwnedLastCol),
		IdentityCol:  parser.MustColumnToIndex(model.IdentityColumn),
		KeyCol:       parser.MustColumnToIndex(model.KeyColumn),
		UnitCol:      parser.MustColumnToIndex(model.UnitColumn),
	}
}

// Snapshot 目标表现状
type Snapshot struct {
	Layout       Layout
	LastUsedRow  int // 已用区域末行，不小于 FirstDataRow-1
	LastUsedCol  int
	LastOwnedRow int // 最后一个 A 或 H 非空的行，不小于 FirstDataRow-1
	keys         map[string]struct{}
}

// KeyCount 已有复合键数量
func (s *Snapshot) KeyCount() int {
	return len(s.keys)
}

// Has 复合键是否已存在（忽略大小写）
func (s *Snapshot) Has(key string) bool {
	_, ok := s.keys[parser.Fold(key)]
	return ok
}

// TakeSnapshot 扫描目标表
func TakeSnapshot(sheet workbook.Sheet, layout Layout) (*Snapshot, error) {
	used, err := sheet.UsedRange()
	if err != nil {
		return nil, fmt.Errorf("read used range of %s: %w", sheet.Name(), err)
	}

	snap := &Snapshot{
		Layout:       layout,
		LastUsedRow:  max(used.LastRow, layout.FirstDataRow-1),
		LastUsedCol:  used.LastCol,
		LastOwnedRow: layout.FirstDataRow - 1,
		keys:         map[string]struct{}{},
	}

	for row := layout.FirstDataRow; row <= snap.LastUsedRow; row++ {
		h, err := sheet.Cell(row, layout.KeyCol)
		if err != nil {
			return nil, err
		}
		k, err := sheet.Cell(row, layout.UnitCol)
		if err != nil {
			return nil, err
		}
		if isBlank(h) && isBlank(k) {
			continue
		}
		snap.keys[parser.Fold(model.CompositeKey(h, k))] = struct{}{}
	}

	for row := snap.LastUsedRow; row >= layout.FirstDataRow; row-- {
		a, err := sheet.Cell(row, layout.IdentityCol)
		if err != nil {
			return nil, err
		}
		h, err := sheet.Cell(row, layout.KeyCol)
		if err != nil {
			return nil, err
		}
		if !isBlank(a) || !isBlank(h) {
			snap.LastOwnedRow = row
			break
		}
	}
	return snap, nil
}

// AppendPlan 追加计划
type AppendPlan struct {
	Records         []model.OutputRecord
	Skipped         int
	InsertRow       int
	NothingToAppend bool
}

// Plan 计算需要追加的记录与插入行
//
// 候选按产出顺序处理：复合键已存在（表中或本批次已接受）则跳过，先到者保留。
func Plan(snap *Snapshot, candidates []model.OutputRecord) AppendPlan {
	seen := make(map[string]struct{}, len(snap.keys)+len(candidates))
	for k := range snap.keys {
		seen[k] = struct{}{}
	}

	plan := AppendPlan{InsertRow: snap.LastOwnedRow + 1}
	for _, rec := range candidates {
		key := parser.Fold(rec.CompositeKey())
		if _, dup := seen[key]; dup {
			plan.Skipped++
			continue
		}
		seen[key] = struct{}{}
		plan.Records = append(plan.Records, rec)
	}
	plan.NothingToAppend = len(plan.Records) == 0
	return plan
}

// Apply 写入计划中的记录，返回写入的行区间
//
// 只写 A..AF；新写入行中 AF 之后的手工列被清空。
func Apply(sheet workbook.Sheet, snap *Snapshot, plan AppendPlan) (workbook.Range, error) {
	if plan.NothingToAppend || len(plan.Records) == 0 {
		return workbook.Range{}, nil
	}
	layout := snap.Layout

	columns := make([]string, layout.OwnedLastCol)
	for i := range columns {
		col, err := parser.IndexToColumn(i + 1)
		if err != nil {
			return workbook.Range{}, err
		}
		columns[i] = col
	}

	row := plan.InsertRow
	for _, rec := range plan.Records {
		for i, col := range columns {
			v, ok := rec[col]
			if !ok {
				continue
			}
			if err := sheet.SetCell(row, i+1, v); err != nil {
				return workbook.Range{}, fmt.Errorf("write %s%d: %w", col, row, err)
			}
		}
		row++
	}
	written := workbook.Range{
		FirstRow: plan.InsertRow,
		FirstCol: 1,
		LastRow:  row - 1,
		LastCol:  layout.OwnedLastCol,
	}

	firstManual := layout.OwnedLastCol + 1
	if snap.LastUsedCol >= firstManual {
		manual := workbook.Range{
			FirstRow: written.FirstRow,
			FirstCol: firstManual,
			LastRow:  written.LastRow,
			LastCol:  snap.LastUsedCol,
		}
		if err := sheet.ClearRange(manual); err != nil {
			return written, fmt.Errorf("clear manual columns %s: %w", manual, err)
		}
	}
	return written, nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
