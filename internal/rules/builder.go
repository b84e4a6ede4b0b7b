package rules

import (
	"fmt"
	"strings"

	"github.com/KKoehn92/Master-Document-Tool/internal/model"
	"github.com/KKoehn92/Master-Document-Tool/internal/parser"
)

// Builder 按规则表生成候选记录
type Builder struct {
	rules *RuleSet
}

// NewBuilder 创建 Builder
func NewBuilder(rs *RuleSet) *Builder {
	return &Builder{rules: rs}
}

// referenceRows 缓存一次构建中读过的参考表行
type referenceRows struct {
	sheet parser.CellReader
	rows  map[int]map[int]string
}

func (r *referenceRows) cell(row, col int) (string, error) {
	cols, ok := r.rows[row]
	if !ok {
		cols = map[int]string{}
		r.rows[row] = cols
	}
	if v, ok := cols[col]; ok {
		return v, nil
	}
	v, err := r.sheet.Cell(row, col)
	if err != nil {
		return "", fmt.Errorf("read reference row %d col %d: %w", row, col, err)
	}
	cols[col] = v
	return v, nil
}

// Build 生成候选记录
//
// 顺序：规则表顺序、源行顺序、桩号顺序。此处不去重。
// 参考行的 Gründung 字段为 "Je Mast…" 时按桩号逐个复制，否则生成一条 K 为空的记录；
// 桩号列表为空时，按桩号复制的源行不产生记录。
func (b *Builder) Build(reference parser.CellReader, answers model.AnswerMap) ([]model.OutputRecord, error) {
	ref := &referenceRows{sheet: reference, rows: map[int]map[int]string{}}
	identifiers := map[int][]string{}
	var records []model.OutputRecord

	for _, rule := range b.rules.Rules {
		if !rule.When.Holds(answers) {
			continue
		}

		idKey := b.rules.identifierKey(rule)
		ids, ok := identifiers[idKey]
		if !ok {
			var err error
			ids, err = parser.ExpandTokens(answers.Get(idKey))
			if err != nil {
				return nil, fmt.Errorf("rule %s: answer %d: %w", rule.Name, idKey, err)
			}
			identifiers[idKey] = ids
		}

		for _, src := range rule.Rows {
			if rule.DistinctFrom != 0 {
				keep, err := b.distinct(ref, src, rule.DistinctFrom)
				if err != nil {
					return nil, err
				}
				if !keep {
					continue
				}
			}
			recs, err := b.recordsFor(ref, src, b.rules.profile(rule.Profile), answers, ids)
			if err != nil {
				return nil, fmt.Errorf("rule %s: %w", rule.Name, err)
			}
			records = append(records, recs...)
		}
	}
	return records, nil
}

func (b *Builder) distinct(ref *referenceRows, src, other int) (bool, error) {
	a, err := ref.cell(src, b.rules.Reference.Identity)
	if err != nil {
		return false, err
	}
	o, err := ref.cell(other, b.rules.Reference.Identity)
	if err != nil {
		return false, err
	}
	if strings.TrimSpace(a) == "" {
		return false, nil
	}
	return !parser.EqualFold(a, o), nil
}

func (b *Builder) recordsFor(ref *referenceRows, src int, profile map[string]int, answers model.AnswerMap, ids []string) ([]model.OutputRecord, error) {
	rs := b.rules
	base := model.OutputRecord{}
	for col, refCol := range rs.Reference.Columns {
		v, err := ref.cell(src, refCol)
		if err != nil {
			return nil, err
		}
		base[col] = v
	}
	identity, err := ref.cell(src, rs.Reference.Identity)
	if err != nil {
		return nil, err
	}
	grounding, err := ref.cell(src, rs.Reference.Grounding)
	if err != nil {
		return nil, err
	}

	for col, v := range rs.Constants {
		base[col] = v
	}
	for col, key := range rs.Answers {
		base[col] = answers.Get(key)
	}
	for col, key := range profile {
		base[col] = answers.Get(key)
	}
	base[model.KeyColumn] = identity + rs.KeySeparator + answers.Get(rs.KeyAnswer)

	units := []string{""}
	if parser.IsPerUnit(grounding) {
		units = ids
	}
	out := make([]model.OutputRecord, 0, len(units))
	for _, unit := range units {
		rec := make(model.OutputRecord, len(base)+1)
		for k, v := range base {
			rec[k] = v
		}
		rec[model.UnitColumn] = unit
		out = append(out, rec)
	}
	return out, nil
}
