// Package rules 声明式规则表：答案 -> 参考表行 -> 输出记录。
package rules

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/KKoehn92/Master-Document-Tool/internal/model"
	"github.com/KKoehn92/Master-Document-Tool/internal/parser"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// ProfileStandard 未指定 profile 的规则使用的列映射
const ProfileStandard = "standard"

// Condition 规则触发条件；两项均为 0 时无条件触发
type Condition struct {
	Yes    int `yaml:"yes"`    // 该答案为 "Ja"
	Filled int `yaml:"filled"` // 该答案非空
}

// Holds 判断条件是否成立
func (c Condition) Holds(answers model.AnswerMap) bool {
	if c.Yes != 0 && !answers.IsYes(c.Yes) {
		return false
	}
	if c.Filled != 0 && answers.IsBlank(c.Filled) {
		return false
	}
	return true
}

// Rule 一条规则
type Rule struct {
	Name    string    `yaml:"name"`
	When    Condition `yaml:"when"`
	Rows    []int     `yaml:"rows"`
	Profile string    `yaml:"profile"`
	// Identifiers 桩号列表所在的答案键；0 表示使用规则表的默认键
	Identifiers int `yaml:"identifiers"`
	// DistinctFrom 非 0 时，源行标识为空或与该参考行标识相同（忽略大小写）则跳过
	DistinctFrom int `yaml:"distinct_from"`
}

// Reference 参考表布局
type Reference struct {
	Identity  int            `yaml:"identity"`
	Grounding int            `yaml:"grounding"`
	Columns   map[string]int `yaml:"columns"`
}

// HeaderCell 表头单元格
type HeaderCell struct {
	Cell      string    `yaml:"cell"`
	When      Condition `yaml:"when"`
	Answer    int       `yaml:"answer"`
	Otherwise *string   `yaml:"otherwise"`
}

// RuleSet 完整规则表
type RuleSet struct {
	Reference    Reference                 `yaml:"reference"`
	Constants    map[string]string         `yaml:"constants"`
	Answers      map[string]int            `yaml:"answers"`
	KeyAnswer    int                       `yaml:"key_answer"`
	KeySeparator string                    `yaml:"key_separator"`
	Identifiers  int                       `yaml:"identifiers"`
	Profiles     map[string]map[string]int `yaml:"profiles"`
	Rules        []Rule                    `yaml:"rules"`
	Header       []HeaderCell              `yaml:"header"`
}

var (
	defaultOnce sync.Once
	defaultSet  *RuleSet
	defaultErr  error
)

// Default 内置规则表（只解析一次）
func Default() (*RuleSet, error) {
	defaultOnce.Do(func() {
		defaultSet, defaultErr = Parse(defaultRulesYAML)
	})
	return defaultSet, defaultErr
}

// Parse 解析并校验 YAML 规则表，拒绝未知字段
func Parse(data []byte) (*RuleSet, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var rs RuleSet
	if err := dec.Decode(&rs); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("rule table is empty")
		}
		return nil, fmt.Errorf("decode rule table: %w", err)
	}
	if err := rs.Validate(); err != nil {
		return nil, err
	}
	return &rs, nil
}

// Validate 校验列字母、行号与 profile 引用
func (rs *RuleSet) Validate() error {
	if rs.Reference.Identity <= 0 || rs.Reference.Grounding <= 0 {
		return fmt.Errorf("reference identity/grounding column must be positive")
	}
	if _, ok := rs.Profiles[ProfileStandard]; !ok {
		return fmt.Errorf("profile %q is required", ProfileStandard)
	}

	ownedLast := parser.MustColumnToIndex(model.OwnedLastCol)
	checkCol := func(where, col string) error {
		idx, err := parser.ColumnToIndex(col)
		if err != nil {
			return fmt.Errorf("%s: %w", where, err)
		}
		if idx > ownedLast {
			return fmt.Errorf("%s: column %s is outside the owned range A..%s", where, col, model.OwnedLastCol)
		}
		return nil
	}
	for col := range rs.Reference.Columns {
		if err := checkCol("reference", col); err != nil {
			return err
		}
	}
	for col := range rs.Constants {
		if err := checkCol("constants", col); err != nil {
			return err
		}
	}
	for col := range rs.Answers {
		if err := checkCol("answers", col); err != nil {
			return err
		}
	}
	for name, p := range rs.Profiles {
		for col := range p {
			if err := checkCol("profile "+name, col); err != nil {
				return err
			}
		}
	}

	seen := map[string]bool{}
	for i, r := range rs.Rules {
		if r.Name == "" {
			return fmt.Errorf("rule %d: name is required", i)
		}
		if seen[r.Name] {
			return fmt.Errorf("rule %s: duplicate name", r.Name)
		}
		seen[r.Name] = true
		if len(r.Rows) == 0 {
			return fmt.Errorf("rule %s: no source rows", r.Name)
		}
		for _, row := range r.Rows {
			if row <= 0 {
				return fmt.Errorf("rule %s: invalid source row %d", r.Name, row)
			}
		}
		if r.Profile != "" {
			if _, ok := rs.Profiles[r.Profile]; !ok {
				return fmt.Errorf("rule %s: unknown profile %q", r.Name, r.Profile)
			}
		}
	}

	for _, h := range rs.Header {
		if _, _, err := splitCell(h.Cell); err != nil {
			return fmt.Errorf("header: %w", err)
		}
	}
	return nil
}

// Rule 按名称查找规则
func (rs *RuleSet) Rule(name string) (Rule, bool) {
	for _, r := range rs.Rules {
		if r.Name == name {
			return r, true
		}
	}
	return Rule{}, false
}

func (rs *RuleSet) profile(name string) map[string]int {
	if name == "" {
		name = ProfileStandard
	}
	return rs.Profiles[name]
}

func (rs *RuleSet) identifierKey(r Rule) int {
	if r.Identifiers != 0 {
		return r.Identifiers
	}
	return rs.Identifiers
}
