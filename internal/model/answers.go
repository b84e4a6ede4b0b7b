package model

import (
	"strconv"
	"strings"
)

// 布尔型答案的字面值
const (
	AnswerYes = "Ja"
	AnswerNo  = "Nein"
)

// 地基类型选项（第 30 行）使用的合成答案键
//
// 问题表的行号覆盖 4..139，合成键从 1000 起，避免与行号冲突。
const (
	KeyFoundationRamm        = 1001 // Rammgründung 勾选
	KeyFoundationRammMasts   = 1002 // Rammgründung 桩号
	KeyFoundationBohr        = 1011 // Bohrgründung 勾选
	KeyFoundationBohrMasts   = 1012 // Bohrgründung 桩号
	KeyFoundationPlatte      = 1021 // Plattengründung 勾选
	KeyFoundationPlatteMasts = 1022 // Plattengründung 桩号
)

// AnswerMap 表单答案：问题键 -> 字符串值
//
// 一次保存操作构建一次，处理期间只读。
type AnswerMap map[int]string

// Get 读取答案，缺失时返回空串
func (a AnswerMap) Get(key int) string {
	if a == nil {
		return ""
	}
	return a[key]
}

// IsYes 判断答案是否为 "Ja"（忽略大小写与首尾空白）
func (a AnswerMap) IsYes(key int) bool {
	return strings.EqualFold(strings.TrimSpace(a.Get(key)), AnswerYes)
}

// IsBlank 判断答案是否为空白
func (a AnswerMap) IsBlank(key int) bool {
	return strings.TrimSpace(a.Get(key)) == ""
}

// Clone 复制一份答案
func (a AnswerMap) Clone() AnswerMap {
	out := make(AnswerMap, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Merge 合并答案（右侧覆盖左侧）
func (a AnswerMap) Merge(other AnswerMap) {
	for k, v := range other {
		a[k] = v
	}
}

// BoolAnswer 将布尔值转为 "Ja"/"Nein"
func BoolAnswer(v bool) string {
	if v {
		return AnswerYes
	}
	return AnswerNo
}

// ParseAnswerKey 解析答案键（JSON/YAML 中的字符串键）
func ParseAnswerKey(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}
