package model

import (
	"fmt"
	"time"
)

// 目标表（Master Document List）布局
const (
	FirstDataRow   = 7    // 第一条数据行
	OwnedLastCol   = "AF" // 引擎负责写入的最后一列
	IdentityColumn = "A"  // 标识列（参考表 E 列）
	KeyColumn      = "H"  // 复合键列
	UnitColumn     = "K"  // 桩号列
)

// OutputRecord 一条待追加的输出行：列字母 -> 值
type OutputRecord map[string]string

// Get 读取列值，缺失时返回空串
func (r OutputRecord) Get(col string) string {
	if r == nil {
		return ""
	}
	return r[col]
}

// CompositeKey 复合键：H 列 + "|" + K 列
func (r OutputRecord) CompositeKey() string {
	return CompositeKey(r.Get(KeyColumn), r.Get(UnitColumn))
}

// CompositeKey 由 H/K 两列值拼接复合键
func CompositeKey(h, k string) string {
	return h + "|" + k
}

// SaveResult 一次保存的结果
type SaveResult struct {
	SaveID     string        `json:"saveId"`
	Candidates int           `json:"candidates"` // 规则产出的候选行数
	Appended   int           `json:"appended"`   // 实际追加行数
	Skipped    int           `json:"skipped"`    // 因重复被跳过的行数
	InsertRow  int           `json:"insertRow"`  // 追加起始行；无追加时为 0
	NothingNew bool          `json:"nothingNew"` // 无新记录
	Duration   time.Duration `json:"duration"`

	Header []string       `json:"header,omitempty"` // 写入的表头单元格
	Report *ReportSummary `json:"report,omitempty"` // Reporting 重建成功时的统计
}

// Message 面向用户的结果描述
func (r SaveResult) Message() string {
	if r.NothingNew {
		return "Keine neuen Datensätze (alles bereits vorhanden)."
	}
	return fmt.Sprintf("Daten übernommen! (neu: %d)", r.Appended)
}
