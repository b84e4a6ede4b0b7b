package model

// 工作簿中的固定工作表名
const (
	SheetQuestions = "Eingabemaske"
	SheetMaster    = "Master Document List"
	SheetReporting = "Reporting"
)

// DefaultReferenceSheets 参考表名（按顺序尝试）
var DefaultReferenceSheets = []string{"IBL-OHL Neubau", "IHL-OHL Neubau"}

// FieldKind 表单字段类型
type FieldKind string

const (
	FieldText       FieldKind = "text"
	FieldYesNo      FieldKind = "yesno"
	FieldNumber     FieldKind = "number"
	FieldFoundation FieldKind = "foundation" // 地基类型组合（第 30 行）
)

// FoundationOption 地基类型选项：勾选键 + 桩号文本键
type FoundationOption struct {
	Label    string `json:"label"`
	CheckKey int    `json:"checkKey"`
	MastsKey int    `json:"mastsKey"`
	Hint     string `json:"hint"`
}

// Question 问题表中的一行，对应表单上的一个字段
type Question struct {
	Key          int                `json:"key"`  // 问题表行号
	Text         string             `json:"text"` // A 列问题文本
	DeclaredType string             `json:"declaredType,omitempty"`
	Kind         FieldKind          `json:"kind"`
	Min          int                `json:"min,omitempty"`
	Max          int                `json:"max,omitempty"`
	DependsOn    int                `json:"dependsOn,omitempty"` // 仅当该键为 "Ja" 时显示
	Options      []FoundationOption `json:"options,omitempty"`
	Tooltip      string             `json:"tooltip,omitempty"`
}

// ReportSummary Reporting 统计结果
type ReportSummary struct {
	HasData           bool `json:"hasData"` // 目标表是否有第 7 行及以后的数据区
	TotalRows         int  `json:"totalRows"`
	Uploaded          int  `json:"uploaded"`
	Outstanding       int  `json:"outstanding"`
	FormalRejected    int  `json:"formalRejected"`
	TechnicalRejected int  `json:"technicalRejected"`
	Released          int  `json:"released"`
	FormalChecked     int  `json:"formalChecked"`
	TechnicalChecked  int  `json:"technicalChecked"`
	Other             int  `json:"other"`
}
