package parser

import (
	"fmt"
	"strings"

	"github.com/KKoehn92/Master-Document-Tool/internal/model"
)

// 问题表布局
const (
	QuestionFirstRow  = 4
	QuestionLastRow   = 139
	QuestionTextCol   = 1
	QuestionTypeCol   = 4
	NumberFieldMax    = 1_000_000
	foundationRow     = 30
	provisionalPrompt = "Gibt es Provisorien"
)

// 声明类型（D 列）
const (
	DeclaredYesNo  = "ja oder nein"
	DeclaredNumber = "zahlenwert"
)

// 固定为勾选框的问题行
var checkboxRows = map[int]bool{
	18: true, 20: true, 22: true,
	58: true, 60: true, 62: true, 64: true, 66: true, 68: true, 70: true, 72: true, 74: true,
	80: true, 82: true, 83: true, 85: true, 87: true, 89: true, 93: true,
	97: true, 99: true, 101: true, 103: true, 107: true, 109: true, 112: true, 115: true, 119: true, 121: true,
	123: true, 125: true, 127: true, 129: true, 133: true, 137: true, 139: true,
}

// 固定为文本框的问题行（桩号、说明等自由文本）
var textRows = map[int]bool{
	20: true, 81: true, 105: true, 131: true, 135: true,
}

// CellReader 只读单元格访问
type CellReader interface {
	Cell(row, col int) (string, error)
}

// FoundationOptions 第 30 行的地基类型选项
func FoundationOptions() []model.FoundationOption {
	const hint = "Mastnummern, z. B. M001, M003-M010; M015"
	return []model.FoundationOption{
		{Label: "Rammgründung", CheckKey: model.KeyFoundationRamm, MastsKey: model.KeyFoundationRammMasts, Hint: hint},
		{Label: "Bohrgründung", CheckKey: model.KeyFoundationBohr, MastsKey: model.KeyFoundationBohrMasts, Hint: hint},
		{Label: "Plattengründung", CheckKey: model.KeyFoundationPlatte, MastsKey: model.KeyFoundationPlatteMasts, Hint: hint},
	}
}

// ParseQuestions 从问题表（第 4..139 行）生成表单字段
func ParseQuestions(sheet CellReader) ([]model.Question, error) {
	questions := make([]model.Question, 0, QuestionLastRow-QuestionFirstRow+1)

	for row := QuestionFirstRow; row <= QuestionLastRow; row++ {
		text, err := sheet.Cell(row, QuestionTextCol)
		if err != nil {
			return nil, fmt.Errorf("read question row %d: %w", row, err)
		}
		text = NormalizeQuestionText(text)
		if text == "" {
			continue
		}
		declared, err := sheet.Cell(row, QuestionTypeCol)
		if err != nil {
			return nil, fmt.Errorf("read question type row %d: %w", row, err)
		}
		declared = strings.TrimSpace(declared)

		q := model.Question{Key: row, Text: text, DeclaredType: declared}

		if EqualFold(text, provisionalPrompt) {
			q.Kind = model.FieldYesNo
			q.Tooltip = "Markieren = Ja; leer lassen = Nein"
			questions = append(questions, q, model.Question{
				Key:       row + 1,
				Text:      "Anzahl Provisorien:",
				Kind:      model.FieldNumber,
				Max:       NumberFieldMax,
				DependsOn: row,
			})
			continue
		}

		q.Kind = classifyField(row, declared)
		switch q.Kind {
		case model.FieldFoundation:
			q.Options = FoundationOptions()
			q.Tooltip = "Markieren → aktiviert Freitext"
		case model.FieldYesNo:
			q.Tooltip = "Markieren = Ja; leer lassen = Nein"
		case model.FieldNumber:
			q.Max = NumberFieldMax
		}
		questions = append(questions, q)
	}

	return questions, nil
}

// classifyField 按行号与声明类型决定字段类型
func classifyField(row int, declared string) model.FieldKind {
	switch {
	case row == foundationRow:
		return model.FieldFoundation
	case row == 80:
		return model.FieldYesNo
	case textRows[row]:
		return model.FieldText
	case row == 26 || checkboxRows[row] || EqualFold(declared, DeclaredYesNo):
		return model.FieldYesNo
	case EqualFold(declared, DeclaredNumber) || row == 28:
		return model.FieldNumber
	default:
		return model.FieldText
	}
}
