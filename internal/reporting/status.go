package reporting

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/KKoehn92/Master-Document-Tool/internal/parser"
	"github.com/KKoehn92/Master-Document-Tool/internal/workbook"
)

// 审核状态列 AG..AK
const (
	ColFormalCheck     = 33 // AG 形式审核
	ColTechnicalCheck  = 34 // AH 专业审核
	ColFormalReject    = 35 // AI 形式驳回
	ColTechnicalReject = 36 // AJ 专业驳回
	ColReleased        = 37 // AK 放行

	ColExpectedWeek = 4 // D 计划周
	ColActualDate   = 5 // E 实际上传日期
)

// 底色
const (
	ColorRed        = "#FF0000"
	ColorLightGreen = "#90EE90"
	ColorOrange     = "#FFA500"
)

// Status 已上传文档的审核状态
type Status string

const (
	StatusFormalRejected    Status = "formal zurückgewiesen"
	StatusTechnicalRejected Status = "fachlich zurückgewiesen"
	StatusReleased          Status = "freigegeben"
	StatusFormalChecked     Status = "formal geprüft"
	StatusTechnicalChecked  Status = "fachlich geprüft"
	StatusOther             Status = "sonstige"
)

// HasCheck 含 ✔ 或 ✓
func HasCheck(s string) bool {
	return strings.Contains(s, "✔") || strings.Contains(s, "✓")
}

// HasCross 含 ❌ 或 ✖，或等于 x（忽略大小写）
func HasCross(s string) bool {
	return strings.Contains(s, "❌") || strings.Contains(s, "✖") || parser.EqualFold(s, "x")
}

func isEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Classify 按 AG..AK 判断审核状态，驳回优先
func Classify(ag, ah, ai, aj, ak string) Status {
	restEmpty := isEmpty(ai) && isEmpty(aj) && isEmpty(ak)
	switch {
	case HasCross(ai):
		return StatusFormalRejected
	case HasCross(aj):
		return StatusTechnicalRejected
	case HasCheck(ak), HasCheck(ag) && HasCheck(ah) && restEmpty:
		return StatusReleased
	case HasCheck(ag) && isEmpty(ah) && restEmpty:
		return StatusFormalChecked
	case HasCheck(ah) && isEmpty(ag) && restEmpty:
		return StatusTechnicalChecked
	default:
		return StatusOther
	}
}

// statusRange 行的 AG..AK 区域
func statusRange(row int) workbook.Range {
	return workbook.Range{FirstRow: row, FirstCol: ColFormalCheck, LastRow: row, LastCol: ColReleased}
}

// ColorizeRowStatus AG..AK 底色：驳回红色，放行浅绿，其余清除
func ColorizeRowStatus(painter workbook.Painter, sheet workbook.Sheet, row int) error {
	ai, err := sheet.Cell(row, ColFormalReject)
	if err != nil {
		return err
	}
	aj, err := sheet.Cell(row, ColTechnicalReject)
	if err != nil {
		return err
	}
	ak, err := sheet.Cell(row, ColReleased)
	if err != nil {
		return err
	}

	switch {
	case HasCross(ai) || HasCross(aj):
		return painter.Fill(sheet.Name(), statusRange(row), ColorRed)
	case HasCheck(ak):
		return painter.Fill(sheet.Name(), statusRange(row), ColorLightGreen)
	default:
		return painter.ClearFill(sheet.Name(), statusRange(row))
	}
}

// WeekCheck 计划周与实际日期的比对结果
type WeekCheck struct {
	Row          int  `json:"row"`
	ExpectedWeek int  `json:"expectedWeek"`
	ActualWeek   int  `json:"actualWeek"`
	Match        bool `json:"match"`
}

// CheckCalendarWeek 比对 D 列计划周与 E 列日期的 ISO 周；任一无法解析时 ok 为 false
func CheckCalendarWeek(sheet workbook.Sheet, row int) (WeekCheck, bool, error) {
	d, err := sheet.Cell(row, ColExpectedWeek)
	if err != nil {
		return WeekCheck{}, false, err
	}
	e, err := sheet.Cell(row, ColActualDate)
	if err != nil {
		return WeekCheck{}, false, err
	}
	week, ok := parseWeek(d)
	if !ok {
		return WeekCheck{}, false, nil
	}
	date, ok := parseDate(e)
	if !ok {
		return WeekCheck{}, false, nil
	}
	_, actual := date.ISOWeek()
	return WeekCheck{Row: row, ExpectedWeek: week, ActualWeek: actual, Match: week == actual}, true, nil
}

// ColorizeCalendarWeek D/E 两格着色：周一致浅绿，不一致橙色，无法解析不变
func ColorizeCalendarWeek(painter workbook.Painter, sheet workbook.Sheet, row int) (WeekCheck, bool, error) {
	check, ok, err := CheckCalendarWeek(sheet, row)
	if err != nil || !ok {
		return check, ok, err
	}
	color := ColorOrange
	if check.Match {
		color = ColorLightGreen
	}
	rng := workbook.Range{FirstRow: row, FirstCol: ColExpectedWeek, LastRow: row, LastCol: ColActualDate}
	return check, true, painter.Fill(sheet.Name(), rng, color)
}

func parseWeek(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return int(f + 0.5), true
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02.01.2006",
	"2.1.2006",
	"01/02/2006",
	"1/2/2006",
}

// parseDate 支持 Excel 日期序列号与常见日期格式
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
