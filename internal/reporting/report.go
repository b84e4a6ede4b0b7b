// Package reporting 由 Master Document List 生成 Reporting 表与饼图，并维护状态底色
package reporting

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/KKoehn92/Master-Document-Tool/internal/model"
	"github.com/KKoehn92/Master-Document-Tool/internal/workbook"
)

// 统计读取 A..AK；A..AF 任一非空即计入总数
const (
	LastReportingCol = 37
	lastOwnedCol     = 32
)

// 饼图布局
const (
	OverviewChartAnchor = "A9"
	UploadedChartAnchor = "H9"
)

// Options 报表使用的工作表名
type Options struct {
	MasterSheet    string
	ReportingSheet string
}

// DefaultOptions 默认工作表名
func DefaultOptions() Options {
	return Options{MasterSheet: model.SheetMaster, ReportingSheet: model.SheetReporting}
}

// Reporter 报表生成器
type Reporter struct {
	opts Options
	log  *zap.Logger
}

// New 创建 Reporter；log 为 nil 时不输出日志
func New(opts Options, log *zap.Logger) *Reporter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reporter{opts: opts, log: log}
}

// Summarize 统计目标表第 7 行起 A..AK 的数据
func Summarize(sheet workbook.Sheet) (model.ReportSummary, error) {
	var sum model.ReportSummary
	used, err := sheet.UsedRange()
	if err != nil {
		return sum, err
	}
	if used.LastRow < model.FirstDataRow {
		return sum, nil
	}
	sum.HasData = true

	row := make([]string, LastReportingCol+1)
	for r := model.FirstDataRow; r <= used.LastRow; r++ {
		for c := 1; c <= LastReportingCol; c++ {
			v, err := sheet.Cell(r, c)
			if err != nil {
				return sum, fmt.Errorf("read row %d: %w", r, err)
			}
			row[c] = v
		}

		for c := 1; c <= lastOwnedCol; c++ {
			if !isEmpty(row[c]) {
				sum.TotalRows++
				break
			}
		}
		if isEmpty(row[ColActualDate]) {
			continue
		}
		sum.Uploaded++

		switch Classify(row[ColFormalCheck], row[ColTechnicalCheck], row[ColFormalReject], row[ColTechnicalReject], row[ColReleased]) {
		case StatusFormalRejected:
			sum.FormalRejected++
		case StatusTechnicalRejected:
			sum.TechnicalRejected++
		case StatusReleased:
			sum.Released++
		case StatusFormalChecked:
			sum.FormalChecked++
		case StatusTechnicalChecked:
			sum.TechnicalChecked++
		default:
			sum.Other++
		}
	}
	sum.Outstanding = max(0, sum.TotalRows-sum.Uploaded)
	return sum, nil
}

// Build 重建 Reporting 表
//
// 先对目标表逐行做状态与计划周着色，再统计并写入两张表格与饼图。
// 着色、列宽、图表失败只记日志。
func (r *Reporter) Build(book workbook.Book) (model.ReportSummary, error) {
	master, err := book.Sheet(r.opts.MasterSheet)
	if err != nil {
		return model.ReportSummary{}, err
	}

	if painter, ok := book.(workbook.Painter); ok {
		r.colorize(painter, master)
	}

	sum, err := Summarize(master)
	if err != nil {
		return sum, err
	}

	rep, err := workbook.ResetSheet(book, r.opts.ReportingSheet, OverviewChartAnchor, UploadedChartAnchor)
	if err != nil {
		return sum, fmt.Errorf("prepare reporting sheet: %w", err)
	}

	if !sum.HasData {
		return sum, set(rep, 1, 1, "Keine Daten in 'Master Document List' (ab Zeile 7).")
	}

	if err := writeTables(rep, sum); err != nil {
		return sum, err
	}

	if sizer, ok := book.(workbook.ColumnSizer); ok {
		if err := sizer.SetColWidth(rep.Name(), "A", "B", 35); err != nil {
			r.log.Warn("set column width failed", zap.Error(err))
		}
		if err := sizer.SetColWidth(rep.Name(), "D", "E", 40); err != nil {
			r.log.Warn("set column width failed", zap.Error(err))
		}
	}

	if charter, ok := book.(workbook.Charter); ok {
		for _, chart := range charts(sum) {
			if err := charter.AddPieChart(rep.Name(), chart); err != nil {
				r.log.Warn("add chart failed", zap.String("anchor", chart.Anchor), zap.Error(err))
			}
		}
	}

	r.log.Info("reporting rebuilt",
		zap.Int("total", sum.TotalRows),
		zap.Int("uploaded", sum.Uploaded),
		zap.Int("released", sum.Released))
	return sum, nil
}

func (r *Reporter) colorize(painter workbook.Painter, master workbook.Sheet) {
	used, err := master.UsedRange()
	if err != nil {
		r.log.Warn("status coloring skipped", zap.Error(err))
		return
	}
	for row := model.FirstDataRow; row <= used.LastRow; row++ {
		if err := ColorizeRowStatus(painter, master, row); err != nil {
			r.log.Warn("status coloring failed", zap.Int("row", row), zap.Error(err))
		}
		if _, _, err := ColorizeCalendarWeek(painter, master, row); err != nil {
			r.log.Warn("calendar week coloring failed", zap.Int("row", row), zap.Error(err))
		}
	}
}

type statusCount struct {
	label Status
	value int
}

// statusRows 表 2 的行；sonstige 仅在大于 0 时出现
func statusRows(sum model.ReportSummary) []statusCount {
	rows := []statusCount{
		{StatusFormalRejected, sum.FormalRejected},
		{StatusTechnicalRejected, sum.TechnicalRejected},
		{StatusReleased, sum.Released},
		{StatusFormalChecked, sum.FormalChecked},
		{StatusTechnicalChecked, sum.TechnicalChecked},
	}
	if sum.Other > 0 {
		rows = append(rows, statusCount{StatusOther, sum.Other})
	}
	return rows
}

func writeTables(rep workbook.Sheet, sum model.ReportSummary) error {
	labels := []struct {
		row, col int
		value    string
	}{
		{1, 1, "Reporting"},
		{2, 1, "Dokumentenanzahl insgesamt:"},
		{4, 1, "Kreisdiagramm 1: Gesamtübersicht"},
		{5, 1, "Kategorie"},
		{5, 2, "Wert"},
		{6, 1, "hochgeladene Dokumente"},
		{7, 1, "ausstehende Dokumente"},
		{4, 4, "Kreisdiagramm 2: Status hochgeladener Dokumente"},
		{5, 4, "Kategorie"},
		{5, 5, "Wert"},
	}
	for _, c := range labels {
		if err := set(rep, c.row, c.col, c.value); err != nil {
			return err
		}
	}
	for _, c := range []struct{ row, col, value int }{
		{2, 2, sum.TotalRows},
		{6, 2, sum.Uploaded},
		{7, 2, sum.Outstanding},
	} {
		if err := setInt(rep, c.row, c.col, c.value); err != nil {
			return err
		}
	}

	if sum.Uploaded == 0 {
		return set(rep, 6, 4, "Keine hochgeladenen Dokumente vorhanden.")
	}
	for i, s := range statusRows(sum) {
		if err := set(rep, 6+i, 4, string(s.label)); err != nil {
			return err
		}
		if err := setInt(rep, 6+i, 5, s.value); err != nil {
			return err
		}
	}
	return nil
}

// charts 饼图定义；无上传时只有总览图
func charts(sum model.ReportSummary) []workbook.PieChart {
	out := []workbook.PieChart{{
		Anchor:       OverviewChartAnchor,
		Title:        fmt.Sprintf("Dokumentenübersicht (gesamt: %d)", sum.TotalRows),
		Categories:   workbook.Range{FirstRow: 6, FirstCol: 1, LastRow: 7, LastCol: 1},
		Values:       workbook.Range{FirstRow: 6, FirstCol: 2, LastRow: 7, LastCol: 2},
		Width:        420,
		Height:       300,
		ShowCategory: true,
		ShowValue:    true,
		ShowPercent:  true,
	}}
	if sum.Uploaded == 0 {
		return out
	}
	last := 6 + len(statusRows(sum)) - 1
	return append(out, workbook.PieChart{
		Anchor:      UploadedChartAnchor,
		Title:       fmt.Sprintf("Status hochgeladener Dokumente (n=%d)", sum.Uploaded),
		Categories:  workbook.Range{FirstRow: 6, FirstCol: 4, LastRow: last, LastCol: 4},
		Values:      workbook.Range{FirstRow: 6, FirstCol: 5, LastRow: last, LastCol: 5},
		Width:       620,
		Height:      360,
		ShowPercent: true,
	})
}

func set(s workbook.Sheet, row, col int, v string) error {
	if err := s.SetCell(row, col, v); err != nil {
		return fmt.Errorf("write reporting cell %d,%d: %w", row, col, err)
	}
	return nil
}

func setInt(s workbook.Sheet, row, col, v int) error {
	w, ok := s.(workbook.IntWriter)
	if !ok {
		return set(s, row, col, strconv.Itoa(v))
	}
	if err := w.SetInt(row, col, v); err != nil {
		return fmt.Errorf("write reporting cell %d,%d: %w", row, col, err)
	}
	return nil
}
