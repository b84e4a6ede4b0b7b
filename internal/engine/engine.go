// Package engine 一次保存操作：表头、候选记录、去重追加、Reporting 重建
package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/KKoehn92/Master-Document-Tool/internal/model"
	"github.com/KKoehn92/Master-Document-Tool/internal/parser"
	"github.com/KKoehn92/Master-Document-Tool/internal/planner"
	"github.com/KKoehn92/Master-Document-Tool/internal/reporting"
	"github.com/KKoehn92/Master-Document-Tool/internal/rules"
	"github.com/KKoehn92/Master-Document-Tool/internal/workbook"
)

// ErrNoWorkbook 未配置工作簿路径
var ErrNoWorkbook = errors.New("no workbook configured")

// Options 引擎配置
type Options struct {
	QuestionSheet   string
	MasterSheet     string
	ReferenceSheets []string
	ReportingSheet  string
	Rules           *rules.RuleSet // nil 时使用内置规则表
	Logger          *zap.Logger
}

// DefaultOptions 默认工作表名
func DefaultOptions() Options {
	return Options{
		QuestionSheet:   model.SheetQuestions,
		MasterSheet:     model.SheetMaster,
		ReferenceSheets: model.DefaultReferenceSheets,
		ReportingSheet:  model.SheetReporting,
	}
}

// Engine 保存引擎，无状态，可并发用于不同工作簿
type Engine struct {
	opts     Options
	builder  *rules.Builder
	reporter *reporting.Reporter
	layout   planner.Layout
	log      *zap.Logger
}

// New 创建引擎
func New(opts Options) (*Engine, error) {
	defaults := DefaultOptions()
	if opts.QuestionSheet == "" {
		opts.QuestionSheet = defaults.QuestionSheet
	}
	if opts.MasterSheet == "" {
		opts.MasterSheet = defaults.MasterSheet
	}
	if len(opts.ReferenceSheets) == 0 {
		opts.ReferenceSheets = defaults.ReferenceSheets
	}
	if opts.ReportingSheet == "" {
		opts.ReportingSheet = defaults.ReportingSheet
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Rules == nil {
		rs, err := rules.Default()
		if err != nil {
			return nil, fmt.Errorf("load rule table: %w", err)
		}
		opts.Rules = rs
	}

	reporter := reporting.New(reporting.Options{
		MasterSheet:    opts.MasterSheet,
		ReportingSheet: opts.ReportingSheet,
	}, opts.Logger.Named("reporting"))

	return &Engine{
		opts:     opts,
		builder:  rules.NewBuilder(opts.Rules),
		reporter: reporter,
		layout:   planner.DefaultLayout(),
		log:      opts.Logger,
	}, nil
}

// Options 返回生效的配置
func (e *Engine) Options() Options {
	return e.opts
}

// Questions 读取问题表生成表单字段
func (e *Engine) Questions(book workbook.Book) ([]model.Question, error) {
	sheet, err := book.Sheet(e.opts.QuestionSheet)
	if err != nil {
		return nil, err
	}
	return parser.ParseQuestions(sheet)
}

// Report 单独重建 Reporting 表
func (e *Engine) Report(book workbook.Book) (model.ReportSummary, error) {
	return e.reporter.Build(book)
}

// Save 执行一次保存
//
// 目标表或参考表缺失时直接返回 workbook.ErrSheetMissing，不写入任何内容。
// 无新记录时返回 NothingNew 结果而不是错误。Reporting 重建失败只记日志。
func (e *Engine) Save(book workbook.Book, answers model.AnswerMap, progress ProgressFunc) (model.SaveResult, error) {
	start := time.Now()
	result := model.SaveResult{SaveID: uuid.NewString()}
	log := e.log.With(zap.String("save_id", result.SaveID))

	master, err := book.Sheet(e.opts.MasterSheet)
	if err != nil {
		return result, fmt.Errorf("destination sheet: %w", err)
	}
	reference, err := workbook.FirstSheet(book, e.opts.ReferenceSheets...)
	if err != nil {
		return result, fmt.Errorf("reference sheet: %w", err)
	}

	reportProgress(progress, 25, StageHeader)
	writes, err := e.opts.Rules.ApplyHeader(master, answers)
	if err != nil {
		return result, err
	}
	for _, w := range writes {
		result.Header = append(result.Header, w.Cell)
	}

	candidates, err := e.builder.Build(reference, answers)
	if err != nil {
		return result, fmt.Errorf("build records: %w", err)
	}
	result.Candidates = len(candidates)
	reportProgress(progress, 60, StagePlan)

	snap, err := planner.TakeSnapshot(master, e.layout)
	if err != nil {
		return result, err
	}
	plan := planner.Plan(snap, candidates)
	result.Skipped = plan.Skipped

	if plan.NothingToAppend {
		result.NothingNew = true
		result.Duration = time.Since(start)
		reportProgress(progress, 100, StageDone)
		log.Info("nothing new to append",
			zap.Int("candidates", result.Candidates),
			zap.Int("existing_keys", snap.KeyCount()))
		return result, nil
	}

	written, err := planner.Apply(master, snap, plan)
	if err != nil {
		return result, fmt.Errorf("append records: %w", err)
	}
	result.Appended = len(plan.Records)
	result.InsertRow = plan.InsertRow
	reportProgress(progress, 100, StageReporting)

	if sum, err := e.reporter.Build(book); err != nil {
		log.Warn("reporting rebuild failed", zap.Error(err))
	} else {
		result.Report = &sum
	}

	result.Duration = time.Since(start)
	log.Info("records appended",
		zap.Int("candidates", result.Candidates),
		zap.Int("appended", result.Appended),
		zap.Int("skipped", result.Skipped),
		zap.String("range", written.String()),
		zap.Duration("duration", result.Duration))
	return result, nil
}
