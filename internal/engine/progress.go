package engine

// 保存进度阶段
const (
	StageHeader    = "header"
	StagePlan      = "plan"
	StageReporting = "reporting"
	StageDone      = "done"
)

// ProgressEvent 保存进度事件（仅用于界面展示）
type ProgressEvent struct {
	Percent int    `json:"percent"`
	Stage   string `json:"stage"`
}

// ProgressFunc 进度回调
type ProgressFunc func(ProgressEvent)

func reportProgress(progress ProgressFunc, percent int, stage string) {
	if progress == nil {
		return
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	progress(ProgressEvent{
		Percent: percent,
		Stage:   stage,
	})
}
