package recorder

import "FinPlanner/internal/model"

// FailureEvent records an analysis run that produced no bundle.
type FailureEvent struct {
	Symbol    string
	Horizon   model.Horizon
	RiskScore int
	Reason    string
}

// Recorder persists analysis history.
type Recorder interface {
	RecordAnalysis(bundle *model.AnalysisBundle) error
	RecordFailure(evt *FailureEvent) error
	Close() error
}
