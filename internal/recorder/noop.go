package recorder

import "FinPlanner/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordAnalysis(_ *model.AnalysisBundle) error { return nil }
func (n *NoopRecorder) RecordFailure(_ *FailureEvent) error          { return nil }
func (n *NoopRecorder) Close() error                                 { return nil }
