package recorder

import "BankrollSentinel/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordSession(_ *model.DailySession) error          { return nil }
func (n *NoopRecorder) RecordAdjustment(_ *model.CapitalAdjustment) error { return nil }
func (n *NoopRecorder) RecordDailySummary(_ *DailySummary) error          { return nil }
func (n *NoopRecorder) RecordLockEvent(_ *LockEvent) error                { return nil }
func (n *NoopRecorder) Close() error                                      { return nil }
