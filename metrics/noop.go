package metrics

import "time"

// NoopRecorder drops every observation. The default unless metrics are
// enabled in the configuration.
type NoopRecorder struct{}

func (NoopRecorder) IncCounter(string, map[string]string)                    {}
func (NoopRecorder) ObserveLatency(string, time.Duration, map[string]string) {}
