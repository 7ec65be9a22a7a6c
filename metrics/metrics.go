// Package metrics records per-operation counters and latencies. The engine
// labels observations with the series they touched; the Recorder interface
// keeps the backend pluggable.
package metrics

import "time"

type Recorder interface {
	IncCounter(name string, labels map[string]string)
	ObserveLatency(name string, duration time.Duration, labels map[string]string)
}
