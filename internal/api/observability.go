package api

import (
	"github.com/rs/zerolog"
)

// RequestEvent records metadata about one logical backend call, retries included.
type RequestEvent struct {
	Op        string
	Method    string
	Path      string
	Attempts  int
	LatencyMs int64
	Success   bool
	ErrorCode string
}

// Observer receives events about backend calls for logging and metrics.
type Observer interface {
	OnRequestComplete(event RequestEvent)
}

// LogObserver writes request events to a zerolog logger.
type LogObserver struct {
	logger zerolog.Logger
}

// NewLogObserver creates an Observer that logs events to logger.
func NewLogObserver(logger zerolog.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

func (o *LogObserver) OnRequestComplete(event RequestEvent) {
	ev := o.logger.Debug()
	if !event.Success {
		ev = o.logger.Warn().Str("error_code", event.ErrorCode)
	}
	ev.Str("op", event.Op).
		Str("method", event.Method).
		Str("path", event.Path).
		Int("attempts", event.Attempts).
		Int64("latency_ms", event.LatencyMs).
		Msg("dpr_request")
}

// NoopObserver discards all events. Useful for tests.
type NoopObserver struct{}

func (NoopObserver) OnRequestComplete(RequestEvent) {}
