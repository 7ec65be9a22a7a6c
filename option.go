package editions

import (
	"github.com/shopspring/decimal"

	"github.com/popula/editions/ledger"
	"github.com/popula/editions/logger"
	"github.com/popula/editions/metrics"
	"github.com/popula/editions/outbox"
)

type Option func(*Editions)

func WithLogger(l logger.Logger) Option {
	return func(e *Editions) {
		e.logger = l
	}
}

func WithMetrics(r metrics.Recorder) Option {
	return func(e *Editions) {
		e.metrics = r
	}
}

// WithLedger plugs in the external ownership ledger. Defaults to the
// in-process memory ledger.
func WithLedger(l ledger.TokenLedger) Option {
	return func(e *Editions) {
		e.ledger = l
	}
}

// WithDispatcher plugs in the delivery mechanism for post-commit refunds
// and notifications.
func WithDispatcher(d outbox.Dispatcher) Option {
	return func(e *Editions) {
		e.dispatcher = d
	}
}

// WithStorageFee sets the per-token storage fee withheld from the payer's
// escrow balance on each mint.
func WithStorageFee(fee decimal.Decimal) Option {
	return func(e *Editions) {
		e.storageFee = fee
	}
}
