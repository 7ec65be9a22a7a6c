// Package outbox carries the fire-and-forget side effects of an operation:
// storage refunds back to payers and series-created notifications. Messages
// are appended while the operation's state mutation is in flight and
// dispatched only after it has committed, so core correctness never depends
// on delivery.
package outbox

import (
	"github.com/shopspring/decimal"

	"github.com/popula/editions/logger"
	"github.com/popula/editions/types"
)

type MessageKind string

const (
	KindRefund        MessageKind = "refund"
	KindSeriesCreated MessageKind = "series_created"
)

// Message is one pending outbound effect.
type Message struct {
	Kind MessageKind

	// Refund fields.
	Account types.AccountID
	Amount  decimal.Decimal

	// SeriesCreated fields.
	NotifyID types.AccountID
	SeriesID types.SeriesID
}

// Dispatcher delivers committed messages. Delivery is best effort; a failed
// dispatch is logged and dropped, never retried by the core.
type Dispatcher interface {
	Dispatch(msg Message) error
}

// NoopDispatcher drops every message. The default when no external transfer
// or notification mechanism is wired in.
type NoopDispatcher struct{}

func (NoopDispatcher) Dispatch(Message) error { return nil }

// Outbox buffers messages for one in-flight operation.
type Outbox struct {
	pending []Message
}

func New() *Outbox {
	return &Outbox{}
}

func (o *Outbox) Refund(account types.AccountID, amount decimal.Decimal) {
	o.pending = append(o.pending, Message{
		Kind:    KindRefund,
		Account: account,
		Amount:  amount,
	})
}

func (o *Outbox) SeriesCreated(notifyID types.AccountID, seriesID types.SeriesID) {
	o.pending = append(o.pending, Message{
		Kind:     KindSeriesCreated,
		NotifyID: notifyID,
		SeriesID: seriesID,
	})
}

// Drain removes and returns the pending messages. Called under the
// operation lock; the caller dispatches after releasing it.
func (o *Outbox) Drain() []Message {
	msgs := o.pending
	o.pending = nil
	return msgs
}

// Discard drops the pending messages of an aborted operation.
func (o *Outbox) Discard() {
	o.pending = nil
}

// DispatchAll delivers drained messages through the dispatcher, logging
// failures and moving on.
func DispatchAll(d Dispatcher, log logger.Logger, msgs []Message) {
	for _, msg := range msgs {
		if err := d.Dispatch(msg); err != nil {
			log.Warn("outbox dispatch failed", map[string]any{
				"kind":  string(msg.Kind),
				"error": err.Error(),
			})
		}
	}
}
