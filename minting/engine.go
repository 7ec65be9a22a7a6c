// Package minting allocates numbered editions against a series. The engine
// is the only writer of series mint state: the token list and the mintable
// flag change nowhere else during a mint.
package minting

import (
	"github.com/shopspring/decimal"

	"github.com/popula/editions/escrow"
	"github.com/popula/editions/ledger"
	"github.com/popula/editions/outbox"
	"github.com/popula/editions/registry"
	"github.com/popula/editions/types"
)

// Engine materializes ownership for newly allocated editions and settles the
// payer's storage rent: the per-token storage fee is withheld from the
// payer's escrow balance and everything above it is refunded through the
// outbox.
type Engine struct {
	registry   *registry.Registry
	escrow     *escrow.Ledger
	ledger     ledger.TokenLedger
	outbox     *outbox.Outbox
	storageFee decimal.Decimal
}

func NewEngine(
	reg *registry.Registry,
	esc *escrow.Ledger,
	led ledger.TokenLedger,
	box *outbox.Outbox,
	storageFee decimal.Decimal,
) *Engine {
	return &Engine{
		registry:   reg,
		escrow:     esc,
		ledger:     led,
		outbox:     box,
		storageFee: storageFee,
	}
}

// StorageFee is the per-token fee withheld on each mint.
func (e *Engine) StorageFee() decimal.Decimal {
	return e.storageFee
}

// Mint allocates the next edition of the series and records it in the
// ownership ledger under receiver. The payer must hold an escrow balance
// strictly above the storage fee; the excess is drained and refunded.
//
// Every precondition is checked before any state changes, so a rejected
// mint leaves nothing behind.
func (e *Engine) Mint(
	payer types.AccountID,
	seriesID types.SeriesID,
	receiver types.AccountID,
) (types.TokenID, error) {
	if !e.escrow.Registered(payer) {
		return "", types.Errorf(types.ErrNotRegistered, "not registered")
	}

	refund := e.escrow.Balance(payer).Sub(e.storageFee)
	if !refund.IsPositive() {
		return "", types.Errorf(types.ErrNotEnoughDeposit, "not enough deposit")
	}

	tokenID, metadata, err := e.registry.Allocate(seriesID)
	if err != nil {
		return "", err
	}

	e.ledger.SetOwner(tokenID, receiver)
	e.ledger.SetMetadata(tokenID, metadata)
	e.ledger.IndexByOwnerAdd(receiver, tokenID)

	drained, err := e.escrow.Drain(payer)
	if err != nil {
		return "", err
	}
	if drained.Sub(refund).IsNegative() {
		// Unreachable if the refund arithmetic above is right.
		return "", types.Errorf(types.ErrNegativeRefund, "storage refund exceeds drained balance")
	}
	e.outbox.Refund(payer, refund)

	return tokenID, nil
}
