// Package payment holds the two entry paths that pay for a mint: spending a
// prepaid escrow balance, or presenting an inbound token-transfer
// notification. Both normalize to (payer, amount, series, receiver) before
// handing off to the minting engine.
package payment

import (
	"github.com/shopspring/decimal"

	"github.com/popula/editions/escrow"
	"github.com/popula/editions/minting"
	"github.com/popula/editions/registry"
	"github.com/popula/editions/types"
	"github.com/popula/editions/utils"
)

type Gateway struct {
	registry *registry.Registry
	escrow   *escrow.Ledger
	engine   *minting.Engine
}

func NewGateway(reg *registry.Registry, esc *escrow.Ledger, eng *minting.Engine) *Gateway {
	return &Gateway{
		registry: reg,
		escrow:   esc,
		engine:   eng,
	}
}

// MintWithBalance pays the series price out of the payer's escrow balance
// and mints to receiver. The debit is undone if the engine rejects the
// mint, so a failure leaves the balance exactly as it was.
func (g *Gateway) MintWithBalance(
	payer types.AccountID,
	seriesID types.SeriesID,
	receiver types.AccountID,
) (types.TokenID, error) {
	info, err := g.registry.Info(seriesID)
	if err != nil {
		return "", err
	}
	if info.Price == nil {
		return "", types.Errorf(types.ErrNotForSale, "series %s is not for sale", seriesID)
	}

	price := *info.Price
	if err := g.escrow.Debit(payer, price); err != nil {
		return "", err
	}

	tokenID, err := g.engine.Mint(payer, seriesID, receiver)
	if err != nil {
		if cerr := g.escrow.Credit(payer, price); cerr != nil {
			return "", cerr
		}
		return "", err
	}
	return tokenID, nil
}

// OnTokenTransfer handles an inbound value-transfer notification: amount of
// assetID arrived from sender with an attached message naming the series
// and receiver. It validates the asset and amount against the series price,
// mints, and reports the unspent remainder. The remainder is returned for
// the external transfer mechanism to act on, never refunded here.
func (g *Gateway) OnTokenTransfer(
	sender types.AccountID,
	assetID types.AccountID,
	amount decimal.Decimal,
	msg string,
) (types.TokenID, decimal.Decimal, error) {
	message, err := utils.ParseTransferMessage(msg)
	if err != nil {
		return "", decimal.Zero, err
	}
	if err := utils.ValidateAmount(amount); err != nil {
		return "", decimal.Zero, err
	}
	if !g.escrow.Registered(sender) {
		return "", decimal.Zero, types.Errorf(types.ErrNotRegistered, "not registered")
	}

	info, err := g.registry.Info(message.SeriesID)
	if err != nil {
		return "", decimal.Zero, err
	}
	if info.Price == nil {
		return "", decimal.Zero, types.Errorf(types.ErrNotForSale,
			"series %s is not for sale", message.SeriesID)
	}
	if *info.AssetID != assetID {
		return "", decimal.Zero, types.Errorf(types.ErrIncorrectToken, "incorrect token")
	}

	price := *info.Price
	if amount.LessThan(price) {
		return "", decimal.Zero, types.Errorf(types.ErrAmountLessThanPrice,
			"amount is less than price: %s", price.String())
	}

	tokenID, err := g.engine.Mint(sender, message.SeriesID, message.ReceiverID)
	if err != nil {
		return "", decimal.Zero, err
	}
	return tokenID, amount.Sub(price), nil
}
