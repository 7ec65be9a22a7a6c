// Package editions implements a limited-supply edition engine: series
// creation, supply-capped minting paid from prepaid escrow or inbound token
// transfers, and deterministic royalty payouts.
package editions

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/popula/editions/escrow"
	"github.com/popula/editions/ledger"
	"github.com/popula/editions/logger"
	"github.com/popula/editions/metrics"
	"github.com/popula/editions/minting"
	"github.com/popula/editions/outbox"
	"github.com/popula/editions/payment"
	"github.com/popula/editions/payout"
	"github.com/popula/editions/registry"
	"github.com/popula/editions/types"
	"github.com/popula/editions/utils"
)

// Editions is the main struct that wires the series registry, the escrow
// ledger, the minting engine, the payment gateways, and the payout
// calculator behind a single serialized entry point.
//
// Every mutating operation runs under one mutex, reproducing the
// serialized-call execution model the engine's invariants assume. Outbox
// messages collected during an operation are dispatched only after the
// operation has committed and the mutex is released.
type Editions struct {
	mu sync.Mutex

	registry   *registry.Registry
	escrow     *escrow.Ledger
	ledger     ledger.TokenLedger
	box        *outbox.Outbox
	engine     *minting.Engine
	gateway    *payment.Gateway
	calculator *payout.Calculator

	dispatcher outbox.Dispatcher
	logger     logger.Logger
	metrics    metrics.Recorder
	storageFee decimal.Decimal
}

// New creates an Editions engine with the given configuration.
func New(config *types.Config, opts ...Option) *Editions {
	e := &Editions{
		registry:   registry.NewRegistry(),
		escrow:     escrow.NewLedger(),
		ledger:     ledger.NewMemoryLedger(),
		box:        outbox.New(),
		calculator: payout.NewCalculator(),
		dispatcher: outbox.NoopDispatcher{},
		logger:     logger.NoopLogger{},
		metrics:    metrics.NoopRecorder{},
	}
	if config != nil {
		e.storageFee = config.StorageFee
		if config.LogLevel != "" {
			e.logger = logger.NewZapLogger(config.LogLevel)
		}
		if config.EnableMetrics {
			e.metrics = metrics.NewPrometheusRecorder()
		}
	}

	for _, opt := range opts {
		opt(e)
	}

	e.engine = minting.NewEngine(e.registry, e.escrow, e.ledger, e.box, e.storageFee)
	e.gateway = payment.NewGateway(e.registry, e.escrow, e.engine)
	return e
}

// NewWithDefaults creates an Editions engine with a zero storage fee, no
// logging, and no metrics.
func NewWithDefaults(opts ...Option) *Editions {
	return New(&types.Config{}, opts...)
}

// commit drains the outbox while still holding the lock; the caller
// dispatches the returned messages after unlocking.
func (e *Editions) commit() []outbox.Message {
	return e.box.Drain()
}

// abort drops any effects queued by a failed operation.
func (e *Editions) abort() {
	e.box.Discard()
}

func (e *Editions) observe(op string, seriesID types.SeriesID, start time.Time) {
	labels := map[string]string{"series": seriesID}
	e.metrics.IncCounter(op, labels)
	e.metrics.ObserveLatency(op, time.Since(start), labels)
}

// Deposit credits amount to the account's prepaid escrow balance,
// registering the account on first use.
func (e *Editions) Deposit(account types.AccountID, amount decimal.Decimal) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.escrow.Deposit(account, amount); err != nil {
		return err
	}
	e.logger.Debug("escrow deposit", map[string]any{
		"account": account,
		"amount":  amount.String(),
	})
	return nil
}

// Balance returns the account's escrow balance (zero if unregistered).
func (e *Editions) Balance(account types.AccountID) decimal.Decimal {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.escrow.Balance(account)
}

// CreateSeries registers a new series for creator and returns its id.
//
// The attached deposit is the creator's storage prepayment: a series created
// with no price and a supply cap of exactly 1 consumes it to mint the single
// edition to the creator immediately; otherwise it is refunded through the
// outbox. An optional notify target receives a fire-and-forget
// series-created notification after commit.
func (e *Editions) CreateSeries(
	creator types.AccountID,
	metadata types.Metadata,
	price *decimal.Decimal,
	assetID *types.AccountID,
	royalty types.RoyaltyTable,
	notifyID *types.AccountID,
	attachedDeposit decimal.Decimal,
) (types.SeriesID, error) {
	start := time.Now()
	e.mu.Lock()

	seriesID, err := e.createSeries(creator, metadata, price, assetID, royalty, notifyID, attachedDeposit)
	if err != nil {
		e.abort()
		e.mu.Unlock()
		return "", err
	}
	msgs := e.commit()
	e.mu.Unlock()

	outbox.DispatchAll(e.dispatcher, e.logger, msgs)
	e.observe("create_series", seriesID, start)
	e.logger.Info("series created", map[string]any{
		"series":  seriesID,
		"creator": creator,
	})
	return seriesID, nil
}

func (e *Editions) createSeries(
	creator types.AccountID,
	metadata types.Metadata,
	price *decimal.Decimal,
	assetID *types.AccountID,
	royalty types.RoyaltyTable,
	notifyID *types.AccountID,
	attachedDeposit decimal.Decimal,
) (types.SeriesID, error) {
	if err := utils.ValidateAmount(attachedDeposit); err != nil {
		return "", err
	}

	autoMint := price == nil && metadata.Copies != nil && *metadata.Copies == 1
	if autoMint && !e.escrow.Balance(creator).Add(attachedDeposit).GreaterThan(e.storageFee) {
		// Funding is checked before the series is registered so a failed
		// single-edition creation records nothing at all.
		return "", types.Errorf(types.ErrNotEnoughDeposit, "not enough deposit")
	}

	seriesID, err := e.registry.Create(creator, metadata, price, assetID, royalty)
	if err != nil {
		return "", err
	}

	if autoMint {
		// Single free edition: the deposit funds the storage fee and the
		// lone copy goes straight to the creator.
		if err := e.escrow.Deposit(creator, attachedDeposit); err != nil {
			return "", err
		}
		if _, err := e.engine.Mint(creator, seriesID, creator); err != nil {
			return "", err
		}
	} else if attachedDeposit.IsPositive() {
		e.box.Refund(creator, attachedDeposit)
	}

	if notifyID != nil {
		e.box.SeriesCreated(*notifyID, seriesID)
	}
	return seriesID, nil
}

// SetSeriesPrice updates or clears the price pair of a series. Creator
// only; the series must still be mintable. Returns the applied price, nil
// when cleared.
func (e *Editions) SetSeriesPrice(
	caller types.AccountID,
	seriesID types.SeriesID,
	price *decimal.Decimal,
	assetID *types.AccountID,
) (*decimal.Decimal, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry.SetPrice(caller, seriesID, price, assetID)
}

// SetSeriesNonMintable permanently freezes minting on an unbounded series.
func (e *Editions) SetSeriesNonMintable(caller types.AccountID, seriesID types.SeriesID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.registry.SetNonMintable(caller, seriesID); err != nil {
		return err
	}
	e.logger.Info("series frozen", map[string]any{"series": seriesID})
	return nil
}

// DecreaseSeriesSupply lowers a bounded series' supply cap by amount and
// returns the new cap. Reaching the minted count freezes the series.
func (e *Editions) DecreaseSeriesSupply(
	caller types.AccountID,
	seriesID types.SeriesID,
	amount uint64,
) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry.DecreaseSupply(caller, seriesID, amount)
}

// Mint mints the next edition of the series to receiver. The attached
// deposit is credited to the payer's escrow balance first; a payer other
// than the series creator then pays the series price out of that balance,
// while the creator mints without paying it. A failed mint leaves the
// payer's balance exactly as it was before the call.
func (e *Editions) Mint(
	payer types.AccountID,
	seriesID types.SeriesID,
	receiver types.AccountID,
	attachedDeposit decimal.Decimal,
) (types.TokenID, error) {
	start := time.Now()
	e.mu.Lock()

	tokenID, err := e.mint(payer, seriesID, receiver, attachedDeposit)
	if err != nil {
		e.abort()
		e.mu.Unlock()
		return "", err
	}
	msgs := e.commit()
	e.mu.Unlock()

	outbox.DispatchAll(e.dispatcher, e.logger, msgs)
	e.observe("mint", seriesID, start)
	e.logger.Info("token minted", map[string]any{
		"token":    tokenID,
		"series":   seriesID,
		"receiver": receiver,
	})
	return tokenID, nil
}

func (e *Editions) mint(
	payer types.AccountID,
	seriesID types.SeriesID,
	receiver types.AccountID,
	attachedDeposit decimal.Decimal,
) (types.TokenID, error) {
	if err := utils.ValidateAmount(attachedDeposit); err != nil {
		return "", err
	}

	wasRegistered := e.escrow.Registered(payer)
	if err := e.escrow.Deposit(payer, attachedDeposit); err != nil {
		return "", err
	}

	info, err := e.registry.Info(seriesID)
	if err != nil {
		e.undoDeposit(payer, attachedDeposit, wasRegistered)
		return "", err
	}

	var tokenID types.TokenID
	if payer == info.CreatorID {
		tokenID, err = e.engine.Mint(payer, seriesID, receiver)
	} else {
		tokenID, err = e.gateway.MintWithBalance(payer, seriesID, receiver)
	}
	if err != nil {
		e.undoDeposit(payer, attachedDeposit, wasRegistered)
		return "", err
	}
	return tokenID, nil
}

// undoDeposit reverses the deposit credited at the top of a failed mint so
// the caller observes no state change at all.
func (e *Editions) undoDeposit(payer types.AccountID, amount decimal.Decimal, wasRegistered bool) {
	if !wasRegistered {
		e.escrow.Unregister(payer)
		return
	}
	// The debit cannot fail: nothing else ran between credit and undo.
	_ = e.escrow.Debit(payer, amount)
}

// OnTokenTransfer is the inbound value-transfer notification: sender moved
// amount of assetID to this engine with an attached message naming the
// target series and receiver. On success it returns the minted token id and
// the unspent remainder, which the external transfer mechanism refunds; the
// engine itself never moves the remainder.
func (e *Editions) OnTokenTransfer(
	sender types.AccountID,
	assetID types.AccountID,
	amount decimal.Decimal,
	msg string,
) (types.TokenID, decimal.Decimal, error) {
	start := time.Now()
	e.mu.Lock()

	tokenID, remainder, err := e.gateway.OnTokenTransfer(sender, assetID, amount, msg)
	if err != nil {
		e.abort()
		e.mu.Unlock()
		return "", decimal.Zero, err
	}
	msgs := e.commit()
	e.mu.Unlock()

	outbox.DispatchAll(e.dispatcher, e.logger, msgs)
	seriesID, _ := utils.SeriesOfToken(tokenID)
	e.observe("mint_with_token", seriesID, start)
	e.logger.Info("token minted via transfer", map[string]any{
		"token":     tokenID,
		"sender":    sender,
		"remainder": remainder.String(),
	})
	return tokenID, remainder, nil
}

// Burn removes a token from the ownership ledger. Owner only. The series'
// minted list is left untouched so the sequence is never reissued.
func (e *Editions) Burn(caller types.AccountID, tokenID types.TokenID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	owner, ok := e.ledger.Owner(tokenID)
	if !ok {
		return types.Errorf(types.ErrTokenNotFound, "token %s does not exist", tokenID)
	}
	if owner != caller {
		return types.Errorf(types.ErrOwnerOnly, "token owner only")
	}

	e.ledger.IndexByOwnerRemove(owner, tokenID)
	e.ledger.RemoveMetadata(tokenID)
	e.ledger.RemoveOwner(tokenID)

	e.logger.Info("token burned", map[string]any{"token": tokenID, "owner": owner})
	return nil
}

// TransferPayout transfers the token to receiver and, when a settlement
// balance is supplied, returns the royalty payout for that balance with the
// outgoing owner as the remainder recipient. maxLenPayout caps the royalty
// fan-out; zero means no cap.
func (e *Editions) TransferPayout(
	caller types.AccountID,
	receiver types.AccountID,
	tokenID types.TokenID,
	balance *decimal.Decimal,
	maxLenPayout uint32,
) (*types.Payout, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	previousOwner, ok := e.ledger.Owner(tokenID)
	if !ok {
		return nil, types.Errorf(types.ErrTokenNotFound, "token %s does not exist", tokenID)
	}
	if previousOwner != caller {
		return nil, types.Errorf(types.ErrOwnerOnly, "token owner only")
	}

	var result *types.Payout
	if balance != nil {
		seriesID, err := utils.SeriesOfToken(tokenID)
		if err != nil {
			return nil, err
		}
		info, err := e.registry.Info(seriesID)
		if err != nil {
			return nil, err
		}
		result, err = e.calculator.ComputeTransfer(info, *balance, previousOwner, maxLenPayout)
		if err != nil {
			return nil, err
		}
	}

	if err := e.ledger.Transfer(receiver, tokenID); err != nil {
		return nil, err
	}

	e.logger.Info("token transferred", map[string]any{
		"token": tokenID,
		"from":  previousOwner,
		"to":    receiver,
	})
	return result, nil
}

// PayoutPreview computes the royalty payout a settlement of balance on the
// given token would produce, with the creator as remainder recipient.
// Read-only.
func (e *Editions) PayoutPreview(tokenID types.TokenID, balance decimal.Decimal) (*types.Payout, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	seriesID, err := utils.SeriesOfToken(tokenID)
	if err != nil {
		return nil, err
	}
	info, err := e.registry.Info(seriesID)
	if err != nil {
		return nil, err
	}
	return e.calculator.Compute(info, balance)
}

// GetSeries returns one series by id.
func (e *Editions) GetSeries(seriesID types.SeriesID) (*types.SeriesInfo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry.Info(seriesID)
}

// ListSeries returns a page of series in creation order.
func (e *Editions) ListSeries(fromIndex uint64, limit uint64) ([]*types.SeriesInfo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry.List(fromIndex, limit)
}

// SeriesSupply returns the number of tokens minted against a series.
func (e *Editions) SeriesSupply(seriesID types.SeriesID) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry.Supply(seriesID)
}

// TokensBySeries returns a page of a series' tokens in mint order, resolved
// against the ownership ledger.
func (e *Editions) TokensBySeries(
	seriesID types.SeriesID,
	fromIndex uint64,
	limit uint64,
) ([]*types.Token, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	tokenIDs, err := e.registry.Tokens(seriesID, fromIndex, limit)
	if err != nil {
		return nil, err
	}

	out := make([]*types.Token, 0, len(tokenIDs))
	for _, tokenID := range tokenIDs {
		token, err := e.token(tokenID)
		if err != nil {
			// Burned tokens stay in the series list but have no owner.
			continue
		}
		out = append(out, token)
	}
	return out, nil
}

// Token returns one token by id, resolved against the ownership ledger.
func (e *Editions) Token(tokenID types.TokenID) (*types.Token, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.token(tokenID)
}

func (e *Editions) token(tokenID types.TokenID) (*types.Token, error) {
	owner, ok := e.ledger.Owner(tokenID)
	if !ok {
		return nil, types.Errorf(types.ErrTokenNotFound, "token %s does not exist", tokenID)
	}
	metadata, _ := e.ledger.Metadata(tokenID)
	if _, sequence, err := utils.SplitTokenID(tokenID); err == nil {
		metadata.Title = utils.DisplayTitle(metadata.Title, sequence, metadata.Copies)
	}
	return &types.Token{
		TokenID:  tokenID,
		OwnerID:  owner,
		Metadata: metadata,
	}, nil
}

// StorageFee reports the per-token storage fee withheld on each mint.
func (e *Editions) StorageFee() decimal.Decimal {
	return e.storageFee
}

// SeriesFormat reports the delimiters used in token ids and display names.
func (e *Editions) SeriesFormat() types.Format {
	return types.Format{
		TokenDelimiter:   types.TokenDelimiter,
		TitleDelimiter:   types.TitleDelimiter,
		EditionDelimiter: types.EditionDelimiter,
	}
}
