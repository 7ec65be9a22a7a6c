package editions

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/popula/editions/outbox"
	"github.com/popula/editions/types"
)

// captureDispatcher records dispatched outbox messages.
type captureDispatcher struct {
	messages []outbox.Message
}

func (c *captureDispatcher) Dispatch(msg outbox.Message) error {
	c.messages = append(c.messages, msg)
	return nil
}

func (c *captureDispatcher) refunds(account types.AccountID) []decimal.Decimal {
	var out []decimal.Decimal
	for _, msg := range c.messages {
		if msg.Kind == outbox.KindRefund && msg.Account == account {
			out = append(out, msg.Amount)
		}
	}
	return out
}

func dec(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func acct(id string) *types.AccountID {
	a := types.AccountID(id)
	return &a
}

func u64(v uint64) *uint64 { return &v }

func newEngine(t *testing.T, storageFee int64) (*Editions, *captureDispatcher) {
	t.Helper()
	d := &captureDispatcher{}
	e := NewWithDefaults(
		WithStorageFee(decimal.NewFromInt(storageFee)),
		WithDispatcher(d),
	)
	return e, d
}

func TestCreatePricedSeriesAndMint(t *testing.T) {
	e, d := newEngine(t, 10)

	seriesID, err := e.CreateSeries("creator",
		types.Metadata{Title: "Poster", Copies: u64(100)},
		dec(100), acct("usdx.token"),
		types.RoyaltyTable{"artist": 500},
		acct("market.notify"),
		decimal.NewFromInt(30),
	)
	require.NoError(t, err)
	assert.Equal(t, "1", seriesID)

	// The attached deposit comes back and the notify target is pinged,
	// both after commit.
	require.Len(t, d.messages, 2)
	assert.Equal(t, outbox.KindRefund, d.messages[0].Kind)
	assert.True(t, d.messages[0].Amount.Equal(decimal.NewFromInt(30)))
	assert.Equal(t, outbox.KindSeriesCreated, d.messages[1].Kind)
	assert.Equal(t, "market.notify", d.messages[1].NotifyID)
	assert.Equal(t, seriesID, d.messages[1].SeriesID)

	require.NoError(t, e.Deposit("buyer", decimal.NewFromInt(200)))
	tokenID, err := e.Mint("buyer", seriesID, "buyer", decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, "1:1", tokenID)

	token, err := e.Token(tokenID)
	require.NoError(t, err)
	assert.Equal(t, "buyer", token.OwnerID)
	assert.Equal(t, "Poster #1/100", token.Metadata.Title)

	supply, err := e.SeriesSupply(seriesID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), supply)

	// 200 deposited - 100 price - 10 fee = 90 refunded; balance drained.
	refunds := d.refunds("buyer")
	require.Len(t, refunds, 1)
	assert.True(t, refunds[0].Equal(decimal.NewFromInt(90)))
	assert.True(t, e.Balance("buyer").IsZero())
}

func TestSingleCopyFreeSeriesAutoMints(t *testing.T) {
	e, _ := newEngine(t, 10)

	seriesID, err := e.CreateSeries("creator",
		types.Metadata{Title: "One of one", Copies: u64(1)},
		nil, nil, nil, nil,
		decimal.NewFromInt(50),
	)
	require.NoError(t, err)

	// The single edition went straight to the creator and the series froze.
	token, err := e.Token(seriesID + ":1")
	require.NoError(t, err)
	assert.Equal(t, "creator", token.OwnerID)

	info, err := e.GetSeries(seriesID)
	require.NoError(t, err)
	assert.False(t, info.Mintable)

	_, err = e.Mint("creator", seriesID, "creator", decimal.NewFromInt(50))
	require.Error(t, err)
	assert.Equal(t, types.ErrSeriesSupplyMaxed, types.ErrCode(err))
}

func TestSingleCopyFreeSeriesNeedsDeposit(t *testing.T) {
	e, _ := newEngine(t, 10)

	// Auto-mint cannot cover the storage fee: the whole creation aborts and
	// nothing is registered.
	_, err := e.CreateSeries("creator",
		types.Metadata{Title: "One of one", Copies: u64(1)},
		nil, nil, nil, nil,
		decimal.NewFromInt(10),
	)
	require.Error(t, err)
	assert.Equal(t, types.ErrNotEnoughDeposit, types.ErrCode(err))

	assert.True(t, e.Balance("creator").IsZero())
	_, err = e.ListSeries(0, 10)
	require.Error(t, err, "no series was recorded")
}

func TestExternalTransferMintScenarios(t *testing.T) {
	e, _ := newEngine(t, 1)

	seriesID, err := e.CreateSeries("creator",
		types.Metadata{Title: "Poster"},
		dec(100), acct("tokenX"),
		nil, nil, decimal.Zero,
	)
	require.NoError(t, err)
	require.NoError(t, e.Deposit("buyer", decimal.NewFromInt(5)))

	msg := `{"token_series_id":"` + seriesID + `","receiver_id":"buyer"}`

	// 150 in the right currency: mint succeeds, 50 reported back.
	tokenID, remainder, err := e.OnTokenTransfer("buyer", "tokenX", decimal.NewFromInt(150), msg)
	require.NoError(t, err)
	assert.Equal(t, seriesID+":1", tokenID)
	assert.True(t, remainder.Equal(decimal.NewFromInt(50)))

	// 60 is below the price.
	require.NoError(t, e.Deposit("buyer", decimal.NewFromInt(5)))
	_, _, err = e.OnTokenTransfer("buyer", "tokenX", decimal.NewFromInt(60), msg)
	require.Error(t, err)
	assert.Equal(t, types.ErrAmountLessThanPrice, types.ErrCode(err))

	// Currency Y does not match the configured currency X.
	_, _, err = e.OnTokenTransfer("buyer", "tokenY", decimal.NewFromInt(150), msg)
	require.Error(t, err)
	assert.Equal(t, types.ErrIncorrectToken, types.ErrCode(err))

	supply, err := e.SeriesSupply(seriesID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), supply, "failed attempts must not mint")
}

func TestMintFailureLeavesNoTrace(t *testing.T) {
	e, _ := newEngine(t, 0)

	seriesID, err := e.CreateSeries("creator",
		types.Metadata{Title: "Free"}, nil, nil, nil, nil, decimal.Zero)
	require.NoError(t, err)

	// A non-creator cannot mint a series with no price.
	_, err = e.Mint("stranger", seriesID, "stranger", decimal.NewFromInt(10))
	require.Error(t, err)
	assert.Equal(t, types.ErrNotForSale, types.ErrCode(err))

	// The deposit credited at the top of the failed mint was rolled back,
	// including the implicit registration.
	assert.True(t, e.Balance("stranger").IsZero())
	_, err = e.Mint("stranger", seriesID, "stranger", decimal.Zero)
	require.Error(t, err)
}

func TestPayoutPreviewScenario(t *testing.T) {
	e, _ := newEngine(t, 1)

	seriesID, err := e.CreateSeries("creator",
		types.Metadata{Title: "Poster"},
		nil, nil,
		types.RoyaltyTable{"a": 500, "b": 300},
		nil, decimal.Zero,
	)
	require.NoError(t, err)

	require.NoError(t, e.Deposit("creator", decimal.NewFromInt(10)))
	tokenID, err := e.Mint("creator", seriesID, "creator", decimal.Zero)
	require.NoError(t, err)

	p, err := e.PayoutPreview(tokenID, decimal.NewFromInt(1000))
	require.NoError(t, err)
	require.Len(t, p.Payout, 3)
	assert.True(t, p.Payout["a"].Equal(decimal.NewFromInt(50)))
	assert.True(t, p.Payout["b"].Equal(decimal.NewFromInt(30)))
	assert.True(t, p.Payout["creator"].Equal(decimal.NewFromInt(920)))
}

func TestTransferPayout(t *testing.T) {
	e, _ := newEngine(t, 1)

	seriesID, err := e.CreateSeries("creator",
		types.Metadata{Title: "Poster"},
		nil, nil,
		types.RoyaltyTable{"artist": 1000},
		nil, decimal.Zero,
	)
	require.NoError(t, err)
	require.NoError(t, e.Deposit("creator", decimal.NewFromInt(10)))
	tokenID, err := e.Mint("creator", seriesID, "seller", decimal.Zero)
	require.NoError(t, err)

	_, err = e.TransferPayout("mallory", "buyer", tokenID, dec(1000), 0)
	require.Error(t, err)
	assert.Equal(t, types.ErrOwnerOnly, types.ErrCode(err))

	p, err := e.TransferPayout("seller", "buyer", tokenID, dec(1000), 10)
	require.NoError(t, err)
	assert.True(t, p.Payout["artist"].Equal(decimal.NewFromInt(100)))
	assert.True(t, p.Payout["seller"].Equal(decimal.NewFromInt(900)))

	token, err := e.Token(tokenID)
	require.NoError(t, err)
	assert.Equal(t, "buyer", token.OwnerID)

	// Transfer without a settlement balance moves the token and skips the
	// payout computation.
	p, err = e.TransferPayout("buyer", "other", tokenID, nil, 0)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestBurn(t *testing.T) {
	e, _ := newEngine(t, 1)

	seriesID, err := e.CreateSeries("creator",
		types.Metadata{Title: "Poster"}, nil, nil, nil, nil, decimal.Zero)
	require.NoError(t, err)
	require.NoError(t, e.Deposit("creator", decimal.NewFromInt(10)))
	tokenID, err := e.Mint("creator", seriesID, "owner", decimal.Zero)
	require.NoError(t, err)

	err = e.Burn("mallory", tokenID)
	require.Error(t, err)
	assert.Equal(t, types.ErrOwnerOnly, types.ErrCode(err))

	require.NoError(t, e.Burn("owner", tokenID))
	_, err = e.Token(tokenID)
	require.Error(t, err)
	assert.Equal(t, types.ErrTokenNotFound, types.ErrCode(err))

	// The sequence is not reissued: the next mint is edition 2.
	require.NoError(t, e.Deposit("creator", decimal.NewFromInt(10)))
	next, err := e.Mint("creator", seriesID, "owner", decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, seriesID+":2", next)
}

func TestQuerySurface(t *testing.T) {
	e, _ := newEngine(t, 1)

	for i := 0; i < 3; i++ {
		_, err := e.CreateSeries("creator",
			types.Metadata{Title: "Poster"}, nil, nil, nil, nil, decimal.Zero)
		require.NoError(t, err)
	}

	page, err := e.ListSeries(1, 10)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "2", page[0].SeriesID)

	_, err = e.ListSeries(3, 1)
	require.Error(t, err)
	assert.Equal(t, types.ErrOutOfBounds, types.ErrCode(err))

	require.NoError(t, e.Deposit("creator", decimal.NewFromInt(10)))
	_, err = e.Mint("creator", "1", "creator", decimal.Zero)
	require.NoError(t, err)

	tokens, err := e.TokensBySeries("1", 0, 10)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "1:1", tokens[0].TokenID)

	format := e.SeriesFormat()
	assert.Equal(t, ":", format.TokenDelimiter)
	assert.Equal(t, " #", format.TitleDelimiter)
	assert.Equal(t, "/", format.EditionDelimiter)

	assert.True(t, e.StorageFee().Equal(decimal.NewFromInt(1)))
}

func TestDecreaseSupplyThroughFacade(t *testing.T) {
	e, _ := newEngine(t, 1)

	seriesID, err := e.CreateSeries("creator",
		types.Metadata{Title: "Poster", Copies: u64(10)},
		nil, nil, nil, nil, decimal.Zero)
	require.NoError(t, err)

	require.NoError(t, e.Deposit("creator", decimal.NewFromInt(10)))
	_, err = e.Mint("creator", seriesID, "creator", decimal.Zero)
	require.NoError(t, err)

	_, err = e.DecreaseSeriesSupply("mallory", seriesID, 1)
	require.Error(t, err)
	assert.Equal(t, types.ErrCreatorOnly, types.ErrCode(err))

	newCap, err := e.DecreaseSeriesSupply("creator", seriesID, 9)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), newCap)

	info, err := e.GetSeries(seriesID)
	require.NoError(t, err)
	assert.False(t, info.Mintable)
}
