package types

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// SeriesID identifies a token series. IDs are assigned from a monotonic
// counter and rendered as decimal strings ("1", "2", ...); they are never
// reused and never decrease.
type SeriesID = string

// TokenID identifies a minted token as "<series>:<sequence>".
type TokenID = string

// AccountID identifies an account in the external ownership ledger.
type AccountID = string

// Identifier formatting. The title and edition delimiters are advertised to
// marketplaces so they can render "Title #3/10" style names.
const (
	TokenDelimiter   = ":"
	TitleDelimiter   = " #"
	EditionDelimiter = "/"
)

// Royalty table limits, in basis points (1/10000).
const (
	MaxRoyaltyAccounts = 10
	MaxRoyaltyBasisPts = 9000
	FullShareBasisPts  = 10000
)

// RoyaltyTable maps beneficiary accounts to basis-point shares of a
// settlement amount. The creator's share is not stored; it is derived at
// payout time as the remainder up to 10000.
type RoyaltyTable map[AccountID]uint32

// TotalShares sums the table's basis points. The sum is widened to uint64 so
// entries near the uint32 ceiling cannot wrap past the creation-time cap.
func (r RoyaltyTable) TotalShares() uint64 {
	var total uint64
	for _, share := range r {
		total += uint64(share)
	}
	return total
}

// Clone copies the table so callers cannot mutate registry state.
func (r RoyaltyTable) Clone() RoyaltyTable {
	if r == nil {
		return nil
	}
	out := make(RoyaltyTable, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Metadata describes a series and every token minted from it. Title is the
// only required field.
type Metadata struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description,omitempty"`
	Media       string `json:"media,omitempty"`
	Reference   string `json:"reference,omitempty"`

	// Copies is the supply cap. Nil means unbounded.
	Copies *uint64 `json:"copies,omitempty"`
}

// SeriesInfo is the read-only view of a series returned by queries.
type SeriesInfo struct {
	SeriesID  SeriesID         `json:"seriesId"`
	Metadata  Metadata         `json:"metadata"`
	CreatorID AccountID        `json:"creatorId"`
	Royalty   RoyaltyTable     `json:"royalty"`
	Price     *decimal.Decimal `json:"price,omitempty"`
	AssetID   *AccountID       `json:"assetId,omitempty"`
	Mintable  bool             `json:"mintable"`
}

// Token is the read-only view of a minted token.
type Token struct {
	TokenID  TokenID   `json:"tokenId"`
	OwnerID  AccountID `json:"ownerId"`
	Metadata Metadata  `json:"metadata"`
}

// Payout maps accounts to the amounts owed to them from a settlement. The
// amounts always sum to the settlement amount exactly.
type Payout struct {
	Payout map[AccountID]decimal.Decimal `json:"payout"`
}

// TransferMessage is the message attached to an inbound token transfer that
// requests a mint. An empty message is a hard failure.
type TransferMessage struct {
	SeriesID   SeriesID  `json:"token_series_id"`
	ReceiverID AccountID `json:"receiver_id"`
}

// Format reports the delimiters used in token identifiers and display names.
type Format struct {
	TokenDelimiter   string `json:"tokenDelimiter"`
	TitleDelimiter   string `json:"titleDelimiter"`
	EditionDelimiter string `json:"editionDelimiter"`
}

// Config contains global configuration for the editions engine.
type Config struct {
	// StorageFee is the per-token fee withheld from the payer's escrow
	// balance on each mint; the rest of the balance is refunded.
	StorageFee decimal.Decimal `json:"storageFee"`

	LogLevel      string `json:"logLevel,omitempty"`
	EnableMetrics bool   `json:"enableMetrics,omitempty"`
}

// Error is the error type returned by every engine operation.
type Error struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// Errorf builds an *Error with a formatted message.
func Errorf(code string, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// ErrCode extracts the engine error code, or "" for foreign errors.
func ErrCode(err error) string {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return ""
}
