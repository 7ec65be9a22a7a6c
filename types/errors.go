package types

// Error codes, grouped by how the failing operation classifies them.
// Validation and precondition failures are rejected before any state
// mutation; invariant violations should be unreachable and abort the call.
const (
	// -----------------------------
	// VALIDATION
	// -----------------------------
	ErrInvalidMetadataTitle     = "invalid_metadata_title"
	ErrRoyaltyExceedsAccounts   = "royalty_exceeds_accounts"
	ErrRoyaltyExceedsMaximum    = "royalty_exceeds_maximum"
	ErrInvalidAmount            = "invalid_amount"
	ErrInvalidAsset             = "invalid_asset"
	ErrEmptyTransferMessage     = "empty_transfer_message"
	ErrMalformedTransferMessage = "malformed_transfer_message"
	ErrInvalidLimit             = "invalid_limit"
	ErrOutOfBounds              = "out_of_bounds"
	ErrInvalidTokenID           = "invalid_token_id"

	// -----------------------------
	// PRECONDITION
	// -----------------------------
	ErrSeriesNotFound              = "series_not_found"
	ErrTokenNotFound               = "token_not_found"
	ErrNotRegistered               = "not_registered"
	ErrNotEnoughDeposit            = "not_enough_deposit"
	ErrNotForSale                  = "not_for_sale"
	ErrSeriesNotMintable           = "series_not_mintable"
	ErrSeriesSupplyMaxed           = "series_supply_maxed"
	ErrSupplyDecreaseBelowMinted   = "supply_decrease_below_minted"
	ErrSeriesCopiesMustBeUnbounded = "series_copies_unbounded_required"
	ErrSeriesCopiesMustBeBounded   = "series_copies_bounded_required"
	ErrInsufficientBalance         = "insufficient_balance"
	ErrIncorrectToken              = "incorrect_token"
	ErrAmountLessThanPrice         = "amount_less_than_price"
	ErrCreatorOnly                 = "creator_only"
	ErrOwnerOnly                   = "owner_only"
	ErrPayoutFanoutExceeded        = "payout_fanout_exceeded"

	// -----------------------------
	// INVARIANT
	// -----------------------------
	ErrPayoutOverflow = "payout_overflow"
	ErrNegativeRefund = "negative_refund"
)
