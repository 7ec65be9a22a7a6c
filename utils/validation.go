package utils

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/popula/editions/types"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// ValidateMetadata checks that series metadata carries the required fields.
func ValidateMetadata(md *types.Metadata) error {
	if err := validate.Struct(md); err != nil {
		return types.Errorf(types.ErrInvalidMetadataTitle, "metadata.title is required")
	}
	if strings.TrimSpace(md.Title) == "" {
		return types.Errorf(types.ErrInvalidMetadataTitle, "metadata.title is required")
	}
	return nil
}

// ValidateAmount checks that an amount is a non-negative decimal.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return types.Errorf(types.ErrInvalidAmount, "amount cannot be negative")
	}
	return nil
}

// ValidateRoyalty enforces the creation-time royalty table limits: at most
// MaxRoyaltyAccounts beneficiaries, shares summing to at most
// MaxRoyaltyBasisPts.
func ValidateRoyalty(royalty types.RoyaltyTable) error {
	if len(royalty) > types.MaxRoyaltyAccounts {
		return types.Errorf(types.ErrRoyaltyExceedsAccounts,
			"royalty exceeds %d accounts", types.MaxRoyaltyAccounts)
	}
	if total := royalty.TotalShares(); total > types.MaxRoyaltyBasisPts {
		return types.Errorf(types.ErrRoyaltyExceedsMaximum,
			"royalty total %d exceeds maximum %d", total, types.MaxRoyaltyBasisPts)
	}
	return nil
}

// ValidateAssetID validates a payment asset identifier. Hex-prefixed ids
// must be well-formed EVM contract addresses; anything else is treated as a
// named asset account and only checked for emptiness.
func ValidateAssetID(assetID types.AccountID) error {
	if assetID == "" {
		return types.Errorf(types.ErrInvalidAsset, "asset id cannot be empty")
	}
	if strings.HasPrefix(assetID, "0x") && !common.IsHexAddress(assetID) {
		return types.Errorf(types.ErrInvalidAsset, "invalid asset contract address: %s", assetID)
	}
	return nil
}
