package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/popula/editions/types"
)

func TestValidateMetadata(t *testing.T) {
	require.NoError(t, ValidateMetadata(&types.Metadata{Title: "Edition"}))

	err := ValidateMetadata(&types.Metadata{})
	require.Error(t, err)
	assert.Equal(t, types.ErrInvalidMetadataTitle, types.ErrCode(err))

	err = ValidateMetadata(&types.Metadata{Title: "  "})
	require.Error(t, err)
	assert.Equal(t, types.ErrInvalidMetadataTitle, types.ErrCode(err))
}

func TestValidateAmount(t *testing.T) {
	require.NoError(t, ValidateAmount(decimal.Zero))
	require.NoError(t, ValidateAmount(decimal.NewFromInt(5)))

	err := ValidateAmount(decimal.NewFromInt(-5))
	require.Error(t, err)
	assert.Equal(t, types.ErrInvalidAmount, types.ErrCode(err))
}

func TestValidateRoyalty(t *testing.T) {
	require.NoError(t, ValidateRoyalty(nil))
	require.NoError(t, ValidateRoyalty(types.RoyaltyTable{"a": 9000}))

	err := ValidateRoyalty(types.RoyaltyTable{"a": 9001})
	require.Error(t, err)
	assert.Equal(t, types.ErrRoyaltyExceedsMaximum, types.ErrCode(err))
}

func TestValidateRoyaltySumCannotWrap(t *testing.T) {
	// Two shares whose uint32 sum wraps to 500 must still be rejected; the
	// true sum is 4294967796 basis points.
	err := ValidateRoyalty(types.RoyaltyTable{"a": 1 << 31, "b": (1 << 31) + 500})
	require.Error(t, err)
	assert.Equal(t, types.ErrRoyaltyExceedsMaximum, types.ErrCode(err))
}

func TestValidateAssetID(t *testing.T) {
	require.NoError(t, ValidateAssetID("usdx.token"))
	require.NoError(t, ValidateAssetID("0x036CbD53842c5426634e7929541eC2318f3dCF7e"))

	err := ValidateAssetID("")
	require.Error(t, err)
	assert.Equal(t, types.ErrInvalidAsset, types.ErrCode(err))

	err = ValidateAssetID("0x036CbD")
	require.Error(t, err)
	assert.Equal(t, types.ErrInvalidAsset, types.ErrCode(err))
}
