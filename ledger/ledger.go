// Package ledger defines the contract with the external item registry that
// owns token ownership, approvals, and enumeration. The engine calls it; it
// does not reimplement it.
package ledger

import "github.com/popula/editions/types"

// TokenLedger is the ownership ledger the minting engine writes into.
// Mutators do not return errors: the ledger's write mechanics are assumed
// correct, which is what lets a mint stay all-or-nothing after the registry
// allocation succeeds.
type TokenLedger interface {
	SetOwner(tokenID types.TokenID, owner types.AccountID)
	RemoveOwner(tokenID types.TokenID)
	Owner(tokenID types.TokenID) (types.AccountID, bool)

	SetMetadata(tokenID types.TokenID, metadata types.Metadata)
	RemoveMetadata(tokenID types.TokenID)
	Metadata(tokenID types.TokenID) (types.Metadata, bool)

	IndexByOwnerAdd(owner types.AccountID, tokenID types.TokenID)
	IndexByOwnerRemove(owner types.AccountID, tokenID types.TokenID)

	// Transfer moves a token to a new owner, updating the owner index.
	Transfer(to types.AccountID, tokenID types.TokenID) error
}
