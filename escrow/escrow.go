// Package escrow holds the prepaid balance ledger. Balances are created
// implicitly on first deposit, debited by paid mints, and never deleted.
package escrow

import (
	"github.com/shopspring/decimal"

	"github.com/popula/editions/types"
)

// Ledger maps accounts to non-negative prepaid balances. It is not
// synchronized; the facade serializes access.
type Ledger struct {
	accounts map[types.AccountID]decimal.Decimal
}

func NewLedger() *Ledger {
	return &Ledger{
		accounts: make(map[types.AccountID]decimal.Decimal),
	}
}

// Registered reports whether the account has a balance entry, even a zero
// one. Minting requires registration.
func (l *Ledger) Registered(account types.AccountID) bool {
	_, ok := l.accounts[account]
	return ok
}

// Balance returns the account's balance, or zero if unregistered.
func (l *Ledger) Balance(account types.AccountID) decimal.Decimal {
	return l.accounts[account]
}

// Deposit credits the account, registering it if needed.
func (l *Ledger) Deposit(account types.AccountID, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return types.Errorf(types.ErrInvalidAmount, "deposit cannot be negative")
	}
	l.accounts[account] = l.accounts[account].Add(amount)
	return nil
}

// Debit subtracts amount from the account's balance. Insufficient balance is
// a precondition failure, never a clamp.
func (l *Ledger) Debit(account types.AccountID, amount decimal.Decimal) error {
	balance, ok := l.accounts[account]
	if !ok {
		return types.Errorf(types.ErrNotRegistered, "account %s is not registered", account)
	}
	if balance.LessThan(amount) {
		return types.Errorf(types.ErrInsufficientBalance,
			"balance %s is less than %s", balance.String(), amount.String())
	}
	l.accounts[account] = balance.Sub(amount)
	return nil
}

// Credit adds amount back to a registered account. Used to undo a price
// debit when a mint is rejected after payment.
func (l *Ledger) Credit(account types.AccountID, amount decimal.Decimal) error {
	if _, ok := l.accounts[account]; !ok {
		return types.Errorf(types.ErrNotRegistered, "account %s is not registered", account)
	}
	l.accounts[account] = l.accounts[account].Add(amount)
	return nil
}

// Unregister removes an account entry outright. Only used to reverse an
// implicit registration made earlier in the same aborted operation;
// established balances are never deleted.
func (l *Ledger) Unregister(account types.AccountID) {
	delete(l.accounts, account)
}

// Drain zeroes the account's balance and returns what it held. The minting
// engine drains the payer after computing the storage refund.
func (l *Ledger) Drain(account types.AccountID) (decimal.Decimal, error) {
	balance, ok := l.accounts[account]
	if !ok {
		return decimal.Zero, types.Errorf(types.ErrNotRegistered, "account %s is not registered", account)
	}
	l.accounts[account] = decimal.Zero
	return balance, nil
}
