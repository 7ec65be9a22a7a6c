package ledger

import "github.com/popula/editions/types"

// MemoryLedger is an in-process TokenLedger. It backs tests and
// single-process deployments where no external registry exists.
type MemoryLedger struct {
	owners   map[types.TokenID]types.AccountID
	metadata map[types.TokenID]types.Metadata
	byOwner  map[types.AccountID]map[types.TokenID]struct{}
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		owners:   make(map[types.TokenID]types.AccountID),
		metadata: make(map[types.TokenID]types.Metadata),
		byOwner:  make(map[types.AccountID]map[types.TokenID]struct{}),
	}
}

func (m *MemoryLedger) SetOwner(tokenID types.TokenID, owner types.AccountID) {
	m.owners[tokenID] = owner
}

func (m *MemoryLedger) RemoveOwner(tokenID types.TokenID) {
	delete(m.owners, tokenID)
}

func (m *MemoryLedger) Owner(tokenID types.TokenID) (types.AccountID, bool) {
	owner, ok := m.owners[tokenID]
	return owner, ok
}

func (m *MemoryLedger) SetMetadata(tokenID types.TokenID, metadata types.Metadata) {
	m.metadata[tokenID] = metadata
}

func (m *MemoryLedger) RemoveMetadata(tokenID types.TokenID) {
	delete(m.metadata, tokenID)
}

func (m *MemoryLedger) Metadata(tokenID types.TokenID) (types.Metadata, bool) {
	md, ok := m.metadata[tokenID]
	return md, ok
}

func (m *MemoryLedger) IndexByOwnerAdd(owner types.AccountID, tokenID types.TokenID) {
	set, ok := m.byOwner[owner]
	if !ok {
		set = make(map[types.TokenID]struct{})
		m.byOwner[owner] = set
	}
	set[tokenID] = struct{}{}
}

func (m *MemoryLedger) IndexByOwnerRemove(owner types.AccountID, tokenID types.TokenID) {
	if set, ok := m.byOwner[owner]; ok {
		delete(set, tokenID)
	}
}

func (m *MemoryLedger) Transfer(to types.AccountID, tokenID types.TokenID) error {
	from, ok := m.owners[tokenID]
	if !ok {
		return types.Errorf(types.ErrTokenNotFound, "token %s does not exist", tokenID)
	}
	m.IndexByOwnerRemove(from, tokenID)
	m.owners[tokenID] = to
	m.IndexByOwnerAdd(to, tokenID)
	return nil
}

// TokensOfOwner lists the owner's tokens. Test helper; enumeration order is
// unspecified.
func (m *MemoryLedger) TokensOfOwner(owner types.AccountID) []types.TokenID {
	out := make([]types.TokenID, 0, len(m.byOwner[owner]))
	for tokenID := range m.byOwner[owner] {
		out = append(out, tokenID)
	}
	return out
}
