// Package registry owns the series catalog. Callers never see the
// underlying maps; every mutation goes through an operation defined here or
// through the minting engine's Allocate.
package registry

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/popula/editions/types"
	"github.com/popula/editions/utils"
)

// series is the stored form of a series. The minted token list doubles as
// the supply count and the enumeration order.
type series struct {
	metadata  types.Metadata
	creatorID types.AccountID
	tokens    []types.TokenID
	price     *decimal.Decimal
	assetID   *types.AccountID
	mintable  bool
	royalty   types.RoyaltyTable
}

// freeze is the only transition out of the mintable state. There is no
// transition back.
func (s *series) freeze() {
	s.mintable = false
}

func (s *series) supplyCap() uint64 {
	if s.metadata.Copies == nil {
		return ^uint64(0)
	}
	return *s.metadata.Copies
}

// Registry holds every series keyed by a monotonically assigned string id.
// Series are never deleted. Not synchronized; the facade serializes access.
type Registry struct {
	byID   map[types.SeriesID]*series
	order  []types.SeriesID
	nextID uint64
}

func NewRegistry() *Registry {
	return &Registry{
		byID: make(map[types.SeriesID]*series),
	}
}

func (r *Registry) get(id types.SeriesID) (*series, error) {
	s, ok := r.byID[id]
	if !ok {
		return nil, types.Errorf(types.ErrSeriesNotFound, "series %s does not exist", id)
	}
	return s, nil
}

func (r *Registry) requireCreator(s *series, caller types.AccountID) error {
	if s.creatorID != caller {
		return types.Errorf(types.ErrCreatorOnly, "creator only")
	}
	return nil
}

// Create registers a new series and returns its id. The id comes from a
// dedicated counter, not from the catalog size, so it stays monotonic even
// if deletion support is ever added.
func (r *Registry) Create(
	creator types.AccountID,
	metadata types.Metadata,
	price *decimal.Decimal,
	assetID *types.AccountID,
	royalty types.RoyaltyTable,
) (types.SeriesID, error) {
	if err := utils.ValidateMetadata(&metadata); err != nil {
		return "", err
	}
	if err := utils.ValidateRoyalty(royalty); err != nil {
		return "", err
	}
	price, assetID, err := normalizePrice(price, assetID)
	if err != nil {
		return "", err
	}

	r.nextID++
	id := strconv.FormatUint(r.nextID, 10)

	r.byID[id] = &series{
		metadata:  metadata,
		creatorID: creator,
		price:     price,
		assetID:   assetID,
		mintable:  true,
		royalty:   royalty.Clone(),
	}
	r.order = append(r.order, id)
	return id, nil
}

// normalizePrice enforces the both-or-neither pairing of price and payment
// asset: if either half is absent the pair is cleared.
func normalizePrice(price *decimal.Decimal, assetID *types.AccountID) (*decimal.Decimal, *types.AccountID, error) {
	if price == nil || assetID == nil {
		return nil, nil, nil
	}
	if err := utils.ValidateAmount(*price); err != nil {
		return nil, nil, err
	}
	if err := utils.ValidateAssetID(*assetID); err != nil {
		return nil, nil, err
	}
	p := *price
	a := *assetID
	return &p, &a, nil
}

// SetPrice updates or clears the price pair of a still-mintable series.
// Returns the applied price, nil when cleared.
func (r *Registry) SetPrice(
	caller types.AccountID,
	id types.SeriesID,
	price *decimal.Decimal,
	assetID *types.AccountID,
) (*decimal.Decimal, error) {
	s, err := r.get(id)
	if err != nil {
		return nil, err
	}
	if err := r.requireCreator(s, caller); err != nil {
		return nil, err
	}
	if !s.mintable {
		return nil, types.Errorf(types.ErrSeriesNotMintable, "series %s is not mintable", id)
	}
	price, assetID, err = normalizePrice(price, assetID)
	if err != nil {
		return nil, err
	}
	s.price = price
	s.assetID = assetID
	return price, nil
}

// SetNonMintable permanently freezes an unbounded series. Bounded series
// freeze by minting to exhaustion or by decreasing supply to the minted
// count; this path rejects them.
func (r *Registry) SetNonMintable(caller types.AccountID, id types.SeriesID) error {
	s, err := r.get(id)
	if err != nil {
		return err
	}
	if err := r.requireCreator(s, caller); err != nil {
		return err
	}
	if !s.mintable {
		return types.Errorf(types.ErrSeriesNotMintable, "series %s is already non-mintable", id)
	}
	if s.metadata.Copies != nil {
		return types.Errorf(types.ErrSeriesCopiesMustBeUnbounded,
			"decrease supply instead: series %s has a bounded cap", id)
	}
	s.freeze()
	return nil
}

// DecreaseSupply lowers a bounded series' cap by amount and returns the new
// cap. Lowering the cap to the minted count freezes the series.
func (r *Registry) DecreaseSupply(caller types.AccountID, id types.SeriesID, amount uint64) (uint64, error) {
	s, err := r.get(id)
	if err != nil {
		return 0, err
	}
	if err := r.requireCreator(s, caller); err != nil {
		return 0, err
	}
	if s.metadata.Copies == nil {
		return 0, types.Errorf(types.ErrSeriesCopiesMustBeBounded,
			"series %s has no supply cap to decrease", id)
	}

	minted := uint64(len(s.tokens))
	copies := *s.metadata.Copies
	if amount > copies || copies-amount < minted {
		return 0, types.Errorf(types.ErrSupplyDecreaseBelowMinted,
			"cannot decrease supply, already minted: %d", minted)
	}

	newCap := copies - amount
	if newCap == minted {
		s.freeze()
	}
	s.metadata.Copies = &newCap
	return newCap, nil
}

// Allocate reserves the next edition of a series for the minting engine. It
// validates mintability and the supply cap, flips the mintable flag when
// this edition exhausts the cap, and records the token id — all before
// returning, so the flip and the insert cannot be observed apart. The
// returned metadata is the value stored on the series at mint time.
func (r *Registry) Allocate(id types.SeriesID) (types.TokenID, types.Metadata, error) {
	s, err := r.get(id)
	if err != nil {
		return "", types.Metadata{}, err
	}
	minted := uint64(len(s.tokens))
	if minted >= s.supplyCap() {
		return "", types.Metadata{}, types.Errorf(types.ErrSeriesSupplyMaxed,
			"series %s supply maxed", id)
	}
	if !s.mintable {
		return "", types.Metadata{}, types.Errorf(types.ErrSeriesNotMintable,
			"series %s is not mintable", id)
	}
	if minted+1 >= s.supplyCap() {
		s.freeze()
	}

	tokenID := utils.TokenID(id, minted+1)
	s.tokens = append(s.tokens, tokenID)
	return tokenID, s.metadata, nil
}

// Info returns the read-only view of a series.
func (r *Registry) Info(id types.SeriesID) (*types.SeriesInfo, error) {
	s, err := r.get(id)
	if err != nil {
		return nil, err
	}
	return r.info(id, s), nil
}

func (r *Registry) info(id types.SeriesID, s *series) *types.SeriesInfo {
	info := &types.SeriesInfo{
		SeriesID:  id,
		Metadata:  s.metadata,
		CreatorID: s.creatorID,
		Royalty:   s.royalty.Clone(),
		Mintable:  s.mintable,
	}
	if s.price != nil {
		p := *s.price
		a := *s.assetID
		info.Price = &p
		info.AssetID = &a
	}
	return info
}

// Supply returns the number of minted tokens in a series.
func (r *Registry) Supply(id types.SeriesID) (uint64, error) {
	s, err := r.get(id)
	if err != nil {
		return 0, err
	}
	return uint64(len(s.tokens)), nil
}

// List returns a page of series in creation order. fromIndex past the end
// and a zero limit are both rejected.
func (r *Registry) List(fromIndex uint64, limit uint64) ([]*types.SeriesInfo, error) {
	if fromIndex >= uint64(len(r.order)) {
		return nil, types.Errorf(types.ErrOutOfBounds,
			"out of bounds, please use a smaller fromIndex")
	}
	if limit == 0 {
		return nil, types.Errorf(types.ErrInvalidLimit, "cannot provide limit of 0")
	}

	// A caller treating "no limit" as the max uint64 is valid; the capacity
	// must come from the page that actually exists.
	if remaining := uint64(len(r.order)) - fromIndex; limit > remaining {
		limit = remaining
	}
	out := make([]*types.SeriesInfo, 0, limit)
	for _, id := range r.order[fromIndex:] {
		if uint64(len(out)) == limit {
			break
		}
		out = append(out, r.info(id, r.byID[id]))
	}
	return out, nil
}

// Tokens returns a page of a series' minted token ids in mint order, with
// the same bounds rules as List.
func (r *Registry) Tokens(id types.SeriesID, fromIndex uint64, limit uint64) ([]types.TokenID, error) {
	s, err := r.get(id)
	if err != nil {
		return nil, err
	}
	if fromIndex >= uint64(len(s.tokens)) {
		return nil, types.Errorf(types.ErrOutOfBounds,
			"out of bounds, please use a smaller fromIndex")
	}
	if limit == 0 {
		return nil, types.Errorf(types.ErrInvalidLimit, "cannot provide limit of 0")
	}

	end := fromIndex + limit
	if end > uint64(len(s.tokens)) || end < fromIndex {
		end = uint64(len(s.tokens))
	}
	out := make([]types.TokenID, end-fromIndex)
	copy(out, s.tokens[fromIndex:end])
	return out, nil
}
