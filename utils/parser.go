package utils

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/popula/editions/types"
)

// TokenID builds a token identifier from its series and edition sequence.
func TokenID(seriesID types.SeriesID, sequence uint64) types.TokenID {
	return fmt.Sprintf("%s%s%d", seriesID, types.TokenDelimiter, sequence)
}

// SplitTokenID extracts the series id and edition sequence from a token id.
func SplitTokenID(tokenID types.TokenID) (types.SeriesID, uint64, error) {
	seriesID, seq, ok := strings.Cut(tokenID, types.TokenDelimiter)
	if !ok || seriesID == "" {
		return "", 0, types.Errorf(types.ErrInvalidTokenID, "malformed token id: %s", tokenID)
	}
	sequence, err := strconv.ParseUint(seq, 10, 64)
	if err != nil {
		return "", 0, types.Errorf(types.ErrInvalidTokenID, "malformed token id: %s", tokenID)
	}
	return seriesID, sequence, nil
}

// DisplayTitle renders the per-edition display name of a token:
// "<title> #<sequence>", with "/<copies>" appended for bounded series.
func DisplayTitle(title string, sequence uint64, copies *uint64) string {
	out := title + types.TitleDelimiter + strconv.FormatUint(sequence, 10)
	if copies != nil {
		out += types.EditionDelimiter + strconv.FormatUint(*copies, 10)
	}
	return out
}

// SeriesOfToken returns the series id component of a token id.
func SeriesOfToken(tokenID types.TokenID) (types.SeriesID, error) {
	seriesID, _, err := SplitTokenID(tokenID)
	return seriesID, err
}

// ParseTransferMessage parses the message attached to an inbound token
// transfer. An empty message is a hard failure; there is no bare-deposit
// form on this path.
func ParseTransferMessage(msg string) (*types.TransferMessage, error) {
	if msg == "" {
		return nil, types.Errorf(types.ErrEmptyTransferMessage, "no msg found")
	}

	var message types.TransferMessage
	if err := json.Unmarshal([]byte(msg), &message); err != nil {
		return nil, types.Errorf(types.ErrMalformedTransferMessage,
			"failed to parse transfer message: %v", err)
	}
	if message.SeriesID == "" || message.ReceiverID == "" {
		return nil, types.Errorf(types.ErrMalformedTransferMessage,
			"transfer message requires token_series_id and receiver_id")
	}
	return &message, nil
}
