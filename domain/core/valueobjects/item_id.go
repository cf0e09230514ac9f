package valueobjects

import (
	"errors"
	"strconv"
	"strings"
)

// ItemID is a value object representing a catalog item identifier
type ItemID uint32

// ErrInvalidItemID is returned when text is not an unsigned 32-bit number
var ErrInvalidItemID = errors.New("item ID must be a non-negative integer within uint32 range")

// ParseItemID parses a base-10 item identifier. A single leading '+' is
// allowed; minus signs, spaces and empty input are rejected.
func ParseItemID(s string) (ItemID, error) {
	n, err := strconv.ParseUint(strings.TrimPrefix(s, "+"), 10, 32)
	if err != nil {
		return 0, ErrInvalidItemID
	}
	return ItemID(n), nil
}

// Uint32 returns the numeric value
func (id ItemID) Uint32() uint32 {
	return uint32(id)
}

// String returns the base-10 representation, which is also the DynamoDB N form
func (id ItemID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}
