// Package aggregate reads the game's on-chain state in batched multicalls
// and derives the domain views the commands render. Views are re-read
// immediately after every confirmed mutation; nothing here is authoritative
// between reads.
package aggregate

import (
	"fmt"
	"math/big"
)

// FlairMeta describes one flair type.
type FlairMeta struct {
	TypeID     *big.Int
	Name       string
	PriceWei   *big.Int
	FeeRateBps uint16
	Supply     *big.Int
	MaxSupply  *big.Int
}

// OwnedFlair is one flair type attributed to the player. An equipped item
// is custodied by the pool contract, so WalletBalance may be zero while
// Equipped is true — it still counts as owned.
type OwnedFlair struct {
	Meta          FlairMeta
	WalletBalance *big.Int
	Equipped      bool
}

// PinInfo is the player's minted pin, if any.
type PinInfo struct {
	TokenID   *big.Int
	ContentID string
}

// Collection is the derived pins-and-flair view.
type Collection struct {
	Pin            *PinInfo    // nil when unminted
	Catalog        []FlairMeta // every listed flair type, owned or not
	Flair          []OwnedFlair
	EquippedSlots  []*big.Int // slot index → flair type id, zero = empty
	BaseFeeBps     uint16
	EffectiveFee   uint16 // min fee rate across equipped flair; base when none
	FeeDiscountBps uint16 // base − effective: best applicable discount wins
}

// AuctionState is the live Dutch-auction snapshot.
type AuctionState struct {
	Price        *big.Int
	LotRemaining *big.Int
	EndsAt       uint64
}

// Vault is the derived deposits-and-yield view.
type Vault struct {
	Shares         *big.Int
	ClaimableYield *big.Int
	TotalDeposits  *big.Int
	Auction        *AuctionState // nil when no auction contract is live
	PaymentBalance *big.Int
	GameBalance    *big.Int
}

// --- decode helpers over gateway batch values ---

func asBig(v interface{}) (*big.Int, error) {
	n, ok := v.(*big.Int)
	if !ok {
		return nil, fmt.Errorf("expected *big.Int, got %T", v)
	}
	return n, nil
}

func asUint16(v interface{}) (uint16, error) {
	n, ok := v.(uint16)
	if !ok {
		return 0, fmt.Errorf("expected uint16, got %T", v)
	}
	return n, nil
}

func asUint64(v interface{}) (uint64, error) {
	n, ok := v.(uint64)
	if !ok {
		return 0, fmt.Errorf("expected uint64, got %T", v)
	}
	return n, nil
}

func asString(v interface{}) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("expected string, got %T", v)
	}
	return s, nil
}

func asBigSlice(v interface{}) ([]*big.Int, error) {
	s, ok := v.([]*big.Int)
	if !ok {
		return nil, fmt.Errorf("expected []*big.Int, got %T", v)
	}
	return s, nil
}

func asSlots(v interface{}) ([]*big.Int, error) {
	fixed, ok := v.([6]*big.Int)
	if !ok {
		return nil, fmt.Errorf("expected [6]*big.Int, got %T", v)
	}
	return fixed[:], nil
}
