package facet

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Facet identifies one logical group of contract functions. Diamond facets
// share the proxy address; standalone facets have their own deployment.
// Adding a facet means adding an enum value here plus its ABI file — every
// switch below is exhaustive, so a missing case fails at compile review,
// not at runtime.
type Facet int

const (
	// Diamond facets (share the proxy address).
	Vault Facet = iota
	Governance
	Pin
	Flair
	Data
	Router
	// Standalone contracts.
	Auction
	GameToken
	PaymentToken
	Multicall
)

// ErrUnresolvedAddress is returned when a facet cannot be mapped to an address.
var ErrUnresolvedAddress = errors.New("facet address not configured")

// AddressBook holds the deployed addresses for one network.
type AddressBook struct {
	Diamond      common.Address
	Auction      common.Address
	GameToken    common.Address
	PaymentToken common.Address
	Multicall    common.Address
}

// String returns the facet's name.
func (f Facet) String() string {
	switch f {
	case Vault:
		return "vault"
	case Governance:
		return "governance"
	case Pin:
		return "pin"
	case Flair:
		return "flair"
	case Data:
		return "data"
	case Router:
		return "router"
	case Auction:
		return "auction"
	case GameToken:
		return "gameToken"
	case PaymentToken:
		return "paymentToken"
	case Multicall:
		return "multicall"
	default:
		return fmt.Sprintf("facet(%d)", int(f))
	}
}

// SharesDiamond reports whether the facet lives behind the diamond proxy.
func (f Facet) SharesDiamond() bool {
	switch f {
	case Vault, Governance, Pin, Flair, Data, Router:
		return true
	case Auction, GameToken, PaymentToken, Multicall:
		return false
	default:
		return false
	}
}

// Resolve maps the facet to its contract address. Diamond facets always
// resolve to the proxy; standalone facets resolve to their own entry unless
// the caller supplies an explicit override (non-zero). ERC-20 facets accept
// the override so the same ABI serves any token address.
func (f Facet) Resolve(book AddressBook, explicit common.Address) (common.Address, error) {
	if f.SharesDiamond() {
		if book.Diamond == (common.Address{}) {
			return common.Address{}, fmt.Errorf("%w: %s (diamond)", ErrUnresolvedAddress, f)
		}
		return book.Diamond, nil
	}

	if explicit != (common.Address{}) {
		return explicit, nil
	}

	var addr common.Address
	switch f {
	case Auction:
		addr = book.Auction
	case GameToken:
		addr = book.GameToken
	case PaymentToken:
		addr = book.PaymentToken
	case Multicall:
		addr = book.Multicall
	}
	if addr == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w: %s", ErrUnresolvedAddress, f)
	}
	return addr, nil
}

func (f Facet) abiJSON() string {
	switch f {
	case Vault:
		return vaultABIJSON
	case Governance:
		return governanceABIJSON
	case Pin:
		return pinABIJSON
	case Flair:
		return flairABIJSON
	case Data:
		return dataABIJSON
	case Router:
		return routerABIJSON
	case Auction:
		return auctionABIJSON
	case GameToken, PaymentToken:
		return erc20ABIJSON
	case Multicall:
		return multicallABIJSON
	default:
		return ""
	}
}

var (
	abiOnce  sync.Once
	abiCache map[Facet]abi.ABI
)

// All lists every facet. Used for ABI preparation and custom-error scans.
func All() []Facet {
	return []Facet{Vault, Governance, Pin, Flair, Data, Router, Auction, GameToken, PaymentToken, Multicall}
}

func loadABIs() {
	abiCache = make(map[Facet]abi.ABI, 10)
	for _, f := range All() {
		parsed, err := abi.JSON(strings.NewReader(f.abiJSON()))
		if err != nil {
			panic(fmt.Sprintf("facet %s: invalid embedded ABI: %v", f, err))
		}
		abiCache[f] = parsed
	}
}

// ABI returns the parsed ABI for the facet.
func (f Facet) ABI() abi.ABI {
	abiOnce.Do(loadABIs)
	a, ok := abiCache[f]
	if !ok {
		panic(fmt.Sprintf("no ABI for facet %s", f))
	}
	return a
}

// Pack encodes a function call (selector + args) for the facet.
func Pack(f Facet, fn string, args ...interface{}) ([]byte, error) {
	a := f.ABI()
	if _, ok := a.Methods[fn]; !ok {
		return nil, fmt.Errorf("function %q not found in %s ABI", fn, f)
	}
	data, err := a.Pack(fn, args...)
	if err != nil {
		return nil, fmt.Errorf("encoding %s.%s: %w", f, fn, err)
	}
	return data, nil
}

// Unpack decodes the return data of a function call.
func Unpack(f Facet, fn string, data []byte) ([]interface{}, error) {
	out, err := f.ABI().Unpack(fn, data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s.%s result: %w", f, fn, err)
	}
	return out, nil
}

// DecodeCustomError matches revert data against every facet's declared
// custom errors. Returns the error name and decoded arguments on a selector
// match.
func DecodeCustomError(data []byte) (name string, args []interface{}, ok bool) {
	if len(data) < 4 {
		return "", nil, false
	}
	for _, f := range All() {
		for _, e := range f.ABI().Errors {
			if string(e.ID.Bytes()[:4]) != string(data[:4]) {
				continue
			}
			decoded, err := e.Inputs.Unpack(data[4:])
			if err != nil {
				return e.Name, nil, true
			}
			return e.Name, decoded, true
		}
	}
	return "", nil, false
}
