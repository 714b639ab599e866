package gateway

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/pinmine/pincli/internal/chain"
	"github.com/pinmine/pincli/internal/facet"
)

// RevertError is the one throw shape the gateway produces for reverts.
// When the node exposed structured revert data that decodes against a facet
// ABI, Name and Args are populated and the message is the first argument
// (or the error name when there are none). Otherwise the raw provider
// message propagates unchanged.
type RevertError struct {
	Facet    facet.Facet
	Function string
	Name     string
	Args     []interface{}
	Raw      string
}

func (e *RevertError) Error() string {
	if e.Name != "" {
		if len(e.Args) > 0 {
			if s, ok := e.Args[0].(string); ok && s != "" {
				return s
			}
			return fmt.Sprintf("%s: %v", e.Name, e.Args[0])
		}
		return e.Name
	}
	return e.Raw
}

// RevertName returns the decoded custom-error name, or "" when the revert
// data could not be decoded.
func (e *RevertError) RevertName() string { return e.Name }

// normalizeRevert inspects a structured RPC revert for a decodable custom
// error. Classification is not done here — that is the error classifier's
// job — only the throw shape is made consistent.
func normalizeRevert(spec CallSpec, rpcErr *chain.RPCError) error {
	out := &RevertError{Facet: spec.Facet, Function: spec.Function, Raw: rpcErr.Message}

	if hexData := rpcErr.RevertData(); hexData != "" {
		data, err := hex.DecodeString(strings.TrimPrefix(hexData, "0x"))
		if err == nil {
			if name, args, ok := facet.DecodeCustomError(data); ok {
				out.Name = name
				out.Args = args
			}
		}
	}
	return out
}
