package symbols

import (
	"encoding/hex"
	"strings"

	"github.com/crytic/soltrace/compilation/abiutils"
	"github.com/pkg/errors"
)

// Selector is the 4-byte identifier of a function or custom error, derived from its canonical signature hash.
type Selector [abiutils.SelectorLength]byte

// SelectorFromSignature hashes a canonical signature such as `transfer(address,uint256)` into a Selector.
func SelectorFromSignature(signature string) Selector {
	return Selector(abiutils.ComputeSelector(signature))
}

// ParseSelector parses a hex-encoded selector, with or without a 0x prefix.
func ParseSelector(s string) (Selector, error) {
	var selector Selector
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return selector, errors.Wrapf(err, "malformed selector %q", s)
	}
	if len(b) != len(selector) {
		return selector, errors.Errorf("selector %q is %d bytes long", s, len(b))
	}
	copy(selector[:], b)
	return selector, nil
}

// Hex returns the selector as lowercase hex without a prefix, the form solc uses in methodIdentifiers.
func (s Selector) Hex() string {
	return hex.EncodeToString(s[:])
}

// String returns the selector as 0x-prefixed hex.
func (s Selector) String() string {
	return "0x" + s.Hex()
}
