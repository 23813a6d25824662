package symbols

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/crytic/medusa-geth/accounts/abi"
	"github.com/pkg/errors"
)

// CustomError describes a custom error declared in a contract's ABI, used to decode revert payloads.
type CustomError struct {
	// Name is the error's declared name.
	Name string

	// ParamTypes holds the canonical ABI types of the error's parameters.
	ParamTypes []string

	// Selector is the 4-byte hash of the error's canonical signature.
	Selector Selector

	// Inputs describes the error's parameters for payload decoding.
	Inputs abi.Arguments
}

// NewCustomErrorFromABI builds a CustomError from a single ABI entry of type "error".
// Returns an error if the entry is not an error entry or its parameters use types the ABI decoder does not support.
func NewCustomErrorFromABI(entry json.RawMessage) (*CustomError, error) {
	// Wrap the entry in an array so the ABI parser can be reused for a single entry
	wrapped := make([]byte, 0, len(entry)+2)
	wrapped = append(wrapped, '[')
	wrapped = append(wrapped, entry...)
	wrapped = append(wrapped, ']')

	parsed, err := abi.JSON(bytes.NewReader(wrapped))
	if err != nil {
		return nil, errors.Wrap(err, "could not parse custom error ABI entry")
	}
	if len(parsed.Errors) != 1 {
		return nil, errors.Errorf("expected one error definition in ABI entry, found %d", len(parsed.Errors))
	}

	var abiError abi.Error
	for _, e := range parsed.Errors {
		abiError = e
	}

	paramTypes := make([]string, len(abiError.Inputs))
	for i, input := range abiError.Inputs {
		paramTypes[i] = input.Type.String()
	}

	return &CustomError{
		Name:       abiError.Name,
		ParamTypes: paramTypes,
		Selector:   SelectorFromSignature(abiError.Sig),
		Inputs:     abiError.Inputs,
	}, nil
}

// Signature returns the canonical signature of the error, e.g. `InsufficientBalance(uint256)`.
func (e *CustomError) Signature() string {
	return fmt.Sprintf("%s(%s)", e.Name, strings.Join(e.ParamTypes, ","))
}

// Matches indicates whether the revert data starts with this error's selector.
func (e *CustomError) Matches(returnData []byte) bool {
	return len(returnData) >= len(e.Selector) && bytes.Equal(returnData[:len(e.Selector)], e.Selector[:])
}

// Unpack decodes the arguments of a revert payload produced by this error.
// Returns an error if the payload does not carry this error's selector or its arguments cannot be decoded.
func (e *CustomError) Unpack(returnData []byte) ([]any, error) {
	if !e.Matches(returnData) {
		return nil, errors.Errorf("revert data does not match the selector of %s", e.Signature())
	}
	values, err := e.Inputs.Unpack(returnData[len(e.Selector):])
	if err != nil {
		return nil, errors.Wrapf(err, "could not decode arguments of %s", e.Signature())
	}
	return values, nil
}

// String returns the error's signature.
func (e *CustomError) String() string {
	return e.Signature()
}
