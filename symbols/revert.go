package symbols

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/crytic/soltrace/compilation/abiutils"
)

// RevertReasonKind describes which kind of payload a revert carried.
type RevertReasonKind string

const (
	RevertReasonKindEmpty        RevertReasonKind = "EMPTY"
	RevertReasonKindErrorString  RevertReasonKind = "ERROR_STRING"
	RevertReasonKindPanic        RevertReasonKind = "PANIC"
	RevertReasonKindCustomError  RevertReasonKind = "CUSTOM_ERROR"
	RevertReasonKindUnrecognized RevertReasonKind = "UNRECOGNIZED"
)

// RevertReason is the decoded form of a revert payload.
type RevertReason struct {
	Kind RevertReasonKind

	// Message is set for `Error(string)` reverts.
	Message string

	// PanicCode is set for `Panic(uint256)` reverts.
	PanicCode *big.Int

	// CustomError and Arguments are set for custom error reverts.
	CustomError *CustomError
	Arguments   []any

	// ReturnData is the raw payload.
	ReturnData []byte
}

// DecodeRevert decodes the return data of a reverted call into this contract. Builtin `Error(string)` and
// `Panic(uint256)` payloads are recognized first, then the contract's custom errors by selector.
func (c *Contract) DecodeRevert(returnData []byte) *RevertReason {
	reason := &RevertReason{Kind: RevertReasonKindUnrecognized, ReturnData: returnData}
	if len(returnData) == 0 {
		reason.Kind = RevertReasonKindEmpty
		return reason
	}

	if message := abiutils.GetSolidityRevertErrorString(returnData); message != nil {
		reason.Kind = RevertReasonKindErrorString
		reason.Message = *message
		return reason
	}
	if panicCode := abiutils.GetSolidityPanicCode(returnData); panicCode != nil {
		reason.Kind = RevertReasonKindPanic
		reason.PanicCode = panicCode
		return reason
	}

	if len(returnData) < abiutils.SelectorLength {
		return reason
	}
	var selector Selector
	copy(selector[:], returnData)
	if customError := c.CustomErrorBySelector(selector); customError != nil {
		arguments, err := customError.Unpack(returnData)
		if err != nil {
			return reason
		}
		reason.Kind = RevertReasonKindCustomError
		reason.CustomError = customError
		reason.Arguments = arguments
	}
	return reason
}

// String returns a human-readable description of the revert reason.
func (r *RevertReason) String() string {
	switch r.Kind {
	case RevertReasonKindEmpty:
		return "reverted without a reason"
	case RevertReasonKindErrorString:
		return fmt.Sprintf("error: %q", r.Message)
	case RevertReasonKindPanic:
		if r.PanicCode.IsUint64() {
			return abiutils.GetPanicReason(r.PanicCode.Uint64())
		}
		return fmt.Sprintf("unknown panic code(%v)", r.PanicCode)
	case RevertReasonKindCustomError:
		arguments := make([]string, len(r.Arguments))
		for i, argument := range r.Arguments {
			arguments[i] = fmt.Sprintf("%v", argument)
		}
		return fmt.Sprintf("%s(%s)", r.CustomError.Name, strings.Join(arguments, ", "))
	default:
		return fmt.Sprintf("unrecognized revert data 0x%x", r.ReturnData)
	}
}
