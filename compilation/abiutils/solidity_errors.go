package abiutils

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/crytic/medusa-geth/accounts/abi"
)

// An enum is defined below providing all `Panic(uint)` error codes returned in return data when the VM encounters
// an error in some cases.
// Reference: https://docs.soliditylang.org/en/latest/control-structures.html#panic-via-assert-and-error-via-require
const (
	PanicCodeCompilerInserted              = 0x00
	PanicCodeAssertFailed                  = 0x01
	PanicCodeArithmeticUnderOverflow       = 0x11
	PanicCodeDivideByZero                  = 0x12
	PanicCodeEnumTypeConversionOutOfBounds = 0x21
	PanicCodeIncorrectStorageAccess        = 0x22
	PanicCodePopEmptyArray                 = 0x31
	PanicCodeOutOfBoundsArrayAccess        = 0x32
	PanicCodeAllocateTooMuchMemory         = 0x41
	PanicCodeCallUninitializedVariable     = 0x51
)

var (
	// panicArguments describes the payload of a `Panic(uint256)` revert.
	panicArguments abi.Arguments

	// errorArguments describes the payload of an `Error(string)` revert.
	errorArguments abi.Arguments

	// PanicSelector is the selector of `Panic(uint256)`.
	PanicSelector = ComputeSelector("Panic(uint256)")

	// ErrorSelector is the selector of `Error(string)`.
	ErrorSelector = ComputeSelector("Error(string)")
)

func init() {
	uintType, err := abi.NewType("uint256", "", nil)
	if err != nil {
		panic(err)
	}
	stringType, err := abi.NewType("string", "", nil)
	if err != nil {
		panic(err)
	}
	panicArguments = abi.Arguments{{Type: uintType}}
	errorArguments = abi.Arguments{{Type: stringType}}
}

// GetSolidityPanicCode obtains a panic code from revert return data, if possible.
// If the return data does not represent a Panic, nil is returned.
func GetSolidityPanicCode(returnData []byte) *big.Int {
	// The return data must fit exactly the selector + uint256
	if len(returnData) != SelectorLength+32 || !bytes.Equal(returnData[:SelectorLength], PanicSelector[:]) {
		return nil
	}

	values, err := panicArguments.Unpack(returnData[SelectorLength:])
	if err != nil || len(values) == 0 {
		return nil
	}
	panicCode, _ := values[0].(*big.Int)
	return panicCode
}

// GetSolidityRevertErrorString obtains an error message from revert return data, if possible.
// If the return data does not represent an Error, nil is returned.
func GetSolidityRevertErrorString(returnData []byte) *string {
	if len(returnData) <= SelectorLength || !bytes.Equal(returnData[:SelectorLength], ErrorSelector[:]) {
		return nil
	}

	values, err := errorArguments.Unpack(returnData[SelectorLength:])
	if err != nil || len(values) == 0 {
		return nil
	}
	errorMessage, ok := values[0].(string)
	if !ok {
		return nil
	}
	return &errorMessage
}

// GetPanicReason will take in a panic code as an uint64 and will return the string reason behind that panic code. For
// example, if panic code is PanicCodeAssertFailed, then "assertion failure" is returned.
func GetPanicReason(panicCode uint64) string {
	switch panicCode {
	case PanicCodeCompilerInserted:
		return "panic: compiler inserted panic"
	case PanicCodeAssertFailed:
		return "panic: assertion failed"
	case PanicCodeArithmeticUnderOverflow:
		return "panic: arithmetic underflow or overflow"
	case PanicCodeDivideByZero:
		return "panic: division by zero"
	case PanicCodeEnumTypeConversionOutOfBounds:
		return "panic: enum access out of bounds"
	case PanicCodeIncorrectStorageAccess:
		return "panic: incorrect storage access"
	case PanicCodePopEmptyArray:
		return "panic: pop on empty array"
	case PanicCodeOutOfBoundsArrayAccess:
		return "panic: out of bounds array access"
	case PanicCodeAllocateTooMuchMemory:
		return "panic: overallocation of memory"
	case PanicCodeCallUninitializedVariable:
		return "panic: call on uninitialized variable"
	default:
		return fmt.Sprintf("unknown panic code(%v)", panicCode)
	}
}
