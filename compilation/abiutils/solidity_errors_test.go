package abiutils

import (
	"math/big"
	"testing"

	"github.com/crytic/medusa-geth/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGetSolidityPanicCode will test decoding of Panic(uint256) payloads.
func TestGetSolidityPanicCode(t *testing.T) {
	data := append(PanicSelector[:], common.LeftPadBytes([]byte{PanicCodeDivideByZero}, 32)...)
	panicCode := GetSolidityPanicCode(data)
	require.NotNil(t, panicCode)
	assert.EqualValues(t, 0, panicCode.Cmp(big.NewInt(PanicCodeDivideByZero)))
	assert.Equal(t, "panic: division by zero", GetPanicReason(panicCode.Uint64()))

	assert.Nil(t, GetSolidityPanicCode(data[:20]))
	assert.Nil(t, GetSolidityPanicCode(append(ErrorSelector[:], data[4:]...)))
	assert.Equal(t, "unknown panic code(153)", GetPanicReason(0x99))
}

// TestGetSolidityRevertErrorString will test decoding of Error(string) payloads.
func TestGetSolidityRevertErrorString(t *testing.T) {
	data := append(ErrorSelector[:], common.LeftPadBytes([]byte{0x20}, 32)...)
	data = append(data, common.LeftPadBytes([]byte{5}, 32)...)
	data = append(data, common.RightPadBytes([]byte("hello"), 32)...)

	message := GetSolidityRevertErrorString(data)
	require.NotNil(t, message)
	assert.Equal(t, "hello", *message)

	assert.Nil(t, GetSolidityRevertErrorString(ErrorSelector[:]))
	assert.Nil(t, GetSolidityRevertErrorString(data[:40]))
}
