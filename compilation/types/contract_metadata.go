package types

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/fxamacker/cbor"
)

// ContractMetadata is a CBOR-encoded structure describing contract information which is embedded within smart contract
// bytecode by the Solidity compiler (unless explicitly directed not to).
// Reference: https://docs.soliditylang.org/en/latest/metadata.html
type ContractMetadata map[string]any

// metadataHashPrefixes defines patterns to use in search for CBOR-encoded contract metadata appended to the end of
// bytecode, for compilers which do not suffix the metadata with its length.
var metadataHashPrefixes = [][]byte{
	{0xa1, 0x65, 98, 122, 122, 114, 48, 0x58, 0x20}, // a1 65 "bzzr0" 0x58 0x20 (solc <= 0.5.8)
	{0xa2, 0x65, 98, 122, 122, 114, 48, 0x58, 0x20}, // a2 65 "bzzr0" 0x58 0x20 (solc >= 0.5.9)
	{0xa2, 0x65, 98, 122, 122, 114, 49, 0x58, 0x20}, // a2 65 "bzzr1" 0x58 0x20 (solc >= 0.5.11)
}

// ExtractContractMetadata extracts contract metadata from provided byte code and returns it. If contract metadata
// could not be extracted, nil is returned.
func ExtractContractMetadata(bytecode []byte) *ContractMetadata {
	// Since solc 0.5.9 the metadata is followed by its big-endian uint16 length.
	if len(bytecode) >= 2 {
		metadataLength := int(binary.BigEndian.Uint16(bytecode[len(bytecode)-2:]))
		metadataOffset := len(bytecode) - 2 - metadataLength
		if metadataLength > 0 && metadataOffset >= 0 {
			var metadata ContractMetadata
			if err := cbor.Unmarshal(bytecode[metadataOffset:len(bytecode)-2], &metadata); err == nil {
				return &metadata
			}
		}
	}

	// Otherwise try matching each metadata hash prefix in the file.
	for _, metadataHashPrefix := range metadataHashPrefixes {
		metadataOffset := bytes.LastIndex(bytecode, metadataHashPrefix)
		if metadataOffset != -1 {
			var metadata ContractMetadata
			if err := cbor.Unmarshal(bytecode[metadataOffset:], &metadata); err != nil {
				continue
			}
			return &metadata
		}
	}
	return nil
}

// CompilerVersion returns the compiler version recorded under the "solc" key. Release builds store it as three bytes
// (major, minor, patch), prerelease builds as a full version string. An empty string is returned if it is absent.
func (m ContractMetadata) CompilerVersion() string {
	switch version := m["solc"].(type) {
	case []byte:
		if len(version) == 3 {
			return fmt.Sprintf("%d.%d.%d", version[0], version[1], version[2])
		}
	case string:
		return version
	}
	return ""
}
