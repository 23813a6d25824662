package abiutils

import (
	"strings"

	"golang.org/x/crypto/sha3"
)

// SelectorLength is the byte length of a function or error selector.
const SelectorLength = 4

// ComputeSelector returns the first four bytes of the keccak256 hash of a canonical signature such as
// `transfer(address,uint256)`.
func ComputeSelector(signature string) [SelectorLength]byte {
	hash := sha3.NewLegacyKeccak256()
	hash.Write([]byte(signature))

	var selector [SelectorLength]byte
	copy(selector[:], hash.Sum(nil))
	return selector
}

// CanonicalSignature joins a name and canonical parameter types into `name(type1,type2)`.
func CanonicalSignature(name string, paramTypes []string) string {
	return name + "(" + strings.Join(paramTypes, ",") + ")"
}

// dataLocationSuffixes are appended to reference types in AST type strings but are not part of the ABI type.
var dataLocationSuffixes = []string{" storage pointer", " storage ref", " memory", " calldata", " storage"}

// CanonicalABIType converts an elementary Solidity type name, or the full type string of a complex type, into its
// canonical ABI form: aliases like `uint` and `fixed` receive their explicit sizes, `address payable` becomes
// `address`, and data location suffixes are removed.
func CanonicalABIType(typeName string) string {
	for _, suffix := range dataLocationSuffixes {
		typeName = strings.ReplaceAll(typeName, suffix, "")
	}
	typeName = strings.ReplaceAll(typeName, "address payable", "address")

	// Split off array dimensions so `uint[]` canonicalizes to `uint256[]`
	base, dimensions := typeName, ""
	if index := strings.Index(typeName, "["); index != -1 {
		base, dimensions = typeName[:index], typeName[index:]
	}

	switch base {
	case "int":
		base = "int256"
	case "uint":
		base = "uint256"
	case "fixed":
		base = "fixed128x18"
	case "ufixed":
		base = "ufixed128x18"
	case "byte":
		base = "bytes1"
	}
	return base + dimensions
}
