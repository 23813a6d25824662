package types

import (
	"encoding/hex"

	"github.com/crytic/medusa-geth/crypto"
)

// LibraryPlaceholderLength is the number of hex characters a library placeholder occupies: one 20-byte address.
const LibraryPlaceholderLength = 40

// GenerateLibraryPlaceholder creates the placeholder solc (>= 0.5.0) emits for the library with the given fully
// qualified name (`source:Library`): `__$` followed by the first 34 hex characters of the keccak256 hash of the name
// and `$__`.
func GenerateLibraryPlaceholder(fullyQualifiedName string) string {
	hash := crypto.Keccak256Hash([]byte(fullyQualifiedName))
	return "__$" + hex.EncodeToString(hash.Bytes())[:34] + "$__"
}

// LibraryPlaceholders returns a lookup of placeholder to fully qualified library name for every library referenced
// in the provided link references.
func (l LinkReferences) LibraryPlaceholders() map[string]string {
	placeholders := make(map[string]string)
	for sourcePath, libraries := range l {
		for libraryName := range libraries {
			fullyQualifiedName := sourcePath + ":" + libraryName
			placeholders[GenerateLibraryPlaceholder(fullyQualifiedName)] = fullyQualifiedName
		}
	}
	return placeholders
}
