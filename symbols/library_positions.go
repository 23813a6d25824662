package symbols

import (
	"encoding/hex"
	"sort"
	"strconv"
	"strings"

	"github.com/crytic/soltrace/compilation/types"
	"github.com/pkg/errors"
)

// libraryAddressLength is the byte length of a linked library address.
const libraryAddressLength = types.LibraryPlaceholderLength / 2

// LibraryLink is a region of bytecode where a library address is patched in at link time.
type LibraryLink struct {
	// Offset is the byte offset of the 20-byte address region.
	Offset int

	// Library is the fully qualified name of the library, or its legacy placeholder name if that is all the bytecode
	// records.
	Library string
}

// ImmutableReference is a byte range of runtime bytecode where an immutable variable's value is injected.
type ImmutableReference struct {
	// VariableID is the AST id of the immutable variable.
	VariableID string
	Offset     int
	Length     int
}

// End returns the exclusive end offset of the range.
func (r ImmutableReference) End() int {
	return r.Offset + r.Length
}

// normalizeBytecode decodes hex bytecode that may contain library placeholders. Every placeholder, and every region
// listed in the link references, is zero-filled in the returned bytes so opcode decoding never reads placeholder
// text. The recorded regions are returned sorted by offset.
// Returns an error if the hex is malformed or a link reference does not fit a 20-byte region of the bytecode.
func normalizeBytecode(hexCode string, linkReferences types.LinkReferences) ([]byte, []LibraryLink, error) {
	libraryNames := linkReferences.LibraryPlaceholders()
	links := make(map[int]string)

	// Replace placeholders with zeros so the remaining text is valid hex
	var normalizedHex strings.Builder
	normalizedHex.Grow(len(hexCode))
	for i := 0; i < len(hexCode); {
		if placeholder, ok := placeholderAt(hexCode, i); ok {
			library, known := libraryNames[placeholder]
			if !known {
				library = strings.Trim(placeholder, "_$")
			}
			links[i/2] = library
			normalizedHex.WriteString(strings.Repeat("0", types.LibraryPlaceholderLength))
			i += types.LibraryPlaceholderLength
			continue
		}
		normalizedHex.WriteByte(hexCode[i])
		i++
	}

	code, err := hex.DecodeString(normalizedHex.String())
	if err != nil {
		return nil, nil, errors.Wrap(err, "malformed bytecode hex")
	}

	// Link references can point at regions already patched with a real address
	for sourcePath, libraries := range linkReferences {
		for libraryName, ranges := range libraries {
			for _, byteRange := range ranges {
				if byteRange.Length != libraryAddressLength {
					return nil, nil, errors.Errorf("link reference for %s:%s at offset %d spans %d bytes", sourcePath, libraryName, byteRange.Start, byteRange.Length)
				}
				if byteRange.Start < 0 || byteRange.Start+byteRange.Length > len(code) {
					return nil, nil, errors.Errorf("link reference for %s:%s at offset %d exceeds the bytecode length %d", sourcePath, libraryName, byteRange.Start, len(code))
				}
				clear(code[byteRange.Start : byteRange.Start+byteRange.Length])
				links[byteRange.Start] = sourcePath + ":" + libraryName
			}
		}
	}

	offsets := make([]int, 0, len(links))
	for offset := range links {
		offsets = append(offsets, offset)
	}
	sort.Ints(offsets)

	libraryLinks := make([]LibraryLink, len(offsets))
	for i, offset := range offsets {
		libraryLinks[i] = LibraryLink{Offset: offset, Library: links[offset]}
	}
	return code, libraryLinks, nil
}

// placeholderAt returns the library placeholder starting at index i of the hex string, if any. Placeholders are
// 40 characters long, begin and end with `__` and start on a byte boundary: `__$<34 hex>$__` since solc 0.5.0 and
// `__<library name padded with _>__` before that.
func placeholderAt(hexCode string, i int) (string, bool) {
	if i%2 != 0 || i+types.LibraryPlaceholderLength > len(hexCode) {
		return "", false
	}
	candidate := hexCode[i : i+types.LibraryPlaceholderLength]
	if !strings.HasPrefix(candidate, "__") || !strings.HasSuffix(candidate, "__") {
		return "", false
	}
	return candidate, true
}

// flattenImmutableReferences merges the per-variable immutable ranges into one list sorted by offset.
// Returns an error if a range is empty or exceeds the bytecode length.
func flattenImmutableReferences(immutableReferences types.ImmutableReferences, codeLength int) ([]ImmutableReference, error) {
	references := make([]ImmutableReference, 0)
	for variableID, ranges := range immutableReferences {
		for _, byteRange := range ranges {
			if byteRange.Start < 0 || byteRange.Length <= 0 || byteRange.Start+byteRange.Length > codeLength {
				return nil, errors.Errorf("immutable reference of variable %s at offset %d with length %d exceeds the bytecode length %d", variableID, byteRange.Start, byteRange.Length, codeLength)
			}
			references = append(references, ImmutableReference{
				VariableID: variableID,
				Offset:     byteRange.Start,
				Length:     byteRange.Length,
			})
		}
	}

	sort.Slice(references, func(i, j int) bool {
		if references[i].Offset != references[j].Offset {
			return references[i].Offset < references[j].Offset
		}
		return variableIDLess(references[i].VariableID, references[j].VariableID)
	})
	return references, nil
}

// variableIDLess orders AST ids numerically. Ids that are not integers sort after those that are, lexically.
func variableIDLess(a string, b string) bool {
	aValue, aErr := strconv.Atoi(a)
	bValue, bErr := strconv.Atoi(b)
	switch {
	case aErr == nil && bErr == nil:
		return aValue < bValue
	case aErr == nil || bErr == nil:
		return aErr == nil
	default:
		return a < b
	}
}
