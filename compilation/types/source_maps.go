package types

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Reference: Source mapping is performed according to the rules specified in solidity documentation:
// https://docs.soliditylang.org/en/latest/internals/source_mappings.html

// SourceMapJumpType describes the type of jump operation occurring within a SourceMapElement if the instruction
// is jumping.
type SourceMapJumpType string

const (
	// SourceMapJumpTypeNone indicates no jump occurred.
	SourceMapJumpTypeNone SourceMapJumpType = ""

	// SourceMapJumpTypeJumpIn indicates a jump into a function occurred.
	SourceMapJumpTypeJumpIn SourceMapJumpType = "i"

	// SourceMapJumpTypeJumpOut indicates a return from a function occurred.
	SourceMapJumpTypeJumpOut SourceMapJumpType = "o"

	// SourceMapJumpTypeJumpWithin indicates a jump occurred within the same function, e.g. for loops.
	SourceMapJumpTypeJumpWithin SourceMapJumpType = "-"
)

// SourceMap describes a list of elements which correspond to instruction indexes in compiled bytecode, describing
// which source files and the start/end range of the source code which the instruction maps to.
type SourceMap []SourceMapElement

// SourceMapElement describes an individual element of a source mapping output by the compiler.
// The index of each element in a source map corresponds to an instruction index (not to be mistaken with offset).
type SourceMapElement struct {
	// Index refers to the index of the SourceMapElement within its parent SourceMap.
	Index int

	// Offset refers to the byte offset which marks the start of the source range the instruction maps to.
	Offset int

	// Length refers to the byte length of the source range the instruction maps to.
	Length int

	// FileID refers to the compiler-assigned source id of the file housing the source range. It is -1 for
	// compiler-generated code which has no source.
	FileID int

	// JumpType refers to the SourceMapJumpType which provides information about any type of jump that occurred.
	JumpType SourceMapJumpType

	// ModifierDepth refers to the depth in which code has executed a modifier function.
	ModifierDepth int
}

// HasSource indicates whether the element points into a source file at all.
func (e SourceMapElement) HasSource() bool {
	return e.FileID >= 0 && e.Offset >= 0 && e.Length >= 0
}

// sourceMapDecoder holds the previous element while a compressed source map is being expanded. Any field omitted
// from an element inherits the value it had in the previous element.
type sourceMapDecoder struct {
	previous SourceMapElement
}

// newSourceMapDecoder returns a decoder whose initial state marks every field as unknown.
func newSourceMapDecoder() *sourceMapDecoder {
	return &sourceMapDecoder{
		previous: SourceMapElement{
			Index:  -1,
			Offset: -1,
			Length: -1,
			FileID: -1,
		},
	}
}

// next expands a single compressed element.
func (d *sourceMapDecoder) next(element string) (SourceMapElement, error) {
	current := d.previous
	current.Index++

	// An empty element repeats the previous one entirely
	if len(element) == 0 {
		d.previous = current
		return current, nil
	}

	fields := strings.Split(element, ":")
	if len(fields) > 5 {
		return SourceMapElement{}, errors.Errorf("source map element %d has %d fields", current.Index, len(fields))
	}

	integerFields := []*int{&current.Offset, &current.Length, &current.FileID}
	for i := 0; i < len(fields) && i < len(integerFields); i++ {
		if fields[i] == "" {
			continue
		}
		value, err := strconv.Atoi(fields[i])
		if err != nil {
			return SourceMapElement{}, errors.Wrapf(err, "source map element %d has a malformed field", current.Index)
		}
		*integerFields[i] = value
	}

	if len(fields) > 3 && fields[3] != "" {
		switch jumpType := SourceMapJumpType(fields[3]); jumpType {
		case SourceMapJumpTypeJumpIn, SourceMapJumpTypeJumpOut, SourceMapJumpTypeJumpWithin:
			current.JumpType = jumpType
		default:
			return SourceMapElement{}, errors.Errorf("source map element %d has unknown jump type %q", current.Index, fields[3])
		}
	}

	if len(fields) > 4 && fields[4] != "" {
		depth, err := strconv.Atoi(fields[4])
		if err != nil {
			return SourceMapElement{}, errors.Wrapf(err, "source map element %d has a malformed modifier depth", current.Index)
		}
		current.ModifierDepth = depth
	}

	d.previous = current
	return current, nil
}

// ParseSourceMap takes a source mapping string returned by the compiler and parses it into an array of
// SourceMapElement objects.
// Returns the list of SourceMapElement objects, or an error if the source map is malformed.
func ParseSourceMap(sourceMapStr string) (SourceMap, error) {
	// If our provided source map string is empty, there is no work to be done.
	if len(sourceMapStr) == 0 {
		return SourceMap{}, nil
	}

	elements := strings.Split(sourceMapStr, ";")
	sourceMap := make(SourceMap, 0, len(elements))
	decoder := newSourceMapDecoder()
	for _, element := range elements {
		decoded, err := decoder.next(element)
		if err != nil {
			return nil, err
		}
		sourceMap = append(sourceMap, decoded)
	}
	return sourceMap, nil
}
