package symbols

import (
	"fmt"
	"sort"
)

// SourceFile is a source unit of a compilation, identified by its compiler-assigned id.
type SourceFile struct {
	// ID is the compiler-assigned source id, which source maps and AST src triples refer to.
	ID int

	// SourceName is the name the source was compiled under.
	SourceName string

	// Content is the source text. Source locations are byte ranges into it.
	Content string

	// Contracts lists the contracts and libraries declared in this file, in declaration order.
	Contracts []*Contract

	// Functions lists the free (file-level) functions declared in this file, in declaration order.
	Functions []*ContractFunction

	// lineOffsets holds the byte offset each line starts at.
	lineOffsets []int
}

// newSourceFile creates a SourceFile and indexes its line starts.
func newSourceFile(id int, sourceName string, content string) *SourceFile {
	lineOffsets := []int{0}
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			lineOffsets = append(lineOffsets, i+1)
		}
	}
	return &SourceFile{
		ID:          id,
		SourceName:  sourceName,
		Content:     content,
		lineOffsets: lineOffsets,
	}
}

// LineNumber returns the 1-based line number containing the given byte offset.
func (f *SourceFile) LineNumber(offset int) int {
	return sort.Search(len(f.lineOffsets), func(i int) bool {
		return f.lineOffsets[i] > offset
	})
}

// ContainingFunction returns the innermost function, modifier or getter declared in this file whose declaration
// contains the given location, or nil if there is none.
func (f *SourceFile) ContainingFunction(location *SourceLocation) *ContractFunction {
	var innermost *ContractFunction
	consider := func(function *ContractFunction) {
		if !function.Location.Contains(location) {
			return
		}
		if innermost == nil || function.Location.Length < innermost.Location.Length {
			innermost = function
		}
	}

	for _, contract := range f.Contracts {
		for _, function := range contract.LocalFunctions {
			consider(function)
		}
	}
	for _, function := range f.Functions {
		consider(function)
	}
	return innermost
}

// SourceLocation is a byte range within a SourceFile.
type SourceLocation struct {
	File   *SourceFile
	Offset int
	Length int
}

// NewSourceLocation returns the location [offset, offset+length) within file.
func NewSourceLocation(file *SourceFile, offset int, length int) *SourceLocation {
	return &SourceLocation{File: file, Offset: offset, Length: length}
}

// End returns the exclusive end offset of the location.
func (l *SourceLocation) End() int {
	return l.Offset + l.Length
}

// Text returns the source text the location covers, clamped to the file's content.
func (l *SourceLocation) Text() string {
	start, end := l.Offset, l.End()
	if start > len(l.File.Content) {
		start = len(l.File.Content)
	}
	if end > len(l.File.Content) {
		end = len(l.File.Content)
	}
	return l.File.Content[start:end]
}

// StartLine returns the 1-based line number the location starts on.
func (l *SourceLocation) StartLine() int {
	return l.File.LineNumber(l.Offset)
}

// Contains indicates whether other lies entirely within this location.
func (l *SourceLocation) Contains(other *SourceLocation) bool {
	if other == nil || l.File != other.File {
		return false
	}
	return other.Offset >= l.Offset && other.End() <= l.End()
}

// Equals indicates whether both locations cover the same range of the same file.
func (l *SourceLocation) Equals(other *SourceLocation) bool {
	return other != nil && l.File == other.File && l.Offset == other.Offset && l.Length == other.Length
}

// String returns the location as `source:offset:length`.
func (l *SourceLocation) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File.SourceName, l.Offset, l.Length)
}
