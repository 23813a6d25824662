package types

import (
	"encoding/json"
	"sort"
)

// Compilation represents the artifacts of a smart contract compilation.
type Compilation struct {
	// SourcePathToArtifact maps source names to their SourceArtifact.
	SourcePathToArtifact map[string]SourceArtifact

	// SourceIdToPath maps compiler-assigned source ids to source names.
	SourceIdToPath map[int]string

	// CompilerVersion is the compiler version reported for the compilation as a whole, if known.
	CompilerVersion string
}

// NewCompilation returns a new, empty Compilation object.
func NewCompilation() *Compilation {
	return &Compilation{
		SourcePathToArtifact: make(map[string]SourceArtifact),
		SourceIdToPath:       make(map[int]string),
	}
}

// SortedSourcePaths returns the source names of the compilation in lexical order.
func (c *Compilation) SortedSourcePaths() []string {
	paths := make([]string, 0, len(c.SourcePathToArtifact))
	for path := range c.SourcePathToArtifact {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// SourceArtifact represents a source descriptor for a smart contract compilation, including AST, source text and
// contained CompiledContract instances.
type SourceArtifact struct {
	// SourceUnitId is the compiler-assigned id of the source.
	SourceUnitId int

	// Ast describes the decoded abstract syntax tree of the source unit.
	Ast AST

	// Content is the source text, needed to slice source locations.
	Content string

	// Contracts maps contract names to the contracts compiled from this source.
	Contracts map[string]CompiledContract
}

// SortedContractNames returns the names of the contracts of this source in lexical order.
func (s SourceArtifact) SortedContractNames() []string {
	names := make([]string, 0, len(s.Contracts))
	for name := range s.Contracts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CompiledContract represents a single contract unit from a smart contract compilation.
type CompiledContract struct {
	// Abi is the raw ABI array. Entries are parsed individually by consumers so that one unsupported entry does not
	// invalidate the rest.
	Abi json.RawMessage

	// InitBytecode is the hex-encoded deployment bytecode, possibly containing library placeholders.
	InitBytecode string

	// RuntimeBytecode is the hex-encoded runtime bytecode, possibly containing library placeholders.
	RuntimeBytecode string

	// SrcMapsInit describes the source mappings for InitBytecode.
	SrcMapsInit string

	// SrcMapsRuntime describes the source mappings for RuntimeBytecode.
	SrcMapsRuntime string

	// InitLinkReferences and RuntimeLinkReferences locate library placeholders in each bytecode.
	InitLinkReferences    LinkReferences
	RuntimeLinkReferences LinkReferences

	// ImmutableReferences locates immutable variable injection ranges in RuntimeBytecode.
	ImmutableReferences ImmutableReferences

	// MethodIdentifiers maps canonical function signatures to hex selectors, as computed by the compiler.
	MethodIdentifiers map[string]string

	// Metadata is the JSON metadata string emitted by the compiler, if requested.
	Metadata string
}

// CompilerVersion returns the compiler version recorded in the contract's JSON metadata, or an empty string.
func (c CompiledContract) CompilerVersion() string {
	if c.Metadata == "" {
		return ""
	}
	var metadata SolcContractMetadata
	if err := json.Unmarshal([]byte(c.Metadata), &metadata); err != nil {
		return ""
	}
	return metadata.Compiler.Version
}
