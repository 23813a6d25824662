package symbols

import (
	"github.com/Masterminds/semver"
	"github.com/crytic/soltrace/compilation/types"
	"github.com/pkg/errors"
)

// Bytecode is the decoded deployment or runtime bytecode of a contract.
type Bytecode struct {
	// Contract is the contract the bytecode was compiled from.
	Contract *Contract

	// IsDeployment indicates whether this is deployment (init) bytecode rather than runtime bytecode.
	IsDeployment bool

	// Code is the bytecode with every library placeholder region zero-filled.
	Code []byte

	// Instructions lists the decoded instructions in byte offset order.
	Instructions []*Instruction

	// LibraryLinks lists the 20-byte regions where library addresses are patched in, sorted by offset.
	LibraryLinks []LibraryLink

	// ImmutableReferences lists the ranges where immutable values are injected, sorted by offset. Only runtime
	// bytecode has them.
	ImmutableReferences []ImmutableReference

	// Version is the compiler version string, or empty if it is unknown.
	Version string

	// pcToInstruction indexes Instructions by program counter.
	pcToInstruction map[int]*Instruction

	// programLength is the byte length of the decoded program. Anything after it is trailing data.
	programLength int
}

// decodeBytecode decodes one of a contract's bytecodes. Deployment and runtime bytecode are decoded independently,
// each with its own source map. Returns nil if the bytecode is empty, as it is for abstract contracts.
// Returns an error if the compiler output for the bytecode is malformed.
func decodeBytecode(contract *Contract, compiled *types.CompiledContract, isDeployment bool, files map[int]*SourceFile, compilerVersion string) (*Bytecode, error) {
	hexCode, sourceMapStr, linkReferences := compiled.RuntimeBytecode, compiled.SrcMapsRuntime, compiled.RuntimeLinkReferences
	if isDeployment {
		hexCode, sourceMapStr, linkReferences = compiled.InitBytecode, compiled.SrcMapsInit, compiled.InitLinkReferences
	}
	if len(hexCode) == 0 {
		return nil, nil
	}

	code, libraryLinks, err := normalizeBytecode(hexCode, linkReferences)
	if err != nil {
		return nil, err
	}

	immutableReferences := make([]ImmutableReference, 0)
	if !isDeployment {
		immutableReferences, err = flattenImmutableReferences(compiled.ImmutableReferences, len(code))
		if err != nil {
			return nil, err
		}
	}

	sourceMap, err := types.ParseSourceMap(sourceMapStr)
	if err != nil {
		return nil, errors.Wrap(err, "malformed source map")
	}

	instructions, programLength := decodeInstructions(code, sourceMap, files)
	pcToInstruction := make(map[int]*Instruction, len(instructions))
	for _, instruction := range instructions {
		pcToInstruction[instruction.PC] = instruction
	}

	// Prefer the version from the JSON metadata, then the one embedded in the bytecode trailer
	version := compiled.CompilerVersion()
	if version == "" {
		if metadata := types.ExtractContractMetadata(code); metadata != nil {
			version = metadata.CompilerVersion()
		}
	}
	if version == "" {
		version = compilerVersion
	}

	return &Bytecode{
		Contract:            contract,
		IsDeployment:        isDeployment,
		Code:                code,
		Instructions:        instructions,
		LibraryLinks:        libraryLinks,
		ImmutableReferences: immutableReferences,
		Version:             version,
		pcToInstruction:     pcToInstruction,
		programLength:       programLength,
	}, nil
}

// InstructionAt returns the instruction starting at the given program counter, or nil if none starts there.
func (b *Bytecode) InstructionAt(pc int) *Instruction {
	return b.pcToInstruction[pc]
}

// ProgramLength returns the number of bytes covered by the decoded instructions.
func (b *Bytecode) ProgramLength() int {
	return b.programLength
}

// TrailingData returns the bytes after the last complete instruction, such as a truncated push at the end of the
// code. It is empty when the whole buffer decodes.
func (b *Bytecode) TrailingData() []byte {
	return b.Code[b.programLength:]
}

// LibraryPositions returns the byte offsets of the library address regions.
func (b *Bytecode) LibraryPositions() []int {
	positions := make([]int, len(b.LibraryLinks))
	for i, link := range b.LibraryLinks {
		positions[i] = link.Offset
	}
	return positions
}

// CompilerVersion parses the compiler version the bytecode was produced with.
// Returns an error if the version is unknown or malformed.
func (b *Bytecode) CompilerVersion() (*semver.Version, error) {
	if b.Version == "" {
		return nil, errors.New("compiler version is unknown")
	}
	version, err := semver.NewVersion(b.Version)
	if err != nil {
		return nil, errors.Wrapf(err, "malformed compiler version %q", b.Version)
	}
	return version, nil
}

// Kind returns "deployment" or "runtime".
func (b *Bytecode) Kind() string {
	if b.IsDeployment {
		return "deployment"
	}
	return "runtime"
}
