package types

import "encoding/json"

// The types below mirror the subset of solc's standard-JSON input and output we consume.
// Reference: https://docs.soliditylang.org/en/latest/using-the-compiler.html#compiler-input-and-output-json-description

// SolcStandardInput is the standard-JSON compiler input. Only source contents are read from it.
type SolcStandardInput struct {
	Language string                     `json:"language"`
	Sources  map[string]SolcInputSource `json:"sources"`
}

// SolcInputSource is a single source entry of the compiler input.
type SolcInputSource struct {
	Content string `json:"content"`
}

// SolcStandardOutput is the standard-JSON compiler output.
type SolcStandardOutput struct {
	Sources   map[string]SolcOutputSource              `json:"sources"`
	Contracts map[string]map[string]SolcOutputContract `json:"contracts"`
	Errors    []SolcOutputError                        `json:"errors,omitempty"`
}

// SolcOutputSource holds the compiler-assigned source id and the AST of a source unit.
type SolcOutputSource struct {
	ID  *int            `json:"id"`
	AST json.RawMessage `json:"ast"`
}

// SolcOutputError is a compiler diagnostic. Output containing errors of severity "error" has no usable artifacts.
type SolcOutputError struct {
	Severity         string `json:"severity"`
	Type             string `json:"type"`
	Message          string `json:"message"`
	FormattedMessage string `json:"formattedMessage"`
}

// SolcOutputContract is a single compiled contract.
type SolcOutputContract struct {
	Abi      json.RawMessage `json:"abi"`
	Metadata string          `json:"metadata"`
	Evm      SolcEvmOutput   `json:"evm"`
}

// SolcEvmOutput holds the EVM-related outputs of a compiled contract.
type SolcEvmOutput struct {
	Bytecode          SolcBytecodeOutput `json:"bytecode"`
	DeployedBytecode  SolcBytecodeOutput `json:"deployedBytecode"`
	MethodIdentifiers map[string]string  `json:"methodIdentifiers"`
}

// SolcBytecodeOutput describes either the deployment or the runtime bytecode of a contract.
type SolcBytecodeOutput struct {
	// Object is the hex-encoded bytecode. Unlinked bytecode contains library placeholders and is not valid hex.
	Object              string              `json:"object"`
	SourceMap           string              `json:"sourceMap"`
	LinkReferences      LinkReferences      `json:"linkReferences"`
	ImmutableReferences ImmutableReferences `json:"immutableReferences"`
}

// ByteRange is a `{start, length}` byte range within a bytecode object.
type ByteRange struct {
	Start  int `json:"start"`
	Length int `json:"length"`
}

// LinkReferences maps source name to library name to the byte ranges where the library address must be patched.
type LinkReferences map[string]map[string][]ByteRange

// ImmutableReferences maps the AST id of an immutable variable (as a string) to the ranges its value is injected at.
type ImmutableReferences map[string][]ByteRange

// SolcContractMetadata is the subset of the JSON metadata string embedded in a contract's output that we read.
type SolcContractMetadata struct {
	Compiler struct {
		Version string `json:"version"`
	} `json:"compiler"`
}
