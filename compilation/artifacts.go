package compilation

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/crytic/soltrace/compilation/types"
	"github.com/crytic/soltrace/logging"
	"github.com/pkg/errors"
)

// ReadStandardJSONArtifacts reads a solc standard-JSON input file (for source text) and the matching output file
// from disk and converts them into a types.Compilation.
// Returns the compilation, or an error if either file cannot be read or does not have the expected shape.
func ReadStandardJSONArtifacts(inputPath string, outputPath string) (*types.Compilation, error) {
	logger := logging.GlobalLogger.NewSubLogger("service", logging.COMPILATION_SERVICE)

	inputData, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	outputData, err := os.ReadFile(outputPath)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var input types.SolcStandardInput
	if err = json.Unmarshal(inputData, &input); err != nil {
		return nil, errors.Wrapf(err, "could not parse compiler input %s", inputPath)
	}
	var output types.SolcStandardOutput
	if err = json.Unmarshal(outputData, &output); err != nil {
		return nil, errors.Wrapf(err, "could not parse compiler output %s", outputPath)
	}

	logger.Debug("Read compiler artifacts with ", len(output.Sources), " sources from ", outputPath)
	return NewCompilationFromStandardJSON(&input, &output)
}

// NewCompilationFromStandardJSON converts a decoded standard-JSON input/output pair into a types.Compilation. Every
// source must carry an id and an AST: output without them comes from an incompatible compiler and is rejected.
func NewCompilationFromStandardJSON(input *types.SolcStandardInput, output *types.SolcStandardOutput) (*types.Compilation, error) {
	// Output carrying compile errors has no usable artifacts
	for _, outputError := range output.Errors {
		if outputError.Severity == "error" {
			return nil, errors.Errorf("compiler output contains errors: %s", outputError.Message)
		}
	}

	compilation := types.NewCompilation()
	for sourcePath, source := range output.Sources {
		if source.ID == nil {
			return nil, errors.Errorf("source %s has no compiler-assigned id", sourcePath)
		}
		if len(source.AST) == 0 {
			return nil, errors.Errorf("source %s has no AST", sourcePath)
		}
		if existingPath, exists := compilation.SourceIdToPath[*source.ID]; exists {
			return nil, errors.Errorf("sources %s and %s share the id %d", existingPath, sourcePath, *source.ID)
		}

		var ast types.AST
		if err := json.Unmarshal(source.AST, &ast); err != nil {
			return nil, errors.Wrapf(err, "could not parse AST of source %s", sourcePath)
		}
		if ast.NodeType != types.NodeTypeSourceUnit {
			return nil, errors.Errorf("AST root of source %s is a %q node", sourcePath, ast.NodeType)
		}

		inputSource, ok := input.Sources[sourcePath]
		if !ok {
			return nil, errors.Errorf("source %s is missing from the compiler input", sourcePath)
		}

		compilation.SourcePathToArtifact[sourcePath] = types.SourceArtifact{
			SourceUnitId: *source.ID,
			Ast:          ast,
			Content:      inputSource.Content,
			Contracts:    make(map[string]types.CompiledContract),
		}
		compilation.SourceIdToPath[*source.ID] = sourcePath
	}

	for sourcePath, contracts := range output.Contracts {
		sourceArtifact, ok := compilation.SourcePathToArtifact[sourcePath]
		if !ok {
			return nil, errors.Errorf("contracts were emitted for unknown source %s", sourcePath)
		}

		for contractName, contract := range contracts {
			compiledContract := types.CompiledContract{
				Abi:                   contract.Abi,
				InitBytecode:          strings.TrimPrefix(contract.Evm.Bytecode.Object, "0x"),
				RuntimeBytecode:       strings.TrimPrefix(contract.Evm.DeployedBytecode.Object, "0x"),
				SrcMapsInit:           contract.Evm.Bytecode.SourceMap,
				SrcMapsRuntime:        contract.Evm.DeployedBytecode.SourceMap,
				InitLinkReferences:    contract.Evm.Bytecode.LinkReferences,
				RuntimeLinkReferences: contract.Evm.DeployedBytecode.LinkReferences,
				ImmutableReferences:   contract.Evm.DeployedBytecode.ImmutableReferences,
				MethodIdentifiers:     contract.Evm.MethodIdentifiers,
				Metadata:              contract.Metadata,
			}
			sourceArtifact.Contracts[contractName] = compiledContract

			if compilation.CompilerVersion == "" {
				compilation.CompilerVersion = compiledContract.CompilerVersion()
			}
		}
	}

	return compilation, nil
}
