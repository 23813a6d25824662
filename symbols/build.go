package symbols

import (
	"github.com/crytic/soltrace/compilation/types"
	"github.com/crytic/soltrace/logging"
	"github.com/crytic/soltrace/logging/colors"
	"github.com/pkg/errors"
)

// BuildResult is the output of Build: the model, the decoded bytecodes of every compiled contract and the
// diagnostics accumulated for entities that were skipped or corrected.
type BuildResult struct {
	// Model is the source and contract model.
	Model *Model

	// Bytecodes lists the decoded bytecodes, ordered by contract then deployment before runtime.
	Bytecodes []*Bytecode

	// Diagnostics lists non-fatal problems found while building.
	Diagnostics Diagnostics

	// contractBytecodes indexes the deployment and runtime bytecode of each contract.
	contractBytecodes map[*Contract]*ContractBytecodes
}

// ContractBytecodes pairs the deployment and runtime bytecode of a contract. Either may be nil.
type ContractBytecodes struct {
	Deployment *Bytecode
	Runtime    *Bytecode
}

// BytecodesFor returns the deployment and runtime bytecode of the given contract. Both are nil for contracts that
// produced no bytecode, such as abstract contracts.
func (r *BuildResult) BytecodesFor(contract *Contract) ContractBytecodes {
	if bytecodes, ok := r.contractBytecodes[contract]; ok {
		return *bytecodes
	}
	return ContractBytecodes{}
}

// Build constructs the symbolication model of a compilation. The ASTs are walked first, then each compiled
// contract's deployment and runtime bytecode is decoded, then selectors are finalized and custom errors modeled.
// Contracts are processed in source name then contract name order, so identical input yields an identical model.
// Returns an error naming the offending source or contract if the compiler output is malformed. No partial result is
// returned in that case.
func Build(compilation *types.Compilation, logger *logging.Logger) (*BuildResult, error) {
	if compilation == nil {
		return nil, errors.New("cannot build a model without a compilation")
	}
	if logger == nil {
		logger = logging.GlobalLogger
	}
	logger = logger.NewSubLogger("service", logging.SYMBOLS_SERVICE)

	builder := newModelBuilder(compilation, logger)
	if err := builder.build(); err != nil {
		return nil, err
	}

	result := &BuildResult{
		Bytecodes:         make([]*Bytecode, 0),
		contractBytecodes: make(map[*Contract]*ContractBytecodes),
	}

	contracts := builder.sortedContracts()
	for _, state := range contracts {
		if state.compiled == nil {
			continue
		}

		bytecodes := &ContractBytecodes{}
		for _, isDeployment := range []bool{true, false} {
			bytecode, err := decodeBytecode(state.contract, state.compiled, isDeployment, builder.files, compilation.CompilerVersion)
			if err != nil {
				kind := "runtime"
				if isDeployment {
					kind = "deployment"
				}
				return nil, errors.Wrapf(err, "could not decode %s bytecode of %s", kind, state.contract.FullyQualifiedName())
			}
			if bytecode == nil {
				continue
			}
			if isDeployment {
				bytecodes.Deployment = bytecode
			} else {
				bytecodes.Runtime = bytecode
			}
			result.Bytecodes = append(result.Bytecodes, bytecode)
		}
		result.contractBytecodes[state.contract] = bytecodes
	}

	builder.correctSelectors()
	for _, state := range contracts {
		builder.modelCustomErrors(state)
	}

	result.Model = newModel(builder.files, builder.allContracts())
	result.Diagnostics = builder.diagnostics

	logger.Info("Built model ", colors.Bold(result.Model.BuildID), " with ", len(result.Model.Files), " sources, ",
		len(result.Model.Contracts), " contracts and ", len(result.Bytecodes), " bytecodes")
	if warnings := result.Diagnostics.Warnings(); len(warnings) > 0 {
		logger.Warn(colors.Yellow, len(warnings), " entities could not be fully modeled")
	}
	return result, nil
}

// modelCustomErrors builds a CustomError for each "error" entry of the contract's ABI. Entries that cannot be
// parsed are skipped with a diagnostic.
func (b *modelBuilder) modelCustomErrors(state *modeledContract) {
	for _, entry := range state.abiEntries {
		if entry.Type != "error" {
			continue
		}
		customError, err := NewCustomErrorFromABI(entry.raw)
		if err != nil {
			b.warn(state.sourcePath, state.contract.Name, "skipped custom error %s: %v", entry.Name, err)
			continue
		}
		state.contract.addCustomError(customError)
	}
}
