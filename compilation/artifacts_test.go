package compilation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/crytic/soltrace/compilation/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testInput = `{
	"language": "Solidity",
	"sources": {
		"Counter.sol": {"content": "contract Counter { function inc() external {} }"}
	}
}`

const testOutput = `{
	"sources": {
		"Counter.sol": {
			"id": 0,
			"ast": {
				"nodeType": "SourceUnit",
				"id": 8,
				"src": "0:47:0",
				"nodes": [{
					"nodeType": "ContractDefinition",
					"id": 7,
					"src": "0:47:0",
					"name": "Counter",
					"contractKind": "contract",
					"linearizedBaseContracts": [7],
					"nodes": [{
						"nodeType": "FunctionDefinition",
						"id": 6,
						"src": "19:26:0",
						"name": "inc",
						"kind": "function",
						"visibility": "external",
						"stateMutability": "nonpayable",
						"functionSelector": "371303c0",
						"implemented": true,
						"parameters": {"parameters": []}
					}]
				}]
			}
		}
	},
	"contracts": {
		"Counter.sol": {
			"Counter": {
				"abi": [{"type": "function", "name": "inc", "inputs": [], "outputs": [], "stateMutability": "nonpayable"}],
				"metadata": "{\"compiler\":{\"version\":\"0.8.24+commit.e11b9ed9\"}}",
				"evm": {
					"bytecode": {"object": "0x6080604052", "sourceMap": "0:47:0:-:0;;", "linkReferences": {}},
					"deployedBytecode": {"object": "0x6001600201", "sourceMap": "19:26:0:-:0;;", "linkReferences": {}, "immutableReferences": {}},
					"methodIdentifiers": {"inc()": "371303c0"}
				}
			}
		}
	}
}`

// writeArtifacts writes compiler input and output files to a temporary directory and returns their paths.
func writeArtifacts(t *testing.T, input string, output string) (string, string) {
	directory := t.TempDir()
	inputPath := filepath.Join(directory, "input.json")
	outputPath := filepath.Join(directory, "output.json")
	require.NoError(t, os.WriteFile(inputPath, []byte(input), 0644))
	require.NoError(t, os.WriteFile(outputPath, []byte(output), 0644))
	return inputPath, outputPath
}

// TestReadStandardJSONArtifacts will test reading a compiler input and output pair into a compilation.
func TestReadStandardJSONArtifacts(t *testing.T) {
	inputPath, outputPath := writeArtifacts(t, testInput, testOutput)

	compilation, err := ReadStandardJSONArtifacts(inputPath, outputPath)
	require.NoError(t, err)

	assert.Equal(t, []string{"Counter.sol"}, compilation.SortedSourcePaths())
	assert.Equal(t, map[int]string{0: "Counter.sol"}, compilation.SourceIdToPath)
	assert.Equal(t, "0.8.24+commit.e11b9ed9", compilation.CompilerVersion)

	artifact := compilation.SourcePathToArtifact["Counter.sol"]
	assert.EqualValues(t, 0, artifact.SourceUnitId)
	assert.Equal(t, "contract Counter { function inc() external {} }", artifact.Content)
	require.Len(t, artifact.Ast.Nodes, 1)
	_, ok := artifact.Ast.Nodes[0].(types.ContractDefinition)
	assert.True(t, ok)

	contract := artifact.Contracts["Counter"]
	assert.Equal(t, "6080604052", contract.InitBytecode)
	assert.Equal(t, "6001600201", contract.RuntimeBytecode)
	assert.Equal(t, "19:26:0:-:0;;", contract.SrcMapsRuntime)
	assert.Equal(t, map[string]string{"inc()": "371303c0"}, contract.MethodIdentifiers)
}

// TestReadStandardJSONArtifactsFailures will test that missing files and incompatible output are rejected.
func TestReadStandardJSONArtifactsFailures(t *testing.T) {
	_, err := ReadStandardJSONArtifacts(filepath.Join(t.TempDir(), "missing.json"), filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	testCases := map[string]string{
		"compile error":     `{"errors": [{"severity": "error", "type": "ParserError", "message": "expected ;"}]}`,
		"missing id":        `{"sources": {"Counter.sol": {"ast": {"nodeType": "SourceUnit", "src": "0:1:0", "nodes": []}}}}`,
		"missing ast":       `{"sources": {"Counter.sol": {"id": 0}}}`,
		"unexpected root":   `{"sources": {"Counter.sol": {"id": 0, "ast": {"nodeType": "Block", "src": "0:1:0"}}}}`,
		"unknown source":    `{"sources": {"Other.sol": {"id": 0, "ast": {"nodeType": "SourceUnit", "src": "0:1:0", "nodes": []}}}}`,
		"orphaned contract": `{"sources": {}, "contracts": {"Counter.sol": {"Counter": {}}}}`,
		"malformed json":    `{"sources": `,
	}
	for name, output := range testCases {
		inputPath, outputPath := writeArtifacts(t, testInput, output)
		_, err = ReadStandardJSONArtifacts(inputPath, outputPath)
		assert.Error(t, err, name)
	}
}

// TestNewCompilationRejectsDuplicateIDs will test that two sources sharing an id are rejected.
func TestNewCompilationRejectsDuplicateIDs(t *testing.T) {
	id := 0
	ast := []byte(`{"nodeType": "SourceUnit", "src": "0:1:0", "nodes": []}`)
	input := &types.SolcStandardInput{Sources: map[string]types.SolcInputSource{"A.sol": {}, "B.sol": {}}}
	output := &types.SolcStandardOutput{Sources: map[string]types.SolcOutputSource{
		"A.sol": {ID: &id, AST: ast},
		"B.sol": {ID: &id, AST: ast},
	}}

	_, err := NewCompilationFromStandardJSON(input, output)
	assert.Error(t, err)
}
