package symbols

import (
	"encoding/hex"
	"fmt"
	"strings"
	"testing"

	"github.com/crytic/medusa-geth/crypto"
	"github.com/crytic/soltrace/compilation/types"
	"github.com/stretchr/testify/require"
)

// testCompilation assembles a types.Compilation from hand-built AST nodes, the way the artifact reader would.
type testCompilation struct {
	t           *testing.T
	compilation *types.Compilation
}

// newTestCompilation returns an empty testCompilation.
func newTestCompilation(t *testing.T) *testCompilation {
	return &testCompilation{t: t, compilation: types.NewCompilation()}
}

// addSource registers a source with the given id, content and top-level nodes.
func (c *testCompilation) addSource(path string, id int, content string, nodes ...types.Node) {
	c.compilation.SourcePathToArtifact[path] = types.SourceArtifact{
		SourceUnitId: id,
		Ast: types.AST{
			NodeType: types.NodeTypeSourceUnit,
			Src:      fmt.Sprintf("0:%d:%d", len(content), id),
			Nodes:    nodes,
		},
		Content:   content,
		Contracts: make(map[string]types.CompiledContract),
	}
	c.compilation.SourceIdToPath[id] = path
}

// addCompiledContract registers compiler output for a contract of a previously added source.
func (c *testCompilation) addCompiledContract(path string, name string, compiled types.CompiledContract) {
	artifact, ok := c.compilation.SourcePathToArtifact[path]
	require.True(c.t, ok, "source %s must be added before its contracts", path)
	artifact.Contracts[name] = compiled
}

// build runs Build over the compilation and requires it to succeed.
func (c *testCompilation) build() *BuildResult {
	result, err := Build(c.compilation, nil)
	require.NoError(c.t, err)
	return result
}

// srcOf returns the src triple of the first occurrence of snippet within content.
func srcOf(t *testing.T, content string, snippet string, fileID int) string {
	start := strings.Index(content, snippet)
	require.NotEqual(t, -1, start, "snippet %q not found", snippet)
	return fmt.Sprintf("%d:%d:%d", start, len(snippet), fileID)
}

// keccakSelector computes a selector with the geth hashing helpers, independently of SelectorFromSignature.
func keccakSelector(signature string) Selector {
	var selector Selector
	copy(selector[:], crypto.Keccak256([]byte(signature)))
	return selector
}

// keccakSelectorHex returns keccakSelector as unprefixed hex, the form used in methodIdentifiers.
func keccakSelectorHex(signature string) string {
	selector := keccakSelector(signature)
	return hex.EncodeToString(selector[:])
}

// boolPtr returns a pointer to the given bool.
func boolPtr(b bool) *bool {
	return &b
}

// intPtr returns a pointer to the given int.
func intPtr(i int) *int {
	return &i
}

// elementaryType returns an ElementaryTypeName node.
func elementaryType(name string) *types.TypeName {
	return &types.TypeName{
		NodeType:         types.NodeTypeElementaryTypeName,
		Name:             name,
		TypeDescriptions: types.TypeDescriptions{TypeString: name},
	}
}

// userDefinedType returns a UserDefinedTypeName node referring to the given declaration.
func userDefinedType(typeString string, referencedDeclaration int) *types.TypeName {
	return &types.TypeName{
		NodeType:              types.NodeTypeUserDefinedTypeName,
		TypeDescriptions:      types.TypeDescriptions{TypeString: typeString},
		ReferencedDeclaration: intPtr(referencedDeclaration),
	}
}

// parameter returns a parameter declaration of the given type.
func parameter(name string, typeName *types.TypeName) types.VariableDeclaration {
	return types.VariableDeclaration{
		NodeType:         types.NodeTypeVariableDeclaration,
		Name:             name,
		TypeName:         typeName,
		TypeDescriptions: typeName.TypeDescriptions,
	}
}

// functionDefinition returns an implemented function definition node.
func functionDefinition(id int, name string, src string, visibility string, parameters ...types.VariableDeclaration) types.FunctionDefinition {
	return types.FunctionDefinition{
		NodeType:        types.NodeTypeFunctionDefinition,
		ID:              id,
		Src:             src,
		Name:            name,
		Kind:            "function",
		Visibility:      visibility,
		StateMutability: "nonpayable",
		Parameters:      &types.ParameterList{Parameters: parameters},
		Implemented:     boolPtr(true),
	}
}

// contractDefinition returns a contract definition node. The contract's own id is prepended to bases.
func contractDefinition(id int, name string, src string, bases []int, nodes ...types.Node) types.ContractDefinition {
	return types.ContractDefinition{
		NodeType:                types.NodeTypeContractDefinition,
		ID:                      id,
		Src:                     src,
		Name:                    name,
		Kind:                    types.ContractKindContract,
		LinearizedBaseContracts: append([]int{id}, bases...),
		Nodes:                   nodes,
	}
}
