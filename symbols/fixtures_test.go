package symbols

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/crytic/soltrace/compilation/types"
	"github.com/stretchr/testify/require"
)

const parentSource = `pragma solidity ^0.8.0;

interface IThing {
    function thing() external;
}

abstract contract Parent is IThing {
    error InsufficientBalance(uint256 available);

    modifier onlyOwner() { _; }

    function f() external {}

    function thing() external {}

    function hidden() internal {}

    function todo(uint x) public virtual;
}
`

const childSource = `pragma solidity ^0.8.0;

import "./Parent.sol";

function helper(uint256 a) pure returns (uint256) { return a; }

contract Child is Parent {
    mapping(address => uint256[]) public balances;

    constructor() {}

    function todo(uint x) public override {}

    function send(Parent target, uint amount) external { target; amount; }
}
`

const (
	parentABI = `[
		{"type":"error","name":"InsufficientBalance","inputs":[{"name":"available","type":"uint256"}]},
		{"type":"function","name":"f","inputs":[],"outputs":[],"stateMutability":"nonpayable"},
		{"type":"function","name":"thing","inputs":[],"outputs":[],"stateMutability":"nonpayable"},
		{"type":"function","name":"todo","inputs":[{"name":"x","type":"uint256"}],"outputs":[],"stateMutability":"nonpayable"}
	]`

	childABI = `[
		{"type":"constructor","inputs":[],"stateMutability":"nonpayable"},
		{"type":"error","name":"Broken","inputs":[{"name":"x","type":"notatype"}]},
		{"type":"error","name":"InsufficientBalance","inputs":[{"name":"available","type":"uint256"}]},
		{"type":"function","name":"balances","inputs":[{"name":"","type":"address"},{"name":"","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},
		{"type":"function","name":"f","inputs":[],"outputs":[],"stateMutability":"nonpayable"},
		{"type":"function","name":"send","inputs":[{"name":"target","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[],"stateMutability":"nonpayable"},
		{"type":"function","name":"thing","inputs":[],"outputs":[],"stateMutability":"nonpayable"},
		{"type":"function","name":"todo","inputs":[{"name":"x","type":"uint256"}],"outputs":[],"stateMutability":"nonpayable"}
	]`
)

// Source ids and AST ids of the inheritance fixture.
const (
	parentSourceID = 0
	childSourceID  = 1

	interfaceID = 5
	parentID    = 10
	childID     = 20
)

// methodIdentifiers builds a methodIdentifiers table from signatures.
func methodIdentifiers(signatures ...string) map[string]string {
	identifiers := make(map[string]string, len(signatures))
	for _, signature := range signatures {
		identifiers[signature] = keccakSelectorHex(signature)
	}
	return identifiers
}

// newInheritanceCompilation returns a compilation of an abstract Parent implementing an interface and a Child
// inheriting from it. The child is declared in a source that sorts before the parent's, so the child's base contract
// id refers to a contract that is registered after it.
func newInheritanceCompilation(t *testing.T, childPath string) *testCompilation {
	c := newTestCompilation(t)

	thingSelector := keccakSelectorHex("thing()")
	parentNodes := []types.Node{
		types.ContractDefinition{
			NodeType:                types.NodeTypeContractDefinition,
			ID:                      interfaceID,
			Src:                     srcOf(t, parentSource, "interface IThing {\n    function thing() external;\n}", parentSourceID),
			Name:                    "IThing",
			Kind:                    types.ContractKindInterface,
			LinearizedBaseContracts: []int{interfaceID},
		},
		contractDefinition(parentID, "Parent", srcOf(t, parentSource, parentSource[strings.Index(parentSource, "abstract contract"):len(parentSource)-1], parentSourceID), []int{interfaceID},
			types.ModifierDefinition{
				NodeType:   types.NodeTypeModifierDefinition,
				ID:         11,
				Src:        srcOf(t, parentSource, "modifier onlyOwner() { _; }", parentSourceID),
				Name:       "onlyOwner",
				Visibility: "internal",
				Body:       json.RawMessage(`{"nodeType":"Block"}`),
			},
			functionDefinition(12, "f", srcOf(t, parentSource, "function f() external {}", parentSourceID), "external"),
			func() types.FunctionDefinition {
				definition := functionDefinition(13, "thing", srcOf(t, parentSource, "function thing() external {}", parentSourceID), "external")
				definition.FunctionSelector = thingSelector
				return definition
			}(),
			functionDefinition(14, "hidden", srcOf(t, parentSource, "function hidden() internal {}", parentSourceID), "internal"),
			func() types.FunctionDefinition {
				definition := functionDefinition(15, "todo", srcOf(t, parentSource, "function todo(uint x) public virtual;", parentSourceID), "public",
					parameter("x", elementaryType("uint")))
				definition.Implemented = boolPtr(false)
				return definition
			}(),
		),
	}
	c.addSource("contracts/Parent.sol", parentSourceID, parentSource, parentNodes...)
	c.addCompiledContract("contracts/Parent.sol", "Parent", types.CompiledContract{
		Abi:               json.RawMessage(parentABI),
		MethodIdentifiers: methodIdentifiers("f()", "thing()", "todo(uint256)"),
	})

	balancesType := &types.TypeName{
		NodeType:         types.NodeTypeMapping,
		TypeDescriptions: types.TypeDescriptions{TypeString: "mapping(address => uint256[])"},
		KeyType:          elementaryType("address"),
		ValueType: &types.TypeName{
			NodeType:         types.NodeTypeArrayTypeName,
			TypeDescriptions: types.TypeDescriptions{TypeString: "uint256[]"},
			BaseType:         elementaryType("uint256"),
		},
	}
	constructor := functionDefinition(22, "", srcOf(t, childSource, "constructor() {}", childSourceID), "public")
	constructor.Kind = "constructor"
	helper := functionDefinition(30, "helper", srcOf(t, childSource, "function helper(uint256 a) pure returns (uint256) { return a; }", childSourceID), "internal",
		parameter("a", elementaryType("uint256")))
	helper.Kind = "freeFunction"
	sendSrc := srcOf(t, childSource, "function send(Parent target, uint amount) external { target; amount; }", childSourceID)

	childNodes := []types.Node{
		helper,
		contractDefinition(childID, "Child", srcOf(t, childSource, childSource[strings.Index(childSource, "contract Child"):len(childSource)-1], childSourceID), []int{parentID, interfaceID},
			types.VariableDeclaration{
				NodeType:         types.NodeTypeVariableDeclaration,
				ID:               21,
				Src:              srcOf(t, childSource, "mapping(address => uint256[]) public balances;", childSourceID),
				Name:             "balances",
				Visibility:       "public",
				StateVariable:    true,
				TypeName:         balancesType,
				TypeDescriptions: balancesType.TypeDescriptions,
			},
			constructor,
			functionDefinition(23, "todo", srcOf(t, childSource, "function todo(uint x) public override {}", childSourceID), "public",
				parameter("x", elementaryType("uint"))),
			functionDefinition(24, "send", sendSrc, "external",
				parameter("target", userDefinedType("contract Parent", parentID)),
				parameter("amount", elementaryType("uint"))),
		),
	}
	c.addSource(childPath, childSourceID, childSource, childNodes...)
	c.addCompiledContract(childPath, "Child", types.CompiledContract{
		Abi:               json.RawMessage(childABI),
		InitBytecode:      "6080604052",
		RuntimeBytecode:   "6001600201",
		SrcMapsRuntime:    sendSrc + ";;",
		MethodIdentifiers: methodIdentifiers("balances(address,uint256)", "f()", "send(address,uint256)", "thing()", "todo(uint256)"),
	})

	return c
}

// requireContract returns the contract with the given fully qualified name.
func requireContract(t *testing.T, model *Model, fullyQualifiedName string) *Contract {
	contract := model.ContractByName(fullyQualifiedName)
	require.NotNil(t, contract, "contract %s must be modeled", fullyQualifiedName)
	return contract
}
