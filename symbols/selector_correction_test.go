package symbols

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/crytic/soltrace/compilation/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestInheritedSelector will test that a function inherited without an override appears on the inheriting
// contract's surface under the selector resolved at the defining contract.
func TestInheritedSelector(t *testing.T) {
	content := "contract A { function f() external {} } contract B is A {}"
	c := newTestCompilation(t)
	c.addSource("AB.sol", 0, content,
		contractDefinition(1, "A", srcOf(t, content, "contract A { function f() external {} }", 0), nil,
			functionDefinition(2, "f", srcOf(t, content, "function f() external {}", 0), "external"),
		),
		contractDefinition(3, "B", srcOf(t, content, "contract B is A {}", 0), []int{1}),
	)
	c.addCompiledContract("AB.sol", "B", types.CompiledContract{
		RuntimeBytecode:   "00",
		MethodIdentifiers: methodIdentifiers("f()"),
	})
	result := c.build()

	a := requireContract(t, result.Model, "AB.sol:A")
	b := requireContract(t, result.Model, "AB.sol:B")
	f := a.LocalFunctions[0]

	assert.Empty(t, b.LocalFunctions)
	assert.Same(t, f, b.FunctionBySelector(keccakSelector("f()")))
	assert.Equal(t, []*ContractFunction{f}, b.Functions())
	assert.Same(t, a, b.FunctionBySelector(*f.Selector).Contract)
	assert.Empty(t, result.Diagnostics)
}

// TestOverriddenSelector will test that an overriding function owns the selector on the inheriting contract.
func TestOverriddenSelector(t *testing.T) {
	content := "contract A { function f() external virtual {} } contract B is A { function f() external override {} }"
	c := newTestCompilation(t)
	c.addSource("AB.sol", 0, content,
		contractDefinition(1, "A", srcOf(t, content, "contract A { function f() external virtual {} }", 0), nil,
			functionDefinition(2, "f", srcOf(t, content, "function f() external virtual {}", 0), "external"),
		),
		contractDefinition(3, "B", srcOf(t, content, "contract B is A { function f() external override {} }", 0), []int{1},
			functionDefinition(4, "f", srcOf(t, content, "function f() external override {}", 0), "external"),
		),
	)
	result := c.build()

	b := requireContract(t, result.Model, "AB.sol:B")
	assert.Same(t, b.LocalFunctions[0], b.FunctionBySelector(keccakSelector("f()")))
}

const holderSource = "contract Holder { struct S { uint256 a; address b; } struct T { bool c; } " +
	"function s(S memory x) external {} function o(S memory x) external {} function o(T memory y) external {} } " +
	"contract Heir is Holder {}"

const holderABI = `[
	{"type":"function","name":"s","inputs":[{"name":"x","type":"tuple","internalType":"struct Holder.S","components":[{"name":"a","type":"uint256"},{"name":"b","type":"address"}]}],"outputs":[],"stateMutability":"nonpayable"},
	{"type":"function","name":"o","inputs":[{"name":"x","type":"tuple","internalType":"struct Holder.S","components":[{"name":"a","type":"uint256"},{"name":"b","type":"address"}]}],"outputs":[],"stateMutability":"nonpayable"},
	{"type":"function","name":"o","inputs":[{"name":"y","type":"tuple","internalType":"struct Holder.T","components":[{"name":"c","type":"bool"}]}],"outputs":[],"stateMutability":"nonpayable"}
]`

// newHolderCompilation returns a contract whose struct-typed functions have no compiler-provided selectors, so their
// computed selectors are wrong, along with a contract inheriting from it.
func newHolderCompilation(t *testing.T) *testCompilation {
	structS := userDefinedType("struct Holder.S memory", 5)
	structT := userDefinedType("struct Holder.T memory", 6)

	c := newTestCompilation(t)
	c.addSource("Holder.sol", 0, holderSource,
		contractDefinition(1, "Holder", srcOf(t, holderSource, holderSource[:len(holderSource)-len(" contract Heir is Holder {}")], 0), nil,
			functionDefinition(2, "s", srcOf(t, holderSource, "function s(S memory x) external {}", 0), "external", parameter("x", structS)),
			functionDefinition(3, "o", srcOf(t, holderSource, "function o(S memory x) external {}", 0), "external", parameter("x", structS)),
			functionDefinition(4, "o", srcOf(t, holderSource, "function o(T memory y) external {}", 0), "external", parameter("y", structT)),
		),
		contractDefinition(7, "Heir", srcOf(t, holderSource, "contract Heir is Holder {}", 0), []int{1}),
	)

	identifiers := methodIdentifiers("s((uint256,address))", "o((uint256,address))", "o((bool))")
	for _, name := range []string{"Holder", "Heir"} {
		c.addCompiledContract("Holder.sol", name, types.CompiledContract{
			Abi:               json.RawMessage(holderABI),
			RuntimeBytecode:   "00",
			MethodIdentifiers: identifiers,
		})
	}
	return c
}

// TestCorrectedSelector will test that a computed selector the compiler does not know is replaced with the
// compiler's selector for the same name, and that inheriting contracts see the corrected selector.
func TestCorrectedSelector(t *testing.T) {
	result := newHolderCompilation(t).build()

	holder := requireContract(t, result.Model, "Holder.sol:Holder")
	heir := requireContract(t, result.Model, "Holder.sol:Heir")
	s := holder.LocalFunctions[0]

	expected := keccakSelector("s((uint256,address))")
	require.NotNil(t, s.Selector)
	assert.Equal(t, expected, *s.Selector)
	assert.EqualValues(t, SelectorSourceCorrected, s.SelectorSource)
	assert.Equal(t, []string{"(uint256,address)"}, s.ParamTypes)
	assert.Same(t, s, holder.FunctionBySelector(expected))
	assert.Same(t, s, heir.FunctionBySelector(expected))
	assert.Nil(t, holder.FunctionBySelector(keccakSelector("s(struct Holder.S)")))

	corrections := 0
	for _, diagnostic := range result.Diagnostics {
		if diagnostic.Severity == DiagnosticSeverityInfo && diagnostic.Contract == "Holder" {
			corrections++
		}
	}
	assert.EqualValues(t, 1, corrections)
}

// TestAmbiguousSelectorCorrection will test that overloads which cannot be told apart are left untouched and
// reported instead of being guessed.
func TestAmbiguousSelectorCorrection(t *testing.T) {
	result := newHolderCompilation(t).build()

	holder := requireContract(t, result.Model, "Holder.sol:Holder")
	for _, function := range holder.LocalFunctions[1:] {
		assert.EqualValues(t, SelectorSourceComputed, function.SelectorSource)
	}
	assert.Nil(t, holder.FunctionBySelector(keccakSelector("o((bool))")))

	found := false
	for _, warning := range result.Diagnostics.Warnings() {
		if warning.Contract == "Holder" && strings.Contains(warning.Message, "cannot attribute") && strings.Contains(warning.Message, "o((bool))") {
			found = true
		}
	}
	assert.True(t, found)
}
