package symbols

import (
	"bytes"

	"golang.org/x/exp/slices"
)

// ContractKind describes the kind of a modeled contract. Interfaces are never modeled.
type ContractKind string

const (
	ContractKindContract ContractKind = "CONTRACT"
	ContractKindLibrary  ContractKind = "LIBRARY"
)

// Contract is a contract or library declared in a source file.
type Contract struct {
	// Name is the contract name as declared in source.
	Name string

	// Kind describes whether this is a contract or a library.
	Kind ContractKind

	// Location is the contract's declaration range.
	Location *SourceLocation

	// LocalFunctions lists the functions, modifiers and getters declared by this contract, in declaration order.
	LocalFunctions []*ContractFunction

	// Ancestors lists the modeled base contracts from most to least derived, excluding the contract itself.
	Ancestors []*Contract

	// CustomErrors lists the custom errors the contract's ABI declares, in ABI order.
	CustomErrors []*CustomError

	// selectorToFunction is the effective function surface: local externally reachable functions and, once selectors
	// were corrected, those inherited from ancestors that were not overridden.
	selectorToFunction map[Selector]*ContractFunction

	// selectorToCustomError indexes CustomErrors by selector.
	selectorToCustomError map[Selector]*CustomError

	constructor *ContractFunction
	fallback    *ContractFunction
	receive     *ContractFunction
}

// newContract returns an empty Contract declared at the given location.
func newContract(name string, kind ContractKind, location *SourceLocation) *Contract {
	return &Contract{
		Name:                  name,
		Kind:                  kind,
		Location:              location,
		LocalFunctions:        make([]*ContractFunction, 0),
		Ancestors:             make([]*Contract, 0),
		CustomErrors:          make([]*CustomError, 0),
		selectorToFunction:    make(map[Selector]*ContractFunction),
		selectorToCustomError: make(map[Selector]*CustomError),
	}
}

// SourceFile returns the file the contract is declared in.
func (c *Contract) SourceFile() *SourceFile {
	return c.Location.File
}

// FullyQualifiedName returns the contract name prefixed with its source name, e.g. `contracts/Token.sol:Token`.
func (c *Contract) FullyQualifiedName() string {
	return c.Location.File.SourceName + ":" + c.Name
}

// Constructor returns the contract's constructor, or nil if it does not declare one.
func (c *Contract) Constructor() *ContractFunction {
	return c.constructor
}

// Fallback returns the contract's fallback function, or nil if it does not declare one.
func (c *Contract) Fallback() *ContractFunction {
	return c.fallback
}

// Receive returns the contract's receive function, or nil if it does not declare one.
func (c *Contract) Receive() *ContractFunction {
	return c.receive
}

// FunctionBySelector returns the function on the contract's effective surface with the given selector, or nil.
func (c *Contract) FunctionBySelector(selector Selector) *ContractFunction {
	return c.selectorToFunction[selector]
}

// Functions returns the contract's effective function surface, sorted by selector.
func (c *Contract) Functions() []*ContractFunction {
	selectors := make([]Selector, 0, len(c.selectorToFunction))
	for selector := range c.selectorToFunction {
		selectors = append(selectors, selector)
	}
	slices.SortFunc(selectors, func(a, b Selector) int {
		return bytes.Compare(a[:], b[:])
	})

	functions := make([]*ContractFunction, 0, len(selectors))
	for _, selector := range selectors {
		functions = append(functions, c.selectorToFunction[selector])
	}
	return functions
}

// CustomErrorBySelector returns the custom error with the given selector, or nil.
func (c *Contract) CustomErrorBySelector(selector Selector) *CustomError {
	return c.selectorToCustomError[selector]
}

// addLocalFunction appends a function declared by this contract and registers it on the effective surface.
func (c *Contract) addLocalFunction(function *ContractFunction) {
	c.LocalFunctions = append(c.LocalFunctions, function)

	if function.IsExternallyReachable() {
		c.selectorToFunction[*function.Selector] = function
	}

	switch function.Kind {
	case ContractFunctionKindConstructor:
		c.constructor = function
	case ContractFunctionKindFallback:
		c.fallback = function
	case ContractFunctionKindReceive:
		c.receive = function
	}
}

// addCustomError registers a custom error. An error whose selector is already known is ignored.
func (c *Contract) addCustomError(customError *CustomError) bool {
	if _, exists := c.selectorToCustomError[customError.Selector]; exists {
		return false
	}
	c.CustomErrors = append(c.CustomErrors, customError)
	c.selectorToCustomError[customError.Selector] = customError
	return true
}

// String returns the contract's fully qualified name.
func (c *Contract) String() string {
	return c.FullyQualifiedName()
}
