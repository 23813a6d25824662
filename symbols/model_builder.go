package symbols

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/crytic/medusa-geth/accounts/abi"
	"github.com/crytic/soltrace/compilation/abiutils"
	"github.com/crytic/soltrace/compilation/types"
	"github.com/crytic/soltrace/logging"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// maxEnumMembersForUint8 is the largest enum whose values fit the uint8 ABI type.
const maxEnumMembersForUint8 = 256

// abiEntry is a single entry of a contract ABI, kept raw so each entry can be parsed on its own.
type abiEntry struct {
	Type string `json:"type"`
	Name string `json:"name"`
	raw  json.RawMessage
}

// parseABIEntries splits a raw ABI array into its entries.
func parseABIEntries(rawABI json.RawMessage) ([]abiEntry, error) {
	if len(rawABI) == 0 || string(rawABI) == "null" {
		return nil, nil
	}

	var rawEntries []json.RawMessage
	if err := json.Unmarshal(rawABI, &rawEntries); err != nil {
		return nil, err
	}

	entries := make([]abiEntry, 0, len(rawEntries))
	for _, rawEntry := range rawEntries {
		var entry abiEntry
		if err := json.Unmarshal(rawEntry, &entry); err != nil {
			return nil, err
		}
		entry.raw = rawEntry
		entries = append(entries, entry)
	}
	return entries, nil
}

// modeledContract keeps the build-time state of a contract: its compiler output and the ids needed to resolve
// inheritance once every contract is registered.
type modeledContract struct {
	contract   *Contract
	sourcePath string
	compiled   *types.CompiledContract
	abiEntries []abiEntry
	baseIDs    []int
	id         int
}

// modelBuilder walks the ASTs of a compilation and populates the model. Its maps are keyed by compiler-assigned ids
// and are only written while building.
type modelBuilder struct {
	compilation *types.Compilation
	logger      *logging.Logger
	diagnostics Diagnostics

	// files maps source ids to source files.
	files map[int]*SourceFile

	// contracts maps AST contract ids to their build-time state.
	contracts map[int]*modeledContract

	// contractOrder lists AST contract ids in registration order.
	contractOrder []int

	// enumMemberCounts maps AST enum ids to their number of members.
	enumMemberCounts map[int]int

	// valueTypes maps AST ids of user-defined value types to their underlying type.
	valueTypes map[int]*types.TypeName
}

// newModelBuilder returns a builder for the given compilation.
func newModelBuilder(compilation *types.Compilation, logger *logging.Logger) *modelBuilder {
	return &modelBuilder{
		compilation:      compilation,
		logger:           logger,
		diagnostics:      make(Diagnostics, 0),
		files:            make(map[int]*SourceFile),
		contracts:        make(map[int]*modeledContract),
		contractOrder:    make([]int, 0),
		enumMemberCounts: make(map[int]int),
		valueTypes:       make(map[int]*types.TypeName),
	}
}

// warn records a warning diagnostic and logs it.
func (b *modelBuilder) warn(source string, contract string, format string, args ...any) {
	b.addDiagnostic(DiagnosticSeverityWarning, source, contract, fmt.Sprintf(format, args...))
}

// addDiagnostic records a diagnostic and logs it at a level matching its severity.
func (b *modelBuilder) addDiagnostic(severity DiagnosticSeverity, source string, contract string, message string) {
	diagnostic := Diagnostic{Severity: severity, Source: source, Contract: contract, Message: message}
	b.diagnostics = append(b.diagnostics, diagnostic)
	if severity == DiagnosticSeverityWarning {
		b.logger.Warn(diagnostic.String())
	} else {
		b.logger.Debug(diagnostic.String())
	}
}

// build creates a source file per source, walks every AST, then resolves inheritance.
func (b *modelBuilder) build() error {
	sourcePaths := b.compilation.SortedSourcePaths()

	for _, sourcePath := range sourcePaths {
		artifact := b.compilation.SourcePathToArtifact[sourcePath]
		if _, exists := b.files[artifact.SourceUnitId]; exists {
			return errors.Errorf("source %s reuses source id %d", sourcePath, artifact.SourceUnitId)
		}
		b.files[artifact.SourceUnitId] = newSourceFile(artifact.SourceUnitId, sourcePath, artifact.Content)
		b.indexDeclarations(artifact.Ast.Nodes)
	}

	for _, sourcePath := range sourcePaths {
		artifact := b.compilation.SourcePathToArtifact[sourcePath]
		if err := b.processSourceUnit(sourcePath, artifact); err != nil {
			return err
		}
	}

	b.linkAncestors()
	return nil
}

// indexDeclarations records enum sizes and user-defined value types so parameter types referring to them can be
// canonicalized no matter which source declares them.
func (b *modelBuilder) indexDeclarations(nodes []types.Node) {
	for _, node := range nodes {
		switch n := node.(type) {
		case types.EnumDefinition:
			b.enumMemberCounts[n.ID] = len(n.Members)
		case types.UserDefinedValueTypeDefinition:
			b.valueTypes[n.ID] = n.UnderlyingType
		case types.ContractDefinition:
			b.indexDeclarations(n.Nodes)
		}
	}
}

// processSourceUnit walks the top-level nodes of a source unit.
func (b *modelBuilder) processSourceUnit(sourcePath string, artifact types.SourceArtifact) error {
	file := b.files[artifact.SourceUnitId]
	for _, node := range artifact.Ast.Nodes {
		switch n := node.(type) {
		case types.ContractDefinition:
			if err := b.processContract(sourcePath, file, artifact, n); err != nil {
				return err
			}
		case types.FunctionDefinition:
			function, err := b.processFunction(sourcePath, nil, n, nil)
			if err != nil {
				return err
			}
			if function != nil {
				file.Functions = append(file.Functions, function)
			}
		}
	}
	return nil
}

// processContract models a contract or library definition and its functions. Interfaces are skipped.
func (b *modelBuilder) processContract(sourcePath string, file *SourceFile, artifact types.SourceArtifact, definition types.ContractDefinition) error {
	var kind ContractKind
	switch definition.Kind {
	case types.ContractKindContract:
		kind = ContractKindContract
	case types.ContractKindLibrary:
		kind = ContractKindLibrary
	case types.ContractKindInterface:
		return nil
	default:
		return errors.Errorf("contract %s in %s has unknown kind %q", definition.Name, sourcePath, definition.Kind)
	}

	if definition.LinearizedBaseContracts == nil {
		return errors.Errorf("contract %s in %s has no linearizedBaseContracts, the compiler output is not supported", definition.Name, sourcePath)
	}
	if _, exists := b.contracts[definition.ID]; exists {
		return errors.Errorf("contract %s in %s reuses AST id %d", definition.Name, sourcePath, definition.ID)
	}

	location, err := b.location(definition.Src)
	if err != nil {
		return errors.Wrapf(err, "contract %s in %s", definition.Name, sourcePath)
	}
	contract := newContract(definition.Name, kind, location)
	file.Contracts = append(file.Contracts, contract)

	state := &modeledContract{
		contract:   contract,
		sourcePath: sourcePath,
		baseIDs:    definition.LinearizedBaseContracts,
		id:         definition.ID,
	}
	if compiled, ok := artifact.Contracts[definition.Name]; ok {
		state.compiled = &compiled
		state.abiEntries, err = parseABIEntries(compiled.Abi)
		if err != nil {
			return errors.Wrapf(err, "could not parse ABI of contract %s in %s", definition.Name, sourcePath)
		}
	}
	b.contracts[definition.ID] = state
	b.contractOrder = append(b.contractOrder, definition.ID)

	for _, node := range definition.Nodes {
		var function *ContractFunction
		switch n := node.(type) {
		case types.FunctionDefinition:
			function, err = b.processFunction(sourcePath, contract, n, state.abiEntries)
		case types.ModifierDefinition:
			function, err = b.processModifier(sourcePath, contract, n)
		case types.VariableDeclaration:
			function, err = b.processGetter(sourcePath, contract, n, state.abiEntries)
		}
		if err != nil {
			return err
		}
		if function != nil {
			contract.addLocalFunction(function)
		}
	}
	return nil
}

// processFunction models a function definition. A nil function is returned for declarations without a body.
func (b *modelBuilder) processFunction(sourcePath string, contract *Contract, definition types.FunctionDefinition, abiEntries []abiEntry) (*ContractFunction, error) {
	if !definition.IsImplemented() {
		return nil, nil
	}
	if definition.Parameters == nil {
		return nil, errors.Errorf("function %s in %s has no parameter list, the compiler output is not supported", definition.Name, sourcePath)
	}

	kind, err := functionKind(definition.Kind, contract == nil)
	if err != nil {
		return nil, errors.Wrapf(err, "function %s in %s", definition.Name, sourcePath)
	}
	visibility, err := parseVisibility(definition.Visibility)
	if err != nil {
		return nil, errors.Wrapf(err, "function %s in %s", definition.Name, sourcePath)
	}
	location, err := b.location(definition.Src)
	if err != nil {
		return nil, errors.Wrapf(err, "function %s in %s", definition.Name, sourcePath)
	}

	function := &ContractFunction{
		Name:       definition.Name,
		Kind:       kind,
		Location:   location,
		Contract:   contract,
		Visibility: visibility,
		Payable:    definition.StateMutability == "payable",
	}

	// Only ordinary functions reachable by other accounts have a selector
	if kind != ContractFunctionKindFunction || !visibility.IsExternallyVisible() {
		return function, nil
	}

	var selector Selector
	if definition.FunctionSelector != "" {
		selector, err = ParseSelector(definition.FunctionSelector)
		if err != nil {
			return nil, errors.Wrapf(err, "function %s in %s", definition.Name, sourcePath)
		}
		function.SelectorSource = SelectorSourceAST
	} else {
		paramTypes := make([]string, 0, len(definition.Parameters.Parameters))
		for _, parameter := range definition.Parameters.Parameters {
			paramTypes = append(paramTypes, b.canonicalParameterType(sourcePath, contract.Name, parameter))
		}
		selector = SelectorFromSignature(abiutils.CanonicalSignature(definition.Name, paramTypes))
		function.SelectorSource = SelectorSourceComputed
	}
	function.Selector = &selector
	function.ParamTypes = b.matchABIParamTypes(sourcePath, contract.Name, abiEntries, definition.Name, selector)
	return function, nil
}

// processModifier models a modifier definition. Modifiers without a body are skipped.
func (b *modelBuilder) processModifier(sourcePath string, contract *Contract, definition types.ModifierDefinition) (*ContractFunction, error) {
	if !definition.IsImplemented() {
		return nil, nil
	}
	visibility, err := parseVisibility(definition.Visibility)
	if err != nil {
		return nil, errors.Wrapf(err, "modifier %s in %s", definition.Name, sourcePath)
	}
	location, err := b.location(definition.Src)
	if err != nil {
		return nil, errors.Wrapf(err, "modifier %s in %s", definition.Name, sourcePath)
	}
	return &ContractFunction{
		Name:       definition.Name,
		Kind:       ContractFunctionKindModifier,
		Location:   location,
		Contract:   contract,
		Visibility: visibility,
	}, nil
}

// processGetter models the getter of a public state variable, provided the contract's ABI declares it.
func (b *modelBuilder) processGetter(sourcePath string, contract *Contract, declaration types.VariableDeclaration, abiEntries []abiEntry) (*ContractFunction, error) {
	if !declaration.StateVariable || declaration.Visibility != "public" {
		return nil, nil
	}
	if !hasABIFunction(abiEntries, declaration.Name) {
		return nil, nil
	}

	location, err := b.location(declaration.Src)
	if err != nil {
		return nil, errors.Wrapf(err, "state variable %s in %s", declaration.Name, sourcePath)
	}
	function := &ContractFunction{
		Name:       declaration.Name,
		Kind:       ContractFunctionKindGetter,
		Location:   location,
		Contract:   contract,
		Visibility: VisibilityPublic,
	}

	var selector Selector
	if declaration.FunctionSelector != "" {
		selector, err = ParseSelector(declaration.FunctionSelector)
		if err != nil {
			return nil, errors.Wrapf(err, "state variable %s in %s", declaration.Name, sourcePath)
		}
		function.SelectorSource = SelectorSourceAST
	} else {
		if declaration.TypeName == nil {
			return nil, errors.Errorf("state variable %s in %s has no type name, the compiler output is not supported", declaration.Name, sourcePath)
		}
		paramTypes := b.getterParameterTypes(sourcePath, contract.Name, declaration.TypeName)
		selector = SelectorFromSignature(abiutils.CanonicalSignature(declaration.Name, paramTypes))
		function.SelectorSource = SelectorSourceComputed
	}
	function.Selector = &selector
	function.ParamTypes = b.matchABIParamTypes(sourcePath, contract.Name, abiEntries, declaration.Name, selector)
	return function, nil
}

// getterParameterTypes returns the parameters of a public state variable getter: one per mapping key and one
// uint256 index per array dimension, in nesting order.
func (b *modelBuilder) getterParameterTypes(sourcePath string, contractName string, typeName *types.TypeName) []string {
	paramTypes := make([]string, 0)
	for next := typeName; next != nil; {
		switch next.NodeType {
		case types.NodeTypeMapping:
			if next.KeyType != nil {
				paramTypes = append(paramTypes, b.canonicalTypeName(sourcePath, contractName, next.KeyType, next.KeyType.TypeDescriptions.TypeString))
			}
			next = next.ValueType
		case types.NodeTypeArrayTypeName:
			paramTypes = append(paramTypes, "uint256")
			next = next.BaseType
		default:
			next = nil
		}
	}
	return paramTypes
}

// canonicalParameterType returns the canonical ABI type of a parameter declaration.
func (b *modelBuilder) canonicalParameterType(sourcePath string, contractName string, parameter types.VariableDeclaration) string {
	if parameter.TypeName == nil {
		return abiutils.CanonicalABIType(parameter.TypeDescriptions.TypeString)
	}
	return b.canonicalTypeName(sourcePath, contractName, parameter.TypeName, parameter.TypeDescriptions.TypeString)
}

// canonicalTypeName canonicalizes a type name node. Contracts become address, enums become uint8 and user-defined
// value types become their underlying type. Any other type uses its declared type string without data locations.
func (b *modelBuilder) canonicalTypeName(sourcePath string, contractName string, typeName *types.TypeName, typeString string) string {
	if typeName.TypeDescriptions.TypeString != "" {
		typeString = typeName.TypeDescriptions.TypeString
	}

	switch {
	case typeName.IsContract():
		return "address"
	case typeName.IsEnum():
		if typeName.ReferencedDeclaration != nil {
			if members := b.enumMemberCounts[*typeName.ReferencedDeclaration]; members > maxEnumMembersForUint8 {
				b.warn(sourcePath, contractName, "%s has %d members and cannot be encoded as uint8", typeString, members)
			}
		}
		return "uint8"
	case typeName.NodeType == types.NodeTypeUserDefinedTypeName && typeName.ReferencedDeclaration != nil:
		if underlying, ok := b.valueTypes[*typeName.ReferencedDeclaration]; ok && underlying != nil {
			return abiutils.CanonicalABIType(underlying.Name)
		}
	case typeName.NodeType == types.NodeTypeElementaryTypeName && typeName.Name != "":
		return abiutils.CanonicalABIType(typeName.Name)
	}
	return abiutils.CanonicalABIType(typeString)
}

// hasABIFunction indicates whether the ABI declares a function with the given name.
func hasABIFunction(abiEntries []abiEntry, name string) bool {
	for _, entry := range abiEntries {
		if entry.Type == "function" && entry.Name == name {
			return true
		}
	}
	return false
}

// matchABIParamTypes finds the ABI function entry with the given name whose selector equals the given selector and
// returns its parameter types. Overloads share a name, so the selector decides. Returns nil when no entry matches.
func (b *modelBuilder) matchABIParamTypes(sourcePath string, contractName string, abiEntries []abiEntry, name string, selector Selector) []string {
	for _, entry := range abiEntries {
		if entry.Type != "function" || entry.Name != name {
			continue
		}

		method, err := parseABIMethod(entry.raw)
		if err != nil {
			b.warn(sourcePath, contractName, "could not parse ABI entry of function %s: %v", name, err)
			continue
		}
		if !bytes.Equal(method.ID, selector[:]) {
			continue
		}

		paramTypes := make([]string, len(method.Inputs))
		for i, input := range method.Inputs {
			paramTypes[i] = input.Type.String()
		}
		return paramTypes
	}
	return nil
}

// parseABIMethod parses a single ABI function entry.
func parseABIMethod(entry json.RawMessage) (*abi.Method, error) {
	wrapped := make([]byte, 0, len(entry)+2)
	wrapped = append(wrapped, '[')
	wrapped = append(wrapped, entry...)
	wrapped = append(wrapped, ']')

	parsed, err := abi.JSON(bytes.NewReader(wrapped))
	if err != nil {
		return nil, err
	}
	for _, method := range parsed.Methods {
		return &method, nil
	}
	return nil, errors.New("ABI entry does not declare a function")
}

// functionKind converts the AST function kind into a ContractFunctionKind.
func functionKind(kind string, fileLevel bool) (ContractFunctionKind, error) {
	if fileLevel {
		return ContractFunctionKindFreeFunction, nil
	}
	switch kind {
	case "function", "":
		return ContractFunctionKindFunction, nil
	case "constructor":
		return ContractFunctionKindConstructor, nil
	case "fallback":
		return ContractFunctionKindFallback, nil
	case "receive":
		return ContractFunctionKindReceive, nil
	case "freeFunction":
		return ContractFunctionKindFreeFunction, nil
	default:
		return "", errors.Errorf("unknown function kind %q", kind)
	}
}

// location resolves an AST src triple into a SourceLocation. A triple naming an unknown source is an error, since
// every declaration must live in a modeled file.
func (b *modelBuilder) location(src string) (*SourceLocation, error) {
	parsed, err := types.ParseSrc(src)
	if err != nil {
		return nil, err
	}
	file, ok := b.files[parsed.FileIndex]
	if !ok {
		return nil, errors.Errorf("src %q refers to unknown source id %d", src, parsed.FileIndex)
	}
	return NewSourceLocation(file, parsed.Start, parsed.Length), nil
}

// linkAncestors resolves each contract's linearized base contract ids once every contract is registered. Ids that
// do not resolve belong to interfaces and are skipped.
func (b *modelBuilder) linkAncestors() {
	for _, id := range b.contractOrder {
		state := b.contracts[id]
		for _, baseID := range state.baseIDs {
			if baseID == id {
				continue
			}
			base, ok := b.contracts[baseID]
			if !ok {
				continue
			}
			state.contract.Ancestors = append(state.contract.Ancestors, base.contract)
		}
	}
}

// sortedContracts returns the build-time state of every contract, ordered by source name then contract name.
func (b *modelBuilder) sortedContracts() []*modeledContract {
	sorted := make([]*modeledContract, 0, len(b.contractOrder))
	for _, id := range b.contractOrder {
		sorted = append(sorted, b.contracts[id])
	}
	slices.SortStableFunc(sorted, func(x, y *modeledContract) int {
		if x.sourcePath != y.sourcePath {
			return strings.Compare(x.sourcePath, y.sourcePath)
		}
		return strings.Compare(x.contract.Name, y.contract.Name)
	})
	return sorted
}

// allContracts returns every modeled contract in registration order.
func (b *modelBuilder) allContracts() []*Contract {
	contracts := make([]*Contract, 0, len(b.contractOrder))
	for _, id := range b.contractOrder {
		contracts = append(contracts, b.contracts[id].contract)
	}
	return contracts
}
