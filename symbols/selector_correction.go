package symbols

import (
	"sort"
	"strings"
)

// correctSelectors finalizes the effective function surface of every contract. Computed selectors that disagree
// with the compiler's method identifiers are corrected first, so that the ancestors' functions carry their final
// selectors when they are inherited. Functions inherited without being overridden are then registered on every
// inheriting contract under the selector resolved at the defining ancestor. Finally, method identifiers that still
// do not resolve are reported.
func (b *modelBuilder) correctSelectors() {
	contracts := b.sortedContracts()
	for _, state := range contracts {
		b.reconcileLocalSelectors(state)
	}
	for _, state := range contracts {
		inheritSelectors(state.contract)
	}
	for _, state := range contracts {
		b.reportUnresolvedSelectors(state)
	}
}

// inheritSelectors adds each externally reachable function of the contract's ancestors to its surface, unless a
// more derived function already owns the selector. Ancestors are visited from most to least derived.
func inheritSelectors(contract *Contract) {
	for _, ancestor := range contract.Ancestors {
		for _, function := range ancestor.LocalFunctions {
			if !function.IsExternallyReachable() {
				continue
			}
			if _, exists := contract.selectorToFunction[*function.Selector]; exists {
				continue
			}
			contract.selectorToFunction[*function.Selector] = function
		}
	}
}

// sortedMethodIdentifiers returns the compiler's method identifiers of a contract, sorted by signature.
func sortedMethodIdentifiers(state *modeledContract) []string {
	if state.compiled == nil {
		return nil
	}
	signatures := make([]string, 0, len(state.compiled.MethodIdentifiers))
	for signature := range state.compiled.MethodIdentifiers {
		signatures = append(signatures, signature)
	}
	sort.Strings(signatures)
	return signatures
}

// reconcileLocalSelectors compares a contract's local functions against the selectors the compiler reported for it.
// A reported selector that no local function owns is attached to the single same-named local function whose
// computed selector the compiler does not know, since that selector came from an inaccurate canonicalization.
func (b *modelBuilder) reconcileLocalSelectors(state *modeledContract) {
	signatures := sortedMethodIdentifiers(state)
	if len(signatures) == 0 {
		return
	}

	contract := state.contract
	reported := make(map[Selector]string, len(signatures))
	for _, signature := range signatures {
		selector, err := ParseSelector(state.compiled.MethodIdentifiers[signature])
		if err != nil {
			b.warn(state.sourcePath, contract.Name, "compiler reported a malformed selector for %s: %v", signature, err)
			continue
		}
		reported[selector] = signature
	}

	for _, signature := range signatures {
		selector, err := ParseSelector(state.compiled.MethodIdentifiers[signature])
		if err != nil || contract.selectorToFunction[selector] != nil {
			continue
		}

		name := signature
		if index := strings.Index(signature, "("); index != -1 {
			name = signature[:index]
		}

		var candidates []*ContractFunction
		for _, function := range contract.LocalFunctions {
			if function.Name != name || function.SelectorSource != SelectorSourceComputed {
				continue
			}
			if _, known := reported[*function.Selector]; known {
				continue
			}
			candidates = append(candidates, function)
		}
		// Zero candidates means the function is inherited, which the surface check covers later
		if len(candidates) == 0 {
			continue
		}
		if len(candidates) > 1 {
			b.warn(state.sourcePath, contract.Name, "cannot attribute selector %s of %s: %d functions named %s have unverified selectors", selector, signature, len(candidates), name)
			continue
		}

		function := candidates[0]
		previous := *function.Selector
		delete(contract.selectorToFunction, previous)
		function.Selector = &selector
		function.SelectorSource = SelectorSourceCorrected
		if function.ParamTypes == nil {
			function.ParamTypes = b.matchABIParamTypes(state.sourcePath, contract.Name, state.abiEntries, function.Name, selector)
		}
		contract.selectorToFunction[selector] = function
		b.addDiagnostic(DiagnosticSeverityInfo, state.sourcePath, contract.Name, "corrected selector of "+function.Name+" from "+previous.String()+" to "+selector.String()+" ("+signature+")")
	}
}

// reportUnresolvedSelectors emits a diagnostic for each reported selector absent from the contract's final surface.
// Abstract contracts are not checked since their unimplemented functions are never modeled.
func (b *modelBuilder) reportUnresolvedSelectors(state *modeledContract) {
	if state.compiled == nil || state.compiled.RuntimeBytecode == "" {
		return
	}
	for _, signature := range sortedMethodIdentifiers(state) {
		selector, err := ParseSelector(state.compiled.MethodIdentifiers[signature])
		if err != nil {
			continue
		}
		if state.contract.FunctionBySelector(selector) == nil {
			b.warn(state.sourcePath, state.contract.Name, "no function resolves selector %s of %s", selector, signature)
		}
	}
}
