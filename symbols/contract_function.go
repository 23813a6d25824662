package symbols

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ContractFunctionKind describes what kind of callable a ContractFunction models.
type ContractFunctionKind string

const (
	ContractFunctionKindFunction     ContractFunctionKind = "FUNCTION"
	ContractFunctionKindConstructor  ContractFunctionKind = "CONSTRUCTOR"
	ContractFunctionKindFallback     ContractFunctionKind = "FALLBACK"
	ContractFunctionKindReceive      ContractFunctionKind = "RECEIVE"
	ContractFunctionKindFreeFunction ContractFunctionKind = "FREE_FUNCTION"
	ContractFunctionKindModifier     ContractFunctionKind = "MODIFIER"
	ContractFunctionKindGetter       ContractFunctionKind = "GETTER"
)

// Visibility describes the visibility of a function declaration.
type Visibility string

const (
	VisibilityPublic   Visibility = "PUBLIC"
	VisibilityExternal Visibility = "EXTERNAL"
	VisibilityInternal Visibility = "INTERNAL"
	VisibilityPrivate  Visibility = "PRIVATE"
)

// parseVisibility converts an AST visibility string into a Visibility. An empty visibility is treated as internal,
// which is what modifiers report on older compilers.
func parseVisibility(visibility string) (Visibility, error) {
	switch visibility {
	case "public":
		return VisibilityPublic, nil
	case "external":
		return VisibilityExternal, nil
	case "internal", "":
		return VisibilityInternal, nil
	case "private":
		return VisibilityPrivate, nil
	default:
		return "", errors.Errorf("unknown visibility %q", visibility)
	}
}

// IsExternallyVisible indicates whether the visibility allows calls from other accounts.
func (v Visibility) IsExternallyVisible() bool {
	return v == VisibilityPublic || v == VisibilityExternal
}

// SelectorSource records where a function's selector came from.
type SelectorSource int

const (
	// SelectorSourceNone indicates the function has no selector.
	SelectorSourceNone SelectorSource = iota
	// SelectorSourceAST indicates the compiler provided the selector in the AST.
	SelectorSourceAST
	// SelectorSourceComputed indicates the selector was computed by hashing a canonicalized signature.
	SelectorSourceComputed
	// SelectorSourceCorrected indicates a computed selector was replaced by the one the compiler reported in its
	// method identifiers.
	SelectorSourceCorrected
)

// String returns a human-readable name for the selector source.
func (s SelectorSource) String() string {
	switch s {
	case SelectorSourceAST:
		return "ast"
	case SelectorSourceComputed:
		return "computed"
	case SelectorSourceCorrected:
		return "corrected"
	default:
		return "none"
	}
}

// ContractFunction is a function, modifier or getter declared in a source file. Free functions have no Contract.
type ContractFunction struct {
	Name       string
	Kind       ContractFunctionKind
	Location   *SourceLocation
	Contract   *Contract
	Visibility Visibility
	Payable    bool

	// Selector is set only for externally reachable functions and getters.
	Selector *Selector

	// SelectorSource records how Selector was obtained.
	SelectorSource SelectorSource

	// ParamTypes holds the canonical parameter types taken from the matching ABI entry, or nil if no entry matched.
	ParamTypes []string
}

// IsExternallyReachable indicates whether the function can be dispatched to by selector.
func (f *ContractFunction) IsExternallyReachable() bool {
	return f.Selector != nil && f.Visibility.IsExternallyVisible()
}

// Signature returns the canonical signature of the function, e.g. `transfer(address,uint256)`. It is empty when the
// parameter types are unknown.
func (f *ContractFunction) Signature() string {
	if f.ParamTypes == nil {
		return ""
	}
	return fmt.Sprintf("%s(%s)", f.Name, strings.Join(f.ParamTypes, ","))
}

// String returns the function's name qualified with its contract, using the compiler's names for the special
// functions.
func (f *ContractFunction) String() string {
	name := f.Name
	switch f.Kind {
	case ContractFunctionKindConstructor:
		name = "constructor"
	case ContractFunctionKindFallback:
		name = "fallback"
	case ContractFunctionKindReceive:
		name = "receive"
	}

	if f.Contract == nil {
		return name
	}
	return f.Contract.Name + "." + name
}
