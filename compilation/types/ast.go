package types

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ContractKind represents the kind of contract definition represented by an AST node
type ContractKind string

const (
	// ContractKindContract represents a contract node
	ContractKindContract ContractKind = "contract"
	// ContractKindLibrary represents a library node
	ContractKindLibrary ContractKind = "library"
	// ContractKindInterface represents an interface node
	ContractKindInterface ContractKind = "interface"
)

// The node types the symbolication model reads. Any other node type is skipped while decoding.
const (
	NodeTypeSourceUnit                     = "SourceUnit"
	NodeTypeContractDefinition             = "ContractDefinition"
	NodeTypeFunctionDefinition             = "FunctionDefinition"
	NodeTypeModifierDefinition             = "ModifierDefinition"
	NodeTypeVariableDeclaration            = "VariableDeclaration"
	NodeTypeEnumDefinition                 = "EnumDefinition"
	NodeTypeUserDefinedValueTypeDefinition = "UserDefinedValueTypeDefinition"

	NodeTypeElementaryTypeName  = "ElementaryTypeName"
	NodeTypeUserDefinedTypeName = "UserDefinedTypeName"
	NodeTypeArrayTypeName       = "ArrayTypeName"
	NodeTypeMapping             = "Mapping"
	NodeTypeFunctionTypeName    = "FunctionTypeName"
)

// Node interface represents a generic AST node
type Node interface {
	GetNodeType() string
}

// Src is a `start:length:fileIndex` triple as found on every AST node and source map element.
type Src struct {
	Start     int
	Length    int
	FileIndex int
}

// ParseSrc parses a `start:length:fileIndex` triple. A malformed triple means the compiler output does not follow
// the AST format we support, so an error is returned.
func ParseSrc(src string) (Src, error) {
	fields := strings.Split(src, ":")
	if len(fields) != 3 {
		return Src{}, errors.Errorf("malformed src triple %q", src)
	}

	var (
		values [3]int
		err    error
	)
	for i, field := range fields {
		values[i], err = strconv.Atoi(field)
		if err != nil {
			return Src{}, errors.Wrapf(err, "malformed src triple %q", src)
		}
	}
	return Src{Start: values[0], Length: values[1], FileIndex: values[2]}, nil
}

// TypeDescriptions is the compiler's description of an expression or declaration type.
type TypeDescriptions struct {
	TypeIdentifier string `json:"typeIdentifier"`
	TypeString     string `json:"typeString"`
}

// TypeName is a type name node: ElementaryTypeName, UserDefinedTypeName, ArrayTypeName, Mapping or FunctionTypeName.
// Fields which do not apply to a given NodeType are left empty.
type TypeName struct {
	NodeType         string           `json:"nodeType"`
	Name             string           `json:"name,omitempty"`
	TypeDescriptions TypeDescriptions `json:"typeDescriptions"`

	// ReferencedDeclaration is the AST id of the declaration a UserDefinedTypeName points to.
	ReferencedDeclaration *int `json:"referencedDeclaration,omitempty"`

	// KeyType and ValueType are set for Mapping nodes.
	KeyType   *TypeName `json:"keyType,omitempty"`
	ValueType *TypeName `json:"valueType,omitempty"`

	// BaseType is set for ArrayTypeName nodes.
	BaseType *TypeName `json:"baseType,omitempty"`
}

// GetNodeType implements the Node interface
func (t TypeName) GetNodeType() string {
	return t.NodeType
}

// IsContract indicates whether the type refers to a contract, library or interface.
func (t TypeName) IsContract() bool {
	return t.NodeType == NodeTypeUserDefinedTypeName && strings.HasPrefix(t.TypeDescriptions.TypeString, "contract ")
}

// IsEnum indicates whether the type refers to an enum definition.
func (t TypeName) IsEnum() bool {
	return t.NodeType == NodeTypeUserDefinedTypeName && strings.HasPrefix(t.TypeDescriptions.TypeString, "enum ")
}

// VariableDeclaration is a state variable, parameter or return variable declaration node.
type VariableDeclaration struct {
	NodeType         string           `json:"nodeType"`
	ID               int              `json:"id"`
	Src              string           `json:"src"`
	Name             string           `json:"name"`
	Visibility       string           `json:"visibility"`
	StateVariable    bool             `json:"stateVariable"`
	Constant         bool             `json:"constant"`
	FunctionSelector string           `json:"functionSelector,omitempty"`
	TypeName         *TypeName        `json:"typeName,omitempty"`
	TypeDescriptions TypeDescriptions `json:"typeDescriptions"`
}

// GetNodeType implements the Node interface
func (v VariableDeclaration) GetNodeType() string {
	return v.NodeType
}

// ParameterList is the list of parameters of a function, modifier, event or error definition.
type ParameterList struct {
	Parameters []VariableDeclaration `json:"parameters"`
}

// FunctionDefinition is the function definition node
type FunctionDefinition struct {
	NodeType string `json:"nodeType"`
	ID       int    `json:"id"`
	Src      string `json:"src"`
	Name     string `json:"name"`

	// Kind is one of function, constructor, fallback, receive or freeFunction.
	Kind            string `json:"kind"`
	Visibility      string `json:"visibility"`
	StateMutability string `json:"stateMutability"`

	// FunctionSelector is provided by solc >= 0.6.0 for public and external functions.
	FunctionSelector string `json:"functionSelector,omitempty"`

	Parameters *ParameterList `json:"parameters"`

	// Implemented is absent in some compiler versions, in which case the presence of Body decides.
	Implemented *bool           `json:"implemented,omitempty"`
	Body        json.RawMessage `json:"body,omitempty"`
}

// GetNodeType implements the Node interface
func (f FunctionDefinition) GetNodeType() string {
	return f.NodeType
}

// IsImplemented indicates whether the function has a body.
func (f FunctionDefinition) IsImplemented() bool {
	if f.Implemented != nil {
		return *f.Implemented
	}
	return len(f.Body) > 0 && string(f.Body) != "null"
}

// ModifierDefinition is the modifier definition node
type ModifierDefinition struct {
	NodeType   string `json:"nodeType"`
	ID         int    `json:"id"`
	Src        string `json:"src"`
	Name       string `json:"name"`
	Visibility string `json:"visibility"`

	// Body is null for `virtual` modifiers declared without an implementation.
	Body json.RawMessage `json:"body,omitempty"`
}

// GetNodeType implements the Node interface
func (m ModifierDefinition) GetNodeType() string {
	return m.NodeType
}

// IsImplemented indicates whether the modifier has a body.
func (m ModifierDefinition) IsImplemented() bool {
	return len(m.Body) > 0 && string(m.Body) != "null"
}

// EnumValue is a member of an EnumDefinition.
type EnumValue struct {
	Name string `json:"name"`
}

// EnumDefinition is the enum definition node
type EnumDefinition struct {
	NodeType string      `json:"nodeType"`
	ID       int         `json:"id"`
	Src      string      `json:"src"`
	Name     string      `json:"name"`
	Members  []EnumValue `json:"members"`
}

// GetNodeType implements the Node interface
func (e EnumDefinition) GetNodeType() string {
	return e.NodeType
}

// UserDefinedValueTypeDefinition is a `type T is uint256;` definition node.
type UserDefinedValueTypeDefinition struct {
	NodeType       string    `json:"nodeType"`
	ID             int       `json:"id"`
	Src            string    `json:"src"`
	Name           string    `json:"name"`
	UnderlyingType *TypeName `json:"underlyingType"`
}

// GetNodeType implements the Node interface
func (u UserDefinedValueTypeDefinition) GetNodeType() string {
	return u.NodeType
}

// ContractDefinition is the contract definition node
type ContractDefinition struct {
	NodeType      string       `json:"nodeType"`
	ID            int          `json:"id"`
	Src           string       `json:"src"`
	Name          string       `json:"name"`
	CanonicalName string       `json:"canonicalName,omitempty"`
	Kind          ContractKind `json:"contractKind,omitempty"`
	Abstract      bool         `json:"abstract"`

	// LinearizedBaseContracts lists AST ids from most to least derived, starting with this contract itself. It is nil
	// when the compiler omitted the field.
	LinearizedBaseContracts []int `json:"linearizedBaseContracts"`

	// Nodes holds the decoded child nodes we model.
	Nodes []Node `json:"-"`
}

// GetNodeType implements the Node interface and returns the node type for the contract definition
func (c ContractDefinition) GetNodeType() string {
	return c.NodeType
}

// UnmarshalJSON decodes the contract definition and dispatches its child nodes on their node type.
func (c *ContractDefinition) UnmarshalJSON(data []byte) error {
	type Alias ContractDefinition
	aux := &struct {
		Nodes []json.RawMessage `json:"nodes"`
		*Alias
	}{
		Alias: (*Alias)(c),
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	nodes, err := unmarshalNodes(aux.Nodes)
	if err != nil {
		return errors.Wrapf(err, "could not decode nodes of contract %q", c.Name)
	}
	c.Nodes = nodes
	return nil
}

// AST is the abstract syntax tree of a single source unit
type AST struct {
	NodeType string `json:"nodeType"`
	ID       int    `json:"id"`
	Src      string `json:"src"`

	// Nodes holds the decoded top-level nodes we model.
	Nodes []Node `json:"-"`
}

// UnmarshalJSON decodes the source unit and dispatches its top-level nodes on their node type.
func (a *AST) UnmarshalJSON(data []byte) error {
	type Alias AST
	aux := &struct {
		Nodes []json.RawMessage `json:"nodes"`
		*Alias
	}{
		Alias: (*Alias)(a),
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	nodes, err := unmarshalNodes(aux.Nodes)
	if err != nil {
		return err
	}
	a.Nodes = nodes
	return nil
}

// GetSourceUnitID returns the file index of the source unit's src triple, or -1 if it cannot be parsed.
func (a *AST) GetSourceUnitID() int {
	src, err := ParseSrc(a.Src)
	if err != nil {
		return -1
	}
	return src.FileIndex
}

// unmarshalNodes decodes each raw node into the concrete type its nodeType names. Node types we do not model are
// skipped.
func unmarshalNodes(rawNodes []json.RawMessage) ([]Node, error) {
	nodes := make([]Node, 0, len(rawNodes))
	for _, nodeData := range rawNodes {
		var nodeType struct {
			NodeType string `json:"nodeType"`
		}
		if err := json.Unmarshal(nodeData, &nodeType); err != nil {
			return nil, err
		}

		var (
			node Node
			err  error
		)
		switch nodeType.NodeType {
		case NodeTypeContractDefinition:
			var n ContractDefinition
			err = json.Unmarshal(nodeData, &n)
			node = n
		case NodeTypeFunctionDefinition:
			var n FunctionDefinition
			err = json.Unmarshal(nodeData, &n)
			node = n
		case NodeTypeModifierDefinition:
			var n ModifierDefinition
			err = json.Unmarshal(nodeData, &n)
			node = n
		case NodeTypeVariableDeclaration:
			var n VariableDeclaration
			err = json.Unmarshal(nodeData, &n)
			node = n
		case NodeTypeEnumDefinition:
			var n EnumDefinition
			err = json.Unmarshal(nodeData, &n)
			node = n
		case NodeTypeUserDefinedValueTypeDefinition:
			var n UserDefinedValueTypeDefinition
			err = json.Unmarshal(nodeData, &n)
			node = n
		default:
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "could not decode %s node", nodeType.NodeType)
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}
