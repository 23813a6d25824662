package symbols

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/exp/slices"
)

// Model is the symbolication model of a single compilation: its source files and the contracts declared in them.
// A Model is read-only once Build returns it. A new compilation produces an entirely new Model.
type Model struct {
	// BuildID uniquely identifies this model instance.
	BuildID uuid.UUID

	// Files maps compiler-assigned source ids to their SourceFile.
	Files map[int]*SourceFile

	// Contracts lists all modeled contracts and libraries, sorted by fully qualified name.
	Contracts []*Contract

	// contractsByName indexes Contracts by fully qualified name.
	contractsByName map[string]*Contract
}

// newModel creates a Model over the given files and contracts.
func newModel(files map[int]*SourceFile, contracts []*Contract) *Model {
	contracts = slices.Clone(contracts)
	slices.SortFunc(contracts, func(a, b *Contract) int {
		return strings.Compare(a.FullyQualifiedName(), b.FullyQualifiedName())
	})

	contractsByName := make(map[string]*Contract, len(contracts))
	for _, contract := range contracts {
		contractsByName[contract.FullyQualifiedName()] = contract
	}

	return &Model{
		BuildID:         uuid.New(),
		Files:           files,
		Contracts:       contracts,
		contractsByName: contractsByName,
	}
}

// FileByID returns the source file with the given compiler-assigned id, or nil.
func (m *Model) FileByID(id int) *SourceFile {
	return m.Files[id]
}

// ContractByName returns the contract with the given fully qualified name (`source:Name`), or nil.
func (m *Model) ContractByName(fullyQualifiedName string) *Contract {
	return m.contractsByName[fullyQualifiedName]
}

// SortedFiles returns the model's source files sorted by id.
func (m *Model) SortedFiles() []*SourceFile {
	files := make([]*SourceFile, 0, len(m.Files))
	for _, file := range m.Files {
		files = append(files, file)
	}
	slices.SortFunc(files, func(a, b *SourceFile) int {
		return a.ID - b.ID
	})
	return files
}
