// Package registry owns every entity produced by ingestion, keyed by stable
// reference identifier. The registry is the single shared mutable structure
// during ingestion: every entity is created empty by the declaration pass and
// mutated in place exactly once by the definition pass. No locking:
// single-threaded, single-writer access throughout.
package registry

import (
	"fmt"
	"sort"

	"git.home.luguber.info/inful/doxymd/internal/errors"
	"git.home.luguber.info/inful/doxymd/internal/model"
)

// Registry holds all documented entities by category.
type Registry struct {
	Compounds  map[model.RefID]*model.Compound
	Classes    map[model.RefID]*model.Class
	Functions  map[model.RefID]*model.Function
	Variables  map[model.RefID]*model.Variable
	Defines    map[model.RefID]*model.Define
	Enums      map[model.RefID]*model.Enum
	EnumValues map[model.RefID]*model.EnumValue
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		Compounds:  make(map[model.RefID]*model.Compound),
		Classes:    make(map[model.RefID]*model.Class),
		Functions:  make(map[model.RefID]*model.Function),
		Variables:  make(map[model.RefID]*model.Variable),
		Defines:    make(map[model.RefID]*model.Define),
		Enums:      make(map[model.RefID]*model.Enum),
		EnumValues: make(map[model.RefID]*model.EnumValue),
	}
}

// DeclareCompound inserts a default compound with the given kind and name.
// Re-declaring an identifier is a programmer error, not a user-facing one.
func (r *Registry) DeclareCompound(id model.RefID, kind model.CompoundKind, name string) *model.Compound {
	if _, exists := r.Compounds[id]; exists {
		panic(fmt.Sprintf("registry: compound %q declared twice", id))
	}
	c := model.NewCompound(kind, name)
	r.Compounds[id] = c
	return c
}

// DeclareClass inserts a default class entity refining a class-kind compound.
func (r *Registry) DeclareClass(id model.RefID, variant model.ClassVariant, qualifiedName string) *model.Class {
	if _, exists := r.Classes[id]; exists {
		panic(fmt.Sprintf("registry: class %q declared twice", id))
	}
	c := model.NewClass(variant, qualifiedName)
	r.Classes[id] = c
	return c
}

// DeclareFunction inserts a default function entity. The member flag is fixed
// here and never changes during the definition pass.
func (r *Registry) DeclareFunction(id model.RefID, isMember bool) *model.Function {
	if _, exists := r.Functions[id]; exists {
		panic(fmt.Sprintf("registry: function %q declared twice", id))
	}
	f := model.NewFunction(isMember)
	r.Functions[id] = f
	return f
}

// DeclareVariable inserts a default variable entity.
func (r *Registry) DeclareVariable(id model.RefID) *model.Variable {
	if _, exists := r.Variables[id]; exists {
		panic(fmt.Sprintf("registry: variable %q declared twice", id))
	}
	v := model.NewVariable()
	r.Variables[id] = v
	return v
}

// DeclareDefine inserts a macro entity. Macros carry only a name, taken from
// the index declaration.
func (r *Registry) DeclareDefine(id model.RefID, name string) *model.Define {
	if _, exists := r.Defines[id]; exists {
		panic(fmt.Sprintf("registry: define %q declared twice", id))
	}
	d := model.NewDefine(name)
	r.Defines[id] = d
	return d
}

// DeclareEnum inserts a default enum entity.
func (r *Registry) DeclareEnum(id model.RefID) *model.Enum {
	if _, exists := r.Enums[id]; exists {
		panic(fmt.Sprintf("registry: enum %q declared twice", id))
	}
	e := model.NewEnum()
	r.Enums[id] = e
	return e
}

// DeclareEnumValue inserts a default enum value entity.
func (r *Registry) DeclareEnumValue(id model.RefID) *model.EnumValue {
	if _, exists := r.EnumValues[id]; exists {
		panic(fmt.Sprintf("registry: enum value %q declared twice", id))
	}
	v := &model.EnumValue{Comment: model.NewComment()}
	r.EnumValues[id] = v
	return v
}

// Compound returns the compound for the given identifier, or a fatal resolve
// error when the definition pass encounters an identifier that was never
// declared.
func (r *Registry) Compound(id model.RefID) (*model.Compound, error) {
	c, ok := r.Compounds[id]
	if !ok {
		return nil, unknownIdentifier("compound", id)
	}
	return c, nil
}

// Class returns the class entity for the given identifier.
func (r *Registry) Class(id model.RefID) (*model.Class, error) {
	c, ok := r.Classes[id]
	if !ok {
		return nil, unknownIdentifier("class", id)
	}
	return c, nil
}

// Function returns the function entity for the given identifier.
func (r *Registry) Function(id model.RefID) (*model.Function, error) {
	f, ok := r.Functions[id]
	if !ok {
		return nil, unknownIdentifier("function", id)
	}
	return f, nil
}

// Variable returns the variable entity for the given identifier.
func (r *Registry) Variable(id model.RefID) (*model.Variable, error) {
	v, ok := r.Variables[id]
	if !ok {
		return nil, unknownIdentifier("variable", id)
	}
	return v, nil
}

// Define returns the macro entity for the given identifier.
func (r *Registry) Define(id model.RefID) (*model.Define, error) {
	d, ok := r.Defines[id]
	if !ok {
		return nil, unknownIdentifier("define", id)
	}
	return d, nil
}

// Enum returns the enum entity for the given identifier.
func (r *Registry) Enum(id model.RefID) (*model.Enum, error) {
	e, ok := r.Enums[id]
	if !ok {
		return nil, unknownIdentifier("enum", id)
	}
	return e, nil
}

// SortedCompoundIDs returns all compound identifiers in lexical order, for
// deterministic iteration on the rendering side.
func (r *Registry) SortedCompoundIDs() []model.RefID {
	ids := make([]model.RefID, 0, len(r.Compounds))
	for id := range r.Compounds {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func unknownIdentifier(category string, id model.RefID) error {
	return errors.Fatal(errors.CategoryResolve,
		fmt.Sprintf("unknown %s identifier (index/definition mismatch)", category)).
		WithContext("refid", string(id))
}
