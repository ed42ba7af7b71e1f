// Package model defines the normalized entity model for a documented API
// surface: compounds, classes, functions, variables, macros, enums and the
// shared comment structure. Pure data; behavior lives in the ingestion
// packages.
package model

import "strings"

// RefID is the stable opaque identifier used to cross-reference entities
// between the index document and the per-compound definition documents.
type RefID string

// CompoundKind enumerates the documentable container kinds.
type CompoundKind string

const (
	KindUnknown   CompoundKind = ""
	KindFile      CompoundKind = "file"
	KindDirectory CompoundKind = "dir"
	KindNamespace CompoundKind = "namespace"
	KindClass     CompoundKind = "class"
	KindStruct    CompoundKind = "struct"
	KindInterface CompoundKind = "interface"
	KindConcept   CompoundKind = "concept"
	KindPage      CompoundKind = "page"
	KindGroup     CompoundKind = "group"
)

// Access enumerates member access levels.
type Access string

const (
	AccessPrivate   Access = "private"
	AccessProtected Access = "protected"
	AccessPublic    Access = "public"
)

// Comment is the flat semantic comment structure extracted from nested
// documentation markup. All collections default empty; an absent section is
// indistinguishable from an empty one.
type Comment struct {
	Brief              []string
	Details            []string
	Parameters         map[string]string
	TemplateParameters map[string]string
	Returns            string
	Preconditions      []string
	Postconditions     []string
	Exceptions         map[string]string
	SeeAlso            []string
	Notes              []string
	Warnings           []string
}

// NewComment returns a Comment with all mappings allocated.
func NewComment() Comment {
	return Comment{
		Parameters:         make(map[string]string),
		TemplateParameters: make(map[string]string),
		Exceptions:         make(map[string]string),
	}
}

// IsEmpty reports whether no section of the comment carries content.
func (c *Comment) IsEmpty() bool {
	return len(c.Brief) == 0 && len(c.Details) == 0 &&
		len(c.Parameters) == 0 && len(c.TemplateParameters) == 0 &&
		c.Returns == "" && len(c.Preconditions) == 0 &&
		len(c.Postconditions) == 0 && len(c.Exceptions) == 0 &&
		len(c.SeeAlso) == 0 && len(c.Notes) == 0 && len(c.Warnings) == 0
}

// Compound is a documentable container: file, directory, namespace, class,
// struct, interface, concept, page or group. Child identifier lists are
// partitioned by category and preserve index declaration order, which is
// significant for rendering.
type Compound struct {
	Name  string
	Title string
	Kind  CompoundKind

	Groups     []RefID
	Namespaces []RefID
	Classes    []RefID
	Enums      []RefID
	EnumValues []RefID
	Functions  []RefID
	Variables  []RefID
	Defines    []RefID

	Comment Comment
}

// NewCompound returns a default Compound of the given kind and name.
func NewCompound(kind CompoundKind, name string) *Compound {
	return &Compound{Name: name, Kind: kind, Comment: NewComment()}
}

// ClassVariant distinguishes the class/struct/interface flavor of a
// class-kind compound. Exactly one variant holds per class.
type ClassVariant string

const (
	VariantClass     ClassVariant = "class"
	VariantStruct    ClassVariant = "struct"
	VariantInterface ClassVariant = "interface"
)

// Class refines a class-kind compound.
type Class struct {
	UnqualifiedName    string
	TemplateParameters []string
	Variant            ClassVariant
}

// NewClass returns a Class of the given variant. The unqualified name is the
// last scope segment of the qualified name.
func NewClass(variant ClassVariant, qualifiedName string) *Class {
	segments := strings.Split(qualifiedName, "::")
	return &Class{
		UnqualifiedName: segments[len(segments)-1],
		Variant:         variant,
	}
}

// Function is a documented free or member function.
//
// IsNoexcept mirrors the source format's aliasing of the noexcept flag to
// the const attribute; see the definition parser.
type Function struct {
	Name               string
	QualifiedName      string
	ReturnType         string
	Arguments          string
	ParameterNames     []string
	TemplateParameters []string
	Definition         string
	Access             Access
	Comment            Comment

	IsStatic   bool
	IsConst    bool
	IsInline   bool
	IsNoexcept bool
	IsVirtual  bool
	IsExplicit bool

	// IsMember is fixed at declaration time from the parent compound's kind
	// and never changes during the definition pass.
	IsMember bool
}

// NewFunction returns a default Function with the member flag set.
func NewFunction(isMember bool) *Function {
	return &Function{Access: AccessPrivate, Comment: NewComment(), IsMember: isMember}
}

// Variable is a documented variable or data member.
type Variable struct {
	Name          string
	QualifiedName string
	Definition    string
	Access        Access
	Comment       Comment

	IsStatic    bool
	IsConstexpr bool
	IsMutable   bool
}

// NewVariable returns a default Variable.
func NewVariable() *Variable {
	return &Variable{Access: AccessPrivate, Comment: NewComment()}
}

// Define is a documented preprocessor macro. Only the name is tracked.
type Define struct {
	Name string
}

// NewDefine returns a Define with the given name.
func NewDefine(name string) *Define {
	return &Define{Name: name}
}

// EnumValue is a single enumerator with an optional initializer.
type EnumValue struct {
	Name        string
	Initializer string
	Comment     Comment
}

// Enum is a documented enumeration.
type Enum struct {
	Name          string
	QualifiedName string
	IsScoped      bool
	Comment       Comment
	Values        []EnumValue
}

// NewEnum returns a default Enum.
func NewEnum() *Enum {
	return &Enum{Comment: NewComment()}
}
