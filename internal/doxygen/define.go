package doxygen

import (
	"strings"

	"github.com/beevik/etree"

	"git.home.luguber.info/inful/doxymd/internal/errors"
	"git.home.luguber.info/inful/doxymd/internal/model"
	"git.home.luguber.info/inful/doxymd/internal/registry"
	"git.home.luguber.info/inful/doxymd/internal/util/sets"
)

// parseCompoundDefinition fills in an already-declared compound from its
// definition document. File and namespace compounds contribute only
// structural membership, which the declaration pass already captured, so
// they are skipped entirely.
func (p *Parser) parseCompoundDefinition(el *etree.Element, reg *registry.Registry) error {
	kind, err := parseCompoundKind(el.SelectAttrValue("kind", ""))
	if err != nil {
		return err
	}
	if kind == model.KindFile || kind == model.KindNamespace {
		return nil
	}

	refID, err := requireAttr(el, "id")
	if err != nil {
		return err
	}
	id := model.RefID(refID)

	compound, err := reg.Compound(id)
	if err != nil {
		return err
	}
	compound.Comment = ExtractComment(el)

	isClassKind := kind == model.KindClass || kind == model.KindStruct || kind == model.KindInterface

	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "title":
			compound.Title = ExtractText(child)
		case "innergroup":
			if inner := child.SelectAttrValue("refid", ""); inner != "" {
				compound.Groups = appendMembership(compound.Groups, model.RefID(inner))
			}
		case "innerclass":
			if inner := child.SelectAttrValue("refid", ""); inner != "" {
				compound.Classes = appendMembership(compound.Classes, model.RefID(inner))
			}
		case "innernamespace":
			if inner := child.SelectAttrValue("refid", ""); inner != "" {
				compound.Namespaces = appendMembership(compound.Namespaces, model.RefID(inner))
			}
		case "templateparamlist":
			if isClassKind {
				class, cerr := reg.Class(id)
				if cerr != nil {
					return cerr
				}
				class.TemplateParameters = parseTemplateParameters(child)
			}
		case "sectiondef":
			for _, member := range child.SelectElements("memberdef") {
				if err := p.parseMemberDefinition(member, reg); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// parseMemberDefinition dispatches one memberdef element by kind to the
// matching detail parser, resolved by the member's own identifier.
func (p *Parser) parseMemberDefinition(el *etree.Element, reg *registry.Registry) error {
	refID, err := requireAttr(el, "id")
	if err != nil {
		return err
	}
	id := model.RefID(refID)

	switch el.SelectAttrValue("kind", "") {
	case "function":
		fn, ferr := reg.Function(id)
		if ferr != nil {
			return ferr
		}
		if err := parseFunctionDefinition(el, fn); err != nil {
			return err
		}
	case "variable":
		v, verr := reg.Variable(id)
		if verr != nil {
			return verr
		}
		if err := parseVariableDefinition(el, v); err != nil {
			return err
		}
	case "enum":
		e, eerr := reg.Enum(id)
		if eerr != nil {
			return eerr
		}
		if err := parseEnumDefinition(el, e, reg); err != nil {
			return err
		}
	default:
		// Defines carry only their index-declared name; friends and
		// typedefs were never materialized.
		return nil
	}

	p.rec.IncDefined(el.SelectAttrValue("kind", ""))
	return nil
}

func parseFunctionDefinition(el *etree.Element, fn *model.Function) error {
	access, err := parseAccess(el)
	if err != nil {
		return err
	}
	fn.Access = access

	if fn.IsStatic, err = requireBoolAttr(el, "static"); err != nil {
		return err
	}
	if fn.IsConst, err = requireBoolAttr(el, "const"); err != nil {
		return err
	}
	if fn.IsExplicit, err = requireBoolAttr(el, "explicit"); err != nil {
		return err
	}
	if fn.IsInline, err = requireBoolAttr(el, "inline"); err != nil {
		return err
	}

	virt, err := requireAttr(el, "virt")
	if err != nil {
		return err
	}
	fn.IsVirtual = virt != "non-virtual"

	// The source format aliases the noexcept flag to the const attribute,
	// with a "no" default when absent. Preserved as-is: downstream pages
	// may depend on the current aliasing.
	fn.IsNoexcept = el.SelectAttrValue("const", "no") == "yes"

	if fn.Name, err = requireChildText(el, "name"); err != nil {
		return err
	}
	if fn.QualifiedName, err = requireChildText(el, "qualifiedname"); err != nil {
		return err
	}
	if fn.Definition, err = requireChildText(el, "definition"); err != nil {
		return err
	}
	if fn.ReturnType, err = requireChildText(el, "type"); err != nil {
		return err
	}
	if fn.Arguments, err = requireChildText(el, "argsstring"); err != nil {
		return err
	}

	if tpl := el.SelectElement("templateparamlist"); tpl != nil {
		fn.TemplateParameters = parseTemplateParameters(tpl)
	}

	// The same document occasionally repeats a parameter across different
	// contexts; collect names in order with de-duplication.
	seen := sets.New(fn.ParameterNames...)
	for _, param := range el.SelectElements("param") {
		declName := param.SelectElement("declname")
		if declName == nil {
			continue
		}
		name := declName.Text()
		if seen.Has(name) {
			continue
		}
		seen.Add(name)
		fn.ParameterNames = append(fn.ParameterNames, name)
	}

	fn.Comment = ExtractComment(el)

	StripRedundantConst(fn)
	CollapseNoexcept(fn)
	return nil
}

func parseVariableDefinition(el *etree.Element, v *model.Variable) error {
	access, err := parseAccess(el)
	if err != nil {
		return err
	}
	v.Access = access

	if v.IsStatic, err = requireBoolAttr(el, "static"); err != nil {
		return err
	}
	if v.IsMutable, err = requireBoolAttr(el, "mutable"); err != nil {
		return err
	}
	v.IsConstexpr = el.SelectAttrValue("constexpr", "no") == "yes"

	if v.Name, err = requireChildText(el, "name"); err != nil {
		return err
	}
	if v.QualifiedName, err = requireChildText(el, "qualifiedname"); err != nil {
		return err
	}
	if v.Definition, err = requireChildText(el, "definition"); err != nil {
		return err
	}

	v.Comment = ExtractComment(el)
	return nil
}

func parseEnumDefinition(el *etree.Element, e *model.Enum, reg *registry.Registry) error {
	var err error
	if e.Name, err = requireChildText(el, "name"); err != nil {
		return err
	}
	if e.QualifiedName, err = requireChildText(el, "qualifiedname"); err != nil {
		return err
	}
	if e.IsScoped, err = requireBoolAttr(el, "strong"); err != nil {
		return err
	}
	e.Comment = ExtractComment(el)

	e.Values = e.Values[:0]
	for _, valueEl := range el.SelectElements("enumvalue") {
		name, nerr := requireChildText(valueEl, "name")
		if nerr != nil {
			return nerr
		}
		value := model.EnumValue{Name: name, Comment: ExtractComment(valueEl)}
		if init := valueEl.SelectElement("initializer"); init != nil {
			value.Initializer = strings.TrimPrefix(init.Text(), "= ")
		}
		e.Values = append(e.Values, value)

		// Keep the enum value's own registry entry in sync when it was
		// declared through the index.
		if id := valueEl.SelectAttrValue("id", ""); id != "" {
			if entity, ok := reg.EnumValues[model.RefID(id)]; ok {
				*entity = value
			}
		}
	}
	return nil
}

// parseTemplateParameters reads one type string per param element of a
// templateparamlist.
func parseTemplateParameters(el *etree.Element) []string {
	var params []string
	for _, param := range el.SelectElements("param") {
		if typeEl := param.SelectElement("type"); typeEl != nil {
			params = append(params, ExtractText(typeEl))
		}
	}
	return params
}

// appendMembership appends id unless present. Duplicate inner references
// across documents are tolerated downstream, but deduping keeps rendering
// deterministic.
func appendMembership(list []model.RefID, id model.RefID) []model.RefID {
	if sets.New(list...).Has(id) {
		return list
	}
	return append(list, id)
}

func parseAccess(el *etree.Element) (model.Access, error) {
	prot, err := requireAttr(el, "prot")
	if err != nil {
		return "", err
	}
	switch prot {
	case "private":
		return model.AccessPrivate, nil
	case "protected":
		return model.AccessProtected, nil
	case "public":
		return model.AccessPublic, nil
	default:
		return "", errors.Fatal(errors.CategorySchema, "unrecognized access modifier").
			WithContext("prot", prot)
	}
}

func requireAttr(el *etree.Element, name string) (string, error) {
	value := el.SelectAttrValue(name, "")
	if value == "" {
		return "", errors.Fatal(errors.CategorySchema, "required attribute missing").
			WithContext("element", el.Tag).
			WithContext("attribute", name)
	}
	return value, nil
}

// requireBoolAttr reads a required yes/no attribute. A missing boolean
// attribute is a schema violation except where the format documents a "no"
// default (constexpr, the noexcept alias).
func requireBoolAttr(el *etree.Element, name string) (bool, error) {
	value, err := requireAttr(el, name)
	if err != nil {
		return false, err
	}
	return value == "yes", nil
}

func requireChildText(el *etree.Element, tag string) (string, error) {
	child := el.SelectElement(tag)
	if child == nil {
		return "", errors.Fatal(errors.CategorySchema, "required child element missing").
			WithContext("element", el.Tag).
			WithContext("child", tag)
	}
	return child.Text(), nil
}
