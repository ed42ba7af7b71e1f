package doxygen

import (
	"github.com/beevik/etree"

	"git.home.luguber.info/inful/doxymd/internal/errors"
	"git.home.luguber.info/inful/doxymd/internal/model"
	"git.home.luguber.info/inful/doxymd/internal/registry"
)

// declareIndex runs the declaration pass over the index document: every
// compound and member it names is allocated as a default entity, so that
// every identifier the definition pass will resolve already exists.
func (p *Parser) declareIndex(root *etree.Element, reg *registry.Registry) error {
	for _, compound := range root.SelectElements("compound") {
		if err := p.declareCompound(compound, reg); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) declareCompound(el *etree.Element, reg *registry.Registry) error {
	refID, err := requireAttr(el, "refid")
	if err != nil {
		return err
	}
	id := model.RefID(refID)

	kind, err := parseCompoundKind(el.SelectAttrValue("kind", ""))
	if err != nil {
		return err
	}

	name := "?"
	if nameEl := el.SelectElement("name"); nameEl != nil {
		name = nameEl.Text()
	}

	switch kind {
	case model.KindClass:
		reg.DeclareClass(id, model.VariantClass, name)
	case model.KindStruct:
		reg.DeclareClass(id, model.VariantStruct, name)
	case model.KindInterface:
		reg.DeclareClass(id, model.VariantInterface, name)
	}

	compound := reg.DeclareCompound(id, kind, name)
	p.rec.IncDeclared("compound")

	for _, member := range el.SelectElements("member") {
		if err := p.declareMember(member, compound, kind, reg); err != nil {
			return err
		}
	}
	return nil
}

// declareMember allocates the entity for one index member declaration and
// appends its identifier to the matching membership list on the parent,
// preserving document order. Friend and typedef members are parsed but
// discarded: they are fully excluded from membership lists.
func (p *Parser) declareMember(el *etree.Element, parent *model.Compound, parentKind model.CompoundKind, reg *registry.Registry) error {
	refID, err := requireAttr(el, "refid")
	if err != nil {
		return err
	}
	id := model.RefID(refID)

	kind := el.SelectAttrValue("kind", "")
	switch kind {
	case "define":
		name := ""
		if nameEl := el.SelectElement("name"); nameEl != nil {
			name = nameEl.Text()
		}
		reg.DeclareDefine(id, name)
		parent.Defines = append(parent.Defines, id)
	case "friend", "typedef":
		// Intentionally not materialized as entities.
		return nil
	case "variable":
		reg.DeclareVariable(id)
		parent.Variables = append(parent.Variables, id)
	case "function":
		isMember := parentKind == model.KindClass || parentKind == model.KindStruct
		reg.DeclareFunction(id, isMember)
		parent.Functions = append(parent.Functions, id)
	case "enum":
		reg.DeclareEnum(id)
		parent.Enums = append(parent.Enums, id)
	case "enumvalue":
		reg.DeclareEnumValue(id)
		parent.EnumValues = append(parent.EnumValues, id)
	case "":
		return errors.Fatal(errors.CategorySchema, "member declaration in index has no kind attribute").
			WithContext("refid", refID)
	default:
		return errors.Fatal(errors.CategorySchema, "unsupported member kind in index").
			WithContext("refid", refID).
			WithContext("kind", kind)
	}

	p.rec.IncDeclared(kind)
	return nil
}

// parseCompoundKind maps a kind attribute value onto the closed compound
// kind enumeration. Any other value is a schema violation.
func parseCompoundKind(value string) (model.CompoundKind, error) {
	switch value {
	case "file":
		return model.KindFile, nil
	case "dir":
		return model.KindDirectory, nil
	case "namespace":
		return model.KindNamespace, nil
	case "class":
		return model.KindClass, nil
	case "struct":
		return model.KindStruct, nil
	case "interface":
		return model.KindInterface, nil
	case "concept":
		return model.KindConcept, nil
	case "page":
		return model.KindPage, nil
	case "group":
		return model.KindGroup, nil
	case "":
		return model.KindUnknown, errors.Fatal(errors.CategorySchema, "compound declaration has no kind attribute")
	default:
		return model.KindUnknown, errors.Fatal(errors.CategorySchema, "unsupported compound kind").
			WithContext("kind", value)
	}
}
