package doxygen

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/beevik/etree"

	"git.home.luguber.info/inful/doxymd/internal/logfields"
	"git.home.luguber.info/inful/doxymd/internal/model"
	"git.home.luguber.info/inful/doxymd/internal/util/sets"
)

// ExtractText recursively flattens an XML element into plain text. Text nodes
// are trimmed and concatenated; recognized markup elements get special
// handling and everything else contributes no text without aborting
// extraction.
func ExtractText(el *etree.Element) string {
	var b strings.Builder
	for _, tok := range el.Child {
		switch node := tok.(type) {
		case *etree.CharData:
			b.WriteString(strings.TrimSpace(node.Data))
		case *etree.Element:
			switch node.Tag {
			case "para":
				b.WriteString(ExtractText(node))
			case "computeroutput":
				b.WriteString(" `")
				b.WriteString(ExtractText(node))
				b.WriteString("` ")
			case "itemizedlist":
				b.WriteString("\n")
				b.WriteString(ExtractText(node))
			case "listitem":
				b.WriteString("* ")
				b.WriteString(ExtractText(node))
				b.WriteString("\n")
			case "ref":
				// The refid/kindref attributes are read but not yet turned
				// into hyperlinks; only the inner text is emitted for now.
				_ = node.SelectAttrValue("refid", "")
				_ = node.SelectAttrValue("kindref", "")
				b.WriteString(ExtractText(node))
			default:
				// Unrecognized markup is skipped for text purposes.
			}
		}
	}
	return b.String()
}

// ExtractComment reads the optional brief and detailed description children
// of a member- or compound-level element into a flat Comment.
//
// Only the first paragraph of the brief description is taken, as the sole
// brief entry. Each paragraph of the detailed description contributes one
// details entry and is additionally inspected for a nested parameter list
// and a nested simple section.
func ExtractComment(el *etree.Element) model.Comment {
	c := model.NewComment()

	if brief := el.SelectElement("briefdescription"); brief != nil {
		if para := brief.SelectElement("para"); para != nil {
			if text := ExtractText(para); text != "" {
				c.Brief = append(c.Brief, text)
			}
		}
	}

	detailed := el.SelectElement("detaileddescription")
	if detailed == nil {
		return c
	}

	seenListKinds := sets.New[string]()
	for _, para := range detailed.SelectElements("para") {
		// A paragraph that flattens to nothing (it wraps only a parameter
		// list or a simple section) contributes no details entry; rendering
		// would otherwise emit blank paragraphs. Its nested structures are
		// still extracted below.
		if text := ExtractText(para); text != "" {
			c.Details = append(c.Details, text)
		}
		if plist := para.SelectElement("parameterlist"); plist != nil {
			extractParameterList(plist, &c, seenListKinds)
		}
		if sect := para.SelectElement("simplesect"); sect != nil {
			extractSimpleSection(sect, &c)
		}
	}
	return c
}

// extractParameterList populates one of the comment's three name→description
// mappings, selected by the list's kind attribute. The upstream format never
// repeats a parameter-list kind within one comment; a repeat is a
// programming-contract violation.
func extractParameterList(plist *etree.Element, c *model.Comment, seen sets.Set[string]) {
	kind := plist.SelectAttrValue("kind", "")

	var target map[string]string
	switch kind {
	case "param":
		target = c.Parameters
	case "exception":
		target = c.Exceptions
	case "templateparam":
		target = c.TemplateParameters
	default:
		slog.Warn("Ignoring unrecognized parameter list kind", logfields.Kind(kind))
		return
	}

	if seen.Has(kind) {
		panic(fmt.Sprintf("doxygen: parameter list of kind %q repeated within one comment", kind))
	}
	seen.Add(kind)

	for _, item := range plist.SelectElements("parameteritem") {
		nameList := item.SelectElement("parameternamelist")
		if nameList == nil {
			continue
		}
		nameEl := nameList.SelectElement("parametername")
		if nameEl == nil {
			continue
		}
		desc := ""
		if descEl := item.SelectElement("parameterdescription"); descEl != nil {
			desc = ExtractText(descEl)
		}
		target[ExtractText(nameEl)] = desc
	}
}

// extractSimpleSection dispatches a simple section by its kind attribute.
// A second return section overwrites the first; unrecognized kinds are
// logged and skipped since the format grows new section kinds over time.
func extractSimpleSection(sect *etree.Element, c *model.Comment) {
	kind := sect.SelectAttrValue("kind", "")
	text := ExtractText(sect)

	switch kind {
	case "return":
		c.Returns = text
	case "note", "remark":
		c.Notes = append(c.Notes, text)
	case "see":
		c.SeeAlso = append(c.SeeAlso, text)
	case "warning":
		c.Warnings = append(c.Warnings, text)
	case "pre":
		c.Preconditions = append(c.Preconditions, text)
	case "post":
		c.Postconditions = append(c.Postconditions, text)
	default:
		slog.Warn("Ignoring unrecognized simple section kind", logfields.Kind(kind))
	}
}
