// Package markdown renders a populated registry into Markdown pages: one
// index page, one page per group and one page per class. Pages are written
// in deterministic order and verified for dangling intra-output links after
// generation.
package markdown

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"git.home.luguber.info/inful/doxymd/internal/errors"
	"git.home.luguber.info/inful/doxymd/internal/logfields"
	"git.home.luguber.info/inful/doxymd/internal/metrics"
	"git.home.luguber.info/inful/doxymd/internal/model"
	"git.home.luguber.info/inful/doxymd/internal/registry"
)

// Generator writes Markdown pages for a finished registry.
type Generator struct {
	outputDir   string
	rec         metrics.Recorder
	verifyLinks bool
	written     []string
}

// NewGenerator creates a generator targeting outputDir.
func NewGenerator(outputDir string, verifyLinks bool, rec metrics.Recorder) *Generator {
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &Generator{outputDir: outputDir, rec: rec, verifyLinks: verifyLinks}
}

// Generate renders all pages. The registry is read-only from here on.
func (g *Generator) Generate(reg *registry.Registry) error {
	for _, sub := range []string{"groups", "classes"} {
		if err := os.MkdirAll(filepath.Join(g.outputDir, sub), 0o750); err != nil {
			return errors.WrapFatal(err, errors.CategoryRender, "failed to create output directory").
				WithContext("path", sub)
		}
	}

	if err := g.generateIndexPage(reg); err != nil {
		return err
	}

	for _, id := range reg.SortedCompoundIDs() {
		compound := reg.Compounds[id]
		switch compound.Kind {
		case model.KindGroup:
			if err := g.generateGroupPage(reg, compound); err != nil {
				return err
			}
		case model.KindClass, model.KindStruct, model.KindInterface:
			if err := g.generateClassPage(reg, id, compound); err != nil {
				return err
			}
		}
	}

	slog.Info("Markdown generation complete", logfields.Count(len(g.written)))

	if g.verifyLinks {
		return VerifyOutput(g.outputDir, g.written)
	}
	return nil
}

func (g *Generator) generateIndexPage(reg *registry.Registry) error {
	var b strings.Builder
	b.WriteString("# API\n")
	b.WriteString("\nHere is a list of all modules.\n")
	b.WriteString("\n## Modules\n\n")

	for _, id := range reg.SortedCompoundIDs() {
		compound := reg.Compounds[id]
		if compound.Kind != model.KindGroup {
			continue
		}
		fmt.Fprintf(&b, "* [%s](groups/%s)\n", pageTitle(compound), GroupFileName(compound.Name))
	}

	return g.writePage("index.md", b.String())
}

func (g *Generator) generateGroupPage(reg *registry.Registry, compound *model.Compound) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", pageTitle(compound))

	writeCommentIntro(&b, &compound.Comment)

	b.WriteString("\n## Groups\n\n")
	if len(compound.Groups) == 0 {
		b.WriteString("There are no groups owned by this group.\n")
	} else {
		for _, groupID := range compound.Groups {
			if group, ok := reg.Compounds[groupID]; ok {
				fmt.Fprintf(&b, "* [%s](%s)\n", pageTitle(group), GroupFileName(group.Name))
			}
		}
	}

	b.WriteString("\n## Classes & Structs\n\n")
	if len(compound.Classes) == 0 {
		b.WriteString("There are no classes or structs associated with this group.\n")
	} else {
		for _, classID := range compound.Classes {
			class, ok := reg.Classes[classID]
			if !ok {
				continue
			}
			owner, ok := reg.Compounds[classID]
			if !ok {
				continue
			}
			fmt.Fprintf(&b, "* [%s %s](../classes/%s)\n",
				class.Variant, class.UnqualifiedName, ClassFileName(owner.Name))
		}
	}

	b.WriteString("\n## Enums\n")
	if len(compound.Enums) == 0 {
		b.WriteString("\nThere are no enums associated with this group.\n")
	} else {
		for _, enumID := range compound.Enums {
			if enum, ok := reg.Enums[enumID]; ok {
				writeEnum(&b, enum)
			}
		}
	}

	b.WriteString("\n## Functions\n")
	free := freeFunctions(reg, compound)
	if len(free) == 0 {
		b.WriteString("\nThere are no functions associated with this group.\n")
	} else {
		b.WriteString("\nThese are the free functions associated with this group.\n")
		for _, fn := range free {
			writeFunction(&b, fn)
		}
	}

	b.WriteString("\n## Variables\n\n")
	if len(compound.Variables) == 0 {
		b.WriteString("There are no variables associated with this group.\n")
	} else {
		for _, variableID := range compound.Variables {
			if variable, ok := reg.Variables[variableID]; ok {
				fmt.Fprintf(&b, "* `%s`\n", variable.Name)
			}
		}
	}

	b.WriteString("\n## Defines\n\n")
	if len(compound.Defines) == 0 {
		b.WriteString("There are no defines associated with this group.\n")
	} else {
		for _, defineID := range compound.Defines {
			if define, ok := reg.Defines[defineID]; ok {
				fmt.Fprintf(&b, "* `%s`\n", define.Name)
			}
		}
	}

	return g.writePage(filepath.Join("groups", GroupFileName(compound.Name)), b.String())
}

func (g *Generator) generateClassPage(reg *registry.Registry, id model.RefID, compound *model.Compound) error {
	class, ok := reg.Classes[id]
	if !ok {
		return errors.Fatal(errors.CategoryRender, "class compound has no class entity").
			WithContext("refid", string(id))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", compound.Name)

	b.WriteString("\n```C++\n")
	if len(class.TemplateParameters) > 0 {
		fmt.Fprintf(&b, "template <%s>\n", strings.Join(class.TemplateParameters, ", "))
	}
	fmt.Fprintf(&b, "%s %s;\n", class.Variant, class.UnqualifiedName)
	b.WriteString("```\n")

	for _, brief := range compound.Comment.Brief {
		fmt.Fprintf(&b, "\n%s\n", brief)
	}

	b.WriteString("\n## Detailed Description\n")
	if len(compound.Comment.Details) == 0 {
		b.WriteString("\nThere is no detailed description available.\n")
	} else {
		for _, para := range compound.Comment.Details {
			fmt.Fprintf(&b, "\n%s\n", para)
		}
	}
	writeCommentSections(&b, &compound.Comment)

	if len(compound.Enums) > 0 {
		b.WriteString("\n## Enums\n")
		for _, enumID := range compound.Enums {
			if enum, ok := reg.Enums[enumID]; ok {
				writeEnum(&b, enum)
			}
		}
	}

	b.WriteString("\n## Member Functions\n")
	if len(compound.Functions) == 0 {
		b.WriteString("\nThis class has no documented member functions.\n")
	} else {
		for _, fnID := range compound.Functions {
			if fn, ok := reg.Functions[fnID]; ok {
				writeFunction(&b, fn)
			}
		}
	}

	if len(compound.Variables) > 0 {
		b.WriteString("\n## Member Variables\n")
		for _, variableID := range compound.Variables {
			if variable, ok := reg.Variables[variableID]; ok {
				writeVariable(&b, variable)
			}
		}
	}

	return g.writePage(filepath.Join("classes", ClassFileName(compound.Name)), b.String())
}

func (g *Generator) writePage(relPath, content string) error {
	path := filepath.Join(g.outputDir, relPath)
	// #nosec G306 -- generated pages are public content
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return errors.WrapFatal(err, errors.CategoryRender, "failed to write page").
			WithContext("path", path)
	}
	g.written = append(g.written, relPath)
	g.rec.IncPagesGenerated()
	slog.Debug("Generated page", logfields.Path(path))
	return nil
}

// freeFunctions returns the group's non-member functions in declaration order.
func freeFunctions(reg *registry.Registry, compound *model.Compound) []*model.Function {
	var out []*model.Function
	for _, id := range compound.Functions {
		if fn, ok := reg.Functions[id]; ok && !fn.IsMember {
			out = append(out, fn)
		}
	}
	return out
}

func pageTitle(compound *model.Compound) string {
	if compound.Title != "" {
		return compound.Title
	}
	return compound.Name
}

func writeFunction(b *strings.Builder, fn *model.Function) {
	fmt.Fprintf(b, "\n### **%s**\n", fn.Name)

	for _, brief := range fn.Comment.Brief {
		fmt.Fprintf(b, "\n%s\n", brief)
	}

	if fn.IsMember {
		fmt.Fprintf(b, "\n*This is a %s function.*\n", fn.Access)
	}

	b.WriteString("\n```C++\n")
	if len(fn.TemplateParameters) > 0 {
		fmt.Fprintf(b, "template <%s>\n", strings.Join(fn.TemplateParameters, ", "))
	}
	prefix := ""
	if fn.IsStatic {
		prefix += "static "
	}
	if fn.IsExplicit {
		prefix += "explicit "
	}
	fmt.Fprintf(b, "%s%s %s%s;\n", prefix, fn.ReturnType, fn.Name, fn.Arguments)
	b.WriteString("```\n")

	for _, para := range fn.Comment.Details {
		fmt.Fprintf(b, "\n%s\n", para)
	}
	writeCommentSections(b, &fn.Comment)
}

func writeVariable(b *strings.Builder, variable *model.Variable) {
	fmt.Fprintf(b, "\n### **%s**\n", variable.Name)
	for _, brief := range variable.Comment.Brief {
		fmt.Fprintf(b, "\n%s\n", brief)
	}
	b.WriteString("\n```C++\n")
	fmt.Fprintf(b, "%s;\n", variable.Definition)
	b.WriteString("```\n")
	for _, para := range variable.Comment.Details {
		fmt.Fprintf(b, "\n%s\n", para)
	}
	writeCommentSections(b, &variable.Comment)
}

func writeEnum(b *strings.Builder, enum *model.Enum) {
	fmt.Fprintf(b, "\n### **%s**\n", enum.Name)
	for _, brief := range enum.Comment.Brief {
		fmt.Fprintf(b, "\n%s\n", brief)
	}
	b.WriteString("\n```C++\n")
	scoped := "enum"
	if enum.IsScoped {
		scoped = "enum class"
	}
	fmt.Fprintf(b, "%s %s;\n", scoped, enum.Name)
	b.WriteString("```\n\n")
	for _, value := range enum.Values {
		if value.Initializer != "" {
			fmt.Fprintf(b, "* `%s` = `%s`", value.Name, value.Initializer)
		} else {
			fmt.Fprintf(b, "* `%s`", value.Name)
		}
		if len(value.Comment.Brief) > 0 {
			fmt.Fprintf(b, " - %s", value.Comment.Brief[0])
		}
		b.WriteString("\n")
	}
	for _, para := range enum.Comment.Details {
		fmt.Fprintf(b, "\n%s\n", para)
	}
}

// writeCommentIntro writes brief and details paragraphs, used for page-level
// compounds where no dedicated description section exists yet.
func writeCommentIntro(b *strings.Builder, c *model.Comment) {
	for _, brief := range c.Brief {
		fmt.Fprintf(b, "\n%s\n", brief)
	}
	for _, para := range c.Details {
		fmt.Fprintf(b, "\n%s\n", para)
	}
	writeCommentSections(b, c)
}

// writeCommentSections renders the structured tail sections of a comment:
// parameter docs, return value, contracts, exceptions, notes and warnings.
func writeCommentSections(b *strings.Builder, c *model.Comment) {
	if len(c.TemplateParameters) > 0 {
		b.WriteString("\n**Template Parameters**\n\n")
		writeNameDescriptionList(b, c.TemplateParameters)
	}
	if len(c.Parameters) > 0 {
		b.WriteString("\n**Parameters**\n\n")
		writeNameDescriptionList(b, c.Parameters)
	}
	if c.Returns != "" {
		fmt.Fprintf(b, "\n**Returns:** %s\n", c.Returns)
	}
	for _, pre := range c.Preconditions {
		fmt.Fprintf(b, "\n**Pre:** %s\n", pre)
	}
	for _, post := range c.Postconditions {
		fmt.Fprintf(b, "\n**Post:** %s\n", post)
	}
	if len(c.Exceptions) > 0 {
		b.WriteString("\n**Exceptions**\n\n")
		writeNameDescriptionList(b, c.Exceptions)
	}
	for _, note := range c.Notes {
		fmt.Fprintf(b, "\n> **Note:** %s\n", note)
	}
	for _, warning := range c.Warnings {
		fmt.Fprintf(b, "\n> **Warning:** %s\n", warning)
	}
	for _, see := range c.SeeAlso {
		fmt.Fprintf(b, "\n*See also: %s*\n", see)
	}
}

func writeNameDescriptionList(b *strings.Builder, m map[string]string) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(b, "* `%s` - %s\n", name, m[name])
	}
}
