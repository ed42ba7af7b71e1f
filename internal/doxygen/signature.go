package doxygen

import (
	"strings"

	"git.home.luguber.info/inful/doxymd/internal/model"
)

// StripRedundantConst removes pass-by-value const qualifiers from a
// function's raw argument text and re-aligns wrapped parameter lists under
// the opening parenthesis of the rendered declaration.
//
// A fragment containing a pointer or reference marker is left untouched:
// const applied through a pointer or reference is semantically significant
// and must survive. Functions without parameters are left alone even when
// the raw argument text is non-empty (e.g. "()").
func StripRedundantConst(fn *model.Function) {
	if len(fn.ParameterNames) == 0 {
		return
	}

	head := fn.Arguments
	tail := ""
	if fn.ReturnType == "auto" {
		// Trailing return type: only the parameter list is rewritten, the
		// tail is reattached verbatim.
		if idx := strings.Index(head, "->"); idx >= 0 {
			tail = head[idx:]
			head = head[:idx]
		}
	}

	fragments := strings.Split(head, ",")
	for i, frag := range fragments {
		if strings.ContainsAny(frag, "*&") {
			continue
		}
		fragments[i] = strings.ReplaceAll(frag, "const ", "")
	}

	if !strings.Contains(head, "\n") {
		fn.Arguments = strings.Join(fragments, ",") + tail
		return
	}

	// The source wrapped the list across lines; re-wrap with continuation
	// lines aligned under the opening parenthesis of the declaration.
	indent := strings.Repeat(" ", declarationWidth(fn))
	var b strings.Builder
	for i, frag := range fragments {
		frag = strings.TrimSpace(frag)
		switch {
		case i == 0:
			b.WriteString(frag)
		case strings.ContainsAny(frag, "<>"):
			// Never break in front of a template argument list.
			b.WriteString(", ")
			b.WriteString(frag)
		default:
			b.WriteString(",\n")
			b.WriteString(indent)
			b.WriteString(frag)
		}
	}
	fn.Arguments = b.String() + tail
}

// declarationWidth computes the column of the opening parenthesis in the
// rendered declaration: keyword prefixes, return type, one space, name.
func declarationWidth(fn *model.Function) int {
	width := len(fn.ReturnType) + 1 + len(fn.Name) + 1
	if fn.IsStatic {
		width += len("static ")
	}
	if fn.IsExplicit {
		width += len("explicit ")
	}
	return width
}

// CollapseNoexcept rewrites any conditional noexcept expression in the raw
// argument text to the literal "noexcept(...)", hiding implementation-detail
// boolean expressions from rendered output.
func CollapseNoexcept(fn *model.Function) {
	const marker = "noexcept("

	args := fn.Arguments
	if !strings.Contains(args, marker) {
		return
	}

	var b strings.Builder
	for {
		idx := strings.Index(args, marker)
		if idx < 0 {
			b.WriteString(args)
			break
		}
		b.WriteString(args[:idx])
		b.WriteString("noexcept(...)")

		rest := args[idx+len(marker):]
		depth := 1
		i := 0
		for ; i < len(rest) && depth > 0; i++ {
			switch rest[i] {
			case '(':
				depth++
			case ')':
				depth--
			}
		}
		args = rest[i:]
	}
	fn.Arguments = b.String()
}
