package markdown

import "strings"

// GroupFileName returns the output file name for a group page.
func GroupFileName(name string) string {
	return "group_" + strings.ReplaceAll(strings.ToLower(name), " ", "_") + ".md"
}

// ClassFileName returns the output file name for a class page. Scope
// separators and template brackets are flattened so the name stays a plain
// portable file name.
func ClassFileName(name string) string {
	slug := strings.ToLower(name)
	slug = strings.ReplaceAll(slug, "::", "_")
	slug = strings.ReplaceAll(slug, "<", "_")
	slug = strings.ReplaceAll(slug, ">", "_")
	slug = strings.ReplaceAll(slug, " ", "")
	return "class_" + slug + ".md"
}
