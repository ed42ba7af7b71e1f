package markdown

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"git.home.luguber.info/inful/doxymd/internal/errors"
	"git.home.luguber.info/inful/doxymd/internal/util/sets"
)

// VerifyOutput parses every generated page and checks that intra-output
// links resolve to a page that was actually written. External links and
// anchors are ignored. A dangling link fails the render: it means the
// generator emitted a reference to a page it never produced.
func VerifyOutput(outputDir string, written []string) error {
	generated := sets.New[string]()
	for _, rel := range written {
		generated.Add(filepath.ToSlash(rel))
	}

	var broken []string
	for _, rel := range written {
		// #nosec G304 -- paths come from the generator's own write list.
		body, err := os.ReadFile(filepath.Join(outputDir, rel))
		if err != nil {
			return errors.WrapFatal(err, errors.CategoryRender, "failed to re-read generated page").
				WithContext("path", rel)
		}
		for _, dest := range extractLinkDestinations(body) {
			if !isLocalPageLink(dest) {
				continue
			}
			resolved := path.Clean(path.Join(path.Dir(filepath.ToSlash(rel)), dest))
			if !generated.Has(resolved) {
				broken = append(broken, fmt.Sprintf("%s -> %s", rel, dest))
			}
		}
	}

	if len(broken) > 0 {
		return errors.Fatal(errors.CategoryRender, "generated output contains dangling links").
			WithContext("links", strings.Join(broken, ", "))
	}
	return nil
}

// extractLinkDestinations parses a Markdown body and collects link and image
// destinations from the AST.
func extractLinkDestinations(body []byte) []string {
	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(body))

	var dests []string
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gmast.AutoLink:
			dests = append(dests, string(node.URL(body)))
		case *gmast.Image:
			dests = append(dests, string(node.Destination))
		case *gmast.Link:
			dests = append(dests, string(node.Destination))
		}
		return gmast.WalkContinue, nil
	})
	return dests
}

// isLocalPageLink reports whether dest points at another generated Markdown
// page rather than an external URL or in-page anchor.
func isLocalPageLink(dest string) bool {
	if dest == "" || strings.HasPrefix(dest, "#") {
		return false
	}
	if strings.Contains(dest, "://") || strings.HasPrefix(dest, "mailto:") {
		return false
	}
	return strings.HasSuffix(dest, ".md")
}
