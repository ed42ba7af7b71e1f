// Package doxygen implements the two-pass ingestion engine for a directory
// of Doxygen-generated XML: a declaration pass over the index document
// establishes every entity by stable identifier, then a definition pass over
// the remaining documents fills the entities in place. The declaration pass
// must fully complete first; this is a hard ordering dependency, since the
// definition pass resolves identifiers only the declaration pass guarantees
// exist.
package doxygen

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/beevik/etree"

	"git.home.luguber.info/inful/doxymd/internal/errors"
	"git.home.luguber.info/inful/doxymd/internal/logfields"
	"git.home.luguber.info/inful/doxymd/internal/metrics"
	"git.home.luguber.info/inful/doxymd/internal/registry"
)

const indexFileName = "index.xml"

// Parser ingests a Doxygen XML output directory into a Registry.
type Parser struct {
	rec metrics.Recorder
}

// NewParser creates a parser. A nil recorder disables metrics.
func NewParser(rec metrics.Recorder) *Parser {
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &Parser{rec: rec}
}

// ParseDirectory runs both ingestion passes over the input directory and
// returns the finished registry. Any fatal error aborts the whole run; there
// is no partial-result mode.
func (p *Parser) ParseDirectory(inputDir string) (*registry.Registry, error) {
	indexPath := filepath.Join(inputDir, indexFileName)
	slog.Info("Parsing index document", logfields.Path(indexPath))

	root, err := readDocumentRoot(indexPath)
	if err != nil {
		return nil, err
	}

	reg := registry.New()

	start := time.Now()
	if err := p.declareIndex(root, reg); err != nil {
		return nil, err
	}
	p.rec.ObservePassDuration("declare", time.Since(start))
	slog.Info("Declaration pass complete",
		logfields.Stage("declare"),
		logfields.Count(len(reg.Compounds)),
		logfields.DurationMS(float64(time.Since(start).Milliseconds())))

	start = time.Now()
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, errors.WrapFatal(err, errors.CategoryIO, "failed to list input directory").
			WithContext("path", inputDir)
	}

	// Processing order is the directory listing's order; each document
	// mutates a disjoint subset of registry entries, so order is irrelevant
	// to correctness.
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == indexFileName || filepath.Ext(name) != ".xml" {
			continue
		}
		if err := p.parseDefinitionFile(filepath.Join(inputDir, name), reg); err != nil {
			return nil, err
		}
	}
	p.rec.ObservePassDuration("define", time.Since(start))
	slog.Info("Definition pass complete",
		logfields.Stage("define"),
		logfields.DurationMS(float64(time.Since(start).Milliseconds())))

	return reg, nil
}

// parseDefinitionFile processes one per-compound document.
func (p *Parser) parseDefinitionFile(path string, reg *registry.Registry) error {
	slog.Debug("Parsing definition document", logfields.Path(path))

	root, err := readDocumentRoot(path)
	if err != nil {
		return err
	}

	for _, child := range root.ChildElements() {
		if child.Tag != "compounddef" {
			continue
		}
		if err := p.parseCompoundDefinition(child, reg); err != nil {
			return err
		}
	}
	return nil
}

func readDocumentRoot(path string) (*etree.Element, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, errors.WrapFatal(err, errors.CategoryIO, "failed to read document").
			WithContext("path", path)
	}
	root := doc.Root()
	if root == nil {
		return nil, errors.Fatal(errors.CategorySchema, "document has no root element").
			WithContext("path", path)
	}
	return root, nil
}
