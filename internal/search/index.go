// Package search builds an optional full-text index over the ingested API
// surface and serves queries against it.
package search

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/blevesearch/bleve/v2"

	"git.home.luguber.info/inful/doxymd/internal/errors"
	"git.home.luguber.info/inful/doxymd/internal/logfields"
	"git.home.luguber.info/inful/doxymd/internal/model"
	"git.home.luguber.info/inful/doxymd/internal/registry"
)

// Entry is one searchable document: a compound, function or enum.
type Entry struct {
	RefID         string `json:"refid"`
	Kind          string `json:"kind"`
	Name          string `json:"name"`
	QualifiedName string `json:"qualified_name"`
	Brief         string `json:"brief"`
	Details       string `json:"details"`
}

const indexBatchSize = 100

// BuildIndex replaces the index at indexDir with a fresh one built from the
// registry.
func BuildIndex(reg *registry.Registry, indexDir string) error {
	if err := os.RemoveAll(indexDir); err != nil && !os.IsNotExist(err) {
		return errors.WrapFatal(err, errors.CategorySearch, "failed to remove old index").
			WithContext("path", indexDir)
	}

	mapping := bleve.NewIndexMapping()
	index, err := bleve.New(indexDir, mapping)
	if err != nil {
		return errors.WrapFatal(err, errors.CategorySearch, "failed to create index").
			WithContext("path", indexDir)
	}
	defer index.Close()

	batch := index.NewBatch()
	indexed := 0

	flush := func() error {
		if batch.Size() == 0 {
			return nil
		}
		if err := index.Batch(batch); err != nil {
			return errors.WrapFatal(err, errors.CategorySearch, "failed to index batch")
		}
		batch = index.NewBatch()
		return nil
	}

	add := func(entry Entry) error {
		if err := batch.Index(entry.RefID, entry); err != nil {
			return errors.WrapFatal(err, errors.CategorySearch, "failed to add entry to batch").
				WithContext("refid", entry.RefID)
		}
		indexed++
		if batch.Size() >= indexBatchSize {
			return flush()
		}
		return nil
	}

	for _, id := range reg.SortedCompoundIDs() {
		compound := reg.Compounds[id]
		if compound.Kind == model.KindFile || compound.Kind == model.KindDirectory {
			continue
		}
		if err := add(compoundEntry(id, compound)); err != nil {
			return err
		}
		for _, fnID := range compound.Functions {
			if fn, ok := reg.Functions[fnID]; ok {
				if err := add(functionEntry(fnID, fn)); err != nil {
					return err
				}
			}
		}
		for _, enumID := range compound.Enums {
			if enum, ok := reg.Enums[enumID]; ok {
				if err := add(enumEntry(enumID, enum)); err != nil {
					return err
				}
			}
		}
	}

	if err := flush(); err != nil {
		return err
	}
	slog.Info("Search index built", logfields.Path(indexDir), logfields.Count(indexed))
	return nil
}

func compoundEntry(id model.RefID, compound *model.Compound) Entry {
	return Entry{
		RefID:         string(id),
		Kind:          string(compound.Kind),
		Name:          compound.Name,
		QualifiedName: compound.Name,
		Brief:         strings.Join(compound.Comment.Brief, " "),
		Details:       strings.Join(compound.Comment.Details, " "),
	}
}

func functionEntry(id model.RefID, fn *model.Function) Entry {
	return Entry{
		RefID:         string(id),
		Kind:          "function",
		Name:          fn.Name,
		QualifiedName: fn.QualifiedName,
		Brief:         strings.Join(fn.Comment.Brief, " "),
		Details:       strings.Join(fn.Comment.Details, " "),
	}
}

func enumEntry(id model.RefID, enum *model.Enum) Entry {
	return Entry{
		RefID:         string(id),
		Kind:          "enum",
		Name:          enum.Name,
		QualifiedName: enum.QualifiedName,
		Brief:         strings.Join(enum.Comment.Brief, " "),
		Details:       strings.Join(enum.Comment.Details, " "),
	}
}

// Hit is one ranked search result.
type Hit struct {
	RefID         string
	Name          string
	QualifiedName string
	Kind          string
	Score         float64
}

// Query runs a match query against an existing index.
func Query(indexDir, query string, limit int) ([]Hit, error) {
	index, err := bleve.Open(indexDir)
	if err != nil {
		return nil, errors.WrapFatal(err, errors.CategorySearch, "failed to open index (run generate first)").
			WithContext("path", indexDir)
	}
	defer index.Close()

	req := bleve.NewSearchRequestOptions(bleve.NewMatchQuery(query), limit, 0, false)
	req.Fields = []string{"name", "qualified_name", "kind"}

	result, err := index.Search(req)
	if err != nil {
		return nil, errors.WrapFatal(err, errors.CategorySearch, "search failed")
	}

	hits := make([]Hit, 0, len(result.Hits))
	for _, h := range result.Hits {
		hits = append(hits, Hit{
			RefID:         h.ID,
			Name:          fieldString(h.Fields, "name"),
			QualifiedName: fieldString(h.Fields, "qualified_name"),
			Kind:          fieldString(h.Fields, "kind"),
			Score:         h.Score,
		})
	}
	return hits, nil
}

func fieldString(fields map[string]any, key string) string {
	if v, ok := fields[key]; ok {
		return fmt.Sprintf("%v", v)
	}
	return ""
}
