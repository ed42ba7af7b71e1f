package search

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/doxymd/internal/errors"
	"git.home.luguber.info/inful/doxymd/internal/model"
	"git.home.luguber.info/inful/doxymd/internal/registry"
)

func newSearchRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.New()

	group := reg.DeclareCompound("group__core", model.KindGroup, "core")
	group.Comment.Brief = []string{"Core primitives."}
	group.Functions = append(group.Functions, "func__frobnicate")
	group.Enums = append(group.Enums, "enum__color")

	fn := reg.DeclareFunction("func__frobnicate", false)
	fn.Name = "frobnicate"
	fn.QualifiedName = "core::frobnicate"
	fn.Comment.Brief = []string{"Frobnicates the widget."}

	enum := reg.DeclareEnum("enum__color")
	enum.Name = "Color"
	enum.QualifiedName = "core::Color"

	// File compounds are structural noise and stay out of the index.
	reg.DeclareCompound("core_8hpp", model.KindFile, "core.hpp")

	return reg
}

func TestBuildIndexAndQuery_FunctionByName_Found(t *testing.T) {
	indexDir := filepath.Join(t.TempDir(), "idx")
	require.NoError(t, BuildIndex(newSearchRegistry(t), indexDir))

	hits, err := Query(indexDir, "frobnicate", 10)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	require.Equal(t, "func__frobnicate", hits[0].RefID)
	require.Equal(t, "frobnicate", hits[0].Name)
	require.Equal(t, "core::frobnicate", hits[0].QualifiedName)
	require.Equal(t, "function", hits[0].Kind)
	require.Greater(t, hits[0].Score, 0.0)
}

func TestBuildIndex_FileCompounds_Excluded(t *testing.T) {
	indexDir := filepath.Join(t.TempDir(), "idx")
	require.NoError(t, BuildIndex(newSearchRegistry(t), indexDir))

	hits, err := Query(indexDir, "core.hpp", 10)
	require.NoError(t, err)
	for _, hit := range hits {
		require.NotEqual(t, "core_8hpp", hit.RefID)
	}
}

func TestBuildIndex_ExistingIndex_Replaced(t *testing.T) {
	indexDir := filepath.Join(t.TempDir(), "idx")
	require.NoError(t, BuildIndex(newSearchRegistry(t), indexDir))

	// Rebuilding from a smaller registry must not leave stale entries behind.
	reg := registry.New()
	reg.DeclareCompound("group__only", model.KindGroup, "only")
	require.NoError(t, BuildIndex(reg, indexDir))

	hits, err := Query(indexDir, "frobnicate", 10)
	require.NoError(t, err)
	require.Empty(t, hits)
}

func TestQuery_LimitRespected(t *testing.T) {
	indexDir := filepath.Join(t.TempDir(), "idx")
	require.NoError(t, BuildIndex(newSearchRegistry(t), indexDir))

	hits, err := Query(indexDir, "core", 1)
	require.NoError(t, err)
	require.LessOrEqual(t, len(hits), 1)
}

func TestQuery_MissingIndex_SearchError(t *testing.T) {
	_, err := Query(filepath.Join(t.TempDir(), "absent"), "anything", 10)
	require.Error(t, err)
	require.True(t, errors.IsCategory(err, errors.CategorySearch))
}
