package doxygen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/doxymd/internal/errors"
	"git.home.luguber.info/inful/doxymd/internal/model"
)

const testIndexXML = `<?xml version="1.0" encoding="UTF-8"?>
<doxygenindex>
	<compound refid="group__core" kind="group"><name>core</name>
		<member refid="func__free" kind="function"><name>freeFn</name></member>
		<member refid="def__max" kind="define"><name>MAX_THINGS</name></member>
	</compound>
	<compound refid="class_foo" kind="class"><name>demo::Foo</name>
		<member refid="func__foo_bar" kind="function"><name>bar</name></member>
		<member refid="var__foo_count" kind="variable"><name>count</name></member>
		<member refid="enum__color" kind="enum"><name>Color</name></member>
		<member refid="enumval__red" kind="enumvalue"><name>Red</name></member>
		<member refid="friend__helper" kind="friend"><name>helper</name></member>
		<member refid="typedef__alias" kind="typedef"><name>alias</name></member>
	</compound>
	<compound refid="foo_8hpp" kind="file"><name>foo.hpp</name></compound>
</doxygenindex>`

const testClassXML = `<?xml version="1.0" encoding="UTF-8"?>
<doxygen>
	<compounddef id="class_foo" kind="class">
		<compoundname>demo::Foo</compoundname>
		<title>The Foo class</title>
		<briefdescription><para>A demo class.</para></briefdescription>
		<detaileddescription><para>Longer description.</para></detaileddescription>
		<templateparamlist><param><type>typename T</type></param></templateparamlist>
		<sectiondef kind="public-func">
			<memberdef kind="function" id="func__foo_bar" prot="public" static="no" const="yes" explicit="no" inline="no" virt="non-virtual">
				<type>int</type>
				<definition>int demo::Foo::bar</definition>
				<argsstring>(const int x, const T&amp; y) const</argsstring>
				<name>bar</name>
				<qualifiedname>demo::Foo::bar</qualifiedname>
				<param><type>const int</type><declname>x</declname></param>
				<param><type>const T &amp;</type><declname>y</declname></param>
				<param><type>const T &amp;</type><declname>y</declname></param>
				<briefdescription><para>Does bar.</para></briefdescription>
				<detaileddescription>
					<para><simplesect kind="return"><para>the result</para></simplesect></para>
				</detaileddescription>
			</memberdef>
			<memberdef kind="variable" id="var__foo_count" prot="private" static="no" mutable="no" constexpr="no">
				<type>int</type>
				<definition>int demo::Foo::count</definition>
				<name>count</name>
				<qualifiedname>demo::Foo::count</qualifiedname>
			</memberdef>
			<memberdef kind="enum" id="enum__color" prot="public" strong="yes">
				<name>Color</name>
				<qualifiedname>demo::Foo::Color</qualifiedname>
				<enumvalue id="enumval__red" prot="public">
					<name>Red</name>
					<initializer>= 0</initializer>
					<briefdescription><para>The red one.</para></briefdescription>
				</enumvalue>
				<enumvalue id="enumval__green" prot="public">
					<name>Green</name>
				</enumvalue>
			</memberdef>
		</sectiondef>
	</compounddef>
</doxygen>`

const testGroupXML = `<?xml version="1.0" encoding="UTF-8"?>
<doxygen>
	<compounddef id="group__core" kind="group">
		<compoundname>core</compoundname>
		<title>Core Module</title>
		<innerclass refid="class_foo">demo::Foo</innerclass>
		<sectiondef kind="func">
			<memberdef kind="function" id="func__free" prot="public" static="no" const="no" explicit="no" inline="no" virt="non-virtual">
				<type>void</type>
				<definition>void freeFn</definition>
				<argsstring>()</argsstring>
				<name>freeFn</name>
				<qualifiedname>freeFn</qualifiedname>
			</memberdef>
		</sectiondef>
	</compounddef>
</doxygen>`

func writeTestInput(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func defaultTestInput(t *testing.T) string {
	t.Helper()
	return writeTestInput(t, map[string]string{
		"index.xml":      testIndexXML,
		"class_foo.xml":  testClassXML,
		"group_core.xml": testGroupXML,
	})
}

func TestParseDirectory_DeclaredIdentifiers_AllResolvable(t *testing.T) {
	dir := writeTestInput(t, map[string]string{"index.xml": testIndexXML})

	reg, err := NewParser(nil).ParseDirectory(dir)
	require.NoError(t, err)

	_, err = reg.Compound("group__core")
	require.NoError(t, err)
	_, err = reg.Compound("class_foo")
	require.NoError(t, err)
	_, err = reg.Class("class_foo")
	require.NoError(t, err)
	_, err = reg.Function("func__free")
	require.NoError(t, err)
	_, err = reg.Function("func__foo_bar")
	require.NoError(t, err)
	_, err = reg.Variable("var__foo_count")
	require.NoError(t, err)
	_, err = reg.Enum("enum__color")
	require.NoError(t, err)
	_, err = reg.Define("def__max")
	require.NoError(t, err)
}

func TestParseDirectory_DeclarationOnly_EntitiesKeepDefaults(t *testing.T) {
	dir := writeTestInput(t, map[string]string{"index.xml": testIndexXML})

	reg, err := NewParser(nil).ParseDirectory(dir)
	require.NoError(t, err)

	fn, err := reg.Function("func__foo_bar")
	require.NoError(t, err)
	require.Empty(t, fn.Name)
	require.True(t, fn.IsMember)
	require.Equal(t, model.AccessPrivate, fn.Access)

	free, err := reg.Function("func__free")
	require.NoError(t, err)
	require.False(t, free.IsMember)
}

func TestParseDirectory_FriendAndTypedefMembers_NotMaterialized(t *testing.T) {
	dir := writeTestInput(t, map[string]string{"index.xml": testIndexXML})

	reg, err := NewParser(nil).ParseDirectory(dir)
	require.NoError(t, err)

	compound, err := reg.Compound("class_foo")
	require.NoError(t, err)
	require.Equal(t, []model.RefID{"func__foo_bar"}, compound.Functions)
	require.Equal(t, []model.RefID{"var__foo_count"}, compound.Variables)
	require.NotContains(t, reg.Functions, model.RefID("friend__helper"))
}

func TestParseDirectory_ClassMemberFunction_FullyPopulated(t *testing.T) {
	reg, err := NewParser(nil).ParseDirectory(defaultTestInput(t))
	require.NoError(t, err)

	fn, err := reg.Function("func__foo_bar")
	require.NoError(t, err)
	require.Equal(t, "bar", fn.Name)
	require.Equal(t, "demo::Foo::bar", fn.QualifiedName)
	require.Equal(t, model.AccessPublic, fn.Access)
	require.True(t, fn.IsMember)
	require.True(t, fn.IsConst)
	require.False(t, fn.IsVirtual)
	// Noexcept is aliased to the const attribute by the source format.
	require.True(t, fn.IsNoexcept)
	// Value-parameter const stripped, reference const preserved, repeated
	// parameter name deduplicated.
	require.Equal(t, "(int x, const T& y) const", fn.Arguments)
	require.Equal(t, []string{"x", "y"}, fn.ParameterNames)
	require.Equal(t, []string{"Does bar."}, fn.Comment.Brief)
	require.Equal(t, "the result", fn.Comment.Returns)
}

func TestParseDirectory_CompoundDetails_TitleTemplateAndMembership(t *testing.T) {
	reg, err := NewParser(nil).ParseDirectory(defaultTestInput(t))
	require.NoError(t, err)

	classCompound, err := reg.Compound("class_foo")
	require.NoError(t, err)
	require.Equal(t, "The Foo class", classCompound.Title)
	require.Equal(t, []string{"A demo class."}, classCompound.Comment.Brief)

	class, err := reg.Class("class_foo")
	require.NoError(t, err)
	require.Equal(t, "Foo", class.UnqualifiedName)
	require.Equal(t, []string{"typename T"}, class.TemplateParameters)

	group, err := reg.Compound("group__core")
	require.NoError(t, err)
	require.Equal(t, "Core Module", group.Title)
	require.Equal(t, []model.RefID{"class_foo"}, group.Classes)
	require.Equal(t, []model.RefID{"func__free"}, group.Functions)
	require.Equal(t, []model.RefID{"def__max"}, group.Defines)
}

func TestParseDirectory_EnumDetails_ScopedValuesAndInitializer(t *testing.T) {
	reg, err := NewParser(nil).ParseDirectory(defaultTestInput(t))
	require.NoError(t, err)

	enum, err := reg.Enum("enum__color")
	require.NoError(t, err)
	require.Equal(t, "Color", enum.Name)
	require.True(t, enum.IsScoped)
	require.Len(t, enum.Values, 2)
	require.Equal(t, "Red", enum.Values[0].Name)
	require.Equal(t, "0", enum.Values[0].Initializer)
	require.Equal(t, []string{"The red one."}, enum.Values[0].Comment.Brief)
	require.Equal(t, "Green", enum.Values[1].Name)
	require.Empty(t, enum.Values[1].Initializer)

	red, ok := reg.EnumValues["enumval__red"]
	require.True(t, ok)
	require.Equal(t, "Red", red.Name)
}

func TestParseDirectory_DefineEntity_CarriesIndexName(t *testing.T) {
	reg, err := NewParser(nil).ParseDirectory(defaultTestInput(t))
	require.NoError(t, err)

	define, err := reg.Define("def__max")
	require.NoError(t, err)
	require.Equal(t, "MAX_THINGS", define.Name)
}

func TestParseDirectory_DefinitionPassRepeated_Idempotent(t *testing.T) {
	dir := defaultTestInput(t)
	parser := NewParser(nil)

	reg, err := parser.ParseDirectory(dir)
	require.NoError(t, err)

	// Re-run the definition documents over the same registry: every
	// mutation fully overwrites, and the additive fields deduplicate.
	require.NoError(t, parser.parseDefinitionFile(filepath.Join(dir, "class_foo.xml"), reg))
	require.NoError(t, parser.parseDefinitionFile(filepath.Join(dir, "group_core.xml"), reg))

	fn, err := reg.Function("func__foo_bar")
	require.NoError(t, err)
	require.Equal(t, []string{"x", "y"}, fn.ParameterNames)

	enum, err := reg.Enum("enum__color")
	require.NoError(t, err)
	require.Len(t, enum.Values, 2)

	group, err := reg.Compound("group__core")
	require.NoError(t, err)
	require.Equal(t, []model.RefID{"class_foo"}, group.Classes)
}

func TestParseDirectory_UnsupportedCompoundKind_SchemaError(t *testing.T) {
	dir := writeTestInput(t, map[string]string{
		"index.xml": `<doxygenindex><compound refid="x" kind="alien"><name>x</name></compound></doxygenindex>`,
	})

	_, err := NewParser(nil).ParseDirectory(dir)
	require.Error(t, err)
	require.True(t, errors.IsCategory(err, errors.CategorySchema))
}

func TestParseDirectory_UnsupportedMemberKind_SchemaError(t *testing.T) {
	dir := writeTestInput(t, map[string]string{
		"index.xml": `<doxygenindex><compound refid="g" kind="group"><name>g</name>
			<member refid="m" kind="gadget"><name>m</name></member>
		</compound></doxygenindex>`,
	})

	_, err := NewParser(nil).ParseDirectory(dir)
	require.Error(t, err)
	require.True(t, errors.IsCategory(err, errors.CategorySchema))
}

func TestParseDirectory_UndeclaredDefinitionIdentifier_ResolveError(t *testing.T) {
	dir := writeTestInput(t, map[string]string{
		"index.xml": `<doxygenindex></doxygenindex>`,
		"class_ghost.xml": `<doxygen><compounddef id="class_ghost" kind="class">
			<compoundname>Ghost</compoundname>
		</compounddef></doxygen>`,
	})

	_, err := NewParser(nil).ParseDirectory(dir)
	require.Error(t, err)
	require.True(t, errors.IsCategory(err, errors.CategoryResolve))
}

func TestParseDirectory_FileAndNamespaceDefinitions_Skipped(t *testing.T) {
	dir := writeTestInput(t, map[string]string{
		"index.xml": `<doxygenindex><compound refid="foo_8hpp" kind="file"><name>foo.hpp</name></compound></doxygenindex>`,
		"foo_8hpp.xml": `<doxygen><compounddef id="foo_8hpp" kind="file">
			<title>ignored title</title>
		</compounddef></doxygen>`,
	})

	reg, err := NewParser(nil).ParseDirectory(dir)
	require.NoError(t, err)

	compound, err := reg.Compound("foo_8hpp")
	require.NoError(t, err)
	require.Empty(t, compound.Title)
}

func TestParseDirectory_MissingIndex_IOError(t *testing.T) {
	_, err := NewParser(nil).ParseDirectory(t.TempDir())
	require.Error(t, err)
	require.True(t, errors.IsCategory(err, errors.CategoryIO))
}

func TestParseDirectory_MissingRequiredAttribute_SchemaError(t *testing.T) {
	dir := writeTestInput(t, map[string]string{
		"index.xml": `<doxygenindex><compound refid="g" kind="group"><name>g</name>
			<member refid="f" kind="function"><name>f</name></member>
		</compound></doxygenindex>`,
		// static attribute missing on the memberdef.
		"g.xml": `<doxygen><compounddef id="g" kind="group">
			<sectiondef><memberdef kind="function" id="f" prot="public" const="no" explicit="no" inline="no" virt="non-virtual">
				<type>void</type><definition>void f</definition><argsstring>()</argsstring>
				<name>f</name><qualifiedname>f</qualifiedname>
			</memberdef></sectiondef>
		</compounddef></doxygen>`,
	})

	_, err := NewParser(nil).ParseDirectory(dir)
	require.Error(t, err)
	require.True(t, errors.IsCategory(err, errors.CategorySchema))
}
