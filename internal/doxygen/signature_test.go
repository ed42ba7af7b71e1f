package doxygen

import (
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/doxymd/internal/model"
)

func newTestFunction(returnType, name, args string, params ...string) *model.Function {
	fn := model.NewFunction(false)
	fn.ReturnType = returnType
	fn.Name = name
	fn.Arguments = args
	fn.ParameterNames = params
	return fn
}

func TestStripRedundantConst_ValueParameter_ConstRemoved(t *testing.T) {
	fn := newTestFunction("void", "f", "(const int x, const Foo& y)", "x", "y")
	StripRedundantConst(fn)
	require.Equal(t, "(int x, const Foo& y)", fn.Arguments)
}

func TestStripRedundantConst_PointerParameter_ConstPreserved(t *testing.T) {
	fn := newTestFunction("void", "f", "(const char* s)", "s")
	StripRedundantConst(fn)
	require.Equal(t, "(const char* s)", fn.Arguments)
}

func TestStripRedundantConst_NoParameters_NoOp(t *testing.T) {
	fn := newTestFunction("void", "f", "()")
	StripRedundantConst(fn)
	require.Equal(t, "()", fn.Arguments)

	// Raw text containing const is still untouched when the parameter-name
	// list is empty.
	fn = newTestFunction("void", "f", "(const int hidden)")
	StripRedundantConst(fn)
	require.Equal(t, "(const int hidden)", fn.Arguments)
}

func TestStripRedundantConst_TrailingReturnType_TailReattachedVerbatim(t *testing.T) {
	fn := newTestFunction("auto", "f", "(const int a) -> const int&", "a")
	StripRedundantConst(fn)
	require.Equal(t, "(int a) -> const int&", fn.Arguments)
}

func TestStripRedundantConst_WrappedList_RealignedUnderParenthesis(t *testing.T) {
	fn := newTestFunction("void", "fn", "(const int a,\n    const long b)", "a", "b")
	fn.IsStatic = false
	StripRedundantConst(fn)
	// Opening parenthesis sits at column len("void")+1+len("fn")+1 = 8.
	require.Equal(t, "(int a,\n        long b)", fn.Arguments)
}

func TestStripRedundantConst_WrappedList_StaticPrefixWidensIndent(t *testing.T) {
	fn := newTestFunction("void", "fn", "(const int a,\n    const long b)", "a", "b")
	fn.IsStatic = true
	StripRedundantConst(fn)
	require.Equal(t, "(int a,\n               long b)", fn.Arguments)
}

func TestStripRedundantConst_TemplateArgumentFragment_NoLineBreakInserted(t *testing.T) {
	fn := newTestFunction("void", "f", "(int a,\n    std::vector<int> v)", "a", "v")
	StripRedundantConst(fn)
	require.Equal(t, "(int a, std::vector<int> v)", fn.Arguments)
}

func TestCollapseNoexcept_ConditionalExpression_Collapsed(t *testing.T) {
	fn := newTestFunction("void", "f", "(T&& v) noexcept(noexcept(swap(a, b)))", "v")
	CollapseNoexcept(fn)
	require.Equal(t, "(T&& v) noexcept(...)", fn.Arguments)
}

func TestCollapseNoexcept_PlainNoexcept_Unchanged(t *testing.T) {
	fn := newTestFunction("void", "f", "(int a) noexcept", "a")
	CollapseNoexcept(fn)
	require.Equal(t, "(int a) noexcept", fn.Arguments)
}

func TestCollapseNoexcept_MultipleOccurrences_AllCollapsed(t *testing.T) {
	fn := newTestFunction("void", "f", "noexcept(A) and noexcept(B)")
	CollapseNoexcept(fn)
	require.Equal(t, "noexcept(...) and noexcept(...)", fn.Arguments)
}
