package expr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrintRoundTrip(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"$page", "$page"},
		{"  $page ", "$page"},
		{"${page:#love$}", "${page:#love$}"},
		{`${a\}b}`, `${a\}b}`},
		{`${back\\slash}`, `${back\\slash}`},
		{"$main.sum($added)", "$main.sum($added)"},
		{"$main.count()", "$main.count()"},
		{"$main.sum($added) / $main.sum($deleted)", "$main.sum($added) / $main.sum($deleted)"},
		{"'[' ++ $user ++ ']'", "'[' ++ $user ++ ']'"},
		{"\"x\" ++ $user", "'x' ++ $user"},
		{"$a - ($b - $c)", "$a - ($b - $c)"},
		{"($a - $b) - $c", "$a - $b - $c"},
		{"($a + $b) * $c", "($a + $b) * $c"},
		{"$a + $b * $c", "$a + $b * $c"},
		{"($a + $b).absolute()", "($a + $b).absolute()"},
		{"$language.lookup(wiki_language)", "$language.lookup(wiki_language)"},
		{"$added.numberBucket(10, 0.5)", "$added.numberBucket(10,0.5)"},
		{"$page == 'x' and $added > 3", "$page == 'x' and $added > 3"},
		{"$a or $b and $c", "$a or $b and $c"},
		{"($a or $b) and $c", "($a or $b) and $c"},
		{"-3", "-3"},
		{"$main.filter($isRobot == true).count()", "$main.filter($isRobot == true).count()"},
		{"'it\\'s'", "'it\\'s'"},
		{"null", "null"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			e, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, e.String())

			again, err := Parse(e.String())
			require.NoError(t, err)
			assert.True(t, Equal(e, again), "reparse of %q differs", e.String())
		})
	}
}

func TestBracedRefEscapes(t *testing.T) {
	for _, name := range []string{"a}b", `back\slash`, `}\}`, "page:#love$"} {
		t.Run(name, func(t *testing.T) {
			e, err := Parse(NewRef(name).String())
			require.NoError(t, err)
			assert.Equal(t, &Ref{Name: name}, e)
		})
	}
}

func TestParseStructure(t *testing.T) {
	e := MustParse("$main.sum($added)")

	c, ok := e.(*Chain)
	require.True(t, ok)
	assert.Equal(t, "sum", c.Action)
	assert.Equal(t, &Ref{Name: MainName}, c.Operand)
	require.Len(t, c.Args, 1)
	assert.Equal(t, &Ref{Name: "added"}, c.Args[0])

	assert.True(t, Equal(Aggregate("sum", NewRef("added")), e))
}

func TestParseErrors(t *testing.T) {
	inputs := []string{
		"",
		"$",
		"${page",
		`${page\}`,
		"'open",
		"$a +",
		"$a.sum(",
		"$a.(1)",
		"($a",
		"$a $b",
		"$a # 3",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrSyntax))
		})
	}
}

func TestMustParsePanics(t *testing.T) {
	assert.Panics(t, func() { MustParse("$a +") })
}
