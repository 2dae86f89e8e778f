package expr

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
)

func TestReferences(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"$page", []string{"page"}},
		{"$main.count()", nil},
		{"$main.sum($added) / $main.sum($deleted) + $main.sum($added)", []string{"added", "deleted"}},
		{"'[' ++ $user ++ '] ' ++ $page", []string{"user", "page"}},
		{"${page:#love$}.lookup(x)", []string{"page:#love$"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, References(MustParse(tt.input)))
		})
	}
}

func TestCountMain(t *testing.T) {
	assert.Equal(t, 0, CountMain(MustParse("$page")))
	assert.Equal(t, 1, CountMain(MustParse("$main.count()")))
	assert.Equal(t, 2, CountMain(MustParse("$main.sum($a) / $main.sum($b)")))
	assert.True(t, ContainsMain(MustParse("$main.filter($a == 'x').count()")))
	assert.False(t, ContainsMain(MustParse("$count / 3")))
}

func TestRename(t *testing.T) {
	original := MustParse("$main.sum(${added:#love$}) + $main.max($main2)")
	renamed := Rename(original, map[string]string{"added:#love$": "added_love_", "main": "nope"})

	assert.Equal(t, "$main.sum($added_love_) + $main.max($main2)", renamed.String())
	assert.Equal(t, "$main.sum(${added:#love$}) + $main.max($main2)", original.String(), "input must not change")
}

func TestSubstitute(t *testing.T) {
	e := Substitute(MustParse("$pageInBrackets.lookup(x)"), map[string]Expression{
		"pageInBrackets": MustParse("'[' ++ $page ++ ']'"),
	})

	assert.Equal(t, "('[' ++ $page ++ ']').lookup(x)", e.String())
}

func TestUsages(t *testing.T) {
	tests := []struct {
		input    string
		hint     Type
		expected []Usage
	}{
		{"$page", TypeUnknown, []Usage{{Name: "page", Type: TypeString}}},
		{"$__time", TypeTime, []Usage{{Name: "__time", Type: TypeTime, Strong: true}}},
		{"'[' ++ $user ++ ']'", TypeUnknown, []Usage{{Name: "user", Type: TypeString, Strong: true}}},
		{"$main.sum($added)", TypeNumber, []Usage{{Name: "added", Type: TypeNumber, Strong: true}}},
		{
			"$main.countDistinct($unique_user)", TypeNumber,
			[]Usage{{Name: "unique_user", Type: TypeString, Strong: true, Unique: true}},
		},
		{"$added.numberBucket(10)", TypeUnknown, []Usage{{Name: "added", Type: TypeNumber, Strong: true}}},
		{"$commentLength.absolute()", TypeUnknown, []Usage{{Name: "commentLength", Type: TypeNumber, Strong: true}}},
		{"$__time.timeFloor(P1D)", TypeUnknown, []Usage{{Name: "__time", Type: TypeTime, Strong: true}}},
		{
			"$main.filter($isRobot == true).sum($count)", TypeNumber,
			[]Usage{
				{Name: "isRobot", Type: TypeBoolean, Strong: true},
				{Name: "count", Type: TypeNumber, Strong: true},
			},
		},
		{"$channel == $namespace", TypeUnknown, []Usage{{Name: "channel", Type: TypeString}, {Name: "namespace", Type: TypeString}}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Usages(MustParse(tt.input), tt.hint)
			assert.Equal(t, tt.expected, got, spew.Sdump(got))
		})
	}
}
