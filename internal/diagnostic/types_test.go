package diagnostic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnosticsSeverities(t *testing.T) {
	var d Diagnostics

	d.AddInfo(CodeSynthesisSkipped, "name taken", "wiki", "page")
	d.AddWarning(CodeAttributeRenamed, "renamed", "wiki", "page:#love$")

	assert.False(t, d.HasErrors())
	require.NoError(t, d.Error())

	d.AddError(CodeLoadFailed, "boom", "twitter", "")

	assert.True(t, d.HasErrors())
	assert.EqualError(t, d.Error(), "[twitter]: [load_failed] boom")
	assert.Len(t, d.All(), 3)
	assert.Equal(t, SeverityError, d.All()[0].Severity)
}

func TestDiagnosticsByCodeAndMerge(t *testing.T) {
	var a, b Diagnostics

	a.AddInfo(CodeSynthesisSkipped, "first", "wiki", "x")
	b.AddInfo(CodeSynthesized, "made", "wiki", "y")
	b.AddWarning(CodeSynthesisSkipped, "second", "wiki", "z")

	a.Merge(b)

	skipped := a.ByCode(CodeSynthesisSkipped)
	require.Len(t, skipped, 2)
	assert.Equal(t, "second", skipped[0].Message)
	assert.Equal(t, "first", skipped[1].Message)
	assert.Equal(t, "[wiki] x: [synthesis_skipped] first", skipped[1].String())
}

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "info", SeverityInfo.String())
	assert.Equal(t, "warning", SeverityWarning.String())
	assert.Equal(t, "error", SeverityError.String())
	assert.Equal(t, "unknown", Severity(42).String())
}
