package datasource

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIssues(t *testing.T) {
	ds := mustParse(t, `
name: wiki
clusterName: druid
source: wiki
attributes:
  - {name: __time, type: TIME}
  - {name: articleName, type: STRING}
  - {name: count, type: NUMBER}
dimensions:
  - {name: gaga, expression: $gaga}
  - {name: bucketArticleName, expression: "$articleName.numberBucket(5)"}
measures:
  - {name: count, expression: $main.sum($count)}
  - {name: added, expression: $main.sum($added)}
  - {name: sumArticleName, expression: $main.sum($articleName)}
  - {name: koalaCount, expression: $koala.sum($count)}
  - {name: countByThree, expression: $count / 3}
`)

	assert.Equal(t, []string{
		"failed to validate dimension 'gaga': could not resolve $gaga",
		"failed to validate dimension 'bucketArticleName': numberBucket must have input of type NUMBER or NUMBER_RANGE (is STRING)",
		"failed to validate measure 'added': could not resolve $added",
		"failed to validate measure 'sumArticleName': sum must have expression of type NUMBER (is STRING)",
		"failed to validate measure 'koalaCount': measure must contain a $main reference",
		"failed to validate measure 'countByThree': measure must contain a $main reference",
	}, ds.Issues())
}

func TestIssuesClean(t *testing.T) {
	ds := mustParse(t, `
name: wiki
attributes:
  - {name: __time, type: TIME}
  - {name: added, type: NUMBER}
  - {name: deleted, type: NUMBER}
dimensions:
  - {name: __time, kind: time}
measures:
  - {name: ratio, expression: "$main.sum($added) / $main.sum($deleted)"}
  - {name: robots, expression: "$main.filter($added > 3).count()"}
`)

	assert.Empty(t, ds.Issues())
}

func TestIssuesOverridesAndDefaults(t *testing.T) {
	ds := mustParse(t, `
name: wiki
attributes:
  - {name: delta, type: STRING}
attributeOverrides:
  - {name: delta, type: NUMBER}
defaultPinnedDimensions: [page, channel]
defaultSelectedMeasures: delta
dimensions:
  - {name: channel, expression: $delta.numberBucket(10)}
measures:
  - {name: extent, expression: "$main.filter($delta > 0)"}
`)

	assert.Equal(t, []string{
		"failed to validate measure 'extent': measure must resolve to NUMBER (is DATASET)",
		"unknown pinned dimension 'page'",
		"unknown selected measure 'delta'",
	}, ds.Issues())
}

func TestIssuesMissingMainAlwaysReported(t *testing.T) {
	for _, src := range []string{"$gaga", "$count / 3", "$count.absolute()", "3"} {
		t.Run(src, func(t *testing.T) {
			ds, err := New(Config{
				Name:     "wiki",
				Measures: []MeasureConfig{{Name: "m", Expression: exprSource(src)}},
			}, DefaultSettings())
			if !assert.NoError(t, err) {
				return
			}

			assert.Equal(t, []string{"failed to validate measure 'm': measure must contain a $main reference"}, ds.Issues())
		})
	}
}
