package datasource

import (
	"fmt"
	"slices"
	"strings"

	"schema-reconciler/internal/expr"
	"schema-reconciler/internal/naming"
)

// AggregateRule maps a name token to the aggregate used for measures whose
// name contains that token.
type AggregateRule struct {
	Token     string
	Aggregate string
}

// AggregatePolicy picks the aggregate of a synthesized or defaulted measure
// from the tokens of its name. The first rule whose token appears as a whole
// token wins; otherwise Default is used.
type AggregatePolicy struct {
	Rules   []AggregateRule
	Default string
}

// DefaultAggregatePolicy uses min and max for names carrying those tokens
// and sum for everything else.
func DefaultAggregatePolicy() AggregatePolicy {
	return AggregatePolicy{
		Rules: []AggregateRule{
			{Token: "min", Aggregate: "min"},
			{Token: "max", Aggregate: "max"},
		},
		Default: "sum",
	}
}

// ParseAggregateRules parses "token:aggregate" pairs separated by commas,
// e.g. "min:min,max:max,avg:average".
func ParseAggregateRules(s string) ([]AggregateRule, error) {
	var rules []AggregateRule

	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		token, agg, ok := strings.Cut(part, ":")
		if !ok || token == "" || agg == "" {
			return nil, fmt.Errorf("bad aggregate rule %q, want token:aggregate", part)
		}

		rules = append(rules, AggregateRule{Token: strings.ToLower(token), Aggregate: agg})
	}

	return rules, nil
}

// Validate checks that every aggregate is a known single-argument dataset
// aggregate.
func (p AggregatePolicy) Validate() error {
	for _, agg := range p.Aggregates() {
		if !expr.IsAggregate(agg) || agg == "count" || agg == "quantile" {
			return fmt.Errorf("'%s' can not be used as a default aggregate", agg)
		}
	}

	return nil
}

// Pick returns the aggregate for a measure called name.
func (p AggregatePolicy) Pick(name string) string {
	tokens := naming.Tokens(name)

	for _, r := range p.Rules {
		if slices.Contains(tokens, r.Token) {
			return r.Aggregate
		}
	}

	if p.Default == "" {
		return "sum"
	}

	return p.Default
}

// Aggregates lists every aggregate the policy can produce, without duplicates.
func (p AggregatePolicy) Aggregates() []string {
	def := p.Default
	if def == "" {
		def = "sum"
	}

	out := []string{def}
	for _, r := range p.Rules {
		if !slices.Contains(out, r.Aggregate) {
			out = append(out, r.Aggregate)
		}
	}

	return out
}

// Expression returns $main.<aggregate>($name) for the attribute name.
func (p AggregatePolicy) Expression(name string) expr.Expression {
	return expr.Aggregate(p.Pick(name), expr.NewRef(name))
}

// Settings carries process wide choices that shape construction and merge.
type Settings struct {
	// DefaultCluster is used when a config names no cluster.
	DefaultCluster string
	// Aggregates picks measure aggregates from names.
	Aggregates AggregatePolicy
	// SuffixLimit bounds the name_2..name_N disambiguation pass.
	SuffixLimit int
}

// DefaultSettings returns the settings used when none are given.
func DefaultSettings() Settings {
	return Settings{
		Aggregates:  DefaultAggregatePolicy(),
		SuffixLimit: 100,
	}
}

func (s Settings) withDefaults() Settings {
	if s.Aggregates.Default == "" && len(s.Aggregates.Rules) == 0 {
		s.Aggregates = DefaultAggregatePolicy()
	}

	if s.SuffixLimit < 2 {
		s.SuffixLimit = 100
	}

	return s
}
