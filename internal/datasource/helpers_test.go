package datasource

import (
	"schema-reconciler/internal/expr"
)

func exprSource(text string) expr.Source {
	return expr.Source{Text: text}
}

func attrs(list ...Attribute) Attributes {
	return Attributes(list)
}
