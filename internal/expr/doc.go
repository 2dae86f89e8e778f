// Package expr is the expression algebra behind dimensions and measures.
//
// Expressions are written in a small chained syntax:
//
//	$page                               reference to a column
//	${page:#love$}                      reference to a column with an unsafe name
//	${a\}b}                             "\" and "}" are escaped inside braces
//	$main.sum($added)                   aggregate over the distinguished dataset $main
//	'[' ++ $user ++ ']'                 infix actions
//	$language.lookup(wiki_language)     bare identifiers are string literals
//
// The package parses and prints that syntax, produces a canonical op tree for
// structural comparison, type-checks an expression against an attribute
// catalog and walks references for renaming and type deduction.
package expr
