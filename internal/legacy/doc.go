// Package legacy translates data source configurations written in the old
// shape (an "engine" field and an "options" bag) into the current shape.
//
// Migration is a pure transform over the decoded YAML tree. It works on a
// deep copy and either translates every legacy field it recognizes or fails
// with a config error naming the field it could not interpret.
package legacy
