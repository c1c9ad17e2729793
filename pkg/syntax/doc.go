// Package syntax defines the surface-form representation produced by the
// Cinder reader. A surface form is either a literal, a variable, an aggregate
// (list, tuple, keyword list), or a tagged call node carrying a construct name,
// a source line, and sub-forms. The lowering engine consumes these forms and
// replaces them with the canonical core representation in pkg/core.
package syntax
