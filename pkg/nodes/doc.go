// Package nodes ships the built-in node types: typed constants, numeric
// folds, string concatenation, and a passthrough probe. They are small
// on purpose: enough to exercise pull evaluation, dynamic ports, and
// graph copies, while doubling as reference implementations for custom
// node types.
package nodes
