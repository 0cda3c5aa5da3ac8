// Package schema provides the value-type system used by graph ports and
// node configuration.
//
// It defines a small set of built-in types (string, int, float, bool, any)
// plus slices and custom validators. Each type knows its canonical name,
// how to validate a runtime value, and its zero value, the default a pull
// falls back to when an input resolves to nothing.
//
// Basic usage:
//
//	s := schema.Schema{
//	    "value": schema.Int(),
//	    "tags":  schema.Slice(schema.String()),
//	}
//
//	if err := schema.Validate(s, params); err != nil {
//	    // Handle validation errors
//	}
//
// Types round-trip through their names, so a persisted port descriptor can
// carry "int" or "[string]" and be rebuilt with ParseType:
//
//	t, err := schema.ParseType("[string]")
//
// The package has no dependencies beyond the standard library and can be
// used independently of the graph core.
package schema
