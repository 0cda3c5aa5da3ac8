/*
Package dsl provides a fluent Go API for programmatically constructing
Arbor graphs.

It lets developers declare nodes, parameters, connections, and boundary
exposures in code instead of YAML documents, which is useful for dynamic
graph generation, unit tests, and IDE type-checking.

Example usage:

	b := dsl.New(reg)

	b.Add("a", "const").
		Param("value", 2).
		Param("type", "int").
		To("value", "total", "values")

	b.Add("b", "const").
		Param("value", 3).
		Param("type", "int").
		To("value", "total", "values")

	b.Add("total", "sum").
		ExposeOutput("sum")

	g, err := b.Build()
	// g.GetValue(g.Port("sum", graph.Output)) == 5.0
*/
package dsl
