/*
Package dsl provides a fluent builder for declaring civicflow flows in Go.

Steps are declared with Add, given behavior with Do or Func, and wired with Go
(default outcome) or On (labelled outcome). Build registers the result on any
Registrar, such as civicflow.Engine:

	b := dsl.New()
	b.Add("fetch_schema").Do(steps.FetchSchema(db)).Go("generate_query")
	b.Add("generate_query").Do(steps.GenerateQuery(llm, cache, steps.QueryOptions{})).Go("run_query")
	b.Add("run_query").Do(steps.RunQuery(db, steps.Strict))

	eng := civicflow.New()
	if err := b.Build(eng); err != nil {
		log.Fatal(err)
	}
*/
package dsl
