/*
Package civicflow runs civic-incident questions through a linear flow of named steps.

A flow is a set of registered steps connected by outcome-labelled transitions. Every
step reads from and writes to one shared Context; the engine walks from a start step,
following the edge selected by each step's outcome, until a step has no matching edge
or returns domain.OutcomeStop. The engine itself performs no I/O: steps reach out to
collaborators (text generation, a relational database, a map renderer) through the
interfaces in pkg/ports.

# Usage

	eng := civicflow.New(civicflow.WithMaxSteps(50))

	_ = eng.RegisterStep("fetch_schema", steps.FetchSchema(db))
	_ = eng.RegisterStep("generate_query", steps.GenerateQuery(llm, nil, steps.QueryOptions{}))
	_ = eng.RegisterStep("run_query", steps.RunQuery(db, steps.Strict))
	_ = eng.RegisterTransition("fetch_schema", "generate_query", "")
	_ = eng.RegisterTransition("generate_query", "run_query", "")

	c, err := eng.Execute(ctx, domain.NewContext(map[string]any{"table": "incidents"}), "fetch_schema")

The returned context always carries the visited steps under domain.ExecutionPathKey,
also when an error is returned. Errors are classified with errors.Is against the
sentinels in pkg/domain (ErrConfiguration, ErrUnknownStep, ErrStepFailed, ErrLoopLimit,
ErrTimeout) and carry details through errors.As.

Registration closes when the first execution begins; afterwards an Engine may be shared
by concurrent executions, each with its own Context.

For the ready-made question-answering pipelines see pkg/agent. The cmd/civicflow
binary exposes them as a CLI, an HTTP API and an MCP server.
*/
package civicflow
