package http

import (
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/aretw0/civicflow"
)

// Spec returns the OpenAPI document of the JSON API.
func Spec() *openapi3.T {
	errorSchema := openapi3.NewObjectSchema().
		WithProperty("error", openapi3.NewStringSchema()).
		WithProperty("result", resultSchema())
	errorResponse := &openapi3.ResponseRef{Value: openapi3.NewResponse().
		WithDescription("Error, with the partial result when the flow ran").
		WithJSONSchema(errorSchema)}
	resultResponse := &openapi3.ResponseRef{Value: openapi3.NewResponse().
		WithDescription("Flow result").
		WithJSONSchema(resultSchema())}

	askBody := openapi3.NewObjectSchema().
		WithProperty("question", openapi3.NewStringSchema()).
		WithProperty("table", openapi3.NewStringSchema()).
		WithProperty("no_map", openapi3.NewBoolSchema())
	askBody.Required = []string{"question"}

	ask := openapi3.NewOperation()
	ask.OperationID = "ask"
	ask.Summary = "Answer a natural-language question about incident data"
	ask.RequestBody = &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().
		WithRequired(true).
		WithJSONSchema(askBody)}
	ask.Responses = openapi3.NewResponses(
		openapi3.WithStatus(http.StatusOK, resultResponse),
		openapi3.WithStatus(http.StatusBadRequest, errorResponse),
		openapi3.WithStatus(http.StatusUnprocessableEntity, errorResponse),
		openapi3.WithStatus(http.StatusGatewayTimeout, errorResponse),
	)

	queryBody := openapi3.NewObjectSchema().
		WithProperty("query", openapi3.NewStringSchema())
	queryBody.Required = []string{"query"}

	query := openapi3.NewOperation()
	query.OperationID = "query"
	query.Summary = "Run SQL, or translate a question to SQL and run it"
	query.RequestBody = &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().
		WithRequired(true).
		WithJSONSchema(queryBody)}
	query.Responses = openapi3.NewResponses(
		openapi3.WithStatus(http.StatusOK, resultResponse),
		openapi3.WithStatus(http.StatusBadRequest, errorResponse),
	)

	transition := openapi3.NewObjectSchema().
		WithProperty("from", openapi3.NewStringSchema()).
		WithProperty("to", openapi3.NewStringSchema()).
		WithProperty("label", openapi3.NewStringSchema())
	flowSchema := openapi3.NewObjectSchema().
		WithProperty("name", openapi3.NewStringSchema()).
		WithProperty("steps", openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema())).
		WithProperty("transitions", openapi3.NewArraySchema().WithItems(transition))

	flow := openapi3.NewOperation()
	flow.OperationID = "getFlow"
	flow.Summary = "Describe a registered flow"
	flow.Parameters = openapi3.Parameters{{Value: openapi3.NewQueryParameter("name").
		WithDescription("qa (default) or agent").
		WithSchema(openapi3.NewStringSchema().WithEnum("qa", "agent"))}}
	flow.Responses = openapi3.NewResponses(
		openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{Value: openapi3.NewResponse().
			WithDescription("Flow description").
			WithJSONSchema(flowSchema)}),
		openapi3.WithStatus(http.StatusNotFound, errorResponse),
	)

	health := openapi3.NewOperation()
	health.OperationID = "getHealth"
	health.Responses = openapi3.NewResponses(
		openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{Value: openapi3.NewResponse().
			WithDescription("Service is up").
			WithJSONSchema(openapi3.NewObjectSchema().
				WithProperty("status", openapi3.NewStringSchema()).
				WithProperty("version", openapi3.NewStringSchema()))}),
	)

	return &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       "civicflow",
			Description: "Question answering over civic incident data",
			Version:     civicflow.Version,
		},
		Paths: openapi3.NewPaths(
			openapi3.WithPath("/ask", &openapi3.PathItem{Post: ask}),
			openapi3.WithPath("/query", &openapi3.PathItem{Post: query}),
			openapi3.WithPath("/flow", &openapi3.PathItem{Get: flow}),
			openapi3.WithPath("/health", &openapi3.PathItem{Get: health}),
		),
	}
}

func resultSchema() *openapi3.Schema {
	totals := openapi3.NewObjectSchema().
		WithProperty("time", openapi3.NewInt64Schema()).
		WithProperty("tokens", openapi3.NewIntegerSchema()).
		WithProperty("cost", openapi3.NewFloat64Schema())
	return openapi3.NewObjectSchema().
		WithProperty("question", openapi3.NewStringSchema()).
		WithProperty("sql", openapi3.NewStringSchema()).
		WithProperty("translation_mode", openapi3.NewStringSchema()).
		WithProperty("rows", openapi3.NewArraySchema().WithItems(openapi3.NewObjectSchema())).
		WithProperty("query_error", openapi3.NewStringSchema()).
		WithProperty("answer", openapi3.NewStringSchema()).
		WithProperty("formatted_output", openapi3.NewStringSchema()).
		WithProperty("map_file", openapi3.NewStringSchema()).
		WithProperty("summary", totals).
		WithProperty("execution_path", openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema()))
}
