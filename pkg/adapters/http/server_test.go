package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/civicflow/pkg/agent"
	"github.com/aretw0/civicflow/pkg/domain"
)

type fakeService struct {
	askReq   agent.Request
	queryIn  string
	result   *agent.Result
	err      error
	flowName string
}

func (f *fakeService) Ask(ctx context.Context, req agent.Request) (*agent.Result, error) {
	f.askReq = req
	return f.result, f.err
}

func (f *fakeService) Query(ctx context.Context, input string) (*agent.Result, error) {
	f.queryIn = input
	return f.result, f.err
}

func (f *fakeService) Flow(name string) (domain.FlowDescription, error) {
	f.flowName = name
	if name == "missing" {
		return domain.FlowDescription{}, errors.New(`unknown flow "missing"`)
	}
	return domain.FlowDescription{
		Name:        "qa",
		Steps:       []string{"fetch_schema", "generate_query"},
		Transitions: []domain.Transition{{From: "fetch_schema", To: "generate_query"}},
	}, nil
}

func do(t *testing.T, h http.Handler, method, target, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestAsk(t *testing.T) {
	svc := &fakeService{result: &agent.Result{
		Question: "how many potholes",
		SQL:      "SELECT count(*) AS n FROM crimes311",
		Rows:     []domain.Row{{"n": 7}},
		Answer:   "There were 7 potholes.",
		Path:     []string{"fetch_schema", "generate_query", "run_query"},
	}}
	h := NewHandler(svc)

	w := do(t, h, http.MethodPost, "/ask", `{"question":"how many potholes","no_map":true}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "how many potholes", svc.askReq.Question)
	assert.True(t, svc.askReq.NoMap)

	var got agent.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "There were 7 potholes.", got.Answer)
	assert.Equal(t, []string{"fetch_schema", "generate_query", "run_query"}, got.Path)
}

func TestAsk_BadRequests(t *testing.T) {
	h := NewHandler(&fakeService{})

	tests := map[string]string{
		"empty body":     "",
		"invalid json":   "{",
		"unknown field":  `{"question":"x","sql":"y"}`,
		"blank question": `{"question":"   "}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			w := do(t, h, http.MethodPost, "/ask", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
}

func TestAsk_ErrorCarriesPartialResult(t *testing.T) {
	svc := &fakeService{
		result: &agent.Result{Path: []string{"fetch_schema", "generate_query"}},
		err: &domain.StepExecutionError{
			Step: "run_query",
			Err:  &domain.QueryError{Query: "SELECT nope", Err: errors.New("column does not exist")},
		},
	}
	h := NewHandler(svc)

	w := do(t, h, http.MethodPost, "/ask", `{"question":"q"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var got ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Contains(t, got.Error, "column does not exist")
	require.NotNil(t, got.Result)
	assert.Equal(t, []string{"fetch_schema", "generate_query"}, got.Result.Path)
}

func TestQuery(t *testing.T) {
	svc := &fakeService{result: &agent.Result{
		SQL:        "SELECT 1",
		QueryError: "syntax error",
		Formatted:  "Query failed: syntax error",
	}}
	h := NewHandler(svc)

	w := do(t, h, http.MethodPost, "/query", `{"query":"SELECT 1"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "SELECT 1", svc.queryIn)
	assert.Contains(t, w.Body.String(), `"query_error":"syntax error"`)

	w = do(t, h, http.MethodPost, "/query", `{"query":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetFlow(t *testing.T) {
	svc := &fakeService{}
	h := NewHandler(svc)

	w := do(t, h, http.MethodGet, "/flow?name=qa", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "qa", svc.flowName)

	var flow domain.FlowDescription
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &flow))
	assert.Equal(t, []string{"fetch_schema", "generate_query"}, flow.Steps)

	w = do(t, h, http.MethodGet, "/flow?name=missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPIKey(t *testing.T) {
	h := NewHandler(&fakeService{result: &agent.Result{}}, WithAPIKey("s3cret"))

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health", "").Code, "health stays open")
	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodGet, "/flow", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodGet, "/flow", "", APIKeyHeader, "wrong").Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/flow", "", APIKeyHeader, "s3cret").Code)
}

func TestMetricsMount(t *testing.T) {
	h := NewHandler(&fakeService{})
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/metrics", "").Code)

	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("civicflow_flow_runs_total 1\n"))
	})
	h = NewHandler(&fakeService{}, WithMetrics(metrics))
	w := do(t, h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "civicflow_flow_runs_total")
}

func TestOpenAPI(t *testing.T) {
	require.NoError(t, Spec().Validate(context.Background()))

	w := do(t, NewHandler(&fakeService{}), http.MethodGet, "/openapi.json", "")
	require.Equal(t, http.StatusOK, w.Code)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	paths, ok := doc["paths"].(map[string]any)
	require.True(t, ok)
	for _, p := range []string{"/ask", "/query", "/flow", "/health"} {
		assert.Contains(t, paths, p)
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusGatewayTimeout, StatusFor(&domain.TimeoutError{Err: context.DeadlineExceeded}))
	assert.Equal(t, http.StatusBadGateway, StatusFor(&domain.GenerationError{Err: errors.New("429")}))
	assert.Equal(t, http.StatusUnprocessableEntity, StatusFor(&domain.QueryError{Err: errors.New("x")}))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(&domain.LoopLimitError{Limit: 3}))
	assert.Equal(t, http.StatusBadRequest, StatusFor(fmt.Errorf("question rejected: %w", agent.ErrInputTooLarge)))
}
