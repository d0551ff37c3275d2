package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/civicflow/pkg/agent"
	"github.com/aretw0/civicflow/pkg/domain"
)

type scriptedAsker struct {
	asked []agent.Request
}

func (s *scriptedAsker) Ask(ctx context.Context, req agent.Request) (*agent.Result, error) {
	s.asked = append(s.asked, req)
	if strings.Contains(req.Question, "broken") {
		return nil, errors.New("relation \"broken\" does not exist")
	}
	return &agent.Result{Answer: "answer to " + req.Question, SQL: "SELECT 1", Mode: "llm"}, nil
}

func TestChat(t *testing.T) {
	asker := &scriptedAsker{}
	in := strings.NewReader("how many burglaries\n\n  broken table  \nlatest requests\nexit\nnever asked\n")
	var out bytes.Buffer

	err := Chat(context.Background(), in, &out, asker, ChatOptions{Table: "crimes311", NoMap: true})
	require.NoError(t, err)

	require.Len(t, asker.asked, 3)
	assert.Equal(t, agent.Request{Question: "how many burglaries", Table: "crimes311", NoMap: true}, asker.asked[0])
	assert.Equal(t, "broken table", asker.asked[1].Question)

	got := out.String()
	assert.Contains(t, got, "answer to how many burglaries")
	assert.Contains(t, got, ">>> Error: relation \"broken\" does not exist")
	assert.Contains(t, got, "answer to latest requests")
	assert.Contains(t, got, ">>> Bye!")
	assert.NotContains(t, got, "never asked")
}

func TestChat_EOF(t *testing.T) {
	asker := &scriptedAsker{}
	var out bytes.Buffer

	err := Chat(context.Background(), strings.NewReader("one question"), &out, asker, ChatOptions{})
	require.NoError(t, err)
	assert.Len(t, asker.asked, 1)
}

func TestChat_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	asker := &scriptedAsker{}
	var out bytes.Buffer

	require.NoError(t, Chat(ctx, strings.NewReader("q\n"), &out, asker, ChatOptions{}))
	assert.Empty(t, asker.asked)
	assert.Contains(t, out.String(), "Interrupted.")
}

func TestPrintResult(t *testing.T) {
	res := &agent.Result{
		Answer:  "| n |\n|---|\n| 7 |",
		SQL:     "SELECT COUNT(*) AS n FROM crimes311",
		Mode:    "cache",
		MapFile: "maps/map_20240101_120000.html",
		Rows:    []domain.Row{{"n": 7}},
	}
	res.Summary.Tokens = 120
	res.Summary.Cost = 0.018

	t.Run("text", func(t *testing.T) {
		var out bytes.Buffer
		upper := func(s string) (string, error) { return strings.ToUpper(s), nil }
		require.NoError(t, PrintResult(&out, res, upper, false))

		got := out.String()
		assert.Contains(t, got, "| N |")
		assert.Contains(t, got, "SQL (cache):\nSELECT COUNT(*) AS n FROM crimes311")
		assert.Contains(t, got, ">>> Map written to maps/map_20240101_120000.html")
		assert.Contains(t, got, "Tokens: 120 | Cost: $0.0180")
	})

	t.Run("raw", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, PrintResult(&out, res, nil, true))
		assert.Contains(t, out.String(), `"sql": "SELECT COUNT(*) AS n FROM crimes311"`)
		assert.Contains(t, out.String(), `"map_file": "maps/map_20240101_120000.html"`)
	})

	t.Run("formatted fallback", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, PrintResult(&out, &agent.Result{Formatted: "Query returned 0 rows"}, nil, false))
		assert.Equal(t, "Query returned 0 rows\n", out.String())
	})
}
