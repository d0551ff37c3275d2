package steps_test

import (
	"context"
	"errors"

	"github.com/aretw0/civicflow/pkg/domain"
	"github.com/aretw0/civicflow/pkg/ports"
)

type fakeGenerator struct {
	reply   string
	err     error
	usage   domain.Usage
	prompts []ports.Prompt
}

func (f *fakeGenerator) Generate(ctx context.Context, p ports.Prompt) (ports.Generation, error) {
	f.prompts = append(f.prompts, p)
	if f.err != nil {
		return ports.Generation{}, &domain.GenerationError{Model: "test", Err: f.err}
	}
	return ports.Generation{Text: f.reply, Model: "test", Usage: f.usage}, nil
}

type fakeRunner struct {
	rows    []domain.Row
	err     error
	queries []string
}

func (f *fakeRunner) Query(ctx context.Context, sql string) ([]domain.Row, error) {
	f.queries = append(f.queries, sql)
	if f.err != nil {
		return nil, &domain.QueryError{Query: sql, Err: f.err}
	}
	return f.rows, nil
}

type fakeInspector struct {
	tables map[string]string
}

func (f *fakeInspector) Schema(ctx context.Context, table string) (string, error) {
	s, ok := f.tables[table]
	if !ok {
		return "", errors.New("no such table")
	}
	return s, nil
}

type fakeRenderer struct {
	file  string
	err   error
	calls int
}

func (f *fakeRenderer) Render(ctx context.Context, title string, rows []domain.Row) (string, error) {
	f.calls++
	return f.file, f.err
}

type mapCache map[string]string

func (m mapCache) Get(ctx context.Context, q string) (string, bool, error) {
	v, ok := m[q]
	return v, ok, nil
}

func (m mapCache) Set(ctx context.Context, q, sql string) error {
	m[q] = sql
	return nil
}
