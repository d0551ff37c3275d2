package steps

import (
	"context"
	"fmt"

	"github.com/aretw0/civicflow/pkg/domain"
	"github.com/aretw0/civicflow/pkg/ports"
)

// QueryOptions tunes GenerateQuery.
type QueryOptions struct {
	// Model overrides the generator's default model.
	Model string
	// DefaultTable is used by the keyword fallback when Table is unset.
	DefaultTable string
	// Limit is appended to generated SQL lacking a LIMIT clause. Zero means 100.
	Limit int
	// MaxSchema truncates the schema embedded in the prompt. Zero means 2000 bytes.
	MaxSchema int
	// Passthrough sends input that already looks like SQL to the database
	// untranslated, with a LIMIT added to SELECT/CTE statements lacking one.
	Passthrough bool
}

func (o QueryOptions) withDefaults() QueryOptions {
	if o.DefaultTable == "" {
		o.DefaultTable = DefaultTable
	}
	if o.Limit == 0 {
		o.Limit = 100
	}
	if o.MaxSchema == 0 {
		o.MaxSchema = 2000
	}
	return o
}

// GenerateQuery turns the Question (or a raw statement already under Query) into
// SQL stored under Query, recording how under TranslationMode:
//
//   - with Passthrough, input that already looks like SQL is used as is;
//   - without a generator, keyword rules pick a canned query;
//   - a cache hit for the same table, model and question skips the model;
//   - otherwise the model is prompted and its reply is unfenced, checked to be
//     read-only and given a LIMIT. A model failure falls back to the rules and
//     records "fallback: <cause>".
//
// Both gen and cache may be nil.
func GenerateQuery(gen ports.TextGenerator, cache ports.TranslationCache, opts QueryOptions) domain.Step {
	opts = opts.withDefaults()
	return domain.StepFunc(func(ctx context.Context, c *domain.Context) (domain.Outcome, error) {
		input := Question.Or(c, "")
		if input == "" {
			input = Query.Or(c, "")
		}
		if input == "" {
			return "", fmt.Errorf("generate query: neither %q nor %q is set", Question.Name(), Query.Name())
		}

		if opts.Passthrough && LooksLikeSQL(input) {
			if CheckReadOnly(input) == nil {
				input = EnforceLimit(input, opts.Limit)
			}
			Query.Set(c, input)
			TranslationMode.Set(c, ModePassthrough)
			return domain.OutcomeDefault, nil
		}

		table := Table.Or(c, opts.DefaultTable)
		if gen == nil {
			Query.Set(c, FallbackQuery(input, table))
			TranslationMode.Set(c, ModeRules)
			return domain.OutcomeDefault, nil
		}

		key := TranslationKey(table, opts.Model, input)
		if cache != nil {
			if sql, ok, err := cache.Get(ctx, key); err == nil && ok {
				Query.Set(c, sql)
				TranslationMode.Set(c, ModeCache)
				return domain.OutcomeDefault, nil
			}
		}

		sql, usage, err := translate(ctx, gen, opts, input, Schema.Or(c, ""))
		recordUsage(c, PhaseTranslation, usage)
		if err != nil {
			if ctx.Err() != nil {
				return "", err
			}
			Query.Set(c, FallbackQuery(input, table))
			TranslationMode.Set(c, "fallback: "+err.Error())
			return domain.OutcomeDefault, nil
		}

		Query.Set(c, sql)
		TranslationMode.Set(c, ModeLLM)
		if cache != nil {
			// A failed write only costs a future model call.
			_ = cache.Set(ctx, key, sql)
		}
		return domain.OutcomeDefault, nil
	})
}

func translate(ctx context.Context, gen ports.TextGenerator, opts QueryOptions, question, schema string) (string, domain.Usage, error) {
	if len(schema) > opts.MaxSchema {
		schema = schema[:opts.MaxSchema]
	}
	out, err := gen.Generate(ctx, ports.Prompt{
		Model:       opts.Model,
		System:      fmt.Sprintf(translateSystemPrompt, opts.Limit),
		User:        fmt.Sprintf(translateUserPrompt, schema, question),
		Temperature: 0,
	})
	if err != nil {
		return "", out.Usage, err
	}
	sql := ExtractSQL(out.Text)
	if err := CheckReadOnly(sql); err != nil {
		return "", out.Usage, err
	}
	return EnforceLimit(sql, opts.Limit), out.Usage, nil
}
