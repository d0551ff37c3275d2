package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandEnv(t *testing.T) {
	lookup := env(map[string]string{"HOST": "db.internal", "EMPTY": ""})

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "literal", input: "localhost:6379", want: "localhost:6379"},
		{name: "set variable", input: "${HOST}", want: "db.internal"},
		{name: "default unused", input: "${HOST:localhost}", want: "db.internal"},
		{name: "default used", input: "${PORT:5432}", want: "5432"},
		{name: "default with colon", input: "${ADDR:localhost:6379}", want: "localhost:6379"},
		{name: "embedded", input: "postgres://${HOST}:${PORT:5432}/crime", want: "postgres://db.internal:5432/crime"},
		{name: "set but empty", input: "${EMPTY:fallback}", want: ""},
		{name: "missing required", input: "${MISSING}", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandEnv(tt.input, lookup)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
