package vision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type probe struct {
	Name       string  `json:"product_name"`
	Confidence float64 `json:"confidence"`
}

func TestParseModelJSON(t *testing.T) {
	t.Run("parses bare JSON", func(t *testing.T) {
		var p probe
		err := parseModelJSON(`{"product_name": "Stanley Tumbler", "confidence": 0.9}`, &p)
		require.NoError(t, err)
		assert.Equal(t, "Stanley Tumbler", p.Name)
		assert.Equal(t, 0.9, p.Confidence)
	})

	t.Run("parses JSON in a json code fence", func(t *testing.T) {
		var p probe
		err := parseModelJSON("```json\n{\"product_name\": \"Kettle\", \"confidence\": 0.5}\n```", &p)
		require.NoError(t, err)
		assert.Equal(t, "Kettle", p.Name)
	})

	t.Run("parses JSON in a bare code fence", func(t *testing.T) {
		var p probe
		err := parseModelJSON("```\n{\"product_name\": \"Kettle\", \"confidence\": 0.5}\n```", &p)
		require.NoError(t, err)
		assert.Equal(t, "Kettle", p.Name)
	})

	t.Run("parses JSON embedded in prose", func(t *testing.T) {
		var p probe
		input := `Here is the result you asked for: {"product_name": "Lamp", "confidence": 0.3} Hope this helps!`
		err := parseModelJSON(input, &p)
		require.NoError(t, err)
		assert.Equal(t, "Lamp", p.Name)
	})

	t.Run("handles braces inside string values", func(t *testing.T) {
		var p probe
		input := `text {"product_name": "Mug {limited}", "confidence": 0.8} more text`
		err := parseModelJSON(input, &p)
		require.NoError(t, err)
		assert.Equal(t, "Mug {limited}", p.Name)
	})

	t.Run("fails on empty input", func(t *testing.T) {
		var p probe
		assert.Error(t, parseModelJSON("", &p))
	})

	t.Run("fails when no JSON present", func(t *testing.T) {
		var p probe
		assert.Error(t, parseModelJSON("I could not identify the product.", &p))
	})

	t.Run("fails on unbalanced JSON", func(t *testing.T) {
		var p probe
		assert.Error(t, parseModelJSON(`{"product_name": "Mug"`, &p))
	})
}

func TestExtractBalancedObject(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain object", `{"a": 1}`, `{"a": 1}`},
		{"nested object", `x {"a": {"b": 2}} y`, `{"a": {"b": 2}}`},
		{"escaped quote in string", `{"a": "say \"hi\""}`, `{"a": "say \"hi\""}`},
		{"no object", "nothing here", ""},
		{"unterminated", `{"a": 1`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractBalancedObject(tt.input))
		})
	}
}
