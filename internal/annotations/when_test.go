package annotations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferrule-dev/ferrule/internal/ir"
)

func TestEvalWhen(t *testing.T) {
	props := ir.FunctionProperties{
		Pure:        true,
		Termination: ir.ConfidenceProven,
		PanicFree:   ir.ConfidenceLikely,
	}

	cases := []struct {
		src  string
		want bool
	}{
		{"", true},
		{"pure", true},
		{"!pure", false},
		{"terminates", true},
		{"panic_free", false},
		{"pure && terminates", true},
		{`termination == "proven"`, true},
		{`termination == "likely"`, false},
	}
	for _, tc := range cases {
		got, err := EvalWhen(tc.src, props)
		require.NoError(t, err, tc.src)
		assert.Equal(t, tc.want, got, tc.src)
	}
}

func TestEvalWhenRejectsNonBoolean(t *testing.T) {
	_, err := EvalWhen("termination", ir.FunctionProperties{})
	require.Error(t, err)
}

func TestEvalWhenRejectsUnknownIdentifier(t *testing.T) {
	_, err := EvalWhen("fast", ir.FunctionProperties{})
	require.Error(t, err)
}
