package parser

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expand(t *testing.T, input string) []string {
	t.Helper()
	got, err := ExpandTokens(input)
	require.NoError(t, err, input)
	return got
}

func TestExpandTokens(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "empty", input: "", want: []string{}},
		{name: "whitespace", input: "   ", want: []string{}},
		{name: "simple range", input: "M001-M003", want: []string{"M001", "M002", "M003"}},
		{name: "dedup keeps first", input: "M01;M03-M05;M01", want: []string{"M01", "M03", "M04", "M05"}},
		{name: "mixed separators", input: "M1, M2;M3 M4", want: []string{"M1", "M2", "M3", "M4"}},
		{name: "reversed range", input: "M5-M3", want: []string{"M3", "M4", "M5"}},
		{name: "second part inherits prefix", input: "M008-10", want: []string{"M008", "M009", "M010"}},
		{name: "suffix preserved", input: "12a-14a", want: []string{"12a", "13a", "14a"}},
		{name: "wider width wins", input: "M9-M011", want: []string{"M009", "M010", "M011"}},
		{name: "plain numbers", input: "1-3", want: []string{"1", "2", "3"}},
		{name: "single point range", input: "M7-M7", want: []string{"M7"}},
		{name: "literal passthrough", input: "Portal Nord", want: []string{"Portal", "Nord"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, expand(t, tt.input))
		})
	}
}

// 前后缀不一致时保留原文：沿用原有行为，是否为有意设计尚未确认。
func TestExpandTokens_MismatchedAffixKeptLiteral(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"M001-X9"}, expand(t, "M001-X9"))
	assert.Equal(t, []string{"M1a-M3b"}, expand(t, "M1a-M3b"))
	assert.Equal(t, []string{"1-M3"}, expand(t, "1-M3"))
}

func TestExpandTokens_MalformedKeptLiteral(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"M1-", "-M1", "M1--M3", "M1-M2-M3", "A-B", "M1-M2x3"} {
		assert.Equal(t, []string{in}, expand(t, in), "input %q", in)
	}
}

func TestExpandTokens_IdempotentOnExpandedList(t *testing.T) {
	t.Parallel()

	first := expand(t, "M01;M03-M05;Portal")
	joined := ""
	for i, tok := range first {
		if i > 0 {
			joined += ","
		}
		joined += tok
	}
	assert.Equal(t, first, expand(t, joined))
}

func TestExpandTokens_RangeProperties(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct{ a, b string }{
		{"M001", "M020"}, {"M20", "M001"}, {"T0", "T9"}, {"K0099", "K101"},
	} {
		from, ok := ParseMastToken(tc.a)
		require.True(t, ok)
		to, ok := ParseMastToken(tc.b)
		require.True(t, ok)

		got := expand(t, tc.a + "-" + tc.b)

		span := to.Number - from.Number
		if span < 0 {
			span = -span
		}
		require.Len(t, got, span+1)

		width := max(len(from.Digits), len(to.Digits))
		lo := min(from.Number, to.Number)
		for i, tok := range got {
			parsed, ok := ParseMastToken(tok)
			require.True(t, ok, tok)
			assert.Equal(t, width, len(parsed.Digits), tok)
			assert.Equal(t, lo+i, parsed.Number, tok)
			assert.Equal(t, fmt.Sprintf("%s%0*d%s", from.Prefix, width, lo+i, from.Suffix), tok)
		}
	}
}

func TestExpandTokens_RangeLimit(t *testing.T) {
	t.Parallel()

	got := expand(t, "M1-M10000")
	assert.Len(t, got, MaxRangeSize)
	assert.Equal(t, "M10000", got[len(got)-1])

	for _, in := range []string{"M1-M10001", "M0-M999999999", "M1;5-999999999"} {
		_, err := ExpandTokens(in)
		assert.ErrorIs(t, err, ErrRangeTooLarge, "input %q", in)
	}
}
