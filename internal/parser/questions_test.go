package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KKoehn92/Master-Document-Tool/internal/model"
)

type cellGrid map[[2]int]string

func (g cellGrid) Cell(row, col int) (string, error) {
	return g[[2]int{row, col}], nil
}

func (g cellGrid) set(row int, text, declared string) {
	g[[2]int{row, QuestionTextCol}] = text
	g[[2]int{row, QuestionTypeCol}] = declared
}

func TestParseQuestions_FieldKinds(t *testing.T) {
	t.Parallel()

	g := cellGrid{}
	g.set(4, "Projektname", "")
	g.set(5, "Auftraggeber", "")
	g.set(12, "Anzahl Masten", "Zahlenwert")
	g.set(16, "Leitungsnummer", "")
	g.set(18, "Freitext trotz Checkbox-Zeile", "")
	g.set(20, "Bemerkung", "ja oder nein")
	g.set(26, "Gibt es Provisorien", "")
	g.set(30, "Gründungsart", "")
	g.set(40, "Neubau?", "Ja oder Nein")
	g.set(58, "Mastbilder", "")
	g.set(80, "Sonderfundamente", "")
	g.set(81, "Mastnummern Sonderfundamente", "ja oder nein")

	questions, err := ParseQuestions(g)
	require.NoError(t, err)

	byKey := map[int]model.Question{}
	for _, q := range questions {
		byKey[q.Key] = q
	}

	assert.Equal(t, model.FieldText, byKey[4].Kind)
	assert.Equal(t, model.FieldNumber, byKey[12].Kind)
	assert.Equal(t, NumberFieldMax, byKey[12].Max)
	assert.Equal(t, model.FieldYesNo, byKey[18].Kind)
	assert.Equal(t, model.FieldText, byKey[20].Kind, "row 20 is always a text box")
	assert.Equal(t, model.FieldYesNo, byKey[26].Kind)
	assert.Equal(t, model.FieldNumber, byKey[27].Kind, "provisional count follows the prompt")
	assert.Equal(t, 26, byKey[27].DependsOn)
	assert.Equal(t, model.FieldFoundation, byKey[30].Kind)
	assert.Len(t, byKey[30].Options, 3)
	assert.Equal(t, model.FieldYesNo, byKey[40].Kind)
	assert.Equal(t, model.FieldYesNo, byKey[58].Kind)
	assert.Equal(t, model.FieldYesNo, byKey[80].Kind)
	assert.Equal(t, model.FieldText, byKey[81].Kind)

	_, ok := byKey[6]
	assert.False(t, ok, "blank question rows are skipped")
}

func TestParseQuestions_OrderFollowsRows(t *testing.T) {
	t.Parallel()

	g := cellGrid{}
	g.set(139, "Letzte Frage", "ja oder nein")
	g.set(4, "Erste Frage", "")
	g.set(140, "außerhalb", "")

	questions, err := ParseQuestions(g)
	require.NoError(t, err)
	require.Len(t, questions, 2)
	assert.Equal(t, 4, questions[0].Key)
	assert.Equal(t, 139, questions[1].Key)
}

func TestNormalizeAnswers(t *testing.T) {
	t.Parallel()

	questions := []model.Question{
		{Key: 4, Kind: model.FieldText},
		{Key: 12, Kind: model.FieldNumber},
		{Key: 58, Kind: model.FieldYesNo},
		{Key: 60, Kind: model.FieldYesNo},
		{Key: 62, Kind: model.FieldYesNo},
		{Key: 30, Kind: model.FieldFoundation, Options: FoundationOptions()},
	}

	answers, err := NormalizeAnswers(questions, map[string]any{
		"4":    "Neubau 380kV",
		"12":   float64(42),
		"58":   true,
		"60":   "ja",
		"1001": true,
		"1002": "M001-M003",
	})
	require.NoError(t, err)

	assert.Equal(t, "Neubau 380kV", answers.Get(4))
	assert.Equal(t, "42", answers.Get(12))
	assert.Equal(t, model.AnswerYes, answers.Get(58))
	assert.Equal(t, model.AnswerYes, answers.Get(60))
	assert.Equal(t, model.AnswerNo, answers.Get(62), "unchecked boxes default to Nein")
	assert.Equal(t, model.AnswerYes, answers.Get(model.KeyFoundationRamm))
	assert.Equal(t, model.AnswerNo, answers.Get(model.KeyFoundationBohr))
	assert.Equal(t, "M001-M003", answers.Get(model.KeyFoundationRammMasts))
	assert.Equal(t, "", answers.Get(99))
}

func TestNormalizeAnswers_InvalidKey(t *testing.T) {
	t.Parallel()

	_, err := NormalizeAnswers(nil, map[string]any{"A4": "x"})
	require.ErrorIs(t, err, ErrInvalidAnswer)

	_, err = NormalizeAnswers(nil, map[string]any{"4": []string{"x"}})
	require.ErrorIs(t, err, ErrInvalidAnswer)
}

func TestNormalizeAnswers_NumberRange(t *testing.T) {
	t.Parallel()

	questions := []model.Question{{Key: 12, Kind: model.FieldNumber, Max: NumberFieldMax}}

	tests := []struct {
		name    string
		value   any
		want    string
		wantErr bool
	}{
		{name: "upper bound", value: "1000000", want: "1000000"},
		{name: "zero", value: float64(0), want: "0"},
		{name: "json number", value: float64(1_000_000), want: "1000000"},
		{name: "padded", value: " 007 ", want: "7"},
		{name: "blank", value: "", want: ""},
		{name: "text", value: "abc", wantErr: true},
		{name: "negative", value: float64(-1), wantErr: true},
		{name: "above max", value: "1000001", wantErr: true},
		{name: "fraction", value: 2.5, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answers, err := NormalizeAnswers(questions, map[string]any{"12": tt.value})
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidAnswer)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, answers.Get(12))
		})
	}
}

func TestNormalizeAnswers_MastRangeLimit(t *testing.T) {
	t.Parallel()

	questions := []model.Question{{Key: 30, Kind: model.FieldFoundation, Options: FoundationOptions()}}
	_, err := NormalizeAnswers(questions, map[string]any{"1002": "M1-M999999999"})
	require.ErrorIs(t, err, ErrInvalidAnswer)
	assert.ErrorIs(t, err, ErrRangeTooLarge)

	_, err = NormalizeAnswers(questions, map[string]any{"1002": "M1-M50"})
	assert.NoError(t, err)
}
