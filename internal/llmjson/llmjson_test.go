package llmjson

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calorieking/backend/internal/types"
)

func TestStrip(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"prose around fence", "Here you go:\n```json\n{\"a\":1}\n```\nEnjoy!", `{"a":1}`},
		{"unterminated fence", "```json\n{\"a\":1}", `{"a":1}`},
		{"json fence wins over earlier bare fence", "```\nx\n```\n```json\n{\"a\":2}\n```", `{"a":2}`},
		{"whitespace", "  \n{\"a\":1}\n  ", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Strip(tt.raw))
		})
	}
}

func TestExtractFencedEqualsPlain(t *testing.T) {
	fenced, err := Extract("```json\n{\"a\":1}\n```")
	require.NoError(t, err)

	plain, err := Extract(`{"a":1}`)
	require.NoError(t, err)

	assert.Equal(t, plain, fenced)
	assert.Equal(t, Object{"a": float64(1)}, plain)
}

func TestExtractErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "not json"},
		{"empty", ""},
		{"empty fence", "```json\n```"},
		{"array", `[1,2,3]`},
		{"truncated object", `{"foods": [`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				obj, err := Extract(tt.raw)
				assert.Nil(t, obj)

				var parseErr *ParseError
				require.True(t, errors.As(err, &parseErr))
				assert.Equal(t, tt.raw, parseErr.Raw)
			})
		})
	}
}

func TestDecodeAnalysis(t *testing.T) {
	raw := "```json\n" + `{
		"foods": [
			{"name": "Grilled chicken breast", "portion": "6 oz", "calories": 280},
			{"name": "Brown rice", "portion": "1 cup", "calories": "215 kcal"}
		],
		"total_calories": 495,
		"confidence": "high"
	}` + "\n```"

	analysis, err := DecodeAnalysis(raw)
	require.NoError(t, err)

	require.Len(t, analysis.Foods, 2)
	assert.Equal(t, types.FoodItem{Name: "Grilled chicken breast", Portion: "6 oz", Calories: 280}, analysis.Foods[0])
	assert.Equal(t, types.Calories(215), analysis.Foods[1].Calories)
	assert.Equal(t, types.Calories(495), analysis.TotalCalories)
}

func TestDecodeAnalysisMissingFields(t *testing.T) {
	t.Run("total computed from foods", func(t *testing.T) {
		analysis, err := DecodeAnalysis(`{"foods":[{"name":"Apple","calories":95},{"name":"Banana","calories":105.4}]}`)
		require.NoError(t, err)
		assert.Equal(t, types.Calories(200), analysis.TotalCalories)
		assert.Empty(t, analysis.Foods[0].Portion)
	})

	t.Run("foods default to empty list", func(t *testing.T) {
		analysis, err := DecodeAnalysis(`{"total_calories": 0}`)
		require.NoError(t, err)
		assert.NotNil(t, analysis.Foods)
		assert.Empty(t, analysis.Foods)
	})

	t.Run("explicit total is kept", func(t *testing.T) {
		analysis, err := DecodeAnalysis(`{"foods":[{"name":"Apple","calories":95}],"total_calories":100}`)
		require.NoError(t, err)
		assert.Equal(t, types.Calories(100), analysis.TotalCalories)
	})
}

func TestDecodeAnalysisLooseShapes(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantFoods []types.FoodItem
		wantTotal types.Calories
	}{
		{
			name:      "unparseable calories",
			raw:       `{"foods":[{"name":"Apple","portion":"1 medium","calories":"unknown"}]}`,
			wantFoods: []types.FoodItem{{Name: "Apple", Portion: "1 medium"}},
		},
		{
			name:      "numeric portion",
			raw:       `{"foods":[{"name":"Asparagus","portion":6,"calories":20}],"total_calories":20}`,
			wantFoods: []types.FoodItem{{Name: "Asparagus", Portion: "6", Calories: 20}},
			wantTotal: 20,
		},
		{
			name:      "non-string name and null portion",
			raw:       `{"foods":[{"name":42,"portion":null,"calories":true}]}`,
			wantFoods: []types.FoodItem{{Name: "42"}},
		},
		{
			name:      "bare string food",
			raw:       `{"foods":["toast",{"name":"Butter","calories":"35"}]}`,
			wantFoods: []types.FoodItem{{Name: "toast"}, {Name: "Butter", Calories: 35}},
			wantTotal: 35,
		},
		{
			name:      "foods not a list",
			raw:       `{"foods":"none detected","total_calories":"0"}`,
			wantFoods: []types.FoodItem{},
		},
		{
			name:      "unparseable total",
			raw:       `{"foods":[{"name":"Rice","calories":200}],"total_calories":{"value":200}}`,
			wantFoods: []types.FoodItem{{Name: "Rice", Calories: 200}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis, err := DecodeAnalysis(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFoods, analysis.Foods)
			assert.Equal(t, tt.wantTotal, analysis.TotalCalories)
		})
	}
}

func TestDecodeItemEstimate(t *testing.T) {
	estimate, err := DecodeItemEstimate("```\n{\"portion\": \"1 medium\", \"calories\": 95}\n```")
	require.NoError(t, err)
	assert.Equal(t, "1 medium", estimate.Portion)
	assert.Equal(t, types.Calories(95), estimate.Calories)

	estimate, err = DecodeItemEstimate(`{"portion": 2, "calories": "unknown"}`)
	require.NoError(t, err)
	assert.Equal(t, "2", estimate.Portion)
	assert.Equal(t, types.Calories(0), estimate.Calories)

	_, err = DecodeItemEstimate("I could not identify that food.")
	var parseErr *ParseError
	assert.ErrorAs(t, err, &parseErr)
}
