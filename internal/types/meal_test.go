package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaloriesUnmarshal(t *testing.T) {
	tests := []struct {
		input string
		want  Calories
	}{
		{`280`, 280},
		{`104.6`, 105},
		{`null`, 0},
		{`"250"`, 250},
		{`"250 kcal"`, 250},
		{`"about 300 calories"`, 300},
		{`"1,200"`, 1200},
		{`"95.5"`, 96},
		{`""`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var c Calories
			require.NoError(t, json.Unmarshal([]byte(tt.input), &c))
			assert.Equal(t, tt.want, c)
		})
	}
}

func TestCaloriesUnmarshalUnusable(t *testing.T) {
	for _, input := range []string{`"unknown"`, `true`, `{}`, `[]`, `"1.2.3"`} {
		c := Calories(7)
		require.NoError(t, json.Unmarshal([]byte(input), &c), input)
		assert.Equal(t, Calories(0), c, input)
	}
}

func TestCaloriesRange(t *testing.T) {
	tests := []struct {
		input string
		want  Calories
	}{
		{`-50`, -50},
		{`"-50"`, -50},
		{`"-50 kcal"`, -50},
		{`"200-300 kcal"`, 200},
		{`1e300`, MaxCalories},
		{`-1e300`, -MaxCalories},
		{`"99999999999999999999"`, MaxCalories},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var c Calories
			require.NoError(t, json.Unmarshal([]byte(tt.input), &c))
			assert.Equal(t, tt.want, c)
		})
	}
}

func TestFoodItemDecoding(t *testing.T) {
	var foods []FoodItem
	require.NoError(t, json.Unmarshal([]byte(`[{"name":"Rice","portion":"1 cup","calories":"205"},{"name":"Egg"}]`), &foods))

	assert.Equal(t, []FoodItem{
		{Name: "Rice", Portion: "1 cup", Calories: 205},
		{Name: "Egg"},
	}, foods)
	assert.Equal(t, Calories(205), SumCalories(foods))
}

func TestFoodItemLooseFields(t *testing.T) {
	var foods []FoodItem
	require.NoError(t, json.Unmarshal([]byte(`[{"name":"Egg","portion":2,"calories":"unknown"},{"name":null,"portion":["1","slice"]},"toast"]`), &foods))

	assert.Equal(t, []FoodItem{
		{Name: "Egg", Portion: "2"},
		{Portion: `["1","slice"]`},
		{Name: "toast"},
	}, foods)
}
