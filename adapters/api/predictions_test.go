package api

import (
	"testing"

	apperrors "drawlab/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePredictions(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want [][]int
	}{
		{"wrapped", `{"predictions": [[1,2,3],[2,3,5]]}`, [][]int{{1, 2, 3}, {2, 3, 5}}},
		{"bare", `[[5,4,3]]`, [][]int{{5, 4, 3}}},
		{"objects", `[{"numbers":[1,2,4]},{"dezenas":[1,4,5]}]`, [][]int{{1, 2, 4}, {1, 4, 5}}},
		{"whole floats", `[[1.0, 2, 3]]`, [][]int{{1, 2, 3}}},
		{"empty", `{"predictions": []}`, [][]int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePredictions([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePredictions_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		message string
	}{
		{"invalid json", `{"predictions": [`, "not valid JSON"},
		{"no field", `{"guesses": []}`, `no "predictions" field`},
		{"scalar", `42`, "must be an array"},
		{"entry not array", `[[1,2,3], "1 2 3"]`, "prediction 1 is not an array"},
		{"fraction", `[[1,2,3.5]]`, "3.5 is not a whole number"},
		{"string number", `[["1",2,3]]`, `"1" is not a whole number`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePredictions([]byte(tt.raw))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
			assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))
		})
	}
}
