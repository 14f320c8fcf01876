package api

import (
	"fmt"
	"math"

	"drawlab/internal/errors"

	"github.com/tidwall/gjson"
)

// ParsePredictions extracts prediction draws from JSON written by an outside
// model. Accepted shapes are {"predictions": [[...], ...]}, a bare array of
// arrays, and arrays of objects carrying a numbers field. Anything else, or
// any entry that is not a whole number, is rejected as a whole: a producer
// that emits one broken entry is not trusted for the rest.
func ParsePredictions(raw []byte) ([][]int, error) {
	if !gjson.ValidBytes(raw) {
		return nil, errors.InvalidInput("predictions are not valid JSON")
	}

	list := gjson.ParseBytes(raw)
	if list.IsObject() {
		list = list.Get("predictions")
		if !list.Exists() {
			return nil, errors.InvalidInput(`predictions object has no "predictions" field`)
		}
	}
	if !list.IsArray() {
		return nil, errors.InvalidInput("predictions must be an array")
	}

	var out [][]int
	var parseErr error
	list.ForEach(func(key, item gjson.Result) bool {
		index := int(key.Int())
		if item.IsObject() {
			item = findNumbers(item)
		}
		if !item.IsArray() {
			parseErr = errors.InvalidInput(fmt.Sprintf("prediction %d is not an array of numbers", index))
			return false
		}
		numbers, err := wholeNumbers(item)
		if err != nil {
			parseErr = errors.InvalidInput(fmt.Sprintf("prediction %d: %v", index, err))
			return false
		}
		out = append(out, numbers)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	if out == nil {
		out = [][]int{}
	}
	return out, nil
}

func findNumbers(item gjson.Result) gjson.Result {
	for _, field := range DefaultNumbersFields {
		if v := item.Get(field); v.Exists() {
			return v
		}
	}
	return gjson.Result{}
}

func wholeNumbers(arr gjson.Result) ([]int, error) {
	numbers := []int{}
	var err error
	arr.ForEach(func(_, v gjson.Result) bool {
		if v.Type != gjson.Number || v.Num != math.Trunc(v.Num) || math.Abs(v.Num) > math.MaxInt32 {
			err = fmt.Errorf("%s is not a whole number", v.Raw)
			return false
		}
		numbers = append(numbers, int(v.Num))
		return true
	})
	return numbers, err
}
