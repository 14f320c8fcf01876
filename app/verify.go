package app

import (
	stderrors "errors"

	"drawlab/domain/core"
	"drawlab/domain/draw"
)

// PredictionCheck is the verdict on one externally produced draw.
type PredictionCheck struct {
	Index       int    `json:"index"`
	Numbers     []int  `json:"numbers"`
	Valid       bool   `json:"valid"`
	Reason      string `json:"reason,omitempty"`
	InHistory   bool   `json:"in_history"`
	Duplicate   bool   `json:"duplicate"`
	DuplicateOf int    `json:"duplicate_of,omitempty"`
	Novel       bool   `json:"novel"`
}

// VerificationReport aggregates the checks of a prediction batch.
type VerificationReport struct {
	Checks     []PredictionCheck `json:"checks"`
	Novel      int               `json:"novel"`
	Invalid    int               `json:"invalid"`
	Collisions int               `json:"collisions"`
	Duplicates int               `json:"duplicates"`
}

// AllNovel reports whether every prediction is a valid draw absent from the
// history and from the rest of the batch.
func (r VerificationReport) AllNovel() bool {
	return len(r.Checks) > 0 && r.Novel == len(r.Checks)
}

// VerifyPredictions holds predictions produced outside the engine to the same
// guarantees as generated candidates: valid shape under the series rules,
// absent from the series and not repeated within the batch.
func VerifyPredictions(series draw.Series, predictions [][]int) VerificationReport {
	rules := series.Rules()
	history := series.Keys()
	firstSeen := make(map[draw.Key]int, len(predictions))

	report := VerificationReport{Checks: make([]PredictionCheck, 0, len(predictions))}
	for i, numbers := range predictions {
		check := PredictionCheck{Index: i, Numbers: append([]int(nil), numbers...)}

		if err := rules.Check(i, numbers); err != nil {
			check.Reason = err.Error()
			var malformed *core.MalformedDrawError
			if stderrors.As(err, &malformed) {
				check.Reason = malformed.Reason
			}
			report.Invalid++
			report.Checks = append(report.Checks, check)
			continue
		}

		d := draw.New(numbers...)
		check.Valid = true
		check.Numbers = d.Numbers()
		key := d.Key()
		if _, ok := history[key]; ok {
			check.InHistory = true
			report.Collisions++
		}
		if first, ok := firstSeen[key]; ok {
			check.Duplicate = true
			check.DuplicateOf = first
			report.Duplicates++
		} else {
			firstSeen[key] = i
		}
		check.Novel = !check.InHistory && !check.Duplicate
		if check.Novel {
			report.Novel++
		}
		report.Checks = append(report.Checks, check)
	}
	return report
}
