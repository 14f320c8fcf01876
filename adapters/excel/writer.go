package excel

import (
	"fmt"

	"drawlab/internal/errors"

	"github.com/xuri/excelize/v2"
)

// candidateSheet is the worksheet candidate exports are written to.
const candidateSheet = "Sheet1"

// WriteCandidatesXLSX writes one draw per row, one number per cell, in the
// layout DrawReader reads back.
func WriteCandidatesXLSX(path string, rows [][]int) error {
	f := excelize.NewFile()
	defer f.Close()

	for r, numbers := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return errors.Wrap(err, "failed to address cell")
		}
		values := make([]interface{}, len(numbers))
		for i, n := range numbers {
			values[i] = n
		}
		if err := f.SetSheetRow(candidateSheet, cell, &values); err != nil {
			return errors.Wrap(err, fmt.Sprintf("failed to write row %d", r+1))
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.Wrap(err, "failed to save workbook")
	}
	return nil
}
