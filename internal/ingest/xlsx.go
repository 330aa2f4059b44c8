package ingest

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	jobHeader       = []string{"id", "title", "objective", "main_activities", "required_competencies"}
	applicantHeader = []string{"candidate_id", "name", "resume_text"}
	prospectHeader  = []string{"job_id", "candidate_id", "outcome_status"}
)

// readXLSX reads the first sheet of a workbook as a table. The first row must
// be a header naming a subset of the expected columns; unknown columns are
// ignored and missing columns yield empty values. Decoded rows are delivered
// through out, a pointer to a row-struct slice.
func readXLSX(path, table string, out any, header []string) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("open %s workbook: %w", table, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return fmt.Errorf("%s workbook has no sheets", table)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return fmt.Errorf("read %s sheet: %w", table, err)
	}
	if len(rows) == 0 {
		return nil
	}

	known := make(map[string]bool, len(header))
	for _, col := range header {
		known[col] = true
	}

	// Map header cells to column names, keeping only recognized ones.
	cols := make([]string, len(rows[0]))
	matched := 0
	for i, cell := range rows[0] {
		name := strings.ToLower(strings.TrimSpace(cell))
		if known[name] {
			cols[i] = name
			matched++
		}
	}
	if matched == 0 {
		return fmt.Errorf("%s sheet header matches no expected columns %v", table, header)
	}

	records := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(map[string]string, matched)
		for i, cell := range row {
			if i < len(cols) && cols[i] != "" {
				record[cols[i]] = strings.TrimSpace(cell)
			}
		}
		records = append(records, record)
	}

	// Reuse the row structs' json tags for field mapping.
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("convert %s sheet: %w", table, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s sheet: %w", table, err)
	}
	return nil
}
