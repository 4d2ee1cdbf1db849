package report

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/Traumerei-sf/tokumei-AI/internal/ai"
)

// prospectColumns is the fixed column order of the downloadable list.
var prospectColumns = []string{"会社名", "ホームページURL", "業種", "事業内容", "登記地域"}

// ProspectCSV encodes the prospect list as CSV with a UTF-8 BOM so Excel on
// Windows opens it without mojibake.
func ProspectCSV(list *ai.ProspectList) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write([]byte{0xEF, 0xBB, 0xBF})

	w := csv.NewWriter(&buf)
	if err := w.Write(prospectColumns); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, p := range list.BusinessList {
		if err := w.Write([]string{p.CompanyName, p.HomepageURL, p.Industry, p.Description, p.Region}); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// ProspectXLSX encodes the prospect list as an Excel workbook.
func ProspectXLSX(list *ai.ProspectList) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "営業先候補"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]interface{}, len(prospectColumns))
	for i, c := range prospectColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header row: %w", err)
	}

	for i, p := range list.BusinessList {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("cell name: %w", err)
		}
		row := []interface{}{p.CompanyName, p.HomepageURL, p.Industry, p.Description, p.Region}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}
