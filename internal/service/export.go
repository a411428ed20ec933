package service

import (
	"github.com/xuri/excelize/v2"

	"github.com/Gabrieexl/proyecto-calidad/internal/model"
)

const (
	ExportFileName    = "clientes.xlsx"
	ExportSheet       = "Clientes"
	ExportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	// EmptyCell stands in for empty field values in exported rows.
	EmptyCell = "-"
)

// ExportRows returns the header row (ID then every schema field) followed by
// one row per record.
func ExportRows(records []model.Customer) [][]string {
	header := make([]string, 0, len(model.Schema)+1)
	header = append(header, "ID")
	for _, f := range model.Schema {
		header = append(header, f.Label)
	}

	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, header)
	for i := range records {
		row := make([]string, 0, len(header))
		row = append(row, cell(records[i].ID))
		for _, f := range model.Schema {
			row = append(row, cell(f.Get(&records[i].CustomerFields)))
		}
		rows = append(rows, row)
	}
	return rows
}

func cell(v string) string {
	if v == "" {
		return EmptyCell
	}
	return v
}

// ExportClients serializes records into an xlsx workbook with one sheet.
func ExportClients(records []model.Customer) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ExportSheet); err != nil {
		return nil, err
	}

	for i, row := range ExportRows(records) {
		addr, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(ExportSheet, addr, &values); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
