package render

import (
	"encoding/csv"
	"fmt"
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// csvBatchSize is the number of data rows per table, and so per page.
const csvBatchSize = 20

// CSVRenderer handles CSV files. The first record is the header row; data
// rows are split into tables of csvBatchSize rows, each introduced by an h2.
type CSVRenderer struct{}

func (p *CSVRenderer) Render(r io.Reader, filename string) (*Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return newDocument(filename, "csv", "", nil), nil
	}

	headers := records[0]
	dataRows := records[1:]

	var body []*html.Node
	for i := 0; i < len(dataRows); i += csvBatchSize {
		end := min(i+csvBatchSize, len(dataRows))
		// Row numbers are 1-indexed and count the header row.
		body = append(body,
			heading(2, fmt.Sprintf("Rows %d-%d", i+2, end+1)),
			csvTable(headers, dataRows[i:end]),
		)
	}
	if len(dataRows) == 0 {
		body = append(body, csvTable(headers, nil))
	}

	return newDocument(filename, "csv", "", body), nil
}

func csvTable(headers []string, rows [][]string) *html.Node {
	table := element(atom.Table, "")
	thead := element(atom.Thead, "")
	tr := element(atom.Tr, "")
	for _, h := range headers {
		th := element(atom.Th, "")
		th.AppendChild(text(h))
		tr.AppendChild(th)
	}
	thead.AppendChild(tr)
	table.AppendChild(thead)

	tbody := element(atom.Tbody, "")
	for _, row := range rows {
		tr := element(atom.Tr, "")
		for _, cell := range row {
			td := element(atom.Td, "")
			td.AppendChild(text(cell))
			tr.AppendChild(td)
		}
		tbody.AppendChild(tr)
	}
	table.AppendChild(tbody)
	return table
}
