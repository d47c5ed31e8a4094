package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// ReadCSV reads a comma separated file with a header row.
func ReadCSV(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, err
	}
	defer func() { _ = f.Close() }()
	return readCSV(f)
}

func readCSV(r io.Reader) (Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err == io.EOF {
		return Table{}, fmt.Errorf("empty file")
	}
	if err != nil {
		return Table{}, err
	}
	t := Table{Header: header}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Table{}, err
		}
		row := make([]Cell, len(rec))
		for i, v := range rec {
			row[i] = TextCell(v)
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}
