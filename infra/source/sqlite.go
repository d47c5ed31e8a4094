package source

import (
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kilianp07/rideslots/core/model"
)

// ReadSQLite reads every row of table from the database at path.
func ReadSQLite(path, table string) (Table, error) {
	if _, err := os.Stat(path); err != nil {
		return Table{}, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return Table{}, err
	}
	defer func() { _ = db.Close() }()

	rows, err := db.Query(`SELECT * FROM ` + quoteIdent(table))
	if err != nil {
		return Table{}, fmt.Errorf("query %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	header, err := rows.Columns()
	if err != nil {
		return Table{}, err
	}
	t := Table{Header: header}
	for rows.Next() {
		vals := make([]any, len(header))
		ptrs := make([]any, len(header))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return Table{}, err
		}
		row := make([]Cell, len(vals))
		for i, v := range vals {
			row[i] = sqlCell(v)
		}
		t.Rows = append(t.Rows, row)
	}
	return t, rows.Err()
}

func sqlCell(v any) Cell {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		return TextCell(x)
	case []byte:
		return TextCell(string(x))
	case int64:
		return TextCell(strconv.FormatInt(x, 10))
	case float64:
		return TextCell(strconv.FormatFloat(x, 'f', -1, 64))
	case bool:
		return TextCell(strconv.FormatBool(x))
	case time.Time:
		return TextCell(model.FormatTimestamp(x))
	default:
		return TextCell(fmt.Sprint(x))
	}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
