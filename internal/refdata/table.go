package refdata

// Table is a generic relational query result: column names plus row values in
// column order. Absent cells (SQL NULL, null-sentinel source cells, numeric
// cells that failed to parse at load) are nil.
type Table struct {
	Columns []string
	Rows    [][]any
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool { return t.Len() == 0 }

// col returns the index of the named column, or -1.
func (t *Table) col(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// String returns the named cell of row i as a string. ok is false when the
// column does not exist or the cell is absent.
func (t *Table) String(i int, name string) (string, bool) {
	v, ok := t.cell(i, name)
	if !ok {
		return "", false
	}
	switch s := v.(type) {
	case string:
		return s, true
	case []byte:
		return string(s), true
	}
	return "", false
}

// Float returns the named cell of row i as a float64.
func (t *Table) Float(i int, name string) (float64, bool) {
	v, ok := t.cell(i, name)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}

// Int returns the named cell of row i as an int64.
func (t *Table) Int(i int, name string) (int64, bool) {
	v, ok := t.cell(i, name)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	}
	return 0, false
}

func (t *Table) cell(i int, name string) (any, bool) {
	if t == nil || i < 0 || i >= len(t.Rows) {
		return nil, false
	}
	c := t.col(name)
	if c < 0 || c >= len(t.Rows[i]) {
		return nil, false
	}
	v := t.Rows[i][c]
	if v == nil {
		return nil, false
	}
	return v, true
}
