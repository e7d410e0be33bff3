package refdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleTable() *Table {
	return &Table{
		Columns: []string{"cbsa_name", "population", "hpi"},
		Rows: [][]any{
			{"Reno, NV", int64(475000), 112.5},
			{"Elko, NV", nil, nil},
		},
	}
}

func TestTableAccessors(t *testing.T) {
	tbl := sampleTable()

	assert.Equal(t, 2, tbl.Len())
	assert.False(t, tbl.Empty())

	name, ok := tbl.String(0, "cbsa_name")
	assert.True(t, ok)
	assert.Equal(t, "Reno, NV", name)

	pop, ok := tbl.Int(0, "population")
	assert.True(t, ok)
	assert.Equal(t, int64(475000), pop)

	hpi, ok := tbl.Float(0, "hpi")
	assert.True(t, ok)
	assert.Equal(t, 112.5, hpi)

	// Integer cells read back as floats; SQLite reports round HPI values
	// that way.
	f, ok := tbl.Float(0, "population")
	assert.True(t, ok)
	assert.Equal(t, 475000.0, f)
}

func TestTableAbsentCells(t *testing.T) {
	tbl := sampleTable()

	_, ok := tbl.Int(1, "population")
	assert.False(t, ok)
	_, ok = tbl.Float(1, "hpi")
	assert.False(t, ok)
	_, ok = tbl.String(0, "no_such_column")
	assert.False(t, ok)
	_, ok = tbl.String(5, "cbsa_name")
	assert.False(t, ok)
}

func TestTableNilReceiver(t *testing.T) {
	var tbl *Table
	assert.Equal(t, 0, tbl.Len())
	assert.True(t, tbl.Empty())
	_, ok := tbl.String(0, "cbsa_name")
	assert.False(t, ok)
}
