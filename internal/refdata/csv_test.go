package refdata

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeTractHPI(t *testing.T) {
	src := `tract,year,hpi
32003001700,2006,140.25
32003001700,2011,.
32003001800,2009,N/A
`
	rows, err := decodeTractHPI(strings.NewReader(src), ".")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []any{"32003001700", "32003", int64(2006), 140.25}, rows[0])
	// Sentinel cell loads as absent, not zero.
	assert.Equal(t, []any{"32003001700", "32003", int64(2011), nil}, rows[1])
	// Unparseable numeric loads as absent too.
	assert.Equal(t, []any{"32003001800", "32003", int64(2009), nil}, rows[2])
}

func TestDecodeTractHPI_FIPSDerivation(t *testing.T) {
	src := "tract,year,hpi\n3200,2006,100\n"
	rows, err := decodeTractHPI(strings.NewReader(src), ".")
	require.NoError(t, err)
	// Short ids are kept whole; there is nothing to truncate.
	assert.Equal(t, "3200", rows[0][1])
}

func TestDecodeZipHPI_PublisherHeaderCasing(t *testing.T) {
	src := "Five-Digit ZIP Code,Year,HPI\n89109,2007,155.5\n"
	rows, err := decodeZipHPI(strings.NewReader(src), ".")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []any{"89109", int64(2007), 155.5}, rows[0])
}

func TestDecodeFIPSCBSA_CompositeFIPS(t *testing.T) {
	src := `FIPSStateCode,FIPSCountyCode,CBSACode
32,003,29820
32,.,29820
`
	rows, err := decodeFIPSCBSA(strings.NewReader(src), ".")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "32003", rows[0][3])
	// Missing county half leaves the composite absent.
	assert.Nil(t, rows[1][1])
	assert.Nil(t, rows[1][3])
}

func TestDecodeZipAttr(t *testing.T) {
	src := `zip,county_fips,lat,lng,population
89109,32003,36.13,-115.17,24000
89110,32003,.,.,.
`
	rows, err := decodeZipAttr(strings.NewReader(src), ".")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, []any{"89109", "32003", 36.13, -115.17, int64(24000)}, rows[0])
	assert.Equal(t, []any{"89110", "32003", nil, nil, nil}, rows[1])
}

func TestNumericIntFloatFallback(t *testing.T) {
	// Some population files carry figures as "12345.0".
	assert.Equal(t, int64(12345), numericInt("12345.0", "."))
	assert.Equal(t, int64(7), numericInt("7", "."))
	assert.Nil(t, numericInt("seven", "."))
	assert.Nil(t, numericInt(".", "."))
	assert.Nil(t, numericInt("", "."))
}

func TestNumericFloat(t *testing.T) {
	assert.Equal(t, 1.5, numericFloat(" 1.5 ", "."))
	assert.Nil(t, numericFloat("NA", "."))
	assert.Nil(t, numericFloat(".", "."))
}

func TestTextSentinel(t *testing.T) {
	assert.Equal(t, "x", text(" x ", "."))
	assert.Nil(t, text(".", "."))
	assert.Nil(t, text("", "."))
	// A custom sentinel replaces the default, it does not extend it.
	assert.Equal(t, ".", text(".", "NULL"))
}

func TestDecodersCoverAllTables(t *testing.T) {
	for _, spec := range Tables {
		_, ok := decoders[spec.Name]
		assert.True(t, ok, "table %s has no decoder", spec.Name)
	}
	assert.Len(t, decoders, len(Tables))
}
