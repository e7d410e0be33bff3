package refdata

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
)

// The source files carry their own header spellings ("Five-Digit ZIP Code",
// "CBSA Code", ...). Headers are lower-cased before decoding so the csv tags
// below can match them regardless of the publisher's casing.

type tractHPIRecord struct {
	Tract string `csv:"tract"`
	Year  string `csv:"year"`
	HPI   string `csv:"hpi"`
}

type zipHPIRecord struct {
	ZIP  string `csv:"five-digit zip code"`
	Year string `csv:"year"`
	HPI  string `csv:"hpi"`
}

type zipCBSARecord struct {
	ZIP  string `csv:"zip"`
	CBSA string `csv:"cbsa"`
}

type zipAttrRecord struct {
	ZIP        string `csv:"zip"`
	CountyFIPS string `csv:"county_fips"`
	Lat        string `csv:"lat"`
	Lng        string `csv:"lng"`
	Population string `csv:"population"`
}

type zipPopRecord struct {
	ZIP        string `csv:"zip"`
	Population string `csv:"population"`
}

type fipsCBSARecord struct {
	StateFIPS  string `csv:"fipsstatecode"`
	CountyFIPS string `csv:"fipscountycode"`
	CBSACode   string `csv:"cbsacode"`
}

type cbsaRecord struct {
	Code string `csv:"cbsa code"`
	Name string `csv:"cbsa name"`
}

// newDecoder wraps r in a csvutil decoder with a normalized header row.
func newDecoder(r io.Reader) (*csvutil.Decoder, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, eris.Wrap(err, "refdata: read csv header")
	}
	for i, h := range header {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}
	dec, err := csvutil.NewDecoder(cr, header...)
	if err != nil {
		return nil, eris.Wrap(err, "refdata: create csv decoder")
	}
	return dec, nil
}

// text normalizes a raw cell: trimmed, with empty cells and the null
// sentinel mapped to nil.
func text(cell, sentinel string) any {
	cell = strings.TrimSpace(cell)
	if cell == "" || cell == sentinel {
		return nil
	}
	return cell
}

// numericFloat parses a raw cell as float64. Cells that are absent or do not
// parse load as nil; they are excluded from aggregation, never coerced.
func numericFloat(cell, sentinel string) any {
	v := text(cell, sentinel)
	if v == nil {
		return nil
	}
	f, err := strconv.ParseFloat(v.(string), 64)
	if err != nil {
		return nil
	}
	return f
}

// numericInt parses a raw cell as int64 with the same absent-on-failure rule.
func numericInt(cell, sentinel string) any {
	v := text(cell, sentinel)
	if v == nil {
		return nil
	}
	n, err := strconv.ParseInt(v.(string), 10, 64)
	if err != nil {
		// Some population files carry figures as "12345.0".
		f, ferr := strconv.ParseFloat(v.(string), 64)
		if ferr != nil {
			return nil
		}
		return int64(f)
	}
	return n
}

// decodeFunc turns one delimited source into rows in schema column order.
type decodeFunc func(r io.Reader, sentinel string) ([][]any, error)

// decoders maps table name to its decode function.
var decoders = map[string]decodeFunc{
	"hpi_tract": decodeTractHPI,
	"hpi_zip":   decodeZipHPI,
	"zip_cbsa":  decodeZipCBSA,
	"zip_attr":  decodeZipAttr,
	"zip_pop":   decodeZipPop,
	"fips_cbsa": decodeFIPSCBSA,
	"cbsa":      decodeCBSA,
}

func decodeTractHPI(r io.Reader, sentinel string) ([][]any, error) {
	dec, err := newDecoder(r)
	if err != nil {
		return nil, err
	}
	var rows [][]any
	for {
		var rec tractHPIRecord
		if err := dec.Decode(&rec); err == io.EOF {
			break
		} else if err != nil {
			return nil, eris.Wrap(err, "refdata: decode hpi_tract")
		}
		tract := strings.TrimSpace(rec.Tract)
		// County FIPS is the leading 5 digits of the 11-digit tract id.
		fips := tract
		if len(fips) > 5 {
			fips = fips[:5]
		}
		rows = append(rows, []any{
			tract,
			fips,
			numericInt(rec.Year, sentinel),
			numericFloat(rec.HPI, sentinel),
		})
	}
	return rows, nil
}

func decodeZipHPI(r io.Reader, sentinel string) ([][]any, error) {
	dec, err := newDecoder(r)
	if err != nil {
		return nil, err
	}
	var rows [][]any
	for {
		var rec zipHPIRecord
		if err := dec.Decode(&rec); err == io.EOF {
			break
		} else if err != nil {
			return nil, eris.Wrap(err, "refdata: decode hpi_zip")
		}
		rows = append(rows, []any{
			strings.TrimSpace(rec.ZIP),
			numericInt(rec.Year, sentinel),
			numericFloat(rec.HPI, sentinel),
		})
	}
	return rows, nil
}

func decodeZipCBSA(r io.Reader, sentinel string) ([][]any, error) {
	dec, err := newDecoder(r)
	if err != nil {
		return nil, err
	}
	var rows [][]any
	for {
		var rec zipCBSARecord
		if err := dec.Decode(&rec); err == io.EOF {
			break
		} else if err != nil {
			return nil, eris.Wrap(err, "refdata: decode zip_cbsa")
		}
		rows = append(rows, []any{
			strings.TrimSpace(rec.ZIP),
			text(rec.CBSA, sentinel),
		})
	}
	return rows, nil
}

func decodeZipAttr(r io.Reader, sentinel string) ([][]any, error) {
	dec, err := newDecoder(r)
	if err != nil {
		return nil, err
	}
	var rows [][]any
	for {
		var rec zipAttrRecord
		if err := dec.Decode(&rec); err == io.EOF {
			break
		} else if err != nil {
			return nil, eris.Wrap(err, "refdata: decode zip_attr")
		}
		rows = append(rows, []any{
			strings.TrimSpace(rec.ZIP),
			text(rec.CountyFIPS, sentinel),
			numericFloat(rec.Lat, sentinel),
			numericFloat(rec.Lng, sentinel),
			numericInt(rec.Population, sentinel),
		})
	}
	return rows, nil
}

func decodeZipPop(r io.Reader, sentinel string) ([][]any, error) {
	dec, err := newDecoder(r)
	if err != nil {
		return nil, err
	}
	var rows [][]any
	for {
		var rec zipPopRecord
		if err := dec.Decode(&rec); err == io.EOF {
			break
		} else if err != nil {
			return nil, eris.Wrap(err, "refdata: decode zip_pop")
		}
		rows = append(rows, []any{
			strings.TrimSpace(rec.ZIP),
			numericInt(rec.Population, sentinel),
		})
	}
	return rows, nil
}

func decodeFIPSCBSA(r io.Reader, sentinel string) ([][]any, error) {
	dec, err := newDecoder(r)
	if err != nil {
		return nil, err
	}
	var rows [][]any
	for {
		var rec fipsCBSARecord
		if err := dec.Decode(&rec); err == io.EOF {
			break
		} else if err != nil {
			return nil, eris.Wrap(err, "refdata: decode fips_cbsa")
		}
		state := text(rec.StateFIPS, sentinel)
		county := text(rec.CountyFIPS, sentinel)
		// Composite 5-digit FIPS is state||county; absent when either half is.
		var fips any
		if state != nil && county != nil {
			fips = state.(string) + county.(string)
		}
		rows = append(rows, []any{
			state,
			county,
			text(rec.CBSACode, sentinel),
			fips,
		})
	}
	return rows, nil
}

func decodeCBSA(r io.Reader, sentinel string) ([][]any, error) {
	dec, err := newDecoder(r)
	if err != nil {
		return nil, err
	}
	var rows [][]any
	for {
		var rec cbsaRecord
		if err := dec.Decode(&rec); err == io.EOF {
			break
		} else if err != nil {
			return nil, eris.Wrap(err, "refdata: decode cbsa")
		}
		rows = append(rows, []any{
			text(rec.Code, sentinel),
			text(rec.Name, sentinel),
		})
	}
	return rows, nil
}
