// Package exporter serializes an executor.Result's rows to a handful of
// interchange formats: CSV, JSON, XML, and gob. executor.Result carries no
// fixed column list, so each exporter derives a stable column set from the
// union of keys actually present across a result's rows, sorted for
// deterministic output.
package exporter

import (
	"encoding/csv"
	"encoding/gob"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/soupdb/soupdb/internal/executor"
)

func init() {
	// Register common concrete types stored in a Result row (used as interface{}).
	gob.Register(time.Time{})
}

// Options controls exporter behavior.
type Options struct {
	PrettyJSON   bool
	CSVNoHeader  bool
	CSVDelimiter rune
}

func valueToString(v any) string {
	if v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint:
		return strconv.FormatUint(uint64(t), 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case time.Time:
		return t.Format(time.RFC3339)
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}

// columns returns the union of keys across all rows, sorted, so CSV/XML get
// a stable column order even though Result rows carry no fixed schema.
func columns(rows []map[string]any) []string {
	seen := make(map[string]bool)
	var cols []string
	for _, r := range rows {
		for k := range r {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}
	sort.Strings(cols)
	return cols
}

// ExportCSV writes a Result's rows as CSV to w.
func ExportCSV(w io.Writer, result executor.Result, opts Options) error {
	cols := columns(result.Rows)
	csvw := csv.NewWriter(w)
	if opts.CSVDelimiter != 0 {
		csvw.Comma = opts.CSVDelimiter
	}
	if !opts.CSVNoHeader {
		if err := csvw.Write(cols); err != nil {
			return err
		}
	}
	for _, r := range result.Rows {
		row := make([]string, len(cols))
		for i, c := range cols {
			row[i] = valueToString(r[c])
		}
		if err := csvw.Write(row); err != nil {
			return err
		}
	}
	csvw.Flush()
	return csvw.Error()
}

// ExportJSON writes a Result's rows as a JSON array of objects.
func ExportJSON(w io.Writer, result executor.Result, opts Options) error {
	enc := json.NewEncoder(w)
	if opts.PrettyJSON {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(result.Rows)
}

type xmlField struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

type xmlRow struct {
	Fields []xmlField `xml:",any"`
}

type xmlRows struct {
	XMLName xml.Name `xml:"rows"`
	Rows    []xmlRow `xml:"row"`
}

// ExportXML writes a Result as simple XML: <rows><row><col>value</col>...</row>...</rows>
func ExportXML(w io.Writer, result executor.Result) error {
	cols := columns(result.Rows)
	xr := xmlRows{XMLName: xml.Name{Local: "rows"}, Rows: make([]xmlRow, 0, len(result.Rows))}
	for _, r := range result.Rows {
		xrRow := xmlRow{Fields: make([]xmlField, 0, len(cols))}
		for _, c := range cols {
			xrRow.Fields = append(xrRow.Fields, xmlField{XMLName: xml.Name{Local: c}, Value: valueToString(r[c])})
		}
		xr.Rows = append(xr.Rows, xrRow)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(xr); err != nil {
		return err
	}
	return enc.Flush()
}

// ExportGOB encodes a Result's rows using gob to w.
func ExportGOB(w io.Writer, result executor.Result) error {
	enc := gob.NewEncoder(w)
	return enc.Encode(result.Rows)
}

// Format names a supported export encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXML  Format = "xml"
	FormatGOB  Format = "gob"
)

// Export dispatches to the exporter matching format.
func Export(w io.Writer, format Format, result executor.Result, opts Options) error {
	switch format {
	case FormatCSV:
		return ExportCSV(w, result, opts)
	case FormatJSON:
		return ExportJSON(w, result, opts)
	case FormatXML:
		return ExportXML(w, result)
	case FormatGOB:
		return ExportGOB(w, result)
	default:
		return fmt.Errorf("exporter: unsupported format %q", format)
	}
}
