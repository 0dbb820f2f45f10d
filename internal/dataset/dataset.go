// Package dataset reads and writes the molecule tables consumed and produced
// by the splitter: tab-separated .can files (smiles, id, label) and CSV files
// with named columns.
package dataset

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/grailbio/base/tsv"

	"github.com/turtacn/scaffold-split/pkg/errors"
)

// Record is one molecule row.
type Record struct {
	SMILES string `json:"smiles" yaml:"smiles"`
	ID     string `json:"id,omitempty" yaml:"id,omitempty"`
	Label  string `json:"label,omitempty" yaml:"label,omitempty"`
}

// Dataset is an ordered list of records.  A record's position in Records is
// its identity in index mode.
type Dataset struct {
	Name    string
	Records []Record
}

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.Records) }

// SMILES returns the molecule column in record order.
func (d *Dataset) SMILES() []string {
	out := make([]string, len(d.Records))
	for i, r := range d.Records {
		out[i] = r.SMILES
	}
	return out
}

// Subset returns the records at positions, in the given order.
func (d *Dataset) Subset(name string, positions []int) (*Dataset, error) {
	out := &Dataset{Name: name, Records: make([]Record, 0, len(positions))}
	for _, p := range positions {
		if p < 0 || p >= len(d.Records) {
			return nil, errors.InvalidParam("position out of range").
				WithDetailf("position=%d size=%d", p, len(d.Records))
		}
		out.Records = append(out.Records, d.Records[p])
	}
	return out, nil
}

// Columns names the CSV header fields to read.  Only SMILES is required; ID
// and Label are read when the header contains them.
type Columns struct {
	SMILES string
	ID     string
	Label  string
}

// DefaultColumns matches the ESOL solubility table.
func DefaultColumns() Columns {
	return Columns{
		SMILES: "smiles",
		ID:     "Compound ID",
		Label:  "measured log solubility in mols per litre",
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Readers
// ─────────────────────────────────────────────────────────────────────────────

// ReadCan reads a .can table: one molecule per line, tab-separated
// smiles, id and label, the last two optional.  Blank lines are skipped.
func ReadCan(r io.Reader) (*Dataset, error) {
	ds := &Dataset{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)

	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		fields := strings.Split(text, "\t")
		rec := Record{SMILES: strings.TrimSpace(fields[0])}
		if rec.SMILES == "" {
			return nil, errors.New(errors.ErrCodeDatasetParseFailed, "missing SMILES field").
				WithDetailf("line=%d", line)
		}
		if len(fields) > 1 {
			rec.ID = fields[1]
		}
		if len(fields) > 2 {
			rec.Label = fields[2]
		}
		ds.Records = append(ds.Records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatasetParseFailed, "failed to read .can table").
			WithDetailf("line=%d", line+1)
	}
	return ds, nil
}

// ReadCSV reads a CSV table with a header row.
func ReadCSV(r io.Reader, cols Columns) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New(errors.ErrCodeDatasetParseFailed, "empty CSV input")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatasetParseFailed, "failed to read CSV header")
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(h)] = i
	}
	smilesCol, ok := index[cols.SMILES]
	if !ok {
		return nil, errors.New(errors.ErrCodeDatasetColumnMissing, "SMILES column not found").
			WithDetailf("column=%q", cols.SMILES)
	}
	idCol, hasID := index[cols.ID]
	labelCol, hasLabel := index[cols.Label]

	ds := &Dataset{}
	for row := 2; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatasetParseFailed, "failed to read CSV row").
				WithDetailf("line=%d", row)
		}
		r := Record{SMILES: strings.TrimSpace(rec[smilesCol])}
		if r.SMILES == "" {
			return nil, errors.New(errors.ErrCodeDatasetParseFailed, "missing SMILES field").
				WithDetailf("line=%d", row)
		}
		if hasID && cols.ID != "" {
			r.ID = rec[idCol]
		}
		if hasLabel && cols.Label != "" {
			r.Label = rec[labelCol]
		}
		ds.Records = append(ds.Records, r)
	}
	return ds, nil
}

// Open reads path as CSV when its extension is .csv and as a .can table
// otherwise.  The dataset is named after the file without its extension.
func Open(path string, cols Columns) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatasetParseFailed, "failed to open dataset").
			WithDetailf("path=%s", path)
	}
	defer f.Close()

	var ds *Dataset
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".csv" {
		ds, err = ReadCSV(f, cols)
	} else {
		ds, err = ReadCan(f)
	}
	if err != nil {
		return nil, err
	}
	ds.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return ds, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Writers
// ─────────────────────────────────────────────────────────────────────────────

// WriteCan writes ds as a .can table with three tab-separated columns.
func WriteCan(w io.Writer, ds *Dataset) error {
	tw := tsv.NewWriter(w)
	for _, r := range ds.Records {
		tw.WriteString(r.SMILES)
		tw.WriteString(r.ID)
		tw.WriteString(r.Label)
		if err := tw.EndLine(); err != nil {
			return errors.Wrap(err, errors.ErrCodeDatasetWriteFailed, "failed to write .can row")
		}
	}
	if err := tw.Flush(); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatasetWriteFailed, "failed to flush .can table")
	}
	return nil
}

// WriteIndex writes one zero-based position per line.
func WriteIndex(w io.Writer, positions []int) error {
	tw := tsv.NewWriter(w)
	for _, p := range positions {
		tw.WriteString(strconv.Itoa(p))
		if err := tw.EndLine(); err != nil {
			return errors.Wrap(err, errors.ErrCodeDatasetWriteFailed, "failed to write index row")
		}
	}
	if err := tw.Flush(); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatasetWriteFailed, "failed to flush index")
	}
	return nil
}

//Personal.AI order the ending
