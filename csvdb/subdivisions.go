package csvdb

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

const subdivisionColumns = 3

// SubdivisionTable resolves a country code and a subdivision name, as an
// IP2Location database spells it, into an ISO 3166-2 code. Lookups are
// read-only after loading, so the table needs no locking.
type SubdivisionTable struct {
	codes map[string]map[string]string
}

// LoadSubdivisions reads the sidecar CSV with country_code, subdivision
// name and code columns. A file which cannot be opened or read is a hard
// error; individually malformed rows are skipped.
func LoadSubdivisions(fs afero.Fs, path string, log zerolog.Logger) (*SubdivisionTable, error) {
	source, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open subdivision csv: %w", err)
	}
	defer source.Close()

	table := &SubdivisionTable{
		codes: map[string]map[string]string{},
	}
	reader := NewReader(source, makeSubdivisionRecord, log)

	for {
		record, err := reader.Read()

		switch {
		case errors.Is(err, io.EOF):
			log.Debug().
				Int("countries", len(table.codes)).
				Str("path", path).
				Msg("subdivision table is loaded")

			return table, nil
		case err != nil:
			return nil, fmt.Errorf("cannot read subdivision csv: %w", err)
		}

		table.add(record)
	}
}

func makeSubdivisionRecord(row []string) (*Record, error) {
	if len(row) != subdivisionColumns {
		return nil, fmt.Errorf("expected %d columns, got %d", subdivisionColumns, len(row))
	}

	if strings.EqualFold(row[0], "country_code") {
		return nil, errors.New("header row")
	}

	return NewRecord(row[0], row[1], row[2])
}

func (t *SubdivisionTable) add(record *Record) {
	names, ok := t.codes[record.CountryCode]
	if !ok {
		names = map[string]string{}
		t.codes[record.CountryCode] = names
	}

	names[strings.ToLower(record.Name)] = record.Code
}

// Lookup resolves the subdivision code for a country and a region name. The
// name is matched case-insensitively. A nil table resolves nothing.
func (t *SubdivisionTable) Lookup(countryCode, name string) (string, bool) {
	if t == nil {
		return "", false
	}

	names, ok := t.codes[strings.ToUpper(strings.TrimSpace(countryCode))]
	if !ok {
		return "", false
	}

	code, ok := names[strings.ToLower(strings.TrimSpace(name))]

	return code, ok
}
