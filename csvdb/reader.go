package csvdb

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

// RecordMaker converts a parsed CSV row into a Record.
type RecordMaker func([]string) (*Record, error)

// Reader is a wrapper over csv.Reader which converts rows into Record
// instances. Rows the maker rejects are skipped with a debug log, so one
// malformed line does not poison a whole file.
type Reader struct {
	reader     *csv.Reader
	makeRecord RecordMaker
	log        zerolog.Logger
}

// NewReader converts the given io.Reader into a Reader. Lines starting with
// '#' are treated as comments; rows may differ in field count, the maker is
// the judge of that.
func NewReader(source io.Reader, makeRecord RecordMaker, log zerolog.Logger) *Reader {
	reader := csv.NewReader(source)
	reader.ReuseRecord = true
	reader.Comment = '#'
	reader.FieldsPerRecord = -1

	return &Reader{
		reader:     reader,
		makeRecord: makeRecord,
		log:        log,
	}
}

// Read returns the next valid record. (nil, io.EOF) signals the end of the
// input.
func (r *Reader) Read() (*Record, error) {
	for {
		row, err := r.reader.Read()

		switch {
		case errors.Is(err, io.EOF):
			return nil, io.EOF
		case err != nil:
			return nil, fmt.Errorf("cannot read csv row: %w", err)
		}

		record, err := r.makeRecord(row)
		if err != nil {
			r.log.Debug().Err(err).Strs("row", row).Msg("skipping csv row")
			continue
		}

		return record, nil
	}
}
