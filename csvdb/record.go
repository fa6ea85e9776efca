package csvdb

import (
	"errors"
	"strings"
)

// Record presents one subdivision mapping row: a country, the subdivision
// name as the database spells it, and the ISO 3166-2 code to report.
type Record struct {
	CountryCode string
	Name        string
	Code        string
}

// NewRecord validates and normalizes one row worth of fields. The country
// code is uppercased; name and code are kept as given apart from trimming.
func NewRecord(countryCode, name, code string) (*Record, error) {
	countryCode = strings.ToUpper(strings.TrimSpace(countryCode))
	name = strings.TrimSpace(name)
	code = strings.TrimSpace(code)

	if len(countryCode) != 2 {
		return nil, errors.New("country code is not two letters")
	}

	if name == "" {
		return nil, errors.New("subdivision name is empty")
	}

	if code == "" {
		return nil, errors.New("subdivision code is empty")
	}

	return &Record{
		CountryCode: countryCode,
		Name:        name,
		Code:        code,
	}, nil
}
