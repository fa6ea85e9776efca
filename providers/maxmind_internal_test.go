package providers

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type MaxmindStringValueTestSuite struct {
	suite.Suite

	provider *maxmindProvider
}

func (suite *MaxmindStringValueTestSuite) SetupTest() {
	suite.provider = &maxmindProvider{log: zerolog.Nop()}
}

func (suite *MaxmindStringValueTestSuite) TestCountry() {
	record := map[string]interface{}{
		"country": map[string]interface{}{
			"iso_code": "US",
			"names":    map[string]interface{}{"en": "United States"},
		},
	}

	value, ok := suite.provider.StringValue(record, FieldCountry)

	suite.True(ok)
	suite.Equal("US", value)
}

func (suite *MaxmindStringValueTestSuite) TestSubdivisionTakesFirst() {
	record := map[string]interface{}{
		"subdivisions": []interface{}{
			map[string]interface{}{"iso_code": "CA"},
			map[string]interface{}{"iso_code": "XX"},
		},
	}

	value, ok := suite.provider.StringValue(record, FieldSubdivision)

	suite.True(ok)
	suite.Equal("CA", value)
}

func (suite *MaxmindStringValueTestSuite) TestMissingCountry() {
	_, ok := suite.provider.StringValue(map[string]interface{}{}, FieldCountry)

	suite.False(ok)
}

func (suite *MaxmindStringValueTestSuite) TestEmptyCountryCode() {
	record := map[string]interface{}{
		"country": map[string]interface{}{"iso_code": ""},
	}

	_, ok := suite.provider.StringValue(record, FieldCountry)

	suite.False(ok)
}

func (suite *MaxmindStringValueTestSuite) TestEmptySubdivisions() {
	record := map[string]interface{}{"subdivisions": []interface{}{}}

	_, ok := suite.provider.StringValue(record, FieldSubdivision)

	suite.False(ok)
}

func (suite *MaxmindStringValueTestSuite) TestNilRecord() {
	_, ok := suite.provider.StringValue(nil, FieldCountry)

	suite.False(ok)
}

func (suite *MaxmindStringValueTestSuite) TestUnknownField() {
	record := map[string]interface{}{
		"country": map[string]interface{}{"iso_code": "US"},
	}

	_, ok := suite.provider.StringValue(record, Field("city"))

	suite.False(ok)
}

func TestMaxmindStringValue(t *testing.T) {
	suite.Run(t, &MaxmindStringValueTestSuite{})
}

func TestNewMaxmindMissingFile(t *testing.T) {
	_, err := NewMaxmind("/definitely/not/here.mmdb", zerolog.Nop())

	assert.Error(t, err)
}
