package config_test

import (
	"regexp"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"

	"github.com/geolocus/geolocus/config"
)

type OverlayTestSuite struct {
	suite.Suite

	defaults config.Config
}

func (suite *OverlayTestSuite) SetupTest() {
	suite.defaults = config.Default()
}

func (suite *OverlayTestSuite) overlay(doc map[string]interface{}) config.Config {
	return config.Overlay(suite.defaults, doc)
}

func (suite *OverlayTestSuite) TestEmptyDocumentKeepsDefaults() {
	suite.Equal(config.Default(), suite.overlay(map[string]interface{}{}))
}

func (suite *OverlayTestSuite) TestNilDocumentKeepsDefaults() {
	suite.Equal(config.Default(), suite.overlay(nil))
}

func (suite *OverlayTestSuite) TestDefaultsAreNotModified() {
	value := "yes"
	suite.defaults.Headers["X-Custom"] = &value

	conf := suite.overlay(map[string]interface{}{
		"getHeaders": map[string]interface{}{"x-custom": nil},
		"getPaths":   []interface{}{"/other"},
	})

	suite.Nil(conf.Headers["x-custom"])
	suite.Equal(&value, suite.defaults.Headers["X-Custom"])
	suite.Equal([]string{"/"}, suite.defaults.Paths)
}

func (suite *OverlayTestSuite) TestLogLevelInRange() {
	suite.Equal(4, suite.overlay(map[string]interface{}{"logLevel": 4.0}).LogLevel)
	suite.Equal(0, suite.overlay(map[string]interface{}{"logLevel": 0}).LogLevel)
}

func (suite *OverlayTestSuite) TestLogLevelIsFloored() {
	suite.Equal(3, suite.overlay(map[string]interface{}{"logLevel": 3.7}).LogLevel)
}

func (suite *OverlayTestSuite) TestLogLevelRangeCheckedBeforeFlooring() {
	suite.Equal(2, suite.overlay(map[string]interface{}{"logLevel": 4.2}).LogLevel)
}

func (suite *OverlayTestSuite) TestLogLevelRejectsWrongType() {
	suite.Equal(2, suite.overlay(map[string]interface{}{"logLevel": "3"}).LogLevel)
}

func (suite *OverlayTestSuite) TestPort() {
	suite.Equal(3128, suite.overlay(map[string]interface{}{"port": 3128}).Port)
	suite.Equal(8080, suite.overlay(map[string]interface{}{"port": -1.0}).Port)
	suite.Equal(8080, suite.overlay(map[string]interface{}{"port": 70000.0}).Port)
	suite.Equal(8080, suite.overlay(map[string]interface{}{"port": true}).Port)
}

func (suite *OverlayTestSuite) TestOutputsToggleLiteralBoolsOnly() {
	conf := suite.overlay(map[string]interface{}{
		"enabledOutputs": map[string]interface{}{
			"country":     false,
			"data":        true,
			"subdivision": "false",
			"snake":       true,
		},
	})

	suite.False(conf.Outputs.Country)
	suite.True(conf.Outputs.Data)
	suite.True(conf.Outputs.Subdivision)
	suite.True(conf.Outputs.IP)
	suite.True(conf.Outputs.IPVersion)
}

func (suite *OverlayTestSuite) TestWantsGeolocation() {
	outputs := config.Outputs{IP: true, IPVersion: true}
	suite.False(outputs.WantsGeolocation())

	outputs.Subdivision = true
	suite.True(outputs.WantsGeolocation())
}

func (suite *OverlayTestSuite) TestPrettyOutput() {
	suite.True(suite.overlay(map[string]interface{}{"prettyOutput": true}).PrettyOutput)
	suite.False(suite.overlay(map[string]interface{}{"prettyOutput": "true"}).PrettyOutput)
}

func (suite *OverlayTestSuite) TestHeadersDedupCaseInsensitively() {
	conf := suite.overlay(map[string]interface{}{
		"getHeaders": map[string]interface{}{
			"X-Powered-By": "a",
			"x-powered-by": "b",
		},
	})

	suite.Len(conf.Headers, 1)

	value, ok := conf.Headers["x-powered-by"]
	suite.True(ok)
	suite.Equal("b", *value)
}

func (suite *OverlayTestSuite) TestHeaderNullIsRemoveMarker() {
	conf := suite.overlay(map[string]interface{}{
		"getHeaders": map[string]interface{}{"Server": nil},
	})

	value, ok := conf.Headers["Server"]
	suite.True(ok)
	suite.Nil(value)
}

func (suite *OverlayTestSuite) TestHeaderSkipsNonStringValues() {
	conf := suite.overlay(map[string]interface{}{
		"getHeaders": map[string]interface{}{"X-Rate-Limit": 10},
	})

	suite.Empty(conf.Headers)
}

func (suite *OverlayTestSuite) TestPathsReplacedWholesale() {
	conf := suite.overlay(map[string]interface{}{
		"getPaths": []interface{}{" /json ", "", "/geo", 42},
	})

	suite.Equal([]string{"/json", "/geo"}, conf.Paths)
}

func (suite *OverlayTestSuite) TestPathsFallBackToRoot() {
	conf := suite.overlay(map[string]interface{}{
		"getPaths": []interface{}{"", "   "},
	})

	suite.Equal([]string{"/"}, conf.Paths)
}

func (suite *OverlayTestSuite) TestPathsIgnoreNonList() {
	suite.Equal([]string{"/"}, suite.overlay(map[string]interface{}{"getPaths": "/json"}).Paths)
}

func (suite *OverlayTestSuite) TestCorsOriginsTrimmedNotValidated() {
	conf := suite.overlay(map[string]interface{}{
		"cors": map[string]interface{}{
			"origins": []interface{}{" not a url ", "https://example.com/", ""},
		},
	})

	suite.Equal([]string{"not a url", "https://example.com/"}, conf.Cors.Origins)
}

func (suite *OverlayTestSuite) TestCorsPatternString() {
	conf := suite.overlay(map[string]interface{}{
		"cors": map[string]interface{}{"originRegEx": `^https://.*\.example\.com$`},
	})

	suite.Equal(`^https://.*\.example\.com$`, conf.Cors.Pattern)
	suite.Nil(conf.Cors.Regex)
}

func (suite *OverlayTestSuite) TestCorsPrecompiledRegex() {
	regex := regexp.MustCompile(`^https://example\.org$`)

	conf := suite.overlay(map[string]interface{}{
		"cors": map[string]interface{}{"originRegEx": regex},
	})

	suite.Same(regex, conf.Cors.Regex)
}

func (suite *OverlayTestSuite) TestMaxmindWinsOverIP2Location() {
	conf := suite.overlay(map[string]interface{}{
		"maxmind":     map[string]interface{}{"dbPath": "/db/GeoLite2.mmdb"},
		"ip2location": map[string]interface{}{"dbPath": "/db/IP2LOCATION.BIN"},
	})

	suite.Equal(config.BackendMaxmind, conf.Backend)
	suite.Equal("/db/GeoLite2.mmdb", conf.Maxmind.DBPath)
	suite.Empty(conf.IP2Location.DBPath)
}

func (suite *OverlayTestSuite) TestBlankMaxmindPathDoesNotWin() {
	conf := suite.overlay(map[string]interface{}{
		"maxmind":     map[string]interface{}{"dbPath": "   "},
		"ip2location": map[string]interface{}{"dbPath": "/db/IP2LOCATION.BIN"},
	})

	suite.Equal(config.BackendIP2Location, conf.Backend)
	suite.Equal("/db/IP2LOCATION.BIN", conf.IP2Location.DBPath)
}

func (suite *OverlayTestSuite) TestIP2LocationWithSubdivisionCSV() {
	conf := suite.overlay(map[string]interface{}{
		"ip2location": map[string]interface{}{
			"dbPath":             "/db/IP2LOCATION.BIN",
			"subdivisionCsvPath": "/db/IP2LOCATION-ISO3166-2.CSV",
		},
	})

	suite.Equal(config.BackendIP2Location, conf.Backend)
	suite.Equal("/db/IP2LOCATION-ISO3166-2.CSV", conf.IP2Location.SubdivisionCSVPath)
}

func (suite *OverlayTestSuite) TestSubdivisionCSVRequiresDBPath() {
	conf := suite.overlay(map[string]interface{}{
		"ip2location": map[string]interface{}{
			"subdivisionCsvPath": "/db/IP2LOCATION-ISO3166-2.CSV",
		},
	})

	suite.Equal(config.BackendNone, conf.Backend)
	suite.Empty(conf.IP2Location.SubdivisionCSVPath)
}

func (suite *OverlayTestSuite) TestNoBackendConfigured() {
	suite.Equal(config.BackendNone, suite.overlay(nil).Backend)
}

func (suite *OverlayTestSuite) TestBackendPathHomeExpansion() {
	suite.T().Setenv("HOME", "/home/geo")

	conf := suite.overlay(map[string]interface{}{
		"maxmind": map[string]interface{}{"dbPath": "~/dbs/GeoLite2.mmdb"},
	})

	suite.Equal("/home/geo/dbs/GeoLite2.mmdb", conf.Maxmind.DBPath)
}

type ParseTestSuite struct {
	suite.Suite
}

func (suite *ParseTestSuite) TestDocumentOverlaysDefaults() {
	conf := config.Parse([]byte(`{
		// human written configs may carry comments
		logLevel: 0
		port: 3128
		prettyOutput: true
	}`), zerolog.Nop())

	suite.Equal(0, conf.LogLevel)
	suite.Equal(3128, conf.Port)
	suite.True(conf.PrettyOutput)
}

func (suite *ParseTestSuite) TestGarbageYieldsDefaults() {
	suite.Equal(config.Default(), config.Parse([]byte("{{{"), zerolog.Nop()))
}

func (suite *ParseTestSuite) TestNonObjectDocumentYieldsDefaults() {
	suite.Equal(config.Default(), config.Parse([]byte(`["not", "an", "object"]`), zerolog.Nop()))
}

type ExpandHomeTestSuite struct {
	suite.Suite
}

func (suite *ExpandHomeTestSuite) TestAbsoluteUnchanged() {
	suite.Equal("/etc/geolocus.hjson", config.ExpandHome("/etc/geolocus.hjson"))
}

func (suite *ExpandHomeTestSuite) TestBareTilde() {
	suite.T().Setenv("HOME", "/home/geo")

	suite.Equal("/home/geo", config.ExpandHome("~"))
}

func (suite *ExpandHomeTestSuite) TestTildeSlash() {
	suite.T().Setenv("HOME", "/home/geo")

	suite.Equal("/home/geo/dbs/x.mmdb", config.ExpandHome("~/dbs/x.mmdb"))
}

func (suite *ExpandHomeTestSuite) TestUnknownUserUnchanged() {
	suite.Equal("~nosuchuserhere/db.bin", config.ExpandHome("~nosuchuserhere/db.bin"))
}

func (suite *ExpandHomeTestSuite) TestEmptyUnchanged() {
	suite.Equal("", config.ExpandHome(""))
}

func TestOverlay(t *testing.T) {
	suite.Run(t, &OverlayTestSuite{})
}

func TestParse(t *testing.T) {
	suite.Run(t, &ParseTestSuite{})
}

func TestExpandHome(t *testing.T) {
	suite.Run(t, &ExpandHomeTestSuite{})
}
