package config

import (
	"encoding/json"
	"math"
	"regexp"
	"sort"
	"strings"
)

const defaultPath = "/"

const (
	maxLogLevel = 4
	maxPort     = 65535
)

// Overlay merges an untrusted configuration document onto defaults, field by
// field. A field of the wrong type or out of range is skipped and the
// default survives; unknown fields are ignored. The given defaults value is
// not modified.
func Overlay(defaults Config, doc map[string]interface{}) Config {
	conf := defaults
	conf.Headers = copyHeaders(defaults.Headers)
	conf.Paths = append([]string(nil), defaults.Paths...)
	conf.Cors.Origins = append([]string(nil), defaults.Cors.Origins...)

	if value, ok := overlayNumber(doc["logLevel"], 0, maxLogLevel); ok {
		conf.LogLevel = value
	}

	if value, ok := overlayNumber(doc["port"], 0, maxPort); ok {
		conf.Port = value
	}

	overlayOutputs(&conf.Outputs, doc["enabledOutputs"])

	if value, ok := doc["prettyOutput"].(bool); ok {
		conf.PrettyOutput = value
	}

	overlayHeaders(conf.Headers, doc["getHeaders"])

	if paths, ok := overlayPaths(doc["getPaths"]); ok {
		conf.Paths = paths
	}

	overlayCors(&conf.Cors, doc["cors"])
	overlayBackend(&conf, doc)

	return conf
}

func copyHeaders(headers map[string]*string) map[string]*string {
	copied := make(map[string]*string, len(headers))

	for name, value := range headers {
		copied[name] = value
	}

	return copied
}

// overlayNumber accepts a numeric value within [min, max] and floors it.
// The range check runs on the raw value, so 65535.9 is rejected for a port
// while 3.7 becomes log level 3.
func overlayNumber(raw interface{}, min, max float64) (int, bool) {
	number, ok := rawNumber(raw)
	if !ok || number < min || number > max {
		return 0, false
	}

	return int(math.Floor(number)), true
}

func rawNumber(raw interface{}) (float64, bool) {
	switch value := raw.(type) {
	case float64:
		return value, true
	case int:
		return float64(value), true
	case int64:
		return float64(value), true
	case json.Number:
		number, err := value.Float64()
		return number, err == nil
	}

	return 0, false
}

// overlayOutputs flips only the toggles given as literal booleans. Unknown
// output names and non-boolean values are ignored, so a typo cannot disable
// a default.
func overlayOutputs(outputs *Outputs, raw interface{}) {
	doc, ok := raw.(map[string]interface{})
	if !ok {
		return
	}

	for name, value := range doc {
		enabled, ok := value.(bool)
		if !ok {
			continue
		}

		switch name {
		case "country":
			outputs.Country = enabled
		case "subdivision":
			outputs.Subdivision = enabled
		case "ip":
			outputs.IP = enabled
		case "ip_version":
			outputs.IPVersion = enabled
		case "data":
			outputs.Data = enabled
		}
	}
}

// overlayHeaders merges header entries one by one. Names are deduplicated
// case-insensitively with the incoming casing kept; a null value is stored
// as a removal marker. Entries are applied in sorted name order so that the
// last-write-wins rule stays deterministic.
func overlayHeaders(headers map[string]*string, raw interface{}) {
	doc, ok := raw.(map[string]interface{})
	if !ok {
		return
	}

	names := make([]string, 0, len(doc))
	for name := range doc {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		var value *string

		switch item := doc[name].(type) {
		case string:
			header := item
			value = &header
		case nil:
		default:
			continue
		}

		for existing := range headers {
			if strings.EqualFold(existing, name) {
				delete(headers, existing)
			}
		}

		headers[name] = value
	}
}

// overlayPaths replaces the route list wholesale. Entries are trimmed and
// blanks dropped; a list which ends up empty falls back to the root path so
// the service always has a reachable route.
func overlayPaths(raw interface{}) ([]string, bool) {
	items, ok := raw.([]interface{})
	if !ok {
		return nil, false
	}

	paths := make([]string, 0, len(items))

	for _, item := range items {
		path, ok := item.(string)
		if !ok {
			continue
		}

		if path = strings.TrimSpace(path); path != "" {
			paths = append(paths, path)
		}
	}

	if len(paths) == 0 {
		return []string{defaultPath}, true
	}

	return paths, true
}

// overlayCors accepts the origin allowlist verbatim (trimmed, blanks
// dropped, no URL validation here) and the origin expression either as an
// uncompiled string or as a ready regexp value.
func overlayCors(cors *Cors, raw interface{}) {
	doc, ok := raw.(map[string]interface{})
	if !ok {
		return
	}

	if items, ok := doc["origins"].([]interface{}); ok {
		origins := make([]string, 0, len(items))

		for _, item := range items {
			origin, ok := item.(string)
			if !ok {
				continue
			}

			if origin = strings.TrimSpace(origin); origin != "" {
				origins = append(origins, origin)
			}
		}

		cors.Origins = origins
	}

	switch value := doc["originRegEx"].(type) {
	case string:
		cors.Pattern = value
	case *regexp.Regexp:
		cors.Regex = value
	}
}

// overlayBackend resolves which database serves the lookups. A non-blank
// MaxMind path wins unconditionally and the IP2Location section is not even
// evaluated then.
func overlayBackend(conf *Config, doc map[string]interface{}) {
	if section, ok := doc["maxmind"].(map[string]interface{}); ok {
		if path, ok := sectionPath(section, "dbPath"); ok {
			conf.Maxmind.DBPath = path
			conf.Backend = BackendMaxmind

			return
		}
	}

	section, ok := doc["ip2location"].(map[string]interface{})
	if !ok {
		return
	}

	path, ok := sectionPath(section, "dbPath")
	if !ok {
		return
	}

	conf.IP2Location.DBPath = path
	conf.Backend = BackendIP2Location

	if path, ok := sectionPath(section, "subdivisionCsvPath"); ok {
		conf.IP2Location.SubdivisionCSVPath = path
	}
}

func sectionPath(section map[string]interface{}, key string) (string, bool) {
	path, ok := section[key].(string)
	if !ok {
		return "", false
	}

	if path = strings.TrimSpace(path); path == "" {
		return "", false
	}

	return ExpandHome(path), true
}
