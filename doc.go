// Geolocus is a small http service which tells where an IP address
// comes from.
//
// You run it next to your application, point it to an offline
// geolocation database and ask it about addresses: your own one (GET /)
// or a batch of them (POST / with a JSON list). The answer is a JSON
// document with a country, a subdivision and whatever else the database
// knows. No external services are involved, everything is resolved from
// files on disk.
//
// # Backends
//
// Two database formats are supported: MaxMind (GeoIP2/GeoLite2 mmdb
// files) and IP2Location (bin files, optionally with a subdivision CSV
// next to them). Exactly one backend is active at a time. If both are
// configured, MaxMind wins.
//
// # Configuration
//
// Configuration is a single optional hjson file. Every field of it is
// optional too: entries which make no sense are logged and skipped,
// and the service starts with sane defaults in place of them. The only
// thing it refuses to tolerate is a missing or unreadable database,
// because a geolocation service without a database is useless.
//
// The cors section of the file is special: it is reread on change, so
// allowed origins can be adjusted without a restart.
package main
