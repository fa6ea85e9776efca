package api

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"github.com/geolocus/geolocus/lookup"
)

// MaxBulkAddresses caps how many addresses one POST request may carry.
const MaxBulkAddresses = 256

type bulkRequest struct {
	IPs []string `json:"ips"`
}

type bulkResponse struct {
	Results []lookup.Response `json:"results"`
}

// handleGetLookup resolves the address the request came from. Partial
// results are still worth returning, so resolution failures end up in the
// log and the response stays 200.
func (s *Server) handleGetLookup(w http.ResponseWriter, req *http.Request) {
	ip := clientIP(req)

	response, err := s.resolver.Lookup(req.Context(), ip)
	if err != nil {
		s.log.Warn().Err(err).Str("ip", ip).Msg("cannot resolve ip address")
	}

	s.sendLookupJSON(w, req, response)
}

func (s *Server) handlePostLookup(w http.ResponseWriter, req *http.Request) {
	if !strings.Contains(req.Header.Get("Content-Type"), "application/json") {
		s.sendError(w, nil, "Incorrect content type", http.StatusUnsupportedMediaType)

		return
	}

	request := bulkRequest{}

	if err := json.NewDecoder(req.Body).Decode(&request); err != nil {
		s.sendError(w, err, "Cannot parse request JSON", http.StatusBadRequest)

		return
	}

	switch {
	case len(request.IPs) == 0:
		s.sendError(w, nil, "Please provide ip addresses to resolve", http.StatusBadRequest)

		return
	case len(request.IPs) > MaxBulkAddresses:
		s.sendError(w, nil, "Too many ip addresses in one request", http.StatusBadRequest)

		return
	}

	results := s.resolver.LookupMany(req.Context(), request.IPs)

	s.sendLookupJSON(w, req, bulkResponse{Results: results})
}

// handlePreflight answers OPTIONS on lookup routes. CORS headers appear
// only for allowed origins, the same gate the shaped responses go through.
func (s *Server) handlePreflight(w http.ResponseWriter, req *http.Request) {
	headers := s.cors.Load().Headers(req.Header.Get("Origin"))

	if headers != nil {
		for name, value := range headers {
			w.Header().Set(name, value)
		}

		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.sendJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	respEnvelope := struct {
		Result *lookup.UsageStats `json:"result"`
	}{
		Result: s.resolver.Stats(),
	}

	s.sendJSON(w, respEnvelope)
}

// clientIP trusts middleware.RealIP to have rewritten RemoteAddr when a
// proxy header was present; whatever remains is host:port or a bare host.
func clientIP(req *http.Request) string {
	if host, _, err := net.SplitHostPort(req.RemoteAddr); err == nil {
		return host
	}

	return req.RemoteAddr
}

// sendLookupJSON writes a shaped payload with the full header pipeline:
// the configured extra headers first, then the CORS gate, which owns the
// allow-origin header unconditionally.
func (s *Server) sendLookupJSON(w http.ResponseWriter, req *http.Request, data interface{}) {
	header := w.Header()
	header.Set("Content-Type", "application/json")

	for name, value := range s.conf.Headers {
		if value == nil {
			header.Del(name)
			continue
		}

		header.Set(name, *value)
	}

	for name, value := range s.cors.Load().Headers(req.Header.Get("Origin")) {
		header.Set(name, value)
	}

	s.encodeJSON(w, data)
}

func (s *Server) sendJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	s.encodeJSON(w, data)
}

func (s *Server) encodeJSON(w http.ResponseWriter, data interface{}) {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)

	if s.conf.PrettyOutput {
		encoder.SetIndent("", "  ")
	}

	encoder.Encode(data) // nolint: errcheck
}

func (s *Server) sendError(w http.ResponseWriter, err error, message string, statusCode int) {
	e := &httpError{
		message:    message,
		statusCode: statusCode,
		err:        err,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode())
	s.encodeJSON(w, e)
}
