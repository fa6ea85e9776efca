package api

import (
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/geolocus/geolocus/config"
	"github.com/geolocus/geolocus/cors"
	"github.com/geolocus/geolocus/lookup"
)

const (
	healthPath = "/health"
	statsPath  = "/stats"
)

// Opts is a set of parameters for NewServer.
type Opts struct {
	Resolver *lookup.Resolver
	Config   config.Config
	Logger   zerolog.Logger

	// StatsUser and StatsPassword protect the stats endpoint with basic
	// auth when both are non-empty.
	StatsUser     string
	StatsPassword string
}

// Server is the HTTP surface of the service. It implements http.Handler.
type Server struct {
	resolver *lookup.Resolver
	conf     config.Config
	cors     atomic.Pointer[cors.Matcher]
	log      zerolog.Logger
	router   chi.Router
}

// NewServer wires the resolver and the configuration into a router. The
// CORS matcher is held behind an atomic pointer so SetCors can swap it
// while requests are in flight.
func NewServer(opts Opts) *Server {
	s := &Server{
		resolver: opts.Resolver,
		conf:     opts.Config,
		log:      opts.Logger,
	}

	s.SetCors(opts.Config.Cors)
	s.router = s.makeRouter(opts)

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	s.router.ServeHTTP(w, req)
}

// SetCors replaces the CORS settings wholesale. Requests already past the
// old matcher finish with it.
func (s *Server) SetCors(conf config.Cors) {
	s.cors.Store(cors.New(conf, s.log))
}

func (s *Server) makeRouter(opts Opts) chi.Router {
	router := chi.NewRouter()

	router.Use(middleware.RealIP)
	router.Use(middleware.StripSlashes)
	router.Use(middleware.Recoverer)

	var stats http.Handler = http.HandlerFunc(s.handleStats)

	if opts.StatsUser != "" && opts.StatsPassword != "" {
		stats = newBasicAuth(stats, opts.StatsUser, opts.StatsPassword)
	}

	router.Get(healthPath, s.handleHealth)
	router.Method(http.MethodGet, statsPath, stats)

	registered := 0
	seen := map[string]bool{}

	for _, pattern := range s.conf.Paths {
		switch {
		case !strings.HasPrefix(pattern, "/"):
			s.log.Warn().Str("pattern", pattern).Msg("skipping route pattern without a leading slash")
			continue
		case pattern == healthPath || pattern == statsPath:
			s.log.Warn().Str("pattern", pattern).Msg("skipping route pattern which shadows a service endpoint")
			continue
		case seen[pattern]:
			continue
		}

		seen[pattern] = true

		if s.registerLookup(router, pattern) {
			registered++
		}
	}

	// the lookup route must stay reachable no matter what the
	// configuration did to the path list
	if registered == 0 {
		s.registerLookup(router, "/")
	}

	return router
}

func (s *Server) registerLookup(router chi.Router, pattern string) (ok bool) {
	// patterns come from an untrusted configuration and chi panics on ones
	// it cannot parse
	defer func() {
		if rec := recover(); rec != nil {
			s.log.Warn().
				Str("pattern", pattern).
				Interface("reason", rec).
				Msg("cannot register route pattern")

			ok = false
		}
	}()

	router.Get(pattern, s.handleGetLookup)
	router.Post(pattern, s.handlePostLookup)
	router.Options(pattern, s.handlePreflight)

	return true
}
