package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	kingpin "gopkg.in/alecthomas/kingpin.v2"

	"github.com/geolocus/geolocus/api"
	"github.com/geolocus/geolocus/config"
	"github.com/geolocus/geolocus/lookup"
	"github.com/geolocus/geolocus/providers"
)

const shutdownTimeout = 5 * time.Second

var (
	app = kingpin.New(
		"geolocus",
		"Fast and lenient IP geolocation service")

	debug = app.Flag("debug", "Run in debug mode.").
		Short('d').
		Envar("GEOLOCUS_DEBUG").
		Bool()
	configFile = app.Flag("config", "Path to the config file.").
			Short('c').
			Envar("GEOLOCUS_CONFIG").
			PlaceHolder("PATH").
			String()
)

func init() {
	app.Version("0.1.0")
}

func main() {
	kingpin.MustParse(app.Parse(os.Args[1:]))

	conf := config.Default()
	log := newLogger(conf.LogLevel, *debug)

	if *configFile != "" {
		data, err := os.ReadFile(*configFile)
		if err != nil {
			log.Warn().
				Err(err).
				Str("path", *configFile).
				Msg("cannot read config file, starting with defaults")
		} else {
			conf = config.Parse(data, log)
			log = newLogger(conf.LogLevel, *debug)
		}
	}

	provider, err := providers.NewFromConfig(conf, log)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot initialize a geolocation backend")
	}

	resolver, err := lookup.NewResolver(provider, conf.Outputs, lookup.DefaultWorkerPoolSize, log)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot initialize a resolver")
	}

	server := api.NewServer(api.Opts{
		Resolver:      resolver,
		Config:        conf,
		Logger:        log,
		StatsUser:     os.Getenv("GEOLOCUS_STATS_USER"),
		StatsPassword: os.Getenv("GEOLOCUS_STATS_PASSWORD"),
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *configFile != "" {
		go watchConfig(ctx, *configFile, server, log)
	}

	httpServer := &http.Server{
		Addr:    net.JoinHostPort("", strconv.Itoa(conf.Port)),
		Handler: server,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		httpServer.Shutdown(shutdownCtx) // nolint: errcheck
	}()

	log.Info().
		Int("port", conf.Port).
		Stringer("backend", conf.Backend).
		Msg("start listening")

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server has failed")
	}

	resolver.Shutdown()

	if err := provider.Close(); err != nil {
		log.Warn().Err(err).Msg("cannot close the geolocation database")
	}
}
