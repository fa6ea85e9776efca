package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/geolocus/geolocus/api"
	"github.com/geolocus/geolocus/config"
)

// watchConfig applies CORS changes from the config file to a running
// server. Only the cors section is reloadable, everything else needs a
// restart.
func watchConfig(ctx context.Context, path string, server *api.Server, log zerolog.Logger) {
	path = filepath.Clean(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Warn().Err(err).Msg("cannot watch config file")

		return
	}

	defer watcher.Close()

	// editors and configuration management tools tend to replace the file,
	// so the directory is watched, not the file itself
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("cannot watch config file")

		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}

			if event.Name != path || event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			reloadCors(path, server, log)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}

			log.Warn().Err(err).Msg("config watcher has failed")
		}
	}
}

func reloadCors(path string, server *api.Server, log zerolog.Logger) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("cannot reread config file")

		return
	}

	server.SetCors(config.Parse(data, log).Cors)

	log.Info().Str("path", path).Msg("cors settings were reloaded")
}
