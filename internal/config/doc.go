// Package config provides configuration types and loading for the
// users API.
//
// This package defines the configuration model, YAML loading with
// environment variable substitution, validation, and file watching for
// hot-reload support.
//
// # Configuration Loading
//
// Load configuration from a YAML file. Keys absent from the file keep
// the values returned by DefaultConfig:
//
//	cfg, err := config.LoadConfig("configs/userapi.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//
// Secrets are usually injected from the environment:
//
//	auth:
//	  secret: ${TOKEN}
//	password:
//	  pepper: ${PEPPER:-dev-pepper}
//
// # File Watching
//
// Watch for configuration changes:
//
//	watcher, err := config.NewWatcher(path, func(cfg *config.Config) {
//	    // apply runtime-tunable settings
//	}, config.WithLogger(logger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := watcher.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer watcher.Stop()
package config
