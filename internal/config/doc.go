// Package config provides configuration parsing for drizzle projects.
//
// The configuration is stored in drizzle.json (or drizzle.yaml) at the
// project root. This package handles loading, saving, and validating it.
//
// # Configuration File Structure
//
//	{
//	  "name": "counter",
//	  "server": {
//	    "host": "localhost",
//	    "port": 3000,
//	    "shutdownTimeout": "10s"
//	  },
//	  "hydration": {
//	    "container": "main",
//	    "runtimeScript": "/_drizzle/runtime.js",
//	    "verify": true
//	  },
//	  "static": {
//	    "dir": "public",
//	    "prefix": "/static/"
//	  },
//	  "log": {
//	    "level": "info",
//	    "format": "json"
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "path": "/metrics"
//	  },
//	  "dev": false
//	}
//
// The YAML form uses the same keys.
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    return err
//	}
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
//	logger := cfg.NewLogger(os.Stderr)
package config
