// Package config provides configuration parsing for depot projects.
//
// The configuration is stored in depot.json at the project root. Every
// setting has a default, and the DEPOT_* environment variables override
// the file (see ApplyEnv).
//
// # Configuration File Structure
//
//	{
//	  "name": "shop",
//	  "definitions": "stores.yaml",
//	  "persist": {
//	    "backend": "sqlite",
//	    "key": "depot",
//	    "timeout": "5s",
//	    "sqlite": {"path": "depot.db"}
//	  },
//	  "devtools": {"enabled": true, "host": "localhost", "port": 7070},
//	  "metrics": {"enabled": true, "path": "/metrics"},
//	  "tracing": {"enabled": false},
//	  "log": {"level": "info", "format": "text"}
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.ApplyEnv(); err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Inspector:", cfg.DevtoolsAddress())
package config
