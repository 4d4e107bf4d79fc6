// Package config provides configuration parsing for webrouter deployments.
//
// The configuration is stored in webrouter.json next to the route documents.
// This package handles loading, saving, environment overrides and validation.
//
// # Configuration File Structure
//
//	{
//	  "name": "factura-web",
//	  "server": {
//	    "host": "0.0.0.0",
//	    "port": 8080,
//	    "readTimeout": "10s",
//	    "shutdownTimeout": "15s"
//	  },
//	  "routes": {
//	    "source": "configs/routes.yaml",
//	    "watch": true
//	  },
//	  "static": {
//	    "dir": "dist/assets",
//	    "prefix": "/assets"
//	  },
//	  "shell": {
//	    "appName": "Factura.com",
//	    "script": "/assets/app.js"
//	  },
//	  "metrics": { "enabled": true, "path": "/metrics" },
//	  "tracing": { "enabled": false },
//	  "log": { "level": "info", "format": "text" }
//	}
//
// # Environment Overrides
//
//	WEBROUTER_ADDR       host:port to listen on
//	WEBROUTER_ROUTES     route source (file path, s3://bucket/key or builtin)
//	WEBROUTER_LOG_LEVEL  debug, info, warn or error
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Listening on", cfg.Address())
package config
