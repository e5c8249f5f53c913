// Package config loads, normalizes, and validates cnpjscan configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, loads a local .env file, and honours
// environment fallbacks such as AUTH_RECEITAWS and the *_ORACLE connection
// variables. The Config type centralizes every knob the CLI needs so the
// planner, lookup client, warehouse source, and checkpoint store receive
// their settings from one explicit value built at startup.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
