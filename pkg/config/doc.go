// Package config provides configuration loading and validation for the
// Veles detection engine.
//
// Configuration is loaded from a YAML file, defaults are applied for any
// missing fields, and the result is validated before use. All validation
// errors are collected and reported together rather than failing on the
// first problem.
//
// Usage:
//
//	cfg, err := config.Load("veles.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	reg := datasets.NewRegistry(cfg)
package config
