// Package config loads and validates the keiba configuration.
//
// # Configuration Sources
//
// Configuration is assembled in order of increasing precedence:
//
//	1. Default values (Default)
//	2. A YAML file: the --config flag, KEIBA_CONFIG, keiba.yaml or configs/keiba.yaml
//	3. Environment variables
//
// # Environment Variables
//
// Variables follow the pattern KEIBA_<SECTION>_<FIELD>:
//
//	KEIBA_LOGGING_LEVEL=debug
//	KEIBA_PIPELINE_STRICT=true
//	KEIBA_PIPELINE_MAX_CONCURRENCY=8
//	KEIBA_TELEMETRY_METRICS_FILE=/var/lib/node_exporter/keiba.prom
//
// # Validation
//
// Load validates the result with go-playground/validator struct tags:
// every bound's maximum must not be below its minimum, concurrency lies in
// 1..64 and enumerated settings take one of their listed values.
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    return err
//	}
//	v := validation.NewValidator(cfg.Rules(), logger)
package config
