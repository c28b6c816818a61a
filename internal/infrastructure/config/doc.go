// Package config handles loading and validating camportal configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with CAMPORTAL_* environment variables
//   - Validation of required fields
//   - Default value handling
//
// Security Considerations:
//   - Secrets (security.jwt.secret, security.storage_key, MQTT and InfluxDB
//     credentials) should be set via environment variables
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.DataServer.Addr())
//
// The command line client has no file; it uses LoadClient, which reads
// CAMPORTAL_URL and CAMPORTAL_TIMEOUT on top of the defaults.
package config
