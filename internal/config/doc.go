// Package config resolves the settings of the bindstore command.
//
// Values are layered, later sources winning:
//
//  1. defaults (see New)
//  2. a .env file, when present
//  3. BINDSTORE_* environment variables
//  4. command-line flags
//
// # Environment
//
//	BINDSTORE_ADDR        inspector listen address (default "localhost:7070")
//	BINDSTORE_SEED        seed file to load at startup
//	BINDSTORE_WATCH       reload the seed file on change (bool)
//	BINDSTORE_STRICT      reject reads of unknown keys (bool)
//	BINDSTORE_LOG_LEVEL   debug, info, warn or error
//	BINDSTORE_LOG_FORMAT  text or json
//	BINDSTORE_METRICS     path of the Prometheus endpoint, empty to disable
//
// # Usage
//
//	cfg, err := config.Load(".env")
//	if err != nil {
//	    return err
//	}
//	cfg.BindFlags(cmd.Flags())
package config
