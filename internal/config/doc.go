// Package config loads the sigdemo server configuration.
//
// Values are layered, later layers winning:
//
//  1. built-in defaults (New)
//  2. an optional config file, JSON or YAML by extension
//  3. SIGDEMO_* environment variables
//  4. command-line flags, applied by the caller
//
// # Configuration File Structure
//
//	addr: ":8080"
//	logLevel: debug
//	tickInterval: 1s
//	logBuffer: 20
//	initialName: Solid
//	tracing:
//	  enabled: true
//	  endpoint: localhost:4318
//	  insecure: true
//
// # Usage
//
//	cfg, err := config.Load("sigdemo.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Listening on", cfg.Addr)
package config
