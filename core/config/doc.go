// Package config provides type-safe environment variable loading with
// caching using Go generics. Each configuration type is loaded once and
// cached for subsequent calls.
//
// The package automatically loads .env files on first use and uses the
// caarlos0/env library for parsing environment variables into struct fields.
//
// Basic usage:
//
//	import "github.com/dmitrymomot/gamekit/core/config"
//
//	type BusConfig struct {
//		HandlerTimeout time.Duration `env:"EVENT_HANDLER_TIMEOUT" envDefault:"10s"`
//		Sequential     bool          `env:"EVENT_SEQUENTIAL" envDefault:"false"`
//	}
//
//	func main() {
//		var cfg BusConfig
//
//		// Load with error handling
//		if err := config.Load(&cfg); err != nil {
//			log.Fatal(err)
//		}
//
//		// Or panic on failure (useful for startup)
//		config.MustLoad(&cfg)
//	}
//
// Each configuration type has its own cache entry, so different config
// structs are loaded and cached independently. Loading the same type twice
// returns the cached value, which keeps configuration stable for the
// lifetime of the process even if the environment changes underneath.
package config
