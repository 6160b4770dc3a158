package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var defaultEnvLoaded sync.Once

// Load populates the given configuration struct from environment variables.
// A .env file in the working directory is loaded once per process before the
// first parse; its absence is not an error.
//
// Example:
//
//	type MailConfig struct {
//		Host string `env:"VERIFY_EMAIL_HOST,required"`
//		Port int    `env:"VERIFY_EMAIL_PORT" envDefault:"587"`
//	}
//
//	var cfg MailConfig
//	if err := config.Load(&cfg); err != nil { ... }
func Load[T any](v *T) error {
	defaultEnvLoaded.Do(func() {
		// The .env file is optional; real environment variables win either way.
		_ = godotenv.Load()
	})
	if v == nil {
		return ErrNilPointer
	}

	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

// MustLoad works like Load but panics on failure. Used for configuration the
// process cannot start without, so misconfiguration is caught at boot rather
// than on the first request that needs the value.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}
