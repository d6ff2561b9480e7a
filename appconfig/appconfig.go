// Package appconfig holds environment-overridable defaults for the
// solver binary. CLI flags take precedence over these; they only fill in
// values the operator didn't pass explicitly.
package appconfig

import "github.com/ilyakaznacheev/cleanenv"

// AppConfig is read once at startup from the process environment.
type AppConfig struct {
	NumThreads     int    `env:"SOLVER_THREADS" env-default:"0"`
	CheckpointDir  string `env:"SOLVER_CHECKPOINT_DIR" env-default:"./checkpoints"`
	SaveInterval   int    `env:"SOLVER_SAVE_INTERVAL" env-default:"1000"`
	DefaultStack   int    `env:"SOLVER_DEFAULT_STACK" env-default:"100"`
	DefaultAnte    int    `env:"SOLVER_DEFAULT_ANTE" env-default:"0"`
	DefaultPlayers int    `env:"SOLVER_DEFAULT_PLAYERS" env-default:"6"`
}

// LoadAppConfig reads environment variables into an AppConfig, applying
// the env-default tags for anything unset.
func LoadAppConfig() (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
