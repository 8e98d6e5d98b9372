// Package config resolves CLI flag defaults from the environment, so a
// suite file or verbosity level can be pinned once (e.g. in CI) without
// repeating it on every invocation. Flags passed on the command line
// always take precedence over these.
package config

import "github.com/spf13/viper"

// Defaults holds the environment-sourced defaults for the run command's
// flags.
type Defaults struct {
	File    string
	Verbose bool
}

// Load reads CHOREO_FILE and CHOREO_VERBOSE from the environment.
func Load() Defaults {
	v := viper.New()
	v.SetEnvPrefix("CHOREO")
	v.AutomaticEnv()

	return Defaults{
		File:    v.GetString("FILE"),
		Verbose: v.GetBool("VERBOSE"),
	}
}
