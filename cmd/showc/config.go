package main

import (
	"flag"

	"github.com/lightdance/showcompiler/internal/config"
)

// configFlags are the flags shared by every subcommand that opens the store.
type configFlags struct {
	path   *string
	dbPath *string
}

func addConfigFlags(fs *flag.FlagSet) configFlags {
	return configFlags{
		path:   fs.String("config", "", "JSON server config file"),
		dbPath: fs.String("db", "", "Show database path (overrides config)"),
	}
}

// load reads the config file if one was given and applies flag overrides.
func (f configFlags) load() (*config.ServerConfig, error) {
	cfg := config.EmptyServerConfig()
	if *f.path != "" {
		var err error
		if cfg, err = config.LoadServerConfig(*f.path); err != nil {
			return nil, err
		}
	}
	if *f.dbPath != "" {
		cfg.SetDBPath(*f.dbPath)
	}
	return cfg, nil
}
