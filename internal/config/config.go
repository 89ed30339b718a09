package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"pollex.nl/library"
)

type Config struct {
	Env       string              `mapstructure:"env"`
	Store     library.StoreConfig `mapstructure:"store"`
	Catalogue CatalogueConfig     `mapstructure:"catalogue"`
	Log       LogConfig           `mapstructure:"log"`
}

type CatalogueConfig struct {
	AuthorDeletePolicy string `mapstructure:"author_delete_policy"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads the config file at path, or library.yaml from the working
// directory or ./configs when path is empty. The file is optional. Every key
// can be overridden from the environment with the LIBRARY_ prefix, e.g.
// LIBRARY_STORE_PATH.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("library")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	v.SetEnvPrefix("LIBRARY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "local")
	v.SetDefault("store.path", "library.db")
	v.SetDefault("store.busy_timeout", "5s")
	v.SetDefault("store.operation_timeout", "10s")
	v.SetDefault("catalogue.author_delete_policy", "restrict")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}
