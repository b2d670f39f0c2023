// File: internal/config/dotenv.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// LoadDotEnv exports the variables of a dotenv file into the process
// environment. Variables that are already set win over the file. A missing
// file is not an error. It returns the number of variables exported.
func LoadDotEnv(path string) (int, error) {
	if path == "" {
		return 0, nil
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return 0, fmt.Errorf("failed to expand env file path %q: %w", path, err)
	}
	if _, err := os.Stat(expanded); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to stat env file %s: %w", expanded, err)
	}

	v := viper.New()
	v.SetConfigFile(expanded)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return 0, fmt.Errorf("failed to read env file %s: %w", expanded, err)
	}

	exported := 0
	for key, value := range v.AllSettings() {
		name := strings.ToUpper(key)
		if _, set := os.LookupEnv(name); set {
			continue
		}
		if err := os.Setenv(name, fmt.Sprint(value)); err != nil {
			return exported, fmt.Errorf("failed to export %s: %w", name, err)
		}
		exported++
	}
	return exported, nil
}
