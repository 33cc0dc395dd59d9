package conf

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/tphakala/sherpa-go/internal/errors"
)

const appDirName = "sherpa-go"

// GetDefaultConfigPaths returns the directories searched for config.yaml,
// most specific first. The first entry is where a default config is created.
func GetDefaultConfigPaths() ([]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryConfiguration).
			Context("operation", "get-home-directory").
			Build()
	}

	if runtime.GOOS == "windows" {
		exePath, err := os.Executable()
		if err != nil {
			return nil, errors.New(err).
				Category(errors.CategoryConfiguration).
				Context("operation", "get-executable-path").
				Build()
		}
		return []string{
			filepath.Join(homeDir, "AppData", "Roaming", appDirName),
			filepath.Dir(exePath),
		}, nil
	}

	return []string{
		filepath.Join(homeDir, ".config", appDirName),
		filepath.Join("/etc", appDirName),
	}, nil
}

// ResolvePath expands environment variables in path. A relative result is
// taken relative to baseDir. Empty paths stay empty.
func ResolvePath(baseDir, path string) string {
	if path == "" {
		return ""
	}
	expanded := filepath.Clean(os.ExpandEnv(path))
	if filepath.IsAbs(expanded) || baseDir == "" {
		return expanded
	}
	return filepath.Join(baseDir, expanded)
}
