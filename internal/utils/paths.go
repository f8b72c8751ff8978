package utils

import (
	"os"
	"path/filepath"
	"strings"
)

const AppName = "Launchpad"

func GetAppDataDir() (string, error) {
	localAppData := os.Getenv("LOCALAPPDATA")
	if localAppData == "" {
		cacheDir, err := os.UserCacheDir()
		if err != nil {
			return "", err
		}
		localAppData = cacheDir
	}

	return filepath.Join(localAppData, AppName), nil
}

func getSubDir(name string) (string, error) {
	appDataDir, err := GetAppDataDir()
	if err != nil {
		return "", err
	}

	dir := filepath.Join(appDataDir, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	return dir, nil
}

func GetLogsDir() (string, error)   { return getSubDir("logs") }
func GetConfigDir() (string, error) { return getSubDir("config") }

func ResolveAbsPath(path string, baseDir string) (string, error) {
	if filepath.IsAbs(path) {
		return path, nil
	}

	if baseDir != "" {
		return filepath.Join(baseDir, path), nil
	}

	return filepath.Abs(path)
}

// Exists reports whether path can be stat'ed. Any stat error counts as absent.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// BaseName returns the last segment of p, splitting on both slash styles so
// Windows paths behave the same on every platform.
func BaseName(p string) string {
	p = strings.TrimRight(p, `/\`)
	if i := strings.LastIndexAny(p, `/\`); i >= 0 {
		return p[i+1:]
	}
	return p
}

// FileURL converts an absolute path into a file:// URL with forward slashes.
func FileURL(p string) string {
	return "file://" + strings.ReplaceAll(p, `\`, "/")
}
