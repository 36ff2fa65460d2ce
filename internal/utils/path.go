package utils

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
)

// AppName names the per-user config directory.
const AppName = "itemserve"

// PathResolver finds the config directory and dictionary files relative to
// the user, the working directory and the executable.
type PathResolver struct {
	executableDir string
	homeDir       string
	configDir     string
}

// NewPathResolver creates a resolver for the running executable
func NewPathResolver() (*PathResolver, error) {
	execDir, err := GetExecutableDir()
	if err != nil {
		return nil, err
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Warnf("Could not determine home directory: %v", err)
		homeDir = os.TempDir()
	}

	pr := &PathResolver{
		executableDir: execDir,
		homeDir:       homeDir,
		configDir:     configDirFor(runtime.GOOS, homeDir, os.Getenv),
	}
	log.Debugf("PathResolver initialized: execDir=%s, configDir=%s", execDir, pr.configDir)
	return pr, nil
}

// configDirFor returns the appropriate config directory for the platform
func configDirFor(goos, homeDir string, getenv func(string) string) string {
	switch goos {
	case "linux", "freebsd", "openbsd":
		if configHome := getenv("XDG_CONFIG_HOME"); configHome != "" {
			return filepath.Join(configHome, AppName)
		}
		return filepath.Join(homeDir, ".config", AppName)
	case "darwin":
		return filepath.Join(homeDir, ".config", AppName)
	case "windows":
		if appData := getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, AppName)
		}
		return filepath.Join(homeDir, "AppData", "Roaming", AppName)
	default:
		return filepath.Join(homeDir, "."+AppName)
	}
}

// GetConfigPath returns a writable location for filename, trying the config
// directory first and falling back to ~/.itemserve, the temp dir and the
// executable directory.
func (pr *PathResolver) GetConfigPath(filename string) (string, error) {
	candidates := []string{
		pr.configDir,
		filepath.Join(pr.homeDir, "."+AppName),
		filepath.Join(os.TempDir(), AppName),
		pr.executableDir,
	}
	for i, dir := range candidates {
		if CheckDirStatus(dir).Writable {
			path := filepath.Join(dir, filename)
			if i > 0 {
				log.Warnf("Using fallback config location: %s", path)
			}
			return path, nil
		}
	}
	return "", os.ErrPermission
}

// ResolveDataFile locates a dictionary given on the command line or in the
// config. URLs and absolute paths are returned untouched. Relative paths are
// tried against the working directory, the executable directory and the
// config directory; the first existing file wins. When none exists the
// location is returned as given so the loader reports the error.
func (pr *PathResolver) ResolveDataFile(loc string) string {
	if loc == "" || strings.Contains(loc, "://") || filepath.IsAbs(loc) {
		return loc
	}
	for _, candidate := range pr.dataCandidates(loc) {
		if stat, err := os.Stat(candidate); err == nil && !stat.IsDir() {
			log.Debugf("Found dictionary: %s", candidate)
			return candidate
		}
		log.Debugf("Dictionary candidate not found: %s", candidate)
	}
	return loc
}

func (pr *PathResolver) dataCandidates(loc string) []string {
	var candidates []string
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, loc))
	}
	candidates = append(candidates,
		filepath.Join(pr.executableDir, loc),
		filepath.Join(filepath.Dir(pr.executableDir), loc),
		filepath.Join(pr.configDir, "data", filepath.Base(loc)),
	)
	return candidates
}

// GetRuntimeInfo returns debug information about the current runtime environment
func (pr *PathResolver) GetRuntimeInfo() map[string]string {
	cwd, _ := os.Getwd()

	info := map[string]string{
		"executable_dir": pr.executableDir,
		"current_dir":    cwd,
		"home_dir":       pr.homeDir,
		"config_dir":     pr.configDir,
		"os":             runtime.GOOS,
		"arch":           runtime.GOARCH,
	}
	for _, envVar := range []string{"HOME", "XDG_CONFIG_HOME", "APPDATA"} {
		if value := os.Getenv(envVar); value != "" {
			info["env_"+strings.ToLower(envVar)] = value
		}
	}
	return info
}
