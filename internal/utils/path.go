package utils

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/log"
)

// PathResolver locates the afrim config file and its referenced dataset
// files relative to wherever the binary actually runs from, not just the
// current working directory.
type PathResolver struct {
	executableDir string
	homeDir       string
	configDir     string
}

// NewPathResolver determines the executable and config locations for the
// current process.
func NewPathResolver() (*PathResolver, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, err
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return nil, err
	}
	execDir := filepath.Dir(execPath)

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Warnf("Could not determine home directory: %v", err)
		homeDir = os.TempDir()
	}

	return &PathResolver{
		executableDir: execDir,
		homeDir:       homeDir,
		configDir:     platformConfigDir(homeDir),
	}, nil
}

func platformConfigDir(homeDir string) string {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "afrim")
		}
		return filepath.Join(homeDir, ".config", "afrim")
	case "darwin":
		return filepath.Join(homeDir, ".config", "afrim")
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "afrim")
		}
		return filepath.Join(homeDir, "AppData", "Roaming", "afrim")
	default:
		return filepath.Join(homeDir, ".afrim")
	}
}

// GetConfigDir returns the resolved config directory.
func (pr *PathResolver) GetConfigDir() string { return pr.configDir }

// GetExecutableDir returns the directory containing the running binary.
func (pr *PathResolver) GetExecutableDir() string { return pr.executableDir }

// DefaultConfigPath returns [configDir]/afrim.toml, ensuring configDir
// exists when possible; it falls back to the executable's own directory if
// the preferred config directory cannot be created.
func (pr *PathResolver) DefaultConfigPath() string {
	if err := os.MkdirAll(pr.configDir, 0755); err == nil {
		return filepath.Join(pr.configDir, "afrim.toml")
	}
	log.Warnf("Config directory %s not writable, falling back to executable dir", pr.configDir)
	return filepath.Join(pr.executableDir, "afrim.toml")
}

// ResolveRelativePath resolves a dataset/script path named in a config file
// relative to that config file's own directory.
func ResolveRelativePath(configPath, relativePath string) string {
	if filepath.IsAbs(relativePath) {
		return relativePath
	}
	return filepath.Join(filepath.Dir(configPath), relativePath)
}
