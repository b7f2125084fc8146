package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// DirName is the workspace directory created by 'projctl init'
const DirName = ".projctl"

// ConfigFileName is the default config file inside the workspace
const ConfigFileName = "config.yaml"

// EnvWorkspacePath overrides workspace discovery
const EnvWorkspacePath = "PROJCTL_PATH"

// DiscoverWorkspace looks for .projctl/ in the current directory only.
// Returns the absolute path of the workspace directory, or an error if not
// found.
//
// Parent directories are not searched, so running inside a nested checkout
// never picks up an outer project's data.
//
// PROJCTL_PATH, when set, names the workspace directory directly.
func DiscoverWorkspace() (string, error) {
	if p := os.Getenv(EnvWorkspacePath); p != "" {
		return filepath.Abs(p)
	}

	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	return discoverWorkspaceInDir(dir)
}

// discoverWorkspaceInDir checks for .projctl/ in dir only
func discoverWorkspaceInDir(dir string) (string, error) {
	ws := filepath.Join(dir, DirName)
	if info, err := os.Stat(ws); err == nil && info.IsDir() {
		abs, err := filepath.Abs(ws)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		return abs, nil
	}

	return "", fmt.Errorf(
		"no %s/ found in %s\n"+
			"  Run 'projctl init' to create a workspace in this directory\n"+
			"  Or set %s to an existing workspace directory",
		DirName, dir, EnvWorkspacePath)
}

// InitWorkspace creates projectDir/.projctl with the given config file
// contents. Returns the workspace directory.
func InitWorkspace(projectDir string, config []byte) (string, error) {
	if info, err := os.Stat(projectDir); err != nil || !info.IsDir() {
		return "", fmt.Errorf("project directory does not exist: %s", projectDir)
	}

	ws, err := filepath.Abs(filepath.Join(projectDir, DirName))
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	configPath := filepath.Join(ws, ConfigFileName)
	if _, err := os.Stat(configPath); err == nil {
		return "", fmt.Errorf("workspace already initialized: %s", ws)
	}

	if err := os.MkdirAll(ws, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s directory: %w", DirName, err)
	}
	if err := os.WriteFile(configPath, config, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", ConfigFileName, err)
	}

	// Keep the lock file out of version control
	ignore := filepath.Join(ws, ".gitignore")
	if err := os.WriteFile(ignore, []byte(LockFileName+"\n*.tmp.*\n"), 0644); err != nil {
		return "", fmt.Errorf("failed to write .gitignore: %w", err)
	}

	return ws, nil
}
