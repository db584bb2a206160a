package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ecl/interpreter-go/pkg/driver"
)

func loadManifestFrom(start string) (*driver.Manifest, error) {
	if start == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve working directory: %w", err)
		}
		start = cwd
	}
	absStart, err := filepath.Abs(start)
	if err != nil {
		return nil, fmt.Errorf("resolve manifest search path %q: %w", start, err)
	}
	manifestPath, err := findManifest(absStart)
	if err != nil {
		return nil, err
	}
	return driver.LoadManifest(manifestPath)
}

// findManifest walks up from start to the nearest ecl.yml.
func findManifest(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve start directory %q: %w", start, err)
	}
	if info, statErr := os.Stat(dir); statErr == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	origin := dir
	for {
		candidate := filepath.Join(dir, driver.ManifestFileName)
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s found from %s upwards: %w", driver.ManifestFileName, origin, errManifestNotFound)
		}
		dir = parent
	}
}

// resolveEclHome returns the dependency cache root: $ECL_HOME or ~/.ecl.
func resolveEclHome() (string, error) {
	if home := strings.TrimSpace(os.Getenv("ECL_HOME")); home != "" {
		abs, err := filepath.Abs(home)
		if err != nil {
			return "", fmt.Errorf("resolve ECL_HOME %q: %w", home, err)
		}
		return abs, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home: %w", err)
	}
	return filepath.Join(userHome, ".ecl"), nil
}

func lockfilePathFor(manifest *driver.Manifest) string {
	return filepath.Join(manifest.Dir(), driver.LockfileName)
}

func loadLockfileForManifest(manifest *driver.Manifest) (*driver.Lockfile, error) {
	if manifest == nil {
		return nil, nil
	}
	lockPath := lockfilePathFor(manifest)
	lock, err := driver.LoadLockfile(lockPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if len(manifest.Dependencies) > 0 {
				return nil, fmt.Errorf("%s missing for %q; run `ecl deps install`", driver.LockfileName, manifest.Name)
			}
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read lockfile %s: %w", lockPath, err)
	}
	if lock.Root != sanitizeName(manifest.Name) {
		return nil, fmt.Errorf("lockfile root %q does not match manifest name %q", lock.Root, manifest.Name)
	}
	return lock, nil
}
