package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"ecl/interpreter-go/pkg/driver"
)

func runDeps(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "ecl deps requires a subcommand (install, update)")
		return 1
	}
	switch args[0] {
	case "install":
		if len(args) > 1 {
			fmt.Fprintf(os.Stderr, "ecl deps install does not take arguments (received %s)\n", strings.Join(args[1:], " "))
			return 1
		}
		return runDepsInstall()
	case "update":
		return runDepsUpdate(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown deps subcommand %q\n", args[0])
		return 1
	}
}

type depsContext struct {
	manifest    *driver.Manifest
	cacheDir    string
	lock        *driver.Lockfile
	lockCreated bool
}

// loadDepsContext finds the manifest above the working directory and opens
// (or starts) its lockfile.
func loadDepsContext() (*depsContext, bool) {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to determine working directory: %v\n", err)
		return nil, false
	}
	manifestPath, err := findManifest(cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to locate %s: %v\n", driver.ManifestFileName, err)
		return nil, false
	}
	manifest, err := driver.LoadManifest(manifestPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read manifest: %v\n", err)
		return nil, false
	}
	cacheDir, err := resolveEclHome()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve ECL_HOME: %v\n", err)
		return nil, false
	}

	ctx := &depsContext{manifest: manifest, cacheDir: cacheDir}
	lockPath := lockfilePathFor(manifest)
	lock, err := driver.LoadLockfile(lockPath)
	switch {
	case err == nil:
		if lock.Root != sanitizeName(manifest.Name) {
			fmt.Fprintf(os.Stderr, "lockfile root %q does not match manifest name %q\n", lock.Root, manifest.Name)
			return nil, false
		}
	case errors.Is(err, os.ErrNotExist):
		lock = driver.NewLockfile(manifest.Name, cliToolVersion)
		ctx.lockCreated = true
	default:
		fmt.Fprintf(os.Stderr, "failed to read lockfile: %v\n", err)
		return nil, false
	}
	lock.Path = lockPath
	lock.Tool = cliToolVersion
	ctx.lock = lock
	return ctx, true
}

func runDepsInstall() int {
	ctx, ok := loadDepsContext()
	if !ok {
		return 1
	}
	manifest := ctx.manifest

	fmt.Fprintf(os.Stdout, "Manifest: %s\n", manifest.Path)
	fmt.Fprintf(os.Stdout, "Root package: %s\n", manifest.Name)
	fmt.Fprintf(os.Stdout, "Dependencies: %d\n", len(manifest.Dependencies))
	fmt.Fprintf(os.Stdout, "Cache directory: %s\n", ctx.cacheDir)

	installer := newDependencyInstaller(manifest, ctx.cacheDir)
	changed, logs, err := installer.Install(ctx.lock)
	for _, line := range logs {
		fmt.Fprintln(os.Stdout, line)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve dependencies: %v\n", err)
		return 1
	}

	if changed || ctx.lockCreated {
		action := "Updated"
		if ctx.lockCreated {
			action = "Created"
		}
		if err := driver.WriteLockfile(ctx.lock, ctx.lock.Path); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write lockfile: %v\n", err)
			return 1
		}
		fmt.Fprintf(os.Stdout, "%s %s: %s\n", action, driver.LockfileName, ctx.lock.Path)
	} else {
		fmt.Fprintf(os.Stdout, "%s already up to date: %s\n", driver.LockfileName, ctx.lock.Path)
	}

	fmt.Fprintln(os.Stdout, "Dependencies installed.")
	return 0
}

// runDepsUpdate drops the named lock entries (all of them when no names are
// given) and resolves them again.
func runDepsUpdate(targets []string) int {
	ctx, ok := loadDepsContext()
	if !ok {
		return 1
	}
	manifest := ctx.manifest

	updateSet := make(map[string]struct{})
	if len(targets) > 0 {
		declared := make(map[string]struct{}, len(manifest.Dependencies))
		for name := range manifest.Dependencies {
			declared[sanitizeName(name)] = struct{}{}
		}
		for _, target := range targets {
			sanitized := sanitizeName(target)
			if _, ok := declared[sanitized]; !ok {
				fmt.Fprintf(os.Stderr, "dependency %q not declared in manifest\n", target)
				return 1
			}
			updateSet[sanitized] = struct{}{}
		}
	}

	lock := ctx.lock
	if len(updateSet) == 0 {
		lock.Packages = nil
	} else {
		kept := make([]*driver.LockedPackage, 0, len(lock.Packages))
		for _, pkg := range lock.Packages {
			if pkg == nil {
				continue
			}
			if _, ok := updateSet[pkg.Name]; ok {
				continue
			}
			kept = append(kept, pkg)
		}
		lock.Packages = kept
	}

	installer := newDependencyInstaller(manifest, ctx.cacheDir)
	changed, logs, err := installer.Install(lock)
	for _, line := range logs {
		fmt.Fprintln(os.Stdout, line)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to update dependencies: %v\n", err)
		return 1
	}

	if changed || ctx.lockCreated {
		if err := driver.WriteLockfile(lock, lock.Path); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write lockfile: %v\n", err)
			return 1
		}
		fmt.Fprintf(os.Stdout, "Updated %s: %s\n", driver.LockfileName, lock.Path)
	} else {
		fmt.Fprintln(os.Stdout, "Dependencies already up to date.")
	}
	return 0
}
