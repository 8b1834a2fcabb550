//go:build mage

package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

// run executes the built CLI with the given arguments.
func run(args ...string) error {
	bin := filepath.Join(binDir, binName)
	cmd := exec.Command(bin, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Convert runs batch conversion over all unconverted datasets.
func Convert() error {
	mg.Deps(Build)
	return run("convert", "--batch")
}

// Profile runs batch column profiling over all converted datasets.
func Profile() error {
	mg.Deps(Build)
	return run("profile")
}

// Ingest indexes column profiles into the catalog.
func Ingest() error {
	mg.Deps(Build)
	return run("catalog", "ingest")
}

// Refresh runs conversion, profiling, and catalog ingestion in order.
func Refresh() error {
	mg.Deps(Build)
	for _, stage := range [][]string{
		{"convert", "--batch"},
		{"profile"},
		{"catalog", "ingest"},
	} {
		if err := run(stage...); err != nil {
			return fmt.Errorf("%s: %w", stage[0], err)
		}
	}
	return nil
}
