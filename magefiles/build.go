//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binaryName = "tagindex"
	binaryDir  = "bin"
	cmdDir     = "./cmd/tagindex"
	indexDir   = "build/tagindex"
)

// Build compiles the tagindex binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV(binGo, "build", "-v", "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Index builds tagindex and scans the repository's own packages into
// build/tagindex.
func Index() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binaryDir, binaryName), "scan", "--output-dir", indexDir, "./...")
}

// Clean removes build artifacts.
func Clean() error {
	for _, dir := range []string{binaryDir, indexDir} {
		if err := os.RemoveAll(dir); err != nil {
			return err
		}
	}
	return sh.RunV(binGo, "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil {
		return err
	}
	src := filepath.Join(binaryDir, binaryName)
	dst := filepath.Join(gopath, "bin", binaryName)
	return sh.Copy(dst, src)
}
