// Copyright 2026 DND-IT
// SPDX-License-Identifier: BSD-2-Clause

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
)

// readInput reads a file argument, where "-" means standard input.
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return slurpStdin()
	}
	return os.ReadFile(path)
}

func slurpStdin() ([]byte, error) {
	if isatty.IsTerminal(os.Stdin.Fd()) {
		fmt.Fprintf(os.Stderr, "(reading YAML from standard input; hit ctrl-c if this is not what you wanted)\n")
	}
	return io.ReadAll(os.Stdin)
}

// writeFileAtomic replaces path via a rename from a temp file in the same
// directory, keeping the original mode. A crash mid-write leaves the original
// file intact.
func writeFileAtomic(path string, data []byte) error {
	st, err := os.Stat(path)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(st.Mode()); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
