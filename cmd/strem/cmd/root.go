// Copyright 2026 The STREM Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cmd implements the strem command-line front-end: flag
// parsing, glob expansion of file arguments, and match reporting
// (spec.md §6.3). Everything here sits outside the SpRE engine's core
// and is free to depend on whatever the pack offers for CLI plumbing.
package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gobwas/glob"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cps-atlas/strem/internal/engine"
	"github.com/cps-atlas/strem/internal/schema"
	serrors "github.com/cps-atlas/strem/spre/errors"
	"github.com/cps-atlas/strem/spre/token"
)

// version is set at build time via -ldflags; it defaults to "dev" for
// local builds, matching the teacher's --version convention.
var version = "dev"

// Command wraps the root cobra.Command, mirroring the teacher's thin
// wrapper so tests can invoke Execute without touching os.Args.
type Command struct {
	*cobra.Command
	log *logrus.Logger
}

// New builds the root command: strem <pattern> <file...>.
func New() *Command {
	log := logrus.New()
	log.SetOutput(os.Stderr)

	root := &cobra.Command{
		Use:           "strem <pattern> <file...>",
		Short:         "match spatio-temporal regular expressions against annotated perception streams",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.MinimumNArgs(2),
	}

	var channel string
	var online bool
	root.Flags().StringVar(&channel, "channel", "", "channel to match against (required)")
	root.Flags().BoolVar(&online, "online", false, "use the incremental online matcher instead of offline")
	root.MarkFlagRequired("channel")

	c := &Command{Command: root, log: log}

	root.RunE = func(cc *cobra.Command, args []string) error {
		return c.run(args[0], args[1:], engine.Options{Channel: channel, Online: online})
	}

	return c
}

// run is the CLI's single operation: compile the pattern, expand the
// file arguments (the shell may already have, but a quoted glob reaches
// us literally), decode and concatenate them, and print every match.
func (c *Command) run(pattern string, fileArgs []string, opts engine.Options) error {
	prog, err := engine.Compile(pattern)
	if err != nil {
		return err
	}

	paths, err := expandGlobs(fileArgs)
	if err != nil {
		return err
	}
	c.log.WithField("files", len(paths)).Debug("expanded input arguments")

	stream, err := schema.DecodeAll(paths, os.ReadFile)
	if err != nil {
		return err
	}

	matches, err := prog.Run(stream, opts)
	if err != nil {
		return err
	}

	return writeMatches(c.OutOrStdout(), matches)
}

// expandGlobs resolves each argument that looks like a glob pattern
// against the filesystem (spec.md §6.3: "or globs the shell expanded" —
// a quoted glob that reaches the process literally still needs manual
// expansion). Arguments naming an existing plain file pass through
// unchanged.
func expandGlobs(args []string) ([]string, error) {
	var out []string
	for _, a := range args {
		if _, err := os.Stat(a); err == nil {
			out = append(out, a)
			continue
		}
		g, err := glob.Compile(a)
		if err != nil {
			return nil, serrors.Newf(serrors.IOError, token.NoPos, "invalid file argument %q: %v", a, err)
		}
		dir := filepath.Dir(a)
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, serrors.Newf(serrors.IOError, token.NoPos, "%s: %v", a, err)
		}
		matched := false
		for _, e := range entries {
			full := filepath.Join(dir, e.Name())
			if g.Match(full) {
				out = append(out, full)
				matched = true
			}
		}
		if !matched {
			return nil, serrors.Newf(serrors.IOError, token.NoPos, "%s: no matching files", a)
		}
	}
	return out, nil
}

// writeMatches prints one line per match, in the stable form of
// SPEC_FULL.md §6.3: "<channel> [<start>, <end>]".
func writeMatches(w io.Writer, matches []engine.Match) error {
	for _, m := range matches {
		if _, err := fmt.Fprintf(w, "%s [%d, %d]\n", m.Channel, m.Start, m.End); err != nil {
			return serrors.Newf(serrors.IOError, token.NoPos, "write output: %v", err)
		}
	}
	return nil
}
