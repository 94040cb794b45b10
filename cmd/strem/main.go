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

// Command strem matches spatio-temporal regular expressions against
// annotated perception streams (spec.md §1).
package main

import (
	"fmt"
	"os"

	"github.com/cps-atlas/strem/cmd/strem/cmd"
	serrors "github.com/cps-atlas/strem/spre/errors"
)

func main() {
	os.Exit(run())
}

func run() int {
	root := cmd.New()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "strem:", err)
		return exitCode(err)
	}
	return 0
}

// exitCode maps an error's Kind to the distinct nonzero exit code
// spec.md §7 assigns it.
func exitCode(err error) int {
	switch serrors.KindOf(err) {
	case serrors.SyntaxError:
		return 2
	case serrors.SchemaError:
		return 3
	case serrors.ChannelNotFound:
		return 4
	case serrors.UnboundVariable:
		return 5
	case serrors.AtomLimitExceeded:
		return 6
	case serrors.RepeatTooLarge:
		return 7
	case serrors.IOError:
		return 8
	default:
		return 1
	}
}
