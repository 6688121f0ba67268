// Copyright 2026 EngFlow Inc. All rights reserved.
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

package erlpp

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EngFlow/erlpp/token"
)

func TestSubstitutePathVariablesReplacesFirstComponentOnly(t *testing.T) {
	t.Setenv("MY_APP_ROOT", "/opt/app")
	got := substitutePathVariables("$MY_APP_ROOT/include/foo.hrl")
	assert.Equal(t, "/opt/app/include/foo.hrl", got)
}

func TestSubstitutePathVariablesFallsBackOnMissingVar(t *testing.T) {
	os.Unsetenv("NO_SUCH_VAR_XYZ")
	got := substitutePathVariables("$NO_SUCH_VAR_XYZ/foo.hrl")
	assert.Equal(t, "$NO_SUCH_VAR_XYZ/foo.hrl", got)
}

func TestSubstitutePathVariablesLeavesPlainPath(t *testing.T) {
	got := substitutePathVariables("kernel/include/file.hrl")
	assert.Equal(t, "kernel/include/file.hrl", got)
}

func TestResolveIncludeLibPathFindsVersionedAppDir(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "kernel-9.1", "include"), 0o755))
	got, err := resolveIncludeLibPath("kernel/include/file.hrl", []string{root})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "kernel-9.1", "include", "file.hrl"), got)
}

func TestResolveIncludeLibPathFallsThroughWhenNoMatch(t *testing.T) {
	root := t.TempDir()
	got, err := resolveIncludeLibPath("kernel/include/file.hrl", []string{root})
	require.NoError(t, err)
	assert.Equal(t, "kernel/include/file.hrl", got)
}

func TestDoIncludeSplicesFileContents(t *testing.T) {
	p := New(token.NewLexer(`-include("a.hrl"). tail.`, "main.erl"), "main.erl")
	p.SetFileReader(func(path string) (string, error) {
		if path == "a.hrl" {
			return "included.", nil
		}
		return "", os.ErrNotExist
	})
	got := collectTexts(t, p)
	assert.Equal(t, []string{"included", ".", " ", "tail", "."}, got)
}

func TestDoIncludeDetectsCycle(t *testing.T) {
	p := New(token.NewLexer(`-include("self.hrl").`, "self.hrl"), "self.hrl")
	p.SetFileReader(func(path string) (string, error) {
		return `-include("self.hrl").`, nil
	})
	_, err := drainToError(t, p)
	var cyc *IncludeCycleError
	require.True(t, errors.As(err, &cyc))
	assert.Equal(t, "self.hrl", cyc.Path)
}

func TestDoIncludeMissingFileWrapsCause(t *testing.T) {
	p := New(token.NewLexer(`-include("missing.hrl").`, "main.erl"), "main.erl")
	p.SetFileReader(func(path string) (string, error) {
		return "", os.ErrNotExist
	})
	_, err := drainToError(t, p)
	var inc *IncludeFileError
	require.True(t, errors.As(err, &inc))
	assert.Equal(t, "missing.hrl", inc.Path)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
