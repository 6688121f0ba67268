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
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/EngFlow/erlpp/token"
)

// substitutePathVariables implements the lenient $VAR substitution §6
// describes: only the first path component is inspected; if it begins with
// '$', its tail is looked up in the process environment and, on success,
// replaces the component; on failure the literal component is kept.
func substitutePathVariables(path string) string {
	parts := strings.Split(path, "/")
	if len(parts) == 0 || !strings.HasPrefix(parts[0], "$") {
		return path
	}
	if v, ok := os.LookupEnv(parts[0][1:]); ok {
		parts[0] = v
	}
	return strings.Join(parts, "/")
}

// resolveIncludeLibPath implements include_lib resolution: the first path
// component names an OTP-style application; code-path directories are
// searched in order for a subdirectory matching "<app>-*", and the first
// match replaces just that component while the remaining components are
// appended unchanged. No match falls through to the literal path (letting
// the later file read fail with IncludeFileError).
func resolveIncludeLibPath(path string, codePaths []string) (string, error) {
	parts := strings.Split(path, "/")
	if len(parts) == 0 {
		return path, nil
	}
	pattern := parts[0] + "-*"
	for _, root := range codePaths {
		matches, err := doublestar.FilepathGlob(filepath.ToSlash(filepath.Join(root, pattern)))
		if err != nil {
			return "", &GlobPatternError{Pattern: pattern, Cause: err}
		}
		if len(matches) > 0 {
			rest := append([]string{matches[0]}, parts[1:]...)
			return filepath.Join(rest...), nil
		}
	}
	return path, nil
}

func defaultReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// doInclude implements the Include/IncludeLib directive effects: resolve
// the path, guard against a cycle, read the file, and splice its tokens in
// via the reader's include stack.
func (p *Preprocessor) doInclude(pos token.Position, pathTok token.Token, isLib bool) error {
	path := substitutePathVariables(pathTok.Value)
	if isLib {
		resolved, err := resolveIncludeLibPath(path, p.codePaths)
		if err != nil {
			return err
		}
		path = resolved
	}
	if p.openIncludes.Contains(path) {
		return &IncludeCycleError{Path: path, Pos: pos}
	}
	text, err := p.readFile(path)
	if err != nil {
		return &IncludeFileError{Directive: pos, Path: path, Cause: err}
	}
	p.openIncludes.Add(path)
	lex := token.NewLexer(text, path)
	p.r.addIncludedText(path, lex, func() {
		delete(p.openIncludes, path)
	})
	return nil
}
