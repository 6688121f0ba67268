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
	"fmt"

	"github.com/EngFlow/erlpp/token"
)

// UnexpectedTokenError is returned when a typed read found a token of the
// wrong kind or value.
type UnexpectedTokenError struct {
	Token    token.Token
	Expected string
}

func (e *UnexpectedTokenError) Error() string {
	return fmt.Sprintf("%s: unexpected token %q, expected %s", e.Token.Pos, e.Token.Text, e.Expected)
}

// UnexpectedEofError is returned when the token source was exhausted in the
// middle of a construct the core expected more tokens for.
type UnexpectedEofError struct {
	Where string
}

func (e *UnexpectedEofError) Error() string {
	return fmt.Sprintf("unexpected end of input while reading %s", e.Where)
}

// IncludeFileError wraps a failure to open or read an included file.
type IncludeFileError struct {
	Directive token.Position
	Path      string
	Cause     error
}

func (e *IncludeFileError) Error() string {
	return fmt.Sprintf("%s: could not include %q: %v", e.Directive, e.Path, e.Cause)
}

func (e *IncludeFileError) Unwrap() error { return e.Cause }

// MissingMacroArgError is returned for an empty argument between commas in a
// macro call's argument list.
type MissingMacroArgError struct {
	Pos token.Position
}

func (e *MissingMacroArgError) Error() string {
	return fmt.Sprintf("%s: missing macro argument", e.Pos)
}

// UnbalancedParenError is returned for a closing bracket with no matching
// opener while splitting macro-call arguments.
type UnbalancedParenError struct {
	Token token.Token
}

func (e *UnbalancedParenError) Error() string {
	return fmt.Sprintf("%s: unbalanced %q", e.Token.Pos, e.Token.Text)
}

// FileNotSetError is returned when ?FILE expands at a position carrying no
// file path.
type FileNotSetError struct {
	Pos token.Position
}

func (e *FileNotSetError) Error() string {
	return fmt.Sprintf("%s: ?FILE has no file path to expand to", e.Pos)
}

// UndefinedMacroError is returned when ?Name is used but Name is not bound
// in the macro environment.
type UndefinedMacroError struct {
	Name string
	Pos  token.Position
}

func (e *UndefinedMacroError) Error() string {
	return fmt.Sprintf("%s: undefined macro %s", e.Pos, e.Name)
}

// UndefinedMacroVarError is returned when ??V names a variable that is not
// a formal of the enclosing macro definition.
type UndefinedMacroVarError struct {
	Name string
	Pos  token.Position
}

func (e *UndefinedMacroVarError) Error() string {
	return fmt.Sprintf("%s: %s is not a formal parameter of this macro", e.Pos, e.Name)
}

// MacroArgsMismatchedError is returned when a macro call's actual argument
// count disagrees with its definition's formal count.
type MacroArgsMismatchedError struct {
	Name     string
	Pos      token.Position
	Expected int
	Actual   int
}

func (e *MacroArgsMismatchedError) Error() string {
	return fmt.Sprintf("%s: macro %s expects %d argument(s), got %d", e.Pos, e.Name, e.Expected, e.Actual)
}

// NonUtf8PathError describes a path that cannot be rendered for glob
// matching. It is kept for parity with the taxonomy this engine was ported
// from; no code path in this package returns it.
type NonUtf8PathError struct {
	Path string
}

func (e *NonUtf8PathError) Error() string {
	return fmt.Sprintf("path %q is not valid UTF-8", e.Path)
}

// UnexpectedDotInMacroDefError is returned for a bare '.' token inside a
// -define replacement list that was not immediately preceded by the
// replacement-closing ')'.
type UnexpectedDotInMacroDefError struct {
	Pos token.Position
}

func (e *UnexpectedDotInMacroDefError) Error() string {
	return fmt.Sprintf("%s: unexpected '.' inside macro definition", e.Pos)
}

// MissingIfDirectiveError is returned for an else/endif with no matching
// opener, or an else directly following another else.
type MissingIfDirectiveError struct {
	Pos token.Position
	Dir string
}

func (e *MissingIfDirectiveError) Error() string {
	return fmt.Sprintf("%s: %s with no matching ifdef/ifndef", e.Pos, e.Dir)
}

// IncludeCycleError is returned when an include directive would re-open a
// file that is already open higher in the include stack.
type IncludeCycleError struct {
	Path string
	Pos  token.Position
}

func (e *IncludeCycleError) Error() string {
	return fmt.Sprintf("%s: include cycle detected for %q", e.Pos, e.Path)
}

// PredefinedMacroUnsetError is returned when a predefined macro whose value
// depends on host-supplied state (MODULE, MODULE_STRING, FUNCTION_NAME,
// FUNCTION_ARITY) is expanded before that state was set.
type PredefinedMacroUnsetError struct {
	Name string
	Pos  token.Position
}

func (e *PredefinedMacroUnsetError) Error() string {
	return fmt.Sprintf("%s: predefined macro %s has not been set", e.Pos, e.Name)
}

// TokenizeError wraps an error returned by the underlying token.Source.
type TokenizeError struct {
	Cause error
}

func (e *TokenizeError) Error() string { return fmt.Sprintf("tokenize: %v", e.Cause) }
func (e *TokenizeError) Unwrap() error { return e.Cause }

// GlobPatternError wraps a malformed glob pattern built while resolving
// include_lib.
type GlobPatternError struct {
	Pattern string
	Cause   error
}

func (e *GlobPatternError) Error() string {
	return fmt.Sprintf("invalid glob pattern %q: %v", e.Pattern, e.Cause)
}

func (e *GlobPatternError) Unwrap() error { return e.Cause }

// GlobError wraps a filesystem error encountered while evaluating a glob
// pattern for include_lib.
type GlobError struct {
	Cause error
}

func (e *GlobError) Error() string { return fmt.Sprintf("glob: %v", e.Cause) }
func (e *GlobError) Unwrap() error { return e.Cause }
