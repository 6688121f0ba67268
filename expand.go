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
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/EngFlow/erlpp/token"
)

// predefinedMacroNames never take arguments and are resolved from
// Preprocessor configuration rather than the macro environment, matching
// the fixed table in §4.F.
var predefinedMacroNames = map[string]bool{
	"MODULE": true, "MODULE_STRING": true, "FILE": true, "LINE": true,
	"MACHINE": true, "FUNCTION_NAME": true, "FUNCTION_ARITY": true,
}

var bareAtomRe = regexp.MustCompile(`^[a-z][a-zA-Z0-9_@]*$`)

func quoteErlangAtom(v string) string {
	if bareAtomRe.MatchString(v) {
		return v
	}
	return "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(v) + "'"
}

func quoteErlangString(v string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(v) + `"`
}

func cloneTokens(ts []token.Token) []token.Token {
	return append([]token.Token(nil), ts...)
}

// expand implements §4.F: predefined macros are resolved from preprocessor
// configuration; user-defined macros are looked up in the environment and
// their replacement is rescanned for nested macro calls, the stringify
// operator, and formal-variable substitution.
func (p *Preprocessor) expand(call *MacroCall) ([]token.Token, error) {
	if predefinedMacroNames[call.Name.Value()] {
		return p.expandPredefined(call)
	}
	def, ok := p.macros[call.Name.Value()]
	if !ok {
		return nil, &UndefinedMacroError{Name: call.Name.String(), Pos: call.Pos()}
	}
	switch d := def.(type) {
	case DynamicMacroDef:
		return p.rescan(cloneTokens(d.Tokens), nil)
	case StaticMacroDef:
		return p.expandStatic(call, d)
	default:
		return nil, errors.New("erlpp: unknown macro definition type")
	}
}

func (p *Preprocessor) expandPredefined(call *MacroCall) ([]token.Token, error) {
	pos := call.Pos()
	switch call.Name.Value() {
	case "FILE":
		if pos.File == "" {
			return nil, &FileNotSetError{Pos: pos}
		}
		return []token.Token{{Kind: token.String, Text: quoteErlangString(pos.File), Value: pos.File, Pos: pos}}, nil
	case "LINE":
		s := strconv.Itoa(pos.Line)
		return []token.Token{{Kind: token.Integer, Text: s, Value: s, Pos: pos}}, nil
	case "MACHINE":
		return []token.Token{{Kind: token.Atom, Text: "'BEAM'", Value: "BEAM", Pos: pos}}, nil
	case "MODULE":
		if p.moduleName == nil {
			return nil, &PredefinedMacroUnsetError{Name: "MODULE", Pos: pos}
		}
		return []token.Token{{Kind: token.Atom, Text: quoteErlangAtom(*p.moduleName), Value: *p.moduleName, Pos: pos}}, nil
	case "MODULE_STRING":
		if p.moduleName == nil {
			return nil, &PredefinedMacroUnsetError{Name: "MODULE_STRING", Pos: pos}
		}
		return []token.Token{{Kind: token.String, Text: quoteErlangString(*p.moduleName), Value: *p.moduleName, Pos: pos}}, nil
	case "FUNCTION_NAME":
		if p.functionName == nil {
			return nil, &PredefinedMacroUnsetError{Name: "FUNCTION_NAME", Pos: pos}
		}
		return []token.Token{{Kind: token.Atom, Text: quoteErlangAtom(*p.functionName), Value: *p.functionName, Pos: pos}}, nil
	case "FUNCTION_ARITY":
		if p.functionArity == nil {
			return nil, &PredefinedMacroUnsetError{Name: "FUNCTION_ARITY", Pos: pos}
		}
		s := strconv.Itoa(*p.functionArity)
		return []token.Token{{Kind: token.Integer, Text: s, Value: s, Pos: pos}}, nil
	default:
		return nil, errors.New("erlpp: unreachable predefined macro " + call.Name.Value())
	}
}

func (p *Preprocessor) expandStatic(call *MacroCall, def StaticMacroDef) ([]token.Token, error) {
	var formalCount, actualCount int
	if def.Variables != nil {
		formalCount = def.Variables.Len()
	}
	if call.Args != nil {
		actualCount = call.Args.Len()
	}
	if formalCount != actualCount {
		return nil, &MacroArgsMismatchedError{
			Name: call.Name.String(), Pos: call.Pos(),
			Expected: formalCount, Actual: actualCount,
		}
	}

	bindings := map[string][]token.Token{}
	if def.Variables != nil && call.Args != nil {
		vars := def.Variables.List.Values()
		args := call.Args.List.Values()
		for i, v := range vars {
			bindings[v.Value] = args[i].Tokens
		}
	}
	return p.rescan(cloneTokens(def.Replacement), bindings)
}

// rescan scans tokens (a macro replacement list) through a fresh reader,
// resolving nested macro calls, the ??V stringify operator, and formal
// variable substitution. Expanded nested calls are pushed back into this
// same local reader's unread buffer so they too are rescanned, exactly the
// mechanism the top-level driver uses to rescan its own expansions.
func (p *Preprocessor) rescan(tokens []token.Token, bindings map[string][]token.Token) ([]token.Token, error) {
	saved := p.r
	p.r = newReader(token.NewSliceSource(tokens))
	defer func() { p.r = saved }()

	var out []token.Token
	for {
		t, err := p.r.readToken()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}

		if t.Kind == token.Symbol && t.Text == "??" {
			v, err := p.r.readKind(token.Variable)
			if err != nil {
				return nil, err
			}
			actual, ok := bindings[v.Value]
			if !ok {
				return nil, &UndefinedMacroVarError{Name: v.Value, Pos: v.Pos}
			}
			out = append(out, stringifyTokens(actual, v.Pos))
			continue
		}

		if t.Kind == token.Symbol && t.Text == "?" {
			p.r.unreadToken(t)
			call, err := p.tryParseMacroCall()
			if err != nil {
				return nil, err
			}
			expanded, err := p.expand(call)
			if err != nil {
				return nil, err
			}
			p.r.unreadTokens(expanded)
			continue
		}

		if t.Kind == token.Variable {
			if actual, ok := bindings[t.Value]; ok {
				expandedActual, err := p.rescan(cloneTokens(actual), nil)
				if err != nil {
					return nil, err
				}
				out = append(out, expandedActual...)
				continue
			}
		}

		out = append(out, t)
	}
	return out, nil
}

// stringifyTokens implements the ??V operator: the textual (not decoded)
// representation of every actual token is concatenated verbatim, including
// any whitespace/comment tokens the argument captured, then wrapped as a
// single string literal.
func stringifyTokens(actual []token.Token, pos token.Position) token.Token {
	var sb strings.Builder
	for _, t := range actual {
		sb.WriteString(t.Text)
	}
	s := sb.String()
	return token.Token{Kind: token.String, Text: quoteErlangString(s), Value: s, Pos: pos}
}
