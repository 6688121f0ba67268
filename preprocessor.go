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

// Package erlpp implements a single-pass, pull-based preprocessor for
// already-lexed Erlang token streams: it recognizes -include/-include_lib,
// -define/-undef, -ifdef/-ifndef/-else/-endif and ?Name/?Name(args) macro
// calls, and emits every other token in source order.
package erlpp

import (
	"errors"
	"io"
	"iter"

	"github.com/EngFlow/erlpp/internal/collections"
	"github.com/EngFlow/erlpp/token"
)

// Preprocessor is the driver described by §4.G: it owns the macro
// environment, the conditional-inclusion stack, the code-path queue for
// include_lib, and the logs of every directive and top-level macro call it
// has consumed so far.
type Preprocessor struct {
	r                 *reader
	directiveEligible bool
	branches          []Branch

	macros    map[string]MacroDef
	codePaths []string

	directives      []Directive
	directivesByPos map[token.Position]Directive
	macroCalls      []MacroCall
	macroCallsByPos map[token.Position]MacroCall

	expansionQueue []token.Token

	moduleName    *string
	functionName  *string
	functionArity *int

	openIncludes collections.Set[string]
	readFile     func(path string) (string, error)
}

// New constructs a Preprocessor reading from src. filePath seeds the
// include-cycle guard and may be empty if the source has no file identity.
// It does not tag tokens: ?FILE uses the file recorded in each token's own
// position by src.
func New(src token.Source, filePath string) *Preprocessor {
	p := &Preprocessor{
		r:                 newReader(src),
		directiveEligible: true,
		macros:            make(map[string]MacroDef),
		directivesByPos:   make(map[token.Position]Directive),
		macroCallsByPos:   make(map[token.Position]MacroCall),
		openIncludes:      make(collections.Set[string]),
		readFile:          defaultReadFile,
	}
	if filePath != "" {
		p.openIncludes.Add(filePath)
	}
	return p
}

// CodePaths returns a pointer to the ordered list of directories searched
// for include_lib, so callers can append to it before or during iteration
// (the Go idiom for erl_pp's code_paths_mut()).
func (p *Preprocessor) CodePaths() *[]string { return &p.codePaths }

// Macros returns the live macro environment for pre-seeding or inspection
// (the Go idiom for erl_pp's macros_mut()). Use DynamicMacroDef for
// parameterless programmatic injections. The predefined names (MODULE,
// FILE, LINE, ...) are resolved before this map is consulted, so entries
// under those names are ignored; ?MODULE is set with SetModuleName.
func (p *Preprocessor) Macros() map[string]MacroDef { return p.macros }

// Directives returns every directive consumed so far, in source order.
func (p *Preprocessor) Directives() []Directive { return p.directives }

// DirectiveAt looks up the directive starting at pos, if any.
func (p *Preprocessor) DirectiveAt(pos token.Position) (Directive, bool) {
	d, ok := p.directivesByPos[pos]
	return d, ok
}

// MacroCalls returns every top-level macro call consumed so far, in source
// order. Calls synthesized while expanding another macro are never
// recorded here.
func (p *Preprocessor) MacroCalls() []MacroCall { return p.macroCalls }

// MacroCallAt looks up the top-level macro call starting at pos, if any.
func (p *Preprocessor) MacroCallAt(pos token.Position) (MacroCall, bool) {
	c, ok := p.macroCallsByPos[pos]
	return c, ok
}

// DefinedMacroNames returns the name of every macro bound by a -define
// directive consumed so far, in source order. Names bound then later
// -undef'd are still reported, since this reflects the directive log, not
// the live macro environment.
func (p *Preprocessor) DefinedMacroNames() []string {
	return collections.FilterMapSlice(p.directives, func(d Directive) (string, bool) {
		def, ok := d.(*DefineDirective)
		if !ok {
			return "", false
		}
		return def.Name.Value(), true
	})
}

// DirectivePositions returns the start position of every directive consumed
// so far, in source order.
func (p *Preprocessor) DirectivePositions() []token.Position {
	return collections.MapSlice(p.directives, func(d Directive) token.Position {
		return d.Position()
	})
}

// SetModuleName configures the value ?MODULE and ?MODULE_STRING expand to.
func (p *Preprocessor) SetModuleName(name string) { p.moduleName = &name }

// ClearModuleName makes ?MODULE and ?MODULE_STRING fail again.
func (p *Preprocessor) ClearModuleName() { p.moduleName = nil }

// SetFunctionName configures the value ?FUNCTION_NAME expands to.
func (p *Preprocessor) SetFunctionName(name string) { p.functionName = &name }

// ClearFunctionName makes ?FUNCTION_NAME fail again.
func (p *Preprocessor) ClearFunctionName() { p.functionName = nil }

// SetFunctionArity configures the value ?FUNCTION_ARITY expands to.
func (p *Preprocessor) SetFunctionArity(n int) { p.functionArity = &n }

// ClearFunctionArity makes ?FUNCTION_ARITY fail again.
func (p *Preprocessor) ClearFunctionArity() { p.functionArity = nil }

// SetFileReader overrides how Include/IncludeLib directives read a resolved
// path's contents. Hosts that do not want direct filesystem access (or
// that want to serve includes from memory in tests) can supply their own.
func (p *Preprocessor) SetFileReader(fn func(path string) (string, error)) {
	p.readFile = fn
}

func (p *Preprocessor) masked() bool {
	for _, b := range p.branches {
		if !b.Entered {
			return true
		}
	}
	return false
}

func (p *Preprocessor) recordDirective(d Directive) {
	p.directives = append(p.directives, d)
	p.directivesByPos[d.Position()] = d
}

func (p *Preprocessor) recordMacroCall(c MacroCall) {
	p.macroCalls = append(p.macroCalls, c)
	p.macroCallsByPos[c.Pos()] = c
}

// Next implements the §4.G driver loop, returning one token per call, or
// io.EOF at exhaustion. Every error is terminal: after an error, the
// Preprocessor's internal state should not be relied on and Next should
// not be called again.
func (p *Preprocessor) Next() (token.Token, error) {
	for {
		if len(p.expansionQueue) > 0 {
			t := p.expansionQueue[0]
			p.expansionQueue = p.expansionQueue[1:]
			return t, nil
		}

		if p.directiveEligible {
			dir, err := p.tryParseDirective()
			if err != nil {
				return token.Token{}, err
			}
			if dir != nil {
				p.recordDirective(dir)
				if err := p.applyDirective(dir); err != nil {
					return token.Token{}, err
				}
				p.directiveEligible = true
				continue
			}
		}

		if !p.masked() {
			call, err := p.tryParseMacroCall()
			if err != nil {
				return token.Token{}, err
			}
			if call != nil {
				p.recordMacroCall(*call)
				expanded, err := p.expand(call)
				if err != nil {
					return token.Token{}, err
				}
				p.expansionQueue = append(p.expansionQueue, expanded...)
				continue
			}
		}

		t, err := p.r.readToken()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return token.Token{}, io.EOF
			}
			return token.Token{}, err
		}

		if p.masked() {
			continue
		}

		if t.Kind != token.Whitespace && t.Kind != token.Comment {
			p.directiveEligible = t.IsSymbol(".")
		}
		return t, nil
	}
}

// All returns an iterator over every remaining token, following the
// iter.Seq2 convention the token package's Lexer.All uses: it stops
// (without yielding) at io.EOF and otherwise yields the final error as its
// last pair.
func (p *Preprocessor) All() iter.Seq2[token.Token, error] {
	return func(yield func(token.Token, error) bool) {
		for {
			t, err := p.Next()
			if err != nil {
				if !errors.Is(err, io.EOF) {
					yield(token.Token{}, err)
				}
				return
			}
			if !yield(t, nil) {
				return
			}
		}
	}
}

// applyDirective implements the "Directive effects" table in §4.G. Include,
// IncludeLib, Define, Undef, Error and Warning are no-ops while masked;
// Ifdef, Ifndef, Else and Endif always run.
func (p *Preprocessor) applyDirective(dir Directive) error {
	switch d := dir.(type) {
	case *IncludeDirective:
		if p.masked() {
			return nil
		}
		return p.doInclude(d.Pos, d.Path, false)
	case *IncludeLibDirective:
		if p.masked() {
			return nil
		}
		return p.doInclude(d.Pos, d.Path, true)
	case *DefineDirective:
		if p.masked() {
			return nil
		}
		p.macros[d.Name.Value()] = StaticMacroDef{Name: d.Name, Variables: d.Variables, Replacement: d.Replacement}
		return nil
	case *UndefDirective:
		if p.masked() {
			return nil
		}
		delete(p.macros, d.Name.Value())
		return nil
	case *IfdefDirective:
		_, defined := p.macros[d.Name.Value()]
		p.branches = append(p.branches, Branch{InThen: true, Entered: defined})
		return nil
	case *IfndefDirective:
		_, defined := p.macros[d.Name.Value()]
		p.branches = append(p.branches, Branch{InThen: true, Entered: !defined})
		return nil
	case *ElseDirective:
		if len(p.branches) == 0 {
			return &MissingIfDirectiveError{Pos: d.Pos, Dir: "else"}
		}
		top := &p.branches[len(p.branches)-1]
		if !top.InThen {
			return &MissingIfDirectiveError{Pos: d.Pos, Dir: "else"}
		}
		top.InThen = false
		top.Entered = !top.Entered
		return nil
	case *EndifDirective:
		if len(p.branches) == 0 {
			return &MissingIfDirectiveError{Pos: d.Pos, Dir: "endif"}
		}
		p.branches = p.branches[:len(p.branches)-1]
		return nil
	case *ErrorDirective, *WarningDirective:
		return nil
	default:
		return errors.New("erlpp: unknown directive type")
	}
}
