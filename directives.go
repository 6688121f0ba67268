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

	"github.com/EngFlow/erlpp/token"
)

// Directive is the tagged union of recognized preprocessor directives. Each
// variant stores its start position and the payload needed for its effect;
// the '-', name atom, parentheses and '.' tokens are not kept, so a
// directive's original text cannot be reconstructed from it.
type Directive interface {
	Position() token.Position
}

type IncludeDirective struct {
	Pos  token.Position
	Path token.Token
}

func (d *IncludeDirective) Position() token.Position { return d.Pos }

type IncludeLibDirective struct {
	Pos  token.Position
	Path token.Token
}

func (d *IncludeLibDirective) Position() token.Position { return d.Pos }

type DefineDirective struct {
	Pos         token.Position
	Name        MacroName
	Variables   *MacroVariables
	Replacement []token.Token
}

func (d *DefineDirective) Position() token.Position { return d.Pos }

type UndefDirective struct {
	Pos  token.Position
	Name MacroName
}

func (d *UndefDirective) Position() token.Position { return d.Pos }

type IfdefDirective struct {
	Pos  token.Position
	Name MacroName
}

func (d *IfdefDirective) Position() token.Position { return d.Pos }

type IfndefDirective struct {
	Pos  token.Position
	Name MacroName
}

func (d *IfndefDirective) Position() token.Position { return d.Pos }

type ElseDirective struct {
	Pos token.Position
}

func (d *ElseDirective) Position() token.Position { return d.Pos }

type EndifDirective struct {
	Pos token.Position
}

func (d *EndifDirective) Position() token.Position { return d.Pos }

type ErrorDirective struct {
	Pos     token.Position
	Message token.Token
}

func (d *ErrorDirective) Position() token.Position { return d.Pos }

type WarningDirective struct {
	Pos     token.Position
	Message token.Token
}

func (d *WarningDirective) Position() token.Position { return d.Pos }

// directiveAtoms is the set of atoms that make a leading '-' the start of a
// directive rather than an ordinary attribute; any other atom falls
// through to "not a directive" per §4.D step 3.
var directiveAtoms = map[string]bool{
	"include": true, "include_lib": true, "define": true, "undef": true,
	"ifdef": true, "ifndef": true, "else": true, "endif": true,
	"error": true, "warning": true,
}

// tryParseDirective implements §4.D: try a '-', try an atom, dispatch on
// its value. Returns (nil, nil) when the position is not a directive (and
// restores the reader to exactly where it started); returns a parse error
// only once committed to a matched directive atom.
func (p *Preprocessor) tryParseDirective() (Directive, error) {
	hyphen, ok, err := p.r.tryReadExpectedSymbol("-")
	if err != nil || !ok {
		return nil, err
	}
	atomTok, ok, err := p.r.tryReadKind(token.Atom)
	if err != nil {
		p.r.unreadToken(hyphen)
		return nil, err
	}
	if !ok {
		p.r.unreadToken(hyphen)
		return nil, nil
	}
	if !directiveAtoms[atomTok.Value] {
		p.r.unreadToken(atomTok)
		p.r.unreadToken(hyphen)
		return nil, nil
	}
	p.r.unreadToken(atomTok)
	p.r.unreadToken(hyphen)

	switch atomTok.Value {
	case "include":
		return p.readPathDirective("include", func(pos token.Position, path token.Token) Directive {
			return &IncludeDirective{Pos: pos, Path: path}
		})
	case "include_lib":
		return p.readPathDirective("include_lib", func(pos token.Position, path token.Token) Directive {
			return &IncludeLibDirective{Pos: pos, Path: path}
		})
	case "define":
		return p.readDefineDirective()
	case "undef":
		return p.readNameDirective("undef", func(pos token.Position, name MacroName) Directive {
			return &UndefDirective{Pos: pos, Name: name}
		})
	case "ifdef":
		return p.readNameDirective("ifdef", func(pos token.Position, name MacroName) Directive {
			return &IfdefDirective{Pos: pos, Name: name}
		})
	case "ifndef":
		return p.readNameDirective("ifndef", func(pos token.Position, name MacroName) Directive {
			return &IfndefDirective{Pos: pos, Name: name}
		})
	case "else":
		return p.readBareDirective("else", func(pos token.Position) Directive {
			return &ElseDirective{Pos: pos}
		})
	case "endif":
		return p.readBareDirective("endif", func(pos token.Position) Directive {
			return &EndifDirective{Pos: pos}
		})
	case "error":
		return p.readMessageDirective("error", func(pos token.Position, msg token.Token) Directive {
			return &ErrorDirective{Pos: pos, Message: msg}
		})
	case "warning":
		return p.readMessageDirective("warning", func(pos token.Position, msg token.Token) Directive {
			return &WarningDirective{Pos: pos, Message: msg}
		})
	}
	panic("erlpp: unreachable directive atom " + atomTok.Value)
}

func (p *Preprocessor) directiveHeader(name string) (token.Position, error) {
	hyphen, err := p.r.readExpectedSymbol("-")
	if err != nil {
		return token.Position{}, err
	}
	if _, err := p.r.readExpectedAtom(name); err != nil {
		return token.Position{}, err
	}
	return hyphen.Pos, nil
}

func (p *Preprocessor) readPathDirective(name string, build func(token.Position, token.Token) Directive) (Directive, error) {
	pos, err := p.directiveHeader(name)
	if err != nil {
		return nil, err
	}
	if _, err := p.r.readExpectedSymbol("("); err != nil {
		return nil, err
	}
	path, err := p.r.readKind(token.String)
	if err != nil {
		return nil, err
	}
	if _, err := p.r.readExpectedSymbol(")"); err != nil {
		return nil, err
	}
	if _, err := p.r.readExpectedSymbol("."); err != nil {
		return nil, err
	}
	return build(pos, path), nil
}

func (p *Preprocessor) readNameDirective(name string, build func(token.Position, MacroName) Directive) (Directive, error) {
	pos, err := p.directiveHeader(name)
	if err != nil {
		return nil, err
	}
	if _, err := p.r.readExpectedSymbol("("); err != nil {
		return nil, err
	}
	macroName, err := p.r.readMacroName()
	if err != nil {
		return nil, err
	}
	if _, err := p.r.readExpectedSymbol(")"); err != nil {
		return nil, err
	}
	if _, err := p.r.readExpectedSymbol("."); err != nil {
		return nil, err
	}
	return build(pos, macroName), nil
}

func (p *Preprocessor) readBareDirective(name string, build func(token.Position) Directive) (Directive, error) {
	pos, err := p.directiveHeader(name)
	if err != nil {
		return nil, err
	}
	if _, err := p.r.readExpectedSymbol("."); err != nil {
		return nil, err
	}
	return build(pos), nil
}

func (p *Preprocessor) readMessageDirective(name string, build func(token.Position, token.Token) Directive) (Directive, error) {
	pos, err := p.directiveHeader(name)
	if err != nil {
		return nil, err
	}
	if _, err := p.r.readExpectedSymbol("("); err != nil {
		return nil, err
	}
	msg, err := p.r.readKind(token.String)
	if err != nil {
		return nil, err
	}
	if _, err := p.r.readExpectedSymbol(")"); err != nil {
		return nil, err
	}
	if _, err := p.r.readExpectedSymbol("."); err != nil {
		return nil, err
	}
	return build(pos, msg), nil
}

// readDefineDirective implements the -define(name [(vars)], replacement).
// grammar. The replacement is scanned without bracket balancing: it ends at
// the first ')' immediately followed by '.', and a bare '.' anywhere else
// in the replacement is UnexpectedDotInMacroDefError. This mirrors the
// documented Erlang preprocessor behavior (see directives.rs's Define
// reader in the retrieved erl_pp sources).
func (p *Preprocessor) readDefineDirective() (Directive, error) {
	pos, err := p.directiveHeader("define")
	if err != nil {
		return nil, err
	}
	if _, err := p.r.readExpectedSymbol("("); err != nil {
		return nil, err
	}
	name, err := p.r.readMacroName()
	if err != nil {
		return nil, err
	}

	var vars *MacroVariables
	if _, ok, err := p.r.tryReadExpectedSymbol("("); err != nil {
		return nil, err
	} else if ok {
		v, err := p.readMacroVariables()
		if err != nil {
			return nil, err
		}
		vars = &v
	}

	if _, err := p.r.readExpectedSymbol(","); err != nil {
		return nil, err
	}

	replacement, err := p.readMacroReplacement()
	if err != nil {
		return nil, err
	}

	return &DefineDirective{Pos: pos, Name: name, Variables: vars, Replacement: replacement}, nil
}

// readMacroVariables reads a comma-separated variable list up to and
// including its closing ')'. The opening '(' has already been consumed by
// the caller. Whitespace and comment tokens before each variable and
// before each separator are skipped, so (A, B) reads as two variables.
func (p *Preprocessor) readMacroVariables() (MacroVariables, error) {
	var list List[token.Token]
	if _, ok, err := p.r.tryReadExpectedSymbol(")"); err != nil {
		return MacroVariables{}, err
	} else if ok {
		return MacroVariables{List: list}, nil
	}
	skipLayout := func() {
		for {
			t, err := p.r.readToken()
			if err != nil {
				return
			}
			if t.Kind != token.Whitespace && t.Kind != token.Comment {
				p.r.unreadToken(t)
				return
			}
		}
	}
	for {
		skipLayout()
		v, err := p.r.readKind(token.Variable)
		if err != nil {
			return MacroVariables{}, err
		}
		skipLayout()
		comma, ok, err := p.r.tryReadExpectedSymbol(",")
		if err != nil {
			return MacroVariables{}, err
		}
		if ok {
			c := comma
			list.Items = append(list.Items, Item[token.Token]{Value: v, Comma: &c})
			continue
		}
		list.Items = append(list.Items, Item[token.Token]{Value: v})
		if _, err := p.r.readExpectedSymbol(")"); err != nil {
			return MacroVariables{}, err
		}
		return MacroVariables{List: list}, nil
	}
}

func (p *Preprocessor) readMacroReplacement() ([]token.Token, error) {
	var replacement []token.Token
	for {
		t, err := p.r.readToken()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, &UnexpectedEofError{Where: "macro replacement"}
			}
			return nil, err
		}
		if t.Kind == token.Symbol && t.Text == ")" {
			if _, ok, err := p.r.tryReadExpectedSymbol("."); err != nil {
				return nil, err
			} else if ok {
				return replacement, nil
			}
			replacement = append(replacement, t)
			continue
		}
		if t.Kind == token.Symbol && t.Text == "." {
			return nil, &UnexpectedDotInMacroDefError{Pos: t.Pos}
		}
		replacement = append(replacement, t)
	}
}
