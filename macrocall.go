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

// tryParseMacroCall implements §4.E: a '?' followed by a mandatory macro
// name, followed by an argument list only when the name is known to
// require one. Returns (nil, nil) when the position is not a macro call.
func (p *Preprocessor) tryParseMacroCall() (*MacroCall, error) {
	question, ok, err := p.r.tryReadExpectedSymbol("?")
	if err != nil || !ok {
		return nil, err
	}
	name, err := p.r.readMacroName()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &UnexpectedEofError{Where: "macro name"}
		}
		return nil, err
	}

	call := &MacroCall{Question: question, Name: name}
	if !predefinedMacroNames[name.Value()] {
		if def, found := p.macros[name.Value()]; found {
			if sd, ok := def.(StaticMacroDef); ok && sd.Variables != nil {
				args, err := p.readMacroArgs()
				if err != nil {
					return nil, err
				}
				call.Args = &args
			}
		}
	}
	return call, nil
}

// readMacroArgs reads a parenthesized, comma-separated MacroArgs. The
// opening '(' is consumed here.
func (p *Preprocessor) readMacroArgs() (MacroArgs, error) {
	if _, err := p.r.readExpectedSymbol("("); err != nil {
		return MacroArgs{}, err
	}
	var list List[MacroArg]
	if _, ok, err := p.r.tryReadExpectedSymbol(")"); err != nil {
		return MacroArgs{}, err
	} else if ok {
		return MacroArgs{List: list}, nil
	}
	for {
		arg, sep, err := p.readMacroArg()
		if err != nil {
			return MacroArgs{}, err
		}
		if sep.Text == "," {
			c := sep
			list.Items = append(list.Items, Item[MacroArg]{Value: arg, Comma: &c})
			continue
		}
		list.Items = append(list.Items, Item[MacroArg]{Value: arg})
		return MacroArgs{List: list}, nil
	}
}

func closerFor(open string) string {
	switch open {
	case "(":
		return ")"
	case "[":
		return "]"
	case "{":
		return "}"
	case "<<":
		return ">>"
	default:
		return ""
	}
}

// readMacroArg reads one argument: a non-empty run of tokens terminated by
// a top-level comma or close-paren, where "top level" tracks a bracket
// stack over (, [, {, << and their matching closers so arguments may freely
// contain commas and parens inside nested brackets. It returns the argument
// and the terminating symbol token ("," or ")").
func (p *Preprocessor) readMacroArg() (MacroArg, token.Token, error) {
	var tokens []token.Token
	var stack []string
	for {
		t, err := p.r.readToken()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return MacroArg{}, token.Token{}, &UnexpectedEofError{Where: "macro argument"}
			}
			return MacroArg{}, token.Token{}, err
		}
		if t.Kind != token.Symbol {
			tokens = append(tokens, t)
			continue
		}
		switch t.Text {
		case "(", "[", "{", "<<":
			stack = append(stack, closerFor(t.Text))
			tokens = append(tokens, t)
		case ")", "]", "}", ">>":
			if len(stack) == 0 {
				if t.Text != ")" {
					return MacroArg{}, token.Token{}, &UnbalancedParenError{Token: t}
				}
				if len(tokens) == 0 {
					return MacroArg{}, token.Token{}, &MissingMacroArgError{Pos: t.Pos}
				}
				return MacroArg{Tokens: tokens}, t, nil
			}
			expected := stack[len(stack)-1]
			if t.Text != expected {
				return MacroArg{}, token.Token{}, &UnbalancedParenError{Token: t}
			}
			stack = stack[:len(stack)-1]
			tokens = append(tokens, t)
		case ",":
			if len(stack) == 0 {
				if len(tokens) == 0 {
					return MacroArg{}, token.Token{}, &MissingMacroArgError{Pos: t.Pos}
				}
				return MacroArg{Tokens: tokens}, t, nil
			}
			tokens = append(tokens, t)
		default:
			tokens = append(tokens, t)
		}
	}
}
