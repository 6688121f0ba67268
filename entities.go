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

import "github.com/EngFlow/erlpp/token"

// MacroName is an atom or variable naming a macro. Two MacroNames compare
// equal (via Value) regardless of whether the source wrote the atom bare
// or quoted: ?foo and ?'foo' name the same macro.
type MacroName struct {
	Token token.Token
}

// Value is the decoded textual value macro lookups key on.
func (n MacroName) Value() string { return n.Token.Value }

func (n MacroName) String() string { return n.Token.Text }

// Item pairs a list element with the comma token that followed it in
// source, or a nil Comma for the last element. This is the Go-idiomatic
// stand-in for the cons-list (head/tail) representation erl_pp uses to keep
// every separator token available for exact round-tripping: a slice of
// (value, trailing comma) pairs gives the same guarantee without a
// recursive Option<Box<Cons>> structure Go has no natural equivalent for.
type Item[T any] struct {
	Value T
	Comma *token.Token
}

// List is an ordered, comma-separated sequence of T, parenthesized by the
// caller. An empty List is legal and has Len() == 0.
type List[T any] struct {
	Items []Item[T]
}

// Len returns the number of elements.
func (l List[T]) Len() int { return len(l.Items) }

// Values flattens the list to a plain slice, discarding comma tokens.
func (l List[T]) Values() []T {
	out := make([]T, len(l.Items))
	for i, it := range l.Items {
		out[i] = it.Value
	}
	return out
}

// MacroVariables is the formal parameter list of a -define directive:
// parenthesized, comma-separated variable tokens.
type MacroVariables struct {
	List List[token.Token]
}

func (v MacroVariables) Len() int { return v.List.Len() }

// MacroArg is one actual argument to a macro call: a non-empty run of raw
// tokens, bracket-balanced against its enclosing call's parentheses (see
// parseMacroArgs in macrocall.go).
type MacroArg struct {
	Tokens []token.Token
}

// MacroArgs is the parenthesized, comma-separated actual argument list of a
// macro call.
type MacroArgs struct {
	List List[MacroArg]
}

func (a MacroArgs) Len() int { return a.List.Len() }

// MacroCall is a use site: ?Name or ?Name(args).
type MacroCall struct {
	Question token.Token
	Name     MacroName
	Args     *MacroArgs
}

// Pos is the call's start position: the '?' token's position.
func (c MacroCall) Pos() token.Position { return c.Question.Pos }

// MacroDef is the tagged union of ways a macro may be bound: built from a
// -define directive (StaticMacroDef) or injected programmatically before
// processing begins (DynamicMacroDef), e.g. to seed a host-supplied
// constant. Predefined names such as ?MODULE are not taken from here.
type MacroDef interface {
	isMacroDef()
}

// StaticMacroDef is a macro bound by a -define directive in the input.
type StaticMacroDef struct {
	Name        MacroName
	Variables   *MacroVariables // nil if the definition took no parens at all
	Replacement []token.Token
}

func (StaticMacroDef) isMacroDef() {}

// DynamicMacroDef is a macro whose replacement was supplied by the host
// program rather than parsed from a -define directive. It never has formal
// variables.
type DynamicMacroDef struct {
	Tokens []token.Token
}

func (DynamicMacroDef) isMacroDef() {}

// Branch is one frame of the conditional-inclusion stack, pushed by
// ifdef/ifndef and popped by endif.
type Branch struct {
	InThen  bool
	Entered bool
}
