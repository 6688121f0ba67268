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

// reader is the pull cursor with pushback the driver and the directive and
// macro-call parsers all read through. It holds the primary token.Source, a
// stack of secondary sources (one per currently-spliced include file), and
// an unread deque used both to backtrack speculative parses and to feed
// expanded tokens back for rescanning.
//
// reader itself has no notion of directives, macros or masking; it is pure
// plumbing, mirroring the separation token_reader.go draws between reading
// mechanics and parser.go's grammar.
type reader struct {
	src     token.Source
	include []*includeFrame
	unread  []token.Token
}

type includeFrame struct {
	path string
	src  token.Source
	done func()
}

func newReader(src token.Source) *reader {
	return &reader{src: src}
}

// readToken pops from unread if non-empty; else drains the top of the
// include stack, discarding exhausted frames; else pulls from the primary
// source. Returns io.EOF at exhaustion.
func (r *reader) readToken() (token.Token, error) {
	if len(r.unread) > 0 {
		t := r.unread[0]
		r.unread = r.unread[1:]
		return t, nil
	}
	for len(r.include) > 0 {
		top := r.include[len(r.include)-1]
		t, err := top.src.Next()
		if err == nil {
			return t, nil
		}
		if !errors.Is(err, io.EOF) {
			return token.Token{}, &TokenizeError{Cause: err}
		}
		r.include = r.include[:len(r.include)-1]
		if top.done != nil {
			top.done()
		}
	}
	t, err := r.src.Next()
	if err != nil && !errors.Is(err, io.EOF) {
		return token.Token{}, &TokenizeError{Cause: err}
	}
	return t, err
}

// unreadToken pushes t back to the front of the unread deque.
func (r *reader) unreadToken(t token.Token) {
	r.unread = append([]token.Token{t}, r.unread...)
}

// unreadTokens pushes a whole sequence back, preserving its order: the
// first element of ts will be the next one readToken returns. The expansion
// engine uses it to feed a nested macro's expansion back into the local
// reader that rescans a replacement list, so macros produced by other
// macros are expanded too. Directives are not looked for during that
// rescan, and the driver emits finished expansions from its queue without
// reading them again, so a directive inside an expansion is not recognized.
func (r *reader) unreadTokens(ts []token.Token) {
	if len(ts) == 0 {
		return
	}
	merged := make([]token.Token, 0, len(ts)+len(r.unread))
	merged = append(merged, ts...)
	merged = append(merged, r.unread...)
	r.unread = merged
}

// addIncludedText pushes src, tagged with path, onto the include stack.
// Subsequent reads drain it before returning to the enclosing source. done,
// if non-nil, runs exactly once when the frame is popped after exhaustion.
func (r *reader) addIncludedText(path string, src token.Source, done func()) {
	r.include = append(r.include, &includeFrame{path: path, src: src, done: done})
}

// includeDepth reports how many files are currently spliced in. Include-cycle
// detection does not use it; the driver tracks open include paths instead.
func (r *reader) includeDepth() int { return len(r.include) }

// readKind reads one token and fails with UnexpectedTokenError if its kind
// does not match, unreading the offending token first.
func (r *reader) readKind(k token.Kind) (token.Token, error) {
	t, err := r.readToken()
	if err != nil {
		return token.Token{}, err
	}
	if t.Kind != k {
		r.unreadToken(t)
		return token.Token{}, &UnexpectedTokenError{Token: t, Expected: k.String()}
	}
	return t, nil
}

// tryReadKind attempts readKind; on UnexpectedTokenError or io.EOF it
// reports ok=false rather than propagating an error, matching try_read<T>.
func (r *reader) tryReadKind(k token.Kind) (t token.Token, ok bool, err error) {
	t, err = r.readKind(k)
	if err == nil {
		return t, true, nil
	}
	var ute *UnexpectedTokenError
	if errors.As(err, &ute) || errors.Is(err, io.EOF) {
		return token.Token{}, false, nil
	}
	return token.Token{}, false, err
}

// readExpectedSymbol reads a Symbol token and verifies its text equals
// value, unreading on mismatch.
func (r *reader) readExpectedSymbol(value string) (token.Token, error) {
	t, err := r.readKind(token.Symbol)
	if err != nil {
		return token.Token{}, err
	}
	if t.Text != value {
		r.unreadToken(t)
		return token.Token{}, &UnexpectedTokenError{Token: t, Expected: "symbol " + value}
	}
	return t, nil
}

func (r *reader) tryReadExpectedSymbol(value string) (t token.Token, ok bool, err error) {
	t, err = r.readExpectedSymbol(value)
	if err == nil {
		return t, true, nil
	}
	var ute *UnexpectedTokenError
	if errors.As(err, &ute) || errors.Is(err, io.EOF) {
		return token.Token{}, false, nil
	}
	return token.Token{}, false, err
}

// readExpectedAtom reads an Atom token and verifies its decoded value
// equals value, unreading on mismatch.
func (r *reader) readExpectedAtom(value string) (token.Token, error) {
	t, err := r.readKind(token.Atom)
	if err != nil {
		return token.Token{}, err
	}
	if t.Value != value {
		r.unreadToken(t)
		return token.Token{}, &UnexpectedTokenError{Token: t, Expected: "atom " + value}
	}
	return t, nil
}

// readMacroName reads an atom or a variable and wraps it as a MacroName.
func (r *reader) readMacroName() (MacroName, error) {
	t, err := r.readToken()
	if err != nil {
		return MacroName{}, err
	}
	if t.Kind != token.Atom && t.Kind != token.Variable {
		r.unreadToken(t)
		return MacroName{}, &UnexpectedTokenError{Token: t, Expected: "macro name"}
	}
	return MacroName{Token: t}, nil
}
