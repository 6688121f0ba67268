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
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EngFlow/erlpp/token"
)

func toks(texts ...string) []token.Token {
	out := make([]token.Token, len(texts))
	for i, t := range texts {
		out[i] = token.New(token.Symbol, t, token.Position{File: "x.erl", Line: 1, Column: i + 1})
	}
	return out
}

func TestReaderReadsInOrder(t *testing.T) {
	r := newReader(token.NewSliceSource(toks("a", "b", "c")))
	for _, want := range []string{"a", "b", "c"} {
		tok, err := r.readToken()
		require.NoError(t, err)
		assert.Equal(t, want, tok.Text)
	}
	_, err := r.readToken()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReaderUnreadRestoresExactToken(t *testing.T) {
	r := newReader(token.NewSliceSource(toks("a", "b")))
	first, err := r.readToken()
	require.NoError(t, err)
	r.unreadToken(first)
	again, err := r.readToken()
	require.NoError(t, err)
	assert.Equal(t, first, again)
}

func TestReaderUnreadTokensPreservesOrder(t *testing.T) {
	r := newReader(token.NewSliceSource(toks("c", "d")))
	r.unreadTokens(toks("a", "b"))
	var got []string
	for i := 0; i < 4; i++ {
		tok, err := r.readToken()
		require.NoError(t, err)
		got = append(got, tok.Text)
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, got)
}

func TestReaderIncludeStackDrainsBeforePrimary(t *testing.T) {
	r := newReader(token.NewSliceSource(toks("outer")))
	r.addIncludedText("inc.erl", token.NewSliceSource(toks("inner")), nil)
	first, err := r.readToken()
	require.NoError(t, err)
	assert.Equal(t, "inner", first.Text)
	second, err := r.readToken()
	require.NoError(t, err)
	assert.Equal(t, "outer", second.Text)
}

func TestReaderIncludeStackInvokesDoneOnExhaustion(t *testing.T) {
	r := newReader(token.NewSliceSource(toks("outer")))
	closed := false
	r.addIncludedText("inc.erl", token.NewSliceSource(toks("inner")), func() { closed = true })
	_, err := r.readToken()
	require.NoError(t, err)
	assert.False(t, closed)
	_, err = r.readToken()
	require.NoError(t, err)
	assert.True(t, closed)
}

func TestReaderTryReadKindUnreadsOnMismatch(t *testing.T) {
	r := newReader(token.NewSliceSource([]token.Token{
		token.New(token.Atom, "foo", token.Position{}),
	}))
	_, ok, err := r.tryReadKind(token.Variable)
	require.NoError(t, err)
	assert.False(t, ok)

	tok, err := r.readKind(token.Atom)
	require.NoError(t, err)
	assert.Equal(t, "foo", tok.Text)
}
