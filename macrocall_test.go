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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryParseMacroCallWithoutArgsWhenUndefined(t *testing.T) {
	p := newTestPreprocessor(`?FOO bar`)
	call, err := p.tryParseMacroCall()
	require.NoError(t, err)
	require.NotNil(t, call)
	assert.Equal(t, "FOO", call.Name.Value())
	assert.Nil(t, call.Args)
}

func TestTryParseMacroCallReadsArgsWhenMacroTakesParams(t *testing.T) {
	p := newTestPreprocessor(`?FOO(1).`)
	p.macros["FOO"] = StaticMacroDef{
		Name:      MacroName{},
		Variables: &MacroVariables{},
	}
	call, err := p.tryParseMacroCall()
	require.NoError(t, err)
	require.NotNil(t, call.Args)
	assert.Equal(t, 1, call.Args.Len())
}

func TestReadMacroArgUnbalancedCloser(t *testing.T) {
	p := newTestPreprocessor(`1)]`)
	_, _, err := p.readMacroArg()
	require.NoError(t, err)
	_, _, err = p.readMacroArg()
	var unbal *UnbalancedParenError
	require.True(t, errors.As(err, &unbal))
}

func TestReadMacroArgMissingArgument(t *testing.T) {
	p := newTestPreprocessor(`,`)
	_, _, err := p.readMacroArg()
	var missing *MissingMacroArgError
	require.True(t, errors.As(err, &missing))
}

func TestReadMacroArgUnexpectedEof(t *testing.T) {
	p := newTestPreprocessor(`(1, 2`)
	_, _, err := p.readMacroArg()
	var eof *UnexpectedEofError
	require.True(t, errors.As(err, &eof))
}

func TestReadMacroArgsBracketBalancedAcrossNestedCalls(t *testing.T) {
	p := newTestPreprocessor(`(foo(1, 2), bar([3, 4])).`)
	args, err := p.readMacroArgs()
	require.NoError(t, err)
	require.Equal(t, 2, args.Len())
	first := args.List.Values()[0]
	var texts []string
	for _, tok := range first.Tokens {
		texts = append(texts, tok.Text)
	}
	assert.Equal(t, []string{"foo", "(", "1", ",", " ", "2", ")"}, texts)
}

func TestReadMacroArgsEmptyParens(t *testing.T) {
	p := newTestPreprocessor(`().`)
	args, err := p.readMacroArgs()
	require.NoError(t, err)
	assert.Equal(t, 0, args.Len())
}
