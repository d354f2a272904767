package host

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	lua "github.com/yuin/gopher-lua"
)

// Trigger decides from the caret line whether completions should open.
type Trigger interface {
	ShouldComplete(line string) bool
}

// TriggerFunc adapts a function to Trigger.
type TriggerFunc func(line string) bool

// ShouldComplete calls f.
func (f TriggerFunc) ShouldComplete(line string) bool { return f(line) }

// PrefixTrigger fires when the line ends with one of tokens.
func PrefixTrigger(tokens ...string) Trigger {
	toks := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t != "" {
			toks = append(toks, t)
		}
	}
	return TriggerFunc(func(line string) bool {
		for _, t := range toks {
			if strings.HasSuffix(line, t) {
				return true
			}
		}
		return false
	})
}

// IdentifierTrigger fires when the identifier before the caret has at
// least minLen runes.
func IdentifierTrigger(minLen int) Trigger {
	if minLen < 1 {
		minLen = 1
	}
	return TriggerFunc(func(line string) bool {
		word := identifierSuffix(line)
		if word == "" {
			return false
		}
		first := []rune(word)[0]
		return !unicode.IsDigit(first) && len([]rune(word)) >= minLen
	})
}

// AnyTrigger fires when any of triggers does.
func AnyTrigger(triggers ...Trigger) Trigger {
	return TriggerFunc(func(line string) bool {
		for _, t := range triggers {
			if t != nil && t.ShouldComplete(line) {
				return true
			}
		}
		return false
	})
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// identifierSuffix returns the identifier ending at the end of line.
func identifierSuffix(line string) string {
	runes := []rune(line)
	i := len(runes)
	for i > 0 && isIdentRune(runes[i-1]) {
		i--
	}
	return string(runes[i:])
}

const luaTimeout = 50 * time.Millisecond

// LuaPredicate is a Trigger backed by a Lua chunk defining
// should_complete(line). Only the base, string, table and math libraries
// are available to the chunk.
type LuaPredicate struct {
	L       *lua.LState
	fn      lua.LValue
	timeout time.Duration
	err     error
}

// LuaTrigger compiles source into a predicate.
func LuaTrigger(source string) (*LuaPredicate, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, open := range []lua.LGFunction{lua.OpenBase, lua.OpenString, lua.OpenTable, lua.OpenMath} {
		open(L)
	}
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require"} {
		L.SetGlobal(name, lua.LNil)
	}

	ctx, cancel := context.WithTimeout(context.Background(), luaTimeout)
	defer cancel()
	L.SetContext(ctx)
	if err := L.DoString(source); err != nil {
		L.Close()
		return nil, fmt.Errorf("lua trigger: %w", err)
	}
	fn := L.GetGlobal("should_complete")
	if fn.Type() != lua.LTFunction {
		L.Close()
		return nil, ErrNoPredicate
	}
	return &LuaPredicate{L: L, fn: fn, timeout: luaTimeout}, nil
}

// ShouldComplete runs the predicate. Errors and timeouts count as false
// and are kept for Err.
func (p *LuaPredicate) ShouldComplete(line string) bool {
	if p == nil || p.L == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	p.L.SetContext(ctx)

	top := p.L.GetTop()
	err := p.L.CallByParam(lua.P{Fn: p.fn, NRet: 1, Protect: true}, lua.LString(line))
	if err != nil {
		p.err = err
		p.L.SetTop(top)
		return false
	}
	ret := p.L.Get(-1)
	p.L.SetTop(top)
	p.err = nil
	return lua.LVAsBool(ret)
}

// Err returns the error of the last evaluation, if it failed.
func (p *LuaPredicate) Err() error { return p.err }

// Close releases the Lua state.
func (p *LuaPredicate) Close() {
	if p != nil && p.L != nil {
		p.L.Close()
		p.L = nil
	}
}
