package main

import (
	"kfs/device/keyboard"
	"strings"

	"github.com/gdamore/tcell/v2"
	lua "github.com/yuin/gopher-lua"
)

// scriptKeys maps the key names accepted by the key() script function to
// their make codes.
var scriptKeys = map[string]uint8{
	"up":        navCodes[tcell.KeyUp],
	"down":      navCodes[tcell.KeyDown],
	"left":      navCodes[tcell.KeyLeft],
	"right":     navCodes[tcell.KeyRight],
	"enter":     editCodes[tcell.KeyEnter],
	"backspace": editCodes[tcell.KeyBackspace],
	"tab":       editCodes[tcell.KeyTab],
	"escape":    editCodes[tcell.KeyEscape],
}

// runScript drives m from a Lua script instead of a keyboard. Scripts get
// the following globals:
//
//	type(text)       types text; "\n" presses enter
//	key(name)        presses and releases a named key (up, down, enter, ...)
//	row(n)           returns frame row n without trailing blanks
//	expect(n, text)  raises an error unless row(n) == text
//	halted()         reports whether the machine executed halt
//	boots()          returns the number of boots so far
func runScript(m *machine, src string) error {
	L := lua.NewState()
	defer L.Close()

	var codes []uint8
	L.SetGlobal("type", L.NewFunction(func(L *lua.LState) int {
		text := L.CheckString(1)
		codes = codes[:0]
		for i := 0; i < len(text); i++ {
			codes = charCodes(codes, text[i])
		}
		m.feed(codes)
		return 0
	}))

	L.SetGlobal("key", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		code, ok := scriptKeys[name]
		if !ok {
			L.ArgError(1, "unknown key "+name)
			return 0
		}
		m.feed([]uint8{code, code | keyboard.BreakBit})
		return 0
	}))

	L.SetGlobal("row", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(m.row(checkRow(L, m))))
		return 1
	}))

	L.SetGlobal("expect", L.NewFunction(func(L *lua.LState) int {
		row := checkRow(L, m)
		exp := L.CheckString(2)
		if got := m.row(row); got != exp {
			L.RaiseError("row %d: expected %q; got %q", row, exp, got)
		}
		return 0
	}))

	L.SetGlobal("halted", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(m.halted))
		return 1
	}))

	L.SetGlobal("boots", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(m.boots))
		return 1
	}))

	return L.DoString(src)
}

func checkRow(L *lua.LState, m *machine) uint32 {
	row := L.CheckInt(1)
	if row < 0 || uint32(row) >= m.rows {
		L.ArgError(1, "row out of range")
	}
	return uint32(row)
}

// row returns the characters of a frame row without trailing blanks.
func (m *machine) row(row uint32) string {
	var sb strings.Builder
	for col := uint32(0); col < m.cols; col++ {
		sb.WriteByte(m.cons.ReadCell(row, col).Ch)
	}
	return strings.TrimRight(sb.String(), " ")
}
