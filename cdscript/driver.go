// Package cdscript drives a cdrom.Device from small Lua scripts via
// gopher-lua, exposing the real port-level register interface (poke/
// peek) plus tick and expect helpers for scripted assertions. It is the
// integration-level complement to the cdrom package's unit tests,
// grounded on github.com/yuin/gopher-lua, present but unused in
// _examples/IntuitionAmiga-IntuitionEngine/go.mod.
package cdscript

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/go-psx/psxcd/cdrom"
)

// Driver exposes a cdrom.Device to a Lua script as four globals:
//
//	poke(port, value)      -- cdrom.Device.Store
//	peek(port) -> value    -- cdrom.Device.Load
//	tick(n)                -- cdrom.Device.Execute
//	expect(got, want, msg) -- raises a Lua error (and fails the run) on mismatch
type Driver struct {
	device *cdrom.Device
	state  *lua.LState
}

// New wraps device for scripting.
func New(device *cdrom.Device) *Driver {
	d := &Driver{device: device, state: lua.NewState()}
	d.registerGlobals()
	return d
}

// Close releases the Lua interpreter.
func (d *Driver) Close() { d.state.Close() }

func (d *Driver) registerGlobals() {
	d.state.SetGlobal("poke", d.state.NewFunction(func(L *lua.LState) int {
		port := uint8(L.CheckInt(1))
		value := uint8(L.CheckInt(2))
		d.device.Store(port, value)
		return 0
	}))

	d.state.SetGlobal("peek", d.state.NewFunction(func(L *lua.LState) int {
		port := uint8(L.CheckInt(1))
		L.Push(lua.LNumber(d.device.Load(port)))
		return 1
	}))

	d.state.SetGlobal("tick", d.state.NewFunction(func(L *lua.LState) int {
		n := int32(L.CheckInt64(1))
		d.device.Execute(n)
		return 0
	}))

	d.state.SetGlobal("expect", d.state.NewFunction(func(L *lua.LState) int {
		got := L.CheckInt64(1)
		want := L.CheckInt64(2)
		msg := "expect failed"
		if L.GetTop() >= 3 {
			msg = L.CheckString(3)
		}
		if got != want {
			L.RaiseError("%s: got %d, want %d", msg, got, want)
		}
		return 0
	}))
}

// RunFile executes the Lua script at path against the wrapped device.
func (d *Driver) RunFile(path string) error {
	if err := d.state.DoFile(path); err != nil {
		return fmt.Errorf("cdscript: %s: %w", path, err)
	}
	return nil
}

// RunString executes a Lua script body directly, useful for embedding
// short scenario scripts in Go tests without a scripts/ directory.
func (d *Driver) RunString(script string) error {
	if err := d.state.DoString(script); err != nil {
		return fmt.Errorf("cdscript: %w", err)
	}
	return nil
}
