// Package input keeps the pressed/released table for the flight controls and
// feeds it to a flight.Controller.
package input

import (
	"fmt"
	"sort"
	"sync"

	"fbwsim/pkg/flight"
)

// Bindings maps raw key codes (browser KeyboardEvent.code names) to commands.
type Bindings map[string]flight.Command

// DefaultBindings returns arrow keys for attitude and PageUp/PageDown for throttle.
func DefaultBindings() Bindings {
	return Bindings{
		"ArrowUp":    flight.PitchUp,
		"ArrowDown":  flight.PitchDown,
		"ArrowLeft":  flight.BankLeft,
		"ArrowRight": flight.BankRight,
		"PageUp":     flight.ThrottleUp,
		"PageDown":   flight.ThrottleDown,
	}
}

// ParseCommand resolves a command name such as "bank_left".
func ParseCommand(name string) (flight.Command, error) {
	for _, cmd := range flight.Commands {
		if cmd.String() == name {
			return cmd, nil
		}
	}
	return 0, fmt.Errorf("unknown command %q", name)
}

// ParseBindings builds bindings from a command-name -> key-code map.
// Commands missing from names keep their default key.
func ParseBindings(names map[string]string) (Bindings, error) {
	byCmd := make(map[flight.Command]string)
	for code, cmd := range DefaultBindings() {
		byCmd[cmd] = code
	}

	// Deterministic error reporting.
	keys := make([]string, 0, len(names))
	for k := range names {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, name := range keys {
		cmd, err := ParseCommand(name)
		if err != nil {
			return nil, err
		}
		code := names[name]
		if code == "" {
			return nil, fmt.Errorf("empty key code for %s", name)
		}
		byCmd[cmd] = code
	}

	b := make(Bindings, len(byCmd))
	for cmd, code := range byCmd {
		if prev, dup := b[code]; dup {
			return nil, fmt.Errorf("key %q bound to both %s and %s", code, prev, cmd)
		}
		b[code] = cmd
	}
	return b, nil
}

// Keyboard is the key-state table. Attitude commands are level-triggered and
// read through Held; throttle commands fire press listeners on every key-down
// event, auto-repeat included.
type Keyboard struct {
	mu        sync.RWMutex
	bindings  Bindings
	held      map[flight.Command]bool
	listeners map[int]func(flight.Command)
	nextID    int
}

// NewKeyboard creates a keyboard with the given bindings (defaults when nil).
func NewKeyboard(b Bindings) *Keyboard {
	if b == nil {
		b = DefaultBindings()
	}
	return &Keyboard{
		bindings:  b,
		held:      make(map[flight.Command]bool),
		listeners: make(map[int]func(flight.Command)),
	}
}

// KeyDown records a key press. It returns false for codes that are not bound.
func (k *Keyboard) KeyDown(code string) bool {
	k.mu.Lock()
	cmd, ok := k.bindings[code]
	if !ok {
		k.mu.Unlock()
		return false
	}
	k.held[cmd] = true
	var fns []func(flight.Command)
	if !cmd.IsAttitude() {
		fns = k.snapshotListeners()
	}
	k.mu.Unlock()

	for _, fn := range fns {
		fn(cmd)
	}
	return true
}

// KeyUp records a key release. It returns false for codes that are not bound.
func (k *Keyboard) KeyUp(code string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	cmd, ok := k.bindings[code]
	if !ok {
		return false
	}
	k.held[cmd] = false
	return true
}

// Blur releases every key, as when the window loses focus.
func (k *Keyboard) Blur() {
	k.mu.Lock()
	defer k.mu.Unlock()
	for cmd := range k.held {
		k.held[cmd] = false
	}
}

// Held implements flight.CommandSource.
func (k *Keyboard) Held(cmd flight.Command) bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.held[cmd]
}

// HeldCommands returns the commands currently down, in declaration order.
func (k *Keyboard) HeldCommands() []flight.Command {
	k.mu.RLock()
	defer k.mu.RUnlock()
	var out []flight.Command
	for _, cmd := range flight.Commands {
		if k.held[cmd] {
			out = append(out, cmd)
		}
	}
	return out
}

// OnPress implements flight.CommandSource.
func (k *Keyboard) OnPress(fn func(flight.Command)) (cancel func()) {
	k.mu.Lock()
	defer k.mu.Unlock()
	id := k.nextID
	k.nextID++
	k.listeners[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			k.mu.Lock()
			defer k.mu.Unlock()
			delete(k.listeners, id)
		})
	}
}

func (k *Keyboard) snapshotListeners() []func(flight.Command) {
	ids := make([]int, 0, len(k.listeners))
	for id := range k.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(flight.Command), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, k.listeners[id])
	}
	return fns
}
