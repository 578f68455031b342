package api

import (
	"context"
	"strings"
	"sync"

	"fbwsim/pkg/flight"
	"fbwsim/pkg/geo"
	"fbwsim/pkg/sim"
)

// fakeClient records every call and serves fixed telemetry.
type fakeClient struct {
	mu          sync.Mutex
	tel         sim.Telemetry
	status      flight.Status
	events      []InputEvent
	resets      []flight.TransformReset
	startResets int
	closed      bool
}

func (f *fakeClient) GetTelemetry(ctx context.Context) (sim.Telemetry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return sim.Telemetry{}, sim.ErrClosed
	}
	return f.tel, nil
}

func (f *fakeClient) GetState() sim.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return sim.StateDisconnected
	}
	return sim.StateActive
}

func (f *fakeClient) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeClient) record(ev InputEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return sim.ErrClosed
	}
	f.events = append(f.events, ev)
	return nil
}

func bound(code string) bool {
	return strings.HasPrefix(code, "Arrow") || strings.HasPrefix(code, "Page")
}

func (f *fakeClient) KeyDown(code string) (bool, error) {
	return bound(code), f.record(InputEvent{Type: InputKeyDown, Code: code})
}

func (f *fakeClient) KeyUp(code string) (bool, error) {
	return bound(code), f.record(InputEvent{Type: InputKeyUp, Code: code})
}

func (f *fakeClient) Blur() error {
	return f.record(InputEvent{Type: InputBlur})
}

func (f *fakeClient) Reset(r flight.TransformReset) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return sim.ErrClosed
	}
	f.resets = append(f.resets, r)
	return nil
}

func (f *fakeClient) ResetToStart() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return sim.ErrClosed
	}
	f.startResets++
	return nil
}

func (f *fakeClient) Status() (flight.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return flight.Status{}, sim.ErrClosed
	}
	return f.status, nil
}

func (f *fakeClient) Events() []InputEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]InputEvent(nil), f.events...)
}

// testOrigin anchors the fake scene.
var testOrigin = geo.Point{Lat: 28.4728, Lon: -16.3386}

func (f *fakeClient) Frame() geo.LocalFrame {
	return geo.LocalFrame{Origin: testOrigin}
}

var _ Controllable = (*fakeClient)(nil)

func (f *fakeClient) Resets() []flight.TransformReset {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]flight.TransformReset(nil), f.resets...)
}

func (f *fakeClient) StartResets() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.startResets
}
