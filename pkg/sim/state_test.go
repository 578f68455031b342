package sim

import "testing"

func TestState_Accepts(t *testing.T) {
	tests := []struct {
		state State
		want  bool
	}{
		{StateActive, true},
		{StateInactive, true},
		{StateDisconnected, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.Accepts(); got != tt.want {
				t.Errorf("%s.Accepts() = %v, want %v", tt.state, got, tt.want)
			}
		})
	}
}
