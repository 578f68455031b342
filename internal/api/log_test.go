package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fbwsim/pkg/logging"
)

func TestFormatLogLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "StageChange",
			input: `time=2026-01-18T06:50:46.074+01:00 level=INFO msg="Flight stage changed" component=flightsim from=taxi to=take-off`,
			want:  "06:50:46 Flight stage changed (from=taxi, to=take-off)",
		},
		{
			name:  "LongValuesDropped",
			input: `time=2026-01-18T06:50:46.074+01:00 level=INFO msg="Aircraft reset" x=0 y=120.5 heading=270 origin="{Lat:28.4728 Lon:-16.3386}"`,
			want:  "06:50:46 Aircraft reset (heading=270, x=0, y=120.5)",
		},
		{
			name:  "NotSlog",
			input: "plain text",
			want:  "plain text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatLogLine(tt.input))
		})
	}
}

func TestHandleLatestLog(t *testing.T) {
	_, err := logging.GlobalLogCapture.Write([]byte(`time=2026-01-18T06:50:46.074+01:00 level=INFO msg="Liftoff" speed=31.2` + "\n"))
	require.NoError(t, err)

	w := httptest.NewRecorder()
	handleLatestLog(w, httptest.NewRequest("GET", "/api/log/latest", http.NoBody))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "06:50:46 Liftoff (speed=31.2)", body["log"])
}
