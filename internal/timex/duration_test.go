package timex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuration_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"string form", `"10m"`, 10 * time.Minute, false},
		{"compound string", `"1h30m"`, 90 * time.Minute, false},
		{"integer nanoseconds", `600000000000`, 10 * time.Minute, false},
		{"invalid string", `"banana"`, 0, true},
		{"invalid type", `true`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := json.Unmarshal([]byte(tt.input), &d)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Duration)
		})
	}
}

func TestDuration_MarshalRoundTrip(t *testing.T) {
	d := Duration{Duration: 10 * time.Minute}
	b, err := json.Marshal(d)
	require.NoError(t, err)

	var back Duration
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, d.Duration, back.Duration)
}
