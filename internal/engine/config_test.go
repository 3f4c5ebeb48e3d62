package engine

import (
	"testing"
	"time"
)

func TestInitResponseLimitClamp(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{"below floor clamped", 500, MinResponseLimit},
		{"at floor kept", 1000, 1000},
		{"above floor kept", 50000, 50000},
		{"zero keeps pagination disabled", 0, 0},
		{"negative keeps pagination disabled", -1, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Init(Config{ResponseLimit: tt.in})
			if Cfg.ResponseLimit != tt.want {
				t.Errorf("ResponseLimit = %d, want %d", Cfg.ResponseLimit, tt.want)
			}
		})
	}
}

func TestInitDefaults(t *testing.T) {
	Init(Config{})
	if Cfg.MaxTranscriptChars != DefaultMaxTranscriptChars {
		t.Errorf("MaxTranscriptChars = %d, want %d", Cfg.MaxTranscriptChars, DefaultMaxTranscriptChars)
	}
	if Cfg.FetchTimeout != 15*time.Second {
		t.Errorf("FetchTimeout = %v, want 15s", Cfg.FetchTimeout)
	}
	if Cfg.HTTPClient == nil {
		t.Error("HTTPClient must be defaulted when not injected")
	}
}
