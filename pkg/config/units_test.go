package config

import (
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{"10s", 10 * time.Second, false},
		{"50ms", 50 * time.Millisecond, false},
		{"1.5h", 90 * time.Minute, false},
		{"1d", 24 * time.Hour, false},
		{"1w", 168 * time.Hour, false},
		{"2d2h", 50 * time.Hour, false},
		{"", 0, false},
		{"invalid", 0, true},
		{"2d junk", 0, true},
		{"3dx", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseDuration(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDuration(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.expected {
			t.Errorf("ParseDuration(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestYAMLUnmarshal(t *testing.T) {
	type testConfig struct {
		Tick     Duration `yaml:"tick"`
		Interval Duration `yaml:"interval"`
		Keep     Duration `yaml:"keep"`
	}

	yamlData := `
tick: 20ms
interval: 250
keep: 2d
`
	var cfg testConfig
	if err := yaml.Unmarshal([]byte(yamlData), &cfg); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if cfg.Tick.Std() != 20*time.Millisecond {
		t.Errorf("Expected 20ms, got %v", cfg.Tick.Std())
	}
	if cfg.Interval.Std() != 250*time.Millisecond {
		t.Errorf("Expected bare number as 250ms, got %v", cfg.Interval.Std())
	}
	if cfg.Keep.Std() != 48*time.Hour {
		t.Errorf("Expected 48h, got %v", cfg.Keep.Std())
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if want := "tick: 20ms\n"; string(out[:len(want)]) != want {
		t.Errorf("unexpected marshal output %q", out)
	}
}
