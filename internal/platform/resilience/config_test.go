package resilience

import (
	"testing"
	"time"
)

func TestCircuitBreakerConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     CircuitBreakerConfig
		wantErr bool
	}{
		{name: "defaults", cfg: DefaultCircuitBreakerConfig()},
		{name: "disabled ignores bounds", cfg: CircuitBreakerConfig{}},
		{name: "zero threshold", cfg: CircuitBreakerConfig{Enabled: true, OpenTimeout: time.Second, HalfOpenMaxReq: 1}, wantErr: true},
		{name: "zero timeout", cfg: CircuitBreakerConfig{Enabled: true, FailureThreshold: 1, HalfOpenMaxReq: 1}, wantErr: true},
		{name: "zero half-open", cfg: CircuitBreakerConfig{Enabled: true, FailureThreshold: 1, OpenTimeout: time.Second}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNormalizeCircuitBreakerConfig_FillsZeroValues(t *testing.T) {
	got := NormalizeCircuitBreakerConfig(CircuitBreakerConfig{Enabled: true, FailureThreshold: 3})
	if got.FailureThreshold != 3 {
		t.Fatalf("expected explicit threshold kept, got %d", got.FailureThreshold)
	}
	if got.OpenTimeout != 15*time.Second || got.HalfOpenMaxReq != 2 {
		t.Fatalf("expected defaults filled, got %+v", got)
	}
}
