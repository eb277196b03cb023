package scheduler

import (
	"testing"
	"time"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:    "valid default config",
			config:  DefaultConfig(),
			wantErr: false,
		},
		{
			name: "workers too low",
			config: Config{
				Workers:       0,
				MaxConcurrent: 2,
				MaxRetries:    2,
				DrainTimeout:  30 * time.Second,
			},
			wantErr: true,
		},
		{
			name: "workers too high",
			config: Config{
				Workers:       101,
				MaxConcurrent: 2,
				MaxRetries:    2,
				DrainTimeout:  30 * time.Second,
			},
			wantErr: true,
		},
		{
			name: "max concurrent too low",
			config: Config{
				Workers:       2,
				MaxConcurrent: 0,
				MaxRetries:    2,
				DrainTimeout:  30 * time.Second,
			},
			wantErr: true,
		},
		{
			name: "negative max retries",
			config: Config{
				Workers:       2,
				MaxConcurrent: 2,
				MaxRetries:    -1,
				DrainTimeout:  30 * time.Second,
			},
			wantErr: true,
		},
		{
			name: "zero max retries is allowed",
			config: Config{
				Workers:       2,
				MaxConcurrent: 2,
				MaxRetries:    0,
				DrainTimeout:  30 * time.Second,
			},
			wantErr: false,
		},
		{
			name: "drain timeout too short",
			config: Config{
				Workers:       2,
				MaxConcurrent: 2,
				MaxRetries:    2,
				DrainTimeout:  500 * time.Millisecond,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
