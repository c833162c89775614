package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/albapepper/meditrack-alerts/internal/config"
)

func TestCheckTickMode(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		dryRun  bool
		wantErr bool
	}{
		{name: "memory real tick", backend: config.DedupMemory, wantErr: true},
		{name: "memory dry run", backend: config.DedupMemory, dryRun: true},
		{name: "redis real tick", backend: config.DedupRedis},
		{name: "redis dry run", backend: config.DedupRedis, dryRun: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkTickMode(tt.backend, tt.dryRun)
			if tt.wantErr {
				assert.ErrorContains(t, err, "--dry-run")
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestTickCmd_DryRunFlag(t *testing.T) {
	f := tickCmd().Flags().Lookup("dry-run")
	if assert.NotNil(t, f) {
		assert.Equal(t, "false", f.DefValue)
	}
}
