package eos

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPressureRhoeInverse(t *testing.T) {
	tests := []struct {
		gamma, rho, p float64
	}{
		{1.4, 1.0, 1.0},
		{5.0 / 3.0, 0.125, 0.1},
		{1.4, 1e-3, 2.5e4},
	}
	for _, tt := range tests {
		e := Rhoe(tt.gamma, tt.p) / tt.rho
		assert.InDelta(t, tt.p, Pressure(tt.gamma, tt.rho, e), 1e-12*tt.p)
		assert.InDelta(t, tt.rho, Dens(tt.gamma, tt.p, e), 1e-12*tt.rho)
	}
}

func TestSoundSpeed(t *testing.T) {
	assert.InDelta(t, 1.1832159566199232, SoundSpeed(1.4, 1.0, 1.0), 1e-14)
}
