package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPNRShape(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		p, err := NewPNR()
		require.NoError(t, err)
		require.Len(t, p, PNRLength)
		require.True(t, ValidPNR(p), p)
		seen[p] = true
	}
	assert.Len(t, seen, 500)
}

func TestValidPNR(t *testing.T) {
	assert.True(t, ValidPNR("AB12CD34EF"))
	assert.False(t, ValidPNR("ab12cd34ef"))
	assert.False(t, ValidPNR("AB12CD34E"))
	assert.False(t, ValidPNR("AB12CD34EF0"))
	assert.False(t, ValidPNR("AB12-D34EF"))
	assert.Equal(t, "AB12CD34EF", NormalizePNR("  ab12cd34ef\n"))
}
