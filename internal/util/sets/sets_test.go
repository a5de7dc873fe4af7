package sets

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetBasics(t *testing.T) {
	s := New("x86_64", "aarch64")
	require.True(t, s.Has("aarch64"))
	require.False(t, s.Has("armv7"))

	c := s.Clone()
	c.Add("armv7")
	s.Delete("x86_64")

	require.Equal(t, []string{"aarch64"}, Sorted(s))
	require.Equal(t, []string{"aarch64", "armv7", "x86_64"}, Sorted(c))
}

func TestUniquePreservesOrder(t *testing.T) {
	got := Unique([]string{"fftw", "eigen", "fftw", "casadi", "eigen"})
	require.Equal(t, []string{"fftw", "eigen", "casadi"}, got)
	require.Empty(t, Unique[string](nil))
}
