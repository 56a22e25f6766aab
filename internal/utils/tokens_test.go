package utils

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewNumericCodeRange(t *testing.T) {
	for i := 0; i < 500; i++ {
		code, err := NewNumericCode()
		require.NoError(t, err)
		require.True(t, IsNumericCode(code), code)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, 100000)
		require.LessOrEqual(t, n, 999999)
	}
}

func TestIsNumericCode(t *testing.T) {
	require.True(t, IsNumericCode("012345"))
	require.False(t, IsNumericCode("12345"))
	require.False(t, IsNumericCode("1234567"))
	require.False(t, IsNumericCode("12a456"))
	require.False(t, IsNumericCode("１２３４５６"))
}
