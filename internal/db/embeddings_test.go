package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatVector(t *testing.T) {
	assert.Equal(t, "[1,0.5,-2]", formatVector([]float32{1, 0.5, -2}))
	assert.Equal(t, "[]", formatVector(nil))
}

func TestParseVector(t *testing.T) {
	vector, err := parseVector("[1, 0.5, -2]")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0.5, -2}, vector)

	vector, err = parseVector("[]")
	require.NoError(t, err)
	assert.Empty(t, vector)
}

func TestParseVectorInvalid(t *testing.T) {
	_, err := parseVector("1,2,3")
	require.Error(t, err)

	_, err = parseVector("[1,abc]")
	require.Error(t, err)
}

func TestFormatParseRoundTrip(t *testing.T) {
	in := []float32{0.123456, -0.987654, 42}
	out, err := parseVector(formatVector(in))
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
