package functions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileRegex_ReusesCompiledPattern(t *testing.T) {
	first, err := compileRegex("^a+$", "i")
	require.NoError(t, err)
	regexCache.Wait()

	second, err := compileRegex("^a+$", "i")
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.True(t, second.MatchString("AAA"))

	other, err := compileRegex("^a+$", "")
	require.NoError(t, err)
	assert.NotSame(t, first, other)
	assert.False(t, other.MatchString("AAA"))
}

func TestCompileRegex_KeysDoNotCollide(t *testing.T) {
	_, err := compileRegex("/x", "i")
	require.NoError(t, err)
	regexCache.Wait()

	// same concatenation, but "i/" is not a valid flag set
	_, err = compileRegex("x", "i/")
	assert.Error(t, err)
}

func TestCompileRegex_ErrorsAreNotCached(t *testing.T) {
	_, err := compileRegex("(", "")
	require.Error(t, err)
	regexCache.Wait()
	_, err = compileRegex("(", "")
	assert.Error(t, err)
}
