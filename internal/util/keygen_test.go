package util

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateLicenseKeyFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{4}$`)

	for i := 0; i < 100; i++ {
		key, err := GenerateLicenseKey(DefaultKeyTemplate)
		require.NoError(t, err)
		assert.Regexp(t, pattern, key)
	}
}

func TestGenerateLicenseKeyTemplatePassthrough(t *testing.T) {
	key, err := GenerateLicenseKey("AB-XX-12")
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^AB-[A-Z0-9]{2}-12$`), key)
}

func TestGenerateLicenseKeyNoDuplicates(t *testing.T) {
	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		key, err := GenerateLicenseKey(DefaultKeyTemplate)
		require.NoError(t, err)

		_, dup := seen[key]
		require.False(t, dup, "duplicate key generated: %s", key)
		seen[key] = struct{}{}
	}
}

func TestHashAdminKey(t *testing.T) {
	assert.Equal(t, HashAdminKey("example1337"), HashAdminKey("example1337"))
	assert.NotEqual(t, HashAdminKey("example1337"), HashAdminKey("example1338"))
	assert.Len(t, HashAdminKey("anything"), 64)
	assert.Regexp(t, `^[0-9a-f]{64}$`, HashAdminKey("anything"))
}
