package security_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/urgency-engine/pkg/config"
	"github.com/angelmondragon/urgency-engine/pkg/security"
)

func cheapPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8 * 1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func TestHashAndVerifyAdminPassword(t *testing.T) {
	hash, err := security.HashPassword("launch-day", cheapPasswordConfig())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=8192,t=1,p=1$"), hash)

	ok, err := security.VerifyPassword("launch-day", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = security.VerifyPassword("launch-night", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	_, err := security.HashPassword("", cheapPasswordConfig())
	assert.Error(t, err)
}

func TestDecodeHashRejectsMalformed(t *testing.T) {
	for _, encoded := range []string{
		"not-a-hash",
		"$argon2i$v=19$m=8192,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=16$m=8192,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=0,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=8192,t=1,p=1$!!$a2V5",
	} {
		_, err := security.VerifyPassword("irrelevant", encoded)
		assert.True(t, errors.Is(err, security.ErrInvalidHash), encoded)
	}
}

func TestNeedsRehashComparesCosts(t *testing.T) {
	weak, err := security.HashPassword("launch-day", cheapPasswordConfig())
	require.NoError(t, err)

	stronger := cheapPasswordConfig()
	stronger.ArgonTime = 3
	needs, err := security.NeedsRehash(weak, stronger)
	require.NoError(t, err)
	assert.True(t, needs)

	needs, err = security.NeedsRehash(weak, cheapPasswordConfig())
	require.NoError(t, err)
	assert.False(t, needs)
}
