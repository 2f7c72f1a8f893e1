package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryBlacklist_RevokeSingleToken(t *testing.T) {
	bl := NewInMemoryTokenBlacklist()
	ctx := context.Background()

	revoked, err := bl.IsBlacklisted(ctx, "jti-wanjiru-session")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, bl.AddToBlacklist(ctx, "jti-wanjiru-session", time.Hour))

	revoked, err = bl.IsBlacklisted(ctx, "jti-wanjiru-session")
	require.NoError(t, err)
	assert.True(t, revoked)

	// Other sessions stay valid.
	revoked, err = bl.IsBlacklisted(ctx, "jti-otieno-session")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestInMemoryBlacklist_EntryExpiresWithToken(t *testing.T) {
	bl := NewInMemoryTokenBlacklist()
	ctx := context.Background()

	require.NoError(t, bl.AddToBlacklist(ctx, "jti-short-lived", 10*time.Millisecond))

	revoked, err := bl.IsBlacklisted(ctx, "jti-short-lived")
	require.NoError(t, err)
	assert.True(t, revoked)

	time.Sleep(20 * time.Millisecond)

	revoked, err = bl.IsBlacklisted(ctx, "jti-short-lived")
	require.NoError(t, err)
	assert.False(t, revoked, "entry should lapse once the token itself has expired")
}

func TestInMemoryBlacklist_UserWideInvalidation(t *testing.T) {
	bl := NewInMemoryTokenBlacklist()
	ctx := context.Background()

	issuedBefore := time.Now()
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, bl.AddUserTokensToBlacklist(ctx, "rep-wanjiru", time.Hour))
	time.Sleep(5 * time.Millisecond)
	issuedAfter := time.Now()

	invalid, err := bl.IsUserTokenInvalidated(ctx, "rep-wanjiru", issuedBefore)
	require.NoError(t, err)
	assert.True(t, invalid, "tokens from before the forced logout are rejected")

	invalid, err = bl.IsUserTokenInvalidated(ctx, "rep-wanjiru", issuedAfter)
	require.NoError(t, err)
	assert.False(t, invalid, "a fresh login after the forced logout is fine")

	// Other users are untouched.
	invalid, err = bl.IsUserTokenInvalidated(ctx, "rep-otieno", issuedBefore)
	require.NoError(t, err)
	assert.False(t, invalid)
}

func TestInMemoryBlacklist_ConcurrentAccess(t *testing.T) {
	bl := NewInMemoryTokenBlacklist()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = bl.AddToBlacklist(ctx, "jti-shared", time.Hour)
		}()
		go func() {
			defer wg.Done()
			_, _ = bl.IsBlacklisted(ctx, "jti-shared")
		}()
	}
	wg.Wait()

	revoked, err := bl.IsBlacklisted(ctx, "jti-shared")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestRedisBlacklistKeys(t *testing.T) {
	bl := NewRedisTokenBlacklistWithClient(nil)

	assert.Equal(t, "simbacrm:token:blacklist:jti:abc", bl.revokedKey("abc"))
	assert.Equal(t, "simbacrm:token:blacklist:user:rep-wanjiru", bl.invalidatedKey("rep-wanjiru"))
}

func TestRedisBlacklistConfigOptions(t *testing.T) {
	opts := RedisTokenBlacklistConfig{
		Host:     "redis.internal",
		Port:     6380,
		Password: "s3cret",
		DB:       2,
	}.options()

	assert.Equal(t, "redis.internal:6380", opts.Addr)
	assert.Equal(t, "s3cret", opts.Password)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 3, opts.MaxRetries)
}
