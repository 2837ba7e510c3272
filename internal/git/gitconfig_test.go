package git

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"laddr.dev/laddr/testhelpers"
)

func TestConfig(t *testing.T) {
	ctx := context.Background()
	scene := testhelpers.NewScene(t, nil)

	client, err := Open(scene.Dir)
	require.NoError(t, err)

	t.Run("round-trips a key", func(t *testing.T) {
		require.NoError(t, client.ConfigSet(ctx, "stacks.demo.trunk", "main"))

		value, err := client.ConfigGet(ctx, "stacks.demo.trunk")
		require.NoError(t, err)
		require.Equal(t, "main", value)
	})

	t.Run("missing key reads as empty without error", func(t *testing.T) {
		value, err := client.ConfigGet(ctx, "stacks.nope.trunk")
		require.NoError(t, err)
		require.Equal(t, "", value)
	})

	t.Run("get-regexp enumerates matching keys", func(t *testing.T) {
		require.NoError(t, client.ConfigSet(ctx, "stacks.one.trunk", "main"))
		require.NoError(t, client.ConfigSet(ctx, "stacks.one.root", "feature/a"))
		require.NoError(t, client.ConfigSet(ctx, "branch.feature/a.stackname", "one"))

		keys, err := client.ConfigGetRegexp(ctx, `^stacks\.one\.`)
		require.NoError(t, err)
		require.Equal(t, "main", keys["stacks.one.trunk"])
		require.Equal(t, "feature/a", keys["stacks.one.root"])
		require.NotContains(t, keys, "branch.feature/a.stackname")
	})

	t.Run("get-regexp with no matches yields an empty map", func(t *testing.T) {
		keys, err := client.ConfigGetRegexp(ctx, `^nothing\.matches\.`)
		require.NoError(t, err)
		require.Empty(t, keys)
	})

	t.Run("unset removes a key", func(t *testing.T) {
		require.NoError(t, client.ConfigSet(ctx, "stacks.gone.trunk", "main"))
		require.NoError(t, client.ConfigUnset(ctx, "stacks.gone.trunk"))

		value, err := client.ConfigGet(ctx, "stacks.gone.trunk")
		require.NoError(t, err)
		require.Equal(t, "", value)
	})

	t.Run("unsetting an absent key is not an error", func(t *testing.T) {
		require.NoError(t, client.ConfigUnset(ctx, "stacks.never.existed"))
	})
}
