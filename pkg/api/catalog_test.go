package api

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackISOs(t *testing.T) {
	isos := FallbackISOs()
	require.NotEmpty(t, isos)

	for _, iso := range isos {
		assert.NotEmpty(t, iso.ID)
		assert.NotEmpty(t, iso.Name)
	}

	ids := lo.Map(isos, func(iso ISO, _ int) string { return iso.ID })
	assert.Contains(t, ids, "ubuntu-24.04-live-server")
	assert.Contains(t, ids, "debian-12-netinst")
}

func TestMergeISOCatalog_RemoteWinsOnCollision(t *testing.T) {
	remote := []ISO{
		{ID: "ubuntu-24.04-live-server", Name: "Ubuntu (downloaded)", Path: "/isos/ubuntu.iso"},
	}

	merged := mergeISOCatalog(remote)

	match, found := lo.Find(merged, func(iso ISO) bool {
		return iso.ID == "ubuntu-24.04-live-server"
	})
	require.True(t, found)
	assert.Equal(t, "Ubuntu (downloaded)", match.Name)
	assert.Equal(t, "/isos/ubuntu.iso", match.Path)

	// No duplicate for the colliding ID
	count := lo.CountBy(merged, func(iso ISO) bool {
		return iso.ID == "ubuntu-24.04-live-server"
	})
	assert.Equal(t, 1, count)
}

func TestMergeISOCatalog_EmptyRemoteFallsBack(t *testing.T) {
	merged := mergeISOCatalog(nil)
	assert.Equal(t, FallbackISOs(), merged)
}

func TestMergeISOCatalog_RemoteOnlyEntriesKept(t *testing.T) {
	remote := []ISO{{ID: "custom-1", Name: "Custom ISO"}}

	merged := mergeISOCatalog(remote)

	ids := lo.Map(merged, func(iso ISO, _ int) string { return iso.ID })
	assert.Contains(t, ids, "custom-1")
	assert.Greater(t, len(merged), 1)
}
