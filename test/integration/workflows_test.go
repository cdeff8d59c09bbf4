//go:build integration

package integration

import (
	"strings"
	"testing"
	"time"

	"github.com/fivetwenty-io/hsclient/pkg/hs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicCatalog(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	client := config.AnonymousClient(t)
	ctx := TestContext(t, 2*time.Minute)

	types, err := client.Resources().GetTypes(ctx)
	require.NoError(t, err)
	assert.Contains(t, types, "CompositeResource")

	it := client.Resources().List(ctx, hs.NewResourceListParams().WithTypes("CompositeResource"))
	require.True(t, it.HasNext())

	resource, err := it.Next()
	require.NoError(t, err)
	assert.NotEmpty(t, resource.ResourceID)
	assert.Equal(t, "CompositeResource", resource.ResourceType)
}

func TestPublicBagDownload(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	if config.PublicPID == "" {
		t.Skip("HS_INTEGRATION_PUBLIC_PID not set, skipping bag download")
	}

	client := config.AnonymousClient(t)
	ctx := TestContext(t, 10*time.Minute)

	path, err := client.Bags().Download(ctx, config.PublicPID, &hs.BagDownloadOptions{
		Destination: t.TempDir(),
		Wait:        true,
	})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, config.PublicPID+".zip"))
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestResourceLifecycle(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)
	config.SkipIfAnonymous(t)

	client := config.AuthenticatedClient(t)
	ctx := TestContext(t, 5*time.Minute)

	info, err := client.Users().GetUserInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, config.Username, info.Username)

	title := GenerateTestName("hsclient-integration")

	pid, err := client.Resources().Create(ctx, &hs.ResourceCreateRequest{
		ResourceType: "CompositeResource",
		Title:        title,
		Keywords:     []string{"integration", "test"},
	})
	require.NoError(t, err)

	defer func() {
		deleted, err := client.Resources().Delete(ctx, pid)
		assert.NoError(t, err)
		assert.Equal(t, pid, deleted)
	}()

	sysmeta, err := client.Resources().GetSystemMetadata(ctx, pid)
	require.NoError(t, err)
	assert.Equal(t, title, sysmeta.ResourceTitle)

	require.NoError(t, client.Folders().Create(ctx, pid, "data"))

	added, err := client.Files().Add(ctx, pid, &hs.FileUpload{
		Reader:   strings.NewReader("x,y\n1,2\n"),
		Filename: "values.csv",
		Folder:   "data",
	})
	require.NoError(t, err)
	assert.Equal(t, pid, added.ResourceID)

	contents, err := client.Folders().Contents(ctx, pid, "data")
	require.NoError(t, err)
	assert.Contains(t, contents.Files, "values.csv")

	require.NoError(t, client.Functions().MoveOrRename(ctx, pid, "data/values.csv", "data/renamed.csv"))

	files, err := client.Files().List(ctx, pid).All()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Contains(t, files[0].URL, "renamed.csv")

	_, err = client.Files().Get(ctx, pid, "data/values.csv")
	assert.True(t, hs.IsNotFound(err))
}
