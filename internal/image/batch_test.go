package imagepkg

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessBatch(t *testing.T) {
	png, err := EncodeBytes(solidImage(40, 20, red), FormatPNG, 0)
	require.NoError(t, err)

	cfg := plainConfig(120, 100)
	cfg.OutputFormat = FormatJPEG
	jobs := []BatchJob{
		{Name: "a.png", Data: png},
		{Name: "broken.png", Data: []byte("nope")},
		{Name: "dir/c.png", Data: png},
	}

	results := ProcessBatch(context.Background(), jobs, cfg, WithWorkers(2))
	require.Len(t, results, 3)

	assert.Equal(t, "a.png", results[0].Name)
	assert.Equal(t, "a_120x100.jpeg", results[0].Filename)
	assert.NoError(t, results[0].Err)
	assert.NotEmpty(t, results[0].Data)
	require.NotNil(t, results[0].Raster)
	assert.Equal(t, 120, results[0].Raster.Bounds().Dx())

	assert.True(t, errors.Is(results[1].Err, ErrDecodeFailure))
	assert.Nil(t, results[1].Data)

	assert.Equal(t, "c_120x100.jpeg", results[2].Filename)
	assert.NoError(t, results[2].Err)

	img, err := Decode(results[2].Data)
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dy())
}

func TestProcessBatch_RenderOptions(t *testing.T) {
	png, err := EncodeBytes(solidImage(10, 10, red), FormatPNG, 0)
	require.NoError(t, err)

	results := ProcessBatch(context.Background(), []BatchJob{{Name: "x.png", Data: png}}, plainConfig(100, 100),
		WithWorkers(0), WithRenderOptions(WithDeviceScale(2)))
	require.NoError(t, results[0].Err)
	assert.Equal(t, 200, results[0].Raster.Bounds().Dx())
}

func TestProcessBatch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	jobs := []BatchJob{{Name: "a.png"}, {Name: "b.png"}}
	results := ProcessBatch(ctx, jobs, DefaultStyleConfig())
	require.Len(t, results, 2)
	for _, r := range results {
		assert.ErrorIs(t, r.Err, context.Canceled)
	}
}

func TestProcessBatch_Empty(t *testing.T) {
	assert.Empty(t, ProcessBatch(context.Background(), nil, DefaultStyleConfig()))
}
