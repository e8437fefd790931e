package thumbnail

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodeSize(t *testing.T, data []byte) (int, int) {
	t.Helper()
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	return cfg.Width, cfg.Height
}

func TestMakeAllSizesFitInside(t *testing.T) {
	tests := []struct {
		name string
		w, h int
	}{
		{"square", 1024, 1024},
		{"landscape", 1792, 1024},
		{"portrait", 1024, 1792},
		{"tiny", 40, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Make(encodePNG(t, tt.w, tt.h), All)
			require.NoError(t, err)
			require.Len(t, out, 3)

			for _, size := range All {
				maxW, maxH, err := size.Bounds()
				require.NoError(t, err)
				gotW, gotH := decodeSize(t, out[size])
				assert.LessOrEqual(t, gotW, int(maxW))
				assert.LessOrEqual(t, gotH, int(maxH))
				assert.True(t, gotW == int(maxW) || gotH == int(maxH), "one side touches the box")

				srcRatio := float64(tt.w) / float64(tt.h)
				gotRatio := float64(gotW) / float64(gotH)
				assert.InDelta(t, srcRatio, gotRatio, srcRatio*0.05)
			}
		})
	}
}

func TestMakeIsDeterministic(t *testing.T) {
	src := encodePNG(t, 300, 200)
	a, err := Make(src, All)
	require.NoError(t, err)
	b, err := Make(src, All)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestMakeAcceptsJPEG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 500, 250))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))

	out, err := Make(buf.Bytes(), []Size{Medium})
	require.NoError(t, err)
	w, h := decodeSize(t, out[Medium])
	assert.Equal(t, 128, w)
	assert.Equal(t, 64, h)
}

func TestMakeErrors(t *testing.T) {
	_, err := Make([]byte("not an image"), All)
	assert.ErrorIs(t, err, ErrUndecodable)

	_, err = Make(encodePNG(t, 10, 10), []Size{"huge"})
	assert.ErrorIs(t, err, ErrUnknownSize)
}

func TestSuffix(t *testing.T) {
	assert.Equal(t, "_small", Small.Suffix())
	assert.Equal(t, "_medium", Medium.Suffix())
	assert.Equal(t, "_large", Large.Suffix())
}

func TestMakeRendersSizesOneAtATime(t *testing.T) {
	defer runtime.GOMAXPROCS(runtime.GOMAXPROCS(1))
	original := encodePNG(t, 1024, 1024)

	baseline := runtime.NumGoroutine()
	var peak atomic.Int64
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
			}
			if n := int64(runtime.NumGoroutine()); n > peak.Load() {
				peak.Store(n)
			}
			runtime.Gosched()
		}
	}()

	thumbs, err := Make(original, All)
	close(done)
	wg.Wait()
	require.NoError(t, err)
	require.Len(t, thumbs, len(All))

	// the sampler plus the single resize worker started at GOMAXPROCS=1
	assert.LessOrEqual(t, peak.Load(), int64(baseline+3))
}
