package compression

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte(`{"time":1000000000,"host":"hostA","value":1.5}`), 200)

	for _, alg := range []Algorithm{None, Gzip, Snappy, LZ4} {
		t.Run(string(alg), func(t *testing.T) {
			c, err := NewCompressor(alg, Default)
			require.NoError(t, err)
			assert.Equal(t, alg, c.Algorithm())

			compressed, err := c.Compress(payload)
			require.NoError(t, err)
			if alg != None {
				assert.Less(t, len(compressed), len(payload))
			}

			out, err := c.Decompress(compressed)
			require.NoError(t, err)
			assert.Equal(t, payload, out)
		})
	}
}

func TestRoundTripEmpty(t *testing.T) {
	for _, alg := range []Algorithm{None, Gzip, Snappy, LZ4} {
		c, err := NewCompressor(alg, Default)
		require.NoError(t, err)
		compressed, err := c.Compress([]byte{})
		require.NoError(t, err)
		out, err := c.Decompress(compressed)
		require.NoError(t, err)
		assert.Empty(t, out)
	}
}

func TestGzipLevels(t *testing.T) {
	payload := bytes.Repeat([]byte("abcdefgh"), 1000)
	for _, level := range []Level{Fastest, Default, Best} {
		c, err := NewCompressor(Gzip, level)
		require.NoError(t, err)
		compressed, err := c.Compress(payload)
		require.NoError(t, err)
		out, err := c.Decompress(compressed)
		require.NoError(t, err)
		assert.Equal(t, payload, out)
	}
}

func TestUnknownAlgorithm(t *testing.T) {
	_, err := NewCompressor("zstd", Default)
	require.Error(t, err)
}

func TestDecompressGarbage(t *testing.T) {
	for _, alg := range []Algorithm{Gzip, Snappy} {
		c, err := NewCompressor(alg, Default)
		require.NoError(t, err)
		_, err = c.Decompress([]byte("definitely not compressed"))
		assert.Error(t, err, string(alg))
	}
}
