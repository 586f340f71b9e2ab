package ch

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/netgraph-io/chwire/compress"
)

func TestDecodeConnectionString(t *testing.T) {
	opt, err := DecodeConnectionString(
		"host=clickhouse.local;port=9000;database=analytics;username=default;" +
			"compress=true;compression_method=zstd;max_retries=5;load_balancing=random",
	)
	require.NoError(t, err)
	require.Equal(t, "clickhouse.local", opt.Host)
	require.Equal(t, 9000, opt.Port)
	require.Equal(t, "analytics", opt.Database)
	require.True(t, opt.Compress)
	require.Equal(t, "zstd", opt.CompressionMethod)
	require.Equal(t, 5, opt.MaxRetries)
	require.Equal(t, "random", opt.LoadBalancing)
}

func TestDSNOptions_ToOptions(t *testing.T) {
	opt, err := DecodeConnectionString("host=h;port=9000;compress=true;compression_method=zstd")
	require.NoError(t, err)

	dialOpt, err := opt.ToOptions()
	require.NoError(t, err)
	require.Equal(t, CompressionEnabled, dialOpt.Compression)
	require.Equal(t, compress.MethodZSTD, dialOpt.CompressionMethod)
}

func TestDSNOptions_Address(t *testing.T) {
	opt, err := DecodeConnectionString("host=h;port=1234")
	require.NoError(t, err)
	require.Equal(t, "h:1234", opt.Address())

	opt2, err := DecodeConnectionString("host=h")
	require.NoError(t, err)
	require.Equal(t, "h:9000", opt2.Address())
}

func TestDSNOptions_AdditionalServers(t *testing.T) {
	opt, err := DecodeConnectionString("host=h;servers=a:9000, b:9000 ,c:9000")
	require.NoError(t, err)
	require.Equal(t, []string{"a:9000", "b:9000", "c:9000"}, opt.AdditionalServers())
}

func TestParseConnectionString_InvalidSegment(t *testing.T) {
	_, err := ParseConnectionString("host=h;bogus")
	require.Error(t, err)
}
