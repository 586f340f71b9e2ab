package chpool

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	ch "github.com/netgraph-io/chwire"
	"github.com/netgraph-io/chwire/proto"
)

// PoolConn dials a pool against the address in CH_GO_TEST_ADDRESS, skipping
// the test if it is unset. There is no server available in this environment,
// so every test using it is expected to skip outside of an integration run.
func PoolConn(t *testing.T) *Pool {
	t.Helper()
	addr := os.Getenv("CH_GO_TEST_ADDRESS")
	if addr == "" {
		t.Skip("CH_GO_TEST_ADDRESS not set, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	p, err := Dial(ctx, Options{
		Address: addr,
		Options: ch.Options{
			Database: os.Getenv("CH_GO_TEST_DATABASE"),
		},
	})
	require.NoError(t, err)
	t.Cleanup(p.Close)
	return p
}

// testDo exercises a trivial round-trip query over conn.
func testDo(t *testing.T, conn *Conn) {
	t.Helper()

	data := proto.NewColUInt8()
	err := conn.Do(context.Background(), ch.Query{
		Body: "SELECT 1 AS one",
		Result: proto.Results{
			{Name: "one", Data: data},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 1, data.Rows())
	require.Equal(t, uint8(1), data.Row(0))
}
