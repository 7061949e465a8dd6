// Package dbtest runs the session/statement layer against a real MonetDB
// server in Docker. It is gated behind MAPI_TEST_INTEGRATION=1 since it
// needs a working Docker daemon and pulls a fairly large image; the unit
// tests in mapi/ and mapi/internal/proto/ cover the protocol logic
// without it.
package dbtest

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/MonetDB/monetdb-go/mapi"
)

func TestSessionAgainstRealServer(t *testing.T) {
	if os.Getenv("MAPI_TEST_INTEGRATION") != "1" {
		t.Skip("set MAPI_TEST_INTEGRATION=1 to run against a real MonetDB container")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	req := testcontainers.ContainerRequest{
		Image:        "monetdb/monetdb:latest",
		ExposedPorts: []string{"50000/tcp"},
		Env:          map[string]string{"MDB_DB_ADMIN_PASS": "monetdb"},
		WaitingFor:   wait.ForListeningPort("50000/tcp").WithStartupTimeout(90 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer container.Terminate(ctx)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "50000")
	require.NoError(t, err)

	cfg := &mapi.Config{
		Host:       host,
		Port:       port.Int(),
		User:       "monetdb",
		Password:   "monetdb",
		Database:   "demo",
		Language:   mapi.LangSQL,
		Autocommit: true,
		FetchSize:  mapi.DefaultReplySize,
	}

	session, err := mapi.NewSession(ctx, cfg)
	require.NoError(t, err)
	defer session.Close()

	st := mapi.NewStatement(session)
	defer st.Close()

	require.NoError(t, st.Execute(ctx, "select 1"))
	require.True(t, st.NextResult())
	rs, ok := st.ResultSet()
	require.True(t, ok)

	row, err := rs.GetRow(0)
	require.NoError(t, err)
	require.Equal(t, "1", row[0])
}
