package clickhouse

import (
	"context"
	"testing"
	"time"

	ch "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientOptions(t *testing.T) {
	opts := ClientConfig{
		Host: "ch", Database: "tazeai", User: "u", Password: "p",
		MaxExecTime: 30 * time.Second, AsyncInsert: true, WaitForAsync: true,
	}.withDefaults().options()

	assert.Equal(t, ch.Native, opts.Protocol)
	assert.Equal(t, []string{"ch:9000"}, opts.Addr)
	assert.Equal(t, "tazeai", opts.Auth.Database)
	assert.Equal(t, "u", opts.Auth.Username)
	assert.Equal(t, 30, opts.Settings["max_execution_time"])
	assert.Equal(t, 1, opts.Settings["async_insert"])
	assert.Equal(t, 1, opts.Settings["wait_for_async_insert"])
	assert.Equal(t, 5*time.Second, opts.DialTimeout)
}

func TestClientOptionsHTTP(t *testing.T) {
	opts := ClientConfig{Host: "ch", UseHTTP: true}.withDefaults().options()
	assert.Equal(t, ch.HTTP, opts.Protocol)
	assert.Equal(t, []string{"ch:8123"}, opts.Addr)
	assert.Equal(t, "default", opts.Auth.Database)
	assert.NotContains(t, opts.Settings, "async_insert")
}

func TestSchemaTargetsDatabase(t *testing.T) {
	stmts := Schema("lake")
	require.Len(t, stmts, 3)
	assert.Contains(t, stmts[1], "lake."+BronzeTable)
	assert.Contains(t, stmts[2], "lake."+SilverTable)
	assert.Contains(t, Schema("")[0], "default")
}

func TestNewClientRequiresHost(t *testing.T) {
	_, err := NewClient(context.Background(), ClientConfig{Port: 9000})
	assert.Error(t, err)
}
