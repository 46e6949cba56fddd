package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceEngine_Builtin(t *testing.T) {
	e, err := NewServiceEngine()
	require.NoError(t, err)

	cases := []struct {
		port  int
		proto string
		want  string
	}{
		{22, "tcp", "ssh"},
		{80, "tcp", "http"},
		{443, "", "https"},
		{3306, "TCP", "mysql"},
		{53, "udp", "domain"},
	}
	for _, c := range cases {
		name, ok := e.NameFor(c.port, c.proto)
		assert.True(t, ok, "port %d/%s", c.port, c.proto)
		assert.Equal(t, c.want, name)
	}
	assert.Greater(t, e.Len("tcp"), 100)
}

func TestServiceEngine_UnknownIsNotAnError(t *testing.T) {
	e := Default()

	for _, port := range []int{0, -1, 9999, 65535, 70000} {
		name, ok := e.NameFor(port, "tcp")
		assert.False(t, ok, "port %d", port)
		assert.Empty(t, name)
	}

	_, ok := e.NameFor(22, "sctp")
	assert.False(t, ok)

	var nilEngine *ServiceEngine
	_, ok = nilEngine.NameFor(22, "tcp")
	assert.False(t, ok)
}

func TestServiceEngine_Overlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extra.yaml")
	content := "tcp:\n  9999: abyss\n  22: ssh-custom\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	e, err := NewServiceEngine(path)
	require.NoError(t, err)

	name, ok := e.NameFor(9999, "tcp")
	assert.True(t, ok)
	assert.Equal(t, "abyss", name)

	name, _ = e.NameFor(22, "tcp")
	assert.Equal(t, "ssh-custom", name)

	// 内置表其余条目保留
	name, _ = e.NameFor(80, "tcp")
	assert.Equal(t, "http", name)

	// 叠加表不影响共享实例
	name, _ = Default().NameFor(22, "tcp")
	assert.Equal(t, "ssh", name)
}

func TestServiceEngine_OverlayErrors(t *testing.T) {
	_, err := NewServiceEngine(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("tcp: [1, 2"), 0644))
	_, err = NewServiceEngine(bad)
	assert.Error(t, err)
}
