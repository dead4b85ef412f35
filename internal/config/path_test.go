package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("DEALFLOW_DATA", "/srv/fx")

	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "empty", path: "", want: ""},
		{name: "bare tilde", path: "~", want: home},
		{name: "tilde prefix", path: "~/chat/log.csv", want: filepath.Join(home, "chat/log.csv")},
		{name: "env var", path: "$DEALFLOW_DATA/log.csv", want: "/srv/fx/log.csv"},
		{name: "tilde inside is literal", path: "/tmp/~x", want: "/tmp/~x"},
		{name: "absolute", path: "/var/lib/dealflow.db", want: "/var/lib/dealflow.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.path))
		})
	}
}

func TestConfigDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	t.Setenv("XDG_CONFIG_HOME", "")
	dir, err := ConfigDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "dealflow"), dir)

	t.Setenv("XDG_CONFIG_HOME", "/etc/xdg")
	dir, err = ConfigDir()
	require.NoError(t, err)
	assert.Equal(t, "/etc/xdg/dealflow", dir)
}
