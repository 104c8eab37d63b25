package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgnsrekt/voicesim/internal/config"
)

func TestDefaultConfigMatchesDefaults(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(defaultConfig)))

	cfg, err := config.FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestManPage(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"man"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "voicesim")
	assert.Contains(t, buf.String(), "heartbeat")
}
