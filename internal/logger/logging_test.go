package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"
)

func TestSetupLevels(t *testing.T) {
	var buf bytes.Buffer
	output = &buf
	t.Cleanup(func() {
		output = os.Stderr
		Setup(false)
	})

	Setup(false)
	require.Equal(t, log.WarnLevel, log.GetLevel())
	log.Info("hidden")
	log.Warn("shown")
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "shown")

	Setup(true)
	require.Equal(t, log.DebugLevel, log.GetLevel())
	log.Debug("details")
	require.Contains(t, buf.String(), "details")
}

func TestNewWithConfig(t *testing.T) {
	var buf bytes.Buffer
	output = &buf
	t.Cleanup(func() { output = os.Stderr })

	l := NewWithConfig("trietool", log.InfoLevel, false, false, log.LogfmtFormatter)
	l.Info("built", "entries", 3)
	require.Contains(t, buf.String(), "prefix=trietool")
	require.Contains(t, buf.String(), "entries=3")

	buf.Reset()
	New("srv").Error("boom")
	require.Contains(t, buf.String(), "srv")
	require.Contains(t, buf.String(), "boom")
}
