package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLoggerFallsBackToGlobal(t *testing.T) {
	entry := GetLogger(context.Background())
	require.NotNil(t, entry)
	assert.Equal(t, L.Logger, entry.Logger)
}

func TestWithLoggerRoundTrip(t *testing.T) {
	base := logrus.New()
	entry := logrus.NewEntry(base).WithField("component", "lint")

	ctx := WithLogger(context.Background(), entry)
	got := G(ctx)

	assert.Equal(t, base, got.Logger)
	assert.Equal(t, "lint", got.Data["component"])
}

func TestSetLogLevel(t *testing.T) {
	t.Cleanup(func() { _ = SetLogLevel("info") })

	require.NoError(t, SetLogLevel("debug"))
	assert.Equal(t, logrus.DebugLevel, L.Logger.GetLevel())

	assert.Error(t, SetLogLevel("not-a-level"))
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	SetLogOutput(&buf)
	SetLogFormat("json")
	t.Cleanup(func() {
		SetLogFormat("fmt")
		SetLogOutput(os.Stderr)
	})

	L.WithField("skill", "my-skill").Info("validated")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "validated", record["message"])
	assert.Equal(t, "my-skill", record["skill"])
	assert.Equal(t, "info", record["logLevel"])
}
