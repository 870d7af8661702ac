package logging

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigureJSON(t *testing.T) {
	require.NoError(t, Configure("debug", "json"))
	assert.Equal(t, logrus.DebugLevel, Log.Level)

	var buf bytes.Buffer
	Log.SetOutput(&buf)
	For(Auth).Info("login ok")

	assert.Contains(t, buf.String(), `"component":"AUTH"`)
	assert.Contains(t, buf.String(), `"msg":"login ok"`)
}

func TestConfigureRejectsUnknownLevel(t *testing.T) {
	assert.Error(t, Configure("loud", "text"))
}
