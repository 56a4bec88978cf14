package observability

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel(""))
	assert.Equal(t, LevelInfo, ParseLevel("verbose"))
}

func TestLogger(t *testing.T) {
	t.Run("filters below minimum level", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewLogger("test", LevelWarn)
		l.SetOutput(&buf)

		l.Info("quiet")
		l.Warn("loud")

		assert.NotContains(t, buf.String(), "quiet")
		assert.Contains(t, buf.String(), "[WARN]")
		assert.Contains(t, buf.String(), "loud")
	})

	t.Run("writes fields in sorted order", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewLogger("test", LevelDebug)
		l.SetOutput(&buf)

		l.WithFields(map[string]interface{}{"photo_id": "p1", "asset": "a1"}).Debug("resolved")

		line := buf.String()
		assert.Contains(t, line, "resolved asset=a1 photo_id=p1")
	})

	t.Run("child loggers do not leak fields to parent", func(t *testing.T) {
		var buf bytes.Buffer
		parent := NewLogger("test", LevelDebug)
		parent.SetOutput(&buf)

		parent.WithField("visitor_id", "v1").Info("child")
		parent.Info("parent")

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 2)
		assert.Contains(t, lines[0], "visitor_id=v1")
		assert.NotContains(t, lines[1], "visitor_id")
	})

	t.Run("json output", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewLogger("photofolio", LevelInfo)
		l.SetOutput(&buf)
		l.SetJSON(true)

		l.WithError(errors.New("boom")).Errorf("feed %s failed", "build")

		var record map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "ERROR", record["level"])
		assert.Equal(t, "photofolio", record["service"])
		assert.Equal(t, "feed build failed", record["msg"])
		assert.Equal(t, "boom", record["error"])
	})

	t.Run("WithError nil is a no-op", func(t *testing.T) {
		l := NewLogger("test", LevelInfo)
		assert.Same(t, l, l.WithError(nil))
	})
}
