package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func observed() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return &Logger{SugaredLogger: zap.New(core).Sugar()}, logs
}

func TestNew(t *testing.T) {
	l, err := New("production", "warn")
	require.NoError(t, err)
	assert.NotNil(t, l.SugaredLogger)

	_, err = New("development", "loud")
	assert.Error(t, err)
}

func TestGetDefaultsToNop(t *testing.T) {
	assert.NotNil(t, Get())
	assert.NotPanics(t, func() { Get().Info("discarded", "k", "v") })
}

func TestSetIgnoresNil(t *testing.T) {
	l, _ := observed()
	Set(l)
	Set(nil)
	assert.Same(t, l, Get())
}

func TestRedaction(t *testing.T) {
	l, logs := observed()

	l.Warn("login failed", "username", "admin", "password", "hunter2", "Authorization", "Bearer abc")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "admin", fields["username"])
	assert.Equal(t, "[REDACTED]", fields["password"])
	assert.Equal(t, "[REDACTED]", fields["Authorization"])
}

func TestWithCarriesFields(t *testing.T) {
	l, logs := observed()

	l.With("component", "shops").Info("saved", "shop_id", 7)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "shops", fields["component"])
	assert.EqualValues(t, 7, fields["shop_id"])
}

func TestOddKeyValues(t *testing.T) {
	out := sanitizeKVs([]interface{}{"a", 1, "dangling"})
	assert.Equal(t, []interface{}{"a", 1, "dangling"}, out)
}
