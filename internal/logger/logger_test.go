package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	log := New(zerolog.DebugLevel)
	assert.Equal(t, zerolog.DebugLevel, log.GetLevel())
}

func TestNewWithWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf)

	log.Info().Str("account", "default").Msg("imported")

	assert.Contains(t, buf.String(), `"message":"imported"`)
	assert.Contains(t, buf.String(), `"account":"default"`)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"", zerolog.InfoLevel},
		{"debug", zerolog.DebugLevel},
		{" WARN ", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestFromContext(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := WithContext(context.Background(), NewWithWriter(buf))

	log := FromContext(ctx)
	log.Info().Msg("test")

	assert.NotZero(t, buf.Len())
}

func TestFromContext_DefaultLogger(t *testing.T) {
	log := FromContext(context.Background())
	assert.Equal(t, zerolog.WarnLevel, log.GetLevel())
}

func TestWithFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := WithFields(NewWithWriter(buf), map[string]any{
		"upload_id": "upl_1",
		"rows":      3,
	})
	log.Info().Msg("test message")

	assert.Contains(t, buf.String(), `"upload_id":"upl_1"`)
	assert.Contains(t, buf.String(), `"rows":3`)
}
