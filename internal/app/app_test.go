package app

import (
	"context"
	"errors"
	"testing"

	"github.com/Lllllllleong/slidecast/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCore_MissingSpeechBinary(t *testing.T) {
	cfg := &config.Config{
		LLMProvider:  "openai",
		OpenAIAPIKey: "sk-test",
		PiperPath:    "/nonexistent/piper",
		PiperModel:   "/nonexistent/voice.onnx",
	}
	_, err := NewCore(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "speech engine")
}

func TestCore_CloseRunsInReverseOnce(t *testing.T) {
	var order []int
	c := &Core{closers: []func() error{
		func() error { order = append(order, 1); return nil },
		func() error { order = append(order, 2); return errors.New("flush failed") },
	}}

	err := c.Close()
	assert.EqualError(t, err, "flush failed")
	assert.Equal(t, []int{2, 1}, order)

	assert.NoError(t, c.Close())
	assert.Equal(t, []int{2, 1}, order)
}
