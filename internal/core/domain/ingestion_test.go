package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestIngestionState_IsValid tests pipeline state recognition
func TestIngestionState_IsValid(t *testing.T) {
	valid := []IngestionState{
		StateDownloading, StateExtracting, StateOCR, StateChunking,
		StateEmbedding, StatePersisting, StateFinalizing,
		StateReady, StateErrored,
	}
	for _, s := range valid {
		assert.True(t, s.IsValid(), "%s should be valid", s)
	}

	assert.False(t, IngestionState("").IsValid())
	assert.False(t, IngestionState("uploading").IsValid())
	assert.False(t, IngestionState("DOWNLOADING").IsValid())
}

// TestIngestionState_IsTerminal tests that only the two end states are
// terminal
func TestIngestionState_IsTerminal(t *testing.T) {
	assert.True(t, StateReady.IsTerminal())
	assert.True(t, StateErrored.IsTerminal())

	nonTerminal := []IngestionState{
		StateDownloading, StateExtracting, StateOCR, StateChunking,
		StateEmbedding, StatePersisting, StateFinalizing,
	}
	for _, s := range nonTerminal {
		assert.False(t, s.IsTerminal(), "%s should not be terminal", s)
	}
}
