package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("search service is mandatory", func(t *testing.T) {
		server, err := NewServer(&Ports{Document: &mockDocumentService{}})

		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingSearchService)
	})

	t.Run("search alone is enough", func(t *testing.T) {
		server, err := NewServer(&Ports{Search: &mockSearchService{}})

		require.NoError(t, err)
		require.NotNil(t, server)
		assert.NotNil(t, server.server)
	})

	t.Run("keeps the ports it was given", func(t *testing.T) {
		ports := &Ports{
			Search:   &mockSearchService{},
			Document: &mockDocumentService{},
		}

		server, err := NewServer(ports)

		require.NoError(t, err)
		assert.Same(t, ports, server.ports)
	})
}

func TestPorts_Validate(t *testing.T) {
	t.Run("empty ports fail", func(t *testing.T) {
		err := (&Ports{}).Validate()

		assert.ErrorIs(t, err, ErrMissingSearchService)
	})

	t.Run("document service without search fails", func(t *testing.T) {
		err := (&Ports{Document: &mockDocumentService{}}).Validate()

		assert.ErrorIs(t, err, ErrMissingSearchService)
	})

	t.Run("search only passes", func(t *testing.T) {
		err := (&Ports{Search: &mockSearchService{}}).Validate()

		assert.NoError(t, err)
	})

	t.Run("full wiring passes", func(t *testing.T) {
		err := (&Ports{
			Search:   &mockSearchService{},
			Document: &mockDocumentService{},
		}).Validate()

		assert.NoError(t, err)
	})
}
