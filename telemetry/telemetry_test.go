package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupWithoutEndpointIsNoop(t *testing.T) {
	shutdown, err := Setup(context.Background(), "", "cup-engine")
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetupWithEndpoint(t *testing.T) {
	// non-routable address; nothing is exported before shutdown
	shutdown, err := Setup(context.Background(), "http://192.0.2.1:4318", "cup-engine")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
