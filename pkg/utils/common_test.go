package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetInterfaceIP(t *testing.T) {
	ip, err := GetInterfaceIP("lo")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", ip.String())
}

func TestGetInterfaceIPUnknownInterface(t *testing.T) {
	_, err := GetInterfaceIP("does-not-exist0")
	assert.Error(t, err)
}
