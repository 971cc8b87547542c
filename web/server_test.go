/* server_test.go
 * Contains unit tests for server.go
 */

package web

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// region Start tests

func TestStart_RequiresAPI(t *testing.T) {
	err := Start(Config{Addr: ":0"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires an API")
}

// endregion

// Note: Start() with an API cannot be easily unit tested as it blocks on ListenAndServe.
// The routes are covered through NewRouter in router_test.go
