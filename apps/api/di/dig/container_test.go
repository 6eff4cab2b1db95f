package dig_container

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/GausMx/Scoolynk-app-sub000/apps/api/echo"
	"github.com/GausMx/Scoolynk-app-sub000/core/result"
	"github.com/GausMx/Scoolynk-app-sub000/storage"
)

func TestContainer(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("TEST_DATABASE_ENGINE", storage.InMemory)

	c := New()
	err := c.Invoke(func(server *echoapi.Server, svc *result.Service, stores *storage.Stores) {
		assert.NotNil(t, server)
		assert.NotNil(t, svc)
		assert.Nil(t, stores.SQL)
	})
	require.NoError(t, err)
}
