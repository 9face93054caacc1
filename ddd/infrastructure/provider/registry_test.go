package provider

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"videogen-service/ddd/domain/vo"
	"videogen-service/pkg/config"
	"videogen-service/pkg/errno"
)

func TestRegistrySelectsByProviderTag(t *testing.T) {
	r := NewRegistryFromConfig(config.ProviderConfig{Timeout: time.Second})

	avatar, err := r.Get(vo.ProviderAvatar)
	require.NoError(t, err)
	assert.Equal(t, vo.ProviderAvatar, avatar.Provider())

	t2v, err := r.Get(vo.ProviderText2Video)
	require.NoError(t, err)
	assert.Equal(t, vo.ProviderText2Video, t2v.Provider())

	_, err = r.Get(vo.ProviderType("sora"))
	assert.True(t, errors.Is(err, errno.ErrUnknownProvider))
}
