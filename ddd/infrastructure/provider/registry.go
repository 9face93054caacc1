package provider

import (
	"videogen-service/ddd/domain/gateway"
	"videogen-service/ddd/domain/vo"
	"videogen-service/pkg/config"
	"videogen-service/pkg/errno"
)

// Registry 按类型标签选择生成服务适配器
type Registry struct {
	gateways map[vo.ProviderType]gateway.GenerationGateway
}

var _ gateway.GenerationRegistry = (*Registry)(nil)

func NewRegistry(gateways ...gateway.GenerationGateway) *Registry {
	r := &Registry{gateways: make(map[vo.ProviderType]gateway.GenerationGateway, len(gateways))}
	for _, g := range gateways {
		if g != nil {
			r.gateways[g.Provider()] = g
		}
	}
	return r
}

// NewRegistryFromConfig 按配置创建全部生成服务适配器
func NewRegistryFromConfig(cfg config.ProviderConfig) *Registry {
	return NewRegistry(
		NewAvatarClient(cfg.Avatar.BaseURL, cfg.Avatar.APIKey, cfg.Timeout),
		NewText2VideoClient(cfg.Text2Video.BaseURL, cfg.Text2Video.APIKey, cfg.Timeout),
	)
}

func (r *Registry) Get(provider vo.ProviderType) (gateway.GenerationGateway, error) {
	g, ok := r.gateways[provider]
	if !ok {
		return nil, errno.Errorf(errno.ErrUnknownProvider, "provider=%s", provider)
	}
	return g, nil
}
