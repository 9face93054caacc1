package component

import "videogen-service/pkg/manager"

func init() {
	manager.RegisterComponentPlugin(&ProviderResultConsumerPlugin{})
	manager.RegisterComponentPlugin(&StatusPollerPlugin{})
}
