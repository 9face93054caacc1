package http

import "videogen-service/pkg/manager"

func init() {
	manager.RegisterControllerPlugin(&VideoControllerPlugin{})
	manager.RegisterControllerPlugin(&BatchControllerPlugin{})
	manager.RegisterControllerPlugin(&PostControllerPlugin{})
	manager.RegisterControllerPlugin(&CallbackControllerPlugin{})
}
