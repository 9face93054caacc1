package observability

import (
	"os"

	"github.com/grafana/pyroscope-go"

	"videogen-service/pkg/logger"
)

// StartProfiling 在设置 PYROSCOPE_SERVER_ADDRESS 时启动持续性能剖析
func StartProfiling(appName string) *pyroscope.Profiler {
	addr := os.Getenv("PYROSCOPE_SERVER_ADDRESS")
	if addr == "" {
		return nil
	}
	return StartProfilingAt(appName, addr)
}

// StartProfilingAt 连接到指定的 pyroscope 服务，失败只记录日志
func StartProfilingAt(appName, addr string) *pyroscope.Profiler {
	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: appName,
		ServerAddress:   addr,
		Tags:            map[string]string{"hostname": hostname()},
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
		},
	})
	if err != nil {
		logger.Warnf("Pyroscope start failed address=%s error=%v", addr, err)
		return nil
	}
	logger.Infof("Pyroscope profiling started app=%s address=%s", appName, addr)
	return profiler
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return h
}
