package config

// RuntimeConfig 运行时配置
// 功能：存储仿真运行时的配置信息，补全各配置项的默认值
type RuntimeConfig struct {
	All Config  // 全部配置
	C   Control // 全局控制配置
	Q   Query   // 邻车查询配置（已补全默认值）
}

// NewRuntimeConfig 根据配置初始化运行时配置
// 算法说明：
// 1. 保留原始配置
// 2. 补全默认值：跳数默认为1；回退距离为0时由查询引擎取路网总长度
func NewRuntimeConfig(config Config) *RuntimeConfig {
	rc := &RuntimeConfig{}

	rc.All = config
	rc.C = config.Control
	rc.Q = config.Query
	if rc.Q.HopLimit <= 0 {
		rc.Q.HopLimit = 1
	}

	return rc
}
