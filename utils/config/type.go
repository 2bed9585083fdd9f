package config

// InputPath 指定输入数据来源的配置（MongoDB、文件系统）
// 功能：定义数据输入路径的配置结构，支持多种数据源
// 说明：支持MongoDB数据库和文件系统两种数据源，支持缓存机制
type InputPath struct {
	DB        string `yaml:"db"`                   // 数据库名
	Col       string `yaml:"col"`                  // 集合名
	Cache     string `yaml:"cache,omitempty"`      // 缓存文件名，为空则采用默认路径{db}.{col}.json
	OnlyCache bool   `yaml:"only_cache,omitempty"` // 只从缓存中获取
	File      string `yaml:"file,omitempty"`       // 文件路径（优先级高于MongoDB），支持SUMO风格net.xml
}

// GetDb 获取数据库名
func (p InputPath) GetDb() string {
	return p.DB
}

// GetColl 获取集合名
func (p InputPath) GetColl() string {
	return p.Col
}

// GetCachePath 获取缓存文件路径
// 说明：未指定缓存路径时使用默认命名规则{数据库名}.{集合名}.json
func (p InputPath) GetCachePath() string {
	if p.Cache != "" {
		return p.Cache
	}
	return p.DB + "." + p.Col + ".json"
}

// EdgeStart 外部提供的边起点全局坐标提示
// 说明：未提供时按边ID排序后以边长度累加计算
type EdgeStart struct {
	Edge   string  `yaml:"edge"`   // 边ID
	Offset float64 `yaml:"offset"` // 起点全局坐标
}

// Input 指定模拟器所有输入数据的配置项
type Input struct {
	URI     string      `yaml:"uri,omitempty"`    // MongoDB连接字符串
	Network InputPath   `yaml:"network"`          // 路网描述
	Starts  []EdgeStart `yaml:"starts,omitempty"` // 边起点全局坐标提示
}

// ControlStep 指定模拟器模拟时间范围和间隔的配置项
type ControlStep struct {
	Start    int32   `yaml:"start"`    // 开始步数
	Total    int32   `yaml:"total"`    // 总步数
	Interval float64 `yaml:"interval"` // 每步的时间间隔
}

// Control 模拟器控制配置
type Control struct {
	Step ControlStep `yaml:"step"`
}

// Query 邻车查询引擎配置
// 说明：跨边搜索的行为在原型系统的不同代码路径上并不一致，
// 这里将跳数与未找到邻车时的回退距离显式暴露为配置项
type Query struct {
	// 跨边搜索最大跳数，0表示取默认值1
	HopLimit int `yaml:"hop_limit,omitempty"`
	// 某车道上无邻车时报告的保守距离，0表示取路网非内部边总长度
	FallbackDistance float64 `yaml:"fallback_distance,omitempty"`
}

// Sim 内置合成后端配置
// 说明：仅用于无外部模拟器时的演示与测试，不是交通流模型
type Sim struct {
	Seed              uint64   `yaml:"seed,omitempty"`               // 随机种子
	MaxVehicles       int      `yaml:"max_vehicles,omitempty"`       // 车辆数上限
	DepartEdges       []string `yaml:"depart_edges,omitempty"`       // 发车边集合，为空则使用所有非内部边
	DepartProbability float64  `yaml:"depart_probability,omitempty"` // 每步每条发车边的发车概率
	VehicleLength     float64  `yaml:"vehicle_length,omitempty"`     // 车长（米），0表示默认5
	RLProbability     float64  `yaml:"rl_probability,omitempty"`     // 新车为rl类别的概率
}

// Config YAML配置文件的根结构
type Config struct {
	Input   Input   `yaml:"input"`           // 输入
	Control Control `yaml:"control"`         // 模拟过程控制
	Query   Query   `yaml:"query,omitempty"` // 邻车查询
	Sim     Sim     `yaml:"sim,omitempty"`   // 合成后端
}
