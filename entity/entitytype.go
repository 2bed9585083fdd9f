package entity

// ErrorValue 未知边/未知车辆的数值哨兵
// 说明：热路径上的查询（每步对每辆车执行）不使用error返回值，
// 未知边一律返回该哨兵值，调用方按数值边界处理
const ErrorValue = -1001

// 车辆类别标签
const (
	ClassHuman = "human" // 人类驾驶（模拟器内置模型控制）
	ClassRL    = "rl"    // 自动驾驶（外部策略控制）
)

// Link 有向连接的一端，(边, 车道序号)二元组
type Link struct {
	Edge string // 边ID
	Lane int    // 车道序号，0为最左侧车道
}

// OffsetEntry 全局坐标表的表项
// 说明：边上局部位置p对应的全局坐标为Offset+p，表项按Offset升序保存
type OffsetEntry struct {
	Edge   string  `json:"edge"`
	Offset float64 `json:"offset"`
}

// VehicleSnapshot 模拟器每步上报的单车状态
type VehicleSnapshot struct {
	ID       string  // 车辆ID
	Edge     string  // 所在边ID
	Lane     int     // 所在车道序号
	Position float64 // 沿边的局部位置（米）
	Speed    float64 // 速度（米/秒）
	Length   float64 // 车长（米）
	Class    string  // 车辆类别（human/rl）
}

// StepSnapshot 模拟器每步上报的完整快照
// 功能：驱动VehicleStateTable刷新的唯一输入
// 说明：Departed/Arrived/Teleported为本步新进入/到达/被传送移除的车辆ID列表，
// 表的增删以Vehicles中ID的出现与否为准，三个列表用于计数与日志
type StepSnapshot struct {
	Vehicles   []VehicleSnapshot
	Departed   []string
	Arrived    []string
	Teleported []string
}
