package entity

// Manager依赖倒置

// entity/edge/manager.go的依赖倒置
// 说明：静态路网拓扑，构建完成后只读
type IEdgeManager interface {
	// 边长度（米），未知边返回ErrorValue
	EdgeLength(id string) float64
	// 边限速（米/秒），未知边返回ErrorValue
	SpeedLimit(id string) float64
	// 边车道数，未知边返回ErrorValue
	NumLanes(id string) int
	// 所有非内部边限速的最大值
	MaxSpeed() float64
	// 所有非内部边长度之和
	TotalLength() float64
	// 所有非内部边ID（按ID排序）
	EdgeList() []string
	// 所有内部边（路口内连接边）ID（按ID排序）
	JunctionList() []string
	// 内部边回溯到的父边ID，非内部边或无父边时返回空串
	ParentEdge(id string) string
	// (edge, lane)的所有后继(edge, lane)，不存在时返回空列表
	Next(edge string, lane int) []Link
	// (edge, lane)的所有前驱(edge, lane)，不存在时返回空列表
	Prev(edge string, lane int) []Link
}

// entity/linear/linear.go的依赖倒置
// 说明：把边图线性化到单一全局坐标轴上的映射，构建完成后只读
type ILinearMap interface {
	// 局部位置转全局坐标，空边/未知边返回ErrorValue
	ToGlobal(edge string, pos float64) float64
	// 全局坐标转(边, 局部位置)，是ToGlobal的逆
	ToLocal(pos float64) (string, float64)
	// 导出排序后的坐标表副本（供路网生成侧写调试文件，只读）
	Entries() []OffsetEntry
}

// entity/vehicle/manager.go的依赖倒置
// 说明：每步由模拟器快照整体刷新的车辆状态表
type IVehicleManager interface {
	// 用最新快照刷新状态表
	Refresh(snap *StepSnapshot)

	// 当前所有车辆ID
	IDs() []string
	// 指定边上的车辆ID列表（无序）
	IdsOnEdge(edge string) []string

	// 逐车访问器，车辆不存在时返回调用方提供的默认值
	GetSpeed(id string, def float64) float64
	GetPosition(id string, def float64) float64
	GetEdge(id string, def string) string
	GetLane(id string, def int) int
	GetLength(id string, def float64) float64
	GetGlobalPosition(id string, def float64) float64
}
