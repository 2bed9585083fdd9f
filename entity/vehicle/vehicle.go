package vehicle

import (
	"fmt"

	"github.com/tsinghua-fib-lab/microsim-oss/utils/container"
)

// Vehicle 车辆实体
// 功能：保存单辆车的最新状态（位置、速度、车长、类别）
// 说明：由Manager.Refresh根据模拟器快照整体维护，
// 沿边位置保存在链表节点的排序键S中，车辆在车道链表间移动时节点随之迁移
type Vehicle struct {
	id     string
	class  string  // 类别（human/rl）
	edge   string  // 所在边ID
	lane   int     // 所在车道序号
	speed  float64 // 速度（米/秒）
	length float64 // 车长（米）

	node *container.ListNode[*Vehicle] // 所在车道链表中的节点，S为沿边位置
}

func (v *Vehicle) String() string {
	return fmt.Sprintf("Vehicle %s", v.id)
}

// ID 获取车辆的唯一标识符
func (v *Vehicle) ID() string {
	return v.id
}

// Class 获取车辆类别
func (v *Vehicle) Class() string {
	return v.class
}

// Edge 获取车辆所在边ID
func (v *Vehicle) Edge() string {
	return v.edge
}

// Lane 获取车辆所在车道序号
func (v *Vehicle) Lane() int {
	return v.lane
}

// Position 获取车辆沿边的局部位置（米）
func (v *Vehicle) Position() float64 {
	return v.node.S
}

// Speed 获取车辆速度（米/秒）
func (v *Vehicle) Speed() float64 {
	return v.speed
}

// Length 获取车长（米）
func (v *Vehicle) Length() float64 {
	return v.length
}
