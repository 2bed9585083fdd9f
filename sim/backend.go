// Package sim 定义驱动车辆状态表的模拟器后端能力
package sim

import "github.com/tsinghua-fib-lab/microsim-oss/entity"

// Backend 模拟器后端
// 功能：每步推进一次底层模拟并产出完整快照
// 说明：快照是车辆状态表的唯一输入；对接外部模拟器的适配器
// 实现同一接口即可接入任务循环
type Backend interface {
	// 推进一个模拟步并返回本步快照
	Step() *entity.StepSnapshot
}
