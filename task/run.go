package task

import (
	"flag"

	"github.com/sirupsen/logrus"
)

const (
	SelfName = "microsim" // 本程序在模拟任务集群中的名字
)

var (
	heartBeatInterval = flag.Int("log.heartbeat_interval", 100, "心跳日志间隔步数")
)

// prepare 准备阶段，每步执行一次
// 算法说明：
// 1. 更新时钟：增加内部步数并计算当前时间
// 2. 心跳日志：定期输出当前步数与在网车辆数
func (ctx *Context) prepare() {
	ctx.clock.Step()

	if ctx.clock.InternalStep%int32(*heartBeatInterval) == 0 {
		hour, minute, second := ctx.clock.GetHourMinuteSecond()
		log.Infof(
			"STEP: %d(%d:%d:%.2f) vehicles: %d departed: %d arrived: %d",
			ctx.clock.InternalStep,
			hour, minute, second,
			ctx.vehicleManager.Len(),
			ctx.vehicleManager.NumDeparted(),
			ctx.vehicleManager.NumArrived(),
		)
	}
}

// update 更新阶段，每步执行一次
// 功能：推进后端一步并用产出的快照刷新车辆状态表
// 说明：debug级别下对首辆车做一次抽样邻车查询，便于观察查询链路
func (ctx *Context) update() {
	snap := ctx.backend.Step()
	ctx.vehicleManager.Refresh(snap)

	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		if ids := ctx.vehicleManager.IDs(); len(ids) > 0 {
			id := ids[0]
			log.Debugf(
				"sample %s: edge=%s pos=%.2f global=%.2f leader=%q headway=%.2f",
				id,
				ctx.vehicleManager.GetEdge(id, ""),
				ctx.vehicleManager.GetPosition(id, -1),
				ctx.vehicleManager.GetGlobalPosition(id, -1),
				ctx.engine.GetLeader(id, ""),
				ctx.engine.GetHeadway(id, -1),
			)
		}
	}
}

// Run 运行
func (ctx *Context) Run() {
	// 初始化
	ctx.Init()
	for !ctx.clock.IsDone() {
		ctx.prepare()
		ctx.update()
	}
	log.Infof(
		"engine complete: %d departed, %d arrived, %d on network",
		ctx.vehicleManager.NumDeparted(),
		ctx.vehicleManager.NumArrived(),
		ctx.vehicleManager.Len(),
	)
}
