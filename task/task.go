package task

import (
	"github.com/tsinghua-fib-lab/microsim-oss/clock"
	"github.com/tsinghua-fib-lab/microsim-oss/entity"
	"github.com/tsinghua-fib-lab/microsim-oss/entity/edge"
	"github.com/tsinghua-fib-lab/microsim-oss/entity/linear"
	"github.com/tsinghua-fib-lab/microsim-oss/entity/vehicle"
	"github.com/tsinghua-fib-lab/microsim-oss/sim"
	"github.com/tsinghua-fib-lab/microsim-oss/utils/config"
	"github.com/tsinghua-fib-lab/microsim-oss/utils/input"
)

// Context 查询任务上下文
// 功能：包含一次会话的所有组件和状态，替代全局变量
// 说明：持有时钟、路网拓扑、全局坐标映射、车辆状态表、
// 邻车查询引擎与驱动状态表的模拟器后端
type Context struct {
	// 任务名
	job string
	// 缓存文件夹
	cacheDir string

	// 时钟
	clock *clock.Clock

	// Edge管理器（静态路网拓扑）
	edgeManager *edge.Manager
	// 全局坐标映射
	linearMap *linear.Map
	// Vehicle管理器（车辆状态表）
	vehicleManager *vehicle.Manager
	// 邻车查询引擎
	engine *vehicle.Engine
	// 模拟器后端
	backend sim.Backend

	// 运行时配置
	runtimeConfig *config.RuntimeConfig

	// 用于初始化的路网描述
	initRes *input.NetData
}

// NewContext 创建新的查询任务上下文
// 功能：加载输入数据并创建所有组件
// 参数：job-任务名，cacheDir-缓存目录（空串禁用缓存），c-配置对象
// 说明：输入加载失败直接panic，会话不在残缺数据上启动
func NewContext(job string, cacheDir string, c config.Config) *Context {
	ctx := &Context{
		job:      job,
		cacheDir: cacheDir,
	}
	ctx.clock = clock.New(c.Control.Step)

	// 下载所有会话启动所需的数据
	netData, err := input.Init(c, ctx.cacheDir)
	if err != nil {
		log.Panicf("task: failed to load network data: %v", err)
	}
	ctx.initRes = netData

	ctx.runtimeConfig = config.NewRuntimeConfig(c)

	// 新建各类模拟对象
	ctx.edgeManager = edge.NewManager(ctx)
	ctx.vehicleManager = vehicle.NewManager(ctx)

	return ctx
}

// GetInput 获取初始化输入的路网描述
func (ctx *Context) GetInput() *input.NetData {
	return ctx.initRes
}

func (ctx *Context) Clock() *clock.Clock {
	return ctx.clock
}

func (ctx *Context) EdgeManager() entity.IEdgeManager {
	return ctx.edgeManager
}

func (ctx *Context) LinearMap() entity.ILinearMap {
	return ctx.linearMap
}

func (ctx *Context) VehicleManager() entity.IVehicleManager {
	return ctx.vehicleManager
}

// Engine 获取邻车查询引擎
func (ctx *Context) Engine() *vehicle.Engine {
	return ctx.engine
}

func (ctx *Context) RuntimeConfig() *config.RuntimeConfig {
	return ctx.runtimeConfig
}

// SetBackend 替换模拟器后端
// 说明：在Init之前调用，不设置时Init创建内置合成后端
func (ctx *Context) SetBackend(b sim.Backend) {
	ctx.backend = b
}

// Init 初始化任务上下文
// 算法说明：
// 1. 重置时钟
// 2. 初始化路网拓扑，拓扑不一致直接panic终止启动
// 3. 在拓扑之上构建全局坐标映射（应用配置中的边起点提示）
// 4. 创建邻车查询引擎
// 5. 未指定后端时创建内置合成后端
func (ctx *Context) Init() {
	ctx.clock.Init()

	initRes := ctx.initRes
	log.Infof("Edge: %v", len(initRes.Edges))
	log.Infof("Connection: %v", len(initRes.Connections))

	if err := ctx.edgeManager.Init(initRes); err != nil {
		log.Panicf("task: failed to build network topology: %v", err)
	}
	linearMap, err := linear.New(ctx.edgeManager, ctx.runtimeConfig.All.Input.Starts)
	if err != nil {
		log.Panicf("task: failed to build linear map: %v", err)
	}
	ctx.linearMap = linearMap
	ctx.engine = vehicle.NewEngine(ctx, ctx.vehicleManager, ctx.runtimeConfig.Q)
	if ctx.backend == nil {
		ctx.backend = sim.NewSynthetic(ctx.edgeManager, ctx.runtimeConfig.All.Sim, ctx.clock.DT)
	}
}
