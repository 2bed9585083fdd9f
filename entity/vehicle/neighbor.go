package vehicle

import (
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/microsim-oss/entity"
	"github.com/tsinghua-fib-lab/microsim-oss/utils/config"
	"github.com/tsinghua-fib-lab/microsim-oss/utils/container"
)

// Engine 邻车查询引擎
// 功能：在车道链表上查询前车/后车及对应的车头/车尾距
// 说明：纯查询层，建立在Manager的车道链与路网连接关系之上，不持有状态；
// 同车道查询从本车节点出发沿链表走，跨边查询沿连接关系最多走hopLimit跳
type Engine struct {
	ctx      entity.ITaskContext
	vehicles *Manager

	// 跨边搜索最大跳数
	hopLimit int
	// 无邻车时报告的保守距离，0表示查询时取路网非内部边总长度
	fallback float64
}

// NewEngine 创建邻车查询引擎
func NewEngine(ctx entity.ITaskContext, vehicles *Manager, c config.Query) *Engine {
	hopLimit := c.HopLimit
	if hopLimit <= 0 {
		hopLimit = 1
	}
	return &Engine{
		ctx:      ctx,
		vehicles: vehicles,
		hopLimit: hopLimit,
		fallback: c.FallbackDistance,
	}
}

// FallbackDistance 获取无邻车时报告的保守距离
func (e *Engine) FallbackDistance() float64 {
	if e.fallback > 0 {
		return e.fallback
	}
	return e.ctx.EdgeManager().TotalLength()
}

// pickLink 在连接列表中选择继续搜索的方向
// 说明：优先保持车道序号不变的连接；没有则只在连接唯一时跟随，
// 多个候选且都换道时停止搜索
func pickLink(links []entity.Link, lane int) (entity.Link, bool) {
	for _, l := range links {
		if l.Lane == lane {
			return l, true
		}
	}
	if len(links) == 1 {
		return links[0], true
	}
	return entity.Link{}, false
}

// leaderInLane 查询v在本边lane车道上的前车
// 返回：前车与沿全局坐标轴度量的净位置差（不含车长），无前车返回(nil, 0)
// 算法说明：
// 1. 本边内：同车道从v的节点向后走，异车道从链表头扫描，
// 取第一个位置严格大于v的节点（同位置不互为邻车）
// 2. 本边无前车时沿后继连接跨边搜索，最多hopLimit跳，
// 途经空边时累加其长度，距离=本边余量+途经边长+前车位置
func (e *Engine) leaderInLane(v *Vehicle, lane int) (*Vehicle, float64) {
	var node *container.ListNode[*Vehicle]
	if lane == v.lane {
		node = v.node.Next()
	} else if c, ok := e.vehicles.chains[laneKey{v.edge, lane}]; ok {
		node = c.First()
	}
	for node != nil && node.S <= v.node.S {
		node = node.Next()
	}
	if node != nil {
		return node.Value, node.S - v.node.S
	}

	topo := e.ctx.EdgeManager()
	edgeLength := topo.EdgeLength(v.edge)
	if edgeLength == entity.ErrorValue {
		return nil, 0
	}
	dist := edgeLength - v.node.S
	cur := entity.Link{Edge: v.edge, Lane: lane}
	for hop := 0; hop < e.hopLimit; hop++ {
		next, ok := pickLink(topo.Next(cur.Edge, cur.Lane), cur.Lane)
		if !ok {
			break
		}
		if c, ok := e.vehicles.chains[laneKey{next.Edge, next.Lane}]; ok {
			n := c.First()
			if n != nil && n.Value == v {
				n = n.Next()
			}
			if n != nil {
				return n.Value, dist + n.S
			}
		}
		l := topo.EdgeLength(next.Edge)
		if l == entity.ErrorValue {
			break
		}
		dist += l
		cur = next
	}
	return nil, 0
}

// followerInLane 查询v在本边lane车道上的后车
// 返回：后车与沿全局坐标轴度量的净位置差（不含车长），无后车返回(nil, 0)
// 说明：与leaderInLane对称，跨边搜索沿前驱连接进行，
// 距离=v的本边位置+途经边长+(后车所在边长-后车位置)
func (e *Engine) followerInLane(v *Vehicle, lane int) (*Vehicle, float64) {
	var node *container.ListNode[*Vehicle]
	if lane == v.lane {
		node = v.node.Prev()
	} else if c, ok := e.vehicles.chains[laneKey{v.edge, lane}]; ok {
		node = c.Last()
	}
	for node != nil && node.S >= v.node.S {
		node = node.Prev()
	}
	if node != nil {
		return node.Value, v.node.S - node.S
	}

	topo := e.ctx.EdgeManager()
	dist := v.node.S
	cur := entity.Link{Edge: v.edge, Lane: lane}
	for hop := 0; hop < e.hopLimit; hop++ {
		prev, ok := pickLink(topo.Prev(cur.Edge, cur.Lane), cur.Lane)
		if !ok {
			break
		}
		l := topo.EdgeLength(prev.Edge)
		if l == entity.ErrorValue {
			break
		}
		if c, ok := e.vehicles.chains[laneKey{prev.Edge, prev.Lane}]; ok {
			n := c.Last()
			if n != nil && n.Value == v {
				n = n.Prev()
			}
			if n != nil {
				return n.Value, dist + l - n.S
			}
		}
		dist += l
		cur = prev
	}
	return nil, 0
}

// GetLeader 获取车辆在本车道上的前车ID
// 说明：无前车返回空串（正常的无邻车状态），未知车辆返回def
func (e *Engine) GetLeader(id string, def string) string {
	v, ok := e.vehicles.data[id]
	if !ok {
		return def
	}
	if leader, _ := e.leaderInLane(v, v.lane); leader != nil {
		return leader.id
	}
	return ""
}

// GetFollower 获取车辆在本车道上的后车ID
// 说明：无后车返回空串，未知车辆返回def
func (e *Engine) GetFollower(id string, def string) string {
	v, ok := e.vehicles.data[id]
	if !ok {
		return def
	}
	if follower, _ := e.followerInLane(v, v.lane); follower != nil {
		return follower.id
	}
	return ""
}

// GetHeadway 获取车辆与本车道前车的车头距（位置差减前车车长）
// 说明：无前车返回保守回退距离，未知车辆返回def；
// 位置重叠产生的负值如实报告不截断
func (e *Engine) GetHeadway(id string, def float64) float64 {
	v, ok := e.vehicles.data[id]
	if !ok {
		return def
	}
	if leader, dist := e.leaderInLane(v, v.lane); leader != nil {
		return dist - leader.length
	}
	return e.FallbackDistance()
}

// GetTailway 获取车辆与本车道后车的车尾距（位置差减后车车长）
// 说明：无后车返回保守回退距离，未知车辆返回def
func (e *Engine) GetTailway(id string, def float64) float64 {
	v, ok := e.vehicles.data[id]
	if !ok {
		return def
	}
	if follower, dist := e.followerInLane(v, v.lane); follower != nil {
		return dist - follower.length
	}
	return e.FallbackDistance()
}

// GetLaneLeaders 获取车辆所在边每条车道上的前车ID
// 返回：长度等于所在边车道数的数组，按车道序号排列，无前车的车道为空串；
// 未知车辆返回def
func (e *Engine) GetLaneLeaders(id string, def []string) []string {
	v, ok := e.vehicles.data[id]
	if !ok {
		return def
	}
	numLanes := e.ctx.EdgeManager().NumLanes(v.edge)
	ids := make([]string, 0, max(numLanes, 0))
	for lane := 0; lane < numLanes; lane++ {
		if leader, _ := e.leaderInLane(v, lane); leader != nil {
			ids = append(ids, leader.id)
		} else {
			ids = append(ids, "")
		}
	}
	return ids
}

// GetLaneFollowers 获取车辆所在边每条车道上的后车ID，未知车辆返回def
func (e *Engine) GetLaneFollowers(id string, def []string) []string {
	v, ok := e.vehicles.data[id]
	if !ok {
		return def
	}
	numLanes := e.ctx.EdgeManager().NumLanes(v.edge)
	ids := make([]string, 0, max(numLanes, 0))
	for lane := 0; lane < numLanes; lane++ {
		if follower, _ := e.followerInLane(v, lane); follower != nil {
			ids = append(ids, follower.id)
		} else {
			ids = append(ids, "")
		}
	}
	return ids
}

// GetLaneHeadways 获取车辆所在边每条车道上的车头距
// 说明：无前车的车道取保守回退距离，未知车辆返回def
func (e *Engine) GetLaneHeadways(id string, def []float64) []float64 {
	v, ok := e.vehicles.data[id]
	if !ok {
		return def
	}
	numLanes := e.ctx.EdgeManager().NumLanes(v.edge)
	headways := make([]float64, 0, max(numLanes, 0))
	for lane := 0; lane < numLanes; lane++ {
		if leader, dist := e.leaderInLane(v, lane); leader != nil {
			headways = append(headways, dist-leader.length)
		} else {
			headways = append(headways, e.FallbackDistance())
		}
	}
	return headways
}

// GetLaneTailways 获取车辆所在边每条车道上的车尾距
// 说明：无后车的车道取保守回退距离，未知车辆返回def
func (e *Engine) GetLaneTailways(id string, def []float64) []float64 {
	v, ok := e.vehicles.data[id]
	if !ok {
		return def
	}
	numLanes := e.ctx.EdgeManager().NumLanes(v.edge)
	tailways := make([]float64, 0, max(numLanes, 0))
	for lane := 0; lane < numLanes; lane++ {
		if follower, dist := e.followerInLane(v, lane); follower != nil {
			tailways = append(tailways, dist-follower.length)
		} else {
			tailways = append(tailways, e.FallbackDistance())
		}
	}
	return tailways
}

// GetLeaders GetLeader的逐元素版本
func (e *Engine) GetLeaders(ids []string, def string) []string {
	return lo.Map(ids, func(id string, _ int) string { return e.GetLeader(id, def) })
}

// GetFollowers GetFollower的逐元素版本
func (e *Engine) GetFollowers(ids []string, def string) []string {
	return lo.Map(ids, func(id string, _ int) string { return e.GetFollower(id, def) })
}

// GetHeadways GetHeadway的逐元素版本
func (e *Engine) GetHeadways(ids []string, def float64) []float64 {
	return lo.Map(ids, func(id string, _ int) float64 { return e.GetHeadway(id, def) })
}

// GetTailways GetTailway的逐元素版本
func (e *Engine) GetTailways(ids []string, def float64) []float64 {
	return lo.Map(ids, func(id string, _ int) float64 { return e.GetTailway(id, def) })
}

// GetLaneLeadersBatch GetLaneLeaders的逐元素版本
func (e *Engine) GetLaneLeadersBatch(ids []string, def []string) [][]string {
	return lo.Map(ids, func(id string, _ int) []string { return e.GetLaneLeaders(id, def) })
}

// GetLaneFollowersBatch GetLaneFollowers的逐元素版本
func (e *Engine) GetLaneFollowersBatch(ids []string, def []string) [][]string {
	return lo.Map(ids, func(id string, _ int) []string { return e.GetLaneFollowers(id, def) })
}

// GetLaneHeadwaysBatch GetLaneHeadways的逐元素版本
func (e *Engine) GetLaneHeadwaysBatch(ids []string, def []float64) [][]float64 {
	return lo.Map(ids, func(id string, _ int) []float64 { return e.GetLaneHeadways(id, def) })
}

// GetLaneTailwaysBatch GetLaneTailways的逐元素版本
func (e *Engine) GetLaneTailwaysBatch(ids []string, def []float64) [][]float64 {
	return lo.Map(ids, func(id string, _ int) []float64 { return e.GetLaneTailways(id, def) })
}
