package sim

import (
	"fmt"

	"github.com/tsinghua-fib-lab/microsim-oss/entity"
	"github.com/tsinghua-fib-lab/microsim-oss/utils/config"
	"github.com/tsinghua-fib-lab/microsim-oss/utils/randengine"
)

// 默认车长（米）
const defaultVehicleLength = 5

// synVehicle 合成后端内部维护的车辆状态
type synVehicle struct {
	id     string
	class  string
	edge   string
	lane   int
	pos    float64
	speed  float64
	length float64
}

// Synthetic 内置合成后端
// 功能：以边限速沿连接关系匀速推车，按概率从发车边放入新车，
// 驶出无后继连接的边即视为到达
// 说明：确定性由种子保证，仅用于无外部模拟器时的演示与测试，
// 不是交通流模型，车辆之间无相互作用
type Synthetic struct {
	topo entity.IEdgeManager
	rng  *randengine.Engine
	dt   float64

	maxVehicles   int      // ≤0表示不限
	departEdges   []string // 发车边集合
	departP       float64  // 每步每条发车边的发车概率
	vehicleLength float64
	rlP           float64 // 新车为rl类别的概率

	data  map[string]*synVehicle
	order []string // 车辆ID，按入网顺序
	next  int      // 发号器
}

// NewSynthetic 创建合成后端
// 说明：发车边集合为空时使用所有非内部边
func NewSynthetic(topo entity.IEdgeManager, c config.Sim, dt float64) *Synthetic {
	departEdges := c.DepartEdges
	if len(departEdges) == 0 {
		departEdges = topo.EdgeList()
	}
	vehicleLength := c.VehicleLength
	if vehicleLength <= 0 {
		vehicleLength = defaultVehicleLength
	}
	log.Infof("synthetic backend: %d depart edges, p=%.3f, seed=%d", len(departEdges), c.DepartProbability, c.Seed)
	return &Synthetic{
		topo:          topo,
		rng:           randengine.New(c.Seed),
		dt:            dt,
		maxVehicles:   c.MaxVehicles,
		departEdges:   departEdges,
		departP:       c.DepartProbability,
		vehicleLength: vehicleLength,
		rlP:           c.RLProbability,
		data:          make(map[string]*synVehicle),
	}
}

// Step 推进一个模拟步并返回本步快照
// 算法说明：
// 1. 按入网顺序推每辆车：位置前进限速×dt，越过边末端时沿后继连接进入下一条边
// （优先保持车道序号，其次随机选择），无后继连接则到达离网
// 2. 对每条发车边按概率放入新车（受车辆数上限约束），车道随机，
// 类别按rl概率抽取
// 3. 产出完整快照，车辆顺序与入网顺序一致
func (s *Synthetic) Step() *entity.StepSnapshot {
	snap := &entity.StepSnapshot{}

	var alive []string
	for _, id := range s.order {
		v := s.data[id]
		v.speed = s.topo.SpeedLimit(v.edge)
		v.pos += v.speed * s.dt
		arrived := false
		for v.pos >= s.topo.EdgeLength(v.edge) {
			link, ok := s.pickNext(v.edge, v.lane)
			if !ok {
				arrived = true
				break
			}
			v.pos -= s.topo.EdgeLength(v.edge)
			v.edge = link.Edge
			v.lane = link.Lane
		}
		if arrived {
			delete(s.data, id)
			snap.Arrived = append(snap.Arrived, id)
		} else {
			alive = append(alive, id)
		}
	}
	s.order = alive

	for _, edge := range s.departEdges {
		if s.maxVehicles > 0 && len(s.data) >= s.maxVehicles {
			break
		}
		if !s.rng.PTrue(s.departP) {
			continue
		}
		numLanes := s.topo.NumLanes(edge)
		if numLanes <= 0 {
			continue
		}
		class := entity.ClassHuman
		if s.rng.PTrue(s.rlP) {
			class = entity.ClassRL
		}
		v := &synVehicle{
			id:     fmt.Sprintf("veh_%d", s.next),
			class:  class,
			edge:   edge,
			lane:   s.rng.Intn(numLanes),
			length: s.vehicleLength,
		}
		s.next++
		s.data[v.id] = v
		s.order = append(s.order, v.id)
		snap.Departed = append(snap.Departed, v.id)
	}

	for _, id := range s.order {
		v := s.data[id]
		snap.Vehicles = append(snap.Vehicles, entity.VehicleSnapshot{
			ID:       v.id,
			Edge:     v.edge,
			Lane:     v.lane,
			Position: v.pos,
			Speed:    v.speed,
			Length:   v.length,
			Class:    v.class,
		})
	}
	return snap
}

// pickNext 选择驶出当前边后进入的连接
// 说明：优先保持车道序号不变，否则按目标边限速加权随机选择
// （限速高的分支承接更多流量）
func (s *Synthetic) pickNext(edge string, lane int) (entity.Link, bool) {
	links := s.topo.Next(edge, lane)
	if len(links) == 0 {
		return entity.Link{}, false
	}
	for _, l := range links {
		if l.Lane == lane {
			return l, true
		}
	}
	weights := make([]float64, len(links))
	for i, l := range links {
		if v := s.topo.SpeedLimit(l.Edge); v > 0 {
			weights[i] = v
		} else {
			weights[i] = 1
		}
	}
	return links[s.rng.DiscreteDistribution(weights)], true
}
