package vehicle

import (
	"fmt"
	"sort"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/microsim-oss/entity"
	"github.com/tsinghua-fib-lab/microsim-oss/utils/container"
)

// laneKey 车道链表的索引键
type laneKey struct {
	edge string
	lane int
}

// Manager Vehicle管理器（车辆状态表）
// 功能：维护所有在网车辆的最新状态与按车道组织的有序成员索引
// 说明：每步由Refresh根据模拟器快照整体刷新，快照之间只读；
// 逐车访问器接受调用方提供的默认值，对未知车辆不panic不返回error
type Manager struct {
	ctx entity.ITaskContext

	data map[string]*Vehicle
	// 逐车道有序车辆链，按(位置, ID)升序
	chains map[laneKey]*container.List[*Vehicle]
	// 外部策略标记的关注车辆ID集合
	observed map[string]struct{}

	numDeparted   int // 累计发车数
	numArrived    int // 累计到达数
	numTeleported int // 累计被传送移除数

	stepDeparted   int // 最近一步发车数
	stepArrived    int // 最近一步到达数
	stepTeleported int // 最近一步被传送移除数
}

// NewManager 创建Vehicle管理器实例
func NewManager(ctx entity.ITaskContext) *Manager {
	return &Manager{
		ctx:      ctx,
		data:     make(map[string]*Vehicle),
		chains:   make(map[laneKey]*container.List[*Vehicle]),
		observed: make(map[string]struct{}),
	}
}

func (m *Manager) chain(k laneKey) *container.List[*Vehicle] {
	if c, ok := m.chains[k]; ok {
		return c
	}
	c := &container.List[*Vehicle]{ID: fmt.Sprintf("%s#%d", k.edge, k.lane)}
	m.chains[k] = c
	return c
}

// Refresh 用模拟器本步快照刷新状态表
// 功能：新车建表项、已知车原地更新、快照中缺席的车删除
// 参数：snap-本步快照，nil时不做任何事
// 算法说明：
// 1. 逐条处理快照：换边/换道的车先从旧链摘下节点再插入新链，
// 同车道内移动的车原地改写排序键并记录所在链
// 2. 对每条被原地改写过的链做PopUnsorted+Merge增量重排
// 3. 删除快照中未出现的车辆并清掉其关注标记
// 4. 按快照附带的发车/到达/传送列表记录单步计数并累加总计数
func (m *Manager) Refresh(snap *entity.StepSnapshot) {
	if snap == nil {
		return
	}
	seen := make(map[string]struct{}, len(snap.Vehicles))
	moved := make(map[laneKey]struct{})
	for i := range snap.Vehicles {
		s := &snap.Vehicles[i]
		seen[s.ID] = struct{}{}
		if v, ok := m.data[s.ID]; ok {
			v.speed = s.Speed
			v.length = s.Length
			if s.Class != "" {
				v.class = s.Class
			}
			if v.edge != s.Edge || v.lane != s.Lane {
				m.chain(laneKey{v.edge, v.lane}).Remove(v.node)
				v.edge = s.Edge
				v.lane = s.Lane
				v.node.S = s.Position
				m.chain(laneKey{v.edge, v.lane}).Insert(v.node)
			} else if v.node.S != s.Position {
				v.node.S = s.Position
				moved[laneKey{v.edge, v.lane}] = struct{}{}
			}
		} else {
			class := s.Class
			if class == "" {
				class = entity.ClassHuman
			}
			v := &Vehicle{
				id:     s.ID,
				class:  class,
				edge:   s.Edge,
				lane:   s.Lane,
				speed:  s.Speed,
				length: s.Length,
			}
			v.node = &container.ListNode[*Vehicle]{S: s.Position, ID: s.ID, Value: v}
			m.data[s.ID] = v
			m.chain(laneKey{v.edge, v.lane}).Insert(v.node)
		}
	}
	for id, v := range m.data {
		if _, ok := seen[id]; !ok {
			m.chain(laneKey{v.edge, v.lane}).Remove(v.node)
			delete(m.data, id)
			delete(m.observed, id)
		}
	}
	for k := range moved {
		c := m.chains[k]
		c.Merge(c.PopUnsorted())
	}
	m.stepDeparted = len(snap.Departed)
	m.stepArrived = len(snap.Arrived)
	m.stepTeleported = len(snap.Teleported)
	m.numDeparted += m.stepDeparted
	m.numArrived += m.stepArrived
	m.numTeleported += m.stepTeleported
	if len(snap.Teleported) > 0 {
		log.Warnf("%d vehicles teleported: %v", len(snap.Teleported), snap.Teleported)
	}
}

// Get 根据ID获取Vehicle实例，不存在则panic
func (m *Manager) Get(id string) *Vehicle {
	if v, ok := m.data[id]; !ok {
		log.Panicf("no id %s in vehicle data", id)
		return nil
	} else {
		return v
	}
}

// GetOrError 根据ID获取Vehicle实例，不存在则返回错误
func (m *Manager) GetOrError(id string) (*Vehicle, error) {
	if v, ok := m.data[id]; !ok {
		return nil, fmt.Errorf("no id %s in vehicle data", id)
	} else {
		return v, nil
	}
}

// Len 获取当前在网车辆数
func (m *Manager) Len() int {
	return len(m.data)
}

// IDs 获取当前所有车辆ID（按ID排序）
func (m *Manager) IDs() []string {
	ids := lo.Keys(m.data)
	sort.Strings(ids)
	return ids
}

// idsByClass 获取指定类别的车辆ID（按ID排序）
func (m *Manager) idsByClass(class string) []string {
	var ids []string
	for id, v := range m.data {
		if v.class == class {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// HumanIDs 获取所有人类驾驶车辆ID（按ID排序）
func (m *Manager) HumanIDs() []string {
	return m.idsByClass(entity.ClassHuman)
}

// RLIDs 获取所有自动驾驶车辆ID（按ID排序）
func (m *Manager) RLIDs() []string {
	return m.idsByClass(entity.ClassRL)
}

// SetObserved 把在网车辆标记为关注车辆，未知车辆不做任何事
func (m *Manager) SetObserved(id string) {
	if _, ok := m.data[id]; ok {
		m.observed[id] = struct{}{}
	}
}

// RemoveObserved 取消车辆的关注标记
func (m *Manager) RemoveObserved(id string) {
	delete(m.observed, id)
}

// ObservedIDs 获取所有关注车辆ID（按ID排序）
func (m *Manager) ObservedIDs() []string {
	ids := lo.Keys(m.observed)
	sort.Strings(ids)
	return ids
}

// IdsOnEdge 获取指定边上的车辆ID列表
// 说明：按车道序号拼接各车道链，车道内按位置升序；未知边返回空列表
func (m *Manager) IdsOnEdge(edge string) []string {
	numLanes := m.ctx.EdgeManager().NumLanes(edge)
	var ids []string
	for lane := 0; lane < numLanes; lane++ {
		if c, ok := m.chains[laneKey{edge, lane}]; ok {
			ids = append(ids, c.IDs()...)
		}
	}
	return ids
}

// IDsByGlobalPosition 获取按全局坐标升序排列的所有车辆ID
// 说明：同坐标时按ID排序，保证观测向量的顺序确定
func (m *Manager) IDsByGlobalPosition() []string {
	ids := m.IDs()
	pos := make(map[string]float64, len(ids))
	for _, id := range ids {
		v := m.data[id]
		pos[id] = m.ctx.LinearMap().ToGlobal(v.edge, v.node.S)
	}
	sort.SliceStable(ids, func(i, j int) bool { return pos[ids[i]] < pos[ids[j]] })
	return ids
}

// NumDeparted 获取累计发车数
func (m *Manager) NumDeparted() int {
	return m.numDeparted
}

// NumArrived 获取累计到达数
func (m *Manager) NumArrived() int {
	return m.numArrived
}

// NumTeleported 获取累计被传送移除数
func (m *Manager) NumTeleported() int {
	return m.numTeleported
}

// StepDeparted 获取最近一步的发车数
func (m *Manager) StepDeparted() int {
	return m.stepDeparted
}

// StepArrived 获取最近一步的到达数
func (m *Manager) StepArrived() int {
	return m.stepArrived
}

// StepTeleported 获取最近一步的被传送移除数
func (m *Manager) StepTeleported() int {
	return m.stepTeleported
}

// GetSpeed 获取车辆速度，未知车辆返回def
func (m *Manager) GetSpeed(id string, def float64) float64 {
	if v, ok := m.data[id]; ok {
		return v.speed
	}
	return def
}

// GetPosition 获取车辆沿边的局部位置，未知车辆返回def
func (m *Manager) GetPosition(id string, def float64) float64 {
	if v, ok := m.data[id]; ok {
		return v.node.S
	}
	return def
}

// GetEdge 获取车辆所在边ID，未知车辆返回def
func (m *Manager) GetEdge(id string, def string) string {
	if v, ok := m.data[id]; ok {
		return v.edge
	}
	return def
}

// GetLane 获取车辆所在车道序号，未知车辆返回def
func (m *Manager) GetLane(id string, def int) int {
	if v, ok := m.data[id]; ok {
		return v.lane
	}
	return def
}

// GetLength 获取车长，未知车辆返回def
func (m *Manager) GetLength(id string, def float64) float64 {
	if v, ok := m.data[id]; ok {
		return v.length
	}
	return def
}

// GetType 获取车辆类别，未知车辆返回def
func (m *Manager) GetType(id string, def string) string {
	if v, ok := m.data[id]; ok {
		return v.class
	}
	return def
}

// GetGlobalPosition 获取车辆全局坐标，未知车辆返回def
// 说明：在网车辆经全局坐标映射换算，所在边不可解析时得到的是映射的ErrorValue
func (m *Manager) GetGlobalPosition(id string, def float64) float64 {
	if v, ok := m.data[id]; ok {
		return m.ctx.LinearMap().ToGlobal(v.edge, v.node.S)
	}
	return def
}

// GetSpeeds GetSpeed的逐元素版本
func (m *Manager) GetSpeeds(ids []string, def float64) []float64 {
	return lo.Map(ids, func(id string, _ int) float64 { return m.GetSpeed(id, def) })
}

// GetPositions GetPosition的逐元素版本
func (m *Manager) GetPositions(ids []string, def float64) []float64 {
	return lo.Map(ids, func(id string, _ int) float64 { return m.GetPosition(id, def) })
}

// GetEdges GetEdge的逐元素版本
func (m *Manager) GetEdges(ids []string, def string) []string {
	return lo.Map(ids, func(id string, _ int) string { return m.GetEdge(id, def) })
}

// GetLanes GetLane的逐元素版本
func (m *Manager) GetLanes(ids []string, def int) []int {
	return lo.Map(ids, func(id string, _ int) int { return m.GetLane(id, def) })
}

// GetLengths GetLength的逐元素版本
func (m *Manager) GetLengths(ids []string, def float64) []float64 {
	return lo.Map(ids, func(id string, _ int) float64 { return m.GetLength(id, def) })
}

// GetTypes GetType的逐元素版本
func (m *Manager) GetTypes(ids []string, def string) []string {
	return lo.Map(ids, func(id string, _ int) string { return m.GetType(id, def) })
}

// GetGlobalPositions GetGlobalPosition的逐元素版本
func (m *Manager) GetGlobalPositions(ids []string, def float64) []float64 {
	return lo.Map(ids, func(id string, _ int) float64 { return m.GetGlobalPosition(id, def) })
}
