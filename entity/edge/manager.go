package edge

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"git.fiblab.net/general/common/v2/parallel"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/microsim-oss/entity"
	"github.com/tsinghua-fib-lab/microsim-oss/utils/input"
)

// Manager Edge管理器（静态路网拓扑）
// 功能：管理所有Edge实体，提供长度/限速/车道数/连接关系查询
// 说明：Init成功后只读，可在并行的独立会话间共享
type Manager struct {
	ctx entity.ITaskContext

	data      map[string]*Edge
	edges     []*Edge // 非内部边，按ID排序
	junctions []*Edge // 内部边，按ID排序

	maxV        float64 // 非内部边限速最大值
	totalLength float64 // 非内部边长度之和
}

// NewManager 创建Edge管理器实例
func NewManager(ctx entity.ITaskContext) *Manager {
	return &Manager{
		ctx:  ctx,
		data: make(map[string]*Edge),
	}
}

// Init 初始化路网拓扑
// 功能：根据路网描述构建所有Edge对象与逐车道连接关系
// 参数：data-路网描述（边与连接列表）
// 返回：拓扑不一致时返回错误，此时任何后续查询的正确性都无法保证，
// 调用方应立即终止会话启动
// 算法说明：
// 1. 校验边数据（车道数≥1、长度≥0）后并行创建Edge对象
// 2. 校验内部边父边名的真实性，不存在则清空回溯引用
// 3. 逐条登记连接：带via的非内部边连接指向via内部车道，
// 其余直接指向to；任何引用未知边/越界车道的连接都是构建错误
// 4. 对每条车道的连接列表排序，保证遍历顺序确定
// 5. 统计非内部边的限速最大值与总长度
func (m *Manager) Init(data *input.NetData) error {
	for _, e := range data.Edges {
		if e.NumLanes < 1 {
			return errors.Errorf("edge: %s has bad lane count %d", e.ID, e.NumLanes)
		}
		if e.Length < 0 {
			return errors.Errorf("edge: %s has bad length %f", e.ID, e.Length)
		}
	}
	all := parallel.GoMap(data.Edges, func(base input.Edge) *Edge {
		return newEdge(base)
	})
	m.data = lo.SliceToMap(all, func(e *Edge) (string, *Edge) {
		return e.id, e
	})
	for _, e := range all {
		if e.isInternal {
			if parent, ok := m.data[e.parent]; !ok || parent.isInternal {
				e.parent = ""
			}
			m.junctions = append(m.junctions, e)
		} else {
			m.edges = append(m.edges, e)
		}
	}
	sort.Slice(m.edges, func(i, j int) bool { return m.edges[i].id < m.edges[j].id })
	sort.Slice(m.junctions, func(i, j int) bool { return m.junctions[i].id < m.junctions[j].id })

	for _, c := range data.Connections {
		from, ok := m.data[c.From]
		if !ok {
			return errors.Errorf("edge: connection from unknown edge %s", c.From)
		}
		if c.FromLane < 0 || c.FromLane >= from.numLanes {
			return errors.Errorf("edge: connection from %s with bad lane %d", c.From, c.FromLane)
		}
		toEdge, toLane := c.To, c.ToLane
		if c.Via != "" && !from.isInternal {
			// 非内部边的带via连接先进入路口内部车道
			viaEdge, viaLane, err := splitViaLane(c.Via)
			if err != nil {
				return err
			}
			toEdge, toLane = viaEdge, viaLane
		}
		to, ok := m.data[toEdge]
		if !ok {
			return errors.Errorf("edge: connection to unknown edge %s", toEdge)
		}
		if toLane < 0 || toLane >= to.numLanes {
			return errors.Errorf("edge: connection to %s with bad lane %d", toEdge, toLane)
		}
		from.nexts[c.FromLane] = append(from.nexts[c.FromLane], entity.Link{Edge: toEdge, Lane: toLane})
		to.prevs[toLane] = append(to.prevs[toLane], entity.Link{Edge: c.From, Lane: c.FromLane})
	}

	// 连接遍历顺序确定化
	parallel.GoFor(all, func(e *Edge) {
		for lane := 0; lane < e.numLanes; lane++ {
			sortLinks(e.nexts[lane])
			sortLinks(e.prevs[lane])
		}
	})

	for _, e := range m.edges {
		m.maxV = max(m.maxV, e.maxV)
		m.totalLength += e.length
	}
	log.Infof("Edge: %d, Junction: %d", len(m.edges), len(m.junctions))
	return nil
}

// splitViaLane 解析via内部车道名
// 说明：形如":J_2_0"的车道名拆为内部边":J_2"与车道序号0
func splitViaLane(via string) (string, int, error) {
	i := strings.LastIndex(via, "_")
	if i <= 0 {
		return "", 0, errors.Errorf("edge: bad via lane name %s", via)
	}
	lane, err := strconv.Atoi(via[i+1:])
	if err != nil {
		return "", 0, errors.Errorf("edge: bad via lane name %s", via)
	}
	return via[:i], lane, nil
}

func sortLinks(links []entity.Link) {
	sort.Slice(links, func(i, j int) bool {
		if links[i].Edge != links[j].Edge {
			return links[i].Edge < links[j].Edge
		}
		return links[i].Lane < links[j].Lane
	})
}

// Get 根据ID获取Edge实例，不存在则panic
func (m *Manager) Get(id string) *Edge {
	if e, ok := m.data[id]; !ok {
		log.Panicf("no id %s in edge data", id)
		return nil
	} else {
		return e
	}
}

// GetOrError 根据ID获取Edge实例，不存在则返回错误
func (m *Manager) GetOrError(id string) (*Edge, error) {
	if e, ok := m.data[id]; !ok {
		return nil, fmt.Errorf("no id %s in edge data", id)
	} else {
		return e, nil
	}
}

// EdgeLength 获取边长度，未知边返回ErrorValue
func (m *Manager) EdgeLength(id string) float64 {
	if e, ok := m.data[id]; ok {
		return e.length
	}
	return entity.ErrorValue
}

// SpeedLimit 获取边限速，未知边返回ErrorValue
func (m *Manager) SpeedLimit(id string) float64 {
	if e, ok := m.data[id]; ok {
		return e.maxV
	}
	return entity.ErrorValue
}

// NumLanes 获取边车道数，未知边返回ErrorValue
func (m *Manager) NumLanes(id string) int {
	if e, ok := m.data[id]; ok {
		return e.numLanes
	}
	return entity.ErrorValue
}

// MaxSpeed 获取所有非内部边限速的最大值
func (m *Manager) MaxSpeed() float64 {
	return m.maxV
}

// TotalLength 获取所有非内部边长度之和
func (m *Manager) TotalLength() float64 {
	return m.totalLength
}

// EdgeList 获取所有非内部边ID（按ID排序）
func (m *Manager) EdgeList() []string {
	return lo.Map(m.edges, func(e *Edge, _ int) string { return e.id })
}

// JunctionList 获取所有内部边ID（按ID排序）
func (m *Manager) JunctionList() []string {
	return lo.Map(m.junctions, func(e *Edge, _ int) string { return e.id })
}

// ParentEdge 获取内部边回溯到的父边ID，无则返回空串
func (m *Manager) ParentEdge(id string) string {
	if e, ok := m.data[id]; ok {
		return e.parent
	}
	return ""
}

// Next 获取(edge, lane)的所有后继连接，不存在时返回空列表
func (m *Manager) Next(edge string, lane int) []entity.Link {
	if e, ok := m.data[edge]; ok {
		return e.Nexts(lane)
	}
	return nil
}

// Prev 获取(edge, lane)的所有前驱连接，不存在时返回空列表
func (m *Manager) Prev(edge string, lane int) []entity.Link {
	if e, ok := m.data[edge]; ok {
		return e.Prevs(lane)
	}
	return nil
}
