package linear

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/tsinghua-fib-lab/microsim-oss/entity"
	"github.com/tsinghua-fib-lab/microsim-oss/utils/config"
)

// Map 全局坐标映射
// 功能：把边图线性化到单一全局坐标轴，提供局部坐标与全局坐标的互转
// 说明：每个场景构建一次，此后只读；边上局部位置p对应全局坐标start+p
type Map struct {
	// 非内部边起点
	starts map[string]float64
	// 内部边起点（按偏移去重后保留的部分）
	internalStarts map[string]float64
	// 内部边→父边回溯引用，构建时从拓扑复制
	parents map[string]string
	// 合并后的坐标表，按偏移严格升序
	entries []entity.OffsetEntry
}

// New 根据拓扑构建全局坐标映射
// 参数：topo-路网拓扑，hints-外部提供的边起点提示（可为空）
// 算法说明：
// 1. 非内部边起点：有提示则使用提示（必须覆盖全部非内部边），
// 否则按边ID排序以长度累加计算
// 2. 内部边起点：由连接关系推导（前驱边起点+前驱边长度），
// 前驱仍是内部边时迭代至收敛
// 3. 合并表：先按ID顺序写入非内部边（两条非内部边偏移重合是构建错误），
// 再写入内部边，偏移冲突时保留先写入者（被丢弃的内部边仍可经父边回溯解析）
// 4. 合并表按偏移升序排序，供ToLocal反查
func New(topo entity.IEdgeManager, hints []config.EdgeStart) (*Map, error) {
	m := &Map{
		starts:         make(map[string]float64),
		internalStarts: make(map[string]float64),
		parents:        make(map[string]string),
	}

	edgeList := topo.EdgeList()
	if len(hints) > 0 {
		for _, h := range hints {
			if topo.EdgeLength(h.Edge) == entity.ErrorValue {
				return nil, errors.Errorf("linear: start hint for unknown edge %s", h.Edge)
			}
			m.starts[h.Edge] = h.Offset
		}
		for _, id := range edgeList {
			if _, ok := m.starts[id]; !ok {
				return nil, errors.Errorf("linear: no start hint for edge %s", id)
			}
		}
	} else {
		offset := .0
		for _, id := range edgeList {
			m.starts[id] = offset
			offset += topo.EdgeLength(id)
		}
	}

	junctionList := topo.JunctionList()
	for _, id := range junctionList {
		m.parents[id] = topo.ParentEdge(id)
	}

	// 内部边起点推导，前驱链上可能还有内部边，迭代至不再有新解
	resolved := make(map[string]float64)
	for range junctionList {
		progress := false
		for _, id := range junctionList {
			if _, ok := resolved[id]; ok {
				continue
			}
			lanes := topo.NumLanes(id)
			for lane := 0; lane < lanes; lane++ {
				for _, link := range topo.Prev(id, lane) {
					if start, ok := m.starts[link.Edge]; ok {
						resolved[id] = start + topo.EdgeLength(link.Edge)
						progress = true
						break
					}
					if start, ok := resolved[link.Edge]; ok {
						resolved[id] = start + topo.EdgeLength(link.Edge)
						progress = true
						break
					}
				}
				if _, ok := resolved[id]; ok {
					break
				}
			}
		}
		if !progress {
			break
		}
	}

	// 合并，非内部边偏移冲突视为构建错误（该边将无法从反查表解析），
	// 内部边偏移冲突时先写入者胜出
	seen := make(map[float64]string)
	for _, id := range edgeList {
		offset := m.starts[id]
		if prev, ok := seen[offset]; ok {
			return nil, errors.Errorf("linear: edges %s and %s share start offset %f", prev, id, offset)
		}
		seen[offset] = id
		m.entries = append(m.entries, entity.OffsetEntry{Edge: id, Offset: offset})
	}
	for _, id := range junctionList {
		offset, ok := resolved[id]
		if !ok {
			if m.parents[id] == "" {
				log.Warnf("internal edge %s has no resolvable offset and no parent edge", id)
			}
			continue
		}
		if _, ok := seen[offset]; ok {
			continue
		}
		seen[offset] = id
		m.internalStarts[id] = offset
		m.entries = append(m.entries, entity.OffsetEntry{Edge: id, Offset: offset})
	}
	sort.Slice(m.entries, func(i, j int) bool { return m.entries[i].Offset < m.entries[j].Offset })

	return m, nil
}

// ToGlobal 局部位置转全局坐标
// 功能：返回边起点偏移+局部位置；空边/未知边返回ErrorValue
// 说明：内部边先查内部坐标表，未命中时回退到父边起点
func (m *Map) ToGlobal(edge string, pos float64) float64 {
	if edge == "" {
		return entity.ErrorValue
	}
	if start, ok := m.starts[edge]; ok {
		return start + pos
	}
	if start, ok := m.internalStarts[edge]; ok {
		return start + pos
	}
	if parent, ok := m.parents[edge]; ok && parent != "" {
		if start, ok := m.starts[parent]; ok {
			return start + pos
		}
	}
	return entity.ErrorValue
}

// ToLocal 全局坐标转(边, 局部位置)
// 功能：ToGlobal的逆运算
// 算法说明：按偏移降序扫描合并表，返回第一个偏移≤pos的表项，
// 坐标在表最小偏移之前时返回("", ErrorValue)
func (m *Map) ToLocal(pos float64) (string, float64) {
	for i := len(m.entries) - 1; i >= 0; i-- {
		if e := m.entries[i]; e.Offset <= pos {
			return e.Edge, pos - e.Offset
		}
	}
	return "", entity.ErrorValue
}

// Entries 导出排序后的坐标表副本
// 说明：供路网生成协作方侧写调试文件，只读导出而非修改入口
func (m *Map) Entries() []entity.OffsetEntry {
	out := make([]entity.OffsetEntry, len(m.entries))
	copy(out, m.entries)
	return out
}
