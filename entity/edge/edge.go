package edge

import (
	"fmt"
	"strings"

	"github.com/tsinghua-fib-lab/microsim-oss/entity"
	"github.com/tsinghua-fib-lab/microsim-oss/utils/input"
)

// 内部边（路口内连接边）ID的标记前缀
const internalMarker = ":"

// Edge 边实体
// 功能：表示路网中的一条有向边，包含长度、车道数、限速与逐车道连接关系
// 说明：拓扑构建完成后不可变
type Edge struct {
	id         string
	length     float64 // 边长度（米）
	numLanes   int     // 车道数，0为最左侧车道
	maxV       float64 // 限速（米/秒）
	isInternal bool    // 是否为路口内部边
	parent     string  // 内部边回溯到的父边ID，构建时由命名约定解析，无则为空

	nexts [][]entity.Link // 逐车道后继连接
	prevs [][]entity.Link // 逐车道前驱连接
}

// newEdge 创建并初始化一个新的Edge实例
// 说明：ID以":"开头的边标记为内部边；内部边的父边名由
// 去掉前缀并截掉最后一段"_<n>"数字后缀得到，是否真实存在由Manager回填校验
func newEdge(base input.Edge) *Edge {
	e := &Edge{
		id:         base.ID,
		length:     base.Length,
		numLanes:   base.NumLanes,
		maxV:       base.Speed,
		isInternal: strings.HasPrefix(base.ID, internalMarker),
		nexts:      make([][]entity.Link, base.NumLanes),
		prevs:      make([][]entity.Link, base.NumLanes),
	}
	if e.isInternal {
		name := strings.TrimPrefix(e.id, internalMarker)
		if i := strings.LastIndex(name, "_"); i > 0 {
			name = name[:i]
		}
		e.parent = name
	}
	return e
}

func (e *Edge) String() string {
	return fmt.Sprintf("Edge %s", e.id)
}

// ID 获取边的唯一标识符
func (e *Edge) ID() string {
	return e.id
}

// Length 获取边长度（米）
func (e *Edge) Length() float64 {
	return e.length
}

// NumLanes 获取边车道数
func (e *Edge) NumLanes() int {
	return e.numLanes
}

// MaxV 获取边限速（米/秒）
func (e *Edge) MaxV() float64 {
	return e.maxV
}

// IsInternal 检查是否为路口内部边
func (e *Edge) IsInternal() bool {
	return e.isInternal
}

// Parent 获取内部边的父边ID，非内部边或父边不存在时为空串
func (e *Edge) Parent() string {
	return e.parent
}

// Nexts 获取指定车道的所有后继连接，车道越界时返回空列表
func (e *Edge) Nexts(lane int) []entity.Link {
	if lane < 0 || lane >= e.numLanes {
		return nil
	}
	return e.nexts[lane]
}

// Prevs 获取指定车道的所有前驱连接，车道越界时返回空列表
func (e *Edge) Prevs(lane int) []entity.Link {
	if lane < 0 || lane >= e.numLanes {
		return nil
	}
	return e.prevs[lane]
}
