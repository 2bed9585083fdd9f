package edge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/microsim-oss/entity"
	"github.com/tsinghua-fib-lab/microsim-oss/utils/input"
)

func sampleNet() *input.NetData {
	return &input.NetData{
		Edges: []input.Edge{
			{ID: "e1", Length: 100, NumLanes: 2, Speed: 15},
			{ID: "e2", Length: 150, NumLanes: 1, Speed: 20},
			{ID: ":e1_0", Length: 5, NumLanes: 1, Speed: 10},
		},
		Connections: []input.Connection{
			{From: "e1", FromLane: 0, To: "e2", ToLane: 0, Via: ":e1_0_0"},
			{From: ":e1_0", FromLane: 0, To: "e2", ToLane: 0},
		},
	}
}

func TestManagerInit(t *testing.T) {
	m := NewManager(nil)
	require.NoError(t, m.Init(sampleNet()))

	assert.EqualValues(t, 100, m.EdgeLength("e1"))
	assert.EqualValues(t, 20, m.SpeedLimit("e2"))
	assert.Equal(t, 2, m.NumLanes("e1"))
	assert.EqualValues(t, entity.ErrorValue, m.EdgeLength("nope"))
	assert.EqualValues(t, entity.ErrorValue, m.SpeedLimit("nope"))
	assert.EqualValues(t, entity.ErrorValue, m.NumLanes("nope"))

	// 聚合量只统计非内部边
	assert.EqualValues(t, 20, m.MaxSpeed())
	assert.EqualValues(t, 250, m.TotalLength())
	assert.Equal(t, []string{"e1", "e2"}, m.EdgeList())
	assert.Equal(t, []string{":e1_0"}, m.JunctionList())
	assert.Equal(t, "e1", m.ParentEdge(":e1_0"))
	assert.Equal(t, "", m.ParentEdge("e1"))
	assert.Equal(t, "", m.ParentEdge("nope"))
}

func TestManagerConnections(t *testing.T) {
	m := NewManager(nil)
	require.NoError(t, m.Init(sampleNet()))

	// 带via的连接先进入路口内部车道
	assert.Equal(t, []entity.Link{{Edge: ":e1_0", Lane: 0}}, m.Next("e1", 0))
	assert.Equal(t, []entity.Link{{Edge: "e2", Lane: 0}}, m.Next(":e1_0", 0))
	assert.Equal(t, []entity.Link{{Edge: "e1", Lane: 0}}, m.Prev(":e1_0", 0))
	assert.Equal(t, []entity.Link{{Edge: ":e1_0", Lane: 0}}, m.Prev("e2", 0))

	// 无连接/越界/未知边返回空列表
	assert.Empty(t, m.Next("e1", 1))
	assert.Empty(t, m.Next("e1", 5))
	assert.Empty(t, m.Next("nope", 0))
	assert.Empty(t, m.Prev("e1", 0))
}

func TestManagerInitErrors(t *testing.T) {
	for name, data := range map[string]*input.NetData{
		"bad lane count": {
			Edges: []input.Edge{{ID: "e1", Length: 100, NumLanes: 0, Speed: 15}},
		},
		"bad length": {
			Edges: []input.Edge{{ID: "e1", Length: -1, NumLanes: 1, Speed: 15}},
		},
		"connection from unknown edge": {
			Edges:       []input.Edge{{ID: "e1", Length: 100, NumLanes: 1, Speed: 15}},
			Connections: []input.Connection{{From: "nope", FromLane: 0, To: "e1", ToLane: 0}},
		},
		"connection to unknown edge": {
			Edges:       []input.Edge{{ID: "e1", Length: 100, NumLanes: 1, Speed: 15}},
			Connections: []input.Connection{{From: "e1", FromLane: 0, To: "nope", ToLane: 0}},
		},
		"connection with bad from lane": {
			Edges: []input.Edge{
				{ID: "e1", Length: 100, NumLanes: 1, Speed: 15},
				{ID: "e2", Length: 100, NumLanes: 1, Speed: 15},
			},
			Connections: []input.Connection{{From: "e1", FromLane: 3, To: "e2", ToLane: 0}},
		},
		"connection with bad to lane": {
			Edges: []input.Edge{
				{ID: "e1", Length: 100, NumLanes: 1, Speed: 15},
				{ID: "e2", Length: 100, NumLanes: 1, Speed: 15},
			},
			Connections: []input.Connection{{From: "e1", FromLane: 0, To: "e2", ToLane: 3}},
		},
		"bad via lane name": {
			Edges: []input.Edge{
				{ID: "e1", Length: 100, NumLanes: 1, Speed: 15},
				{ID: "e2", Length: 100, NumLanes: 1, Speed: 15},
			},
			Connections: []input.Connection{{From: "e1", FromLane: 0, To: "e2", ToLane: 0, Via: "bad"}},
		},
	} {
		t.Run(name, func(t *testing.T) {
			m := NewManager(nil)
			assert.Error(t, m.Init(data))
		})
	}
}

func TestParentFallbackCleared(t *testing.T) {
	// 父边不存在时清空回溯引用
	m := NewManager(nil)
	require.NoError(t, m.Init(&input.NetData{
		Edges: []input.Edge{
			{ID: ":gone_0", Length: 5, NumLanes: 1, Speed: 10},
			{ID: "e1", Length: 100, NumLanes: 1, Speed: 15},
		},
	}))
	assert.Equal(t, "", m.ParentEdge(":gone_0"))
}

func TestSplitViaLane(t *testing.T) {
	edge, lane, err := splitViaLane(":J_2_0")
	require.NoError(t, err)
	assert.Equal(t, ":J_2", edge)
	assert.Equal(t, 0, lane)

	_, _, err = splitViaLane("bad")
	assert.Error(t, err)
	_, _, err = splitViaLane(":J_x")
	assert.Error(t, err)
}
