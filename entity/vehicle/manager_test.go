package vehicle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/microsim-oss/clock"
	"github.com/tsinghua-fib-lab/microsim-oss/entity"
	"github.com/tsinghua-fib-lab/microsim-oss/entity/edge"
	"github.com/tsinghua-fib-lab/microsim-oss/entity/linear"
	"github.com/tsinghua-fib-lab/microsim-oss/utils/config"
	"github.com/tsinghua-fib-lab/microsim-oss/utils/input"
)

type testContext struct {
	topo entity.IEdgeManager
	lmap entity.ILinearMap
	veh  entity.IVehicleManager
}

func (c *testContext) Clock() *clock.Clock                    { return nil }
func (c *testContext) EdgeManager() entity.IEdgeManager       { return c.topo }
func (c *testContext) LinearMap() entity.ILinearMap           { return c.lmap }
func (c *testContext) VehicleManager() entity.IVehicleManager { return c.veh }

// newWorld 根据路网描述搭建拓扑+坐标映射+车辆状态表+查询引擎
func newWorld(t *testing.T, data *input.NetData, q config.Query) (*Manager, *Engine) {
	ctx := &testContext{}
	em := edge.NewManager(ctx)
	require.NoError(t, em.Init(data))
	lm, err := linear.New(em, nil)
	require.NoError(t, err)
	ctx.topo = em
	ctx.lmap = lm
	m := NewManager(ctx)
	ctx.veh = m
	return m, NewEngine(ctx, m, q)
}

// ringNet 三条边首尾相接的环形路网，每条边100米单车道
func ringNet() *input.NetData {
	return &input.NetData{
		Edges: []input.Edge{
			{ID: "e_0", Length: 100, NumLanes: 1, Speed: 30},
			{ID: "e_1", Length: 100, NumLanes: 1, Speed: 30},
			{ID: "e_2", Length: 100, NumLanes: 1, Speed: 30},
		},
		Connections: []input.Connection{
			{From: "e_0", FromLane: 0, To: "e_1", ToLane: 0},
			{From: "e_1", FromLane: 0, To: "e_2", ToLane: 0},
			{From: "e_2", FromLane: 0, To: "e_0", ToLane: 0},
		},
	}
}

func snap(vehicles ...entity.VehicleSnapshot) *entity.StepSnapshot {
	return &entity.StepSnapshot{Vehicles: vehicles}
}

func TestRefreshLifecycle(t *testing.T) {
	m, _ := newWorld(t, ringNet(), config.Query{})

	m.Refresh(&entity.StepSnapshot{
		Vehicles: []entity.VehicleSnapshot{
			{ID: "a", Edge: "e_0", Lane: 0, Position: 10, Speed: 5, Length: 5},
			{ID: "b", Edge: "e_0", Lane: 0, Position: 30, Speed: 6, Length: 5},
		},
		Departed: []string{"a", "b"},
	})
	assert.Equal(t, []string{"a", "b"}, m.IDs())
	assert.Equal(t, []string{"a", "b"}, m.IdsOnEdge("e_0"))
	assert.Empty(t, m.IdsOnEdge("e_1"))
	assert.Empty(t, m.IdsOnEdge("nope"))
	assert.EqualValues(t, 5, m.GetSpeed("a", -1))
	assert.EqualValues(t, 10, m.GetPosition("a", -1))
	assert.Equal(t, "e_0", m.GetEdge("a", ""))
	assert.EqualValues(t, 10, m.GetGlobalPosition("a", -1))
	assert.Equal(t, 2, m.NumDeparted())
	assert.Equal(t, 2, m.StepDeparted())
	assert.Equal(t, 0, m.StepArrived())

	// a超越b：同车道原地改写排序键后增量重排
	m.Refresh(snap(
		entity.VehicleSnapshot{ID: "a", Edge: "e_0", Lane: 0, Position: 40, Speed: 5, Length: 5},
		entity.VehicleSnapshot{ID: "b", Edge: "e_0", Lane: 0, Position: 35, Speed: 6, Length: 5},
	))
	assert.Equal(t, []string{"b", "a"}, m.IdsOnEdge("e_0"))
	// 本步无发车，单步计数归零而累计计数保留
	assert.Equal(t, 0, m.StepDeparted())
	assert.Equal(t, 2, m.NumDeparted())

	// a换边，b离网
	m.Refresh(&entity.StepSnapshot{
		Vehicles: []entity.VehicleSnapshot{
			{ID: "a", Edge: "e_1", Lane: 0, Position: 2, Speed: 5, Length: 5},
		},
		Arrived: []string{"b"},
	})
	assert.Equal(t, []string{"a"}, m.IDs())
	assert.Empty(t, m.IdsOnEdge("e_0"))
	assert.Equal(t, []string{"a"}, m.IdsOnEdge("e_1"))
	assert.Equal(t, 1, m.NumArrived())
	assert.Equal(t, 1, m.StepArrived())
	assert.Equal(t, 0, m.StepTeleported())

	// 离网车辆的访问器返回调用方默认值
	assert.EqualValues(t, -1, m.GetSpeed("b", -1))
	assert.Equal(t, "gone", m.GetEdge("b", "gone"))
	assert.Equal(t, -1, m.GetLane("b", -1))
	assert.EqualValues(t, -1, m.GetGlobalPosition("b", -1))
}

func TestClassPartitionAndObserved(t *testing.T) {
	m, _ := newWorld(t, ringNet(), config.Query{})
	m.Refresh(snap(
		entity.VehicleSnapshot{ID: "h1", Edge: "e_0", Lane: 0, Position: 10, Length: 5, Class: entity.ClassHuman},
		entity.VehicleSnapshot{ID: "r1", Edge: "e_1", Lane: 0, Position: 10, Length: 5, Class: entity.ClassRL},
		entity.VehicleSnapshot{ID: "h2", Edge: "e_2", Lane: 0, Position: 10, Length: 5},
	))
	// 类别缺省为human
	assert.Equal(t, []string{"h1", "h2"}, m.HumanIDs())
	assert.Equal(t, []string{"r1"}, m.RLIDs())
	assert.Equal(t, entity.ClassRL, m.GetType("r1", ""))
	assert.Equal(t, []string{entity.ClassHuman, entity.ClassRL}, m.GetTypes([]string{"h1", "r1"}, ""))

	m.SetObserved("r1")
	m.SetObserved("nope")
	assert.Equal(t, []string{"r1"}, m.ObservedIDs())
	m.RemoveObserved("r1")
	assert.Empty(t, m.ObservedIDs())

	// 离网时自动清除关注标记
	m.SetObserved("h1")
	m.Refresh(snap())
	assert.Empty(t, m.ObservedIDs())
}

func TestIDsByGlobalPosition(t *testing.T) {
	m, _ := newWorld(t, ringNet(), config.Query{})
	m.Refresh(snap(
		entity.VehicleSnapshot{ID: "x", Edge: "e_2", Lane: 0, Position: 10, Length: 5},
		entity.VehicleSnapshot{ID: "y", Edge: "e_0", Lane: 0, Position: 50, Length: 5},
		entity.VehicleSnapshot{ID: "z", Edge: "e_1", Lane: 0, Position: 0, Length: 5},
	))
	// 全局坐标：y=50, z=100, x=210
	assert.Equal(t, []string{"y", "z", "x"}, m.IDsByGlobalPosition())

	positions := m.GetPositions(m.IDsByGlobalPosition(), -1)
	assert.Equal(t, []float64{50, 0, 10}, positions)
}
