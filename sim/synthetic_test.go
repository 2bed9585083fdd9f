package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/microsim-oss/entity"
	"github.com/tsinghua-fib-lab/microsim-oss/entity/edge"
	"github.com/tsinghua-fib-lab/microsim-oss/utils/config"
	"github.com/tsinghua-fib-lab/microsim-oss/utils/input"
)

func lineTopo(t *testing.T) *edge.Manager {
	m := edge.NewManager(nil)
	require.NoError(t, m.Init(&input.NetData{
		Edges: []input.Edge{
			{ID: "A", Length: 25, NumLanes: 1, Speed: 10},
			{ID: "B", Length: 30, NumLanes: 1, Speed: 10},
		},
		Connections: []input.Connection{
			{From: "A", FromLane: 0, To: "B", ToLane: 0},
		},
	}))
	return m
}

func TestSyntheticLifecycle(t *testing.T) {
	s := NewSynthetic(lineTopo(t), config.Sim{
		Seed:              42,
		MaxVehicles:       1,
		DepartEdges:       []string{"A"},
		DepartProbability: 1,
	}, 1)

	// 第一步：发车，入网位置为边起点
	snap := s.Step()
	require.Equal(t, []string{"veh_0"}, snap.Departed)
	require.Len(t, snap.Vehicles, 1)
	v := snap.Vehicles[0]
	assert.Equal(t, "A", v.Edge)
	assert.EqualValues(t, 0, v.Position)
	assert.EqualValues(t, defaultVehicleLength, v.Length)

	// 以限速匀速前进
	snap = s.Step()
	assert.EqualValues(t, 10, snap.Vehicles[0].Position)
	assert.EqualValues(t, 10, snap.Vehicles[0].Speed)
	snap = s.Step()
	assert.EqualValues(t, 20, snap.Vehicles[0].Position)

	// 越过A末端沿连接进入B
	snap = s.Step()
	assert.Equal(t, "B", snap.Vehicles[0].Edge)
	assert.EqualValues(t, 5, snap.Vehicles[0].Position)

	// 驶出无后继连接的B即到达，车辆数上限随之释放
	for i := 0; i < 3; i++ {
		snap = s.Step()
	}
	assert.Equal(t, []string{"veh_0"}, snap.Arrived)
	for _, sv := range snap.Vehicles {
		assert.NotEqual(t, "veh_0", sv.ID)
	}
}

func TestSyntheticDeterminism(t *testing.T) {
	run := func() []*entity.StepSnapshot {
		s := NewSynthetic(lineTopo(t), config.Sim{
			Seed:              7,
			DepartProbability: 0.5,
			RLProbability:     0.5,
		}, 1)
		var snaps []*entity.StepSnapshot
		for i := 0; i < 20; i++ {
			snaps = append(snaps, s.Step())
		}
		return snaps
	}
	a, b := run(), run()
	for i := range a {
		assert.Equal(t, a[i].Vehicles, b[i].Vehicles)
		assert.Equal(t, a[i].Departed, b[i].Departed)
		assert.Equal(t, a[i].Arrived, b[i].Arrived)
	}
}
