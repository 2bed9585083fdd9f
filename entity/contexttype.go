package entity

import (
	"github.com/tsinghua-fib-lab/microsim-oss/clock"
)

type ITaskContext interface {
	Clock() *clock.Clock
	EdgeManager() IEdgeManager
	LinearMap() ILinearMap
	VehicleManager() IVehicleManager
}
