package cu

import (
	"github.com/solwasm/tokenrt/pkg/safemath"
)

// ComputeMeter tracks compute unit consumption for a transaction.
type ComputeMeter struct {
	computeMeter    uint64
	startingBalance uint64
	exceeded        bool
	disable         bool
}

func NewComputeMeter(balance uint64) ComputeMeter {
	return ComputeMeter{computeMeter: balance, startingBalance: balance}
}

func NewComputeMeterDisabled() ComputeMeter {
	return ComputeMeter{disable: true}
}

func (meter *ComputeMeter) Consume(cost uint64) bool {
	if meter.disable {
		return false
	}
	if cost > meter.computeMeter {
		meter.computeMeter = 0
		meter.exceeded = true
		return true
	}
	meter.computeMeter = safemath.SaturatingSubU64(meter.computeMeter, cost)
	return false
}

func (meter *ComputeMeter) Used() uint64 {
	return safemath.SaturatingSubU64(meter.startingBalance, meter.computeMeter)
}

func (meter *ComputeMeter) Remaining() uint64 {
	return meter.computeMeter
}

func (meter *ComputeMeter) Exceeded() bool {
	return meter.exceeded
}
