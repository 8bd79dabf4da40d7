package sealevel

// default compute unit costs for native programs
const (
	CUSystemProgramDefaultComputeUnits = 150
	CUTokenProgramDefaultComputeUnits  = 3000
)
