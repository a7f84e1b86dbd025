package alloc

import (
	"github.com/kostasthomson/cloud-simulator/pkg/config"
)

// HardwareCatalog builds the wire descriptors of every configured resource
// type. Types without an explicit power table get a linear idle-to-peak
// profile over two bins.
func HardwareCatalog(cfg *config.Config) []HardwareType {
	out := make([]HardwareType, 0, len(cfg.ResourceTypes))
	for _, rt := range cfg.ResourceTypes {
		bins := rt.Power.CPUUtilizationBins
		watts := rt.Power.CPUPowerValues
		if len(bins) < 2 {
			bins = []float64{0.0, 1.0}
			watts = []float64{rt.Power.IdlePower, rt.Power.PeakPowerCPU}
		}
		out = append(out, HardwareType{
			TypeID:                rt.Type,
			NumServers:            rt.NumResources,
			ProcessorsPerServer:   rt.TotalProcessors * rt.OvercommitmentProcessors,
			MemoryPerServer:       rt.TotalMemory,
			StoragePerServer:      rt.TotalStorage,
			AcceleratorsPerServer: float64(rt.TotalAccelerators),
			CompCapPerProc:        rt.CompCapPerProc,
			CompCapPerAcc:         rt.CompCapPerAcc,
			CPUUtilizationBins:    bins,
			CPUPowerValues:        watts,
			AcceleratorPeakPower:  rt.Power.PeakPowerAcc,
		})
	}
	return out
}
