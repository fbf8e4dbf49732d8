package kernelsupport

type kernelFeatureVersion struct {
	version  kernelVersion
	features PerfSupport
}

// a list of perf kernel features which are available from a given kernel version forward.
// based on the "since Linux x.y" notes in perf_event_open(2)
var featureMinVersion = []kernelFeatureVersion{
	{
		version:  kernelVersion{major: 2, minor: 6, patch: 31},
		features: KFeatPerfEventOpen | KFeatPerfTaskEnable | KFeatPerfInherit | KFeatPerfReadFormatTimes,
	},
	{
		version:  kernelVersion{major: 2, minor: 6, patch: 33},
		features: KFeatPerfExcludeHost,
	},
	{
		version:  kernelVersion{major: 3, minor: 14},
		features: KFeatPerfCloseOnExec,
	},
	{
		version:  kernelVersion{major: 5, minor: 8},
		features: KFeatPerfCapPerfmon,
	},
}
