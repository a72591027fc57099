package consts

const (
	SlurmAgentDiscoveryType    = "slurm-agent"
	SlurmLauncherDiscoveryType = "slurm-launcher"
)

const (
	ExperimentManifestFile = "experiment.toml"
	LaunchReportFile       = "launch-report.json"
	JobLogArtifactsPath    = "logs"
)
