package version

var Version = "0.2.1"

var Authors = [][]string{
	{"Cluster Lab", "ops@clusterlab.dev"},
}
