package configure

type Configure struct {
	CgroupsBasePath string `yaml:"cgroups-base-path"`
	SpoolPath       string `yaml:"spool-path"`
}
