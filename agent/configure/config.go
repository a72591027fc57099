package configure

import (
	"os"
	"time"

	"github.com/satori/uuid"
	"gopkg.in/yaml.v2"
)

type Configure struct {
	ID              uuid.UUID           `yaml:"uuid"`
	Partitions      []string            `yaml:"partitions"`
	Listen          string              `yaml:"listen"`
	ExternalAddress string              `yaml:"external-address"`
	SecretKey       string              `yaml:"secret-key"`
	SpoolPath       string              `yaml:"spool-path"`
	Discovery       *DiscoveryConfigure `yaml:"discovery"`
	MinIO           *MinIOConfigure     `yaml:"minio"`
}

type DiscoveryConfigure struct {
	Address   []string      `yaml:"address"`
	AccessKey string        `yaml:"access-key"`
	Timeout   time.Duration `yaml:"timeout"`
}

type MinIOConfigure struct {
	Endpoint    string                     `yaml:"endpoint"`
	Credentials *MinIOCredentialsConfigure `yaml:"credentials"`
	SSL         bool                       `yaml:"ssl"`
	Buckets     *MinIOBucketsConfigure     `yaml:"buckets"`
}

type MinIOCredentialsConfigure struct {
	AccessKey string `yaml:"access-key"`
	SecretKey string `yaml:"secret-key"`
}

type MinIOBucketsConfigure struct {
	Experiment string `yaml:"experiment"`
	Artifact   string `yaml:"artifact"`
}

func LoadConfigure(path string) (*Configure, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := new(Configure)
	err = yaml.Unmarshal(f, c)
	if err != nil {
		return nil, err
	}
	return c, nil
}
