package configure

import (
	"time"

	"github.com/satori/uuid"
)

type Configure struct {
	ID        uuid.UUID           `yaml:"uuid"`
	Nsq       *NsqConfigure       `yaml:"nsq"`
	Redis     *RedisConfigure     `yaml:"redis"`
	MinIO     *MinIOConfigure     `yaml:"minio"`
	Discovery *DiscoveryConfigure `yaml:"discovery"`
	Agent     *AgentConfigure     `yaml:"agent"`
}

type NsqConfigure struct {
	Nsqd         *NsqdConfigure       `yaml:"nsqd"`
	NsqLookupd   *NsqLookupdConfigure `yaml:"nsqlookupd"`
	AuthSecret   string               `yaml:"auth-secret"`
	Concurrent   int                  `yaml:"concurrent"`
	Channel      string               `yaml:"channel"`
	MaxAttempts  int                  `yaml:"max-attempts"`
	RequeueDelay time.Duration        `yaml:"requeue-delay"`
	MsgTimeout   time.Duration        `yaml:"msg-timeout"`
	Topics       *NsqTopicConfigure   `yaml:"topics"`
}

type NsqdConfigure struct {
	Address string `yaml:"address"`
}

type NsqLookupdConfigure struct {
	Address []string `yaml:"address"`
}

type NsqTopicConfigure struct {
	Launch string `yaml:"launch"`
	Report string `yaml:"report"`
}

type RedisConfigure struct {
	Address   string                `yaml:"address"`
	Password  string                `yaml:"password"`
	Database  int                   `yaml:"database"`
	KeepAlive time.Duration         `yaml:"keep-alive"`
	Prefix    string                `yaml:"prefix"`
	Expire    *RedisExpireConfigure `yaml:"expire"`
}

type RedisExpireConfigure struct {
	Launch time.Duration `yaml:"launch"`
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

type DiscoveryConfigure struct {
	Address   []string      `yaml:"address"`
	AccessKey string        `yaml:"access-key"`
	Timeout   time.Duration `yaml:"timeout"`
}

type AgentConfigure struct {
	SecretKey string        `yaml:"secret-key"`
	Timeout   time.Duration `yaml:"timeout"`
}
