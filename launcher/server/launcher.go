package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/clusterlab/slurmlaunch/agent"
	"github.com/clusterlab/slurmlaunch/common"
	"github.com/clusterlab/slurmlaunch/common/consts"
	"github.com/clusterlab/slurmlaunch/discovery"
	discoveryProtocol "github.com/clusterlab/slurmlaunch/discovery/protocol"
	"github.com/clusterlab/slurmlaunch/launcher/configure"
	"github.com/clusterlab/slurmlaunch/launcher/experiment"
	"github.com/clusterlab/slurmlaunch/launcher/message"
	"github.com/clusterlab/slurmlaunch/slurm"
	"github.com/gomodule/redigo/redis"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/nsqio/go-nsq"
	"github.com/satori/uuid"
)

// Launcher consumes launch requests from the queue, resolves a submit
// agent for the requested partition and reports progress back.
type Launcher struct {
	id                      uuid.UUID
	nsqConsumer             *nsq.Consumer
	nsqReport               *nsq.Producer
	discoveryClient         *discovery.Client
	redisConn               redis.Conn
	configure               *configure.Configure
	minio                   *minio.Client
	nsqMessageTouchInterval time.Duration
	watchInterval           time.Duration
}

func NewLauncher(conf *configure.Configure) (*Launcher, error) {
	l := new(Launcher)
	l.configure = conf
	l.id = conf.ID
	if l.id == uuid.Nil {
		l.id = uuid.NewV4()
	}
	l.watchInterval = 30 * time.Second
	return l, nil
}

func (l *Launcher) Run() error {
	err := l.connectDiscovery()
	if err != nil {
		log.Println("Connect to Discovery failed")
		return err
	}
	err = l.connectMinIO()
	if err != nil {
		log.Println("Connect to MinIO failed")
		return err
	}
	err = l.connectRedis()
	if err != nil {
		log.Println("Connect to Redis failed")
		return err
	}
	err = l.connectNSQ()
	if err != nil {
		log.Println("Connect to NSQ failed")
		return err
	}
	select {}
}

func (l *Launcher) connectDiscovery() error {
	l.discoveryClient = discovery.NewClient(l.configure.Discovery.Address, l.configure.Discovery.AccessKey, l.configure.Discovery.Timeout)
	return nil
}

func (l *Launcher) connectNSQ() error {
	config := nsq.NewConfig()
	config.AuthSecret = l.configure.Nsq.AuthSecret
	config.MaxAttempts = uint16(l.configure.Nsq.MaxAttempts) + 1
	config.MaxRequeueDelay = l.configure.Nsq.RequeueDelay
	config.MsgTimeout = l.configure.Nsq.MsgTimeout
	if l.configure.Nsq.MsgTimeout >= 3*time.Second {
		l.nsqMessageTouchInterval = l.configure.Nsq.MsgTimeout - (1 * time.Second)
	} else {
		l.nsqMessageTouchInterval = l.configure.Nsq.MsgTimeout * 2 / 3
	}
	var err error
	l.nsqConsumer, err = nsq.NewConsumer(l.configure.Nsq.Topics.Launch, l.configure.Nsq.Channel, config)
	if err != nil {
		return err
	}
	l.nsqConsumer.AddConcurrentHandlers(l, l.configure.Nsq.Concurrent)
	err = l.nsqConsumer.ConnectToNSQLookupds(l.configure.Nsq.NsqLookupd.Address)
	if err != nil {
		return err
	}
	l.nsqReport, err = nsq.NewProducer(l.configure.Nsq.Nsqd.Address, config)
	log.Println("Connected to NSQ Server")
	return err
}

func (l *Launcher) connectMinIO() error {
	var err error
	l.minio, err = minio.New(l.configure.MinIO.Endpoint, &minio.Options{
		Creds: credentials.NewStaticV4(
			l.configure.MinIO.Credentials.AccessKey, l.configure.MinIO.Credentials.SecretKey, "",
		),
		Secure: l.configure.MinIO.SSL,
	})
	if err != nil {
		return err
	}
	log.Println("Connected to MinIO Server")
	return nil
}

func (l *Launcher) connectRedis() error {
	options := []redis.DialOption{}
	if l.configure.Redis.Password != "" {
		options = append(options, redis.DialPassword(l.configure.Redis.Password))
	}
	options = append(options, redis.DialKeepAlive(l.configure.Redis.KeepAlive))
	options = append(options, redis.DialDatabase(l.configure.Redis.Database))
	var err error
	l.redisConn, err = redis.Dial("tcp", l.configure.Redis.Address, options...)
	if err != nil {
		return err
	}
	log.Println("Connected to Redis Server")
	return nil
}

func (l *Launcher) checkIfRequestExists(k string, expire time.Duration) (bool, error) {
	key := l.configure.Redis.Prefix + k
	rslt, err := redis.Int(l.redisConn.Do("INCR", key))
	if err != nil {
		return true, err
	}
	if rslt == 1 {
		_, err = l.redisConn.Do("EXPIRE", key, int(expire/time.Second))
		return false, err
	}
	return true, nil
}

func (l *Launcher) setRequestNotExist(k string) error {
	key := l.configure.Redis.Prefix + k
	_, err := l.redisConn.Do("DEL", key)
	return err
}

func (l *Launcher) publishToReport(msg *message.LaunchReportMessage) error {
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixMicro()
	}
	mText, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return l.nsqReport.Publish(l.configure.Nsq.Topics.Report, mText)
}

// agentClient resolves an agent for the partition through discovery on
// every request, so agents may come and go while a job is watched.
func (l *Launcher) agentClient(partition string) *agent.Client {
	cc := common.NewCommonDiscoveredSignedClient(
		l.discoveryClient,
		&discoveryProtocol.QueryParameters{
			Type: consts.SlurmAgentDiscoveryType,
			Tags: []string{discoveryProtocol.PartitionTag(partition)},
		},
		[]byte(l.configure.Agent.SecretKey),
		l.configure.Agent.Timeout,
	)
	return agent.NewClient(cc)
}

// invalidRequestReport is the terminal failure published when a launch
// request cannot yield a valid job spec.
func invalidRequestReport(msg *message.LaunchMessage, err error) *message.LaunchReportMessage {
	return &message.LaunchReportMessage{
		SubmissionID: msg.SubmissionID,
		ExperimentID: msg.ExperimentID,
		Success:      false,
		Done:         true,
		Error:        err.Error(),
		Message:      "invalid launch request: " + err.Error(),
	}
}

// logPaths guesses the output files the job will leave in the spool, with
// Slurm's %j expanded to the job ID.
func logPaths(spec *slurm.JobSpec, jobID string) []string {
	var paths []string
	for _, p := range []string{spec.Output, spec.ErrorOutput} {
		if p == "" {
			continue
		}
		paths = append(paths, strings.ReplaceAll(p, "%j", jobID))
	}
	return paths
}

// watchJob polls until the job leaves the queue, then reports the
// terminal state and collects the logs.
func (l *Launcher) watchJob(msg *message.LaunchMessage, spec *slurm.JobSpec, ac *agent.Client, jobID string) {
	for {
		time.Sleep(l.watchInterval)
		info, err := ac.JobStatus(jobID)
		if err != nil {
			log.Println("ERROR:", err)
			continue
		}
		if !info.Status.Terminal() {
			continue
		}
		report := &message.LaunchReportMessage{
			SubmissionID: msg.SubmissionID,
			ExperimentID: msg.ExperimentID,
			JobID:        jobID,
			Success:      info.Status == slurm.JobStatusCompleted,
			Done:         true,
			Status:       string(info.Status),
			Message:      info.Reason,
		}
		if !report.Success {
			report.Error = fmt.Sprintf("job %v ended with status %v", jobID, info.Status)
		}
		err = l.publishToReport(report)
		if err != nil {
			log.Println("ERROR:", err)
		}
		paths := logPaths(spec, jobID)
		if len(paths) > 0 {
			_, err = ac.UploadLogs(msg.SubmissionID, jobID, paths)
			if err != nil {
				log.Println("ERROR:", err)
			}
		}
		return
	}
}

func (l *Launcher) ProcessLaunch(msg *message.LaunchMessage) error {
	exists, err := l.checkIfRequestExists(msg.SubmissionID, l.configure.Redis.Expire.Launch)
	if exists {
		return err
	}
	exp, err := experiment.GetExperimentMeta(
		context.Background(), l.minio, l.configure.MinIO.Buckets.Experiment, msg.ExperimentID,
	)
	if err != nil {
		l.setRequestNotExist(msg.SubmissionID)
		return err
	}
	spec, err := exp.BuildJobSpec(&experiment.Overrides{
		Env:       msg.Env,
		ValueCoef: msg.ValueCoef,
		Partition: msg.Partition,
	})
	if err != nil {
		// A spec the manifest and overrides cannot produce will not get
		// better on requeue. Report terminally and finish the message.
		rErr := l.publishToReport(invalidRequestReport(msg, err))
		if rErr != nil {
			log.Println("ERROR:", rErr)
		}
		return nil
	}
	ac := l.agentClient(spec.Partition)
	jobID, err := ac.SubmitJob(msg.SubmissionID, spec, msg.User)
	if err != nil {
		l.setRequestNotExist(msg.SubmissionID)
		return err
	}
	log.Println("Submission", msg.SubmissionID, "became job", jobID, "on partition", spec.Partition)
	err = l.publishToReport(&message.LaunchReportMessage{
		SubmissionID: msg.SubmissionID,
		ExperimentID: msg.ExperimentID,
		JobID:        jobID,
		Success:      true,
		Done:         false,
		Status:       string(slurm.JobStatusPending),
		Message:      "submitted to partition " + spec.Partition,
	})
	if err != nil {
		log.Println("ERROR:", err)
	}
	go l.watchJob(msg, spec, ac, jobID)
	return nil
}

func (l *Launcher) HandleMessage(msg *nsq.Message) error {
	msg.Touch()
	lMsg := &message.LaunchMessage{}
	err := json.Unmarshal(msg.Body, lMsg)
	if err != nil {
		if msg.Attempts > uint16(l.configure.Nsq.MaxAttempts) {
			msg.Finish()
			return nil
		}
		return err
	}
	if msg.Attempts > uint16(l.configure.Nsq.MaxAttempts) {
		err := l.publishToReport(&message.LaunchReportMessage{
			SubmissionID: lMsg.SubmissionID,
			ExperimentID: lMsg.ExperimentID,
			Success:      false,
			Done:         true,
			Error:        message.ErrMaxAttemptsExceeded.Error(),
			Message:      "Internal Error: " + message.ErrMaxAttemptsExceeded.Error(),
		})
		if err != nil {
			log.Println("ERROR:", err)
		}
		msg.Finish()
		return message.ErrMaxAttemptsExceeded
	}
	finCh := make(chan bool)
	defer func() { finCh <- true }()
	go func() {
		for {
			select {
			case <-finCh:
				return
			case <-time.After(l.nsqMessageTouchInterval):
				msg.Touch()
			}
		}
	}()
	err = l.ProcessLaunch(lMsg)
	if err != nil {
		log.Println("ERROR:", err)
		return err
	}
	msg.Finish()
	return nil
}
