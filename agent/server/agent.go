package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/clusterlab/slurmlaunch/agent/api"
	"github.com/clusterlab/slurmlaunch/agent/configure"
	"github.com/clusterlab/slurmlaunch/common"
	"github.com/clusterlab/slurmlaunch/common/consts"
	"github.com/clusterlab/slurmlaunch/discovery"
	discoveryProtocol "github.com/clusterlab/slurmlaunch/discovery/protocol"
	"github.com/clusterlab/slurmlaunch/slurm"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/satori/uuid"
)

// Server is the login-node submit agent. It renders and submits job specs
// through the local Slurm tools and pushes finished logs to object
// storage.
type Server struct {
	id               uuid.UUID
	discoveryService *discovery.Service
	discovery        *discovery.Client
	configure        *configure.Configure
	cs               *common.CommonServer
	slurm            *slurm.Client
	minio            *minio.Client
	partitions       map[string]bool
}

func NewServer(conf *configure.Configure) (*Server, error) {
	srv := new(Server)
	return srv, srv.Init(conf)
}

var ErrNilConfigure = fmt.Errorf("nil configure")

func (s *Server) Init(conf *configure.Configure) error {
	if conf != nil {
		s.configure = conf
	}
	if conf == nil && s.configure == nil {
		return ErrNilConfigure
	}
	s.id = s.configure.ID
	if s.configure.ID == uuid.Nil {
		s.id = uuid.NewV4()
	}
	s.slurm = slurm.NewClient()
	s.partitions = make(map[string]bool)
	tags := []string{}
	for _, partition := range s.configure.Partitions {
		s.partitions[partition] = true
		tags = append(tags, discoveryProtocol.PartitionTag(partition))
	}
	err := s.connectMinIO()
	if err != nil {
		return err
	}
	s.discoveryService = discovery.NewService(context.Background(), s.configure.Discovery.Address, s.configure.Discovery.AccessKey)
	s.discovery = discovery.NewClient(s.configure.Discovery.Address, s.configure.Discovery.AccessKey, s.configure.Discovery.Timeout)
	err = s.discoveryService.Connect()
	if err != nil {
		return err
	}
	rSvc, err := s.discoveryService.Inform(&discoveryProtocol.Service{
		ID:      s.id,
		Address: s.configure.ExternalAddress,
		Type:    consts.SlurmAgentDiscoveryType,
		Tags:    tags,
	})
	if err != nil {
		return err
	}
	s.id = rSvc.ID
	err = s.discoveryService.Add()
	if err != nil {
		return err
	}
	s.cs = common.NewCommonServer(s.configure.Listen, []byte(s.configure.SecretKey))
	s.registerRoutes(s.cs.GetMux())
	return nil
}

func (s *Server) connectMinIO() error {
	var err error
	s.minio, err = minio.New(s.configure.MinIO.Endpoint, &minio.Options{
		Creds: credentials.NewStaticV4(
			s.configure.MinIO.Credentials.AccessKey, s.configure.MinIO.Credentials.SecretKey, "",
		),
		Secure: s.configure.MinIO.SSL,
	})
	if err != nil {
		return err
	}
	log.Println("Connected to MinIO Server")
	return nil
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/submit-job", s.HandleSubmitJob)
	mux.HandleFunc("/cancel-job", s.HandleCancelJob)
	mux.HandleFunc("/job-status", s.HandleJobStatus)
	mux.HandleFunc("/upload-logs", s.HandleUploadLogs)
}

// submissionSpoolDir keeps each submission's script and logs apart.
func (s *Server) submissionSpoolDir(submissionID string) string {
	return filepath.Join(s.configure.SpoolPath, submissionID)
}

func (s *Server) HandleSubmitJob(w http.ResponseWriter, r *http.Request) {
	req := new(api.SubmitJobRequest)
	if !s.cs.ParseRequest(w, r, req) {
		return
	}
	resp := &api.SubmitJobResponse{
		ResponseBase: common.ResponseBase{
			Success: true,
		},
	}
	if req.Spec == nil || req.SubmissionID == "" {
		resp.SetError(api.ErrFailedToSubmit)
		s.cs.Respond(w, resp)
		return
	}
	if !s.partitions[req.Spec.Partition] {
		resp.SetError(api.ErrPartitionNotServed)
		s.cs.Respond(w, resp)
		return
	}
	err := slurm.Validate(req.Spec)
	if err != nil {
		resp.SetError(err)
		s.cs.Respond(w, resp)
		return
	}
	rep := slurm.NewReplacer(req.Spec.Name, req.SubmissionID, req.User, s.configure.SpoolPath)
	spec := rep.ReplaceSpec(req.Spec)
	if spec.WorkDir == "" {
		// Anchor the job in the submission's spool dir so its relative
		// output paths land where upload-logs can reach them.
		spec.WorkDir = s.submissionSpoolDir(req.SubmissionID)
	}
	jobID, err := s.slurm.Submit(r.Context(), spec, s.submissionSpoolDir(req.SubmissionID), req.User)
	if err != nil {
		log.Println("ERROR:", err)
		resp.SetError(err)
		s.cs.Respond(w, resp)
		return
	}
	log.Println("Submitted job", jobID, "for submission", req.SubmissionID)
	resp.JobID = jobID
	s.cs.Respond(w, resp)
}

func (s *Server) HandleCancelJob(w http.ResponseWriter, r *http.Request) {
	req := new(api.CancelJobRequest)
	if !s.cs.ParseRequest(w, r, req) {
		return
	}
	resp := &api.CancelJobResponse{
		ResponseBase: common.ResponseBase{
			Success: true,
		},
	}
	err := s.slurm.Cancel(r.Context(), req.JobID, req.User)
	if err != nil {
		log.Println("ERROR:", err)
		resp.SetError(api.ErrFailedToCancel)
	}
	s.cs.Respond(w, resp)
}

func (s *Server) HandleJobStatus(w http.ResponseWriter, r *http.Request) {
	req := new(api.JobStatusRequest)
	if !s.cs.ParseRequest(w, r, req) {
		return
	}
	resp := &api.JobStatusResponse{
		ResponseBase: common.ResponseBase{
			Success: true,
		},
	}
	info, err := s.slurm.Status(r.Context(), req.JobID)
	if err != nil {
		if err == slurm.ErrJobNotFound {
			resp.SetError(err)
		} else {
			log.Println("ERROR:", err)
			resp.SetError(api.ErrFailedToQueryStatus)
		}
		s.cs.Respond(w, resp)
		return
	}
	resp.Info = info
	s.cs.Respond(w, resp)
}

// resolveLogPath confines uploaded files to the agent's spool directory.
// Relative paths resolve against the submission's spool dir, the job's
// working directory.
func (s *Server) resolveLogPath(submissionID string, path string) (string, error) {
	p := strings.ReplaceAll(path, "${spool_path}", s.configure.SpoolPath)
	if !filepath.IsAbs(p) {
		p = filepath.Join(s.submissionSpoolDir(submissionID), p)
	}
	p = filepath.Clean(p)
	if !strings.HasPrefix(p, filepath.Clean(s.configure.SpoolPath)+string(os.PathSeparator)) {
		return "", api.ErrLogPathOutsideSpool
	}
	return p, nil
}

func (s *Server) HandleUploadLogs(w http.ResponseWriter, r *http.Request) {
	req := new(api.UploadLogsRequest)
	if !s.cs.ParseRequest(w, r, req) {
		return
	}
	resp := &api.UploadLogsResponse{
		ResponseBase: common.ResponseBase{
			Success: true,
		},
	}
	for _, path := range req.Paths {
		local, err := s.resolveLogPath(req.SubmissionID, path)
		if err != nil {
			resp.SetError(err)
			s.cs.Respond(w, resp)
			return
		}
		if _, err := os.Stat(local); err != nil {
			resp.SetError(api.ErrLogFileNotFound)
			s.cs.Respond(w, resp)
			return
		}
		object := filepath.Join(
			req.SubmissionID, consts.JobLogArtifactsPath, filepath.Base(local),
		)
		_, err = s.minio.FPutObject(
			r.Context(),
			s.configure.MinIO.Buckets.Artifact,
			object,
			local,
			minio.PutObjectOptions{},
		)
		if err != nil {
			log.Println("ERROR:", err)
			resp.SetError(api.ErrFailedToUpload)
			s.cs.Respond(w, resp)
			return
		}
		resp.Objects = append(resp.Objects, object)
	}
	s.cs.Respond(w, resp)
}

func (s *Server) Start() error {
	log.Println("Agent", s.id, "serving partitions", s.configure.Partitions, "on", s.configure.Listen)
	return s.cs.Start()
}
