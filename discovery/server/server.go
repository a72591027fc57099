package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/clusterlab/slurmlaunch/discovery/protocol"
	"github.com/satori/uuid"
	"nhooyr.io/websocket"
)

type Server struct {
	id           uuid.UUID
	listen       string
	dataFilePath string
	registry     *Registry
	mux          *http.ServeMux
	accessKey    string
	saveInterval time.Duration
}

func NewServer(listen string, dataFilePath string, accessKey string, saveInterval time.Duration) (*Server, error) {
	srv := &Server{
		id:           uuid.NewV4(),
		listen:       listen,
		dataFilePath: dataFilePath,
		registry:     NewRegistry(),
		mux:          http.NewServeMux(),
		accessKey:    accessKey,
		saveInterval: saveInterval,
	}
	log.Println("Server ID:", srv.id)
	log.Println("Data File:", srv.dataFilePath)
	if dataFilePath != "" {
		err := srv.registry.Load(dataFilePath)
		if err != nil {
			log.Println("No previous registry state loaded:", err)
		}
	}
	srv.registerRoutes()
	return srv, nil
}

func (s *Server) checkAccessKey(r *http.Request) bool {
	if s.accessKey == "" {
		return true
	}
	got := r.Header.Get("X-Access-Key")
	return subtle.ConstantTimeCompare([]byte(got), []byte(s.accessKey)) == 1
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/list", s.HandleList)
	s.mux.HandleFunc("/query", s.HandleQuery)
	s.mux.HandleFunc("/add", s.HandleAdd)
	s.mux.HandleFunc("/delete", s.HandleDelete)
	s.mux.HandleFunc("/register", s.HandleRegister)
}

func (s *Server) respond(w http.ResponseWriter, resp interface{}) {
	w.Header().Set("Content-Type", "application/json")
	j, err := json.Marshal(resp)
	if err != nil {
		log.Println("ERROR:", err)
		return
	}
	_, err = w.Write(j)
	if err != nil {
		log.Println("ERROR:", err)
	}
}

func (s *Server) parseRequest(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if !s.checkAccessKey(r) {
		w.WriteHeader(403)
		return false
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(400)
		return false
	}
	err = json.Unmarshal(body, req)
	if err != nil {
		w.WriteHeader(400)
		return false
	}
	return true
}

func (s *Server) HandleList(w http.ResponseWriter, r *http.Request) {
	req := new(protocol.ListRequest)
	if !s.parseRequest(w, r, req) {
		return
	}
	resp := &protocol.ListResponse{}
	resp.Success = true
	for _, svc := range s.registry.Query(req.Condition) {
		resp.Data = append(resp.Data, ServiceToProtocolService(svc))
	}
	s.respond(w, resp)
}

func (s *Server) HandleQuery(w http.ResponseWriter, r *http.Request) {
	req := new(protocol.QueryRequest)
	if !s.parseRequest(w, r, req) {
		return
	}
	resp := &protocol.QueryResponse{}
	svc := s.registry.QueryOne(req.Condition)
	if svc == nil {
		resp.Success = false
		resp.Error = protocol.ErrNoServiceAvailable.Error()
	} else {
		resp.Success = true
		resp.Data = ServiceToProtocolService(svc)
	}
	s.respond(w, resp)
}

func (s *Server) HandleAdd(w http.ResponseWriter, r *http.Request) {
	req := new(protocol.AddRequest)
	if !s.parseRequest(w, r, req) {
		return
	}
	resp := &protocol.AddResponse{}
	svc := ProtocolServiceToService(req.Service)
	err := s.registry.Add(svc)
	if err != nil {
		resp.Success = false
		resp.Error = err.Error()
	} else {
		resp.Success = true
		log.Println("Service added:", svc.Type, svc.Address)
	}
	resp.Service = ServiceToProtocolService(svc)
	s.respond(w, resp)
}

func (s *Server) HandleDelete(w http.ResponseWriter, r *http.Request) {
	req := new(protocol.DeleteRequest)
	if !s.parseRequest(w, r, req) {
		return
	}
	resp := &protocol.DeleteResponse{}
	err := s.registry.Delete(ProtocolServiceToService(req.Service))
	if err != nil {
		resp.Success = false
		resp.Error = err.Error()
	} else {
		resp.Success = true
	}
	s.respond(w, resp)
}

// HandleRegister serves the websocket registration protocol. The entry a
// connection added is removed when the connection closes.
func (s *Server) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if !s.checkAccessKey(r) {
		w.WriteHeader(403)
		return
	}
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Println("ERROR:", err)
		return
	}
	defer conn.Close(websocket.StatusInternalError, "closed")
	ctx := r.Context()
	var informed *Service
	added := false
	defer func() {
		if added && informed != nil {
			err := s.registry.Delete(informed)
			if err != nil {
				log.Println("ERROR:", err)
			} else {
				log.Println("Service evicted on disconnect:", informed.Type, informed.Address)
			}
		}
	}()
	for {
		_, msgText, err := conn.Read(ctx)
		if err != nil {
			return
		}
		cMsg := new(protocol.ClientRegisterMessage)
		sMsg := &protocol.ServerRegisterMessage{}
		err = json.Unmarshal(msgText, cMsg)
		if err != nil {
			sMsg.Success = false
			sMsg.Error = err.Error()
			s.writeRegisterMessage(ctx, conn, sMsg)
			continue
		}
		switch cMsg.Operation {
		case protocol.RegisterOperationInform:
			informed = ProtocolServiceToService(cMsg.Data)
			if informed.ID == uuid.Nil {
				informed.ID = uuid.NewV4()
			}
			sMsg.Success = true
			sMsg.Service = ServiceToProtocolService(informed)
		case protocol.RegisterOperationAdd:
			if informed == nil {
				sMsg.Success = false
				sMsg.Error = protocol.ErrNoServiceInformed.Error()
				break
			}
			err := s.registry.Add(informed)
			if err != nil {
				sMsg.Success = false
				sMsg.Error = err.Error()
				break
			}
			added = true
			sMsg.Success = true
			sMsg.Service = ServiceToProtocolService(informed)
			log.Println("Service registered:", informed.Type, informed.Address)
		case protocol.RegisterOperationDelete:
			if informed == nil {
				sMsg.Success = false
				sMsg.Error = protocol.ErrNoServiceInformed.Error()
				break
			}
			err := s.registry.Delete(informed)
			if err != nil {
				sMsg.Success = false
				sMsg.Error = err.Error()
				break
			}
			added = false
			sMsg.Success = true
		case protocol.RegisterOperationHas:
			if informed == nil {
				sMsg.Success = false
				sMsg.Error = protocol.ErrNoServiceInformed.Error()
				break
			}
			sMsg.Success = true
			sMsg.Has = s.registry.Has(informed)
		case protocol.RegisterOperationNoop:
			sMsg.Success = true
		default:
			sMsg.Success = false
			sMsg.Error = protocol.ErrUnknownOperation.Error()
		}
		s.writeRegisterMessage(ctx, conn, sMsg)
	}
}

func (s *Server) writeRegisterMessage(
	ctx context.Context, conn *websocket.Conn, sMsg *protocol.ServerRegisterMessage,
) {
	j, err := json.Marshal(sMsg)
	if err != nil {
		log.Println("ERROR:", err)
		return
	}
	err = conn.Write(ctx, websocket.MessageText, j)
	if err != nil {
		log.Println("ERROR:", err)
	}
}

func (s *Server) saveLoop() {
	if s.dataFilePath == "" || s.saveInterval <= 0 {
		return
	}
	for {
		time.Sleep(s.saveInterval)
		err := s.registry.Save(s.dataFilePath)
		if err != nil {
			log.Println("ERROR:", err)
		}
	}
}

func (s *Server) Start() error {
	go s.saveLoop()
	return http.ListenAndServe(s.listen, s.mux)
}
