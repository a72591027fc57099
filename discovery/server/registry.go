package server

import (
	"encoding/json"
	"math/rand"
	"os"
	"sync"

	"github.com/clusterlab/slurmlaunch/discovery/protocol"
	"github.com/satori/uuid"
)

type Service struct {
	ID         uuid.UUID `json:"id"`
	Address    string    `json:"address"`
	Type       string    `json:"type"`
	Tags       []string  `json:"tags"`
	tagIndex   map[string]bool
	tagIndexed bool
}

func (svc *Service) indexTags() {
	if svc.tagIndexed {
		return
	}
	svc.tagIndexed = true
	svc.tagIndex = make(map[string]bool)
	for _, tag := range svc.Tags {
		svc.tagIndex[tag] = true
	}
}

func (svc *Service) HasTag(tag string) bool {
	if !svc.tagIndexed {
		svc.indexTags()
	}
	return svc.tagIndex[tag]
}

func ServiceToProtocolService(svc *Service) *protocol.Service {
	if svc == nil {
		return nil
	}
	return &protocol.Service{
		ID:      svc.ID,
		Address: svc.Address,
		Type:    svc.Type,
		Tags:    svc.Tags,
	}
}

func ProtocolServiceToService(svc *protocol.Service) *Service {
	if svc == nil {
		return nil
	}
	return &Service{
		ID:      svc.ID,
		Address: svc.Address,
		Type:    svc.Type,
		Tags:    svc.Tags,
	}
}

// Registry holds the known services indexed by type. One registry serves
// one cluster.
type Registry struct {
	services    []*Service
	indexByType map[string][]*Service
	uniqueness  map[uuid.UUID]bool
	lock        *sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		services:    []*Service{},
		indexByType: make(map[string][]*Service),
		uniqueness:  make(map[uuid.UUID]bool),
		lock:        &sync.RWMutex{},
	}
}

func (rg *Registry) Query(params *protocol.QueryParameters) []*Service {
	if params == nil {
		params = &protocol.QueryParameters{}
	}
	var haystack []*Service
	var result []*Service
	rg.lock.RLock()
	defer rg.lock.RUnlock()
	if params.Type == "" {
		haystack = rg.services
	} else {
		haystack = rg.indexByType[params.Type]
	}
	for _, item := range haystack {
		flag := true
		for _, tag := range params.Tags {
			if !item.HasTag(tag) {
				flag = false
				break
			}
		}
		if flag {
			for _, exTag := range params.ExcludeTags {
				if item.HasTag(exTag) {
					flag = false
					break
				}
			}
		}
		if flag {
			if params.ID != uuid.Nil {
				if params.ID == item.ID {
					result = append(result, item)
					break
				}
				continue
			}
			if params.Address != "" {
				if params.Address == item.Address {
					result = append(result, item)
					break
				}
				continue
			}
			result = append(result, item)
		}
	}
	return result
}

// QueryOne picks a random match so submissions spread across agents.
func (rg *Registry) QueryOne(params *protocol.QueryParameters) *Service {
	matched := rg.Query(params)
	if len(matched) <= 0 {
		return nil
	}
	return matched[rand.Intn(len(matched))]
}

// normalize assigns an ID, reusing the registered one when the same
// address and type already exist.
func (rg *Registry) normalize(service *Service) error {
	service.indexTags()
	if service.ID == uuid.Nil {
		qRslt := rg.QueryOne(&protocol.QueryParameters{
			Address: service.Address,
			Type:    service.Type,
		})
		if qRslt != nil {
			service.ID = qRslt.ID
			return protocol.ErrServiceAlreadyExists
		}
		service.ID = uuid.NewV4()
	}
	return nil
}

func (rg *Registry) Add(service *Service) error {
	err := rg.normalize(service)
	if err != nil {
		return err
	}
	rg.lock.Lock()
	defer rg.lock.Unlock()
	if rg.uniqueness[service.ID] {
		return protocol.ErrServiceAlreadyExists
	}
	rg.uniqueness[service.ID] = true
	rg.services = append(rg.services, service)
	rg.indexByType[service.Type] = append(rg.indexByType[service.Type], service)
	return nil
}

func findServiceInSlice(haystack []*Service, needle *Service) (int, error) {
	for p, item := range haystack {
		if needle.ID == uuid.Nil {
			if item.Address == needle.Address && item.Type == needle.Type {
				return p, nil
			}
		} else {
			if item.ID == needle.ID {
				return p, nil
			}
		}
	}
	return -1, protocol.ErrServiceDoesNotExist
}

func (rg *Registry) Delete(service *Service) error {
	rg.lock.Lock()
	defer rg.lock.Unlock()
	pos, err := findServiceInSlice(rg.services, service)
	if err != nil {
		return err
	}
	found := rg.services[pos]
	rg.services = append(rg.services[0:pos], rg.services[pos+1:]...)
	pos, err = findServiceInSlice(rg.indexByType[found.Type], found)
	if err == nil {
		rg.indexByType[found.Type] = append(
			rg.indexByType[found.Type][0:pos], rg.indexByType[found.Type][pos+1:]...,
		)
	}
	delete(rg.uniqueness, found.ID)
	return nil
}

func (rg *Registry) Has(service *Service) bool {
	rg.lock.RLock()
	defer rg.lock.RUnlock()
	_, err := findServiceInSlice(rg.services, service)
	return err == nil
}

func (rg *Registry) buildIndex() {
	rg.lock.Lock()
	defer rg.lock.Unlock()
	rg.indexByType = make(map[string][]*Service)
	rg.uniqueness = make(map[uuid.UUID]bool)
	for _, svc := range rg.services {
		svc.indexTags()
		rg.indexByType[svc.Type] = append(rg.indexByType[svc.Type], svc)
		rg.uniqueness[svc.ID] = true
	}
}

func (rg *Registry) Save(path string) error {
	rg.lock.RLock()
	j, err := json.Marshal(rg.services)
	rg.lock.RUnlock()
	if err != nil {
		return err
	}
	return os.WriteFile(path, j, os.FileMode(0644))
}

func (rg *Registry) Load(path string) error {
	f, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	services := []*Service{}
	err = json.Unmarshal(f, &services)
	if err != nil {
		return err
	}
	rg.lock.Lock()
	rg.services = services
	rg.lock.Unlock()
	rg.buildIndex()
	return nil
}
