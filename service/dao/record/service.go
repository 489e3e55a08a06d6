// Package record stores accounting records of terminated processes.
package record

import (
	"context"
	"sort"
	"strconv"

	"github.com/viant/afs"
	"github.com/viant/fairsim/model/process"
	"github.com/viant/fairsim/service/dao"
	"github.com/viant/fairsim/service/dao/store"
)

// Parameter names understood by List.
const (
	ParamStatus = "Status"
	ParamGroup  = "GroupID"
)

// Service is a record store listing records by process id.
type Service struct {
	store dao.Service[int, process.Record]
}

var _ dao.Service[int, process.Record] = (*Service)(nil)

// Save stores a record; process ids are never negative.
func (s *Service) Save(ctx context.Context, r *process.Record) error {
	if r != nil && r.ID < 0 {
		return dao.ErrInvalidID
	}
	return s.store.Save(ctx, r)
}

// Load returns the record of a process.
func (s *Service) Load(ctx context.Context, id int) (*process.Record, error) {
	return s.store.Load(ctx, id)
}

// Delete removes the record of a process.
func (s *Service) Delete(ctx context.Context, id int) error {
	return s.store.Delete(ctx, id)
}

// List returns matching records ordered by process id.
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*process.Record, error) {
	out, err := s.store.List(ctx, parameters...)
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func match(r *process.Record, parameter *dao.Parameter) bool {
	switch parameter.Name {
	case ParamStatus:
		return parameter.Accepts(r.Status)
	case ParamGroup:
		return parameter.Accepts(strconv.Itoa(r.GroupID))
	}
	return true
}

func keyOf(r *process.Record) int {
	return r.ID
}

// New creates an empty in-memory record store.
func New() *Service {
	return &Service{store: store.NewMemoryStore[int, process.Record](keyOf, match)}
}

// NewFs creates a record store writing one JSON document per process under baseURL.
func NewFs(ctx context.Context, fs afs.Service, baseURL string) (*Service, error) {
	fsStore, err := store.NewFsStore[int, process.Record](ctx, fs, baseURL, keyOf, match)
	if err != nil {
		return nil, err
	}
	return &Service{store: fsStore}, nil
}
