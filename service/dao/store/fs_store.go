package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
	"github.com/viant/fairsim/service/dao"
)

// FsStore is a generic dao.Service keeping one JSON document per entity under
// baseURL, named after the entity key.
type FsStore[K comparable, T any] struct {
	baseURL     string
	fs          afs.Service
	mu          sync.RWMutex
	keySelector func(*T) K
	matcher     Matcher[T]
}

// NewFsStore creates the base location when missing. A nil fs uses afs.New().
func NewFsStore[K comparable, T any](ctx context.Context, fs afs.Service, baseURL string, keySelector func(*T) K, matcher Matcher[T]) (*FsStore[K, T], error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base URL cannot be empty")
	}
	if fs == nil {
		fs = afs.New()
	}
	baseURL = url.Normalize(baseURL, file.Scheme)
	exists, _ := fs.Exists(ctx, baseURL)
	if !exists {
		if err := fs.Create(ctx, baseURL, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create base directory: %w", err)
		}
	}
	return &FsStore[K, T]{
		baseURL:     baseURL,
		fs:          fs,
		keySelector: keySelector,
		matcher:     matcher,
	}, nil
}

// Save writes or overwrites the entity document.
func (s *FsStore[K, T]) Save(ctx context.Context, v *T) error {
	if v == nil {
		return dao.ErrNilEntity
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}
	URL := s.entityURL(s.keySelector(v))

	s.mu.Lock()
	defer s.mu.Unlock()
	if err = s.fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save entity to %s: %w", URL, err)
	}
	return nil
}

// Load reads an entity by key.
func (s *FsStore[K, T]) Load(ctx context.Context, key K) (*T, error) {
	URL := s.entityURL(key)
	s.mu.RLock()
	defer s.mu.RUnlock()
	if exists, _ := s.fs.Exists(ctx, URL); !exists {
		return nil, fmt.Errorf("%w: %v", dao.ErrNotFound, key)
	}
	data, err := s.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", URL, err)
	}
	ret := new(T)
	if err = json.Unmarshal(data, ret); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", URL, err)
	}
	return ret, nil
}

// Delete removes an entity document.
func (s *FsStore[K, T]) Delete(ctx context.Context, key K) error {
	URL := s.entityURL(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if exists, _ := s.fs.Exists(ctx, URL); !exists {
		return fmt.Errorf("%w: %v", dao.ErrNotFound, key)
	}
	if err := s.fs.Delete(ctx, URL); err != nil {
		return fmt.Errorf("failed to delete %s: %w", URL, err)
	}
	return nil
}

// List reads every entity document matching all parameters, in no particular order.
func (s *FsStore[K, T]) List(ctx context.Context, parameters ...*dao.Parameter) ([]*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	objects, err := s.fs.List(ctx, s.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.baseURL, err)
	}
	var out []*T
outer:
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), ".json") {
			continue
		}
		data, err := s.fs.Download(ctx, object)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", object.URL(), err)
		}
		v := new(T)
		if err = json.Unmarshal(data, v); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", object.URL(), err)
		}
		if s.matcher != nil {
			for _, parameter := range parameters {
				if !s.matcher(v, parameter) {
					continue outer
				}
			}
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *FsStore[K, T]) entityURL(key K) string {
	return url.Join(s.baseURL, path.Base(fmt.Sprintf("%v.json", key)))
}
