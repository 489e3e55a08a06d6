package record

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/fairsim/model/process"
	"github.com/viant/fairsim/service/dao"
)

func TestService(t *testing.T) {
	testCases := []struct {
		name string
		new  func(t *testing.T) *Service
	}{
		{name: "memory", new: func(t *testing.T) *Service { return New() }},
		{name: "fs", new: func(t *testing.T) *Service {
			srv, err := NewFs(context.Background(), afs.New(), filepath.Join(t.TempDir(), "records"))
			require.NoError(t, err)
			return srv
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := tc.new(t)
			ctx := context.Background()
			now := time.Now().UTC().Truncate(time.Second)

			records := []*process.Record{
				{ID: 2, GroupID: 1, Status: process.StatusFailed, Reason: "illegal opcode", FinishedAt: now},
				{ID: 0, GroupID: 0, Status: process.StatusExited, FinishedAt: now},
				{ID: 1, GroupID: 1, Status: process.StatusExited, FinishedAt: now},
			}
			for _, r := range records {
				require.NoError(t, srv.Save(ctx, r))
			}

			all, err := srv.List(ctx)
			require.NoError(t, err)
			require.Len(t, all, 3)
			assert.Equal(t, []int{0, 1, 2}, []int{all[0].ID, all[1].ID, all[2].ID})

			exited, err := srv.List(ctx, dao.NewParameter(ParamStatus, process.StatusExited))
			require.NoError(t, err)
			assert.Len(t, exited, 2)

			group1Failed, err := srv.List(ctx, dao.NewParameter(ParamGroup, "1"), dao.NewParameter(ParamStatus, process.StatusFailed, "other"))
			require.NoError(t, err)
			require.Len(t, group1Failed, 1)
			assert.Equal(t, 2, group1Failed[0].ID)

			loaded, err := srv.Load(ctx, 1)
			require.NoError(t, err)
			assert.Equal(t, records[2], loaded)

			require.NoError(t, srv.Delete(ctx, 1))
			_, err = srv.Load(ctx, 1)
			assert.True(t, errors.Is(err, dao.ErrNotFound))
			assert.True(t, errors.Is(srv.Delete(ctx, 1), dao.ErrNotFound))

			assert.True(t, errors.Is(srv.Save(ctx, nil), dao.ErrNilEntity))
			assert.True(t, errors.Is(srv.Save(ctx, &process.Record{ID: -1}), dao.ErrInvalidID))
		})
	}
}

func TestNewFs(t *testing.T) {
	_, err := NewFs(context.Background(), nil, "")
	assert.Error(t, err)
}
