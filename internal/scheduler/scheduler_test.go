package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"TigerChart/internal/model"
)

type stubRefresher struct {
	calls atomic.Int32
	err   error
}

func (s *stubRefresher) Refresh(_ context.Context) ([]model.Instrument, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return []model.Instrument{{Name: "TIGER 200", Symbol: "102110"}}, nil
}

func TestRegisterAll(t *testing.T) {
	s := NewScheduler(context.Background(), &stubRefresher{}, nil)

	require.NoError(t, s.RegisterAll("0 0 7 * * 1-5"))
	assert.Len(t, s.Cron.Entries(), 1)

	assert.Error(t, s.RegisterAll("not a cron"))
	assert.Error(t, s.RegisterAll("0 7 * * 1-5"), "five fields are rejected when seconds are required")
}

func TestRunRefreshNow(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := &stubRefresher{}
	s := NewScheduler(context.Background(), r, zap.New(core))

	s.RunRefreshNow()
	assert.Equal(t, int32(1), r.calls.Load())
	assert.Equal(t, 1, logs.FilterMessage("instrument refresh done").Len())

	r.err = errors.New("source down")
	s.RunRefreshNow()
	assert.Equal(t, 1, logs.FilterMessage("instrument refresh failed").Len())
}

func TestCronFiresRefresh(t *testing.T) {
	r := &stubRefresher{}
	s := NewScheduler(context.Background(), r, zap.NewNop())
	require.NoError(t, s.RegisterAll("@every 1s"))

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool { return r.calls.Load() > 0 }, 3*time.Second, 20*time.Millisecond)
}
