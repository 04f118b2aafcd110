package app

import (
	"bytes"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/pscheid92/hintd/internal/domain"
	"github.com/pscheid92/hintd/internal/hinter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSink struct {
	mu      sync.Mutex
	ops     []string
	commits int
}

func (f *fakeSink) record(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, op)
}

func (f *fakeSink) BeginEarlyWakeup() { f.record("begin_early_wakeup") }
func (f *fakeSink) EndEarlyWakeup()   { f.record("end_early_wakeup") }

func (f *fakeSink) SetFrameRateOverride(domain.RootHandle, bool) { f.record("frame_rate") }

func (f *fakeSink) Commit() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commits++
	return nil
}

type fakeResolver struct {
	roots map[domain.DisplayID]domain.RootHandle
}

func (f *fakeResolver) RootForDisplay(id domain.DisplayID) (domain.RootHandle, bool) {
	root, ok := f.roots[id]
	return root, ok
}

func newTestService(sink *fakeSink, resolver domain.DisplayRootResolver) *Service {
	return NewService(hinter.New(sink, resolver, nil, nil, nil, nil))
}

func TestService_StartAndCloseByID(t *testing.T) {
	svc := newTestService(&fakeSink{}, nil)

	info, err := svc.StartSession(domain.HintEarlyWakeup, domain.GlobalDisplay, "anim")
	require.NoError(t, err)
	assert.False(t, info.Inert)
	require.Len(t, svc.Dump(), 1)

	require.NoError(t, svc.CloseSession(info.ID))
	assert.Empty(t, svc.Dump())

	// Second close reports not found.
	err = svc.CloseSession(info.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestService_CloseUnknownID(t *testing.T) {
	svc := newTestService(&fakeSink{}, nil)

	err := svc.CloseSession(uuid.New())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestService_InertSessionNotTracked(t *testing.T) {
	resolver := &fakeResolver{roots: map[domain.DisplayID]domain.RootHandle{}}
	svc := newTestService(&fakeSink{}, resolver)

	info, err := svc.StartSession(domain.HintFrameRate, 9, "video")
	require.NoError(t, err)
	assert.True(t, info.Inert)
	assert.Empty(t, svc.Dump())

	err = svc.CloseSession(info.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestService_StartSessionPropagatesConfigErrors(t *testing.T) {
	svc := newTestService(&fakeSink{}, nil)

	_, err := svc.StartSession(domain.HintADPFBoost, domain.GlobalDisplay, "boost")
	assert.ErrorIs(t, err, domain.ErrNoLoadHintChannel)
	assert.Empty(t, svc.Dump())
}

func TestService_CloseAll(t *testing.T) {
	sink := &fakeSink{}
	svc := newTestService(sink, nil)

	_, err := svc.StartSession(domain.HintEarlyWakeup, domain.GlobalDisplay, "a")
	require.NoError(t, err)
	_, err = svc.StartSession(domain.HintEarlyWakeup, domain.GlobalDisplay, "b")
	require.NoError(t, err)

	svc.CloseAll()

	assert.Empty(t, svc.Dump())
	assert.Contains(t, sink.ops, "end_early_wakeup", "shutdown must retract asserted hints")

	// Idempotent.
	svc.CloseAll()
}

func TestService_ConcurrentCallers(t *testing.T) {
	svc := newTestService(&fakeSink{}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			info, err := svc.StartSession(domain.HintEarlyWakeup, domain.GlobalDisplay, "burst")
			require.NoError(t, err)
			svc.Dump()
			require.NoError(t, svc.CloseSession(info.ID))
		}()
	}
	wg.Wait()

	assert.Empty(t, svc.Dump())
}

func TestService_DumpTo(t *testing.T) {
	svc := newTestService(&fakeSink{}, nil)

	_, err := svc.StartSession(domain.HintEarlyWakeup, domain.GlobalDisplay, "anim")
	require.NoError(t, err)

	var buf bytes.Buffer
	svc.DumpTo(&buf)
	assert.Contains(t, buf.String(), "Active sessions (1)")
}
