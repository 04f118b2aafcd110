package compositor

import (
	"bufio"
	"encoding/json"
	"net"
	"path/filepath"
	"testing"

	"github.com/pscheid92/hintd/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pipeSink returns a sink whose frames can be read line by line from the
// other end of an in-memory pipe.
func pipeSink(t *testing.T) (*Sink, *bufio.Reader) {
	t.Helper()
	client, server := net.Pipe()
	t.Cleanup(func() {
		client.Close()
		server.Close()
	})
	return New(client), bufio.NewReader(server)
}

func readFrame(t *testing.T, r *bufio.Reader) frame {
	t.Helper()
	line, err := r.ReadBytes('\n')
	require.NoError(t, err)
	var f frame
	require.NoError(t, json.Unmarshal(line, &f))
	return f
}

func TestSink_CommitBatchesMutations(t *testing.T) {
	sink, r := pipeSink(t)

	sink.BeginEarlyWakeup()
	sink.SetFrameRateOverride(300, true)

	done := make(chan frame, 1)
	go func() { done <- readFrame(t, r) }()

	require.NoError(t, sink.Commit())

	f := <-done
	require.Len(t, f.Mutations, 2)
	assert.Equal(t, "early_wakeup_begin", f.Mutations[0].Op)
	assert.Equal(t, "frame_rate_override", f.Mutations[1].Op)
	assert.Equal(t, domain.RootHandle(300), f.Mutations[1].Root)
	assert.True(t, f.Mutations[1].Overridden)
}

func TestSink_EmptyCommitWritesNothing(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()
	sink := New(client)

	// A write on the unread pipe would block past the deadline and fail;
	// an empty commit must not touch the connection at all.
	require.NoError(t, sink.Commit())
	require.NoError(t, sink.Close())
}

func TestSink_CommitClearsQueue(t *testing.T) {
	sink, r := pipeSink(t)

	sink.EndEarlyWakeup()
	go func() { _ = readFrame(t, r) }()
	require.NoError(t, sink.Commit())

	// Second commit has nothing queued.
	require.NoError(t, sink.Commit())
}

func TestSink_CommitOnClosedConnection(t *testing.T) {
	client, server := net.Pipe()
	server.Close()
	sink := New(client)

	sink.BeginEarlyWakeup()
	err := sink.Commit()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSinkUnavailable)

	// Queue was cleared, next commit is a clean no-op.
	require.NoError(t, sink.Commit())
}

func TestDial_MissingSocket(t *testing.T) {
	_, err := Dial(filepath.Join(t.TempDir(), "absent.sock"))
	assert.Error(t, err)
}
