package schedulerhub

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mouselight/pipeline-scheduler/internal/domain/completion"
)

type fakeScheduler struct {
	refreshErr error
	refreshed  int
}

func (f *fakeScheduler) RefreshTileStatus(ctx context.Context) error {
	f.refreshed++
	return f.refreshErr
}

func (f *fakeScheduler) MuxInputOutputTiles(ctx context.Context) error { return nil }

func (f *fakeScheduler) CreateOutputStageConnector() string { return "" }

func TestOnTaskExecutionCompleteRoutesToRegisteredStage(t *testing.T) {
	t.Parallel()
	hub := NewHub()
	stage0 := &fakeScheduler{}
	require.NoError(t, hub.Register("0", stage0))

	handled := hub.OnTaskExecutionComplete(context.Background(), completion.Record{PipelineStageID: "0"})
	require.True(t, handled)
	require.Equal(t, 1, stage0.refreshed)
}

func TestOnTaskExecutionCompleteReturnsFalseNotErrorOnMiss(t *testing.T) {
	t.Parallel()
	hub := NewHub()

	handled := hub.OnTaskExecutionComplete(context.Background(), completion.Record{PipelineStageID: "unregistered"})
	require.False(t, handled)
}

func TestOnTaskExecutionCompleteReturnsFalseWhenStageErrors(t *testing.T) {
	t.Parallel()
	hub := NewHub()
	require.NoError(t, hub.Register("0", &fakeScheduler{refreshErr: context.Canceled}))

	handled := hub.OnTaskExecutionComplete(context.Background(), completion.Record{PipelineStageID: "0"})
	require.False(t, handled)
}

func TestRegisterRejectsDuplicateStageID(t *testing.T) {
	t.Parallel()
	hub := NewHub()
	require.NoError(t, hub.Register("0", &fakeScheduler{}))
	require.Error(t, hub.Register("0", &fakeScheduler{}))
}

func TestDeregisterRemovesStage(t *testing.T) {
	t.Parallel()
	hub := NewHub()
	require.NoError(t, hub.Register("0", &fakeScheduler{}))
	hub.Deregister("0")

	handled := hub.OnTaskExecutionComplete(context.Background(), completion.Record{PipelineStageID: "0"})
	require.False(t, handled)
}

func TestStageIDsReturnsSortedIDs(t *testing.T) {
	t.Parallel()
	hub := NewHub()
	require.NoError(t, hub.Register("2", &fakeScheduler{}))
	require.NoError(t, hub.Register("0", &fakeScheduler{}))
	require.NoError(t, hub.Register("1", &fakeScheduler{}))

	require.Equal(t, []string{"0", "1", "2"}, hub.StageIDs())
}
