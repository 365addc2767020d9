package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInventoryParseErrorWrapsUnderlying(t *testing.T) {
	t.Parallel()

	underlying := fmt.Errorf("unexpected token")
	err := NewInventoryParseError("proj-1", "pipeline-input.json", underlying)

	var parseErr *InventoryParseError
	require.ErrorAs(t, err, &parseErr)
	require.Equal(t, "proj-1", parseErr.ProjectID)
	require.Equal(t, "pipeline-input.json", parseErr.Path)
	require.True(t, stdErrors.Is(err, underlying))
	require.Contains(t, err.Error(), "pipeline-input.json")
}

func TestGuardErrorReportsDelta(t *testing.T) {
	t.Parallel()

	err := NewGuardError("proj-1", 5000, 3500)

	var guardErr *GuardError
	require.ErrorAs(t, err, &guardErr)
	require.Equal(t, 5000, guardErr.PersistedLen)
	require.Equal(t, 3500, guardErr.ParsedLen)
	require.Contains(t, err.Error(), "delta=1500")
}

func TestStoreErrorIncludesBucket(t *testing.T) {
	t.Parallel()

	underlying := stdErrors.New("connection reset")
	err := NewStoreError("proj-1", "delete", underlying)

	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	require.Equal(t, "delete", storeErr.Bucket)
	require.True(t, stdErrors.Is(err, underlying))
}

func TestDispatchErrorIncludesRecordAndStage(t *testing.T) {
	t.Parallel()

	underlying := stdErrors.New("sink unavailable")
	err := NewDispatchError("rec-1", "stage-0", "metrics", underlying)

	var dispatchErr *DispatchError
	require.ErrorAs(t, err, &dispatchErr)
	require.Equal(t, "rec-1", dispatchErr.RecordID)
	require.Equal(t, "stage-0", dispatchErr.StageID)
	require.True(t, stdErrors.Is(err, underlying))
}
