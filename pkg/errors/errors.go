package errors

import (
	"fmt"
)

// InventoryParseError represents a failure to locate or parse a project's
// tile-inventory document (spec §4.2, §7: "Malformed inventory JSON").
type InventoryParseError struct {
	ProjectID string
	Path      string
	Message   string
	Err       error
}

// NewInventoryParseError constructs an InventoryParseError.
func NewInventoryParseError(projectID, path string, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &InventoryParseError{ProjectID: projectID, Path: path, Message: message, Err: err}
}

func (e *InventoryParseError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("inventory parse error: project %s: %s: %s", e.ProjectID, e.Path, e.Message)
}

// Unwrap exposes the underlying error.
func (e *InventoryParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ConfigError represents a failure to load or validate the YAML
// configuration document (ambient stack: configuration).
type ConfigError struct {
	Path string
	Err  error
}

// NewConfigError constructs a ConfigError.
func NewConfigError(path string, err error) error {
	return &ConfigError{Path: path, Err: err}
}

func (e *ConfigError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("config error: %s: %v", e.Path, e.Err)
}

// Unwrap exposes the underlying error.
func (e *ConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// GuardError reports that the Tile Muxer's mass-deletion guard tripped
// (spec §4.3). It is not a fault: the caller must skip the tick and leave
// persistence untouched.
type GuardError struct {
	ProjectID    string
	PersistedLen int
	ParsedLen    int
}

// NewGuardError constructs a GuardError.
func NewGuardError(projectID string, persistedLen, parsedLen int) error {
	return &GuardError{ProjectID: projectID, PersistedLen: persistedLen, ParsedLen: parsedLen}
}

func (e *GuardError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("mass-deletion guard tripped: project %s: persisted=%d parsed=%d delta=%d",
		e.ProjectID, e.PersistedLen, e.ParsedLen, e.PersistedLen-e.ParsedLen)
}

// StoreError wraps a failure applying a mux plan bucket to the persisted
// tile-status table (spec §7: "Database error during apply").
type StoreError struct {
	ProjectID string
	Bucket    string
	Err       error
}

// NewStoreError constructs a StoreError.
func NewStoreError(projectID, bucket string, err error) error {
	return &StoreError{ProjectID: projectID, Bucket: bucket, Err: err}
}

func (e *StoreError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("store error: project %s: %s bucket: %v", e.ProjectID, e.Bucket, e.Err)
}

// Unwrap exposes the underlying error.
func (e *StoreError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// DispatchError wraps a failure surfaced by the metrics sink or scheduler
// hub while handling a completion record (spec §4.7, §7).
type DispatchError struct {
	RecordID string
	StageID  string
	Stage    string
	Err      error
}

// NewDispatchError constructs a DispatchError.
func NewDispatchError(recordID, stageID, stage string, err error) error {
	return &DispatchError{RecordID: recordID, StageID: stageID, Stage: stage, Err: err}
}

func (e *DispatchError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("dispatch error [%s]: record %s stage %s: %v", e.Stage, e.RecordID, e.StageID, e.Err)
}

// Unwrap exposes the underlying error.
func (e *DispatchError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
