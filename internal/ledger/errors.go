package ledger

import (
	"errors"
	"fmt"
	"strings"
)

// FieldError describes one rejected input field.
type FieldError struct {
	// Field is the column name of the offending field (e.g. "OvenNumber").
	Field string `json:"field"`

	// Message is a human-readable description.
	Message string `json:"message"`
}

// ValidationError reports every invalid field of an AddCylinder request.
// No mutation happens when it is returned.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "invalid cylinder: " + strings.Join(parts, "; ")
}

// FieldNames returns the offending field names in report order.
func (e *ValidationError) FieldNames() []string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Field
	}
	return names
}

// NotFoundError is returned when a record ID does not resolve.
type NotFoundError struct {
	ID string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("cylinder %s not found", e.ID)
}

// AlreadyUnloadedError is returned when unloading a record a second time.
// The original unload time is left untouched.
type AlreadyUnloadedError struct {
	Record Record
}

// Error implements the error interface.
func (e *AlreadyUnloadedError) Error() string {
	return fmt.Sprintf("cylinder %s already unloaded at %s",
		e.Record.ID, e.Record.UnloadTime.Format("2006-01-02 15:04:05"))
}

// StorageReadError wraps a failure to read the persisted ledger.
// A missing store is not an error; a malformed one is.
type StorageReadError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *StorageReadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("read ledger %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("read ledger: %v", e.Err)
}

func (e *StorageReadError) Unwrap() error {
	return e.Err
}

// Write operations reported by StorageWriteError.
const (
	OpSave   = "save"
	OpExport = "export"
)

// StorageWriteError wraps a failure to persist the ledger or write the
// export. The mutation that triggered the write has already been applied.
type StorageWriteError struct {
	Op   string // OpSave or OpExport
	Path string
	Err  error
}

// Error implements the error interface.
func (e *StorageWriteError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageWriteError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is or wraps a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is or wraps a *NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsAlreadyUnloaded reports whether err is or wraps an *AlreadyUnloadedError.
func IsAlreadyUnloaded(err error) bool {
	var au *AlreadyUnloadedError
	return errors.As(err, &au)
}

// IsStorageRead reports whether err is or wraps a *StorageReadError.
func IsStorageRead(err error) bool {
	var sr *StorageReadError
	return errors.As(err, &sr)
}

// IsStorageWrite reports whether err is or wraps a *StorageWriteError.
// Callers treat it as a warning: the ledger mutation succeeded.
func IsStorageWrite(err error) bool {
	var sw *StorageWriteError
	return errors.As(err, &sw)
}
