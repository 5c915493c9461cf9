package models

import (
	"errors"
	"fmt"
)

// ErrEmptyDeck is returned when a card is drawn from a deck with no cards left.
var ErrEmptyDeck = errors.New("deck is empty")

// ConfigError reports a bad or missing catalog, question table or setting.
// It is fatal at startup.
type ConfigError struct {
	Source string
	Msg    string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config %s: %s: %v", e.Source, e.Msg, e.Err)
	}
	return fmt.Sprintf("config %s: %s", e.Source, e.Msg)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ExternalServiceError reports a failed call to the oracle or the translator.
// Callers recover from it locally and never show it to the user.
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

// StorageError reports an I/O failure on the event store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
