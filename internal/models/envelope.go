package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// SchemaVersion is the current version of persisted records
const SchemaVersion = 1

// Kind names the record type held by an envelope
type Kind string

const (
	KindAccount     Kind = "account"
	KindTransaction Kind = "transaction"
	KindDeposit     Kind = "deposit"
)

// ErrCorruptRecord is returned when a stored record fails schema checks
var ErrCorruptRecord = errors.New("corrupt record")

type envelope struct {
	Schema int             `json:"schema"`
	Kind   Kind            `json:"kind"`
	Data   json.RawMessage `json:"data"`
}

type checker interface {
	Check() error
}

var recordValidator = validator.New()

// Encode wraps v in a versioned envelope.
func Encode(kind Kind, v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", kind, err)
	}
	return json.Marshal(envelope{Schema: SchemaVersion, Kind: kind, Data: data})
}

// Decode unwraps an envelope into v and validates the record. Any mismatch is
// reported as ErrCorruptRecord.
func Decode(raw []byte, kind Kind, v any) error {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	if env.Schema != SchemaVersion {
		return fmt.Errorf("%w: schema %d, want %d", ErrCorruptRecord, env.Schema, SchemaVersion)
	}
	if env.Kind != kind {
		return fmt.Errorf("%w: kind %q, want %q", ErrCorruptRecord, env.Kind, kind)
	}

	dec := json.NewDecoder(bytes.NewReader(env.Data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	if err := recordValidator.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	if c, ok := v.(checker); ok {
		if err := c.Check(); err != nil {
			return fmt.Errorf("%w: %v", ErrCorruptRecord, err)
		}
	}
	return nil
}
