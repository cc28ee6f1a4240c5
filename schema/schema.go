// Package schema persists the JSON schema and storage type of every registered component, so that a
// world restarted against the same storage refuses component definitions that changed shape.
package schema

import (
	"encoding/json"
	"reflect"

	"github.com/invopop/jsonschema"
	"github.com/rotisserie/eris"
	"github.com/wI2L/jsondiff"
)

var (
	ErrNoSchemaFound   = eris.New("no schema found")
	ErrStorageMismatch = eris.New("component storage type does not match stored schema")
	ErrSchemaMismatch  = eris.New("component schema does not match stored schema")
)

// Record is the persisted description of a component type.
type Record struct {
	Name    string          `json:"name"`
	Storage string          `json:"storage"`
	Schema  json.RawMessage `json:"schema"`
}

// Storage reads and writes schema records by component name.
type Storage interface {
	// GetSchema returns the stored record, or an error wrapping ErrNoSchemaFound.
	GetSchema(name string) (Record, error)
	SetSchema(record Record) error
}

// Reflect builds the record of a component type from its Go type.
func Reflect(name, storage string, typ reflect.Type) (Record, error) {
	reflector := jsonschema.Reflector{}
	bz, err := reflector.ReflectFromType(typ).MarshalJSON()
	if err != nil {
		return Record{}, eris.Wrap(err, "component must be json serializable")
	}
	return Record{Name: name, Storage: storage, Schema: bz}, nil
}

// Reconcile checks record against the one stored under the same name. A component seen for the
// first time is stored. Returns ErrStorageMismatch or ErrSchemaMismatch if the stored record
// disagrees.
func Reconcile(s Storage, record Record) error {
	stored, err := s.GetSchema(record.Name)
	if eris.Is(err, ErrNoSchemaFound) {
		return s.SetSchema(record)
	}
	if err != nil {
		return err
	}

	if stored.Storage != record.Storage {
		return eris.Wrapf(ErrStorageMismatch, "component %s is stored as %s, registered as %s",
			record.Name, stored.Storage, record.Storage)
	}

	patch, err := jsondiff.CompareJSON(stored.Schema, record.Schema)
	if err != nil {
		return eris.Wrap(err, "failed to compare component schema")
	}
	if len(patch) > 0 {
		return eris.Wrapf(ErrSchemaMismatch, "component %s: %s", record.Name, patch.String())
	}
	return nil
}
