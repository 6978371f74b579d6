package undo

import (
	"encoding/json"
	"fmt"

	"github.com/erazemk/shramba/internal/model"
)

type envelope struct {
	Kind Kind            `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// Marshal encodes a record with its kind tag. A nil record encodes as null.
func Marshal(r Record) ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encoding undo record: %w", err)
	}
	return json.Marshal(envelope{Kind: r.Kind(), Data: data})
}

// Unmarshal decodes a record produced by Marshal. null decodes to a nil record.
func Unmarshal(data []byte) (Record, error) {
	var env *envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: undo record: %v", model.ErrFormat, err)
	}
	if env == nil {
		return nil, nil
	}

	switch env.Kind {
	case KindQuantity:
		return decode[QuantityChanged](env)
	case KindCategoryRename:
		return decode[CategoryRenamed](env)
	case KindCategoryDelete:
		return decode[CategoryDeleted](env)
	case KindLocationDelete:
		return decode[LocationDeleted](env)
	case KindItemDelete:
		return decode[ItemDeleted](env)
	default:
		return nil, fmt.Errorf("%w: unknown undo record kind %q", model.ErrFormat, env.Kind)
	}
}

func decode[T Record](env *envelope) (Record, error) {
	var r T
	if err := json.Unmarshal(env.Data, &r); err != nil {
		return nil, fmt.Errorf("%w: undo record %s: %v", model.ErrFormat, env.Kind, err)
	}
	return r, nil
}
