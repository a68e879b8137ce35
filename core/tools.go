package realtime

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/invopop/jsonschema"
	"github.com/tvrdic/voxlink-core/core/events"
)

// NewFunctionTool declares a client-side capability the model may call. The
// argument schema is reflected from params, a struct (or struct pointer)
// whose fields describe the expected argument object.
func NewFunctionTool(name string, description string, params any) (events.Tool, error) {
	reflector := jsonschema.Reflector{DoNotReference: true}

	var schema *jsonschema.Schema
	if t := reflect.TypeOf(params); t != nil && t.Kind() == reflect.Ptr {
		schema = reflector.ReflectFromType(t.Elem())
	} else {
		schema = reflector.Reflect(params)
	}

	raw, err := json.Marshal(schema)
	if err != nil {
		return events.Tool{}, fmt.Errorf("failed to encode parameter schema for tool %q: %w", name, err)
	}

	return events.Tool{
		Type:        "function",
		Name:        name,
		Description: description,
		Parameters:  raw,
	}, nil
}
