package realtime

import (
	"encoding/json"
	"testing"
)

type weatherParams struct {
	Location string `json:"location" jsonschema:"description=City and region to look up"`
	Unit     string `json:"unit,omitempty"`
}

func TestNewFunctionToolReflectsSchema(t *testing.T) {
	tool, err := NewFunctionTool("get_weather", "Look up the current weather.", weatherParams{})
	if err != nil {
		t.Fatalf("expected tool creation to succeed, got %v", err)
	}
	if tool.Type != "function" || tool.Name != "get_weather" {
		t.Fatalf("unexpected tool identity: %+v", tool)
	}

	var schema struct {
		Type       string         `json:"type"`
		Properties map[string]any `json:"properties"`
		Required   []string       `json:"required"`
	}
	if err := json.Unmarshal(tool.Parameters, &schema); err != nil {
		t.Fatalf("expected parameters to be valid JSON, got %v", err)
	}
	if schema.Type != "object" {
		t.Fatalf("expected an object schema, got %q", schema.Type)
	}
	if _, ok := schema.Properties["location"]; !ok {
		t.Fatalf("expected a location property, got %v", schema.Properties)
	}
	if _, ok := schema.Properties["unit"]; !ok {
		t.Fatalf("expected a unit property, got %v", schema.Properties)
	}
	if len(schema.Required) != 1 || schema.Required[0] != "location" {
		t.Fatalf("expected only location to be required, got %v", schema.Required)
	}
}

func TestNewFunctionToolAcceptsPointer(t *testing.T) {
	byValue, err := NewFunctionTool("get_weather", "", weatherParams{})
	if err != nil {
		t.Fatalf("expected tool creation to succeed, got %v", err)
	}
	byPointer, err := NewFunctionTool("get_weather", "", &weatherParams{})
	if err != nil {
		t.Fatalf("expected tool creation to succeed, got %v", err)
	}
	if string(byValue.Parameters) != string(byPointer.Parameters) {
		t.Fatalf("expected identical schemas for value and pointer params")
	}
}
