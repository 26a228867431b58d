package http_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
)

// findOpenAPISpec locates the openapi.yaml file by walking up from the test directory.
func findOpenAPISpec(t *testing.T) string {
	dir, _ := os.Getwd()

	for i := 0; i < 5; i++ {
		candidate := filepath.Join(dir, "api", "openapi.yaml")
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		dir = filepath.Dir(dir)
	}

	t.Fatalf("could not find api/openapi.yaml")
	return ""
}

// TestOpenAPISpec validates the OpenAPI specification is valid.
func TestOpenAPISpec(t *testing.T) {
	specPath := findOpenAPISpec(t)
	data, err := os.ReadFile(specPath)
	if err != nil {
		t.Fatalf("failed to read openapi.yaml: %v", err)
	}

	loader := &openapi3.Loader{IsExternalRefsAllowed: false}
	spec, err := loader.LoadFromData(data)
	if err != nil {
		t.Fatalf("failed to parse OpenAPI spec: %v", err)
	}

	if err := spec.Validate(context.Background()); err != nil {
		t.Fatalf("OpenAPI spec validation failed: %v", err)
	}

	// Check that key paths exist
	expectedPaths := []string{
		"/v1/health",
		"/v1/ready",
		"/v1/interpreters",
		"/v1/interpreters/{id}",
		"/v1/interpreters/{id}/bookings",
		"/v1/registry/stats",
		"/v1/matches",
		"/v1/geocode",
		"/v1/geocode/reverse",
		"/v1/intake/sessions",
		"/v1/intake/sessions/{id}",
		"/v1/intake/sessions/{id}/answer",
		"/v1/intake/sessions/{id}/back",
		"/v1/intake/sessions/{id}/complete",
		"/v1/intake/sessions/{id}/location-search",
		"/v1/bookings",
		"/v1/bookings/{id}",
		"/v1/bookings/{id}/confirm",
		"/v1/bookings/{id}/cancel",
	}
	for _, p := range expectedPaths {
		if spec.Paths.Find(p) == nil {
			t.Errorf("missing path in spec: %s", p)
		}
	}
}

// TestOpenAPISpecSchemas checks the core schemas are declared.
func TestOpenAPISpecSchemas(t *testing.T) {
	specPath := findOpenAPISpec(t)
	loader := &openapi3.Loader{IsExternalRefsAllowed: false}
	spec, err := loader.LoadFromFile(specPath)
	if err != nil {
		t.Fatalf("failed to load spec: %v", err)
	}

	for _, name := range []string{
		"Interpreter", "MatchRequest", "MatchResult", "GeocodedFeature",
		"IntakeSession", "Booking", "APIError",
	} {
		if _, ok := spec.Components.Schemas[name]; !ok {
			t.Errorf("missing schema: %s", name)
		}
	}
}
