package app

import (
	"testing"

	"go.uber.org/fx"
)

// ValidateApp resolves the dependency graph without running constructors
func TestCreateApp_GraphIsComplete(t *testing.T) {
	if err := fx.ValidateApp(CreateApp()); err != nil {
		t.Fatalf("Expected a complete dependency graph, got %v", err)
	}
}
