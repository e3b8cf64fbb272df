package vfs

import (
	"errors"
	"fmt"
	"strings"
)

// ErrIncompleteModuleMap is returned by ModuleMap.Write when the module name
// or umbrella header is missing.
var ErrIncompleteModuleMap = errors.New("module map needs a framework name and an umbrella header")

// ModuleMap describes a framework module with a single umbrella header.
type ModuleMap struct {
	name     string
	umbrella string
}

// NewModuleMap creates an empty descriptor.
func NewModuleMap() *ModuleMap { return &ModuleMap{} }

// SetFrameworkModuleName sets the module name.
func (m *ModuleMap) SetFrameworkModuleName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty module name", ErrInvalidPath)
	}
	m.name = name
	return nil
}

// SetUmbrellaHeader sets the umbrella header name.
func (m *ModuleMap) SetUmbrellaHeader(header string) error {
	if strings.TrimSpace(header) == "" {
		return fmt.Errorf("%w: empty umbrella header", ErrInvalidPath)
	}
	m.umbrella = header
	return nil
}

// Write renders the module map text.
func (m *ModuleMap) Write() (string, error) {
	if m.name == "" || m.umbrella == "" {
		return "", ErrIncompleteModuleMap
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "framework module %s {\n", m.name)
	fmt.Fprintf(&sb, "  umbrella header %s\n\n", quote(m.umbrella))
	sb.WriteString("  export *\n")
	sb.WriteString("  module * { export * }\n")
	sb.WriteString("}\n")
	return sb.String(), nil
}
