package main

import (
	_ "embed"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var apiSpec []byte

// loadAPIDoc parses and validates the embedded API description.
func loadAPIDoc() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(apiSpec)
	if err != nil {
		return nil, fmt.Errorf("failed to load openapi: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("invalid openapi schema: %w", err)
	}
	return doc, nil
}
