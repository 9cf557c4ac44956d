package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts one route per operation in doc, each behind its
// request validator. Every operationId must have a handler.
func RegisterRoutes(app *fiber.App, doc *openapi3.T, h *Handlers, logger *Logger) error {
	byOperation := map[string]fiber.Handler{
		"listMessages":  h.ListMessages,
		"postMessage":   h.PostMessage,
		"listComments":  h.ListComments,
		"addComment":    h.AddComment,
		"listUsers":     h.ListUsers,
		"login":         h.Login,
		"signup":        h.Signup,
		"bulletinBoard": h.BulletinBoard,
		"health":        h.Health,
		"apiDoc":        h.APIDoc,
	}

	var endpoints []string
	for _, path := range sortedKeys(doc.Paths) {
		item := doc.Paths[path]
		for method, op := range item.Operations() {
			handler, ok := byOperation[op.OperationID]
			if !ok {
				return fmt.Errorf("no handler for operation %q (%s %s)", op.OperationID, method, path)
			}
			app.Add(method, path, validateOperation(op), handler)
			endpoints = append(endpoints, strings.ToUpper(method)+" "+path)
		}
	}

	sort.Strings(endpoints)
	logger.Info(ComponentHTTPServer, "Available endpoints:")
	for _, e := range endpoints {
		logger.Info(ComponentHTTPServer, "  "+e)
	}
	return nil
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
