package main

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gofiber/fiber/v2"
)

const anyMediaType = "*/*"

// rejectRequest logs the violation and answers with a JSON error body.
func rejectRequest(c *fiber.Ctx, statusCode int, violations ...string) error {
	logger := requestLogger(c)
	logger.Warning(ComponentValidator, "Request did not pass the validation rules")
	for _, v := range violations {
		logger.Violation(v)
	}
	return c.Status(statusCode).JSON(fiber.Map{
		"error":   http.StatusText(statusCode),
		"message": strings.Join(violations, "; "),
	})
}

// validateOperation checks a request against op before the handler runs:
// body presence, content type, JSON body schema, then required parameters.
func validateOperation(op *openapi3.Operation) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if needsRequestBody(c.Method()) && op.RequestBody != nil && op.RequestBody.Value != nil {
			rb := op.RequestBody.Value
			body := c.Body()

			if rb.Required && len(body) == 0 {
				return rejectRequest(c, fiber.StatusBadRequest, "Body parameter is required")
			}

			if len(body) > 0 && rb.Content != nil {
				// A "*/*" entry takes any body, with or without a Content-Type,
				// and validates it with its own schema.
				wildcard, acceptsAny := rb.Content[anyMediaType]
				ct := c.Get(fiber.HeaderContentType)
				if ct == "" && !acceptsAny {
					return rejectRequest(c, fiber.StatusUnsupportedMediaType, "Content-Type header is required")
				}
				baseCT, _, err := mime.ParseMediaType(ct)
				if err != nil {
					baseCT = strings.TrimSpace(strings.Split(ct, ";")[0])
				}
				mediaType, ok := rb.Content[baseCT]
				if !ok && acceptsAny {
					baseCT, mediaType, ok = anyMediaType, wildcard, true
				}
				if !ok {
					return rejectRequest(c, fiber.StatusUnsupportedMediaType,
						fmt.Sprintf("Unsupported media type: %s. Allowed: %s", baseCT, strings.Join(sortedKeys(rb.Content), ", ")))
				}
				if !isFormMedia(baseCT) && mediaType != nil && mediaType.Schema != nil && mediaType.Schema.Value != nil {
					if violations := validateBody(body, mediaType.Schema.Value); len(violations) > 0 {
						return rejectRequest(c, fiber.StatusBadRequest, violations...)
					}
				}
			}
		}

		for _, paramRef := range op.Parameters {
			if paramRef.Value == nil || !paramRef.Value.Required {
				continue
			}
			p := paramRef.Value
			var present bool
			switch p.In {
			case openapi3.ParameterInQuery:
				present = c.Context().QueryArgs().Has(p.Name)
			case openapi3.ParameterInPath:
				present = c.Params(p.Name) != ""
			case openapi3.ParameterInHeader:
				present = c.Get(p.Name) != ""
			case openapi3.ParameterInCookie:
				present = c.Cookies(p.Name) != ""
			}
			if !present {
				return rejectRequest(c, fiber.StatusBadRequest,
					fmt.Sprintf("Required %s parameter \"%s\" is missing", p.In, p.Name))
			}
		}

		requestLogger(c).Success(ComponentValidator, "Request passed all validation rules")
		return c.Next()
	}
}

// validateBody checks a JSON body against the schema's required fields and
// property types, collecting every violation rather than stopping at the first.
func validateBody(raw []byte, schema *openapi3.Schema) []string {
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return []string{fmt.Sprintf("Invalid JSON body: %s", err.Error())}
	}
	if body == nil {
		return []string{"Invalid JSON body: expected an object"}
	}

	var violations []string
	for _, field := range schema.Required {
		if _, ok := body[field]; !ok {
			violations = append(violations,
				fmt.Sprintf("request.body Request body must have required property '%s'", field))
		}
	}
	for _, name := range sortedKeys(schema.Properties) {
		ref := schema.Properties[name]
		val, exists := body[name]
		if !exists || ref == nil || ref.Value == nil {
			continue
		}
		if err := checkType(name, val, ref.Value); err != nil {
			violations = append(violations, "request.body "+err.Error())
		}
	}
	return violations
}

// checkType validates a single value against a property schema.
func checkType(name string, val any, prop *openapi3.Schema) error {
	if val == nil {
		if !prop.Nullable {
			return fmt.Errorf("Property \"%s\" must not be null", name)
		}
		return nil
	}

	switch prop.Type {
	case openapi3.TypeString:
		s, ok := val.(string)
		if !ok {
			return fmt.Errorf("Property \"%s\" must be a string", name)
		}
		if prop.MinLength > 0 && uint64(len(s)) < prop.MinLength {
			return fmt.Errorf("Property \"%s\" must be at least %d characters", name, prop.MinLength)
		}
		if prop.MaxLength != nil && uint64(len(s)) > *prop.MaxLength {
			return fmt.Errorf("Property \"%s\" must be at most %d characters", name, *prop.MaxLength)
		}
	case openapi3.TypeInteger, openapi3.TypeNumber:
		if _, ok := val.(float64); !ok {
			return fmt.Errorf("Property \"%s\" must be a number", name)
		}
	case openapi3.TypeBoolean:
		if _, ok := val.(bool); !ok {
			return fmt.Errorf("Property \"%s\" must be a boolean", name)
		}
	case openapi3.TypeArray:
		if _, ok := val.([]any); !ok {
			return fmt.Errorf("Property \"%s\" must be an array", name)
		}
	}
	return nil
}

// needsRequestBody returns true for methods that can carry a body.
func needsRequestBody(method string) bool {
	switch method {
	case fiber.MethodPost, fiber.MethodPut, fiber.MethodPatch:
		return true
	}
	return false
}

// isFormMedia reports whether the body is form-encoded; form fields are
// checked by the handlers themselves.
func isFormMedia(mediaType string) bool {
	return mediaType == fiber.MIMEApplicationForm || mediaType == fiber.MIMEMultipartForm
}
