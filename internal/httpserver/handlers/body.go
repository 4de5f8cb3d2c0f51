package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/xeipuuv/gojsonschema"

	"github.com/MrSnakeDoc/jobboard/internal/domain"
)

// maxJSONBody caps admin request bodies.
const maxJSONBody = 64 << 10

var (
	jobInputSchema = gojsonschema.NewStringLoader(`{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "required": ["title", "company", "location", "postedDate"],
  "properties": {
    "title":      {"type": "string", "minLength": 1, "maxLength": 200},
    "company":    {"type": "string", "minLength": 1, "maxLength": 200},
    "location":   {"type": "string", "minLength": 1, "maxLength": 200},
    "postedDate": {"type": "string", "pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2}$"},
    "deadline":   {"type": "string", "pattern": "^([0-9]{4}-[0-9]{2}-[0-9]{2})?$"},
    "applyUrl":   {"type": "string", "maxLength": 2048},
    "logo":       {"type": "string", "maxLength": 2048}
  }
}`)

	faviconRequestSchema = gojsonschema.NewStringLoader(`{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "applyUrl": {"type": "string", "maxLength": 2048}
  }
}`)
)

// readAndValidateBody reads a JSON body, checks it against schema and
// decodes it into obj. Failures are *domain.ErrValidation.
func readAndValidateBody(r *http.Request, schema gojsonschema.JSONLoader, obj any) error {
	defer func() { _ = r.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(r.Body, maxJSONBody+1))
	if err != nil {
		return domain.NewErrValidation("Could not read request body.")
	}
	if len(bodyBytes) > maxJSONBody {
		return domain.NewErrValidation("Request body is too large.")
	}

	result, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(bodyBytes))
	if err != nil {
		// The schemas are static, so this is almost always malformed JSON.
		return domain.NewErrValidation("Could not validate request body.")
	}
	if !result.Valid() {
		details := make([]string, len(result.Errors()))
		for i, verr := range result.Errors() {
			details[i] = verr.String()
		}
		return domain.NewErrValidation("Request body failed JSON validation", details...)
	}

	if err := json.Unmarshal(bodyBytes, obj); err != nil {
		return fmt.Errorf("error unmarshaling validated request body: %w", err)
	}
	return nil
}
