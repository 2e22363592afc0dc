// Package schemas holds the JSON Schemas for the public API.
package schemas

import _ "embed"

// ImportRequest is the schema for POST /datasets/import bodies.
//
//go:embed import_request.schema.json
var ImportRequest string
