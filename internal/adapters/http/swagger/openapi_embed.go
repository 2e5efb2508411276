package swagger

import _ "embed"

// OpenAPI is the embedded API document in YAML.
//
//go:embed openapi.yaml
var OpenAPI []byte
