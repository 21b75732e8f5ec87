package database

import _ "embed"

// Schema is the flattened result of all migrations, used to set up test
// databases without running the migrator.
//
// To regenerate schema.sql:
//
//	go generate ./internal/database
//
//go:embed schema.sql
var Schema string

//go:generate sh -c "cd ../.. && go run internal/database/tools/generate_schema.go"
