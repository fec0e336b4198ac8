// Package integrity checks the storage and database a catalog deployment
// depends on.
//
// # Checks Provided
//
//   - Structure: the input and output prefixes exist in the storage bucket.
//   - Documents: every object under the input prefix decodes as a JSON DAT.
//   - Schema: the export tables carry every column of the export models.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/structure : Runs structure check (supports ?fix=true).
//   - GET /integrity/documents : Runs document check.
//   - GET /integrity/schema : Runs export schema check.
package integrity
