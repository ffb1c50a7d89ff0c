package logging

// Field names shared by the CLI and the handlers.
const (
	FieldStack        = "stack"
	FieldConstruct    = "construct"
	FieldLogicalID    = "logical_id"
	FieldResourceType = "resource_type"
	FieldRequestType  = "request_type"
	FieldRequestID    = "request_id"
	FieldPhysicalID   = "physical_id"
	FieldDuration     = "duration_ms"
	FieldPath         = "path"
)
