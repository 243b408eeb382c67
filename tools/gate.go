package tools

// mutatingTools names every tool that writes to AWS. The read-only gate
// checks this set before arguments are even parsed, so a blocked invocation
// produces zero network traffic.
var mutatingTools = map[string]bool{
	"create_datastore":      true,
	"delete_datastore":      true,
	"start_fhir_import_job": true,
	"start_fhir_export_job": true,
	"tag_resource":          true,
	"untag_resource":        true,
	"create_fhir_resource":  true,
	"update_fhir_resource":  true,
	"patch_fhir_resource":   true,
	"delete_fhir_resource":  true,
	"process_fhir_bundle":   true,
}

func isMutating(tool string) bool { return mutatingTools[tool] }
