package fhirmodel

import (
	"fmt"
	"sort"
)

// requiredFields lists the fields a resource must carry to be structurally
// valid for a create against a HealthLake datastore. This is cardinality-level
// checking only; terminology and profile validation stay server-side.
var requiredFields = map[string][]string{
	"Patient":            {},
	"Practitioner":       {},
	"Organization":       {},
	"Encounter":          {"status", "class"},
	"Observation":        {"status", "code"},
	"Condition":          {"subject"},
	"AllergyIntolerance": {"patient"},
	"Procedure":          {"status", "subject"},
	"MedicationRequest":  {"status", "intent", "subject"},
	"Immunization":       {"status", "vaccineCode", "patient", "occurrenceDateTime"},
	"DiagnosticReport":   {"status", "code"},
	"DocumentReference":  {"status", "content"},
}

// templates returns skeleton resources whose output is accepted unchanged by
// create_fhir_resource. Each skeleton satisfies its own required-field list.
var templates = map[string]func() map[string]any{
	"Patient": func() map[string]any {
		return map[string]any{
			"resourceType": "Patient",
			"name": []any{map[string]any{
				"family": "",
				"given":  []any{""},
			}},
			"gender":    "unknown",
			"birthDate": "",
		}
	},
	"Practitioner": func() map[string]any {
		return map[string]any{
			"resourceType": "Practitioner",
			"name": []any{map[string]any{
				"family": "",
				"given":  []any{""},
			}},
			"identifier": []any{map[string]any{"system": "", "value": ""}},
		}
	},
	"Organization": func() map[string]any {
		return map[string]any{
			"resourceType": "Organization",
			"name":         "",
			"active":       true,
		}
	},
	"Encounter": func() map[string]any {
		return map[string]any{
			"resourceType": "Encounter",
			"status":       "planned",
			"class": map[string]any{
				"system": "http://terminology.hl7.org/CodeSystem/v3-ActCode",
				"code":   "AMB",
			},
			"subject": map[string]any{"reference": "Patient/"},
		}
	},
	"Observation": func() map[string]any {
		return map[string]any{
			"resourceType": "Observation",
			"status":       "final",
			"code": map[string]any{
				"coding": []any{map[string]any{"system": "http://loinc.org", "code": "", "display": ""}},
			},
			"subject":           map[string]any{"reference": "Patient/"},
			"effectiveDateTime": "",
			"valueQuantity":     map[string]any{"value": 0, "unit": "", "system": "http://unitsofmeasure.org"},
		}
	},
	"Condition": func() map[string]any {
		return map[string]any{
			"resourceType": "Condition",
			"clinicalStatus": map[string]any{
				"coding": []any{map[string]any{
					"system": "http://terminology.hl7.org/CodeSystem/condition-clinical",
					"code":   "active",
				}},
			},
			"code": map[string]any{
				"coding": []any{map[string]any{"system": "http://snomed.info/sct", "code": "", "display": ""}},
			},
			"subject": map[string]any{"reference": "Patient/"},
		}
	},
	"AllergyIntolerance": func() map[string]any {
		return map[string]any{
			"resourceType": "AllergyIntolerance",
			"clinicalStatus": map[string]any{
				"coding": []any{map[string]any{
					"system": "http://terminology.hl7.org/CodeSystem/allergyintolerance-clinical",
					"code":   "active",
				}},
			},
			"code": map[string]any{
				"coding": []any{map[string]any{"system": "http://snomed.info/sct", "code": "", "display": ""}},
			},
			"patient": map[string]any{"reference": "Patient/"},
		}
	},
	"Procedure": func() map[string]any {
		return map[string]any{
			"resourceType": "Procedure",
			"status":       "completed",
			"code": map[string]any{
				"coding": []any{map[string]any{"system": "http://snomed.info/sct", "code": "", "display": ""}},
			},
			"subject":           map[string]any{"reference": "Patient/"},
			"performedDateTime": "",
		}
	},
	"MedicationRequest": func() map[string]any {
		return map[string]any{
			"resourceType": "MedicationRequest",
			"status":       "active",
			"intent":       "order",
			"medicationCodeableConcept": map[string]any{
				"coding": []any{map[string]any{
					"system": "http://www.nlm.nih.gov/research/umls/rxnorm",
					"code":   "",
				}},
			},
			"subject": map[string]any{"reference": "Patient/"},
		}
	},
	"Immunization": func() map[string]any {
		return map[string]any{
			"resourceType": "Immunization",
			"status":       "completed",
			"vaccineCode": map[string]any{
				"coding": []any{map[string]any{"system": "http://hl7.org/fhir/sid/cvx", "code": ""}},
			},
			"patient":            map[string]any{"reference": "Patient/"},
			"occurrenceDateTime": "",
		}
	},
	"DiagnosticReport": func() map[string]any {
		return map[string]any{
			"resourceType": "DiagnosticReport",
			"status":       "final",
			"code": map[string]any{
				"coding": []any{map[string]any{"system": "http://loinc.org", "code": "", "display": ""}},
			},
			"subject": map[string]any{"reference": "Patient/"},
		}
	},
	"DocumentReference": func() map[string]any {
		return map[string]any{
			"resourceType": "DocumentReference",
			"status":       "current",
			"content": []any{map[string]any{
				"attachment": map[string]any{"contentType": "text/plain", "data": ""},
			}},
			"subject": map[string]any{"reference": "Patient/"},
		}
	},
}

// SupportedResourceTypes lists resource types with templates, sorted.
func SupportedResourceTypes() []string {
	out := make([]string, 0, len(templates))
	for rt := range templates {
		out = append(out, rt)
	}
	sort.Strings(out)
	return out
}

// Template returns a fresh skeleton for the given resource type.
func Template(resourceType string) (map[string]any, error) {
	build, ok := templates[resourceType]
	if !ok {
		return nil, fmt.Errorf("no template for resource type %q; supported: %v",
			resourceType, SupportedResourceTypes())
	}
	return build(), nil
}

// Validate performs local structural validation of a resource against its
// declared type. Returned issues are empty when the resource is acceptable.
func Validate(resourceType string, resource map[string]any) []OperationOutcomeIssue {
	var issues []OperationOutcomeIssue

	if resource == nil {
		return []OperationOutcomeIssue{{
			Severity:    IssueSeverityError,
			Code:        IssueTypeStructure,
			Diagnostics: "resource body is empty",
		}}
	}

	declared, _ := resource["resourceType"].(string)
	if declared == "" {
		issues = append(issues, OperationOutcomeIssue{
			Severity:    IssueSeverityError,
			Code:        IssueTypeRequired,
			Diagnostics: "resourceType field is missing",
			Expression:  []string{"resourceType"},
		})
	} else if declared != resourceType {
		issues = append(issues, OperationOutcomeIssue{
			Severity:    IssueSeverityError,
			Code:        IssueTypeInvalid,
			Diagnostics: fmt.Sprintf("resourceType %q does not match requested type %q", declared, resourceType),
			Expression:  []string{"resourceType"},
		})
	}

	required, known := requiredFields[resourceType]
	if !known {
		// Unknown types pass through; the datastore is the authority.
		return issues
	}
	for _, field := range required {
		if v, ok := resource[field]; !ok || v == nil {
			issues = append(issues, OperationOutcomeIssue{
				Severity:    IssueSeverityError,
				Code:        IssueTypeRequired,
				Diagnostics: fmt.Sprintf("%s.%s is required", resourceType, field),
				Expression:  []string{resourceType + "." + field},
			})
		}
	}
	return issues
}
