// Package fhirclient issues SigV4-signed REST calls against a HealthLake
// datastore's FHIR endpoint. Every call resolves the endpoint through the
// management plane; nothing is cached between invocations.
package fhirclient

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"go.uber.org/zap"

	"github.com/lakefhir/healthlake-mcp-server/toolerr"
)

const (
	fhirJSON      = "application/fhir+json"
	jsonPatch     = "application/json-patch+json"
	formEncoded   = "application/x-www-form-urlencoded"
	signingName   = "healthlake"
	// SHA-256 of the empty string, used as the payload hash for body-less requests.
	emptyPayloadHash = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
)

// EndpointResolver resolves a datastore ID to its FHIR endpoint URL.
// The management-plane client implements it.
type EndpointResolver interface {
	DatastoreEndpoint(ctx context.Context, datastoreID string) (string, error)
}

// Client is the FHIR data-plane client.
type Client struct {
	http     *http.Client
	resolver EndpointResolver
	creds    aws.CredentialsProvider
	signer   *v4.Signer
	region   string
	logger   *zap.Logger
}

// New builds a data-plane client. The timeout bounds each HTTP request; no
// retries are performed here.
func New(resolver EndpointResolver, creds aws.CredentialsProvider, region string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		http:     &http.Client{Timeout: timeout},
		resolver: resolver,
		creds:    creds,
		signer:   v4.NewSigner(),
		region:   region,
		logger:   logger,
	}
}

// ReadRequest identifies a resource to fetch, optionally at a version.
type ReadRequest struct {
	DatastoreID  string
	ResourceType string
	ResourceID   string
	VersionID    string
}

// Read fetches a resource. With VersionID set it reads the versioned history
// entry; otherwise the current version.
func (c *Client) Read(ctx context.Context, r ReadRequest) (map[string]any, error) {
	path := r.ResourceType + "/" + r.ResourceID
	if r.VersionID != "" {
		path += "/_history/" + r.VersionID
	}
	return c.do(ctx, "read_fhir_resource", r.DatastoreID, http.MethodGet, path, nil, nil, nil, "")
}

// CreateRequest creates a resource, optionally guarded by If-None-Exist.
type CreateRequest struct {
	DatastoreID  string
	ResourceType string
	Resource     map[string]any
	IfNoneExist  string
}

// Create POSTs a new resource to the type endpoint.
func (c *Client) Create(ctx context.Context, r CreateRequest) (map[string]any, error) {
	body, err := json.Marshal(r.Resource)
	if err != nil {
		return nil, toolerr.Validationf("resource_data is not serializable: %v", err)
	}
	headers := conditionalHeaders("If-None-Exist", r.IfNoneExist)
	return c.do(ctx, "create_fhir_resource", r.DatastoreID, http.MethodPost, r.ResourceType, nil, headers, body, fhirJSON)
}

// UpdateRequest replaces a resource, optionally guarded by If-Match.
type UpdateRequest struct {
	DatastoreID  string
	ResourceType string
	ResourceID   string
	Resource     map[string]any
	IfMatch      string
}

// Update PUTs a full resource to the instance endpoint. The resource body's
// id must match the path; it is filled in when absent.
func (c *Client) Update(ctx context.Context, r UpdateRequest) (map[string]any, error) {
	if _, ok := r.Resource["id"]; !ok {
		r.Resource["id"] = r.ResourceID
	}
	body, err := json.Marshal(r.Resource)
	if err != nil {
		return nil, toolerr.Validationf("resource_data is not serializable: %v", err)
	}
	headers := conditionalHeaders("If-Match", r.IfMatch)
	path := r.ResourceType + "/" + r.ResourceID
	return c.do(ctx, "update_fhir_resource", r.DatastoreID, http.MethodPut, path, nil, headers, body, fhirJSON)
}

// PatchRequest applies a JSON Patch to a resource.
type PatchRequest struct {
	DatastoreID  string
	ResourceType string
	ResourceID   string
	Operations   []map[string]any
	IfMatch      string
}

// Patch sends an RFC 6902 JSON Patch to the instance endpoint.
func (c *Client) Patch(ctx context.Context, r PatchRequest) (map[string]any, error) {
	body, err := json.Marshal(r.Operations)
	if err != nil {
		return nil, toolerr.Validationf("patch_operations is not serializable: %v", err)
	}
	headers := conditionalHeaders("If-Match", r.IfMatch)
	path := r.ResourceType + "/" + r.ResourceID
	return c.do(ctx, "patch_fhir_resource", r.DatastoreID, http.MethodPatch, path, nil, headers, body, jsonPatch)
}

// DeleteRequest deletes a resource, optionally guarded by If-Match.
type DeleteRequest struct {
	DatastoreID  string
	ResourceType string
	ResourceID   string
	IfMatch      string
}

// Delete removes a resource instance.
func (c *Client) Delete(ctx context.Context, r DeleteRequest) (map[string]any, error) {
	headers := conditionalHeaders("If-Match", r.IfMatch)
	path := r.ResourceType + "/" + r.ResourceID
	return c.do(ctx, "delete_fhir_resource", r.DatastoreID, http.MethodDelete, path, nil, headers, nil, "")
}

// SearchRequest searches one resource type. Params carry FHIR search
// parameters verbatim, including modifiers like _include and _sort.
type SearchRequest struct {
	DatastoreID  string
	ResourceType string
	Params       map[string]string
	UsePOST      bool
}

// Search queries the type endpoint, by GET with query parameters or by POST
// to {type}/_search with a form body.
func (c *Client) Search(ctx context.Context, r SearchRequest) (map[string]any, error) {
	values := url.Values{}
	for k, v := range r.Params {
		values.Set(k, v)
	}
	if r.UsePOST {
		body := []byte(values.Encode())
		return c.do(ctx, "search_fhir_resources", r.DatastoreID, http.MethodPost, r.ResourceType+"/_search", nil, nil, body, formEncoded)
	}
	return c.do(ctx, "search_fhir_resources", r.DatastoreID, http.MethodGet, r.ResourceType, values, nil, nil, "")
}

// CompartmentSearchRequest searches the Patient compartment: every resource
// referencing the given patient, optionally narrowed to one type.
type CompartmentSearchRequest struct {
	DatastoreID  string
	PatientID    string
	ResourceType string
	Params       map[string]string
}

// SearchCompartment queries Patient/{id}/{type} (or Patient/{id}/* when no
// type is given).
func (c *Client) SearchCompartment(ctx context.Context, r CompartmentSearchRequest) (map[string]any, error) {
	path := "Patient/" + r.PatientID + "/"
	if r.ResourceType != "" {
		path += r.ResourceType
	} else {
		path += "*"
	}
	values := url.Values{}
	for k, v := range r.Params {
		values.Set(k, v)
	}
	return c.do(ctx, "search_patient_compartment", r.DatastoreID, http.MethodGet, path, values, nil, nil, "")
}

// BundleRequest submits a transaction or batch bundle.
type BundleRequest struct {
	DatastoreID string
	Bundle      map[string]any
}

// ProcessBundle POSTs a Bundle to the datastore base endpoint.
func (c *Client) ProcessBundle(ctx context.Context, r BundleRequest) (map[string]any, error) {
	body, err := json.Marshal(r.Bundle)
	if err != nil {
		return nil, toolerr.Validationf("bundle is not serializable: %v", err)
	}
	return c.do(ctx, "process_fhir_bundle", r.DatastoreID, http.MethodPost, "", nil, nil, body, fhirJSON)
}

// conditionalHeaders returns the single conditional header when the value is
// set; absence of the parameter omits the header entirely.
func conditionalHeaders(name, value string) map[string]string {
	if value == "" {
		return nil
	}
	return map[string]string{name: value}
}

// do signs and issues one request against the datastore endpoint and decodes
// the response or normalizes the error.
func (c *Client) do(ctx context.Context, operation, datastoreID, method, relPath string, query url.Values, headers map[string]string, body []byte, contentType string) (map[string]any, error) {
	endpoint, err := c.resolver.DatastoreEndpoint(ctx, datastoreID)
	if err != nil {
		return nil, err
	}

	rawURL := strings.TrimSuffix(endpoint, "/")
	if relPath != "" {
		rawURL += "/" + relPath
	}
	if len(query) > 0 {
		rawURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, toolerr.New(toolerr.KindService, fmt.Sprintf("build request: %v", err))
	}
	req.Header.Set("Accept", fhirJSON)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	if err := c.sign(ctx, req, body); err != nil {
		return nil, toolerr.New(toolerr.KindService, fmt.Sprintf("sign request: %v", err))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &toolerr.Error{
			Kind:      toolerr.KindService,
			Message:   err.Error(),
			Operation: operation,
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, toolerr.New(toolerr.KindService, fmt.Sprintf("read response: %v", err))
	}

	c.logger.Debug("fhir request",
		zap.String("method", method),
		zap.String("path", relPath),
		zap.Int("status", resp.StatusCode))

	if resp.StatusCode >= 400 {
		return nil, normalizeHTTPError(operation, resp.StatusCode, respBody)
	}

	if len(respBody) == 0 {
		return map[string]any{"status": "success", "statusCode": resp.StatusCode}, nil
	}

	var result map[string]any
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, toolerr.New(toolerr.KindService,
			fmt.Sprintf("response is not valid JSON: %v", err))
	}
	return result, nil
}

// sign applies AWS SigV4 to the request using the resolved credential chain.
func (c *Client) sign(ctx context.Context, req *http.Request, body []byte) error {
	creds, err := c.creds.Retrieve(ctx)
	if err != nil {
		return fmt.Errorf("retrieve credentials: %w", err)
	}
	payloadHash := emptyPayloadHash
	if len(body) > 0 {
		sum := sha256.Sum256(body)
		payloadHash = hex.EncodeToString(sum[:])
	}
	return c.signer.SignHTTP(ctx, creds, req, payloadHash, signingName, c.region, time.Now())
}
