package openapi

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/go-openapi/loads"
	"github.com/go-openapi/spec"
)

// Endpoint represents one method on one path of an API document.
type Endpoint struct {
	Path        string   `json:"path"`
	Method      string   `json:"method"`
	Summary     string   `json:"summary,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	BaseURL     string   `json:"baseUrl,omitempty"`
	FullURL     string   `json:"fullUrl,omitempty"`
}

// DiscoveredEndpoints contains all endpoints of a document and its metadata.
type DiscoveredEndpoints struct {
	Endpoints []Endpoint `json:"endpoints"`
	BaseURLs  []string   `json:"baseUrls"`
	Info      struct {
		Title       string `json:"title,omitempty"`
		Version     string `json:"version,omitempty"`
		Description string `json:"description,omitempty"`
	} `json:"info"`
	Source string `json:"source"`
}

// ParseSpecFile loads a Swagger 2.0 file and extracts its endpoints.
func ParseSpecFile(specPath string) (*DiscoveredEndpoints, error) {
	doc, err := loads.Spec(specPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI spec from %s: %w", specPath, err)
	}
	return Endpoints(doc.Spec(), specPath), nil
}

// ParseDocument analyzes an in-memory Swagger 2.0 document.
func ParseDocument(data []byte, source string) (*DiscoveredEndpoints, error) {
	doc, err := loads.Analyzed(json.RawMessage(data), "")
	if err != nil {
		return nil, fmt.Errorf("failed to analyze OpenAPI document %s: %w", source, err)
	}
	return Endpoints(doc.Spec(), source), nil
}

// Endpoints lists every operation of sw, sorted by path then method.
func Endpoints(sw *spec.Swagger, source string) *DiscoveredEndpoints {
	result := &DiscoveredEndpoints{
		Endpoints: []Endpoint{},
		BaseURLs:  extractBaseURLs(sw),
		Source:    source,
	}
	if sw.Info != nil {
		result.Info.Title = sw.Info.Title
		result.Info.Version = sw.Info.Version
		result.Info.Description = sw.Info.Description
	}

	if sw.Paths != nil {
		for path, pathItem := range sw.Paths.Paths {
			result.Endpoints = append(result.Endpoints, extractEndpointsFromPath(path, pathItem, result.BaseURLs)...)
		}
	}

	sort.Slice(result.Endpoints, func(i, j int) bool {
		if result.Endpoints[i].Path == result.Endpoints[j].Path {
			return result.Endpoints[i].Method < result.Endpoints[j].Method
		}
		return result.Endpoints[i].Path < result.Endpoints[j].Path
	})
	return result
}

// extractBaseURLs builds scheme://host/basePath for every scheme.
func extractBaseURLs(sw *spec.Swagger) []string {
	var baseURLs []string

	host := sw.Host
	if host == "" {
		host = "localhost"
	}
	schemes := []string{"http"}
	if len(sw.Schemes) > 0 {
		schemes = sw.Schemes
	}
	for _, scheme := range schemes {
		baseURLs = append(baseURLs, strings.TrimSuffix(fmt.Sprintf("%s://%s%s", scheme, host, sw.BasePath), "/"))
	}
	return baseURLs
}

func extractEndpointsFromPath(path string, pathItem spec.PathItem, baseURLs []string) []Endpoint {
	var endpoints []Endpoint

	operations := map[string]*spec.Operation{
		"GET":     pathItem.Get,
		"POST":    pathItem.Post,
		"PUT":     pathItem.Put,
		"DELETE":  pathItem.Delete,
		"PATCH":   pathItem.Patch,
		"HEAD":    pathItem.Head,
		"OPTIONS": pathItem.Options,
	}

	for method, operation := range operations {
		if operation == nil {
			continue
		}
		endpoint := Endpoint{
			Path:        path,
			Method:      method,
			Summary:     operation.Summary,
			Description: operation.Description,
			Tags:        operation.Tags,
		}
		if len(baseURLs) > 0 {
			endpoint.BaseURL = baseURLs[0]
			// The base URL already carries basePath; a reference resolve would drop it.
			endpoint.FullURL = baseURLs[0] + path
		}
		endpoints = append(endpoints, endpoint)
	}
	return endpoints
}
