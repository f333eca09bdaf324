package codeanalysis

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"toyshop/openapi"
)

// APICall is a request to the API found in front-end source code.
type APICall struct {
	URL    string `json:"url"`
	Method string `json:"method"`
	File   string `json:"file"`
	Line   int    `json:"line"`
	Type   string `json:"type"` // "fetch", "axios", ...
	Served bool   `json:"served"`
}

// Result contains the calls found under a directory.
type Result struct {
	Calls   []APICall `json:"calls"`
	Files   []string  `json:"files"`
	Skipped []string  `json:"skipped,omitempty"`
	Source  string    `json:"source"`
}

// Unserved returns the calls no route answers.
func (r *Result) Unserved() []APICall {
	var out []APICall
	for _, c := range r.Calls {
		if !c.Served {
			out = append(out, c)
		}
	}
	return out
}

var extensions = map[string]bool{
	".js":   true,
	".jsx":  true,
	".ts":   true,
	".tsx":  true,
	".vue":  true,
	".html": true,
}

var skipDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	".next":        true,
	"coverage":     true,
	"vendor":       true,
	".idea":        true,
	".vscode":      true,
}

const quoted = "['\"`]([^'\"`]+)['\"`]"

var patterns = []struct {
	name    string
	pattern *regexp.Regexp
	method  string
}{
	{"fetch-method", regexp.MustCompile(`fetch\s*\(\s*` + quoted + `.*method\s*:\s*['"]([A-Za-z]+)['"]`), ""},
	{"fetch", regexp.MustCompile(`fetch\s*\(\s*` + quoted), "GET"},
	{"axios", regexp.MustCompile(`axios\.get\s*\(\s*` + quoted), "GET"},
	{"axios", regexp.MustCompile(`axios\.post\s*\(\s*` + quoted), "POST"},
	{"axios", regexp.MustCompile(`axios\.put\s*\(\s*` + quoted), "PUT"},
	{"axios", regexp.MustCompile(`axios\.delete\s*\(\s*` + quoted), "DELETE"},
}

var placeholder = regexp.MustCompile(`\$\{[^}]*\}`)

// AnalyzeDirectory scans rootDir for API calls and marks the ones routes can serve.
func AnalyzeDirectory(rootDir string, routes []openapi.Endpoint) (*Result, error) {
	result := &Result{Calls: []APICall{}, Source: rootDir}

	err := filepath.Walk(rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != rootDir && skipDirs[info.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !extensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		calls, err := analyzeFile(path)
		if err != nil {
			result.Skipped = append(result.Skipped, path)
			return nil
		}
		if len(calls) > 0 {
			result.Files = append(result.Files, path)
			result.Calls = append(result.Calls, calls...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory %s: %w", rootDir, err)
	}

	for i := range result.Calls {
		result.Calls[i].Served = MatchRoute(result.Calls[i].Method, result.Calls[i].URL, routes)
	}
	sort.SliceStable(result.Calls, func(i, j int) bool {
		if result.Calls[i].URL == result.Calls[j].URL {
			return result.Calls[i].Method < result.Calls[j].Method
		}
		return result.Calls[i].URL < result.Calls[j].URL
	})
	return result, nil
}

func analyzeFile(filePath string) ([]APICall, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var calls []APICall
	seen := make(map[string]bool)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	lineNumber := 0

	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "/*") {
			continue
		}

		// fetch-method wins over plain fetch on the same line
		matchedFetch := false
		for _, p := range patterns {
			if p.name == "fetch" && matchedFetch {
				continue
			}
			for _, match := range p.pattern.FindAllStringSubmatch(line, -1) {
				method := p.method
				if p.name == "fetch-method" {
					method = strings.ToUpper(match[2])
					matchedFetch = true
				}
				u, ok := apiPath(match[1])
				if !ok {
					continue
				}
				key := method + " " + u
				if seen[key] {
					continue
				}
				seen[key] = true
				calls = append(calls, APICall{
					URL:    u,
					Method: method,
					File:   filePath,
					Line:   lineNumber,
					Type:   strings.TrimSuffix(p.name, "-method"),
				})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return calls, nil
}

// apiPath reduces a literal to the path it requests. Literals that do not
// look like API URLs are rejected.
func apiPath(s string) (string, bool) {
	if strings.ContainsAny(s, " \t") {
		return "", false
	}
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		rest := s[strings.Index(s, "://")+3:]
		i := strings.Index(rest, "/")
		if i < 0 {
			return "", false
		}
		s = rest[i:]
	}
	if strings.HasPrefix(s, "api/") {
		s = "/" + s
	}
	if !strings.HasPrefix(s, "/api/") && s != "/api" {
		return "", false
	}
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSuffix(s, "/"), true
}

// MatchRoute reports whether a call to path with method is answered by one
// of routes. ${...} segments in path and {param} segments in routes match
// any single segment.
func MatchRoute(method, path string, routes []openapi.Endpoint) bool {
	segs := strings.Split(strings.Trim(placeholder.ReplaceAllString(path, "*"), "/"), "/")
	for _, r := range routes {
		if !strings.EqualFold(r.Method, method) {
			continue
		}
		basePath := ""
		if u, err := url.Parse(r.BaseURL); err == nil {
			basePath = u.Path
		}
		routeSegs := strings.Split(strings.Trim(basePath+r.Path, "/"), "/")
		if segmentsMatch(segs, routeSegs) {
			return true
		}
	}
	return false
}

func segmentsMatch(call, route []string) bool {
	if len(call) != len(route) {
		return false
	}
	for i := range call {
		if call[i] == "*" || (strings.HasPrefix(route[i], "{") && strings.HasSuffix(route[i], "}")) {
			continue
		}
		if call[i] != route[i] {
			return false
		}
	}
	return true
}
