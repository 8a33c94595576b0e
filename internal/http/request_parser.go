// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for turning query strings and request
// bodies into report requests and export options.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"financas/internal/document"
	"financas/internal/services"
)

const maxBodyBytes = 64 << 10

var (
	errBodyTooLarge  = errors.New("request body too large")
	errMalformedBody = errors.New("malformed request body")
)

// Selection parameter names, shared by query strings and export bodies.
const (
	paramPeriod     = "period"
	paramStartDate  = "startDate"
	paramEndDate    = "endDate"
	paramKind       = "kind"
	paramCategoryID = "categoryId"
	paramSearch     = "search"

	paramIncludeCharts  = "includeCharts"
	paramIncludeSummary = "includeSummary"
	paramIncludeDetails = "includeDetails"
	paramKindFilter     = "kindFilter"
)

// valueGetter is satisfied by url.Values and RequestBodyParser.
type valueGetter interface {
	Get(key string) string
}

type sanitizedValues url.Values

func (v sanitizedValues) Get(key string) string {
	return sanitizeInput(url.Values(v).Get(key))
}

// ParseReportQuery builds a report request from query parameters for the
// given user.
func ParseReportQuery(query url.Values, userID, userLabel string) services.ReportRequest {
	return reportRequest(sanitizedValues(query), userID, userLabel)
}

func reportRequest(v valueGetter, userID, userLabel string) services.ReportRequest {
	return services.ReportRequest{
		UserID:     userID,
		UserLabel:  userLabel,
		Period:     v.Get(paramPeriod),
		StartDate:  v.Get(paramStartDate),
		EndDate:    v.Get(paramEndDate),
		Kind:       v.Get(paramKind),
		CategoryID: v.Get(paramCategoryID),
		Search:     v.Get(paramSearch),
	}
}

// ParseExportOptions reads section toggles and the kind filter. Missing
// toggles default to included.
func ParseExportOptions(v valueGetter) (document.Options, error) {
	opts := document.DefaultOptions()
	var err error
	if opts.IncludeCharts, err = boolParam(v, paramIncludeCharts, true); err != nil {
		return opts, err
	}
	if opts.IncludeSummary, err = boolParam(v, paramIncludeSummary, true); err != nil {
		return opts, err
	}
	if opts.IncludeDetails, err = boolParam(v, paramIncludeDetails, true); err != nil {
		return opts, err
	}
	if opts.KindFilter, err = document.ParseKindFilter(v.Get(paramKindFilter)); err != nil {
		return opts, err
	}
	return opts, nil
}

func boolParam(v valueGetter, key string, def bool) (bool, error) {
	raw := strings.ToLower(v.Get(key))
	switch raw {
	case "":
		return def, nil
	case "on", "yes":
		return true, nil
	case "off", "no":
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %s must be a boolean", document.ErrInvalidOptions, key)
	}
	return b, nil
}

// RequestBodyParser handles JSON and form-encoded export bodies.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads the body once, up to a fixed limit.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{contentType: r.Header.Get("Content-Type")}
	if r.Body == nil {
		return p
	}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if p.err == nil && len(p.body) > maxBodyBytes {
		p.err = errBodyTooLarge
	}
	return p
}

// Parse decodes the body as a flat JSON object or as form values. An empty
// body is valid and yields no values.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true
	if p.err != nil {
		return p.err
	}

	trimmed := strings.TrimSpace(string(p.body))
	if trimmed == "" {
		p.formData = url.Values{}
		return nil
	}
	if p.IsJSON() || trimmed[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal([]byte(trimmed), &p.jsonData); err != nil {
			p.jsonData = nil
			p.err = fmt.Errorf("%w: %w", errMalformedBody, err)
		}
		return p.err
	}
	if p.formData, p.err = url.ParseQuery(trimmed); p.err != nil {
		p.err = fmt.Errorf("%w: %w", errMalformedBody, p.err)
	}
	return p.err
}

// Get returns a sanitized value from the parsed body.
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// IsJSON reports whether the request declared a JSON body.
func (p *RequestBodyParser) IsJSON() bool {
	return strings.HasPrefix(strings.ToLower(p.contentType), "application/json")
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// ParseExportRequest reads the selection and the export options from the
// request body. The query string is ignored for exports.
func ParseExportRequest(r *http.Request, userID, userLabel string) (services.ReportRequest, document.Options, error) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		return services.ReportRequest{}, document.Options{}, err
	}
	opts, err := ParseExportOptions(p)
	if err != nil {
		return services.ReportRequest{}, document.Options{}, err
	}
	req := reportRequest(p, userID, userLabel)
	req.Search = ""
	return req, opts, nil
}
