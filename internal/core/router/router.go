package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mohammed-shakir/wcs-describe/internal/core/observability"
	"github.com/mohammed-shakir/wcs-describe/internal/wcs"
)

const (
	Service             = "WCS"
	OperationDescribe   = "DescribeCoverage"
	DefaultVersion      = "2.0.1"
	route               = "/wcs"
	maxCoveragesPerCall = 100
)

var supportedVersions = map[string]bool{"2.0.1": true, "2.0.0": true}

// receives validated DescribeCoverage requests and serves them
type DescribeHandler interface {
	HandleDescribe(ctx context.Context, w http.ResponseWriter, r *http.Request, ids []string)
}

// CoverageIndex answers whether an encoded coverage id is published.
type CoverageIndex interface {
	Exists(ctx context.Context, id string) bool
}

type DescribeRequest struct {
	Version     string
	CoverageIDs []string
}

// validates KVP params, checks the ids exist and calls the handler
func HandleWCS(logger *slog.Logger, idx CoverageIndex, h DescribeHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		defer func() {
			observability.ObserveHTTP(r.Method, route, sw.code, time.Since(start).Seconds())
		}()

		req, warn, err := ParseDescribeRequest(r)
		if warn != "" {
			logger.WarnContext(r.Context(), warn)
		}
		if err != nil {
			wcs.ServeException(sw, err)
			return
		}

		if idx != nil {
			var missing []string
			for _, id := range req.CoverageIDs {
				if !idx.Exists(r.Context(), id) {
					missing = append(missing, id)
				}
			}
			if len(missing) > 0 {
				wcs.ServeException(sw, wcs.NewServiceError(wcs.CodeNoSuchCoverage, strings.Join(missing, " "),
					fmt.Errorf("could not find the requested coverage(s): %s", strings.Join(missing, ", "))))
				return
			}
		}

		h.HandleDescribe(r.Context(), sw, r, req.CoverageIDs)
	}
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// ParseDescribeRequest reads a KVP DescribeCoverage request. Parameter names
// are matched case-insensitively. Errors are *wcs.ServiceError.
func ParseDescribeRequest(r *http.Request) (DescribeRequest, string, error) {
	var warn string
	params := make(map[string]string)
	for k, vs := range r.URL.Query() {
		if len(vs) == 0 {
			continue
		}
		params[strings.ToLower(k)] = strings.TrimSpace(vs[0])
	}

	service := params["service"]
	switch {
	case service == "":
		return DescribeRequest{}, "", missing("service")
	case !strings.EqualFold(service, Service):
		return DescribeRequest{}, "", invalid("service", fmt.Errorf("unsupported service %q", service))
	}

	op := params["request"]
	switch {
	case op == "":
		return DescribeRequest{}, "", missing("request")
	case !strings.EqualFold(op, OperationDescribe):
		return DescribeRequest{}, "", wcs.NewServiceError(wcs.CodeOperationNotSupported, "request",
			fmt.Errorf("operation %q is not supported", op))
	}

	version := params["version"]
	switch {
	case version == "":
		return DescribeRequest{}, "", missing("version")
	case !supportedVersions[version]:
		return DescribeRequest{}, "", invalid("version", fmt.Errorf("unsupported version %q", version))
	}

	raw := params["coverageid"]
	if raw == "" {
		return DescribeRequest{}, "", missing("coverageId")
	}
	ids, dup := splitIDs(raw)
	if len(ids) == 0 {
		return DescribeRequest{}, "", missing("coverageId")
	}
	if len(ids) > maxCoveragesPerCall {
		return DescribeRequest{}, "", invalid("coverageId",
			fmt.Errorf("at most %d coverages may be described per request", maxCoveragesPerCall))
	}
	if dup {
		warn = "duplicate coverageId values dropped"
	}

	return DescribeRequest{Version: version, CoverageIDs: ids}, warn, nil
}

// splits a comma separated id list keeping first occurrences in order
func splitIDs(raw string) ([]string, bool) {
	var ids []string
	dup := false
	seen := map[string]bool{}
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if seen[p] {
			dup = true
			continue
		}
		seen[p] = true
		ids = append(ids, p)
	}
	return ids, dup
}

func missing(param string) error {
	return wcs.NewServiceError(wcs.CodeMissingParameterValue, param,
		errors.New("missing required parameter: "+param))
}

func invalid(param string, err error) error {
	return wcs.NewServiceError(wcs.CodeInvalidParameterValue, param, err)
}
