/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package healthutil

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/alexliesenfeld/health"
)

type report struct {
	Status     health.AvailabilityStatus  `json:"status"`
	Version    string                     `json:"version,omitempty"`
	Components map[string]componentReport `json:"components,omitempty"`
}

type componentReport struct {
	Status              health.AvailabilityStatus `json:"status"`
	Error               string                    `json:"error,omitempty"`
	LastResponseTimeMS  *int64                    `json:"last_response_time_ms,omitempty"`
	AverageResponseTime *int64                    `json:"avg_response_time_ms,omitempty"`
}

// JSONResultWriter reports the aggregated status, the service version and, per dependency, its
// status, last error and measured response times.
type JSONResultWriter struct {
	responseTimes *ResponseTimes
	version       string
}

// NewJSONResultWriter returns a writer reading response times from times.
func NewJSONResultWriter(times *ResponseTimes, version string) *JSONResultWriter {
	return &JSONResultWriter{
		responseTimes: times,
		version:       version,
	}
}

// Write implements health.ResultWriter.
func (rw *JSONResultWriter) Write(result *health.CheckerResult, status int, w http.ResponseWriter, _ *http.Request) error { //nolint:lll
	r := &report{Status: result.Status, Version: rw.version}

	if len(result.Details) > 0 {
		r.Components = make(map[string]componentReport, len(result.Details))

		for name, cr := range result.Details {
			r.Components[name] = rw.component(name, cr)
		}
	}

	b, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal health report: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)

	_, err = w.Write(b)

	return err
}

func (rw *JSONResultWriter) component(name string, cr health.CheckResult) componentReport {
	c := componentReport{Status: cr.Status}

	if cr.Error != nil {
		c.Error = cr.Error.Error()
	}

	if t, ok := rw.responseTimes.Get(name); ok {
		last, avg := t.LastResponseTime.Milliseconds(), t.AverageResponseTime.Milliseconds()
		c.LastResponseTimeMS, c.AverageResponseTime = &last, &avg
	}

	return c
}
