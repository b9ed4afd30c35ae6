/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package prometheus

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsPath is the scrape path of the metrics server.
const MetricsPath = "/metrics"

const readHeaderTimeout = 5 * time.Second

// NewServer returns an HTTP server that exposes the default registry on addr under MetricsPath.
// The server is started by the provider's Create.
func NewServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(MetricsPath, Handler(prometheus.DefaultGatherer))

	return &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: readHeaderTimeout}
}

// Handler serves the gathered metrics, in OpenMetrics format when the scraper asks for it.
// Collection errors are logged and the remaining metrics are still served.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
		ErrorLog:          promLogger{},
	})
}

type promLogger struct{}

func (promLogger) Println(v ...interface{}) {
	logger.Warn(fmt.Sprint(v...))
}
