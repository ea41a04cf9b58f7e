// Package statusserver exposes pipeline status and Prometheus metrics over HTTP.
package statusserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"serial-plotter/internal/pipeline"
)

// StatusSource is the read side of the pipeline controller.
type StatusSource interface {
	Status() pipeline.Status
	SampleCount() int
}

type statusResponse struct {
	State    string `json:"state"`
	Liveness string `json:"liveness"`
	Target   string `json:"target,omitempty"`
	Message  string `json:"message,omitempty"`
	Samples  int    `json:"samples"`
}

// New builds the HTTP engine serving /status and /metrics.
func New(src StatusSource, gatherer prometheus.Gatherer) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/status", func(c *gin.Context) {
		st := src.Status()
		c.JSON(http.StatusOK, statusResponse{
			State:    st.State.String(),
			Liveness: st.Liveness.String(),
			Target:   st.Target,
			Message:  st.Message,
			Samples:  src.SampleCount(),
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	return r
}

// Run serves engine on address until it fails.
func Run(engine *gin.Engine, address string) error {
	if err := engine.Run(address); err != nil {
		return errors.Wrap(err, "run status server")
	}
	return nil
}
