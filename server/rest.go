// Copyright 2026 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/emicklei/go-restful/v3"
	"github.com/google/uuid"
	"github.com/gorse-io/filmify/base/log"
	"github.com/gorse-io/filmify/recommend"
	"github.com/juju/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/emicklei/go-restful/otelrestful"
	"go.uber.org/zap"
)

const (
	apiDocsPath     = "/apidocs.json"
	metricsPath     = "/metrics"
	requestIdHeader = "X-Request-ID"

	recommendMessage = "Recommendations generated successfully"
)

// RecommendResponse is the body of a successful recommendation.
type RecommendResponse struct {
	Message     string                 `json:"message"`
	Predictions []recommend.Prediction `json:"predictions"`
}

// RestServer implements the REST-ful API server.
type RestServer struct {
	Service    *recommend.Service
	HttpHost   string
	HttpPort   int
	WebService *restful.WebService

	container  *restful.Container
	httpServer *http.Server
}

func NewRestServer(service *recommend.Service, host string, port int) *RestServer {
	s := &RestServer{
		Service:    service,
		HttpHost:   host,
		HttpPort:   port,
		WebService: new(restful.WebService),
	}
	s.CreateWebService()
	s.container = restful.NewContainer()
	s.container.Add(s.WebService)
	// register OpenAPI spec
	s.container.Add(restfulspec.NewOpenAPIService(restfulspec.Config{
		WebServices: []*restful.WebService{s.WebService},
		APIPath:     apiDocsPath,
	}))
	// register prometheus
	s.container.Handle(metricsPath, promhttp.Handler())
	return s
}

// Handler returns the handler serving all routes.
func (s *RestServer) Handler() http.Handler {
	return s.container
}

// StartHttpServer serves until Shutdown is called.
func (s *RestServer) StartHttpServer() error {
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.HttpHost, s.HttpPort),
		Handler:           s.container,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Logger().Info("start http server",
		zap.String("url", fmt.Sprintf("http://%s:%d", s.HttpHost, s.HttpPort)))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Trace(err)
	}
	return nil
}

func (s *RestServer) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return errors.Trace(s.httpServer.Shutdown(ctx))
}

// LogFilter assigns a request id and logs every request.
func LogFilter(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
	start := time.Now()
	requestId := req.HeaderParameter(requestIdHeader)
	if requestId == "" {
		requestId = uuid.NewString()
	}
	resp.Header().Set(requestIdHeader, requestId)
	chain.ProcessFilter(req, resp)
	RequestsTotal.WithLabelValues(req.Request.URL.Path, strconv.Itoa(resp.StatusCode())).Inc()
	log.ResponseLogger(resp).Info(fmt.Sprintf("%s %s", req.Request.Method, req.Request.URL),
		zap.Int("status_code", resp.StatusCode()),
		zap.Duration("latency", time.Since(start)))
}

// CreateWebService creates web service.
func (s *RestServer) CreateWebService() {
	ws := s.WebService
	ws.Produces(restful.MIME_JSON)
	ws.Path("/")
	ws.Filter(LogFilter)
	ws.Filter(otelrestful.OTelFilter("filmify"))

	ws.Route(ws.GET("/recommend").To(s.getRecommend).
		Doc("Recommend movies among those rated by a user, ordered by predicted rating.").
		Metadata(restfulspec.KeyOpenAPITags, []string{"recommendation"}).
		Param(ws.QueryParameter("user_id", "identifier of the user").DataType("integer").Required(true)).
		Returns(http.StatusOK, "OK", RecommendResponse{}).
		Returns(http.StatusBadRequest, "invalid user_id", nil).
		Returns(http.StatusInternalServerError, "pipeline failure", nil).
		Writes(RecommendResponse{}))
}

func (s *RestServer) getRecommend(request *restful.Request, response *restful.Response) {
	start := time.Now()
	text := request.QueryParameter("user_id")
	if text == "" {
		BadRequest(response, errors.NotValidf("missing user_id"))
		return
	}
	userId, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		BadRequest(response, errors.NotValidf("user_id %q", text))
		return
	}
	predictions, err := s.Service.Recommend(request.Request.Context(), userId)
	if err != nil {
		InternalServerError(response, err)
		return
	}
	GetRecommendSeconds.Observe(time.Since(start).Seconds())
	Ok(response, RecommendResponse{
		Message:     recommendMessage,
		Predictions: predictions,
	})
}

// BadRequest returns a bad request error.
func BadRequest(response *restful.Response, err error) {
	log.ResponseLogger(response).Error("bad request", zap.Error(err))
	if err = response.WriteError(http.StatusBadRequest, err); err != nil {
		log.ResponseLogger(response).Error("failed to write error", zap.Error(err))
	}
}

// InternalServerError returns a internal server error.
func InternalServerError(response *restful.Response, err error) {
	log.ResponseLogger(response).Error("internal server error", zap.Error(err), zap.String("stack", errors.ErrorStack(err)))
	if err = response.WriteError(http.StatusInternalServerError, err); err != nil {
		log.ResponseLogger(response).Error("failed to write error", zap.Error(err))
	}
}

// Ok sends the content as JSON to the client.
func Ok(response *restful.Response, content interface{}) {
	if err := response.WriteAsJson(content); err != nil {
		log.ResponseLogger(response).Error("failed to write json", zap.Error(err))
	}
}
