package handler

import (
	"embed"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gopkg.in/yaml.v3"
)

//go:embed docs/*.yaml
var docsFS embed.FS

// OpenAPIドキュメントの名前
const (
	DocsGateway = "gateway"
	DocsUsers   = "users"
)

// health / api-docs / metrics
type SystemHandler struct {
	service string
	docYAML []byte
	docJSON []byte
}

// docは DocsGateway または DocsUsers
func NewSystemHandler(service string, doc string) (*SystemHandler, error) {
	raw, err := docsFS.ReadFile("docs/" + doc + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("load api docs %q: %w", doc, err)
	}

	// /v3/api-docs はJSONで返す
	var tree any
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return nil, fmt.Errorf("parse api docs %q: %w", doc, err)
	}
	asJSON, err := json.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("encode api docs %q: %w", doc, err)
	}

	return &SystemHandler{service: service, docYAML: raw, docJSON: asJSON}, nil
}

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

func (h *SystemHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.health)
	e.GET("/v3/api-docs", h.apiDocs)
	e.GET("/v3/api-docs.yaml", h.apiDocsYAML)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

func (h *SystemHandler) health(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{Status: "UP", Service: h.service})
}

func (h *SystemHandler) apiDocs(c echo.Context) error {
	return c.JSONBlob(http.StatusOK, h.docJSON)
}

func (h *SystemHandler) apiDocsYAML(c echo.Context) error {
	return c.Blob(http.StatusOK, "application/yaml", h.docYAML)
}
