// Package handlers carries the dashboard HTTP endpoints. Order reads are
// served from the local synchronized view; everything else proxies the
// platform API with the service account.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/codehasanali/rafine-web/internal/config"
	"github.com/codehasanali/rafine-web/internal/ordersync"
	"github.com/codehasanali/rafine-web/internal/storage"
	"github.com/codehasanali/rafine-web/internal/upstream"
	"github.com/codehasanali/rafine-web/pkg/response"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	Upstream *upstream.Client
	Sync     *ordersync.Engine
	Store    *storage.ObjectStore
	Logger   *zap.Logger
	Config   config.Config
}

// writeError maps the upstream error taxonomy onto the response envelope.
// Anything outside the taxonomy is reported as a plain internal error.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var ue *upstream.Error
	if errors.As(err, &ue) {
		status := ue.StatusCode
		if status == 0 {
			status = http.StatusBadGateway
		}
		response.Error(w, status, string(ue.Code), ue.Message)
		return
	}
	response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
}

func decodeBody(r *http.Request, out any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(out)
}

func urlParamInt64(r *http.Request, name string) (int64, bool) {
	value, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
