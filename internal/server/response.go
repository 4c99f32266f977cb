package server

import (
	"net/http"

	"github.com/go-chi/render"
)

// APIResponse is the envelope every endpoint returns. Status is 0 on success
// and mirrors the HTTP status code otherwise.
type APIResponse struct {
	Status int    `json:"status"`
	Msg    string `json:"msg"`
	Data   any    `json:"data,omitempty"`
}

func success(w http.ResponseWriter, r *http.Request, msg string, data any) {
	render.JSON(w, r, APIResponse{Status: 0, Msg: msg, Data: data})
}

func fail(w http.ResponseWriter, r *http.Request, code int, msg string) {
	render.Status(r, code)
	render.JSON(w, r, APIResponse{Status: code, Msg: msg})
}
