package respond

import "net/http"

func BadRequest(w http.ResponseWriter, msg string) {
	Error(w, http.StatusBadRequest, "bad_request", msg)
}
func Unauthorized(w http.ResponseWriter, msg string) {
	Error(w, http.StatusUnauthorized, "unauthorized", msg)
}
func NotFound(w http.ResponseWriter, msg string) {
	Error(w, http.StatusNotFound, "not_found", msg)
}
func BadGateway(w http.ResponseWriter, msg string) {
	Error(w, http.StatusBadGateway, "upstream_unavailable", msg)
}
func Internal(w http.ResponseWriter, msg string) {
	Error(w, http.StatusInternalServerError, "internal", msg)
}
