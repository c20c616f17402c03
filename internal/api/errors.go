package api

import (
	"errors"
	"net/http"

	"alcyxob/fitness-tracker/internal/service"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// statusForKind maps service error kinds to HTTP status codes.
func statusForKind(kind service.Kind) int {
	switch kind {
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindUnauthorized:
		return http.StatusForbidden
	case service.KindInvalidArgument:
		return http.StatusBadRequest
	case service.KindInvalidReference:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as JSON. Unexpected failures hide their cause from
// the client; a partially applied write says so.
func respondError(c *gin.Context, err error) {
	kind := service.KindOf(err)
	status := statusForKind(kind)

	body := gin.H{"error": err.Error(), "kind": kind.String()}
	if status == http.StatusInternalServerError {
		log.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		body["error"] = "An unexpected error occurred."
	}
	if service.IsPartial(err) {
		body["partial"] = true
	}
	var se *service.Error
	if errors.As(err, &se) && status != http.StatusInternalServerError {
		// drop the op prefix for clients
		body["error"] = se.Err.Error()
	}
	c.AbortWithStatusJSON(status, body)
}
