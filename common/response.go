package common

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the JSON envelope every API endpoint answers with.
type Response struct {
	Success bool     `json:"success"`
	Data    any      `json:"data,omitempty"`
	Error   string   `json:"error,omitempty"`
	Message string   `json:"message,omitempty"`
	Fields  []string `json:"fields,omitempty"`
}

func Success(data any, message string) Response {
	return Response{Success: true, Data: data, Message: message}
}

// Failure builds the envelope for err. Internal causes are never exposed.
func Failure(err error) Response {
	var e *Error
	if !errors.As(err, &e) {
		e = Internal(err)
	}
	return Response{Success: false, Error: string(e.Kind), Message: e.Message, Fields: e.Fields}
}

// Respond writes data with status on success, or the failure envelope for err.
func Respond(c *gin.Context, status int, data any, err error) {
	if err != nil {
		c.JSON(KindOf(err).HTTPStatus(), Failure(err))
		return
	}
	c.JSON(status, Success(data, ""))
}

// RespondMessage is Respond with a human readable message on success.
func RespondMessage(c *gin.Context, status int, data any, message string, err error) {
	if err != nil {
		c.JSON(KindOf(err).HTTPStatus(), Failure(err))
		return
	}
	c.JSON(status, Success(data, message))
}

// Abort stops the handler chain with the failure envelope for err.
func Abort(c *gin.Context, err error) {
	c.AbortWithStatusJSON(KindOf(err).HTTPStatus(), Failure(err))
}

// NotFoundHandler answers unknown routes with the envelope instead of plain text.
func NotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, Failure(NotFound("Route not found")))
}
