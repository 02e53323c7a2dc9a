package server

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/meetingmind/errors"
)

// RespondWithError aborts with err rendered as the JSON error envelope.
func RespondWithError(c *gin.Context, err error) {
	appErr := apperrors.From(err)
	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
}

func notFound(c *gin.Context) {
	appErr := apperrors.NotFound("route", c.Request.Method+" "+c.Request.URL.Path)
	c.JSON(appErr.HTTPStatus, appErr.ToResponse())
}
