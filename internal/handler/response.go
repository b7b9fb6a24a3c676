package handler

import (
	"log"
	"net/http"
	"strconv"

	"github.com/biswacs/lmscale-backend-sub000/internal/apperr"
	"github.com/gin-gonic/gin"
)

// Response helpers; every non-SSE endpoint shares the
// {success, message, data, errors} envelope.

func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func OKMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message, "data": data})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": data})
}

func Fail(c *gin.Context, err error) {
	e := apperr.From(err)
	if e.Code == apperr.CodeInternal {
		log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	body := gin.H{"success": false, "code": e.Code, "message": e.Message}
	if len(e.Details) > 0 {
		errs := make([]gin.H, 0, len(e.Details))
		for _, d := range e.Details {
			errs = append(errs, gin.H{"message": d})
		}
		body["errors"] = errs
	}
	c.JSON(e.Status, body)
}

func BadRequest(c *gin.Context, message string) {
	Fail(c, apperr.Validation(message))
}

func parseID(s string) uint {
	id, _ := strconv.ParseUint(s, 10, 64)
	return uint(id)
}
