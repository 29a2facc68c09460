package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// errorBody is the only error payload the API returns.
var errorBody = gin.H{"message": "ERROR"}

func abortWithError(c *gin.Context, status int) {
	c.AbortWithStatusJSON(status, errorBody)
}

// NotFound answers requests that match no route.
func NotFound(c *gin.Context) {
	abortWithError(c, http.StatusNotFound)
}

// MethodNotAllowed answers requests whose path exists under another method.
func MethodNotAllowed(c *gin.Context) {
	abortWithError(c, http.StatusMethodNotAllowed)
}

// Recovered answers a request whose handler panicked.
func Recovered(c *gin.Context, _ any) {
	abortWithError(c, http.StatusInternalServerError)
}

// locationFor builds the item URL from the request URL, e.g.
// http://host/v1/stocks + "/" + name.
func locationFor(c *gin.Context, name string) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = strings.ToLower(strings.TrimSpace(strings.Split(proto, ",")[0]))
	}
	return scheme + "://" + c.Request.Host + c.Request.URL.Path + "/" + name
}
