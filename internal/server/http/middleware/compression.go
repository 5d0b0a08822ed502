package middleware

import (
	"compress/gzip"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// maxInflatedBody limits how far a compressed request body may expand.
const maxInflatedBody = 4 << 20

// DecompressRequest inflates gzip request bodies before binding. Webhook
// signatures are therefore checked against the plain payload.
func DecompressRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !gzipEncoded(c.GetHeader("Content-Encoding")) {
			c.Next()
			return
		}

		compressed := c.Request.Body
		defer compressed.Close()

		zr, err := gzip.NewReader(compressed)
		if err != nil {
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}
		defer zr.Close()

		req := c.Request
		req.Body = http.MaxBytesReader(c.Writer, zr, maxInflatedBody)
		req.Header.Del("Content-Encoding")
		req.ContentLength = -1
		c.Next()
	}
}

func gzipEncoded(header string) bool {
	for _, enc := range strings.Split(header, ",") {
		switch strings.ToLower(strings.TrimSpace(enc)) {
		case "gzip", "x-gzip":
			return true
		}
	}
	return false
}
