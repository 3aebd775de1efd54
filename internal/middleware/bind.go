package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/mmynk/shoplist/internal/apierror"
	"github.com/mmynk/shoplist/internal/validation"
)

const bodyKey = "body"

// Bind decodes and validates the JSON body into a T before later handlers run.
// Invalid bodies are rejected with 400 and the list of failed rules.
func Bind[T any]() gin.HandlerFunc {
	return func(c *gin.Context) {
		req := new(T)
		if err := validation.Decode(c.Request.Body, req); err != nil {
			apierror.Abort(c, err)
			return
		}
		c.Set(bodyKey, req)
		c.Next()
	}
}

// Body returns the value stored by Bind[T], or nil.
func Body[T any](c *gin.Context) *T {
	v, ok := c.Get(bodyKey)
	if !ok {
		return nil
	}
	req, _ := v.(*T)
	return req
}
