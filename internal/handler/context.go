package handler

import (
	"github.com/gin-gonic/gin"

	"maturity-dashboard/pkg/auth"
)

const identityKey = "identity"

// SetIdentity stores the authenticated caller on the request context.
func SetIdentity(c *gin.Context, id auth.Identity) {
	c.Set(identityKey, id)
}

// IdentityFrom returns the caller stored by SetIdentity.
func IdentityFrom(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return auth.Identity{}, false
	}
	id, ok := v.(auth.Identity)
	return id, ok
}
