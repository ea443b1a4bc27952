package httpcontext

import (
	"github.com/valyala/fasthttp"

	"github.com/fastygo/compliance/domain"
)

const identityKey = "identity"

// SetIdentity binds the authenticated caller to the request.
func SetIdentity(ctx *fasthttp.RequestCtx, id domain.Identity) {
	ctx.SetUserValue(identityKey, id)
}

// IdentityFrom returns the caller bound by the auth middleware.
func IdentityFrom(ctx *fasthttp.RequestCtx) (domain.Identity, bool) {
	id, ok := ctx.UserValue(identityKey).(domain.Identity)
	if !ok || !id.Valid() {
		return domain.Identity{}, false
	}
	return id, true
}
