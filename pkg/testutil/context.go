package testutil

import (
	"context"
	"net/http"

	id "shareregistry/pkg/domain"
	"shareregistry/pkg/requestcontext"
)

// WithPrincipal simulates what the auth middleware does for an authenticated request.
func WithPrincipal(req *http.Request, userID id.UserID, username, role string) *http.Request {
	ctx := requestcontext.WithPrincipal(req.Context(), requestcontext.Principal{
		UserID:   userID,
		Username: username,
		Role:     role,
	})
	return req.WithContext(ctx)
}

// WithClientPrincipal authenticates the request as a client account linked to profileID.
func WithClientPrincipal(req *http.Request, userID id.UserID, username string, profileID id.ProfileID) *http.Request {
	ctx := requestcontext.WithPrincipal(req.Context(), requestcontext.Principal{
		UserID:    userID,
		Username:  username,
		Role:      "client",
		ProfileID: &profileID,
	})
	return req.WithContext(ctx)
}

// WithContextValue adds an arbitrary key-value pair to the request context.
func WithContextValue(req *http.Request, key, value any) *http.Request {
	ctx := context.WithValue(req.Context(), key, value)
	return req.WithContext(ctx)
}

// WithBearer sets the Authorization header the auth middleware reads.
func WithBearer(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}
