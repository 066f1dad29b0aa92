package testutil

import (
	"net/http"

	id "marketlevy/pkg/domain"
	"marketlevy/pkg/requestcontext"
)

// WithAgent adds an agent id to the request context.
// This simulates what the agent auth middleware does for authenticated requests.
func WithAgent(req *http.Request, agentID id.AgentID) *http.Request {
	return req.WithContext(requestcontext.WithAgentID(req.Context(), agentID))
}

// WithActor adds an administrative actor id to the request context.
func WithActor(req *http.Request, actorID id.UserID) *http.Request {
	return req.WithContext(requestcontext.WithActorID(req.Context(), actorID))
}

// WithRequestMetadata adds request id and device label, as the request and
// metadata middleware would.
func WithRequestMetadata(req *http.Request, requestID, deviceLabel string) *http.Request {
	ctx := requestcontext.WithRequestID(req.Context(), requestID)
	ctx = requestcontext.WithDeviceLabel(ctx, deviceLabel)
	return req.WithContext(ctx)
}
