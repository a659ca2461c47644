// Package api provides the HTTP REST API for Chronicle Core.
//
// It exposes login and session management, character sheet access,
// and the master's player-management endpoints. Sessions travel in an
// HttpOnly cookie; every protected endpoint resolves it through the
// auth gate.
//
// The server follows the same lifecycle pattern as the other
// infrastructure components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
package api
