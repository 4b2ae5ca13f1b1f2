// Package api provides the REST API for encounter sessions.
//
// Endpoints:
//
//	POST   /api/sessions                      create a session {"scenario_id": "ambush"}
//	GET    /api/sessions                      list sessions (?sort=created|accessed&order=asc|desc&limit=N&scenario=id)
//	GET    /api/sessions/{id}                 session info with the current snapshot
//	DELETE /api/sessions/{id}                 remove a session
//	GET    /api/sessions/{id}/state           snapshot (?format=text for the rendered map)
//	POST   /api/sessions/{id}/actions         dispatch one action
//	POST   /api/sessions/{id}/ai              play the active adversary's turn
//	POST   /api/sessions/{id}/resolve         run every planned action (batch scenarios)
//	POST   /api/sessions/{id}/reset           rebuild the encounter from its scenario
//	GET    /api/sessions/{id}/moves[/{entity}] valid moves, pushes and legal actions
//	GET    /api/sessions/{id}/history         paginated history (?page=&limit=&order=)
//	GET    /api/scenarios                     list scenarios
//	POST   /api/scenarios                     save a scenario definition
//	GET    /api/scenarios/{id}                one scenario; job scenarios use "job/scenario"
//	GET    /api/jobs                          list jobs
//	GET    /ws?session={id}                   WebSocket updates for one session
//
// Action bodies follow service.ActionInput:
//
//	{"kind": "move", "target": {"x": 3, "y": 2}}
//	{"kind": "push", "target_id": 4}
//	{"kind": "turn", "direction": "down"}
//	{"actor_id": 2, "kind": "attack", "target_id": 5}
//	{"kind": "pass"}
//
// A missing actor_id acts for the character holding the turn. Scenarios with
// "resolution": "batch" only plan actions until /resolve is called. Actions
// the rules reject still answer 200 with "success": false; malformed input
// answers 400, unknown sessions 404, out-of-turn AI requests and requests for
// the wrong resolution mode 409.
package api
