// Package http exposes the reservation engine over JSON.
//
// The router mounts:
//   - GET /healthz: store reachability.
//   - GET /resources, POST /resources: the resource catalog. Restricted
//     resources carry a hashed unlock token.
//   - POST /resources/{id}/unlock: verifies an unlock token. 204 on success.
//   - POST /selections: replays picked cells against live occupancy and
//     reports which ones would be held, with a reason for every rejected cell.
//   - POST /plans: merges the selected cells, expands the optional
//     recurrence and partitions the candidates into valid, conflicting and
//     rejected. Nothing is written.
//   - GET /availability?resource_id=&date=: reserved and free cell starts.
//   - POST /reservations: commits candidates from a plan. 201 when all were
//     written, 207 with the per-candidate failures otherwise.
//   - GET /reservations, GET /reservations/{id}, DELETE /reservations/{id},
//     POST /reservations/{id}/cancel.
//
// Restricted resources appear in selections, plans and commits only when
// the request body carries a matching entry in unlock_tokens.
package http
