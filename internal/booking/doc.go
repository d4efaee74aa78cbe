// Package booking defines the reservation data model shared by the selection
// merger, recurrence expander, conflict detector and orchestrator.
package booking
