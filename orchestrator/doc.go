// Package orchestrator implements the agent orchestration loop: it drives a
// session through reasoning turns, executes requested tool calls with
// validation, timeouts and retries, commits results to session memory and
// enforces the turn budget and forward-only session lifecycle.
package orchestrator
