// Package tool defines the tool abstraction and the registry that exposes
// tools to the orchestration loop. Tools declare a JSON-schema input contract
// that is validated before every invocation; the registry resolves engine
// tool requests by exact name.
package tool
