// Package logging provides the structured logger used by the hhdt CLI and
// MCP server. Logs always go to stderr; stdout carries protocol traffic.
package logging
