// Package protocol defines the JSON-RPC 2.0 envelope and the MCP message
// types exchanged by every transport: requests, responses, notifications,
// errors, and the payloads of initialize, ping, tools/list, tools/call,
// resources/list and resources/read.
package protocol
