// cmd/client/cmd/types/types.go
package types

// ContextKey keys values placed into a command's context.
type ContextKey string

// ClientAppKey holds the initialized *client.App for subcommands.
const ClientAppKey ContextKey = "clientApp"
