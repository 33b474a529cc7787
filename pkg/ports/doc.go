// Package ports defines the driven-side interfaces of the agent: the text
// generation capability, conversation state persistence, and distributed
// locking. Adapters implement them; the orchestrator and session manager
// depend only on the interfaces.
package ports
