package nodes

// Graph node keys.
const (
	NodeContextBuilder = "context_builder"
	NodeChatModel      = "chat_model"
	NodeToolExecutor   = "tool_executor"
	NodeAcknowledge    = "acknowledge"
)
