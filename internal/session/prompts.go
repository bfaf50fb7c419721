package session

// DefaultTitle names sessions created without an explicit title.
const DefaultTitle = "New Chat"

// WelcomeMessage opens every fresh local conversation.
const WelcomeMessage = `Hello! I'm your AI Commercial Real Estate Assistant. I can help you:

• Analyze property portfolios
• Find investment opportunities
• Answer questions about market data
• Process and search through documents

What would you like to explore today?`

// FallbackReply is appended in place of the assistant's answer when a send fails.
const FallbackReply = "Sorry, I encountered an error. Please try again later."

// QuickAction is a canned prompt offered next to the chat input.
type QuickAction struct {
	Label   string
	Message string
}

// QuickActions are the canned prompts of the chat widget.
var QuickActions = []QuickAction{
	{Label: "Large Properties", Message: "Show me properties above 15,000 SF with rent below $90/SF"},
	{Label: "Average Rent", Message: "What is the average rent per square foot in my portfolio?"},
	{Label: "High GCI", Message: "Find properties with high GCI potential"},
	{Label: "Location Search", Message: "Show me Broadway properties"},
}

// Notification texts.
const (
	msgEmptyMessage   = "Please enter a message"
	msgNoActive       = "Select or create a chat session first"
	msgChatError      = "Chat error occurred. Please check your connection."
	msgHistoryFailed  = "Failed to load chat history"
	msgLoadFailed     = "Failed to load conversation"
	msgCreated        = "New chat session created"
	msgCreateFailed   = "Failed to create new session"
	msgRenamed        = "Session title updated"
	msgRenameFailed   = "Failed to update session title"
	msgEmptyTitle     = "Please enter a session title"
	msgDeleted        = "Session deleted successfully"
	msgDeleteFailed   = "Failed to delete session"
	msgExported       = "Chat exported successfully!"
	msgNothingToWrite = "Nothing to export yet"
)
