package constant

const (
	// Title prefix for chats created without a title, followed by the local date (M/D/YYYY)
	DefaultChatTitlePrefix = "Chat "
	DefaultChatTitleLayout = "1/2/2006"

	ChatWelcomeMessage = "Hello! I'm your DreamBees Art assistant, ready to transform your images into artistic visions. Upload an image and describe your creative ideas - I'll bring them to life with AI-powered editing."

	AssistantProcessingMessage = "I'll help you edit that image. Let me process your request..."

	AssistantGuidanceMessage = "Hello! I'm your DreamBees Art assistant. Please upload an image and describe your creative vision. I can enhance colors, transform scenes, add artistic effects, and bring your imagination to life through AI-powered editing."

	AssistantDispatchFailedError = "failed to start image processing"
)

// Fixed generation parameters sent with every edit request.
const (
	EditGuidanceScale   = 3.5
	EditNumImages       = 1
	EditOutputFormat    = "jpeg"
	EditSafetyTolerance = "2"
)

const (
	MaxUploadSize         = 10 * 1024 * 1024
	UploadFormField       = "image"
	UploadImageMimePrefix = "image/"
)

const (
	EventMessageEditCompleted = "MESSAGE_EDIT_COMPLETED"
	EventMessageEditFailed    = "MESSAGE_EDIT_FAILED"

	WebsocketEventMessageUpdated = "message.updated"
)
