package domain

// PanelKind identifies one of the feature panels.
type PanelKind int

const (
	PanelAsk PanelKind = iota
	PanelQuiz
	PanelReview
	NumPanels
)

// Panel describes a single-field request form bound to one endpoint.
// All panels share the same contract: POST {RequestField: value} and read
// ResponseField from the JSON reply.
type Panel struct {
	Kind          PanelKind
	Title         string
	Endpoint      string
	RequestField  string
	ResponseField string
	// Fallback is rendered when a successful reply lacks ResponseField.
	Fallback     string
	Placeholder  string
	DefaultInput string
	Multiline    bool
	SubmitLabel  string
}

// ConnectivityError is rendered by every panel when no response arrives.
const ConnectivityError = "Error connecting to the backend."

// Panels is indexed by PanelKind.
var Panels = [NumPanels]Panel{
	PanelAsk: {
		Kind:          PanelAsk,
		Title:         "Ask a question",
		Endpoint:      "/ask",
		RequestField:  "message",
		ResponseField: "response",
		Fallback:      "No response.",
		Placeholder:   "What is an element in HTML?",
		SubmitLabel:   "ask",
	},
	PanelQuiz: {
		Kind:          PanelQuiz,
		Title:         "Quiz",
		Endpoint:      "/quiz",
		RequestField:  "topic",
		ResponseField: "quiz",
		Fallback:      "No quiz generated.",
		Placeholder:   "Quiz topic (e.g. HTML basics)",
		DefaultInput:  "HTML basics",
		SubmitLabel:   "start quiz",
	},
	PanelReview: {
		Kind:          PanelReview,
		Title:         "Code Review",
		Endpoint:      "/review",
		RequestField:  "code",
		ResponseField: "review",
		Fallback:      "No review provided.",
		Placeholder:   "Enter HTML code for review...",
		Multiline:     true,
		SubmitLabel:   "submit",
	},
}

// PanelFor returns the descriptor for k.
func PanelFor(k PanelKind) Panel {
	return Panels[k]
}
