package dto

// ChatRequest is the body of POST /api/assistant/chat. The session id
// travels in the X-Session-Id header, defaulting to "default".
type ChatRequest struct {
	Message  string `json:"message"`
	ForceRag bool   `json:"force_rag"`
}

type ChatResponse struct {
	Answer     string  `json:"answer"`
	Confidence float64 `json:"confidence"`
	SessionID  string  `json:"sessionId"`
}

// AgentChatRequest is the body of POST /api/agent/chat, the text
// tool-calling surface.
type AgentChatRequest struct {
	Message string `json:"message" validate:"required"`
}

type AgentChatResponse struct {
	Answer    string `json:"answer"`
	ToolUsed  string `json:"toolUsed,omitempty"`
	SessionID string `json:"sessionId"`
}

type ReindexResponse struct {
	Status   string `json:"status"`
	Books    int    `json:"books"`
	Segments int    `json:"segments"`
}

type CatalogueSearchResult struct {
	Score float64 `json:"score"`
	Text  string  `json:"text"`
}

type CatalogueSearchResponse struct {
	Query   string                  `json:"query"`
	Results []CatalogueSearchResult `json:"results"`
}

type CatalogueQAResponse struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}
