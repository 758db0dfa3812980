package dto

import "github.com/chatlens/chatlens-backend/internal/models"

type AnalyzeRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Persona string `json:"persona"`
}

type ReanalyzeRequest struct {
	Persona string `json:"persona"`
}

type ConversationListResponse struct {
	Conversations []models.Conversation `json:"conversations"`
	Total         int64                 `json:"total"`
	Page          int                   `json:"page"`
	Limit         int                   `json:"limit"`
}
