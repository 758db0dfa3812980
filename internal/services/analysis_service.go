package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/chatlens/chatlens-backend/internal/config"
	"github.com/chatlens/chatlens-backend/internal/dto"
	"github.com/chatlens/chatlens-backend/internal/entitlement"
	"github.com/chatlens/chatlens-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxConversationLength = 8000

// AnalysisService generates persona commentary for submitted conversations.
// Every generation passes through the allowance guard first; the AI provider
// is a black box that turns conversation text plus a persona into commentary.
type AnalysisService struct {
	db     *gorm.DB
	cfg    *config.Config
	guard  *entitlement.AllowanceGuard
	client *http.Client
}

func NewAnalysisService(db *gorm.DB, cfg *config.Config, guard *entitlement.AllowanceGuard) *AnalysisService {
	timeout := cfg.AITimeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &AnalysisService{
		db:     db,
		cfg:    cfg,
		guard:  guard,
		client: &http.Client{Timeout: timeout},
	}
}

// Analyze stores a new conversation with generated commentary. It consumes
// one stored-conversation slot (free users) and one submission or credit.
func (s *AnalysisService) Analyze(user *models.User, req *dto.AnalyzeRequest, now time.Time) (*models.Conversation, error) {
	if !models.ValidPersonas[req.Persona] {
		return nil, fmt.Errorf("invalid persona: %s", req.Persona)
	}
	if len(req.Content) == 0 {
		return nil, fmt.Errorf("conversation content is required")
	}
	if len(req.Content) > maxConversationLength {
		return nil, fmt.Errorf("conversation too long (max %d characters)", maxConversationLength)
	}

	eff, err := s.guard.EffectivePlan(user, now)
	if err != nil {
		return nil, err
	}
	if err := s.guard.EnsureConversationAllowance(user.ID, eff.IsPro); err != nil {
		return nil, err
	}
	if err := s.guard.ConsumeSubmission(user.ID, eff.IsPro, now); err != nil {
		return nil, err
	}

	commentary, err := s.callLLM(req.Content, req.Persona)
	if err != nil {
		slog.Warn("LLM generation failed, using fallback", "error", err)
		commentary = fallbackCommentary(req.Persona)
	}

	conv := &models.Conversation{
		ID:         uuid.New(),
		UserID:     user.ID,
		Title:      req.Title,
		Content:    req.Content,
		Persona:    req.Persona,
		Commentary: commentary,
	}
	if err := s.db.Create(conv).Error; err != nil {
		return nil, fmt.Errorf("failed to save conversation: %w", err)
	}

	return conv, nil
}

// Reanalyze re-runs commentary on an existing conversation, optionally with a
// different persona. It consumes one submission or credit but no
// stored-conversation slot.
func (s *AnalysisService) Reanalyze(user *models.User, conversationID uuid.UUID, persona string, now time.Time) (*models.Conversation, error) {
	var conv models.Conversation
	if err := s.db.Where("id = ? AND user_id = ?", conversationID, user.ID).First(&conv).Error; err != nil {
		return nil, fmt.Errorf("conversation not found")
	}

	if persona == "" {
		persona = conv.Persona
	}
	if !models.ValidPersonas[persona] {
		return nil, fmt.Errorf("invalid persona: %s", persona)
	}

	eff, err := s.guard.EffectivePlan(user, now)
	if err != nil {
		return nil, err
	}
	if err := s.guard.ConsumeSubmission(user.ID, eff.IsPro, now); err != nil {
		return nil, err
	}

	commentary, err := s.callLLM(conv.Content, persona)
	if err != nil {
		slog.Warn("LLM generation failed, using fallback", "error", err)
		commentary = fallbackCommentary(persona)
	}

	if err := s.db.Model(&conv).Updates(map[string]interface{}{
		"persona":    persona,
		"commentary": commentary,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to update conversation: %w", err)
	}
	conv.Persona = persona
	conv.Commentary = commentary

	return &conv, nil
}

// History returns paginated stored conversations, newest first.
func (s *AnalysisService) History(userID uuid.UUID, page, limit int) ([]models.Conversation, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	var total int64
	s.db.Model(&models.Conversation{}).Where("user_id = ?", userID).Count(&total)

	var conversations []models.Conversation
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&conversations).Error

	return conversations, total, err
}

// Delete removes a stored conversation, freeing a slot for free users.
func (s *AnalysisService) Delete(userID, conversationID uuid.UUID) error {
	result := s.db.Where("id = ? AND user_id = ?", conversationID, userID).
		Delete(&models.Conversation{})
	if result.RowsAffected == 0 {
		return fmt.Errorf("conversation not found")
	}
	return result.Error
}

// --- LLM integration ---

type llmRequest struct {
	Model       string       `json:"model"`
	Messages    []llmMessage `json:"messages"`
	Temperature float64      `json:"temperature"`
	MaxTokens   int          `json:"max_tokens"`
}

type llmMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type llmResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

var personaPrompts = map[string]string{
	"wingman":   "You are the user's loyal wingman. Hype them up, spot the signals they missed, and tell them their next move.",
	"therapist": "You are a warm, insightful therapist. Read the emotional subtext and reflect gently on what both sides might be feeling.",
	"comedian":  "You are a stand-up comedian. Roast the conversation lovingly and find the funniest thing nobody noticed.",
	"bestie":    "You are the user's brutally honest best friend. No sugarcoating, lots of affection.",
	"coach":     "You are a direct communication coach. Point out what worked, what flopped, and one concrete thing to do differently.",
	"poet":      "You are a melancholic poet. Respond to the conversation's mood in vivid, slightly dramatic prose.",
}

func (s *AnalysisService) callLLM(content, persona string) (string, error) {
	commentary, err := s.callProvider(s.cfg.GLMAPIURL, s.cfg.GLMAPIKey, s.cfg.GLMModel, content, persona)
	if err == nil {
		return commentary, nil
	}
	slog.Warn("GLM failed, trying DeepSeek", "error", err)

	if s.cfg.DeepSeekAPIKey != "" {
		commentary, err = s.callProvider(s.cfg.DeepSeekAPIURL, s.cfg.DeepSeekAPIKey, s.cfg.DeepSeekModel, content, persona)
		if err == nil {
			return commentary, nil
		}
		slog.Warn("DeepSeek also failed", "error", err)
	}

	return "", fmt.Errorf("all LLM providers failed: %w", err)
}

func (s *AnalysisService) callProvider(apiURL, apiKey, model, content, persona string) (string, error) {
	if apiKey == "" {
		return "", fmt.Errorf("API key not configured")
	}

	systemPrompt := fmt.Sprintf(`You are ChatLens, an AI that reads real text conversations and returns commentary in a chosen persona.

Persona: %s

Rules:
1. Comment on the conversation as the persona, in 2-5 sentences
2. Be specific about what actually happened in the messages
3. Never be cruel about either participant
4. Return plain text only, no markdown`, personaPrompts[persona])

	userPrompt := fmt.Sprintf("Here is the conversation:\n\n%s\n\nGive your commentary.", content)

	reqBody, err := json.Marshal(llmRequest{
		Model: model,
		Messages: []llmMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0.8,
		MaxTokens:   512,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequest("POST", apiURL, bytes.NewBuffer(reqBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned %d: %s", resp.StatusCode, string(body))
	}

	var llmResp llmResponse
	if err := json.Unmarshal(body, &llmResp); err != nil {
		return "", err
	}

	if len(llmResp.Choices) == 0 {
		return "", fmt.Errorf("empty response from API")
	}

	commentary := strings.TrimSpace(llmResp.Choices[0].Message.Content)
	if commentary == "" {
		return "", fmt.Errorf("blank commentary from LLM")
	}

	return commentary, nil
}

// fallbackCommentary keeps the product usable when every provider is down.
func fallbackCommentary(persona string) string {
	fallbacks := map[string]string{
		"wingman":   "Honestly? You held your own in there. Keep that energy and send the follow-up.",
		"therapist": "There's a lot of care underneath these messages, even where the words get clumsy.",
		"comedian":  "This conversation has everything: tension, typos, and at least one message that should never have been sent.",
		"bestie":    "Okay, real talk: you did fine, but we both know you overthought message three.",
		"coach":     "Good opening, uneven middle. Next time, ask one question and then actually wait.",
		"poet":      "Two voices circling each other in the dark, neither quite saying the thing.",
	}
	if c, ok := fallbacks[persona]; ok {
		return c
	}
	return "We couldn't reach the commentary engine just now, but your conversation is saved."
}
