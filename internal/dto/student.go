package dto

import (
	"time"

	"github.com/noah-isme/lingua-go-api/internal/models"
	"github.com/noah-isme/lingua-go-api/pkg/ai"
)

// ChallengeResponse is the API shape of one recurring challenge.
type ChallengeResponse struct {
	Type           string `json:"type"`
	Pattern        string `json:"pattern"`
	Frequency      string `json:"frequency"`
	Severity       string `json:"severity"`
	Recommendation string `json:"recommendation"`
}

// NewChallengesResponse converts a challenge analysis into its API shape.
func NewChallengesResponse(challenges []ai.Challenge) []ChallengeResponse {
	responses := make([]ChallengeResponse, 0, len(challenges))
	for _, challenge := range challenges {
		responses = append(responses, ChallengeResponse{
			Type:           challenge.Type,
			Pattern:        challenge.Pattern,
			Frequency:      challenge.Frequency,
			Severity:       challenge.Severity,
			Recommendation: challenge.Recommendation,
		})
	}
	return responses
}

// NotificationResponse is the API shape of one notification.
type NotificationResponse struct {
	ID        uint      `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// NewNotificationsResponse converts notification models into their API shape.
func NewNotificationsResponse(notifications []models.Notification) []NotificationResponse {
	responses := make([]NotificationResponse, 0, len(notifications))
	for _, notification := range notifications {
		responses = append(responses, NotificationResponse{
			ID:        notification.ID,
			Type:      notification.Type,
			Message:   notification.Message,
			Read:      notification.Read,
			CreatedAt: notification.CreatedAt,
		})
	}
	return responses
}
