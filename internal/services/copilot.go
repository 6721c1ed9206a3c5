package services

import (
	"context"
	"errors"

	"funnel-copilot/internal/billing"
	"funnel-copilot/internal/models"

	log "github.com/sirupsen/logrus"
)

// OutOfCreditsReply is the scripted answer the copilot gives instead of
// failing when the wallet cannot cover a chat turn. The chat flow is
// the only paid flow with an insufficient-balance fallback.
const OutOfCreditsReply = "Seus créditos acabaram! Recarregue sua carteira para continuar conversando com o copiloto de crescimento."

type ChatGenerator interface {
	Chat(ctx context.Context, history []models.ChatMessage, message string) (string, error)
}

type CopilotService struct {
	meter Meter
	gen   ChatGenerator
}

func NewCopilotService(meter Meter, gen ChatGenerator) *CopilotService {
	return &CopilotService{
		meter: meter,
		gen:   gen,
	}
}

// Chat runs one paid conversational turn.
func (s *CopilotService) Chat(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	cost := billing.Cost(models.OperationChatTurn)
	if err := s.meter.Charge(ctx, req.UserID, models.OperationChatTurn, cost); err != nil {
		if errors.Is(err, billing.ErrInsufficientCredits) {
			return &models.ChatResponse{
				Reply:   OutOfCreditsReply,
				Charged: false,
			}, nil
		}
		return nil, err
	}

	reply, err := s.gen.Chat(ctx, req.History, req.Message)
	if err != nil {
		if refundErr := s.meter.Refund(ctx, req.UserID, cost); refundErr != nil {
			log.WithError(refundErr).WithField("user", req.UserID).Error("failed to refund chat turn")
		}
		return nil, err
	}

	return &models.ChatResponse{
		Reply:   reply,
		Charged: true,
	}, nil
}
