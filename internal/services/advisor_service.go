package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/uniride/campus-pool-backend/internal/models"
	"github.com/uniride/campus-pool-backend/pkg/docai"
)

// MaxRecommendations caps how many rides the advisor suggests.
const MaxRecommendations = 2

// AdvisorService asks a language model to pick the best ride matches for a
// user from an already gender-filtered candidate list. It is strictly
// best-effort: any generation or parsing failure degrades to no
// recommendations, never to an error the caller has to handle.
type AdvisorService struct {
	generator docai.TextGenerator
	logger    *logrus.Logger
}

// NewAdvisorService creates a new advisor service
func NewAdvisorService(generator docai.TextGenerator, logger *logrus.Logger) *AdvisorService {
	return &AdvisorService{
		generator: generator,
		logger:    logger,
	}
}

// RankCandidates returns up to MaxRecommendations rides from candidates,
// in candidate order. Candidates must already have passed the gender
// filter; the advisor never widens the set, it only narrows it.
func (s *AdvisorService) RankCandidates(ctx context.Context, user *models.User, candidates []models.Ride) []models.Ride {
	if len(candidates) == 0 {
		return nil
	}
	if len(candidates) <= MaxRecommendations {
		out := make([]models.Ride, len(candidates))
		copy(out, candidates)
		return out
	}

	prompt, err := s.buildPrompt(user, candidates)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to build recommendation prompt")
		return nil
	}

	response, err := s.generator.GenerateText(ctx, prompt)
	if err != nil {
		s.logger.WithError(err).Warn("Ride recommendation generation failed")
		return nil
	}

	picked := make([]models.Ride, 0, MaxRecommendations)
	for _, ride := range candidates {
		if strings.Contains(response, ride.ID.String()) {
			picked = append(picked, ride)
			if len(picked) == MaxRecommendations {
				break
			}
		}
	}
	return picked
}

func (s *AdvisorService) buildPrompt(user *models.User, candidates []models.Ride) (string, error) {
	ridesJSON, err := json.Marshal(candidates)
	if err != nil {
		return "", fmt.Errorf("failed to marshal candidates: %w", err)
	}

	return fmt.Sprintf(
		"Given the user %s from %s and the following available rides: %s, recommend the top %d best matches. "+
			"Ensure the strict safety rule: %ss can only ride with %ss. "+
			"Reply with the ids of the recommended rides.",
		user.Name, user.College, string(ridesJSON), MaxRecommendations, user.Gender, user.Gender,
	), nil
}
