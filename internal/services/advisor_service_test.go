package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/uniride/campus-pool-backend/internal/models"
	"github.com/uniride/campus-pool-backend/pkg/docai"
)

func advisorUser() *models.User {
	return &models.User{Name: "Priya", College: "IIT Delhi", Gender: models.GenderFemale}
}

func femaleRides(n int) []models.Ride {
	rides := make([]models.Ride, n)
	for i := range rides {
		rides[i] = ride(models.GenderFemale, models.VehicleCar)
	}
	return rides
}

func TestRankCandidates_PicksRidesNamedInResponse(t *testing.T) {
	candidates := femaleRides(4)
	generator := docai.NewMockAnalyzer()
	generator.Text = fmt.Sprintf("Best matches: %s and %s", candidates[2].ID, candidates[1].ID)

	service := NewAdvisorService(generator, testLogger())
	picked := service.RankCandidates(context.Background(), advisorUser(), candidates)

	// Candidate order wins over mention order in the response.
	assert.Equal(t, []models.Ride{candidates[1], candidates[2]}, picked)
}

func TestRankCandidates_CapsAtTwo(t *testing.T) {
	candidates := femaleRides(5)
	generator := docai.NewMockAnalyzer()
	generator.Text = fmt.Sprintf("%s %s %s %s",
		candidates[0].ID, candidates[1].ID, candidates[2].ID, candidates[3].ID)

	service := NewAdvisorService(generator, testLogger())
	picked := service.RankCandidates(context.Background(), advisorUser(), candidates)

	assert.Len(t, picked, MaxRecommendations)
}

func TestRankCandidates_GenerationFailureDegradesToEmpty(t *testing.T) {
	generator := docai.NewMockAnalyzer()
	generator.TextErr = errors.New("model unavailable")

	service := NewAdvisorService(generator, testLogger())
	picked := service.RankCandidates(context.Background(), advisorUser(), femaleRides(4))

	assert.Empty(t, picked)
}

func TestRankCandidates_UnparseableResponseDegradesToEmpty(t *testing.T) {
	generator := docai.NewMockAnalyzer()
	generator.Text = "I would recommend the first and third rides."

	service := NewAdvisorService(generator, testLogger())
	picked := service.RankCandidates(context.Background(), advisorUser(), femaleRides(4))

	assert.Empty(t, picked)
}

func TestRankCandidates_SmallCandidateSetSkipsGeneration(t *testing.T) {
	generator := docai.NewMockAnalyzer()
	generator.TextErr = errors.New("must not be called")
	candidates := femaleRides(2)

	service := NewAdvisorService(generator, testLogger())
	picked := service.RankCandidates(context.Background(), advisorUser(), candidates)

	assert.Equal(t, candidates, picked)
}

func TestRankCandidates_NoCandidates(t *testing.T) {
	service := NewAdvisorService(docai.NewMockAnalyzer(), testLogger())
	assert.Empty(t, service.RankCandidates(context.Background(), advisorUser(), nil))
}
