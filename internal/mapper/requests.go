package mapper

import (
	"fmt"
	"strings"

	"design-system-api/internal/github"
	"design-system-api/internal/models"
)

const (
	requestTitleLimit       = 60
	requestDescriptionLimit = 300
)

// SyntheticVoterPrefix names the placeholder voters of GitHub-backed
// requests. Login ids never carry it.
const SyntheticVoterPrefix = "gh-voter-"

// ComponentRequests maps feature-request issues to component requests. The
// comment count stands in for votes, and votedBy holds that many synthetic
// voters so that votes == len(votedBy).
func ComponentRequests(issues []github.Issue) []models.ComponentRequest {
	out := make([]models.ComponentRequest, 0, len(issues))
	for _, issue := range issues {
		labels := lowerLabels(issue)
		votes := max(issue.Comments, 1)
		votedBy := make([]string, votes)
		for i := range votedBy {
			votedBy[i] = fmt.Sprintf("%s%d", SyntheticVoterPrefix, i+1)
		}

		description := truncate(issue.BodyText(), requestDescriptionLimit)
		if description == "" {
			description = noDescription
		}

		out = append(out, models.ComponentRequest{
			ID:                fmt.Sprintf("gh-req-%d", issue.Number),
			Title:             truncate(issue.Title, requestTitleLimit),
			Description:       description,
			UserStory:         fmt.Sprintf("As a developer, I want %s so that I can build better UIs", strings.ToLower(issue.Title)),
			Status:            requestStatus(labels),
			Priority:          requestPriority(labels),
			Votes:             votes,
			VotedBy:           votedBy,
			CreatedAt:         datePart(issue.CreatedAt),
			UpdatedAt:         datePart(issue.UpdatedAt),
			Author:            models.Author{Name: issue.User.Login, Avatar: issue.User.AvatarURL},
			Attachments:       []string{},
			SimilarComponents: []string{},
			AffectedProjects:  (votes + 2) / 3,
		})
	}
	return out
}

func requestPriority(labels []string) models.RequestPriority {
	switch {
	case anyLabelContains(labels, "critical", "urgent"):
		return models.PriorityCritical
	case anyLabelContains(labels, "high", "important"):
		return models.PriorityHigh
	case anyLabelContains(labels, "low", "nice to have"):
		return models.PriorityLow
	default:
		return models.PriorityMedium
	}
}

func requestStatus(labels []string) models.RequestStatus {
	switch {
	case anyLabelContains(labels, "reviewing", "discussion"):
		return models.RequestUnderReview
	case anyLabelContains(labels, "in progress", "wip", "pr"):
		return models.RequestInDevelopment
	case anyLabelContains(labels, "done", "completed", "released"):
		return models.RequestReady
	default:
		return models.RequestSubmitted
	}
}
