package datasource

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"design-system-api/internal/cache"
	"design-system-api/internal/fixtures"
	"design-system-api/internal/mapper"
	"design-system-api/internal/models"
)

// RequestFilter narrows the request list. Empty fields match everything.
type RequestFilter struct {
	Status   models.RequestStatus   `form:"status"`
	Priority models.RequestPriority `form:"priority"`
}

// Voter identifies the user casting a vote or submitting a request.
type Voter struct {
	ID   string
	Name string
}

// userVotes maps request id to user id to whether the user voted (true) or
// withdrew a vote (false).
type userVotes map[string]map[string]bool

// Requests is the component request domain. Votes and submitted requests
// are persisted and re-applied to whichever data is loaded.
type Requests struct {
	*Domain[[]models.ComponentRequest]
	state *cache.State
	mu    sync.Mutex
}

// NewRequests builds the request domain, loading from open feature requests.
func NewRequests(gh GitHub, state *cache.State, opts Options) *Requests {
	r := &Requests{state: state}
	load := func(ctx context.Context) ([]models.ComponentRequest, error) {
		issues, err := gh.FeatureRequests(ctx, featuresPerPage)
		if err != nil {
			return nil, err
		}
		return mapper.ComponentRequests(issues), nil
	}
	r.Domain = NewDomain(Config[[]models.ComponentRequest]{
		Name:       "requests",
		Fixture:    fixtures.Requests,
		Load:       load,
		Invalidate: gh.ClearCache,
		Overlay:    r.applyPersisted,
		Clone:      cloneRequests,
		Logger:     opts.Logger,
		Metrics:    opts.Metrics,
		Notifier:   opts.Notifier,
	})
	return r
}

func cloneRequests(in []models.ComponentRequest) []models.ComponentRequest {
	out := slices.Clone(in)
	for i, r := range out {
		out[i] = r.Clone()
	}
	return out
}

func (r *Requests) votes() userVotes {
	v := userVotes{}
	r.state.Get(cache.KeyUserVotes, &v)
	return v
}

func (r *Requests) submitted() []models.ComponentRequest {
	var s []models.ComponentRequest
	r.state.Get(cache.KeyRequests, &s)
	return s
}

// applyPersisted puts submitted requests in front (newest first) and then
// replays recorded votes.
func (r *Requests) applyPersisted(requests []models.ComponentRequest) []models.ComponentRequest {
	ids := make(map[string]bool, len(requests))
	for _, req := range requests {
		ids[req.ID] = true
	}
	merged := make([]models.ComponentRequest, 0, len(requests))
	for _, req := range r.submitted() {
		if !ids[req.ID] {
			merged = append(merged, req)
		}
	}
	merged = append(merged, requests...)

	votes := r.votes()
	for i := range merged {
		byUser := votes[merged[i].ID]
		users := make([]string, 0, len(byUser))
		for user := range byUser {
			users = append(users, user)
		}
		sort.Strings(users)
		for _, user := range users {
			if byUser[user] {
				addVote(&merged[i], user)
			} else {
				removeVote(&merged[i], user)
			}
		}
	}
	return merged
}

// addVote and removeVote keep Votes and VotedBy moving together. They
// report whether anything changed.
func addVote(req *models.ComponentRequest, user string) bool {
	if req.HasVoted(user) {
		return false
	}
	req.VotedBy = append(req.VotedBy, user)
	req.Votes++
	return true
}

func removeVote(req *models.ComponentRequest, user string) bool {
	if !req.HasVoted(user) {
		return false
	}
	kept := req.VotedBy[:0]
	for _, id := range req.VotedBy {
		if id != user {
			kept = append(kept, id)
		}
	}
	req.VotedBy = kept
	if req.Votes > 0 {
		req.Votes--
	}
	return true
}

func (r *Requests) setVote(requestID, user string, voted bool) (models.ComponentRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result models.ComponentRequest
	err := r.Update(func(requests []models.ComponentRequest) ([]models.ComponentRequest, error) {
		for i := range requests {
			if requests[i].ID != requestID {
				continue
			}
			var changed bool
			if voted {
				changed = addVote(&requests[i], user)
			} else {
				changed = removeVote(&requests[i], user)
			}
			if changed {
				votes := r.votes()
				if votes[requestID] == nil {
					votes[requestID] = map[string]bool{}
				}
				votes[requestID][user] = voted
				r.state.Set(cache.KeyUserVotes, votes)
			}
			result = requests[i].Clone()
			return requests, nil
		}
		return requests, fmt.Errorf("request %q: %w", requestID, ErrNotFound)
	})
	return result, err
}

// Vote adds user's vote. Voting twice has no further effect.
func (r *Requests) Vote(requestID, user string) (models.ComponentRequest, error) {
	return r.setVote(requestID, user, true)
}

// Unvote withdraws user's vote, if any.
func (r *Requests) Unvote(requestID, user string) (models.ComponentRequest, error) {
	return r.setVote(requestID, user, false)
}

// Submit adds a new request authored and voted for by the voter. It is
// placed first and persisted.
func (r *Requests) Submit(draft models.RequestDraft, voter Voter) (models.ComponentRequest, error) {
	title := strings.TrimSpace(draft.Title)
	if title == "" {
		return models.ComponentRequest{}, fmt.Errorf("request title is required: %w", ErrInvalid)
	}
	priority := draft.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	affected := draft.AffectedProjects
	if affected <= 0 {
		affected = 1
	}
	today := now().UTC().Format("2006-01-02")

	r.mu.Lock()
	defer r.mu.Unlock()
	var created models.ComponentRequest
	err := r.Update(func(requests []models.ComponentRequest) ([]models.ComponentRequest, error) {
		created = models.ComponentRequest{
			ID:                nextRequestID(requests),
			Title:             title,
			Description:       draft.Description,
			UserStory:         draft.UserStory,
			Status:            models.RequestSubmitted,
			Priority:          priority,
			Votes:             1,
			VotedBy:           []string{voter.ID},
			CreatedAt:         today,
			UpdatedAt:         today,
			Author:            models.Author{Name: voter.Name},
			Attachments:       append([]string{}, draft.Attachments...),
			SimilarComponents: append([]string{}, draft.SimilarComponents...),
			AffectedProjects:  affected,
		}
		r.state.Set(cache.KeyRequests, append([]models.ComponentRequest{created}, r.submitted()...))
		return append([]models.ComponentRequest{created.Clone()}, requests...), nil
	})
	return created, err
}

// nextRequestID numbers after the current list size, skipping ids in use.
func nextRequestID(requests []models.ComponentRequest) string {
	ids := make([]string, len(requests))
	for i, req := range requests {
		ids[i] = req.ID
	}
	return nextID("req", ids)
}

// List returns the requests matching f.
func (r *Requests) List(f RequestFilter) []models.ComponentRequest {
	all := r.Snapshot().Data
	out := make([]models.ComponentRequest, 0, len(all))
	for _, req := range all {
		if f.Status != "" && req.Status != f.Status {
			continue
		}
		if f.Priority != "" && req.Priority != f.Priority {
			continue
		}
		out = append(out, req)
	}
	return out
}

// Get returns the request with id.
func (r *Requests) Get(id string) (models.ComponentRequest, error) {
	for _, req := range r.Snapshot().Data {
		if req.ID == id {
			return req, nil
		}
	}
	return models.ComponentRequest{}, fmt.Errorf("request %q: %w", id, ErrNotFound)
}

// ByStatus groups every request by status.
func (r *Requests) ByStatus() map[models.RequestStatus][]models.ComponentRequest {
	grouped := map[models.RequestStatus][]models.ComponentRequest{
		models.RequestSubmitted:     {},
		models.RequestUnderReview:   {},
		models.RequestInDevelopment: {},
		models.RequestReady:         {},
	}
	for _, req := range r.Snapshot().Data {
		grouped[req.Status] = append(grouped[req.Status], req)
	}
	return grouped
}

// Stats counts requests per status.
func (r *Requests) Stats() models.RequestStats {
	var s models.RequestStats
	for _, req := range r.Snapshot().Data {
		s.Total++
		switch req.Status {
		case models.RequestSubmitted:
			s.Submitted++
		case models.RequestUnderReview:
			s.UnderReview++
		case models.RequestInDevelopment:
			s.InDevelopment++
		case models.RequestReady:
			s.Ready++
		}
	}
	return s
}

// TopVoted returns up to n requests with the most votes.
func (r *Requests) TopVoted(n int) []models.ComponentRequest {
	all := r.Snapshot().Data
	sort.SliceStable(all, func(i, j int) bool { return all[i].Votes > all[j].Votes })
	return all[:min(len(all), max(n, 0))]
}
