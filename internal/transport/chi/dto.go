package chi

import (
	"fmt"

	"github.com/kailas-cloud/schemematch/internal/domain"
	"github.com/kailas-cloud/schemematch/internal/domain/profile"
	"github.com/kailas-cloud/schemematch/internal/domain/scheme"
	"github.com/kailas-cloud/schemematch/internal/domain/search/filter"
	"github.com/kailas-cloud/schemematch/internal/domain/search/mode"
	"github.com/kailas-cloud/schemematch/internal/domain/search/request"
)

type filtersDTO struct {
	Categories []string `json:"categories,omitempty"`
	State      string   `json:"state,omitempty"`
	Level      string   `json:"level,omitempty"`
}

type searchRequest struct {
	Query   string               `json:"query"`
	Mode    string               `json:"mode,omitempty"`
	Filters *filtersDTO          `json:"filters,omitempty"`
	UserID  string               `json:"user_id,omitempty"`
	Profile *profile.UserProfile `json:"profile,omitempty"`
	Limit   int                  `json:"limit,omitempty"`
	Offset  int                  `json:"offset,omitempty"`
}

type eligibilityRequest struct {
	SchemeID string               `json:"scheme_id"`
	Profile  *profile.UserProfile `json:"profile"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func (f *filtersDTO) toDomain() (filter.Filter, error) {
	if f == nil {
		return filter.Filter{}, nil
	}
	level, err := scheme.ParseLevel(f.Level)
	if err != nil {
		return filter.Filter{}, err //nolint:wrapcheck // message is the client-facing reason
	}
	return filter.Filter{Categories: f.Categories, State: f.State, Level: level}, nil
}

// toQuery validates the body into a SmartSearchQuery. Every failure wraps domain.ErrInvalidRequest.
func (r *searchRequest) toQuery() (request.SmartSearchQuery, error) {
	f, err := r.Filters.toDomain()
	if err != nil {
		return request.SmartSearchQuery{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	q, err := request.New(r.Query, mode.Mode(r.Mode), f, r.Limit, r.Offset)
	if err != nil {
		return request.SmartSearchQuery{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	if r.Profile != nil {
		if err := r.Profile.Validate(); err != nil {
			return request.SmartSearchQuery{}, fmt.Errorf("%w: profile: %w", domain.ErrInvalidRequest, err)
		}
		q = q.WithProfile(r.Profile)
	}
	return q.WithUserID(r.UserID), nil
}
