package projects

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"ops-backend/internal/shared/crud"
	"ops-backend/internal/shared/validate"
)

// jakarta is UTC+7 without daylight saving.
var jakarta = time.FixedZone("WIB", 7*60*60)

const availabilityLayout = "Monday, 02 January 2006 at 03 PM"

const dateTimeFormatMessage = "Datetime has wrong format. Use one of these formats instead: YYYY-MM-DDThh:mm[:ss][+HH:MM|-HH:MM|Z]."

// FormatAvailability renders t in Jakarta time, e.g.
// "Wednesday, 01 January 2025 at 03 PM (Jakarta time)".
func FormatAvailability(t time.Time) string {
	return t.In(jakarta).Format(availabilityLayout) + " (Jakarta time)"
}

// dateTimeLayouts are tried in order; layouts without an offset are read as UTC.
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseDateTime reads an ISO 8601 timestamp.
func ParseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var err error
	for _, layout := range dateTimeLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, err
}

type PublishedStatus struct {
	ID   int64
	Name string
}

type PublishedStatusInput struct {
	Name string `json:"status_name" validate:"required,max=150"`
}

var PublishedStatusTable = crud.Table[PublishedStatus]{
	Name:    "published_statuses",
	Key:     "status_id",
	Columns: []string{"status_name"},
	Scan: func(s crud.Scanner) (PublishedStatus, error) {
		var p PublishedStatus
		err := s.Scan(&p.ID, &p.Name)
		return p, err
	},
	Values: func(p PublishedStatus) []any { return []any{p.Name} },
}

func newPublishedStatusResource(store crud.Store[PublishedStatus]) *crud.Resource[PublishedStatus, PublishedStatusInput] {
	return &crud.Resource[PublishedStatus, PublishedStatusInput]{
		Name:  "published status",
		Path:  "/published_statuses",
		Store: store,
		FromModel: func(p PublishedStatus) PublishedStatusInput {
			return PublishedStatusInput{Name: p.Name}
		},
		ToModel: func(_ context.Context, in PublishedStatusInput, _ *PublishedStatus) (PublishedStatus, error) {
			return PublishedStatus{Name: strings.TrimSpace(in.Name)}, nil
		},
		Present: func(p PublishedStatus) any {
			return gin.H{"status_id": p.ID, "status_name": p.Name}
		},
	}
}

// Publication records that an expert was presented to the client.
type Publication struct {
	ID                 int64
	ExpertID           *int64
	ProjectID          *int64
	StatusID           *int64
	UserID             *int64
	ExpertAvailability *time.Time
	Angles             string
	CreatedAt          time.Time
}

type PublicationInput struct {
	ExpertID           *int64  `json:"expert_id"`
	ProjectID          *int64  `json:"project_id"`
	StatusID           *int64  `json:"status_id"`
	UserID             *int64  `json:"user_id"`
	ExpertAvailability *string `json:"expert_availability"`
	Angles             string  `json:"angles" validate:"max=255"`
}

var PublicationTable = crud.Table[Publication]{
	Name:      "project_published",
	Key:       "project_publish_id",
	Columns:   []string{"expert_id", "project_id", "status_id", "user_id", "expert_availability", "angles"},
	Generated: []string{"created_at"},
	Scan: func(s crud.Scanner) (Publication, error) {
		var p Publication
		var expert, project, status, user sql.NullInt64
		var availability sql.NullTime
		if err := s.Scan(&p.ID, &expert, &project, &status, &user, &availability, &p.Angles, &p.CreatedAt); err != nil {
			return Publication{}, err
		}
		p.ExpertID = nullInt(expert)
		p.ProjectID = nullInt(project)
		p.StatusID = nullInt(status)
		p.UserID = nullInt(user)
		p.ExpertAvailability = nullTime(availability)
		return p, nil
	},
	Values: func(p Publication) []any {
		return []any{p.ExpertID, p.ProjectID, p.StatusID, p.UserID, p.ExpertAvailability, p.Angles}
	},
}

func newPublicationResource(store crud.Store[Publication]) *crud.Resource[Publication, PublicationInput] {
	return &crud.Resource[Publication, PublicationInput]{
		Name:  "project published",
		Path:  "/project_published",
		Store: store,
		FromModel: func(p Publication) PublicationInput {
			in := PublicationInput{
				ExpertID:  p.ExpertID,
				ProjectID: p.ProjectID,
				StatusID:  p.StatusID,
				UserID:    p.UserID,
				Angles:    p.Angles,
			}
			if p.ExpertAvailability != nil {
				s := p.ExpertAvailability.UTC().Format(time.RFC3339Nano)
				in.ExpertAvailability = &s
			}
			return in
		},
		Check: func(_ context.Context, in *PublicationInput, _ *Publication) validate.Errors {
			if _, err := parseAvailability(in.ExpertAvailability); err != nil {
				return validate.Errors{"expert_availability": dateTimeFormatMessage}
			}
			return nil
		},
		ToModel: func(_ context.Context, in PublicationInput, existing *Publication) (Publication, error) {
			availability, err := parseAvailability(in.ExpertAvailability)
			if err != nil {
				return Publication{}, validate.Errors{"expert_availability": dateTimeFormatMessage}
			}
			p := Publication{
				ExpertID:           in.ExpertID,
				ProjectID:          in.ProjectID,
				StatusID:           in.StatusID,
				UserID:             in.UserID,
				ExpertAvailability: availability,
				Angles:             strings.TrimSpace(in.Angles),
			}
			if existing != nil {
				p.CreatedAt = existing.CreatedAt
			}
			return p, nil
		},
		Present: presentPublication,
	}
}

func presentPublication(p Publication) any {
	var availability any
	if p.ExpertAvailability != nil {
		availability = FormatAvailability(*p.ExpertAvailability)
	}
	return gin.H{
		"project_publish_id":  p.ID,
		"expert_id":           p.ExpertID,
		"project_id":          p.ProjectID,
		"user_id":             p.UserID,
		"status_id":           p.StatusID,
		"expert_availability": availability,
		"angles":              p.Angles,
		"created_at":          p.CreatedAt,
	}
}

func parseAvailability(s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, err := ParseDateTime(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
