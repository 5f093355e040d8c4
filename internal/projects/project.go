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

// Project is a client engagement. Closed mirrors the status column:
// false is active, true is closed.
type Project struct {
	ID                 int64
	Name               string
	UserID             *int64
	Closed             bool
	ClientCompanyID    *int64
	GeographyID        *int64
	TimelineStart      time.Time
	TimelineEnd        time.Time
	ExpectedCalls      int64
	CompletedCalls     int64
	ClientRequirements *string
	CreatedAt          time.Time
}

type ProjectInput struct {
	Name               string  `json:"project_name" validate:"required,max=255"`
	UserID             *int64  `json:"user_id"`
	Status             *bool   `json:"status"`
	ClientCompanyID    *int64  `json:"client_company_id"`
	GeographyID        *int64  `json:"geography_id"`
	TimelineStart      string  `json:"timeline_start" validate:"required"`
	TimelineEnd        string  `json:"timeline_end" validate:"required"`
	ExpectedCalls      *int64  `json:"expected_calls" validate:"required,gte=-2147483648,lte=2147483647"`
	CompletedCalls     *int64  `json:"completed_calls" validate:"omitempty,gte=-2147483648,lte=2147483647"`
	ClientRequirements *string `json:"client_requirements"`
}

var ProjectTable = crud.Table[Project]{
	Name: "projects",
	Key:  "project_id",
	Columns: []string{
		"project_name", "user_id", "status", "client_company_id", "geography_id",
		"timeline_start", "timeline_end", "expected_calls", "completed_calls", "client_requirements",
	},
	Generated: []string{"created_at"},
	Scan: func(s crud.Scanner) (Project, error) {
		var p Project
		var userID, companyID, geographyID sql.NullInt64
		var requirements sql.NullString
		err := s.Scan(&p.ID, &p.Name, &userID, &p.Closed, &companyID, &geographyID,
			&p.TimelineStart, &p.TimelineEnd, &p.ExpectedCalls, &p.CompletedCalls, &requirements, &p.CreatedAt)
		if err != nil {
			return Project{}, err
		}
		p.UserID = nullInt(userID)
		p.ClientCompanyID = nullInt(companyID)
		p.GeographyID = nullInt(geographyID)
		p.ClientRequirements = nullString(requirements)
		return p, nil
	},
	Values: func(p Project) []any {
		return []any{
			p.Name, p.UserID, p.Closed, p.ClientCompanyID, p.GeographyID,
			p.TimelineStart, p.TimelineEnd, p.ExpectedCalls, p.CompletedCalls, p.ClientRequirements,
		}
	},
}

func newProjectResource(store crud.Store[Project]) *crud.Resource[Project, ProjectInput] {
	return &crud.Resource[Project, ProjectInput]{
		Name:  "project",
		Path:  "/projects",
		Store: store,
		FromModel: func(p Project) ProjectInput {
			closed, expected, completed := p.Closed, p.ExpectedCalls, p.CompletedCalls
			return ProjectInput{
				Name:               p.Name,
				UserID:             p.UserID,
				Status:             &closed,
				ClientCompanyID:    p.ClientCompanyID,
				GeographyID:        p.GeographyID,
				TimelineStart:      p.TimelineStart.Format(DateLayout),
				TimelineEnd:        p.TimelineEnd.Format(DateLayout),
				ExpectedCalls:      &expected,
				CompletedCalls:     &completed,
				ClientRequirements: p.ClientRequirements,
			}
		},
		Check: func(_ context.Context, in *ProjectInput, _ *Project) validate.Errors {
			errs := validate.Errors{}
			if in.TimelineStart != "" {
				if _, err := parseDate(in.TimelineStart); err != nil {
					errs.Add("timeline_start", dateFormatMessage)
				}
			}
			if in.TimelineEnd != "" {
				if _, err := parseDate(in.TimelineEnd); err != nil {
					errs.Add("timeline_end", dateFormatMessage)
				}
			}
			return errs
		},
		ToModel: func(_ context.Context, in ProjectInput, existing *Project) (Project, error) {
			start, err := parseDate(in.TimelineStart)
			if err != nil {
				return Project{}, validate.Errors{"timeline_start": dateFormatMessage}
			}
			end, err := parseDate(in.TimelineEnd)
			if err != nil {
				return Project{}, validate.Errors{"timeline_end": dateFormatMessage}
			}
			p := Project{
				Name:               strings.TrimSpace(in.Name),
				UserID:             in.UserID,
				Closed:             boolOr(in.Status, false),
				ClientCompanyID:    in.ClientCompanyID,
				GeographyID:        in.GeographyID,
				TimelineStart:      start,
				TimelineEnd:        end,
				ExpectedCalls:      *in.ExpectedCalls,
				CompletedCalls:     int64Or(in.CompletedCalls, 0),
				ClientRequirements: in.ClientRequirements,
			}
			if existing != nil {
				p.CreatedAt = existing.CreatedAt
			}
			return p, nil
		},
		Present: func(p Project) any {
			return gin.H{
				"project_id":          p.ID,
				"project_name":        p.Name,
				"user_id":             p.UserID,
				"status":              p.Closed,
				"client_company_id":   p.ClientCompanyID,
				"geography_id":        p.GeographyID,
				"timeline_start":      p.TimelineStart.Format(DateLayout),
				"timeline_end":        p.TimelineEnd.Format(DateLayout),
				"expected_calls":      p.ExpectedCalls,
				"completed_calls":     p.CompletedCalls,
				"client_requirements": p.ClientRequirements,
				"created_at":          p.CreatedAt,
			}
		},
	}
}

type Geography struct {
	ID       int64
	Country  string
	City     string
	Timezone string
}

type GeographyInput struct {
	Country  string `json:"country" validate:"required,max=100"`
	City     string `json:"city" validate:"required,max=100"`
	Timezone string `json:"timezone" validate:"required,max=100"`
}

var GeographyTable = crud.Table[Geography]{
	Name:    "geographies",
	Key:     "geography_id",
	Columns: []string{"country", "city", "timezone"},
	Scan: func(s crud.Scanner) (Geography, error) {
		var g Geography
		err := s.Scan(&g.ID, &g.Country, &g.City, &g.Timezone)
		return g, err
	},
	Values: func(g Geography) []any { return []any{g.Country, g.City, g.Timezone} },
}

func newGeographyResource(store crud.Store[Geography]) *crud.Resource[Geography, GeographyInput] {
	return &crud.Resource[Geography, GeographyInput]{
		Name:  "geography",
		Path:  "/projects_geography",
		Store: store,
		FromModel: func(g Geography) GeographyInput {
			return GeographyInput{Country: g.Country, City: g.City, Timezone: g.Timezone}
		},
		ToModel: func(_ context.Context, in GeographyInput, _ *Geography) (Geography, error) {
			return Geography{
				Country:  strings.TrimSpace(in.Country),
				City:     strings.TrimSpace(in.City),
				Timezone: strings.TrimSpace(in.Timezone),
			}, nil
		},
		Present: func(g Geography) any {
			return gin.H{"geography_id": g.ID, "country": g.Country, "city": g.City, "timezone": g.Timezone}
		},
	}
}
