package projects

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"ops-backend/internal/shared/crud"
)

// CompanyOfInterest is a company whose current or former staff the client
// wants to hear from. New entries count as past unless marked current.
type CompanyOfInterest struct {
	ID        int64
	ProjectID *int64
	Name      string
	IsPast    bool
	IsCurrent bool
}

type CompanyOfInterestInput struct {
	ProjectID *int64 `json:"project_id"`
	Name      string `json:"company_name" validate:"required,max=150"`
	IsPast    *bool  `json:"is_past"`
	IsCurrent *bool  `json:"is_current"`
}

var CompanyOfInterestTable = crud.Table[CompanyOfInterest]{
	Name:    "companies_of_interest",
	Key:     "company_of_interest_id",
	Columns: []string{"project_id", "company_name", "is_past", "is_current"},
	Scan: func(s crud.Scanner) (CompanyOfInterest, error) {
		var c CompanyOfInterest
		var project sql.NullInt64
		if err := s.Scan(&c.ID, &project, &c.Name, &c.IsPast, &c.IsCurrent); err != nil {
			return CompanyOfInterest{}, err
		}
		c.ProjectID = nullInt(project)
		return c, nil
	},
	Values: func(c CompanyOfInterest) []any { return []any{c.ProjectID, c.Name, c.IsPast, c.IsCurrent} },
}

func newCompanyOfInterestResource(store crud.Store[CompanyOfInterest]) *crud.Resource[CompanyOfInterest, CompanyOfInterestInput] {
	return &crud.Resource[CompanyOfInterest, CompanyOfInterestInput]{
		Name:  "company of interest",
		Path:  "/companies_of_interest",
		Store: store,
		FromModel: func(c CompanyOfInterest) CompanyOfInterestInput {
			past, current := c.IsPast, c.IsCurrent
			return CompanyOfInterestInput{ProjectID: c.ProjectID, Name: c.Name, IsPast: &past, IsCurrent: &current}
		},
		ToModel: func(_ context.Context, in CompanyOfInterestInput, _ *CompanyOfInterest) (CompanyOfInterest, error) {
			return CompanyOfInterest{
				ProjectID: in.ProjectID,
				Name:      strings.TrimSpace(in.Name),
				IsPast:    boolOr(in.IsPast, true),
				IsCurrent: boolOr(in.IsCurrent, false),
			}, nil
		},
		Present: func(c CompanyOfInterest) any {
			return gin.H{
				"company_of_interest_id": c.ID,
				"project_id":             c.ProjectID,
				"company_name":           c.Name,
				"is_past":                c.IsPast,
				"is_current":             c.IsCurrent,
			}
		},
	}
}

// ClientTeam puts a client member on a project.
type ClientTeam struct {
	ID        int64
	MemberID  *int64
	ProjectID *int64
}

type ClientTeamInput struct {
	MemberID  *int64 `json:"client_member_id"`
	ProjectID *int64 `json:"project_id"`
}

var ClientTeamTable = crud.Table[ClientTeam]{
	Name:    "client_teams",
	Key:     "client_team_id",
	Columns: []string{"client_member_id", "project_id"},
	Scan: func(s crud.Scanner) (ClientTeam, error) {
		var t ClientTeam
		var member, project sql.NullInt64
		if err := s.Scan(&t.ID, &member, &project); err != nil {
			return ClientTeam{}, err
		}
		t.MemberID = nullInt(member)
		t.ProjectID = nullInt(project)
		return t, nil
	},
	Values: func(t ClientTeam) []any { return []any{t.MemberID, t.ProjectID} },
}

func newClientTeamResource(store crud.Store[ClientTeam]) *crud.Resource[ClientTeam, ClientTeamInput] {
	return &crud.Resource[ClientTeam, ClientTeamInput]{
		Name:  "client team",
		Path:  "/project_client_team",
		Store: store,
		FromModel: func(t ClientTeam) ClientTeamInput {
			return ClientTeamInput{MemberID: t.MemberID, ProjectID: t.ProjectID}
		},
		ToModel: func(_ context.Context, in ClientTeamInput, _ *ClientTeam) (ClientTeam, error) {
			return ClientTeam{MemberID: in.MemberID, ProjectID: in.ProjectID}, nil
		},
		Present: func(t ClientTeam) any {
			return gin.H{"client_team_id": t.ID, "client_member_id": t.MemberID, "project_id": t.ProjectID}
		},
	}
}

// Pipeline records an expert under consideration for a project.
type Pipeline struct {
	ID        int64
	ExpertID  *int64
	ProjectID *int64
	UserID    *int64
	CreatedAt time.Time
}

type PipelineInput struct {
	ExpertID  *int64 `json:"expert_id"`
	ProjectID *int64 `json:"project_id"`
	UserID    *int64 `json:"user_id"`
}

var PipelineTable = crud.Table[Pipeline]{
	Name:      "project_pipelines",
	Key:       "project_pipeline_id",
	Columns:   []string{"expert_id", "project_id", "user_id"},
	Generated: []string{"created_at"},
	Scan: func(s crud.Scanner) (Pipeline, error) {
		var p Pipeline
		var expert, project, user sql.NullInt64
		if err := s.Scan(&p.ID, &expert, &project, &user, &p.CreatedAt); err != nil {
			return Pipeline{}, err
		}
		p.ExpertID = nullInt(expert)
		p.ProjectID = nullInt(project)
		p.UserID = nullInt(user)
		return p, nil
	},
	Values: func(p Pipeline) []any { return []any{p.ExpertID, p.ProjectID, p.UserID} },
}

func newPipelineResource(store crud.Store[Pipeline]) *crud.Resource[Pipeline, PipelineInput] {
	return &crud.Resource[Pipeline, PipelineInput]{
		Name:  "project pipeline",
		Path:  "/project_pipeline",
		Store: store,
		FromModel: func(p Pipeline) PipelineInput {
			return PipelineInput{ExpertID: p.ExpertID, ProjectID: p.ProjectID, UserID: p.UserID}
		},
		ToModel: func(_ context.Context, in PipelineInput, existing *Pipeline) (Pipeline, error) {
			p := Pipeline{ExpertID: in.ExpertID, ProjectID: in.ProjectID, UserID: in.UserID}
			if existing != nil {
				p.CreatedAt = existing.CreatedAt
			}
			return p, nil
		},
		Present: func(p Pipeline) any {
			return gin.H{
				"project_pipeline_id": p.ID,
				"expert_id":           p.ExpertID,
				"project_id":          p.ProjectID,
				"user_id":             p.UserID,
				"created_at":          p.CreatedAt,
			}
		},
	}
}

// ExpertLink holds the biography tailored for one expert on one project.
type ExpertLink struct {
	ID        int64
	ProjectID *int64
	ExpertID  *int64
	Biograph  string
}

type ExpertLinkInput struct {
	ProjectID *int64 `json:"project_id"`
	ExpertID  *int64 `json:"expert_id"`
	Biograph  string `json:"biograph" validate:"required"`
}

var ExpertLinkTable = crud.Table[ExpertLink]{
	Name:    "project_with_experts",
	Key:     "project_with_experts_id",
	Columns: []string{"project_id", "expert_id", "biograph"},
	Scan: func(s crud.Scanner) (ExpertLink, error) {
		var l ExpertLink
		var project, expert sql.NullInt64
		if err := s.Scan(&l.ID, &project, &expert, &l.Biograph); err != nil {
			return ExpertLink{}, err
		}
		l.ProjectID = nullInt(project)
		l.ExpertID = nullInt(expert)
		return l, nil
	},
	Values: func(l ExpertLink) []any { return []any{l.ProjectID, l.ExpertID, l.Biograph} },
}

func newExpertLinkResource(store crud.Store[ExpertLink]) *crud.Resource[ExpertLink, ExpertLinkInput] {
	return &crud.Resource[ExpertLink, ExpertLinkInput]{
		Name:  "project with experts",
		Path:  "/project_with_experts",
		Store: store,
		FromModel: func(l ExpertLink) ExpertLinkInput {
			return ExpertLinkInput{ProjectID: l.ProjectID, ExpertID: l.ExpertID, Biograph: l.Biograph}
		},
		ToModel: func(_ context.Context, in ExpertLinkInput, _ *ExpertLink) (ExpertLink, error) {
			return ExpertLink{ProjectID: in.ProjectID, ExpertID: in.ExpertID, Biograph: strings.TrimSpace(in.Biograph)}, nil
		},
		Present: func(l ExpertLink) any {
			return gin.H{
				"project_with_experts_id": l.ID,
				"project_id":              l.ProjectID,
				"expert_id":               l.ExpertID,
				"biograph":                l.Biograph,
			}
		},
	}
}
