// Package clients manages client companies and the people who work there.
package clients

import (
	"context"
	"database/sql"
	"strings"

	"github.com/gin-gonic/gin"

	"ops-backend/internal/shared/crud"
)

type Company struct {
	ID   int64
	Name string
}

// Member is a contact at a client company. Deleting the company deletes
// its members.
type Member struct {
	ID          int64
	CompanyID   *int64
	Name        string
	Email       string
	PhoneNumber *string
}

type CompanyInput struct {
	Name string `json:"company_name" validate:"required,max=150"`
}

type MemberInput struct {
	CompanyID   *int64  `json:"client_company_id"`
	Name        string  `json:"client_name" validate:"required,max=150"`
	Email       string  `json:"client_email" validate:"required,email,max=254"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,max=15,phone"`
}

var CompanyTable = crud.Table[Company]{
	Name:    "client_companies",
	Key:     "client_company_id",
	Columns: []string{"company_name"},
	Scan: func(s crud.Scanner) (Company, error) {
		var c Company
		err := s.Scan(&c.ID, &c.Name)
		return c, err
	},
	Values: func(c Company) []any { return []any{c.Name} },
}

var MemberTable = crud.Table[Member]{
	Name:    "client_members",
	Key:     "client_member_id",
	Columns: []string{"client_company_id", "client_name", "client_email", "phone_number"},
	Scan: func(s crud.Scanner) (Member, error) {
		var m Member
		var company sql.NullInt64
		var phone sql.NullString
		if err := s.Scan(&m.ID, &company, &m.Name, &m.Email, &phone); err != nil {
			return Member{}, err
		}
		if company.Valid {
			m.CompanyID = &company.Int64
		}
		if phone.Valid {
			m.PhoneNumber = &phone.String
		}
		return m, nil
	},
	Values: func(m Member) []any {
		return []any{m.CompanyID, m.Name, m.Email, m.PhoneNumber}
	},
}

type Handler struct {
	Companies *crud.Resource[Company, CompanyInput]
	Members   *crud.Resource[Member, MemberInput]
}

func NewHandler(companies crud.Store[Company], members crud.Store[Member]) *Handler {
	return &Handler{
		Companies: &crud.Resource[Company, CompanyInput]{
			Name:      "client company",
			Path:      "/project_client_company",
			Store:     companies,
			FromModel: func(c Company) CompanyInput { return CompanyInput{Name: c.Name} },
			ToModel: func(_ context.Context, in CompanyInput, _ *Company) (Company, error) {
				return Company{Name: strings.TrimSpace(in.Name)}, nil
			},
			Present: func(c Company) any {
				return gin.H{"client_company_id": c.ID, "company_name": c.Name}
			},
		},
		Members: &crud.Resource[Member, MemberInput]{
			Name:  "client member",
			Path:  "/client_members",
			Store: members,
			FromModel: func(m Member) MemberInput {
				return MemberInput{CompanyID: m.CompanyID, Name: m.Name, Email: m.Email, PhoneNumber: m.PhoneNumber}
			},
			ToModel: memberToModel,
			Present: func(m Member) any {
				return gin.H{
					"client_member_id":  m.ID,
					"client_company_id": m.CompanyID,
					"client_name":       m.Name,
					"client_email":      m.Email,
					"phone_number":      m.PhoneNumber,
				}
			},
		},
	}
}

func (h *Handler) RegisterRoutes(rg gin.IRouter, handlers ...gin.HandlerFunc) {
	h.Companies.Register(rg, handlers...)
	h.Members.Register(rg, handlers...)
}

func memberToModel(_ context.Context, in MemberInput, _ *Member) (Member, error) {
	m := Member{
		CompanyID: in.CompanyID,
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.TrimSpace(in.Email),
	}
	if in.PhoneNumber != nil {
		if phone := strings.TrimSpace(*in.PhoneNumber); phone != "" {
			m.PhoneNumber = &phone
		}
	}
	return m, nil
}
