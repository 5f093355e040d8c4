package experts

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"ops-backend/internal/shared/crud"
	"ops-backend/internal/shared/validate"
)

// ExpertInput is the writable shape of an expert.
type ExpertInput struct {
	FullName           string  `json:"full_name" validate:"required,max=120"`
	LinkedInProfile    *string `json:"linkedIn_profile_link" validate:"omitempty,max=255"`
	Industry           string  `json:"industry" validate:"required,max=200"`
	CountryOfResidence string  `json:"country_of_residence" validate:"required,max=30"`
	Email              string  `json:"email" validate:"required,email,max=254"`
	Cost               *int64  `json:"expert_cost" validate:"required,gte=0,lte=2147483647"`
	UserID             *int64  `json:"user_id"`
	PhoneNumber        *string `json:"phone_number" validate:"omitempty,max=15,phone"`
	Notes              *string `json:"notes" validate:"omitempty,max=300"`
	EmailConfirmed     *bool   `json:"email_confirmed"`
	Credits            *int64  `json:"number_of_credits" validate:"omitempty,gte=0,lte=2147483647"`
}

// ExperienceInput is the writable shape of an experience. Dates are taken as
// text so every accepted layout can be tried.
type ExperienceInput struct {
	ExpertID    *int64  `json:"expert_id" validate:"required"`
	CompanyName string  `json:"company_name" validate:"required,max=120"`
	Title       string  `json:"title" validate:"required,max=255"`
	StartDate   string  `json:"start_date" validate:"required"`
	EndDate     *string `json:"end_date"`
}

type Handler struct {
	Experts     *crud.Resource[Expert, ExpertInput]
	Experiences *crud.Resource[Experience, ExperienceInput]
}

func NewHandler(experts crud.Store[Expert], experiences crud.Store[Experience]) *Handler {
	return &Handler{
		Experts: &crud.Resource[Expert, ExpertInput]{
			Name:      "expert",
			Path:      "/experts",
			Store:     experts,
			FromModel: expertFromModel,
			ToModel:   expertToModel,
			Present:   presentExpert,
			Fields:    map[string]string{"linkedin_profile_link": "linkedIn_profile_link"},
		},
		Experiences: &crud.Resource[Experience, ExperienceInput]{
			Name:      "experience",
			Path:      "/expert_experiences",
			Store:     experiences,
			FromModel: experienceFromModel,
			ToModel:   experienceToModel,
			Present:   presentExperience,
			Check:     checkExperience,
		},
	}
}

func (h *Handler) RegisterRoutes(rg gin.IRouter, handlers ...gin.HandlerFunc) {
	h.Experts.Register(rg, handlers...)
	h.Experiences.Register(rg, handlers...)
}

func expertFromModel(e Expert) ExpertInput {
	cost, confirmed := e.Cost, e.EmailConfirmed
	return ExpertInput{
		FullName:           e.FullName,
		LinkedInProfile:    e.LinkedInProfile,
		Industry:           e.Industry,
		CountryOfResidence: e.CountryOfResidence,
		Email:              e.Email,
		Cost:               &cost,
		UserID:             e.UserID,
		PhoneNumber:        e.PhoneNumber,
		Notes:              e.Notes,
		EmailConfirmed:     &confirmed,
		Credits:            e.Credits,
	}
}

func expertToModel(_ context.Context, in ExpertInput, _ *Expert) (Expert, error) {
	e := Expert{
		FullName:           strings.TrimSpace(in.FullName),
		LinkedInProfile:    blankToNil(in.LinkedInProfile),
		Industry:           strings.TrimSpace(in.Industry),
		CountryOfResidence: strings.TrimSpace(in.CountryOfResidence),
		Email:              strings.TrimSpace(in.Email),
		Cost:               *in.Cost,
		UserID:             in.UserID,
		PhoneNumber:        blankToNil(in.PhoneNumber),
		Notes:              blankToNil(in.Notes),
		Credits:            in.Credits,
	}
	if in.EmailConfirmed != nil {
		e.EmailConfirmed = *in.EmailConfirmed
	}
	return e, nil
}

func presentExpert(e Expert) any {
	return gin.H{
		"expert_id":             e.ID,
		"full_name":             e.FullName,
		"linkedIn_profile_link": e.LinkedInProfile,
		"industry":              e.Industry,
		"country_of_residence":  e.CountryOfResidence,
		"email":                 e.Email,
		"expert_cost":           e.Cost,
		"user_id":               e.UserID,
		"phone_number":          e.PhoneNumber,
		"notes":                 e.Notes,
		"email_confirmed":       e.EmailConfirmed,
		"number_of_credits":     e.Credits,
	}
}

func experienceFromModel(x Experience) ExperienceInput {
	expertID := x.ExpertID
	in := ExperienceInput{
		ExpertID:    &expertID,
		CompanyName: x.CompanyName,
		Title:       x.Title,
		StartDate:   x.StartDate.Format(MonthLayout),
	}
	if x.EndDate != nil {
		end := x.EndDate.Format(MonthLayout)
		in.EndDate = &end
	}
	return in
}

func checkExperience(_ context.Context, in *ExperienceInput, _ *Experience) validate.Errors {
	errs := validate.Errors{}
	if in.StartDate != "" {
		if _, err := ParseMonthDate(in.StartDate); err != nil {
			errs.Add("start_date", DateFormatMessage)
		}
	}
	if _, err := ParseEndDate(in.EndDate); err != nil {
		errs.Add("end_date", DateFormatMessage)
	}
	return errs
}

func experienceToModel(_ context.Context, in ExperienceInput, _ *Experience) (Experience, error) {
	start, err := ParseMonthDate(in.StartDate)
	if err != nil {
		return Experience{}, validate.Errors{"start_date": DateFormatMessage}
	}
	end, err := ParseEndDate(in.EndDate)
	if err != nil {
		return Experience{}, validate.Errors{"end_date": DateFormatMessage}
	}
	return Experience{
		ExpertID:    *in.ExpertID,
		CompanyName: strings.TrimSpace(in.CompanyName),
		Title:       strings.TrimSpace(in.Title),
		StartDate:   start,
		EndDate:     end,
	}, nil
}

func presentExperience(x Experience) any {
	var end any
	if x.EndDate != nil {
		end = x.EndDate.Format(MonthLayout)
	}
	return gin.H{
		"experience_id": x.ID,
		"expert_id":     x.ExpertID,
		"company_name":  x.CompanyName,
		"title":         x.Title,
		"start_date":    x.StartDate.Format(MonthLayout),
		"end_date":      end,
		"period":        Period(x.StartDate, x.EndDate),
	}
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
