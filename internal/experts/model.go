package experts

import (
	"database/sql"
	"time"

	"ops-backend/internal/shared/crud"
)

// Expert is a paid external consultant.
type Expert struct {
	ID                 int64
	FullName           string
	LinkedInProfile    *string
	Industry           string
	CountryOfResidence string
	Email              string
	Cost               int64
	UserID             *int64
	PhoneNumber        *string
	Notes              *string
	EmailConfirmed     bool
	Credits            *int64
}

// Experience is one position in an expert's employment history. Dates are
// always the first of their month; a nil EndDate means the position is
// current.
type Experience struct {
	ID          int64
	ExpertID    int64
	CompanyName string
	Title       string
	StartDate   time.Time
	EndDate     *time.Time
}

var ExpertTable = crud.Table[Expert]{
	Name: "experts",
	Key:  "expert_id",
	Columns: []string{
		"full_name", "linkedin_profile_link", "industry", "country_of_residence", "email",
		"expert_cost", "user_id", "phone_number", "notes", "email_confirmed", "number_of_credits",
	},
	Scan: func(s crud.Scanner) (Expert, error) {
		var e Expert
		var linkedIn, phone, note sql.NullString
		var userID, credits sql.NullInt64
		err := s.Scan(&e.ID, &e.FullName, &linkedIn, &e.Industry, &e.CountryOfResidence, &e.Email,
			&e.Cost, &userID, &phone, &note, &e.EmailConfirmed, &credits)
		if err != nil {
			return Expert{}, err
		}
		e.LinkedInProfile = nullString(linkedIn)
		e.PhoneNumber = nullString(phone)
		e.Notes = nullString(note)
		e.UserID = nullInt(userID)
		e.Credits = nullInt(credits)
		return e, nil
	},
	Values: func(e Expert) []any {
		return []any{
			e.FullName, e.LinkedInProfile, e.Industry, e.CountryOfResidence, e.Email,
			e.Cost, e.UserID, e.PhoneNumber, e.Notes, e.EmailConfirmed, e.Credits,
		}
	},
}

var ExperienceTable = crud.Table[Experience]{
	Name:    "experiences",
	Key:     "experience_id",
	Columns: []string{"expert_id", "company_name", "title", "start_date", "end_date"},
	Scan: func(s crud.Scanner) (Experience, error) {
		var x Experience
		var end sql.NullTime
		if err := s.Scan(&x.ID, &x.ExpertID, &x.CompanyName, &x.Title, &x.StartDate, &end); err != nil {
			return Experience{}, err
		}
		x.StartDate = NormalizeMonth(x.StartDate)
		if end.Valid {
			t := NormalizeMonth(end.Time)
			x.EndDate = &t
		}
		return x, nil
	},
	Values: func(x Experience) []any {
		return []any{x.ExpertID, x.CompanyName, x.Title, x.StartDate, x.EndDate}
	},
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func nullInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}
