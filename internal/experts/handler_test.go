package experts

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"ops-backend/internal/shared/crud"
	"ops-backend/internal/shared/crud/crudtest"
	"ops-backend/internal/shared/storage/db"
	"ops-backend/internal/shared/validate"
)

type fixture struct {
	router      *gin.Engine
	experts     *crudtest.Store[Expert]
	experiences *crudtest.Store[Experience]
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	f := fixture{
		experts:     crudtest.NewStore(func(e *Expert, id int64) { e.ID = id }),
		experiences: crudtest.NewStore(func(x *Experience, id int64) { x.ID = id }),
	}
	f.router = gin.New()
	NewHandler(f.experts, f.experiences).RegisterRoutes(f.router)
	return f
}

func call(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var payload map[string]any
	if w.Body.Len() > 0 && w.Body.Bytes()[0] == '{' {
		if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
			t.Fatalf("decode: %v", err)
		}
	}
	return w, payload
}

func fieldErrors(t *testing.T, payload map[string]any) map[string]any {
	t.Helper()
	env, ok := payload["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error envelope, got %v", payload)
	}
	d, _ := env["details"].(map[string]any)
	return d
}

const janeDoe = `{"full_name":"Jane Doe","industry":"Finance","country_of_residence":"Singapore","email":"jane@x.com","expert_cost":500}`

func TestCreateExpertJaneDoe(t *testing.T) {
	f := newFixture(t)

	w, payload := call(t, f.router, http.MethodPost, "/experts/", janeDoe)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if payload["expert_id"] != float64(1) || payload["email_confirmed"] != false {
		t.Fatalf("unexpected payload: %v", payload)
	}
	if payload["phone_number"] != nil || payload["linkedIn_profile_link"] != nil {
		t.Fatalf("expected optional fields null: %v", payload)
	}
}

func TestPatchExpertRejectsShortPhone(t *testing.T) {
	f := newFixture(t)
	if w, _ := call(t, f.router, http.MethodPost, "/experts/", janeDoe); w.Code != http.StatusCreated {
		t.Fatalf("seed failed: %d", w.Code)
	}

	w, payload := call(t, f.router, http.MethodPatch, "/experts/1/", `{"phone_number":"12345"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if fieldErrors(t, payload)["phone_number"] != validate.PhoneMessage {
		t.Fatalf("unexpected details: %v", payload)
	}
	stored, _ := f.experts.Get(context.Background(), 1)
	if stored.PhoneNumber != nil {
		t.Fatalf("expected phone unchanged, got %v", *stored.PhoneNumber)
	}

	w, payload = call(t, f.router, http.MethodPatch, "/experts/1/", `{"phone_number":"+6281234567"}`)
	if w.Code != http.StatusOK || payload["phone_number"] != "+6281234567" || payload["full_name"] != "Jane Doe" {
		t.Fatalf("unexpected response %d: %v", w.Code, payload)
	}
}

func TestCreateExpertWithBadPhonePersistsNothing(t *testing.T) {
	f := newFixture(t)
	call(t, f.router, http.MethodPost, "/experts/", janeDoe)

	body := `{"full_name":"John Roe","industry":"Energy","country_of_residence":"Indonesia","email":"john@x.com","expert_cost":100,"phone_number":"phone-me"}`
	w, _ := call(t, f.router, http.MethodPost, "/experts/", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if f.experts.Len() != 1 {
		t.Fatalf("expected only the first expert stored, got %d", f.experts.Len())
	}
}

func TestCreateExpertValidatesFields(t *testing.T) {
	f := newFixture(t)
	w, payload := call(t, f.router, http.MethodPost, "/experts/", `{"full_name":"X","email":"nope","expert_cost":-1}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	d := fieldErrors(t, payload)
	want := map[string]string{
		"industry":             "This field is required.",
		"country_of_residence": "This field is required.",
		"email":                "Enter a valid email address.",
		"expert_cost":          "Ensure this value is greater than or equal to 0.",
	}
	for field, msg := range want {
		if d[field] != msg {
			t.Fatalf("%s: expected %q, got %v", field, msg, d[field])
		}
	}
}

func TestCreateExpertBlankPhoneStoredAsNull(t *testing.T) {
	f := newFixture(t)
	body := `{"full_name":"Jane Doe","industry":"Finance","country_of_residence":"Singapore","email":"jane@x.com","expert_cost":500,"phone_number":"  "}`
	w, payload := call(t, f.router, http.MethodPost, "/experts/", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if payload["phone_number"] != nil {
		t.Fatalf("expected null phone, got %v", payload["phone_number"])
	}
	stored, _ := f.experts.Get(context.Background(), 1)
	if stored.PhoneNumber != nil {
		t.Fatalf("expected stored phone nil, got %q", *stored.PhoneNumber)
	}
}

func TestCreateExpertEnforcesColumnLimits(t *testing.T) {
	f := newFixture(t)
	cases := []struct {
		name, body, field, msg string
	}{
		{
			"phone longer than column",
			`{"full_name":"Jane Doe","industry":"Finance","country_of_residence":"Singapore","email":"jane@x.com","expert_cost":500,"phone_number":"+123456789012345"}`,
			"phone_number", "Ensure this field has no more than 15 characters.",
		},
		{
			"cost beyond integer",
			`{"full_name":"Jane Doe","industry":"Finance","country_of_residence":"Singapore","email":"jane@x.com","expert_cost":5000000000}`,
			"expert_cost", "Ensure this value is less than or equal to 2147483647.",
		},
		{
			"credits beyond integer",
			`{"full_name":"Jane Doe","industry":"Finance","country_of_residence":"Singapore","email":"jane@x.com","expert_cost":500,"number_of_credits":2147483648}`,
			"number_of_credits", "Ensure this value is less than or equal to 2147483647.",
		},
	}
	for _, tc := range cases {
		w, payload := call(t, f.router, http.MethodPost, "/experts/", tc.body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", tc.name, w.Code)
		}
		if got := fieldErrors(t, payload)[tc.field]; got != tc.msg {
			t.Fatalf("%s: expected %q, got %v", tc.name, tc.msg, got)
		}
	}
	if f.experts.Len() != 0 {
		t.Fatalf("expected nothing stored, got %d", f.experts.Len())
	}

	ok := `{"full_name":"Jane Doe","industry":"Finance","country_of_residence":"Singapore","email":"jane@x.com","expert_cost":2147483647,"phone_number":"+12345678901234"}`
	if w, _ := call(t, f.router, http.MethodPost, "/experts/", ok); w.Code != http.StatusCreated {
		t.Fatalf("expected boundary values accepted, got %d: %s", w.Code, w.Body.String())
	}
}

type conflictStore struct {
	crud.Store[Expert]
	err error
}

func (s conflictStore) Create(context.Context, Expert) (Expert, error) { return Expert{}, s.err }

func TestDuplicateEmailBecomesFieldError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	store := conflictStore{err: &db.ConstraintError{Kind: db.Unique, Table: "experts", Column: "email"}}
	NewHandler(store, crudtest.NewStore(func(x *Experience, id int64) { x.ID = id })).RegisterRoutes(r)

	w, payload := call(t, r, http.MethodPost, "/experts/", janeDoe)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if fieldErrors(t, payload)["email"] != "expert with this email already exists." {
		t.Fatalf("unexpected details: %v", payload)
	}
}

func TestExperienceScenario(t *testing.T) {
	f := newFixture(t)
	call(t, f.router, http.MethodPost, "/experts/", janeDoe)

	w, payload := call(t, f.router, http.MethodPost, "/expert_experiences/",
		`{"expert_id":1,"company_name":"Acme","title":"Analyst","start_date":"2020-03-15","end_date":"present"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if payload["start_date"] != "03-2020" || payload["end_date"] != nil || payload["period"] != "03-2020 to present" {
		t.Fatalf("unexpected payload: %v", payload)
	}

	stored, err := f.experiences.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.StartDate.Format("2006-01-02") != "2020-03-01" || stored.EndDate != nil {
		t.Fatalf("unexpected stored experience: %+v", stored)
	}
}

func TestExperiencePatchKeepsDatesAndNormalizesEnd(t *testing.T) {
	f := newFixture(t)
	call(t, f.router, http.MethodPost, "/expert_experiences/",
		`{"expert_id":1,"company_name":"Acme","title":"Analyst","start_date":"03-2020"}`)

	w, payload := call(t, f.router, http.MethodPatch, "/expert_experiences/1/", `{"end_date":"28-02-2023"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if payload["start_date"] != "03-2020" || payload["end_date"] != "02-2023" {
		t.Fatalf("unexpected payload: %v", payload)
	}
	stored, _ := f.experiences.Get(context.Background(), 1)
	if stored.EndDate == nil || stored.EndDate.Day() != 1 {
		t.Fatalf("expected end date on the first of the month, got %v", stored.EndDate)
	}
}

func TestExperienceRejectsBadDates(t *testing.T) {
	f := newFixture(t)
	w, payload := call(t, f.router, http.MethodPost, "/expert_experiences/",
		`{"expert_id":1,"company_name":"Acme","title":"Analyst","start_date":"March 2020","end_date":"soon"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	d := fieldErrors(t, payload)
	if d["start_date"] != DateFormatMessage || d["end_date"] != DateFormatMessage {
		t.Fatalf("unexpected details: %v", d)
	}
	if f.experiences.Len() != 0 {
		t.Fatalf("expected nothing stored")
	}
}
