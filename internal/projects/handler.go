// Package projects manages client engagements and their sub-resources:
// geographies, screening questions and answers, companies of interest,
// uploaded files, client teams, pipelines, publications and expert links.
package projects

import (
	"database/sql"
	"fmt"

	"github.com/gin-gonic/gin"

	"ops-backend/internal/shared/crud"
	"ops-backend/internal/shared/storage/object"
)

// Stores holds one store per project entity.
type Stores struct {
	Projects            crud.Store[Project]
	Geographies         crud.Store[Geography]
	Questions           crud.Store[Question]
	Answers             crud.Store[Answer]
	CompaniesOfInterest crud.Store[CompanyOfInterest]
	Files               crud.Store[File]
	ClientTeams         crud.Store[ClientTeam]
	Pipelines           crud.Store[Pipeline]
	Statuses            crud.Store[PublishedStatus]
	Publications        crud.Store[Publication]
	ExpertLinks         crud.Store[ExpertLink]
}

// NewPGStores backs every project entity with Postgres.
func NewPGStores(database *sql.DB) (Stores, error) {
	var (
		s   Stores
		err error
	)
	if s.Projects, err = pgStore(database, ProjectTable); err != nil {
		return Stores{}, err
	}
	if s.Geographies, err = pgStore(database, GeographyTable); err != nil {
		return Stores{}, err
	}
	if s.Questions, err = pgStore(database, QuestionTable); err != nil {
		return Stores{}, err
	}
	if s.Answers, err = pgStore(database, AnswerTable); err != nil {
		return Stores{}, err
	}
	if s.CompaniesOfInterest, err = pgStore(database, CompanyOfInterestTable); err != nil {
		return Stores{}, err
	}
	if s.Files, err = pgStore(database, FileTable); err != nil {
		return Stores{}, err
	}
	if s.ClientTeams, err = pgStore(database, ClientTeamTable); err != nil {
		return Stores{}, err
	}
	if s.Pipelines, err = pgStore(database, PipelineTable); err != nil {
		return Stores{}, err
	}
	if s.Statuses, err = pgStore(database, PublishedStatusTable); err != nil {
		return Stores{}, err
	}
	if s.Publications, err = pgStore(database, PublicationTable); err != nil {
		return Stores{}, err
	}
	if s.ExpertLinks, err = pgStore(database, ExpertLinkTable); err != nil {
		return Stores{}, err
	}
	return s, nil
}

func pgStore[T any](database *sql.DB, table crud.Table[T]) (crud.Store[T], error) {
	store, err := crud.NewPGStore(database, table)
	if err != nil {
		return nil, fmt.Errorf("%s store: %w", table.Name, err)
	}
	return store, nil
}

type Handler struct {
	Objects object.ObjectStore

	Projects            *crud.Resource[Project, ProjectInput]
	Geographies         *crud.Resource[Geography, GeographyInput]
	Questions           *crud.Resource[Question, QuestionInput]
	Answers             *crud.Resource[Answer, AnswerInput]
	CompaniesOfInterest *crud.Resource[CompanyOfInterest, CompanyOfInterestInput]
	Files               *crud.Resource[File, FileInput]
	ClientTeams         *crud.Resource[ClientTeam, ClientTeamInput]
	Pipelines           *crud.Resource[Pipeline, PipelineInput]
	Statuses            *crud.Resource[PublishedStatus, PublishedStatusInput]
	Publications        *crud.Resource[Publication, PublicationInput]
	ExpertLinks         *crud.Resource[ExpertLink, ExpertLinkInput]
}

// NewHandler builds the project resources. objects receives file uploads.
func NewHandler(stores Stores, objects object.ObjectStore) *Handler {
	return &Handler{
		Objects:             objects,
		Projects:            newProjectResource(stores.Projects),
		Geographies:         newGeographyResource(stores.Geographies),
		Questions:           newQuestionResource(stores.Questions),
		Answers:             newAnswerResource(stores.Answers),
		CompaniesOfInterest: newCompanyOfInterestResource(stores.CompaniesOfInterest),
		Files:               newFileResource(stores.Files, objects),
		ClientTeams:         newClientTeamResource(stores.ClientTeams),
		Pipelines:           newPipelineResource(stores.Pipelines),
		Statuses:            newPublishedStatusResource(stores.Statuses),
		Publications:        newPublicationResource(stores.Publications),
		ExpertLinks:         newExpertLinkResource(stores.ExpertLinks),
	}
}

func (h *Handler) RegisterRoutes(rg gin.IRouter, handlers ...gin.HandlerFunc) {
	h.Projects.Register(rg, handlers...)
	h.Geographies.Register(rg, handlers...)
	h.Questions.Register(rg, handlers...)
	h.Answers.Register(rg, handlers...)
	h.CompaniesOfInterest.Register(rg, handlers...)
	files := h.Files.Register(rg, handlers...)
	files.GET("/:id/download/", h.downloadFile)
	h.ClientTeams.Register(rg, handlers...)
	h.Pipelines.Register(rg, handlers...)
	h.Statuses.Register(rg, handlers...)
	h.Publications.Register(rg, handlers...)
	h.ExpertLinks.Register(rg, handlers...)
}
