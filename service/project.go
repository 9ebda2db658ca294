package service

import (
	"context"
	"strings"
	"time"

	"gorm.io/datatypes"

	"folio/common"
	"folio/models"
	"folio/repository"
)

type ProjectInput struct {
	Title           *string    `json:"title"`
	Slug            *string    `json:"slug"`
	Description     *string    `json:"description"`
	LongDescription *string    `json:"longDescription"`
	ImageURL        *string    `json:"imageUrl"`
	Gallery         []string   `json:"gallery"`
	RepositoryURL   *string    `json:"repositoryUrl"`
	LiveURL         *string    `json:"liveUrl"`
	Status          *string    `json:"status"`
	StartDate       *time.Time `json:"startDate"`
	EndDate         *time.Time `json:"endDate"`
	TagIDs          []string   `json:"tagIds"`
	FrameworkIDs    []string   `json:"frameworkIds"`
	LanguageIDs     []string   `json:"languageIds"`
	Published       *bool      `json:"published"`
	Featured        *bool      `json:"featured"`
	Visible         *bool      `json:"visible"`
	DisplayOrder    *int       `json:"displayOrder"`
}

func (in *ProjectInput) apply(p *models.Project) changes {
	ch := changes{}
	ch.str("title", &p.Title, in.Title)
	ch.str("slug", &p.Slug, in.Slug)
	ch.str("description", &p.Description, in.Description)
	ch.str("long_description", &p.LongDescription, in.LongDescription)
	ch.str("image_url", &p.ImageURL, in.ImageURL)
	ch.str("repository_url", &p.RepositoryURL, in.RepositoryURL)
	ch.str("live_url", &p.LiveURL, in.LiveURL)
	if in.Status != nil {
		p.Status = models.ProjectStatus(*in.Status)
		ch["status"] = p.Status
	}
	if in.Gallery != nil {
		p.Gallery = datatypes.JSONSlice[string](trimList(in.Gallery))
		ch["gallery"] = p.Gallery
	}
	ch.date("start_date", &p.StartDate, in.StartDate)
	ch.date("end_date", &p.EndDate, in.EndDate)
	ch.flag("featured", &p.Featured, in.Featured)
	ch.flag("visible", &p.Visible, in.Visible)
	ch.num("display_order", &p.DisplayOrder, in.DisplayOrder)
	if in.Published != nil {
		ch.flag("published", &p.Published, in.Published)
		if p.Published && p.PublishedAt == nil {
			now := time.Now()
			p.PublishedAt = &now
			ch["published_at"] = now
		}
	}
	return ch
}

type ProjectService struct {
	crud[models.Project]
	projects *repository.ProjectRepository
}

func NewProjectService(b Base, projects *repository.ProjectRepository) *ProjectService {
	return &ProjectService{crud: newCrud[models.Project](b, projects, "Project"), projects: projects}
}

func (s *ProjectService) ListPublished(ctx context.Context, userID string) ([]models.Project, error) {
	items, err := s.projects.FindPublished(ctx, userID)
	return nonNil(items), s.fail(ctx, "list published", err)
}

func (s *ProjectService) ListFeatured(ctx context.Context) ([]models.Project, error) {
	items, err := s.projects.FindFeatured(ctx)
	return nonNil(items), s.fail(ctx, "list featured", err)
}

func (s *ProjectService) GetBySlug(ctx context.Context, slug string) (*models.Project, error) {
	p, err := s.projects.FindBySlug(ctx, slug)
	return s.found(ctx, "get by slug", p, err)
}

func (s *ProjectService) Create(ctx context.Context, userID string, in ProjectInput) (*models.Project, error) {
	p := &models.Project{UserID: userID, Visible: true, Status: models.ProjectCompleted, Gallery: datatypes.JSONSlice[string]{}}
	in.apply(p)
	if p.Slug == "" {
		p.Slug = common.Slugify(p.Title)
	}
	if err := checkDates(p.StartDate, p.EndDate); err != nil {
		return nil, err
	}
	if err := s.checkSlug(ctx, p.Slug, ""); err != nil {
		return nil, err
	}
	return s.create(ctx, p, func(p *models.Project) string { return p.ID }, func(id string) error {
		return s.setTerms(ctx, id, in)
	})
}

func (s *ProjectService) Update(ctx context.Context, id string, in ProjectInput) (*models.Project, error) {
	var after func() error
	if in.TagIDs != nil || in.FrameworkIDs != nil || in.LanguageIDs != nil {
		after = func() error { return s.setTerms(ctx, id, in) }
	}
	return s.update(ctx, id, func(cur *models.Project) (changes, error) {
		ch := in.apply(cur)
		if in.Slug != nil && cur.Slug == "" {
			cur.Slug = common.Slugify(cur.Title)
			ch["slug"] = cur.Slug
		}
		if err := checkDates(cur.StartDate, cur.EndDate); err != nil {
			return nil, err
		}
		if _, ok := ch["slug"]; ok {
			if err := s.checkSlug(ctx, cur.Slug, id); err != nil {
				return nil, err
			}
		}
		return ch, nil
	}, after)
}

func (s *ProjectService) setTerms(ctx context.Context, id string, in ProjectInput) error {
	if in.TagIDs != nil {
		if err := s.projects.SetTags(ctx, id, in.TagIDs); err != nil {
			return err
		}
	}
	if in.FrameworkIDs != nil {
		if err := s.projects.SetFrameworks(ctx, id, in.FrameworkIDs); err != nil {
			return err
		}
	}
	if in.LanguageIDs != nil {
		return s.projects.SetLanguages(ctx, id, in.LanguageIDs)
	}
	return nil
}

func (s *ProjectService) checkSlug(ctx context.Context, slug, excludeID string) error {
	if slug == "" {
		return nil
	}
	taken, err := s.projects.SlugExists(ctx, slug, excludeID)
	if err != nil {
		return s.fail(ctx, "check slug", err)
	}
	if taken {
		return common.Conflict("Slug already in use")
	}
	return nil
}

func (s *ProjectService) ToggleFeatured(ctx context.Context, id string) (*models.Project, error) {
	p, err := s.projects.ToggleFeatured(ctx, id)
	return s.found(ctx, "toggle featured", p, err)
}

func (s *ProjectService) TogglePublished(ctx context.Context, id string) (*models.Project, error) {
	p, err := s.projects.TogglePublished(ctx, id)
	return s.found(ctx, "toggle published", p, err)
}

func (s *ProjectService) Search(ctx context.Context, f repository.ProjectFilter) (*repository.Page[models.Project], error) {
	page, err := s.projects.Search(ctx, f)
	if err != nil {
		return nil, s.fail(ctx, "search", err)
	}
	return page, nil
}

func checkDates(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return common.Validation("endDate must not be before startDate", "endDate")
	}
	return nil
}

func trimList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return out
}
