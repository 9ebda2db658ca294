package service

import (
	"context"
	"time"

	"gorm.io/datatypes"

	"folio/common"
	"folio/models"
	"folio/repository"
)

type ExperienceInput struct {
	Company        *string    `json:"company"`
	Position       *string    `json:"position"`
	Location       *string    `json:"location"`
	EmploymentType *string    `json:"employmentType"`
	Description    *string    `json:"description"`
	Achievements   []string   `json:"achievements"`
	CompanyURL     *string    `json:"companyUrl"`
	LogoURL        *string    `json:"logoUrl"`
	StartDate      *time.Time `json:"startDate"`
	EndDate        *time.Time `json:"endDate"`
	Current        *bool      `json:"current"`
	Visible        *bool      `json:"visible"`
	DisplayOrder   *int       `json:"displayOrder"`
}

func (in *ExperienceInput) apply(e *models.Experience) changes {
	ch := changes{}
	ch.str("company", &e.Company, in.Company)
	ch.str("position", &e.Position, in.Position)
	ch.str("location", &e.Location, in.Location)
	ch.str("employment_type", &e.EmploymentType, in.EmploymentType)
	ch.str("description", &e.Description, in.Description)
	ch.str("company_url", &e.CompanyURL, in.CompanyURL)
	ch.str("logo_url", &e.LogoURL, in.LogoURL)
	if in.Achievements != nil {
		e.Achievements = datatypes.JSONSlice[string](trimList(in.Achievements))
		ch["achievements"] = e.Achievements
	}
	if in.StartDate != nil {
		e.StartDate = *in.StartDate
		ch["start_date"] = e.StartDate
	}
	ch.date("end_date", &e.EndDate, in.EndDate)
	ch.flag("is_current", &e.Current, in.Current)
	ch.flag("visible", &e.Visible, in.Visible)
	ch.num("display_order", &e.DisplayOrder, in.DisplayOrder)
	currentClearsEnd(ch, e.Current, &e.EndDate)
	return ch
}

// currentClearsEnd drops the end date of an ongoing entry.
func currentClearsEnd(ch changes, current bool, end **time.Time) {
	if current && *end != nil {
		*end = nil
		ch["end_date"] = nil
	}
}

func checkPeriod(start time.Time, end *time.Time) error {
	if start.IsZero() {
		return common.Validation("startDate is required", "startDate")
	}
	return checkDates(&start, end)
}

type ExperienceService struct {
	crud[models.Experience]
	experiences *repository.ExperienceRepository
}

func NewExperienceService(b Base, experiences *repository.ExperienceRepository) *ExperienceService {
	return &ExperienceService{crud: newCrud[models.Experience](b, experiences, "Experience"), experiences: experiences}
}

func (s *ExperienceService) ListPublished(ctx context.Context, userID string) ([]models.Experience, error) {
	items, err := s.experiences.FindPublished(ctx, userID)
	return nonNil(items), s.fail(ctx, "list published", err)
}

func (s *ExperienceService) ListCurrent(ctx context.Context) ([]models.Experience, error) {
	items, err := s.experiences.FindCurrent(ctx)
	return nonNil(items), s.fail(ctx, "list current", err)
}

func (s *ExperienceService) Create(ctx context.Context, userID string, in ExperienceInput) (*models.Experience, error) {
	e := &models.Experience{UserID: userID, Visible: true, Achievements: datatypes.JSONSlice[string]{}}
	in.apply(e)
	if err := checkPeriod(e.StartDate, e.EndDate); err != nil {
		return nil, err
	}
	return s.create(ctx, e, func(e *models.Experience) string { return e.ID }, nil)
}

func (s *ExperienceService) Update(ctx context.Context, id string, in ExperienceInput) (*models.Experience, error) {
	return s.update(ctx, id, func(cur *models.Experience) (changes, error) {
		ch := in.apply(cur)
		return ch, checkPeriod(cur.StartDate, cur.EndDate)
	}, nil)
}

func (s *ExperienceService) Search(ctx context.Context, f repository.ResumeFilter) (*repository.Page[models.Experience], error) {
	page, err := s.experiences.Search(ctx, f)
	if err != nil {
		return nil, s.fail(ctx, "search", err)
	}
	return page, nil
}

type EducationInput struct {
	Institution  *string    `json:"institution"`
	Degree       *string    `json:"degree"`
	FieldOfStudy *string    `json:"fieldOfStudy"`
	Description  *string    `json:"description"`
	Grade        *string    `json:"grade"`
	LogoURL      *string    `json:"logoUrl"`
	StartDate    *time.Time `json:"startDate"`
	EndDate      *time.Time `json:"endDate"`
	Current      *bool      `json:"current"`
	Visible      *bool      `json:"visible"`
	DisplayOrder *int       `json:"displayOrder"`
}

func (in *EducationInput) apply(e *models.Education) changes {
	ch := changes{}
	ch.str("institution", &e.Institution, in.Institution)
	ch.str("degree", &e.Degree, in.Degree)
	ch.str("field_of_study", &e.FieldOfStudy, in.FieldOfStudy)
	ch.str("description", &e.Description, in.Description)
	ch.str("grade", &e.Grade, in.Grade)
	ch.str("logo_url", &e.LogoURL, in.LogoURL)
	if in.StartDate != nil {
		e.StartDate = *in.StartDate
		ch["start_date"] = e.StartDate
	}
	ch.date("end_date", &e.EndDate, in.EndDate)
	ch.flag("is_current", &e.Current, in.Current)
	ch.flag("visible", &e.Visible, in.Visible)
	ch.num("display_order", &e.DisplayOrder, in.DisplayOrder)
	currentClearsEnd(ch, e.Current, &e.EndDate)
	return ch
}

type EducationService struct {
	crud[models.Education]
	education *repository.EducationRepository
}

func NewEducationService(b Base, education *repository.EducationRepository) *EducationService {
	return &EducationService{crud: newCrud[models.Education](b, education, "Education"), education: education}
}

func (s *EducationService) ListPublished(ctx context.Context, userID string) ([]models.Education, error) {
	items, err := s.education.FindPublished(ctx, userID)
	return nonNil(items), s.fail(ctx, "list published", err)
}

func (s *EducationService) Create(ctx context.Context, userID string, in EducationInput) (*models.Education, error) {
	e := &models.Education{UserID: userID, Visible: true}
	in.apply(e)
	if err := checkPeriod(e.StartDate, e.EndDate); err != nil {
		return nil, err
	}
	return s.create(ctx, e, func(e *models.Education) string { return e.ID }, nil)
}

func (s *EducationService) Update(ctx context.Context, id string, in EducationInput) (*models.Education, error) {
	return s.update(ctx, id, func(cur *models.Education) (changes, error) {
		ch := in.apply(cur)
		return ch, checkPeriod(cur.StartDate, cur.EndDate)
	}, nil)
}

func (s *EducationService) Search(ctx context.Context, f repository.ResumeFilter) (*repository.Page[models.Education], error) {
	page, err := s.education.Search(ctx, f)
	if err != nil {
		return nil, s.fail(ctx, "search", err)
	}
	return page, nil
}

type TestimonialInput struct {
	AuthorName     *string `json:"authorName"`
	AuthorPosition *string `json:"authorPosition"`
	AuthorCompany  *string `json:"authorCompany"`
	AuthorImage    *string `json:"authorImage"`
	AuthorEmail    *string `json:"authorEmail"`
	Content        *string `json:"content"`
	Rating         *int    `json:"rating"`
	Featured       *bool   `json:"featured"`
	Visible        *bool   `json:"visible"`
	DisplayOrder   *int    `json:"displayOrder"`
}

func (in *TestimonialInput) apply(t *models.Testimonial) changes {
	ch := changes{}
	ch.str("author_name", &t.AuthorName, in.AuthorName)
	ch.str("author_position", &t.AuthorPosition, in.AuthorPosition)
	ch.str("author_company", &t.AuthorCompany, in.AuthorCompany)
	ch.str("author_image", &t.AuthorImage, in.AuthorImage)
	ch.str("author_email", &t.AuthorEmail, in.AuthorEmail)
	ch.str("content", &t.Content, in.Content)
	ch.num("rating", &t.Rating, in.Rating)
	ch.flag("featured", &t.Featured, in.Featured)
	ch.flag("visible", &t.Visible, in.Visible)
	ch.num("display_order", &t.DisplayOrder, in.DisplayOrder)
	return ch
}

type TestimonialService struct {
	crud[models.Testimonial]
	testimonials *repository.TestimonialRepository
}

func NewTestimonialService(b Base, testimonials *repository.TestimonialRepository) *TestimonialService {
	return &TestimonialService{crud: newCrud[models.Testimonial](b, testimonials, "Testimonial"), testimonials: testimonials}
}

func (s *TestimonialService) ListPublished(ctx context.Context, userID string) ([]models.Testimonial, error) {
	items, err := s.testimonials.FindPublished(ctx, userID)
	return nonNil(items), s.fail(ctx, "list published", err)
}

func (s *TestimonialService) ListFeatured(ctx context.Context) ([]models.Testimonial, error) {
	items, err := s.testimonials.FindFeatured(ctx)
	return nonNil(items), s.fail(ctx, "list featured", err)
}

// Create defaults the rating to 5 when none is given.
func (s *TestimonialService) Create(ctx context.Context, userID string, in TestimonialInput) (*models.Testimonial, error) {
	t := &models.Testimonial{UserID: userID, Visible: true, Rating: 5}
	in.apply(t)
	return s.create(ctx, t, func(t *models.Testimonial) string { return t.ID }, nil)
}

func (s *TestimonialService) Update(ctx context.Context, id string, in TestimonialInput) (*models.Testimonial, error) {
	return s.update(ctx, id, func(cur *models.Testimonial) (changes, error) {
		return in.apply(cur), nil
	}, nil)
}

func (s *TestimonialService) ToggleFeatured(ctx context.Context, id string) (*models.Testimonial, error) {
	t, err := s.testimonials.ToggleFeatured(ctx, id)
	return s.found(ctx, "toggle featured", t, err)
}

func (s *TestimonialService) Search(ctx context.Context, f repository.TestimonialFilter) (*repository.Page[models.Testimonial], error) {
	page, err := s.testimonials.Search(ctx, f)
	if err != nil {
		return nil, s.fail(ctx, "search", err)
	}
	return page, nil
}
