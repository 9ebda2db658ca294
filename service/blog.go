package service

import (
	"context"
	"math"
	"strings"
	"time"

	"folio/common"
	"folio/models"
	"folio/repository"
)

// WordsPerMinute is the reading speed used for reading time estimates.
const WordsPerMinute = 200

// ReadingTime estimates the minutes needed to read text, never less than one.
func ReadingTime(text string) int {
	words := len(strings.Fields(text))
	minutes := int(math.Ceil(float64(words) / WordsPerMinute))
	if minutes < 1 {
		return 1
	}
	return minutes
}

type BlogPostInput struct {
	Title           *string  `json:"title"`
	Slug            *string  `json:"slug"`
	Excerpt         *string  `json:"excerpt"`
	Content         *string  `json:"content"`
	CoverImage      *string  `json:"coverImage"`
	MetaTitle       *string  `json:"metaTitle"`
	MetaDescription *string  `json:"metaDescription"`
	CategoryID      *string  `json:"categoryId"`
	TagIDs          []string `json:"tagIds"`
	Published       *bool    `json:"published"`
	Featured        *bool    `json:"featured"`
	Visible         *bool    `json:"visible"`
	DisplayOrder    *int     `json:"displayOrder"`
}

func (in *BlogPostInput) apply(p *models.BlogPost) changes {
	ch := changes{}
	ch.str("title", &p.Title, in.Title)
	ch.str("slug", &p.Slug, in.Slug)
	ch.str("excerpt", &p.Excerpt, in.Excerpt)
	ch.str("content", &p.Content, in.Content)
	ch.str("cover_image", &p.CoverImage, in.CoverImage)
	ch.str("meta_title", &p.MetaTitle, in.MetaTitle)
	ch.str("meta_description", &p.MetaDescription, in.MetaDescription)
	ch.ref("category_id", &p.CategoryID, in.CategoryID)
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
	if in.Content != nil {
		p.ReadingTime = ReadingTime(p.Content)
		ch["reading_time"] = p.ReadingTime
	}
	return ch
}

type BlogService struct {
	crud[models.BlogPost]
	posts *repository.BlogPostRepository
}

func NewBlogService(b Base, posts *repository.BlogPostRepository) *BlogService {
	return &BlogService{crud: newCrud[models.BlogPost](b, posts, "Blog post"), posts: posts}
}

func (s *BlogService) ListPublished(ctx context.Context, userID string) ([]models.BlogPost, error) {
	items, err := s.posts.FindPublished(ctx, userID)
	return nonNil(items), s.fail(ctx, "list published", err)
}

func (s *BlogService) ListFeatured(ctx context.Context) ([]models.BlogPost, error) {
	items, err := s.posts.FindFeatured(ctx)
	return nonNil(items), s.fail(ctx, "list featured", err)
}

func (s *BlogService) GetBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	post, err := s.posts.FindBySlug(ctx, slug)
	return s.found(ctx, "get by slug", post, err)
}

func (s *BlogService) Create(ctx context.Context, userID string, in BlogPostInput) (*models.BlogPost, error) {
	post := &models.BlogPost{UserID: userID, Visible: true}
	in.apply(post)
	if post.Slug == "" {
		post.Slug = common.Slugify(post.Title)
	}
	post.ReadingTime = ReadingTime(post.Content)
	if err := s.checkSlug(ctx, post.Slug, ""); err != nil {
		return nil, err
	}

	return s.create(ctx, post, func(p *models.BlogPost) string { return p.ID }, func(id string) error {
		if in.TagIDs == nil {
			return nil
		}
		return s.posts.SetTags(ctx, id, in.TagIDs)
	})
}

func (s *BlogService) Update(ctx context.Context, id string, in BlogPostInput) (*models.BlogPost, error) {
	var after func() error
	if in.TagIDs != nil {
		after = func() error { return s.posts.SetTags(ctx, id, in.TagIDs) }
	}
	return s.update(ctx, id, func(cur *models.BlogPost) (changes, error) {
		ch := in.apply(cur)
		if in.Slug != nil && cur.Slug == "" {
			cur.Slug = common.Slugify(cur.Title)
			ch["slug"] = cur.Slug
		}
		if _, ok := ch["slug"]; ok {
			if err := s.checkSlug(ctx, cur.Slug, id); err != nil {
				return nil, err
			}
		}
		return ch, nil
	}, after)
}

func (s *BlogService) checkSlug(ctx context.Context, slug, excludeID string) error {
	if slug == "" {
		return nil
	}
	taken, err := s.posts.SlugExists(ctx, slug, excludeID)
	if err != nil {
		return s.fail(ctx, "check slug", err)
	}
	if taken {
		return common.Conflict("Slug already in use")
	}
	return nil
}

func (s *BlogService) ToggleFeatured(ctx context.Context, id string) (*models.BlogPost, error) {
	post, err := s.posts.ToggleFeatured(ctx, id)
	return s.found(ctx, "toggle featured", post, err)
}

func (s *BlogService) TogglePublished(ctx context.Context, id string) (*models.BlogPost, error) {
	post, err := s.posts.TogglePublished(ctx, id)
	return s.found(ctx, "toggle published", post, err)
}

func (s *BlogService) IncrementViewCount(ctx context.Context, id string) error {
	ok, err := s.posts.IncrementViewCount(ctx, id)
	if err != nil {
		return s.fail(ctx, "increment view count", err)
	}
	if !ok {
		return s.notFound(s.noun)
	}
	return nil
}

func (s *BlogService) Search(ctx context.Context, f repository.BlogPostFilter) (*repository.Page[models.BlogPost], error) {
	page, err := s.posts.Search(ctx, f)
	if err != nil {
		return nil, s.fail(ctx, "search", err)
	}
	return page, nil
}
