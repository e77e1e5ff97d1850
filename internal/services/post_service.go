package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/baharkarakas/asso-backend/internal/apperr"
	"github.com/baharkarakas/asso-backend/internal/auth"
	"github.com/baharkarakas/asso-backend/internal/cache"
	"github.com/baharkarakas/asso-backend/internal/models"
	"github.com/baharkarakas/asso-backend/internal/policy"
	repo "github.com/baharkarakas/asso-backend/internal/repository"
	"github.com/baharkarakas/asso-backend/internal/sanitize"
)

type PostService struct {
	r       repo.Posts
	logs    repo.AuditLogs
	pop     populator
	janitor *Janitor
}

func NewPostService(r repo.Posts, logs repo.AuditLogs, sums *cache.Summaries, j *Janitor) *PostService {
	return &PostService{r: r, logs: logs, pop: populator{sums}, janitor: j}
}

type PostInput struct {
	Title    string
	Content  string
	Category models.PostCategory
	Image    string
}

func (s *PostService) Create(ctx context.Context, actor auth.Identity, in PostInput) (PostView, error) {
	if err := policy.Require(actor, policy.Post, policy.Create, ""); err != nil {
		return PostView{}, err
	}
	now := time.Now().UTC()
	p := models.Post{
		ID:        uuid.NewString(),
		Title:     sanitize.Text(in.Title),
		Content:   sanitize.Content(in.Content),
		Category:  in.Category,
		Image:     in.Image,
		AuthorID:  actor.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := p.Validate(); err != nil {
		return PostView{}, apperr.Wrap(apperr.Validation, "", err)
	}
	if err := s.r.Create(ctx, p); err != nil {
		return PostView{}, storeErr(err, "post")
	}
	return s.pop.writtenPost(ctx, p), nil
}

func (s *PostService) List(ctx context.Context) ([]PostView, error) {
	posts, err := s.r.List(ctx)
	if err != nil {
		return nil, storeErr(err, "post")
	}
	return s.pop.posts(ctx, posts)
}

func (s *PostService) Get(ctx context.Context, id string) (PostView, error) {
	p, err := s.r.GetByID(ctx, id)
	if err != nil {
		return PostView{}, storeErr(err, "post")
	}
	return s.pop.post(ctx, p)
}

type PostPatch struct {
	Title    *string
	Content  *string
	Category *models.PostCategory
	Image    *string
}

// Update is limited to the author; admins may delete but not edit.
// An error means nothing was written.
func (s *PostService) Update(ctx context.Context, actor auth.Identity, id string, patch PostPatch) (PostView, error) {
	p, err := s.r.GetByID(ctx, id)
	if err != nil {
		return PostView{}, storeErr(err, "post")
	}
	if err := policy.Require(actor, policy.Post, policy.Update, p.AuthorID); err != nil {
		return PostView{}, err
	}
	oldImage := p.Image
	if patch.Title != nil {
		p.Title = sanitize.Text(*patch.Title)
	}
	if patch.Content != nil {
		p.Content = sanitize.Content(*patch.Content)
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Image != nil {
		p.Image = *patch.Image
	}
	if err := p.Validate(); err != nil {
		return PostView{}, apperr.Wrap(apperr.Validation, "", err)
	}
	if err := s.r.Update(ctx, p); err != nil {
		return PostView{}, storeErr(err, "post")
	}
	if oldImage != p.Image {
		s.janitor.Discard(oldImage)
	}
	if cur, err := s.r.GetByID(ctx, id); err == nil {
		p = cur
	}
	return s.pop.writtenPost(ctx, p), nil
}

func (s *PostService) Delete(ctx context.Context, actor auth.Identity, id string) error {
	p, err := s.r.GetByID(ctx, id)
	if err != nil {
		return storeErr(err, "post")
	}
	if err := policy.Require(actor, policy.Post, policy.Delete, p.AuthorID); err != nil {
		return err
	}
	if err := s.r.Delete(ctx, id); err != nil {
		return storeErr(err, "post")
	}
	audit(ctx, s.logs, "post", id, actor.ID, "deleted", map[string]any{"title": p.Title, "author_id": p.AuthorID})
	s.janitor.Discard(p.Image)
	return nil
}
