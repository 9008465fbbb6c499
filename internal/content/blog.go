package content

import (
	"context"
	"strings"
	"time"

	"quartz-site/internal/cache"
	"quartz-site/internal/repo"
)

// ApplyPublishState sets PublishedAt on in according to the publish flag.
// Publishing keeps an existing publish date and stamps now otherwise;
// unpublishing clears it.
func ApplyPublishState(in *repo.BlogPostInput, existing *time.Time, now time.Time) {
	if !in.IsPublished {
		in.PublishedAt = nil
		return
	}
	if existing != nil {
		t := *existing
		in.PublishedAt = &t
		return
	}
	t := now
	in.PublishedAt = &t
}

// PublishedBlogPosts lists published posts, newest published first.
func (s *Service) PublishedBlogPosts(ctx context.Context) ([]repo.BlogPost, error) {
	return cache.Fetch(ctx, s.cache, keyBlogPosts, func(ctx context.Context) ([]repo.BlogPost, error) {
		return s.repo.ListBlogPosts(ctx, repo.BlogPostFilter{PublishedOnly: true})
	})
}

// AllBlogPosts lists every post, newest created first.
func (s *Service) AllBlogPosts(ctx context.Context) ([]repo.BlogPost, error) {
	return cache.Fetch(ctx, s.cache, listKey(keyBlogPosts, "all"), func(ctx context.Context) ([]repo.BlogPost, error) {
		return s.repo.ListBlogPosts(ctx, repo.BlogPostFilter{})
	})
}

// BlogPostBySlug loads a published post.
func (s *Service) BlogPostBySlug(ctx context.Context, slug string) (*repo.BlogPost, error) {
	return cache.Fetch(ctx, s.cache, slugKey(keyBlogPosts, slug), func(ctx context.Context) (*repo.BlogPost, error) {
		return s.repo.GetBlogPostBySlug(ctx, slug, true)
	})
}

// CreateBlogPost validates and stores a post, deriving the slug from the
// title when none is given.
func (s *Service) CreateBlogPost(ctx context.Context, in repo.BlogPostInput) (*repo.BlogPost, error) {
	in = normaliseBlogPost(in)
	if err := Validate(in); err != nil {
		return nil, err
	}
	ApplyPublishState(&in, nil, s.now())
	b, err := s.repo.CreateBlogPost(ctx, in)
	if err != nil {
		return nil, s.mutationFailed("create blog post", err)
	}
	s.invalidate(ctx, keyBlogPosts)
	return b, nil
}

// UpdateBlogPost validates and overwrites a post.
func (s *Service) UpdateBlogPost(ctx context.Context, id string, in repo.BlogPostInput) (*repo.BlogPost, error) {
	in = normaliseBlogPost(in)
	if err := Validate(in); err != nil {
		return nil, err
	}
	current, err := s.repo.GetBlogPost(ctx, id)
	if err != nil {
		return nil, s.mutationFailed("load blog post", err)
	}
	ApplyPublishState(&in, current.PublishedAt, s.now())
	b, err := s.repo.UpdateBlogPost(ctx, id, in)
	if err != nil {
		return nil, s.mutationFailed("update blog post", err)
	}
	s.invalidate(ctx, keyBlogPosts)
	return b, nil
}

// TogglePublished flips a post's publish flag.
func (s *Service) TogglePublished(ctx context.Context, id string) (*repo.BlogPost, error) {
	current, err := s.repo.GetBlogPost(ctx, id)
	if err != nil {
		return nil, s.mutationFailed("load blog post", err)
	}
	in := repo.BlogPostInput{
		Title:       current.Title,
		Slug:        current.Slug,
		Excerpt:     current.Excerpt,
		Content:     current.Content,
		CoverImage:  current.CoverImage,
		IsPublished: !current.IsPublished,
	}
	ApplyPublishState(&in, current.PublishedAt, s.now())
	b, err := s.repo.UpdateBlogPost(ctx, id, in)
	if err != nil {
		return nil, s.mutationFailed("toggle blog post", err)
	}
	s.invalidate(ctx, keyBlogPosts)
	return b, nil
}

// BlogPost loads a post by id for editing.
func (s *Service) BlogPost(ctx context.Context, id string) (*repo.BlogPost, error) {
	return s.repo.GetBlogPost(ctx, id)
}

// DeleteBlogPost removes a post.
func (s *Service) DeleteBlogPost(ctx context.Context, id string) error {
	if err := s.repo.DeleteBlogPost(ctx, id); err != nil {
		return s.mutationFailed("delete blog post", err)
	}
	s.invalidate(ctx, keyBlogPosts)
	return nil
}

func normaliseBlogPost(in repo.BlogPostInput) repo.BlogPostInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Slug = strings.TrimSpace(in.Slug)
	in.Excerpt = strings.TrimSpace(in.Excerpt)
	in.Content = strings.TrimSpace(in.Content)
	in.CoverImage = strings.TrimSpace(in.CoverImage)
	if in.Slug == "" {
		in.Slug = Slugify(in.Title)
	}
	return in
}
