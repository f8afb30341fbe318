package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"learnhub/internal/cache"
	apperrors "learnhub/internal/errors"
	"learnhub/internal/model"
	"learnhub/internal/repository"
)

const courseCacheTTL = 5 * time.Minute

// CourseInput holds the editable fields of a course.
type CourseInput struct {
	Title       string
	Description string
	Duration    string
	Modules     []string
	Price       decimal.Decimal
}

// CourseService handles course operations.
type CourseService interface {
	Create(ctx context.Context, in CourseInput) (*model.Course, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Course, error)
	List(ctx context.Context) ([]model.Course, error)
	Update(ctx context.Context, id uuid.UUID, in CourseInput) (*model.Course, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type courseService struct {
	repo  repository.CourseRepository
	cache *cache.Client
}

// NewCourseService creates a new course service.
func NewCourseService(repo repository.CourseRepository, cache *cache.Client) CourseService {
	return &courseService{
		repo:  repo,
		cache: cache,
	}
}

func (s *courseService) cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("course:%s", id.String())
}

func (in CourseInput) validate() error {
	if in.Title == "" {
		return apperrors.Validationf("title is required")
	}
	if in.Price.IsNegative() {
		return apperrors.Validationf("price must not be negative")
	}
	return nil
}

func (in CourseInput) apply(c *model.Course) {
	c.Title = in.Title
	c.Description = in.Description
	c.Duration = in.Duration
	c.Modules = append([]string(nil), in.Modules...)
	c.Price = in.Price
}

// Create adds a course to the catalog.
func (s *courseService) Create(ctx context.Context, in CourseInput) (*model.Course, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	course := &model.Course{}
	in.apply(course)
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}
	return course, nil
}

// Get retrieves a course by ID with caching.
func (s *courseService) Get(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	var cached model.Course
	if s.cache.GetJSON(ctx, s.cacheKey(id), &cached) {
		return &cached, nil
	}

	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCourseNotFound
		}
		return nil, fmt.Errorf("find course: %w", err)
	}

	s.cache.SetJSON(ctx, s.cacheKey(id), course, courseCacheTTL)
	return course, nil
}

// List returns the catalog.
func (s *courseService) List(ctx context.Context) ([]model.Course, error) {
	courses, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// Update replaces the editable fields of a course and drops its cache entry.
func (s *courseService) Update(ctx context.Context, id uuid.UUID, in CourseInput) (*model.Course, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCourseNotFound
		}
		return nil, fmt.Errorf("find course: %w", err)
	}

	in.apply(course)
	if err := s.repo.Update(ctx, course); err != nil {
		return nil, fmt.Errorf("update course: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return course, nil
}

// Delete removes a course that no certificate references.
func (s *courseService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return apperrors.ErrCourseNotFound
		case errors.Is(err, gorm.ErrForeignKeyViolated):
			return apperrors.ErrCourseInUse
		}
		return fmt.Errorf("delete course: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return nil
}
