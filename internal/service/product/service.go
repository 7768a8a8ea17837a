package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ecommerce-backend/internal/domain"
	productrepo "ecommerce-backend/internal/repository/product"
)

type Service struct {
	repo productrepo.Repository
}

func New(repo productrepo.Repository) *Service {
	return &Service{repo: repo}
}

// CreateInput is the payload for a new catalog entry. Status defaults to active.
type CreateInput struct {
	Code        string   `json:"code"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	PriceCents  int64    `json:"priceCents"`
	Stock       int      `json:"stock"`
	Category    string   `json:"category"`
	Thumbnails  []string `json:"thumbnails"`
	Status      *bool    `json:"status"`
}

// UpdateInput patches only the fields that are present.
type UpdateInput struct {
	Code        *string   `json:"code"`
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	PriceCents  *int64    `json:"priceCents"`
	Stock       *int      `json:"stock"`
	Category    *string   `json:"category"`
	Thumbnails  *[]string `json:"thumbnails"`
	Status      *bool     `json:"status"`
}

func (s *Service) List(ctx context.Context, category string) ([]domain.Product, error) {
	return s.repo.List(ctx, category)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Product, error) {
	p := domain.Product{
		Code:        strings.TrimSpace(in.Code),
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		PriceCents:  in.PriceCents,
		Stock:       in.Stock,
		Category:    strings.TrimSpace(in.Category),
		Thumbnails:  cleanThumbnails(in.Thumbnails),
		Active:      true,
	}
	if in.Status != nil {
		p.Active = *in.Status
	}
	if err := validate(p); err != nil {
		return nil, err
	}
	return s.create(ctx, p)
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*domain.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Code != nil {
		p.Code = strings.TrimSpace(*in.Code)
	}
	if in.Title != nil {
		p.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.PriceCents != nil {
		p.PriceCents = *in.PriceCents
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.Category != nil {
		p.Category = strings.TrimSpace(*in.Category)
	}
	if in.Thumbnails != nil {
		p.Thumbnails = cleanThumbnails(*in.Thumbnails)
	}
	if in.Status != nil {
		p.Active = *in.Status
	}
	if err := validate(*p); err != nil {
		return nil, err
	}
	updated, err := s.repo.Update(ctx, *p)
	if errors.Is(err, domain.ErrAlreadyExists) {
		return nil, fmt.Errorf("%w: product code %q already exists", domain.ErrInvalidInput, p.Code)
	}
	return updated, err
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	created, err := s.repo.Create(ctx, p)
	if errors.Is(err, domain.ErrAlreadyExists) {
		return nil, fmt.Errorf("%w: product code %q already exists", domain.ErrInvalidInput, p.Code)
	}
	return created, err
}

func validate(p domain.Product) error {
	switch {
	case p.Code == "":
		return fmt.Errorf("%w: code required", domain.ErrInvalidInput)
	case p.Title == "":
		return fmt.Errorf("%w: title required", domain.ErrInvalidInput)
	case p.PriceCents < 0:
		return fmt.Errorf("%w: price must not be negative", domain.ErrInvalidInput)
	case p.Stock < 0:
		return fmt.Errorf("%w: stock must not be negative", domain.ErrInvalidInput)
	}
	return nil
}

func cleanThumbnails(in []string) []string {
	out := make([]string, 0, len(in))
	for _, t := range in {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
