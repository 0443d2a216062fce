package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"storefront/internal/models"
	"storefront/internal/repositories"
)

// OptionService manages the option catalog.
type OptionService struct {
	repo repositories.OptionRepository
	log  *zap.Logger
}

// NewOptionService creates a new OptionService.
func NewOptionService(repo repositories.OptionRepository, log *zap.Logger) *OptionService {
	return &OptionService{repo: repo, log: log}
}

// GetAllOptions lists every option.
func (s *OptionService) GetAllOptions(ctx context.Context) ([]models.Option, error) {
	return s.repo.GetAll(ctx)
}

// GetOptionByID returns one option.
func (s *OptionService) GetOptionByID(ctx context.Context, id string) (*models.Option, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateOption normalizes and stores a new option. Names are unique.
func (s *OptionService) CreateOption(ctx context.Context, option *models.Option) error {
	option.Normalize()
	if err := validateStruct(option); err != nil {
		return err
	}
	if err := s.ensureNameFree(ctx, option.Name, ""); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, option); err != nil {
		return fmt.Errorf("failed to create option: %w", err)
	}
	s.log.Info("option created", zap.String("id", option.ID), zap.String("name", option.Name))
	return nil
}

// UpdateOption replaces the name and values of an existing option.
func (s *OptionService) UpdateOption(ctx context.Context, option *models.Option) error {
	option.Normalize()
	if err := validateStruct(option); err != nil {
		return err
	}
	if _, err := s.repo.GetByID(ctx, option.ID); err != nil {
		return err
	}
	if err := s.ensureNameFree(ctx, option.Name, option.ID); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, option); err != nil {
		return fmt.Errorf("failed to update option: %w", err)
	}
	return nil
}

// DeleteOption removes an option. Variants that still point at it fall back to
// the option id as their grouping key.
func (s *OptionService) DeleteOption(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// UpsertByName creates option or replaces the values of the stored option of
// the same name. Used to seed the default catalog.
func (s *OptionService) UpsertByName(ctx context.Context, option models.Option) (*models.Option, bool, error) {
	option.Normalize()
	existing, err := s.repo.GetByName(ctx, option.Name)
	if errors.Is(err, repositories.ErrNotFound) {
		if err := s.CreateOption(ctx, &option); err != nil {
			return nil, false, err
		}
		return &option, true, nil
	}
	if err != nil {
		return nil, false, err
	}

	existing.Values = option.Values
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, false, fmt.Errorf("failed to update option %s: %w", existing.Name, err)
	}
	return existing, false, nil
}

func (s *OptionService) ensureNameFree(ctx context.Context, name, selfID string) error {
	other, err := s.repo.GetByName(ctx, name)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if other.ID != selfID {
		return fmt.Errorf("%w: %s", ErrOptionNameTaken, name)
	}
	return nil
}

// catalog indexes options by id and by name.
type catalog struct {
	byID   map[string]models.Option
	byName map[string]models.Option
}

func (s *OptionService) catalog(ctx context.Context) (catalog, error) {
	options, err := s.repo.GetAll(ctx)
	if err != nil {
		return catalog{}, fmt.Errorf("failed to load option catalog: %w", err)
	}
	c := catalog{
		byID:   make(map[string]models.Option, len(options)),
		byName: make(map[string]models.Option, len(options)),
	}
	for _, o := range options {
		c.byID[o.ID] = o
		c.byName[o.Name] = o
	}
	return c, nil
}

// lookup finds the option an attribute refers to, by id first and then by name.
func (c catalog) lookup(a models.Attribute) (models.Option, bool) {
	if o, ok := c.byID[a.OptionID]; ok && a.OptionID != "" {
		return o, true
	}
	if a.OptionName != "" {
		if o, ok := c.byName[a.OptionName]; ok {
			return o, true
		}
	}
	// forms send the option id or name in a single field
	if o, ok := c.byName[a.OptionID]; ok && a.OptionID != "" {
		return o, true
	}
	return models.Option{}, false
}

// populate refreshes the option names of every attribute of p.
func (c catalog) populate(p *models.Product) {
	for i := range p.Variants {
		for j := range p.Variants[i].Attributes {
			a := &p.Variants[i].Attributes[j]
			if o, ok := c.byID[a.OptionID]; ok {
				a.OptionName = o.Name
			}
		}
	}
}
