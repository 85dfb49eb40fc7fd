package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"viaguild/internal/cache"
	"viaguild/internal/models"
	"viaguild/internal/repository"
)

const publicCaseTTL = 5 * time.Minute

type BadgeCaseService struct {
	caseRepo     repository.BadgeCaseRepository
	instanceRepo repository.InstanceRepository
	userRepo     repository.UserRepository
	logger       *slog.Logger
}

func NewBadgeCaseService(
	caseRepo repository.BadgeCaseRepository,
	instanceRepo repository.InstanceRepository,
	userRepo repository.UserRepository,
	logger *slog.Logger,
) *BadgeCaseService {
	return &BadgeCaseService{
		caseRepo:     caseRepo,
		instanceRepo: instanceRepo,
		userRepo:     userRepo,
		logger:       logger,
	}
}

// CaseView is a badge case with its badges resolved for display in curated
// order.
type CaseView struct {
	ID       uint                   `json:"id"`
	UserID   uint                   `json:"user_id"`
	Username string                 `json:"username"`
	Title    string                 `json:"title"`
	IsPublic bool                   `json:"is_public"`
	Badges   []*models.DisplayProps `json:"badges"`
}

// GetCase returns a user's badge case. callerID is zero for anonymous
// callers; a private case is only visible to its owner. Public reads go
// through the cache.
func (s *BadgeCaseService) GetCase(ctx context.Context, callerID uint, username string) (*CaseView, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundMessageError("User not found")
	}

	isOwner := callerID != 0 && callerID == user.ID
	if !isOwner {
		var cached CaseView
		if found, _ := cache.GetJSON(ctx, cache.PublicCaseKey(user.Username), &cached); found {
			return &cached, nil
		}
	}

	badgeCase, err := s.caseRepo.GetOrCreateByUserID(ctx, user.ID, defaultCaseTitle(user.Username))
	if err != nil {
		return nil, err
	}
	if !badgeCase.IsPublic && !isOwner {
		return nil, models.NewForbiddenError("This badge case is private")
	}

	view := s.buildView(badgeCase, user.Username)
	if !isOwner && badgeCase.IsPublic {
		if err := cache.SetJSON(ctx, cache.PublicCaseKey(user.Username), view, publicCaseTTL); err != nil {
			s.logger.Warn("failed to cache badge case", "username", user.Username, "error", err)
		}
	}
	return view, nil
}

// AddBadge places one of the caller's own badges in their case.
func (s *BadgeCaseService) AddBadge(ctx context.Context, callerID, instanceID uint) (*CaseView, error) {
	user, err := s.userRepo.GetByID(ctx, callerID)
	if err != nil {
		return nil, err
	}

	instance, err := s.instanceRepo.GetByID(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	if instance.ReceiverType != models.EntityTypeUser || instance.ReceiverID != callerID {
		return nil, models.NewForbiddenError("You can only showcase badges you received")
	}
	if instance.Revoked() {
		return nil, models.NewConflictError("Badge is revoked")
	}
	if instance.AwardStatus != models.AwardStatusAccepted {
		return nil, models.NewValidationError("Only accepted badges can be showcased")
	}

	badgeCase, err := s.caseRepo.GetOrCreateByUserID(ctx, callerID, defaultCaseTitle(user.Username))
	if err != nil {
		return nil, err
	}
	if _, err := s.caseRepo.AddItem(ctx, badgeCase.ID, instanceID); err != nil {
		return nil, err
	}

	cache.Invalidate(ctx, cache.PublicCaseKey(user.Username))
	return s.reload(ctx, callerID, user.Username)
}

func (s *BadgeCaseService) RemoveBadge(ctx context.Context, callerID, instanceID uint) (*CaseView, error) {
	user, err := s.userRepo.GetByID(ctx, callerID)
	if err != nil {
		return nil, err
	}
	badgeCase, err := s.caseRepo.GetOrCreateByUserID(ctx, callerID, defaultCaseTitle(user.Username))
	if err != nil {
		return nil, err
	}
	if err := s.caseRepo.RemoveItem(ctx, badgeCase.ID, instanceID); err != nil {
		return nil, err
	}

	cache.Invalidate(ctx, cache.PublicCaseKey(user.Username))
	return s.reload(ctx, callerID, user.Username)
}

// ReorderEntry assigns a display position to one showcased badge.
type ReorderEntry struct {
	BadgeInstanceID uint `json:"badge_instance_id" validate:"required"`
	DisplayOrder    int  `json:"display_order" validate:"gte=0"`
}

// Reorder rewrites the case layout. Duplicate instances or positions reject
// the whole request; partial reorders of a subset of items are allowed.
func (s *BadgeCaseService) Reorder(ctx context.Context, callerID uint, entries []ReorderEntry) (*CaseView, error) {
	if len(entries) == 0 {
		return nil, models.NewValidationError("Reorder requires at least one entry")
	}

	orders := make(map[uint]int, len(entries))
	seenOrder := make(map[int]bool, len(entries))
	for _, e := range entries {
		if _, dup := orders[e.BadgeInstanceID]; dup {
			return nil, models.NewValidationError("Duplicate badge in reorder request")
		}
		if seenOrder[e.DisplayOrder] {
			return nil, models.NewValidationError("Duplicate display order in reorder request")
		}
		orders[e.BadgeInstanceID] = e.DisplayOrder
		seenOrder[e.DisplayOrder] = true
	}

	user, err := s.userRepo.GetByID(ctx, callerID)
	if err != nil {
		return nil, err
	}
	badgeCase, err := s.caseRepo.GetOrCreateByUserID(ctx, callerID, defaultCaseTitle(user.Username))
	if err != nil {
		return nil, err
	}
	if err := s.caseRepo.Reorder(ctx, badgeCase.ID, orders); err != nil {
		return nil, err
	}

	cache.Invalidate(ctx, cache.PublicCaseKey(user.Username))
	return s.reload(ctx, callerID, user.Username)
}

// SetVisibility toggles whether the case is publicly viewable.
func (s *BadgeCaseService) SetVisibility(ctx context.Context, callerID uint, isPublic bool) (*CaseView, error) {
	user, err := s.userRepo.GetByID(ctx, callerID)
	if err != nil {
		return nil, err
	}
	badgeCase, err := s.caseRepo.GetOrCreateByUserID(ctx, callerID, defaultCaseTitle(user.Username))
	if err != nil {
		return nil, err
	}

	badgeCase.IsPublic = isPublic
	if err := s.caseRepo.Update(ctx, badgeCase); err != nil {
		return nil, err
	}

	cache.Invalidate(ctx, cache.PublicCaseKey(user.Username))
	return s.reload(ctx, callerID, user.Username)
}

func (s *BadgeCaseService) reload(ctx context.Context, userID uint, username string) (*CaseView, error) {
	badgeCase, err := s.caseRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.buildView(badgeCase, username), nil
}

// buildView resolves every showcased badge, silently skipping any that have
// been revoked since they were added.
func (s *BadgeCaseService) buildView(badgeCase *models.BadgeCase, username string) *CaseView {
	view := &CaseView{
		ID:       badgeCase.ID,
		UserID:   badgeCase.UserID,
		Username: username,
		Title:    badgeCase.Title,
		IsPublic: badgeCase.IsPublic,
		Badges:   []*models.DisplayProps{},
	}
	for i := range badgeCase.Items {
		instance := &badgeCase.Items[i].BadgeInstance
		if instance.Revoked() {
			continue
		}
		view.Badges = append(view.Badges, ResolveDisplayProps(instance))
	}
	return view
}

func defaultCaseTitle(username string) string {
	return fmt.Sprintf("%s's Badge Case", username)
}
