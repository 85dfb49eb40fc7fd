package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"viaguild/internal/middleware"
	"viaguild/internal/models"
	"viaguild/internal/repository"
	"viaguild/internal/validation"
	"viaguild/internal/visual"
)

type AwardService struct {
	instanceRepo   repository.InstanceRepository
	templateRepo   repository.TemplateRepository
	allocationRepo repository.AllocationRepository
	userRepo       repository.UserRepository
	notifier       Notifier
	logger         *slog.Logger
}

func NewAwardService(
	instanceRepo repository.InstanceRepository,
	templateRepo repository.TemplateRepository,
	allocationRepo repository.AllocationRepository,
	userRepo repository.UserRepository,
	notifier Notifier,
	logger *slog.Logger,
) *AwardService {
	return &AwardService{
		instanceRepo:   instanceRepo,
		templateRepo:   templateRepo,
		allocationRepo: allocationRepo,
		userRepo:       userRepo,
		notifier:       notifier,
		logger:         logger,
	}
}

// GiveBadgeInput identifies the template by owner and slug and the receiver
// by username. Overrides are optional instance-level customizations.
type GiveBadgeInput struct {
	GiverID uint

	TemplateOwnerType models.EntityType
	TemplateOwnerID   uint
	TemplateSlug      string

	ReceiverUsername string

	Message string

	OverrideBadgeName          *string
	OverrideSubtitle           *string
	OverrideDisplayDescription *string
	OverrideOuterShape         *models.OuterShape

	OverrideBorderConfig     *visual.ColorConfig
	OverrideBackgroundConfig *visual.ColorConfig
	OverrideForegroundConfig *visual.ColorConfig

	MeasureValue *float64

	Metadata map[string]string

	APIVisible bool
}

// BulkRecipient is one entry of a bulk award.
type BulkRecipient struct {
	Username string            `json:"username" validate:"required"`
	Message  string            `json:"message"`
	Metadata map[string]string `json:"metadata"`
}

// BulkFailure records why one recipient of a bulk award was skipped.
type BulkFailure struct {
	Username string `json:"username"`
	Error    string `json:"error"`
	Code     string `json:"code"`
}

// BulkResult partitions a bulk award outcome.
type BulkResult struct {
	Successful []*models.BadgeInstance `json:"successful"`
	Failed     []BulkFailure           `json:"failed"`
}

// GiveBadge awards one badge. Checks run up front; instance creation,
// allocation spend, and the receiver notification commit atomically.
func (s *AwardService) GiveBadge(ctx context.Context, in GiveBadgeInput) (*models.BadgeInstance, error) {
	template, err := s.templateRepo.GetBySlug(ctx, in.TemplateOwnerType, in.TemplateOwnerID, validation.NormalizeSlug(in.TemplateSlug))
	if err != nil {
		return nil, err
	}
	if err := authorizeTemplateOwner(in.GiverID, template); err != nil {
		return nil, err
	}

	receiver, err := s.userRepo.GetByUsername(ctx, in.ReceiverUsername)
	if err != nil {
		return nil, err
	}
	if receiver == nil {
		return nil, models.NewNotFoundMessageError("Recipient user not found")
	}

	for _, cfg := range []*visual.ColorConfig{in.OverrideBorderConfig, in.OverrideBackgroundConfig, in.OverrideForegroundConfig} {
		if cfg != nil && !visual.Validate(cfg) {
			return nil, models.NewValidationError("Invalid visual configuration")
		}
	}
	if in.OverrideOuterShape != nil {
		switch *in.OverrideOuterShape {
		case models.ShapeCircle, models.ShapeSquare, models.ShapeStar, models.ShapeHexagon, models.ShapeHeart:
		default:
			return nil, models.NewValidationError("Unknown badge shape")
		}
	}
	if in.MeasureValue != nil && !template.DefinesMeasure {
		return nil, models.NewValidationError("Template does not define a measure")
	}

	if template.InherentTier != nil {
		// Lazily seed the allocation row, then fail fast when it is already
		// exhausted. The transaction's conditional decrement is the
		// authoritative race-proof check.
		alloc, err := s.allocationRepo.GetOrCreate(ctx, in.GiverID, *template.InherentTier)
		if err != nil {
			return nil, err
		}
		if alloc.Remaining <= 0 {
			middleware.AllocationRejections.WithLabelValues(string(*template.InherentTier)).Inc()
			return nil, models.NewInsufficientAllocationError(string(*template.InherentTier))
		}
	}

	instance := &models.BadgeInstance{
		TemplateID:   template.ID,
		GiverType:    models.EntityTypeUser,
		GiverID:      in.GiverID,
		ReceiverType: models.EntityTypeUser,
		ReceiverID:   receiver.ID,
		AwardStatus:  models.AwardStatusAccepted,
		APIVisible:   in.APIVisible,
		AssignedAt:   time.Now().UTC(),

		OverrideBadgeName:          in.OverrideBadgeName,
		OverrideSubtitle:           in.OverrideSubtitle,
		OverrideDisplayDescription: in.OverrideDisplayDescription,
		OverrideOuterShape:         in.OverrideOuterShape,
		OverrideBorderConfig:       in.OverrideBorderConfig,
		OverrideBackgroundConfig:   in.OverrideBackgroundConfig,
		OverrideForegroundConfig:   in.OverrideForegroundConfig,
		MeasureValue:               in.MeasureValue,
	}

	// Only keys the template declares are stored; the rest are dropped.
	for key, value := range in.Metadata {
		if _, ok := template.FieldDefinition(key); !ok {
			continue
		}
		instance.MetadataValues = append(instance.MetadataValues, models.BadgeMetadataValue{
			DataKey:   key,
			DataValue: value,
		})
	}

	name := template.DefaultBadgeName
	if in.OverrideBadgeName != nil {
		name = *in.OverrideBadgeName
	}
	content := fmt.Sprintf("You received the badge %q", name)
	if in.Message != "" {
		content = fmt.Sprintf("%s: %s", content, in.Message)
	}
	notification := &models.Notification{
		UserID:     receiver.ID,
		Type:       models.NotificationTypeBadgeReceived,
		Title:      "New badge",
		Content:    content,
		SourceType: "badge_instance",
		ActorID:    &in.GiverID,
	}

	if err := s.instanceRepo.Award(ctx, instance, template.InherentTier, notification); err != nil {
		if models.ErrorCode(err) == models.CodeInsufficientAllocation && template.InherentTier != nil {
			middleware.AllocationRejections.WithLabelValues(string(*template.InherentTier)).Inc()
		}
		return nil, err
	}

	tierLabel := ""
	if template.InherentTier != nil {
		tierLabel = string(*template.InherentTier)
	}
	middleware.BadgesAwarded.WithLabelValues(tierLabel).Inc()

	s.logger.Info("badge awarded",
		"instance_id", instance.ID,
		"template_id", template.ID,
		"giver_id", in.GiverID,
		"receiver_id", receiver.ID,
		"tier", tierLabel,
	)

	if s.notifier != nil {
		if err := s.notifier.PublishUser(ctx, receiver.ID, notification); err != nil {
			s.logger.Warn("failed to publish award notification", "instance_id", instance.ID, "error", err)
		}
	}

	instance.Template = *template
	return instance, nil
}

// GiveBadgesBulk awards the same template to many recipients. Each recipient
// is processed independently; one failure never rolls back another's award.
func (s *AwardService) GiveBadgesBulk(ctx context.Context, base GiveBadgeInput, recipients []BulkRecipient) (*BulkResult, error) {
	if len(recipients) == 0 {
		return nil, models.NewValidationError("At least one recipient is required")
	}

	result := &BulkResult{
		Successful: []*models.BadgeInstance{},
		Failed:     []BulkFailure{},
	}
	for _, recipient := range recipients {
		in := base
		in.ReceiverUsername = recipient.Username
		if recipient.Message != "" {
			in.Message = recipient.Message
		}
		if recipient.Metadata != nil {
			in.Metadata = recipient.Metadata
		}

		instance, err := s.GiveBadge(ctx, in)
		if err != nil {
			result.Failed = append(result.Failed, BulkFailure{
				Username: recipient.Username,
				Error:    err.Error(),
				Code:     models.ErrorCode(err),
			})
			continue
		}
		result.Successful = append(result.Successful, instance)
	}
	return result, nil
}

// ListAllocations reports the caller's remaining awards per tier.
func (s *AwardService) ListAllocations(ctx context.Context, userID uint) ([]models.UserBadgeAllocation, error) {
	return s.allocationRepo.ListForUser(ctx, userID)
}
