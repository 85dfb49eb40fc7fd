package service

import (
	"context"
	"log/slog"
	"time"

	"viaguild/internal/middleware"
	"viaguild/internal/models"
	"viaguild/internal/repository"
	"viaguild/internal/visual"
)

type BadgeService struct {
	instanceRepo     repository.InstanceRepository
	userRepo         repository.UserRepository
	notificationRepo repository.NotificationRepository
	notifier         Notifier
	logger           *slog.Logger
}

// Notifier delivers realtime events to a user's open connections. Delivery
// is best effort; persistence happens separately.
type Notifier interface {
	PublishUser(ctx context.Context, userID uint, payload interface{}) error
}

func NewBadgeService(
	instanceRepo repository.InstanceRepository,
	userRepo repository.UserRepository,
	notificationRepo repository.NotificationRepository,
	notifier Notifier,
	logger *slog.Logger,
) *BadgeService {
	return &BadgeService{
		instanceRepo:     instanceRepo,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		notifier:         notifier,
		logger:           logger,
	}
}

// ResolveDisplayProps computes the authoritative rendered appearance of an
// instance. Pure; instance.Template must be loaded. Overrides win over
// template defaults field by field, legacy scalars bridge in only where the
// config slot is empty, and the tier border replacement runs last so nothing
// can restyle a tier's border.
func ResolveDisplayProps(instance *models.BadgeInstance) *models.DisplayProps {
	t := &instance.Template

	props := &models.DisplayProps{
		InstanceID:   instance.ID,
		TemplateID:   t.ID,
		TemplateSlug: t.TemplateSlug,
		AssignedAt:   instance.AssignedAt,
		AwardStatus:  instance.AwardStatus,
		Tier:         t.InherentTier,
	}

	props.Name = stringOr(instance.OverrideBadgeName, t.DefaultBadgeName)
	props.Subtitle = stringOr(instance.OverrideSubtitle, t.DefaultSubtitleText)
	props.Description = stringOr(instance.OverrideDisplayDescription, t.DefaultDisplayDescription)

	props.Shape = t.DefaultOuterShape
	if instance.OverrideOuterShape != nil {
		props.Shape = *instance.OverrideOuterShape
	}
	if props.Shape == "" {
		props.Shape = models.ShapeCircle
	}

	borderCfg := resolveSlot(
		instance.OverrideBorderConfig,
		visual.MergeLegacyColor(deref(instance.OverrideBorderColor), nil),
		t.DefaultBorderConfig,
		visual.MergeLegacyColor(t.DefaultBorderColor, nil),
	)
	backgroundCfg := resolveSlot(
		instance.OverrideBackgroundConfig,
		visual.ConvertLegacyBackground(deref(instance.OverrideBackgroundType), deref(instance.OverrideBackgroundValue)),
		t.DefaultBackgroundConfig,
		visual.ConvertLegacyBackground(t.DefaultBackgroundType, t.DefaultBackgroundValue),
	)
	foregroundCfg := resolveSlot(
		instance.OverrideForegroundConfig,
		visual.ConvertLegacyForeground(deref(instance.OverrideForegroundType), deref(instance.OverrideForegroundValue), deref(instance.OverrideForegroundColor)),
		t.DefaultForegroundConfig,
		visual.ConvertLegacyForeground(t.DefaultForegroundType, t.DefaultForegroundValue, t.DefaultForegroundColor),
	)

	props.BorderConfig = borderCfg
	props.BackgroundConfig = backgroundCfg
	props.ForegroundConfig = foregroundCfg

	props.BorderColor = visual.ExtractColor(borderCfg, visual.DefaultBorderColor)
	props.ForegroundColor = visual.ExtractColor(foregroundCfg, "")
	props.BackgroundStyle = visual.ExtractBackgroundStyle(backgroundCfg)
	props.BorderStyle = visual.ExtractBorderStyle(borderCfg, visual.DefaultBorderWidth)

	if t.DefinesMeasure {
		props.MeasureValue = instance.MeasureValue
		props.MeasureLabel = t.MeasureLabel
		props.MeasureBest = floatOr(instance.OverrideMeasureBest, t.MeasureBest)
		props.MeasureWorst = floatOr(instance.OverrideMeasureWorst, t.MeasureWorst)
		props.MeasureBestLabel = stringOr(instance.OverrideMeasureBestLabel, t.MeasureBestLabel)
		props.MeasureWorstLabel = stringOr(instance.OverrideMeasureWorstLabel, t.MeasureWorstLabel)
		props.HigherIsBetter = t.HigherIsBetter
		props.MeasureIsNormalizable = t.MeasureIsNormalizable
	}

	for _, def := range t.FieldDefinitions {
		for _, val := range instance.MetadataValues {
			if val.DataKey != def.DataKey {
				continue
			}
			props.Metadata = append(props.Metadata, models.MetadataItem{
				Key:          def.DataKey,
				Label:        def.Label,
				Prefix:       def.Prefix,
				Suffix:       def.Suffix,
				Value:        val.DataValue,
				DisplayOrder: def.DisplayOrder,
			})
			break
		}
	}

	// Tier border enforcement runs after every override so tier identity
	// stays visually unforgeable.
	if t.InherentTier != nil && t.InherentTier.Valid() {
		tierCfg := visual.NewSimpleColorConfig(t.InherentTier.BorderColor())
		props.BorderConfig = tierCfg
		props.BorderColor = t.InherentTier.BorderColor()
		props.BorderStyle = visual.ExtractBorderStyle(tierCfg, visual.DefaultBorderWidth)
	}

	return props
}

func (s *BadgeService) GetDisplay(ctx context.Context, instanceID uint) (*models.DisplayProps, error) {
	instance, err := s.instanceRepo.GetByID(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	return ResolveDisplayProps(instance), nil
}

// Revoke soft-deletes a badge. Only the receiver may revoke; revoking an
// already-revoked badge is a conflict.
func (s *BadgeService) Revoke(ctx context.Context, callerID, instanceID uint) error {
	instance, err := s.instanceRepo.GetByID(ctx, instanceID)
	if err != nil {
		return err
	}
	if instance.ReceiverType != models.EntityTypeUser || instance.ReceiverID != callerID {
		return models.NewForbiddenError("Only the badge receiver can remove it")
	}
	if instance.Revoked() {
		return models.NewConflictError("Badge is already revoked")
	}

	if err := s.instanceRepo.Revoke(ctx, instanceID, time.Now().UTC()); err != nil {
		return err
	}
	middleware.BadgesRevoked.Inc()
	s.logger.Info("badge revoked", "instance_id", instanceID, "receiver_id", callerID)

	if instance.GiverType == models.EntityTypeUser && instance.GiverID != callerID {
		name := stringOr(instance.OverrideBadgeName, instance.Template.DefaultBadgeName)
		notification := &models.Notification{
			UserID:     instance.GiverID,
			Type:       models.NotificationTypeBadgeRevoked,
			Title:      "Badge removed",
			Content:    "A badge you gave (" + name + ") was removed by its receiver",
			SourceID:   &instance.ID,
			SourceType: "badge_instance",
			ActorID:    &callerID,
		}
		if err := s.notificationRepo.Create(ctx, notification); err != nil {
			s.logger.Warn("failed to record revoke notification", "instance_id", instanceID, "error", err)
		} else if s.notifier != nil {
			if err := s.notifier.PublishUser(ctx, instance.GiverID, notification); err != nil {
				s.logger.Warn("failed to publish revoke notification", "instance_id", instanceID, "error", err)
			}
		}
	}
	return nil
}

// SetAPIVisibility toggles whether the badge shows up for unauthenticated
// listings. Receiver only.
func (s *BadgeService) SetAPIVisibility(ctx context.Context, callerID, instanceID uint, visible bool) (*models.BadgeInstance, error) {
	instance, err := s.instanceRepo.GetByID(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	if instance.ReceiverType != models.EntityTypeUser || instance.ReceiverID != callerID {
		return nil, models.NewForbiddenError("Only the badge receiver can change its visibility")
	}
	if instance.Revoked() {
		return nil, models.NewConflictError("Badge is revoked")
	}

	instance.APIVisible = visible
	if err := s.instanceRepo.Update(ctx, instance); err != nil {
		return nil, err
	}
	return instance, nil
}

// ListReceivedDisplay resolves a user's accepted badges for display, newest
// first. Public callers only see API-visible badges.
func (s *BadgeService) ListReceivedDisplay(ctx context.Context, username string, publicOnly bool) ([]*models.DisplayProps, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundMessageError("User not found")
	}

	instances, err := s.instanceRepo.ListReceived(ctx, models.EntityTypeUser, user.ID, publicOnly)
	if err != nil {
		return nil, err
	}

	resolved := make([]*models.DisplayProps, 0, len(instances))
	for i := range instances {
		resolved = append(resolved, ResolveDisplayProps(&instances[i]))
	}
	return resolved, nil
}

// GivenBadge pairs an awarded instance with the receiver's public display
// info. Receiver is set only for USER-type receivers that still exist.
type GivenBadge struct {
	models.BadgeInstance
	Receiver *models.PublicInfo `json:"receiver,omitempty"`
}

// ListGiven returns the badges a user has awarded, with receiver display
// info batch-resolved for USER receivers.
func (s *BadgeService) ListGiven(ctx context.Context, giverID uint, filter repository.GivenFilter) ([]GivenBadge, error) {
	instances, err := s.instanceRepo.ListGiven(ctx, models.EntityTypeUser, giverID, filter)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(instances))
	seen := make(map[uint]bool, len(instances))
	for i := range instances {
		if instances[i].ReceiverType != models.EntityTypeUser || seen[instances[i].ReceiverID] {
			continue
		}
		seen[instances[i].ReceiverID] = true
		ids = append(ids, instances[i].ReceiverID)
	}

	receivers := make(map[uint]models.PublicInfo, len(ids))
	if len(ids) > 0 {
		users, err := s.userRepo.ListByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for i := range users {
			receivers[users[i].ID] = users[i].Public()
		}
	}

	given := make([]GivenBadge, 0, len(instances))
	for i := range instances {
		entry := GivenBadge{BadgeInstance: instances[i]}
		if instances[i].ReceiverType == models.EntityTypeUser {
			if info, ok := receivers[instances[i].ReceiverID]; ok {
				entry.Receiver = &info
			}
		}
		given = append(given, entry)
	}
	return given, nil
}

// resolveSlot picks the first populated config following override-over-default
// precedence, with legacy scalars bridging in where a config slot is empty.
func resolveSlot(overrideCfg, overrideLegacy, templateCfg, templateLegacy *visual.ColorConfig) *visual.ColorConfig {
	for _, cfg := range []*visual.ColorConfig{overrideCfg, overrideLegacy, templateCfg, templateLegacy} {
		if cfg != nil {
			return cfg
		}
	}
	return nil
}

func stringOr(override *string, fallback string) string {
	if override != nil {
		return *override
	}
	return fallback
}

func floatOr(override, fallback *float64) *float64 {
	if override != nil {
		return override
	}
	return fallback
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
