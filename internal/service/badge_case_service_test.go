package service

import (
	"context"
	"testing"
	"time"

	"viaguild/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type badgeCaseRepoStub struct {
	getOrCreateByUserIDFn func(context.Context, uint, string) (*models.BadgeCase, error)
	getByUserIDFn         func(context.Context, uint) (*models.BadgeCase, error)
	updateFn              func(context.Context, *models.BadgeCase) error
	addItemFn             func(context.Context, uint, uint) (*models.BadgeCaseItem, error)
	removeItemFn          func(context.Context, uint, uint) error
	reorderFn             func(context.Context, uint, map[uint]int) error
}

func (s *badgeCaseRepoStub) GetOrCreateByUserID(ctx context.Context, userID uint, defaultTitle string) (*models.BadgeCase, error) {
	return s.getOrCreateByUserIDFn(ctx, userID, defaultTitle)
}
func (s *badgeCaseRepoStub) GetByUserID(ctx context.Context, userID uint) (*models.BadgeCase, error) {
	return s.getByUserIDFn(ctx, userID)
}
func (s *badgeCaseRepoStub) Update(ctx context.Context, badgeCase *models.BadgeCase) error {
	return s.updateFn(ctx, badgeCase)
}
func (s *badgeCaseRepoStub) AddItem(ctx context.Context, caseID, instanceID uint) (*models.BadgeCaseItem, error) {
	return s.addItemFn(ctx, caseID, instanceID)
}
func (s *badgeCaseRepoStub) RemoveItem(ctx context.Context, caseID, instanceID uint) error {
	return s.removeItemFn(ctx, caseID, instanceID)
}
func (s *badgeCaseRepoStub) Reorder(ctx context.Context, caseID uint, orders map[uint]int) error {
	return s.reorderFn(ctx, caseID, orders)
}

func noopBadgeCaseRepo() *badgeCaseRepoStub {
	emptyCase := func(userID uint, title string) *models.BadgeCase {
		return &models.BadgeCase{ID: 1, UserID: userID, Title: title, IsPublic: true}
	}
	return &badgeCaseRepoStub{
		getOrCreateByUserIDFn: func(_ context.Context, userID uint, title string) (*models.BadgeCase, error) {
			return emptyCase(userID, title), nil
		},
		getByUserIDFn: func(_ context.Context, userID uint) (*models.BadgeCase, error) {
			return emptyCase(userID, ""), nil
		},
		updateFn:     func(context.Context, *models.BadgeCase) error { return nil },
		addItemFn:    func(context.Context, uint, uint) (*models.BadgeCaseItem, error) { return &models.BadgeCaseItem{}, nil },
		removeItemFn: func(context.Context, uint, uint) error { return nil },
		reorderFn:    func(context.Context, uint, map[uint]int) error { return nil },
	}
}

func caseUserRepo() *userRepoStub {
	users := noopUserRepo()
	users.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		return &models.User{ID: id, Username: "collector"}, nil
	}
	users.getByUsernameFn = func(_ context.Context, username string) (*models.User, error) {
		if username == "collector" {
			return &models.User{ID: 2, Username: "collector"}, nil
		}
		return nil, nil
	}
	return users
}

func TestGetCase(t *testing.T) {
	t.Run("unknown user", func(t *testing.T) {
		svc := NewBadgeCaseService(noopBadgeCaseRepo(), noopInstanceRepo(), caseUserRepo(), testLogger())
		_, err := svc.GetCase(context.Background(), 0, "ghost")
		assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
	})

	t.Run("private case hidden from others", func(t *testing.T) {
		cases := noopBadgeCaseRepo()
		cases.getOrCreateByUserIDFn = func(_ context.Context, userID uint, _ string) (*models.BadgeCase, error) {
			return &models.BadgeCase{ID: 1, UserID: userID, IsPublic: false}, nil
		}
		svc := NewBadgeCaseService(cases, noopInstanceRepo(), caseUserRepo(), testLogger())

		_, err := svc.GetCase(context.Background(), 0, "collector")
		assert.Equal(t, models.CodeForbidden, models.ErrorCode(err))

		_, err = svc.GetCase(context.Background(), 99, "collector")
		assert.Equal(t, models.CodeForbidden, models.ErrorCode(err))

		// The owner still sees it.
		view, err := svc.GetCase(context.Background(), 2, "collector")
		require.NoError(t, err)
		assert.False(t, view.IsPublic)
	})

	t.Run("lazily created with default title", func(t *testing.T) {
		cases := noopBadgeCaseRepo()
		var requestedTitle string
		cases.getOrCreateByUserIDFn = func(_ context.Context, userID uint, title string) (*models.BadgeCase, error) {
			requestedTitle = title
			return &models.BadgeCase{ID: 1, UserID: userID, Title: title, IsPublic: true}, nil
		}
		svc := NewBadgeCaseService(cases, noopInstanceRepo(), caseUserRepo(), testLogger())

		view, err := svc.GetCase(context.Background(), 2, "collector")
		require.NoError(t, err)
		assert.Equal(t, "collector's Badge Case", requestedTitle)
		assert.Equal(t, "collector's Badge Case", view.Title)
		assert.NotNil(t, view.Badges)
	})

	t.Run("revoked badges skipped in view", func(t *testing.T) {
		now := time.Now().UTC()
		cases := noopBadgeCaseRepo()
		cases.getOrCreateByUserIDFn = func(_ context.Context, userID uint, _ string) (*models.BadgeCase, error) {
			return &models.BadgeCase{
				ID:       1,
				UserID:   userID,
				IsPublic: true,
				Items: []models.BadgeCaseItem{
					{BadgeInstance: models.BadgeInstance{ID: 1, Template: models.BadgeTemplate{DefaultBadgeName: "Kept"}}},
					{BadgeInstance: models.BadgeInstance{ID: 2, RevokedAt: &now, Template: models.BadgeTemplate{DefaultBadgeName: "Gone"}}},
				},
			}, nil
		}
		svc := NewBadgeCaseService(cases, noopInstanceRepo(), caseUserRepo(), testLogger())

		view, err := svc.GetCase(context.Background(), 2, "collector")
		require.NoError(t, err)
		require.Len(t, view.Badges, 1)
		assert.Equal(t, "Kept", view.Badges[0].Name)
	})
}

func TestAddBadge(t *testing.T) {
	now := time.Now().UTC()
	ownInstance := func() *models.BadgeInstance {
		return &models.BadgeInstance{
			ID:           5,
			ReceiverType: models.EntityTypeUser,
			ReceiverID:   2,
			AwardStatus:  models.AwardStatusAccepted,
			Template:     models.BadgeTemplate{DefaultBadgeName: "Gold Star"},
		}
	}

	t.Run("adds own badge", func(t *testing.T) {
		cases := noopBadgeCaseRepo()
		var addedInstanceID uint
		cases.addItemFn = func(_ context.Context, _, instanceID uint) (*models.BadgeCaseItem, error) {
			addedInstanceID = instanceID
			return &models.BadgeCaseItem{BadgeInstanceID: instanceID}, nil
		}
		instances := noopInstanceRepo()
		instances.getByIDFn = func(context.Context, uint) (*models.BadgeInstance, error) { return ownInstance(), nil }

		svc := NewBadgeCaseService(cases, instances, caseUserRepo(), testLogger())
		_, err := svc.AddBadge(context.Background(), 2, 5)
		require.NoError(t, err)
		assert.Equal(t, uint(5), addedInstanceID)
	})

	t.Run("someone else's badge", func(t *testing.T) {
		instances := noopInstanceRepo()
		instances.getByIDFn = func(context.Context, uint) (*models.BadgeInstance, error) {
			i := ownInstance()
			i.ReceiverID = 77
			return i, nil
		}
		svc := NewBadgeCaseService(noopBadgeCaseRepo(), instances, caseUserRepo(), testLogger())
		_, err := svc.AddBadge(context.Background(), 2, 5)
		assert.Equal(t, models.CodeForbidden, models.ErrorCode(err))
	})

	t.Run("revoked badge", func(t *testing.T) {
		instances := noopInstanceRepo()
		instances.getByIDFn = func(context.Context, uint) (*models.BadgeInstance, error) {
			i := ownInstance()
			i.RevokedAt = &now
			return i, nil
		}
		svc := NewBadgeCaseService(noopBadgeCaseRepo(), instances, caseUserRepo(), testLogger())
		_, err := svc.AddBadge(context.Background(), 2, 5)
		assert.Equal(t, models.CodeConflict, models.ErrorCode(err))
	})

	t.Run("pending badge", func(t *testing.T) {
		instances := noopInstanceRepo()
		instances.getByIDFn = func(context.Context, uint) (*models.BadgeInstance, error) {
			i := ownInstance()
			i.AwardStatus = models.AwardStatusPending
			return i, nil
		}
		svc := NewBadgeCaseService(noopBadgeCaseRepo(), instances, caseUserRepo(), testLogger())
		_, err := svc.AddBadge(context.Background(), 2, 5)
		assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
	})
}

func TestReorder(t *testing.T) {
	t.Run("rejects duplicates", func(t *testing.T) {
		svc := NewBadgeCaseService(noopBadgeCaseRepo(), noopInstanceRepo(), caseUserRepo(), testLogger())

		_, err := svc.Reorder(context.Background(), 2, []ReorderEntry{
			{BadgeInstanceID: 1, DisplayOrder: 0},
			{BadgeInstanceID: 1, DisplayOrder: 1},
		})
		assert.Equal(t, models.CodeValidation, models.ErrorCode(err))

		_, err = svc.Reorder(context.Background(), 2, []ReorderEntry{
			{BadgeInstanceID: 1, DisplayOrder: 0},
			{BadgeInstanceID: 2, DisplayOrder: 0},
		})
		assert.Equal(t, models.CodeValidation, models.ErrorCode(err))

		_, err = svc.Reorder(context.Background(), 2, nil)
		assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
	})

	t.Run("passes orders through", func(t *testing.T) {
		cases := noopBadgeCaseRepo()
		var gotOrders map[uint]int
		cases.reorderFn = func(_ context.Context, _ uint, orders map[uint]int) error {
			gotOrders = orders
			return nil
		}
		svc := NewBadgeCaseService(cases, noopInstanceRepo(), caseUserRepo(), testLogger())

		_, err := svc.Reorder(context.Background(), 2, []ReorderEntry{
			{BadgeInstanceID: 10, DisplayOrder: 1},
			{BadgeInstanceID: 11, DisplayOrder: 0},
		})
		require.NoError(t, err)
		assert.Equal(t, map[uint]int{10: 1, 11: 0}, gotOrders)
	})
}

func TestSetVisibility(t *testing.T) {
	cases := noopBadgeCaseRepo()
	var updated *models.BadgeCase
	cases.updateFn = func(_ context.Context, badgeCase *models.BadgeCase) error {
		updated = badgeCase
		return nil
	}
	svc := NewBadgeCaseService(cases, noopInstanceRepo(), caseUserRepo(), testLogger())

	_, err := svc.SetVisibility(context.Background(), 2, false)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.False(t, updated.IsPublic)
}
