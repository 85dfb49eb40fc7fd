package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"viaguild/internal/models"
	"viaguild/internal/storage"
	"viaguild/internal/visual"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type objectStoreStub struct {
	saveTempFn      func(context.Context, []byte, string) (string, error)
	moveFromTempFn  func(context.Context, string, string) (string, error)
	uploadContentFn func(context.Context, string, []byte, string) (string, error)
	deleteTempFn    func(context.Context, string) error
}

func (s *objectStoreStub) SaveTemp(ctx context.Context, content []byte, mimeType string) (string, error) {
	return s.saveTempFn(ctx, content, mimeType)
}
func (s *objectStoreStub) MoveFromTemp(ctx context.Context, tempAssetID, permanentKey string) (string, error) {
	return s.moveFromTempFn(ctx, tempAssetID, permanentKey)
}
func (s *objectStoreStub) UploadContent(ctx context.Context, key string, content []byte, mimeType string) (string, error) {
	return s.uploadContentFn(ctx, key, content, mimeType)
}
func (s *objectStoreStub) DeleteTemp(ctx context.Context, tempAssetID string) error {
	return s.deleteTempFn(ctx, tempAssetID)
}

func createInput(owner uint) CreateTemplateInput {
	return CreateTemplateInput{
		OwnerType:        models.EntityTypeUser,
		OwnerID:          owner,
		AuthoredByUserID: owner,
		DefaultBadgeName: "Gold Star",
	}
}

func TestCreateTemplate(t *testing.T) {
	repo := noopTemplateRepo()
	var created *models.BadgeTemplate
	repo.createFn = func(_ context.Context, template *models.BadgeTemplate) error {
		template.ID = 11
		created = template
		return nil
	}

	svc := NewTemplateService(repo, nil, testLogger())

	in := createInput(1)
	in.DefaultBorderConfig = visual.NewSimpleColorConfig("#FF0000")
	in.DefaultBackgroundConfig = visual.NewHostedAssetConfig("https://cdn.example.com/bg.png")
	in.DefaultForegroundConfig = visual.NewSystemIconConfig("Star", "#00FF00")
	in.FieldDefinitions = []MetadataFieldInput{{DataKey: "event", Label: "Event"}}

	template, err := svc.CreateTemplate(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, uint(11), template.ID)
	assert.Equal(t, "gold-star", template.TemplateSlug)
	assert.Equal(t, models.ShapeCircle, template.DefaultOuterShape)
	assert.False(t, template.IsModifiableByIssuer)

	// Legacy mirrors derived from the config slots.
	assert.Equal(t, "#FF0000", template.DefaultBorderColor)
	assert.Equal(t, visual.LegacyBackgroundHostedImage, template.DefaultBackgroundType)
	assert.Equal(t, "https://cdn.example.com/bg.png", template.DefaultBackgroundValue)
	assert.Equal(t, visual.LegacyForegroundSystemIcon, template.DefaultForegroundType)
	assert.Equal(t, "Star", template.DefaultForegroundValue)
	assert.Equal(t, "#00FF00", template.DefaultForegroundColor)

	require.NotNil(t, created)
	require.Len(t, created.FieldDefinitions, 1)
}

func TestCreateTemplateValidation(t *testing.T) {
	svc := NewTemplateService(noopTemplateRepo(), nil, testLogger())

	tests := []struct {
		name   string
		mutate func(*CreateTemplateInput)
	}{
		{"missing name", func(in *CreateTemplateInput) { in.DefaultBadgeName = "" }},
		{"bad owner type", func(in *CreateTemplateInput) { in.OwnerType = "ROBOT" }},
		{"bad tier", func(in *CreateTemplateInput) { tier := models.BadgeTier("PLATINUM"); in.InherentTier = &tier }},
		{"bad border config", func(in *CreateTemplateInput) { in.DefaultBorderConfig = visual.NewSimpleColorConfig("red") }},
		{"missing metadata key", func(in *CreateTemplateInput) { in.FieldDefinitions = []MetadataFieldInput{{Label: "x"}} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := createInput(1)
			tt.mutate(&in)
			_, err := svc.CreateTemplate(context.Background(), in)
			assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
		})
	}
}

func TestCreateTemplateLegacyScalarInputs(t *testing.T) {
	repo := noopTemplateRepo()
	svc := NewTemplateService(repo, nil, testLogger())

	in := createInput(1)
	in.DefaultBorderColor = "#AA00AA"
	in.DefaultBackgroundType = visual.LegacyBackgroundSolidColor
	in.DefaultBackgroundValue = "#BB11BB"
	in.DefaultForegroundType = visual.LegacyForegroundSystemIcon
	in.DefaultForegroundValue = "Shield"

	template, err := svc.CreateTemplate(context.Background(), in)
	require.NoError(t, err)

	require.NotNil(t, template.DefaultBorderConfig)
	assert.Equal(t, "#AA00AA", template.DefaultBorderConfig.Color)
	require.NotNil(t, template.DefaultBackgroundConfig)
	assert.Equal(t, visual.TypeSimpleColor, template.DefaultBackgroundConfig.Type)
	require.NotNil(t, template.DefaultForegroundConfig)
	assert.Equal(t, "Shield", template.DefaultForegroundConfig.IconValue)
}

func TestCreateTemplateSlugSuffixing(t *testing.T) {
	repo := noopTemplateRepo()
	taken := map[string]bool{"gold-star": true, "gold-star-1": true}
	repo.slugExistsFn = func(_ context.Context, _ models.EntityType, _ uint, slug string) (bool, error) {
		return taken[slug], nil
	}

	svc := NewTemplateService(repo, nil, testLogger())
	template, err := svc.CreateTemplate(context.Background(), createInput(1))
	require.NoError(t, err)
	assert.Equal(t, "gold-star-2", template.TemplateSlug)
}

func TestCreateTemplateSlugExhausted(t *testing.T) {
	repo := noopTemplateRepo()
	repo.slugExistsFn = func(context.Context, models.EntityType, uint, string) (bool, error) {
		return true, nil
	}

	svc := NewTemplateService(repo, nil, testLogger())
	_, err := svc.CreateTemplate(context.Background(), createInput(1))
	assert.Equal(t, models.CodeConflict, models.ErrorCode(err))
}

func TestCreateTemplateSlugFromName(t *testing.T) {
	svc := NewTemplateService(noopTemplateRepo(), nil, testLogger())

	in := createInput(1)
	in.DefaultBadgeName = "Tireless Mentor!"
	template, err := svc.CreateTemplate(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "tireless-mentor", template.TemplateSlug)

	in = createInput(1)
	in.TemplateSlug = "Custom Slug"
	template, err = svc.CreateTemplate(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "custom-slug", template.TemplateSlug)
}

func TestCreateTemplateCommitsUploads(t *testing.T) {
	var movedID, movedKey string
	store := &objectStoreStub{
		moveFromTempFn: func(_ context.Context, tempAssetID, key string) (string, error) {
			movedID = tempAssetID
			movedKey = key
			return "https://cdn.example.com/" + key, nil
		},
	}

	svc := NewTemplateService(noopTemplateRepo(), store, testLogger())

	in := createInput(1)
	in.DefaultBackgroundConfig = visual.NewHostedAssetConfig(storage.UploadRef("tmp-abc"))
	template, err := svc.CreateTemplate(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, "tmp-abc", movedID)
	assert.True(t, strings.HasPrefix(movedKey, "badge-assets/gold-star/"))
	assert.Equal(t, "https://cdn.example.com/"+movedKey, template.DefaultBackgroundConfig.URL)
	// The mirror sees the committed URL, not the upload reference.
	assert.Equal(t, template.DefaultBackgroundConfig.URL, template.DefaultBackgroundValue)
}

func TestCreateTemplateStoresForegroundSVG(t *testing.T) {
	const markup = `<svg xmlns="http://www.w3.org/2000/svg"><path fill="#FF0000"/></svg>`

	var uploadedKey, uploadedMime, deletedTemp string
	var uploadedContent []byte
	store := &objectStoreStub{
		uploadContentFn: func(_ context.Context, key string, content []byte, mimeType string) (string, error) {
			uploadedKey = key
			uploadedContent = content
			uploadedMime = mimeType
			return "https://cdn.example.com/" + key, nil
		},
		deleteTempFn: func(_ context.Context, tempAssetID string) error {
			deletedTemp = tempAssetID
			return nil
		},
		moveFromTempFn: func(context.Context, string, string) (string, error) {
			t.Fatal("pre-transformed content replaces the original upload")
			return "", nil
		},
	}

	svc := NewTemplateService(noopTemplateRepo(), store, testLogger())

	in := createInput(1)
	in.DefaultForegroundConfig = visual.NewCustomizableSVGConfig(nil, storage.UploadRef("tmp-orig"), 0)
	in.ForegroundSvgContent = markup

	template, err := svc.CreateTemplate(context.Background(), in)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(uploadedKey, "badge-assets/gold-star/"))
	assert.True(t, strings.HasSuffix(uploadedKey, ".svg"))
	assert.Equal(t, markup, string(uploadedContent))
	assert.Equal(t, "image/svg+xml", uploadedMime)
	assert.Equal(t, "tmp-orig", deletedTemp)
	assert.Equal(t, "https://cdn.example.com/"+uploadedKey, template.DefaultForegroundConfig.URL)
}

func TestCreateTemplateForegroundSVGValidation(t *testing.T) {
	svc := NewTemplateService(noopTemplateRepo(), &objectStoreStub{}, testLogger())

	t.Run("NotMarkup", func(t *testing.T) {
		in := createInput(1)
		in.DefaultForegroundConfig = visual.NewCustomizableSVGConfig(nil, "", 0)
		in.ForegroundSvgContent = "just some text"
		_, err := svc.CreateTemplate(context.Background(), in)
		assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
	})

	t.Run("NoForegroundConfig", func(t *testing.T) {
		in := createInput(1)
		in.ForegroundSvgContent = "<svg/>"
		_, err := svc.CreateTemplate(context.Background(), in)
		assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
	})
}

func TestUpdateTemplateStoresForegroundSVG(t *testing.T) {
	template := ownedTemplate(1)
	template.DefaultForegroundConfig = visual.NewCustomizableSVGConfig(nil, "https://cdn.example.com/old.svg", 0)

	repo := noopTemplateRepo()
	repo.getByIDFn = func(context.Context, uint) (*models.BadgeTemplate, error) { return template, nil }

	store := &objectStoreStub{
		uploadContentFn: func(_ context.Context, key string, _ []byte, _ string) (string, error) {
			return "https://cdn.example.com/" + key, nil
		},
	}
	svc := NewTemplateService(repo, store, testLogger())

	updated, err := svc.UpdateTemplate(context.Background(), 1, 3, UpdateTemplateInput{
		ForegroundSvgContent: strPtr(`<svg xmlns="http://www.w3.org/2000/svg"/>`),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(updated.DefaultForegroundConfig.URL, "https://cdn.example.com/badge-assets/gold-star/"))
	// The legacy mirror tracks the stored URL.
	assert.Equal(t, updated.DefaultForegroundConfig.URL, updated.DefaultForegroundValue)
}

func TestCreateTemplateUploadMissing(t *testing.T) {
	store := &objectStoreStub{
		moveFromTempFn: func(context.Context, string, string) (string, error) {
			return "", fmt.Errorf("temp asset gone")
		},
	}
	svc := NewTemplateService(noopTemplateRepo(), store, testLogger())

	in := createInput(1)
	in.DefaultBackgroundConfig = visual.NewHostedAssetConfig(storage.UploadRef("tmp-gone"))
	_, err := svc.CreateTemplate(context.Background(), in)
	assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
}

func TestUpdateTemplate(t *testing.T) {
	repo := noopTemplateRepo()
	repo.getByIDFn = func(context.Context, uint) (*models.BadgeTemplate, error) {
		return ownedTemplate(1), nil
	}
	var updated *models.BadgeTemplate
	repo.updateFn = func(_ context.Context, template *models.BadgeTemplate) error {
		updated = template
		return nil
	}

	svc := NewTemplateService(repo, nil, testLogger())

	template, err := svc.UpdateTemplate(context.Background(), 1, 3, UpdateTemplateInput{
		DefaultBadgeName:    strPtr("Platinum Star"),
		DefaultBorderConfig: visual.NewSimpleColorConfig("#446688"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Platinum Star", template.DefaultBadgeName)
	assert.Equal(t, "#446688", template.DefaultBorderColor)
	require.NotNil(t, updated)
}

func TestUpdateTemplateAuthorization(t *testing.T) {
	repo := noopTemplateRepo()
	repo.getByIDFn = func(context.Context, uint) (*models.BadgeTemplate, error) {
		return ownedTemplate(1), nil
	}
	svc := NewTemplateService(repo, nil, testLogger())

	_, err := svc.UpdateTemplate(context.Background(), 99, 3, UpdateTemplateInput{})
	assert.Equal(t, models.CodeForbidden, models.ErrorCode(err))
}

func TestUpdateTemplateGuildAuthor(t *testing.T) {
	guildTemplate := &models.BadgeTemplate{
		ID:               8,
		TemplateSlug:     "guild-badge",
		OwnerType:        models.EntityTypeGuild,
		OwnerID:          50,
		AuthoredByUserID: 7,
		DefaultBadgeName: "Guild Badge",
	}
	repo := noopTemplateRepo()
	repo.getByIDFn = func(context.Context, uint) (*models.BadgeTemplate, error) { return guildTemplate, nil }
	svc := NewTemplateService(repo, nil, testLogger())

	// The authoring user may manage a guild-owned template.
	_, err := svc.UpdateTemplate(context.Background(), 7, 8, UpdateTemplateInput{})
	assert.NoError(t, err)

	_, err = svc.UpdateTemplate(context.Background(), 8, 8, UpdateTemplateInput{})
	assert.Equal(t, models.CodeForbidden, models.ErrorCode(err))
}

func TestUpdateTemplateSlugConflict(t *testing.T) {
	repo := noopTemplateRepo()
	repo.getByIDFn = func(context.Context, uint) (*models.BadgeTemplate, error) {
		return ownedTemplate(1), nil
	}
	repo.slugExistsFn = func(context.Context, models.EntityType, uint, string) (bool, error) {
		return true, nil
	}
	svc := NewTemplateService(repo, nil, testLogger())

	// Renames never auto-suffix; a taken slug is a conflict.
	_, err := svc.UpdateTemplate(context.Background(), 1, 3, UpdateTemplateInput{TemplateSlug: strPtr("taken-slug")})
	assert.Equal(t, models.CodeConflict, models.ErrorCode(err))

	// Re-submitting the current slug is a no-op, not a conflict.
	_, err = svc.UpdateTemplate(context.Background(), 1, 3, UpdateTemplateInput{TemplateSlug: strPtr("gold-star")})
	assert.NoError(t, err)
}

func TestDeleteTemplate(t *testing.T) {
	repo := noopTemplateRepo()
	repo.getByIDFn = func(context.Context, uint) (*models.BadgeTemplate, error) {
		return ownedTemplate(1), nil
	}

	t.Run("live instances block deletion", func(t *testing.T) {
		repo.countLiveInstancesFn = func(context.Context, uint) (int64, error) { return 4, nil }
		svc := NewTemplateService(repo, nil, testLogger())
		err := svc.DeleteTemplate(context.Background(), 1, 3)
		assert.Equal(t, models.CodeConflict, models.ErrorCode(err))
		assert.Contains(t, err.Error(), "4 active badges")
	})

	t.Run("deletes when clear", func(t *testing.T) {
		repo.countLiveInstancesFn = func(context.Context, uint) (int64, error) { return 0, nil }
		var deletedID uint
		repo.deleteFn = func(_ context.Context, id uint) error {
			deletedID = id
			return nil
		}
		svc := NewTemplateService(repo, nil, testLogger())
		require.NoError(t, svc.DeleteTemplate(context.Background(), 1, 3))
		assert.Equal(t, uint(3), deletedID)
	})

	t.Run("non-owner forbidden", func(t *testing.T) {
		svc := NewTemplateService(repo, nil, testLogger())
		err := svc.DeleteTemplate(context.Background(), 99, 3)
		assert.Equal(t, models.CodeForbidden, models.ErrorCode(err))
	})
}
