// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"viaguild/internal/models"
	"viaguild/internal/repository"
	"viaguild/internal/validation"
	"viaguild/internal/visual"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumBadges   int
	ShouldClean bool
}

var (
	firstNames = []string{
		"James", "Mary", "John", "Patricia", "Robert", "Jennifer", "Michael", "Linda",
		"William", "Elizabeth", "David", "Barbara", "Richard", "Susan", "Joseph", "Jessica",
		"Thomas", "Sarah", "Charles", "Karen", "Christopher", "Nancy", "Daniel", "Lisa",
		"Matthew", "Betty", "Anthony", "Margaret", "Mark", "Sandra", "Donald", "Ashley",
		"Steven", "Kimberly", "Paul", "Emily", "Andrew", "Donna", "Joshua", "Michelle",
		"Kenneth", "Dorothy", "Kevin", "Carol", "Brian", "Amanda", "George", "Melissa",
		"Alexander", "Rachel", "Raymond", "Catherine", "Patrick", "Carolyn", "Jack", "Janet",
		"Nathan", "Victoria", "Zachary", "Kelly", "Peter", "Christina", "Kyle", "Lauren",
	}

	lastNames = []string{
		"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis",
		"Rodriguez", "Martinez", "Hernandez", "Lopez", "Gonzalez", "Wilson", "Anderson", "Thomas",
		"Taylor", "Moore", "Jackson", "Martin", "Lee", "Perez", "Thompson", "White",
		"Harris", "Sanchez", "Clark", "Ramirez", "Lewis", "Robinson", "Walker", "Young",
		"Allen", "King", "Wright", "Scott", "Torres", "Nguyen", "Hill", "Flores",
		"Green", "Adams", "Nelson", "Baker", "Hall", "Rivera", "Campbell", "Mitchell",
		"Reed", "Kelly", "Howard", "Ramos", "Kim", "Cox", "Ward", "Richardson",
	}

	badgeAdjectives = []string{
		"Outstanding", "Legendary", "Dedicated", "Fearless", "Tireless", "Brilliant",
		"Founding", "Veteran", "Rising", "Trusted", "Creative", "Generous",
		"Unstoppable", "Steadfast", "Curious", "Resourceful",
	}

	badgeNouns = []string{
		"Contributor", "Organizer", "Mentor", "Builder", "Explorer", "Champion",
		"Moderator", "Archivist", "Strategist", "Pioneer", "Ambassador", "Reviewer",
		"Streamer", "Speedrunner", "Cartographer", "Herald",
	}

	badgeSubtitles = []string{
		"Awarded for exceptional service", "A mark of distinction", "Earned, never given lightly",
		"For going above and beyond", "In recognition of sustained effort",
		"Only a few ever hold this", "",
	}
)

// Seed populates the database with test data
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("🌱 Starting database seeding with %d users and %d badges...", opts.NumUsers, opts.NumBadges)

	gofakeit.Seed(time.Now().UnixNano())

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("⚠️  Warning: Could not clear all existing data, but continuing anyway...")
		}
	}

	users, err := createUsers(db, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("✓ %d test users created", len(users))

	templates, err := createTemplates(db, users)
	if err != nil {
		return fmt.Errorf("failed to create badge templates: %w", err)
	}
	log.Printf("✓ %d badge templates created", len(templates))

	instances, err := awardBadges(db, users, templates, opts.NumBadges)
	if err != nil {
		return fmt.Errorf("failed to award badges: %w", err)
	}
	log.Printf("✓ %d badges awarded", len(instances))

	if err := curateBadgeCases(db, users, instances); err != nil {
		return fmt.Errorf("failed to curate badge cases: %w", err)
	}
	log.Println("✓ badge cases curated")

	log.Println("🎉 Seeding complete!")
	return nil
}

// ReplenishAllocations resets every user's award allocations to the tier
// defaults, for periodic refresh runs against a long-lived environment.
func ReplenishAllocations(db *gorm.DB) error {
	repo := repository.NewAllocationRepository(db)

	var users []models.User
	if err := db.Find(&users).Error; err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	ctx := context.Background()
	for _, user := range users {
		for _, tier := range []models.BadgeTier{models.TierGold, models.TierSilver, models.TierBronze} {
			if err := repo.Replenish(ctx, user.ID, tier, tier.DefaultAllocation()); err != nil {
				return fmt.Errorf("failed to replenish %s allocation for user %d: %w", tier, user.ID, err)
			}
		}
	}
	log.Printf("✓ allocations replenished for %d users", len(users))
	return nil
}

func clearData(db *gorm.DB) error {
	// Delete children before parents to respect foreign keys.
	tables := []interface{}{
		&models.BadgeCaseItem{},
		&models.BadgeCase{},
		&models.Notification{},
		&models.BadgeMetadataValue{},
		&models.BadgeInstance{},
		&models.UserBadgeAllocation{},
		&models.MetadataFieldDefinition{},
		&models.BadgeTemplate{},
		&models.User{},
	}
	for _, table := range tables {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(table).Error; err != nil {
			return err
		}
	}
	return nil
}

func generateRandomName() (string, string) {
	return firstNames[rand.Intn(len(firstNames))], lastNames[rand.Intn(len(lastNames))]
}

func generateUsername(first, last string) string {
	username := strings.ToLower(first + last)
	if rand.Intn(2) == 0 {
		username = fmt.Sprintf("%s_%s", strings.ToLower(first), strings.ToLower(last))
	}
	// Disambiguate; the numeric suffix also keeps us under the length cap.
	username = fmt.Sprintf("%s%d", username, rand.Intn(1000))
	if len(username) > 30 {
		username = username[:30]
	}
	return username
}

func createUsers(db *gorm.DB, count int) ([]models.User, error) {
	// One shared hash keeps seeding fast; bcrypt per-user is noticeably slow.
	hashed, err := bcrypt.GenerateFromPassword([]byte("Password123!seed"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, count)
	for i := 0; i < count; i++ {
		first, last := generateRandomName()
		user := models.User{
			Username:    generateUsername(first, last),
			Email:       fmt.Sprintf("%s.%s%d@%s", strings.ToLower(first), strings.ToLower(last), i, gofakeit.DomainName()),
			Password:    string(hashed),
			DisplayName: fmt.Sprintf("%s %s", first, last),
		}
		if rand.Intn(3) > 0 {
			user.Avatar = fmt.Sprintf("https://picsum.photos/seed/%s/200/200", gofakeit.UUID())
		}
		if err := db.Create(&user).Error; err != nil {
			// Username collisions are possible with random picks; skip and move on.
			continue
		}
		users = append(users, user)
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("no users created")
	}
	return users, nil
}

func randomTier() *models.BadgeTier {
	// Weighted so bronze is common and gold rare, with some untiered.
	tiers := []models.BadgeTier{
		models.TierBronze, models.TierBronze, models.TierBronze,
		models.TierSilver, models.TierSilver,
		models.TierGold,
	}
	if rand.Intn(4) == 0 {
		return nil
	}
	t := tiers[rand.Intn(len(tiers))]
	return &t
}

func randomShape() models.OuterShape {
	shapes := []models.OuterShape{
		models.ShapeCircle, models.ShapeCircle, models.ShapeSquare,
		models.ShapeStar, models.ShapeHexagon, models.ShapeHeart,
	}
	return shapes[rand.Intn(len(shapes))]
}

func randomBackground() *visual.ColorConfig {
	switch rand.Intn(3) {
	case 0:
		return visual.NewHostedAssetConfig(fmt.Sprintf("https://picsum.photos/seed/bg-%s/400/400", gofakeit.UUID()))
	default:
		return visual.NewSimpleColorConfig(gofakeit.HexColor())
	}
}

func randomForeground() *visual.ColorConfig {
	switch rand.Intn(4) {
	case 0:
		icons := []string{"Shield", "Star", "Trophy", "Crown", "Flame", "Gem"}
		return visual.NewSystemIconConfig(icons[rand.Intn(len(icons))], gofakeit.HexColor())
	case 1:
		mappings := visual.ElementMappings{}
		mappings.Set("path.emblem", visual.ElementColors{
			Fill: &visual.ColorEndpoint{Current: gofakeit.HexColor()},
		})
		mappings.Set("path.banner", visual.ElementColors{
			Fill:   &visual.ColorEndpoint{Current: gofakeit.HexColor()},
			Stroke: &visual.ColorEndpoint{Current: gofakeit.HexColor()},
		})
		return visual.NewCustomizableSVGConfig(mappings, fmt.Sprintf("https://assets.viaguild.dev/svg/%s.svg", gofakeit.UUID()), 1.0)
	case 2:
		return visual.NewHostedAssetConfig(fmt.Sprintf("https://picsum.photos/seed/fg-%s/200/200", gofakeit.UUID()))
	default:
		return visual.NewSimpleColorConfig(gofakeit.HexColor())
	}
}

func createTemplates(db *gorm.DB, users []models.User) ([]models.BadgeTemplate, error) {
	templates := make([]models.BadgeTemplate, 0)
	seenSlugs := make(map[string]bool)

	for _, adjective := range badgeAdjectives {
		noun := badgeNouns[rand.Intn(len(badgeNouns))]
		name := fmt.Sprintf("%s %s", adjective, noun)
		author := users[rand.Intn(len(users))]

		slug := validation.NormalizeSlug(name)
		key := fmt.Sprintf("USER/%d/%s", author.ID, slug)
		if seenSlugs[key] {
			continue
		}
		seenSlugs[key] = true

		template := models.BadgeTemplate{
			TemplateSlug:              slug,
			OwnerType:                 models.EntityTypeUser,
			OwnerID:                   author.ID,
			AuthoredByUserID:          author.ID,
			DefaultBadgeName:          name,
			DefaultSubtitleText:       badgeSubtitles[rand.Intn(len(badgeSubtitles))],
			DefaultDisplayDescription: gofakeit.Sentence(10),
			DefaultOuterShape:         randomShape(),
			DefaultBorderConfig:       visual.NewSimpleColorConfig(gofakeit.HexColor()),
			DefaultBackgroundConfig:   randomBackground(),
			DefaultForegroundConfig:   randomForeground(),
			InherentTier:              randomTier(),
		}

		// A few templates track a measurable value (score, time, count).
		if rand.Intn(4) == 0 {
			best, worst := 100.0, 0.0
			template.DefinesMeasure = true
			template.MeasureLabel = "Score"
			template.MeasureBest = &best
			template.MeasureWorst = &worst
			template.MeasureIsNormalizable = true
			template.HigherIsBetter = true
			template.MeasureBestLabel = "Perfect"
			template.MeasureWorstLabel = "Baseline"
		}

		template.DefaultBorderColor = visual.ExtractColor(template.DefaultBorderConfig, visual.DefaultBorderColor)
		template.DefaultBackgroundType, template.DefaultBackgroundValue = visual.DeriveLegacyBackground(template.DefaultBackgroundConfig)
		template.DefaultForegroundType, template.DefaultForegroundValue, template.DefaultForegroundColor = visual.DeriveLegacyForeground(template.DefaultForegroundConfig)

		if rand.Intn(2) == 0 {
			template.FieldDefinitions = []models.MetadataFieldDefinition{
				{DataKey: "event", Label: "Event", DisplayOrder: 0},
				{DataKey: "placement", Label: "Placement", Prefix: "#", DisplayOrder: 1},
			}
		}

		if err := db.Create(&template).Error; err != nil {
			return nil, err
		}
		templates = append(templates, template)
	}
	return templates, nil
}

func awardBadges(db *gorm.DB, users []models.User, templates []models.BadgeTemplate, count int) ([]models.BadgeInstance, error) {
	instances := make([]models.BadgeInstance, 0, count)

	for i := 0; i < count; i++ {
		template := templates[rand.Intn(len(templates))]
		receiver := users[rand.Intn(len(users))]
		if receiver.ID == template.AuthoredByUserID {
			continue
		}

		if template.InherentTier != nil {
			if ok, err := consumeAllocation(db, template.AuthoredByUserID, *template.InherentTier); err != nil {
				return nil, err
			} else if !ok {
				continue
			}
		}

		instance := models.BadgeInstance{
			TemplateID:   template.ID,
			GiverType:    models.EntityTypeUser,
			GiverID:      template.AuthoredByUserID,
			ReceiverType: models.EntityTypeUser,
			ReceiverID:   receiver.ID,
			AwardStatus:  models.AwardStatusAccepted,
			APIVisible:   rand.Intn(3) > 0,
			AssignedAt:   time.Now().UTC().Add(-time.Duration(rand.Intn(90*24)) * time.Hour),
		}

		if rand.Intn(5) == 0 {
			name := fmt.Sprintf("%s (Special Edition)", template.DefaultBadgeName)
			instance.OverrideBadgeName = &name
			instance.OverrideBorderConfig = visual.NewSimpleColorConfig(gofakeit.HexColor())
		}
		if template.DefinesMeasure {
			value := float64(rand.Intn(101))
			instance.MeasureValue = &value
		}
		for _, def := range template.FieldDefinitions {
			value := gofakeit.Word()
			if def.DataKey == "placement" {
				value = fmt.Sprintf("%d", rand.Intn(20)+1)
			}
			instance.MetadataValues = append(instance.MetadataValues, models.BadgeMetadataValue{
				DataKey:   def.DataKey,
				DataValue: value,
			})
		}

		// A sprinkling of revoked badges exercises the revocation filters.
		if rand.Intn(12) == 0 {
			revoked := time.Now().UTC().Add(-time.Duration(rand.Intn(24)) * time.Hour)
			instance.RevokedAt = &revoked
		}

		if err := db.Create(&instance).Error; err != nil {
			return nil, err
		}
		instances = append(instances, instance)
	}
	return instances, nil
}

// consumeAllocation mirrors the conditional decrement used on the award path
// so seeded data never exceeds a giver's tier budget.
func consumeAllocation(db *gorm.DB, userID uint, tier models.BadgeTier) (bool, error) {
	alloc := models.UserBadgeAllocation{
		UserID:    userID,
		Tier:      tier,
		Remaining: tier.DefaultAllocation(),
	}
	if err := db.Where("user_id = ? AND tier = ?", userID, tier).
		FirstOrCreate(&alloc).Error; err != nil {
		return false, err
	}

	result := db.Model(&models.UserBadgeAllocation{}).
		Where("user_id = ? AND tier = ? AND remaining > 0", userID, tier).
		UpdateColumn("remaining", gorm.Expr("remaining - 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func curateBadgeCases(db *gorm.DB, users []models.User, instances []models.BadgeInstance) error {
	byReceiver := make(map[uint][]models.BadgeInstance)
	for _, instance := range instances {
		if instance.RevokedAt != nil {
			continue
		}
		byReceiver[instance.ReceiverID] = append(byReceiver[instance.ReceiverID], instance)
	}

	for _, user := range users {
		received := byReceiver[user.ID]
		if len(received) == 0 {
			continue
		}

		badgeCase := models.BadgeCase{
			UserID:   user.ID,
			Title:    fmt.Sprintf("%s's Badge Case", user.Username),
			IsPublic: rand.Intn(5) > 0,
		}
		if err := db.Create(&badgeCase).Error; err != nil {
			return err
		}

		// Curate up to six badges; not everything a user earns goes on display.
		limit := len(received)
		if limit > 6 {
			limit = 6
		}
		for order := 0; order < limit; order++ {
			item := models.BadgeCaseItem{
				BadgeCaseID:     badgeCase.ID,
				BadgeInstanceID: received[order].ID,
				DisplayOrder:    order,
			}
			if err := db.Create(&item).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
