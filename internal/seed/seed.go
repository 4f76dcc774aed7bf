// internal/seed/seed.go
package seed

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"github.com/Marga-Ghale/sanchari-backend/internal/models"
	"github.com/Marga-Ghale/sanchari-backend/internal/repository"
	"github.com/Marga-Ghale/sanchari-backend/internal/types"
)

// DefaultPassword is the credential of every seeded member.
const DefaultPassword = "password123"

// Result reports how many records each collection received.
type Result struct {
	Members int
	Events  int
}

// SeedData fills the members and events collections when they are empty.
// The two collections are checked and written independently, so a populated
// members collection does not stop events from being seeded.
func SeedData(ctx context.Context, repos *repository.Repositories) (Result, error) {
	members, err := Members()
	if err != nil {
		return Result{}, err
	}
	return Seed(ctx, repos, members, Events())
}

func Seed(ctx context.Context, repos *repository.Repositories, members []models.Member, events []models.TravelEvent) (Result, error) {
	var res Result
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		docs, err := repos.Store.GetAll(gctx, types.CollectionMembers)
		if err != nil {
			return fmt.Errorf("check members: %w", err)
		}
		if len(docs) > 0 {
			log.Info().Msg("[Seed] Members already exist, skipping...")
			return nil
		}
		log.Info().Msgf("[Seed] 🌱 Seeding %d members...", len(members))
		for i := range members {
			if err := repos.MemberRepo.Set(gctx, &members[i]); err != nil {
				return fmt.Errorf("seed member %s: %w", members[i].ID, err)
			}
		}
		res.Members = len(members)
		return nil
	})

	g.Go(func() error {
		docs, err := repos.Store.GetAll(gctx, types.CollectionEvents)
		if err != nil {
			return fmt.Errorf("check events: %w", err)
		}
		if len(docs) > 0 {
			log.Info().Msg("[Seed] Events already exist, skipping...")
			return nil
		}
		log.Info().Msgf("[Seed] 🌱 Seeding %d events...", len(events))
		for i := range events {
			if err := repos.EventRepo.Set(gctx, &events[i]); err != nil {
				return fmt.Errorf("seed event %s: %w", events[i].ID, err)
			}
		}
		res.Events = len(events)
		return nil
	})

	if err := g.Wait(); err != nil {
		return res, err
	}
	log.Info().Msgf("[Seed] ✅ Done: %d members, %d events", res.Members, res.Events)
	return res, nil
}

// Members returns the initial community members.
func Members() ([]models.Member, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}
	password := string(hash)

	return []models.Member{
		{
			ID:         "member-karthik",
			Name:       "Karthik Raman",
			Phone:      "+91 98400 11223",
			Email:      "karthik@sanchari.club",
			Password:   password,
			BloodGroup: "O+",
			DOB:        "1986-07-14",
			Birthday:   "1986-07-14",
			Location:   "Adyar, Chennai",
			FamilyMembers: []models.FamilyMember{
				{ID: "fam-priya", Name: "Priya Karthik", Relation: types.RelationSpouse, Age: 37, BloodGroup: "A+"},
				{ID: "fam-anand", Name: "Anand Karthik", Relation: types.RelationChild, Age: 9, BloodGroup: "O+"},
			},
		},
		{
			ID:         "member-meera",
			Name:       "Meera Subramanian",
			Phone:      "+91 94440 55667",
			Email:      "meera@sanchari.club",
			Password:   password,
			BloodGroup: "B+",
			DOB:        "1991-02-03",
			Birthday:   "1991-02-03",
			Location:   "Velachery, Chennai",
			FamilyMembers: []models.FamilyMember{
				{ID: "fam-lakshmi", Name: "Lakshmi Subramanian", Relation: types.RelationParent, Age: 63, BloodGroup: "B+"},
			},
		},
		{
			ID:            "member-arjun",
			Name:          "Arjun Pillai",
			Phone:         "+91 90030 77889",
			Email:         "arjun@sanchari.club",
			Password:      password,
			BloodGroup:    "AB-",
			DOB:           "1995-11-21",
			Birthday:      "1995-11-21",
			Location:      "Tambaram, Chennai",
			FamilyMembers: []models.FamilyMember{},
		},
	}, nil
}

// Events returns the initial trips.
func Events() []models.TravelEvent {
	return []models.TravelEvent{
		{
			ID:          "event-yelagiri",
			Title:       "Yelagiri Hills Weekend Ride",
			Description: "Two-day ride through the Jolarpet ghat with a lakeside camp.",
			Date:        "2026-12-12",
			Capacity:    25,
			Deadline:    "2026-12-01",
			Status:      types.EventPublished,
			Image:       "https://images.unsplash.com/photo-1506905925346-21bda4d32df4",
		},
		{
			ID:          "event-pondicherry",
			Title:       "ECR Coastal Run to Pondicherry",
			Description: "Sunrise start along the East Coast Road, breakfast by the promenade.",
			Date:        "2027-01-18",
			Capacity:    40,
			Deadline:    "2027-01-10",
			Status:      types.EventPublished,
			Image:       "https://images.unsplash.com/photo-1507525428034-b723cf961d3e",
		},
		{
			ID:          "event-munnar",
			Title:       "Munnar Tea Trails",
			Description: "Family trip through the tea estates with a plantation walk.",
			Date:        "2027-03-06",
			Capacity:    18,
			Deadline:    "2027-02-20",
			Status:      types.EventDraft,
		},
	}
}
