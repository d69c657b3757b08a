package main

import (
	"encoding/json"
	"errors"
	"time"

	"leadflow-be/internal/entity"
	"leadflow-be/internal/model"
	"leadflow-be/pkg/assignment"

	"github.com/fatih/color"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const demoPassword = "password"

type seeder struct {
	db              *gorm.DB
	hash            string
	locationsBySlug map[string]*model.Location
	plan            *model.SubscriptionPlan
}

func newSeeder(db *gorm.DB) *seeder {
	return &seeder{db: db, locationsBySlug: map[string]*model.Location{}}
}

func (s *seeder) password() (string, error) {
	if s.hash != "" {
		return s.hash, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	s.hash = string(hash)
	return s.hash, nil
}

// exists reports whether a row matching the query is already present.
func exists(db *gorm.DB, dest interface{}, query string, args ...interface{}) (bool, error) {
	err := db.Where(query, args...).First(dest).Error
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, err
}

func (s *seeder) admins() error {
	hash, err := s.password()
	if err != nil {
		return err
	}
	admins := []model.User{
		{Name: "Admin", Email: "admin@leadflow.test"},
		{Name: "Operations", Email: "ops@leadflow.test"},
	}
	for _, u := range admins {
		var existing model.User
		found, err := exists(s.db, &existing, "email = ?", u.Email)
		if err != nil {
			return err
		}
		if found {
			color.White("  Admin '%s' already exists, skipping...", u.Email)
			continue
		}
		u.Password = hash
		if err := s.db.Create(&u).Error; err != nil {
			return err
		}
		color.Green("  Created admin: %s", u.Email)
	}
	return nil
}

func (s *seeder) plans() error {
	plans := []model.SubscriptionPlan{
		{Name: "Starter", PriceId: "price_starter_monthly", Price: 49, Interval: "monthly", TrialDays: 14, SortOrder: 1, IsActive: true,
			Features: datatypes.JSONSlice[string]{"Up to 50 leads per month", "Email notifications"}},
		{Name: "Pro", PriceId: "price_pro_monthly", Price: 149, Interval: "monthly", SortOrder: 2, IsActive: true,
			Features: datatypes.JSONSlice[string]{"Unlimited leads", "Realtime dashboard", "Priority routing"}},
	}
	for i := range plans {
		p := plans[i]
		var existing model.SubscriptionPlan
		found, err := exists(s.db, &existing, "name = ?", p.Name)
		if err != nil {
			return err
		}
		if found {
			color.White("  Plan '%s' already exists, skipping...", p.Name)
			if s.plan == nil {
				s.plan = &existing
			}
			continue
		}
		if err := s.db.Create(&p).Error; err != nil {
			return err
		}
		if s.plan == nil {
			s.plan = &p
		}
		color.Green("  Created plan: %s ($%.2f/%s)", p.Name, p.Price, p.Interval)
	}
	return nil
}

func (s *seeder) locations() error {
	locations := []model.Location{
		{Name: "Austin", Slug: "austin", Address: "Austin, TX 78701", AssignmentAlgorithm: string(assignment.RoundRobin)},
		{Name: "Dallas", Slug: "dallas", Address: "Dallas, TX 75201", AssignmentAlgorithm: string(assignment.LoadBalance)},
		{Name: "Houston", Slug: "houston", Address: "Houston, TX 77002", AssignmentAlgorithm: string(assignment.Geographic)},
	}
	for i := range locations {
		l := locations[i]
		var existing model.Location
		found, err := exists(s.db, &existing, "slug = ?", l.Slug)
		if err != nil {
			return err
		}
		if found {
			color.White("  Location '%s' already exists, skipping...", l.Slug)
			s.locationsBySlug[l.Slug] = &existing
			continue
		}
		if err := s.db.Create(&l).Error; err != nil {
			return err
		}
		s.locationsBySlug[l.Slug] = &l
		color.Green("  Created location: %s (%s)", l.Name, l.AssignmentAlgorithm)
	}
	return nil
}

func (s *seeder) providers() error {
	hash, err := s.password()
	if err != nil {
		return err
	}
	providers := []struct {
		provider model.ServiceProvider
		serves   []string
	}{
		{model.ServiceProvider{Name: "Lone Star Roofing", Email: "lonestar@leadflow.test", Phone: "512-555-0100", Address: "Austin, TX 78704"}, []string{"austin", "houston"}},
		{model.ServiceProvider{Name: "Hill Country Builders", Email: "hillcountry@leadflow.test", Phone: "512-555-0101", Address: "Austin, TX 78745"}, []string{"austin", "dallas"}},
		{model.ServiceProvider{Name: "Bayou Renovations", Email: "bayou@leadflow.test", Phone: "713-555-0102", Address: "Houston, TX 77006"}, []string{"houston"}},
	}

	periodEnd := time.Now().AddDate(0, 1, 0)
	for _, item := range providers {
		p := item.provider
		var existing model.ServiceProvider
		found, err := exists(s.db, &existing, "email = ?", p.Email)
		if err != nil {
			return err
		}
		if found {
			color.White("  Provider '%s' already exists, skipping...", p.Email)
			continue
		}

		err = s.db.Transaction(func(tx *gorm.DB) error {
			p.Password = hash
			p.IsActive = true
			for _, slug := range item.serves {
				if l, ok := s.locationsBySlug[slug]; ok {
					p.Locations = append(p.Locations, l)
				}
			}
			if err := tx.Omit("Locations.*").Create(&p).Error; err != nil {
				return err
			}
			sub := model.Subscription{
				ServiceProviderId: p.Id,
				Status:            string(entity.SubscriptionStatusActive),
				CurrentPeriodEnd:  &periodEnd,
			}
			if s.plan != nil {
				sub.PlanId = &s.plan.Id
			}
			return tx.Create(&sub).Error
		})
		if err != nil {
			return err
		}
		color.Green("  Created provider: %s serving %v", p.Name, item.serves)
	}
	return nil
}

func (s *seeder) settings() error {
	defaults := map[string]interface{}{
		entity.SettingPusherEnabled:    true,
		entity.SettingPusherAppKey:     "leadflow",
		entity.SettingPusherAppCluster: "local",
	}
	for key, value := range defaults {
		var existing model.Setting
		found, err := exists(s.db, &existing, `"group" = ? AND key = ?`, entity.SettingGroupPusher, key)
		if err != nil {
			return err
		}
		if found {
			color.White("  Setting '%s' already exists, skipping...", key)
			continue
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return err
		}
		st := model.Setting{Group: entity.SettingGroupPusher, Key: key, Value: datatypes.JSON(raw)}
		if err := s.db.Create(&st).Error; err != nil {
			return err
		}
		color.Green("  Created setting: %s.%s", st.Group, key)
	}
	return nil
}
