package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"leadflow-be/internal/entity"
	"leadflow-be/internal/repository/contract"
)

type SubscriptionRepository struct {
	s *Store
	j *journal
}

func NewSubscriptionRepository(s *Store) contract.SubscriptionRepository {
	return &SubscriptionRepository{s: s}
}

func (r *SubscriptionRepository) FindByProviderId(_ context.Context, providerId uint) (*entity.Subscription, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.subscriptionHydrated(providerId), nil
}

func (r *SubscriptionRepository) Save(_ context.Context, subscription *entity.Subscription) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	if existing, ok := r.s.subscriptions[subscription.ServiceProviderId]; ok {
		subscription.Id = existing.Id
		subscription.CreatedAt = existing.CreatedAt
	} else {
		subscription.Id = r.s.nextId("subscriptions")
		subscription.CreatedAt = now
	}
	subscription.UpdatedAt = now
	stored := *subscription
	stored.PlanId = copyUint(subscription.PlanId)
	stored.Plan = nil
	keep(r.j, r.s.subscriptions, subscription.ServiceProviderId)
	r.s.subscriptions[subscription.ServiceProviderId] = stored
	return nil
}

func (r *SubscriptionRepository) FindActivePlans(_ context.Context) ([]*entity.SubscriptionPlan, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.SubscriptionPlan
	for _, p := range r.s.plans {
		if p.IsActive {
			cp := p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].Id < out[j].Id
	})
	return out, nil
}

func (r *SubscriptionRepository) FindPlanById(_ context.Context, id uint) (*entity.SubscriptionPlan, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if p, ok := r.s.plans[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (r *SubscriptionRepository) CreatePlan(_ context.Context, plan *entity.SubscriptionPlan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	plan.Id = r.s.nextId("subscription_plans")
	keep(r.j, r.s.plans, plan.Id)
	r.s.plans[plan.Id] = *plan
	return nil
}

type UserRepository struct {
	s *Store
	j *journal
}

func NewUserRepository(s *Store) contract.UserRepository {
	return &UserRepository{s: s}
}

func (r *UserRepository) Create(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return ErrDuplicate
		}
	}
	user.Id = r.s.nextId("users")
	now := r.s.now()
	user.CreatedAt, user.UpdatedAt = now, now
	keep(r.j, r.s.users, user.Id)
	r.s.users[user.Id] = *user
	return nil
}

func (r *UserRepository) FindById(_ context.Context, id uint) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if u, ok := r.s.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			cp := u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *UserRepository) FindAll(_ context.Context) ([]*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		cp := u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id < out[j].Id })
	return out, nil
}

type SettingRepository struct {
	s *Store
	j *journal
}

func NewSettingRepository(s *Store) contract.SettingRepository {
	return &SettingRepository{s: s}
}

func (r *SettingRepository) FindByGroup(_ context.Context, group string) ([]*entity.Setting, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Setting
	for _, st := range r.s.settings {
		if st.Group == group {
			cp := st
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (r *SettingRepository) FindAll(_ context.Context) ([]*entity.Setting, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Setting, 0, len(r.s.settings))
	for _, st := range r.s.settings {
		cp := st
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Group != out[j].Group {
			return out[i].Group < out[j].Group
		}
		return out[i].Key < out[j].Key
	})
	return out, nil
}

func (r *SettingRepository) Upsert(_ context.Context, setting *entity.Setting) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := setting.Group + "/" + setting.Key
	if existing, ok := r.s.settings[key]; ok {
		setting.Id = existing.Id
	} else {
		setting.Id = r.s.nextId("settings")
	}
	setting.UpdatedAt = r.s.now()
	stored := *setting
	stored.Value = append([]byte(nil), setting.Value...)
	keep(r.j, r.s.settings, key)
	r.s.settings[key] = stored
	return nil
}

type NotificationRepository struct {
	s *Store
	j *journal
}

func NewNotificationRepository(s *Store) contract.NotificationRepository {
	return &NotificationRepository{s: s}
}

func (r *NotificationRepository) Create(_ context.Context, n *entity.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.notifications[n.Id]; exists {
		return ErrDuplicate
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = r.s.now()
	}
	keep(r.j, r.s.notifications, n.Id)
	r.s.notifications[n.Id] = *n
	return nil
}

func (r *NotificationRepository) selectFor(f contract.NotificationFilter) []*entity.Notification {
	var out []*entity.Notification
	for _, n := range r.s.notifications {
		if n.Recipient != f.Recipient {
			continue
		}
		if f.UnreadOnly && n.IsRead() {
			continue
		}
		cp := n
		out = append(out, &cp)
	}
	return out
}

func (r *NotificationRepository) FindByRecipient(_ context.Context, filter contract.NotificationFilter) ([]*entity.Notification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := r.selectFor(filter)
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Id > out[j].Id
	})
	return paginate(out, filter.Limit, filter.Offset), nil
}

func (r *NotificationRepository) CountByRecipient(_ context.Context, filter contract.NotificationFilter) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.selectFor(filter))), nil
}

func (r *NotificationRepository) MarkAsRead(_ context.Context, id string, recipient entity.Recipient, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.notifications[id]
	if !ok || n.Recipient != recipient {
		return false, ErrNotFound
	}
	if n.IsRead() {
		return false, nil
	}
	t := at
	n.ReadAt = &t
	keep(r.j, r.s.notifications, id)
	r.s.notifications[id] = n
	return true, nil
}

func (r *NotificationRepository) MarkAllAsRead(_ context.Context, recipient entity.Recipient, at time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var updated int64
	for id, n := range r.s.notifications {
		if n.Recipient != recipient || n.IsRead() {
			continue
		}
		t := at
		n.ReadAt = &t
		keep(r.j, r.s.notifications, id)
		r.s.notifications[id] = n
		updated++
	}
	return updated, nil
}

type AssignmentCursorRepository struct {
	s *Store
	j *journal
}

func NewAssignmentCursorRepository(s *Store) contract.AssignmentCursorRepository {
	return &AssignmentCursorRepository{s: s}
}

func (r *AssignmentCursorRepository) Next(_ context.Context, locationId uint) (uint64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.cursors[locationId]++
	return r.s.cursors[locationId], nil
}
