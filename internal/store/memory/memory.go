// Package memory is an in-process store used by tests and local runs without
// MongoDB. It keeps the conditional-update contract of the Mongo store.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"secondserving/internal/models"
	"secondserving/internal/store"
)

type Store struct {
	mu        sync.Mutex
	accounts  map[primitive.ObjectID]models.Account
	spots     map[primitive.ObjectID]models.HungerSpot
	donations map[primitive.ObjectID]models.Donation
}

func New() *Store {
	return &Store{
		accounts:  make(map[primitive.ObjectID]models.Account),
		spots:     make(map[primitive.ObjectID]models.HungerSpot),
		donations: make(map[primitive.ObjectID]models.Donation),
	}
}

// Stores exposes s through the store interfaces.
func (s *Store) Stores() store.Stores {
	return store.Stores{
		Accounts:    accounts{s},
		HungerSpots: hungerSpots{s},
		Donations:   donations{s},
	}
}

func copyID(id *primitive.ObjectID) *primitive.ObjectID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func copyPoint(p models.GeoPoint) models.GeoPoint {
	p.Coordinates = append([]float64(nil), p.Coordinates...)
	return p
}

func cloneAccount(a models.Account) models.Account {
	a.PasswordChangedAt = copyTime(a.PasswordChangedAt)
	a.OTPExpiresAt = copyTime(a.OTPExpiresAt)
	a.ResetOTPExpiresAt = copyTime(a.ResetOTPExpiresAt)
	a.Location = copyPoint(a.Location)
	if a.Vehicle != nil {
		v := *a.Vehicle
		a.Vehicle = &v
	}
	return a
}

func cloneSpot(h models.HungerSpot) models.HungerSpot {
	h.Categories = append(models.StringList(nil), h.Categories...)
	h.Location.Point = copyPoint(h.Location.Point)
	h.PasswordChangedAt = copyTime(h.PasswordChangedAt)
	return h
}

func cloneDonation(d models.Donation) models.Donation {
	d.VolunteerID = copyID(d.VolunteerID)
	d.AssignedHungerSpot = copyID(d.AssignedHungerSpot)
	d.AssignmentTime = copyTime(d.AssignmentTime)
	d.DeliveryTime = copyTime(d.DeliveryTime)
	d.PickupLocation.Point = copyPoint(d.PickupLocation.Point)
	return d
}

type accounts struct{ s *Store }

func (r accounts) Create(_ context.Context, account *models.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.accounts {
		if existing.PhoneNumber == account.PhoneNumber && existing.Kind == account.Kind {
			return store.ErrDuplicate
		}
	}
	if account.ID.IsZero() {
		account.ID = primitive.NewObjectID()
	}
	r.s.accounts[account.ID] = cloneAccount(*account)
	return nil
}

func (r accounts) FindByID(_ context.Context, id primitive.ObjectID, q store.Query) (*models.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.accounts[id]
	if !ok || (!q.IncludeInactive && !a.Active) {
		return nil, store.ErrNotFound
	}
	out := cloneAccount(a)
	return &out, nil
}

func (r accounts) FindByPhone(_ context.Context, phone string, kind models.AccountKind, q store.Query) (*models.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, a := range r.s.accounts {
		if a.PhoneNumber != phone || a.Kind != kind {
			continue
		}
		if !q.IncludeInactive && !a.Active {
			return nil, store.ErrNotFound
		}
		out := cloneAccount(a)
		return &out, nil
	}
	return nil, store.ErrNotFound
}

func (r accounts) Save(_ context.Context, account *models.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.accounts[account.ID]; !ok {
		return store.ErrNotFound
	}
	account.UpdatedAt = time.Now()
	r.s.accounts[account.ID] = cloneAccount(*account)
	return nil
}

func (r accounts) NearbyVolunteers(_ context.Context, point models.GeoPoint, radiusMeters float64) ([]models.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	type hit struct {
		account  models.Account
		distance float64
	}
	hits := make([]hit, 0)
	for _, a := range r.s.accounts {
		if a.Kind != models.KindVolunteer || !a.Active || !a.IsVerified || !a.Location.Valid() {
			continue
		}
		d := models.DistanceMeters(point, a.Location)
		if d <= radiusMeters {
			hits = append(hits, hit{cloneAccount(a), d})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].distance < hits[j].distance })

	out := make([]models.Account, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.account)
	}
	return out, nil
}

type hungerSpots struct{ s *Store }

func (r hungerSpots) Create(_ context.Context, spot *models.HungerSpot) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if spot.ID.IsZero() {
		spot.ID = primitive.NewObjectID()
	}
	if _, ok := r.s.spots[spot.ID]; ok {
		return store.ErrDuplicate
	}
	r.s.spots[spot.ID] = cloneSpot(*spot)
	return nil
}

func (r hungerSpots) FindByID(_ context.Context, id primitive.ObjectID, q store.Query) (*models.HungerSpot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	h, ok := r.s.spots[id]
	if !ok || (!q.IncludeInactive && !h.IsActive) {
		return nil, store.ErrNotFound
	}
	out := cloneSpot(h)
	return &out, nil
}

func (r hungerSpots) List(_ context.Context, q store.Query) ([]models.HungerSpot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]models.HungerSpot, 0, len(r.s.spots))
	for _, h := range r.s.spots {
		if q.IncludeInactive || h.IsActive {
			out = append(out, cloneSpot(h))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r hungerSpots) Save(_ context.Context, spot *models.HungerSpot) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.spots[spot.ID]; !ok {
		return store.ErrNotFound
	}
	spot.UpdatedAt = time.Now()
	r.s.spots[spot.ID] = cloneSpot(*spot)
	return nil
}

func (r hungerSpots) Nearest(_ context.Context, point models.GeoPoint, group models.TargetGroup, limit int64) ([]models.HungerSpot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	candidates := make([]models.HungerSpot, 0)
	for _, h := range r.s.spots {
		if !h.IsActive || !h.Location.Point.Valid() {
			continue
		}
		if group == models.GroupYoung && !h.Accepts(models.GroupYoung) {
			continue
		}
		candidates = append(candidates, cloneSpot(h))
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return models.DistanceMeters(point, candidates[i].Location.Point) <
			models.DistanceMeters(point, candidates[j].Location.Point)
	})
	if limit > 0 && int64(len(candidates)) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

type donations struct{ s *Store }

func (r donations) Create(_ context.Context, donation *models.Donation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if donation.ID.IsZero() {
		donation.ID = primitive.NewObjectID()
	}
	if _, ok := r.s.donations[donation.ID]; ok {
		return store.ErrDuplicate
	}
	r.s.donations[donation.ID] = cloneDonation(*donation)
	return nil
}

func (r donations) FindByID(_ context.Context, id primitive.ObjectID) (*models.Donation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	d, ok := r.s.donations[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := cloneDonation(d)
	return &out, nil
}

func (r donations) list(match func(models.Donation) bool, opts store.ListOptions) []models.Donation {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]models.Donation, 0)
	for _, d := range r.s.donations {
		if match(d) {
			out = append(out, cloneDonation(d))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	if opts.Limit <= 0 {
		return out
	}
	page := opts.Page
	if page < 1 {
		page = 1
	}
	start := (page - 1) * opts.Limit
	if start >= int64(len(out)) {
		return []models.Donation{}
	}
	end := start + opts.Limit
	if end > int64(len(out)) {
		end = int64(len(out))
	}
	return out[start:end]
}

func sameID(id *primitive.ObjectID, want primitive.ObjectID) bool {
	return id != nil && *id == want
}

func (r donations) ListByDonor(_ context.Context, donorID primitive.ObjectID, opts store.ListOptions) ([]models.Donation, error) {
	return r.list(func(d models.Donation) bool { return d.DonorID == donorID }, opts), nil
}

func (r donations) ListByVolunteer(_ context.Context, volunteerID primitive.ObjectID, opts store.ListOptions) ([]models.Donation, error) {
	return r.list(func(d models.Donation) bool { return sameID(d.VolunteerID, volunteerID) }, opts), nil
}

func (r donations) ListByHungerSpot(_ context.Context, spotID primitive.ObjectID, opts store.ListOptions) ([]models.Donation, error) {
	return r.list(func(d models.Donation) bool { return sameID(d.AssignedHungerSpot, spotID) }, opts), nil
}

func (r donations) AssignVolunteer(_ context.Context, id, volunteerID primitive.ObjectID, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	d, ok := r.s.donations[id]
	if !ok || d.VolunteerID != nil || d.Status != models.StatusPending {
		return false, nil
	}
	d.VolunteerID = copyID(&volunteerID)
	d.Status = models.StatusVolunteerAssigned
	d.AssignmentTime = copyTime(&at)
	d.UpdatedAt = at
	r.s.donations[id] = d
	return true, nil
}

func (r donations) ApplyTransition(_ context.Context, id primitive.ObjectID, t store.Transition) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	d, ok := r.s.donations[id]
	if !ok || d.Status != t.From {
		return false, nil
	}
	d.Status = t.To
	d.UpdatedAt = t.At
	if t.AssignmentTime != nil {
		d.AssignmentTime = copyTime(t.AssignmentTime)
	}
	if t.DeliveryTime != nil {
		d.DeliveryTime = copyTime(t.DeliveryTime)
	}
	if t.HungerSpotID != nil {
		d.AssignedHungerSpot = copyID(t.HungerSpotID)
	}
	if t.RejectionReason != "" {
		d.RejectionReason = t.RejectionReason
	}
	r.s.donations[id] = d
	return true, nil
}

func (r donations) ListExpiredPending(_ context.Context, now time.Time) ([]models.Donation, error) {
	return r.list(func(d models.Donation) bool {
		return d.Status == models.StatusPending && d.FoodDetails.ExpiryTime.Before(now)
	}, store.ListOptions{}), nil
}
