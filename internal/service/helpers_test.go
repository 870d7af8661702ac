package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"secondserving/internal/auth"
	"secondserving/internal/logging"
	"secondserving/internal/models"
	"secondserving/internal/notify"
	"secondserving/internal/store"
	"secondserving/internal/store/memory"
)

func init() {
	logging.Silence()
}

const testSecret = "test-secret-that-is-long-enough"

type recorder struct {
	mu    sync.Mutex
	msgs  []notify.Message
	posts []notify.Message
	err   error
}

func (r *recorder) Channel() string { return "recorder" }

func (r *recorder) Notify(_ context.Context, msg notify.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
	return r.err
}

func (r *recorder) Post(_ context.Context, msg notify.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.posts = append(r.posts, msg)
	return nil
}

func (r *recorder) to(phone string) []notify.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []notify.Message
	for _, m := range r.msgs {
		if m.Phone == phone {
			out = append(out, m)
		}
	}
	return out
}

var otpPattern = regexp.MustCompile(`is: (\d{6})`)

func (r *recorder) lastOTP(t *testing.T, phone string) string {
	t.Helper()
	msgs := r.to(phone)
	require.NotEmpty(t, msgs, "no message to %s", phone)
	match := otpPattern.FindStringSubmatch(msgs[len(msgs)-1].Body)
	require.Len(t, match, 2)
	return match[1]
}

type fixedClassifier struct {
	group models.TargetGroup
	err   error
	calls int
}

func (f *fixedClassifier) Classify(context.Context, string, string) (models.TargetGroup, error) {
	f.calls++
	return f.group, f.err
}

type harness struct {
	svc    *Service
	stores store.Stores
	notes  *recorder
	cl     *fixedClassifier
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	stores := memory.New().Stores()
	notes := &recorder{}
	cl := &fixedClassifier{err: errors.New("classifier offline")}
	svc := New(stores, auth.NewTokenIssuer(testSecret, time.Hour), cl, notes, notes, Options{
		OTPTTL:                10 * time.Minute,
		VolunteerRadiusMeters: 3000,
		AcceptURL:             func(id string) string { return "https://app.test/volunteer/accept/" + id },
	})
	return &harness{svc: svc, stores: stores, notes: notes, cl: cl}
}

var spotSeq int32

var bengaluru = models.NewPoint(77.59, 12.97)

// verifiedAccount signs up and verifies an account through the public flow.
func (h *harness) verifiedAccount(t *testing.T, kind models.AccountKind, phone string, at models.GeoPoint) *models.Account {
	t.Helper()
	ctx := context.Background()
	in := SignupInput{
		FullName:        string(kind) + " " + phone,
		Phone:           phone,
		Password:        "password123",
		PasswordConfirm: "password123",
		Kind:            string(kind),
		Location:        &at,
	}
	if kind == models.KindDonor {
		in.OrganizationType = "restaurant"
	}
	require.NoError(t, h.svc.Signup(ctx, in))
	res, err := h.svc.VerifyOTP(ctx, phone, h.notes.lastOTP(t, phone), string(kind))
	require.NoError(t, err)
	return res.Account
}

func (h *harness) spot(t *testing.T, name string, at models.GeoPoint, active bool, categories ...string) *models.HungerSpot {
	t.Helper()
	hash, err := auth.HashSecret("spotpass123")
	require.NoError(t, err)
	spot := &models.HungerSpot{
		Name:          name,
		Location:      models.HungerSpotLocation{Address: name + " road", Point: at},
		Categories:    models.StringList(categories),
		ContactPerson: models.ContactPerson{Name: name + " lead", Phone: fmt.Sprintf("80000%05d", atomic.AddInt32(&spotSeq, 1))},
		IsActive:      active,
		PasswordHash:  hash,
	}
	require.NoError(t, h.stores.HungerSpots.Create(context.Background(), spot))
	return spot
}

func ptrTime(t time.Time) *time.Time { return &t }
