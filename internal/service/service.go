// Package service implements the donation workflows on top of the store,
// classifier and notifier contracts. Handlers stay thin and call into it.
package service

import (
	"context"
	"errors"
	"time"

	"secondserving/internal/apperror"
	"secondserving/internal/auth"
	"secondserving/internal/classifier"
	"secondserving/internal/logging"
	"secondserving/internal/metrics"
	"secondserving/internal/models"
	"secondserving/internal/notify"
	"secondserving/internal/store"
)

const (
	autoAssignLimit   = 1
	donorChoiceLimit  = 3
	defaultRadiusM    = 3000
	defaultOTPTTL     = 10 * time.Minute
	passwordClockSkew = time.Second
)

type Options struct {
	OTPTTL                time.Duration
	VolunteerRadiusMeters float64
	// AcceptURL builds the link sent to volunteers for a donation id.
	AcceptURL func(donationID string) string
}

type Service struct {
	stores     store.Stores
	tokens     *auth.TokenIssuer
	classifier classifier.Classifier
	notifier   notify.Notifier
	group      notify.GroupPoster
	opts       Options
	now        func() time.Time
}

// New wires a Service. group may be nil when no volunteer chat is configured.
func New(stores store.Stores, tokens *auth.TokenIssuer, cl classifier.Classifier, notifier notify.Notifier, group notify.GroupPoster, opts Options) *Service {
	if opts.OTPTTL <= 0 {
		opts.OTPTTL = defaultOTPTTL
	}
	if opts.VolunteerRadiusMeters <= 0 {
		opts.VolunteerRadiusMeters = defaultRadiusM
	}
	if opts.AcceptURL == nil {
		opts.AcceptURL = func(id string) string { return "/volunteer/accept/" + id }
	}
	return &Service{
		stores:     stores,
		tokens:     tokens,
		classifier: cl,
		notifier:   notifier,
		group:      group,
		opts:       opts,
		now:        time.Now,
	}
}

func (s *Service) TokenTTL() time.Duration { return s.tokens.TTL() }

// classify never fails: any classifier error means everyone.
func (s *Service) classify(ctx context.Context, category, description string) models.TargetGroup {
	if s.classifier == nil {
		return models.GroupEveryone
	}
	group, err := s.classifier.Classify(ctx, category, description)
	if err != nil {
		metrics.ClassifierFallback()
		logging.For(logging.Classifier).WithError(err).Warn("classification failed, using everyone")
		return models.GroupEveryone
	}
	return group
}

// send is a single best-effort attempt. Failures are logged and dropped.
func (s *Service) send(ctx context.Context, what string, msg notify.Message) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, msg); err != nil {
		logging.For(logging.Notify).WithError(err).WithField("kind", what).Warn("notification not delivered")
	}
}

func (s *Service) post(ctx context.Context, msg notify.Message) {
	if s.group == nil {
		return
	}
	err := s.group.Post(ctx, msg)
	metrics.Notification("telegram_group", err)
	if err != nil {
		logging.For(logging.Notify).WithError(err).Warn("volunteer group post failed")
	}
}

func notFound(err error, message string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperror.NotFound(message)
	}
	return err
}
