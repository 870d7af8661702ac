package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"secondserving/internal/apperror"
	"secondserving/internal/auth"
	"secondserving/internal/logging"
	"secondserving/internal/models"
	"secondserving/internal/notify"
	"secondserving/internal/phone"
	"secondserving/internal/store"
)

type SignupInput struct {
	FullName         string
	Phone            string
	Password         string
	PasswordConfirm  string
	Kind             string
	Location         *models.GeoPoint
	OrganizationType string
	Vehicle          *models.Vehicle
	TelegramChatID   int64
}

// AuthResult is a freshly issued session.
type AuthResult struct {
	Token   string
	Account *models.Account
}

type ResetInput struct {
	Phone           string
	Kind            string
	OTP             string
	Password        string
	PasswordConfirm string
}

type ProfileUpdate struct {
	FullName         *string
	Location         *models.GeoPoint
	OrganizationType *string
	Vehicle          *models.Vehicle
	TelegramChatID   *int64
	Password         string
	PasswordConfirm  string
}

func parseAccountKind(value string) (models.AccountKind, error) {
	switch kind := models.AccountKind(strings.ToLower(strings.TrimSpace(value))); kind {
	case models.KindDonor, models.KindVolunteer:
		return kind, nil
	}
	return "", apperror.Validation("User type is required and must be either donor or volunteer.")
}

func parsePhone(raw string) (string, error) {
	number := phone.Normalize(raw)
	if !phone.Valid(number) {
		return "", apperror.Validation("Please provide a valid 10-digit phone number")
	}
	return number, nil
}

func checkNewPassword(password, confirm string) error {
	if len(password) < auth.MinPasswordLength {
		return apperror.Validation("Password must be at least 8 characters long")
	}
	if password != confirm {
		return apperror.Validation("Passwords are not the same")
	}
	return nil
}

func (in SignupInput) validate() (models.AccountKind, string, error) {
	if strings.TrimSpace(in.FullName) == "" {
		return "", "", apperror.Validation("Please tell us your name")
	}
	if strings.TrimSpace(in.Phone) == "" {
		return "", "", apperror.Validation("Please provide your phone number")
	}
	number, err := parsePhone(in.Phone)
	if err != nil {
		return "", "", err
	}
	if err := checkNewPassword(in.Password, in.PasswordConfirm); err != nil {
		return "", "", err
	}
	kind, err := parseAccountKind(in.Kind)
	if err != nil {
		return "", "", err
	}
	if in.Location == nil || !in.Location.Valid() {
		return "", "", apperror.Validation("Location is required as [longitude, latitude]")
	}
	if kind == models.KindDonor && !models.ValidOrganizationType(in.OrganizationType) {
		return "", "", apperror.Validation("Donors must provide a valid organization type")
	}
	return kind, number, nil
}

// Signup creates an unverified, inactive account and sends its OTP. An
// unverified account for the same phone and kind is reused with a new OTP.
func (s *Service) Signup(ctx context.Context, in SignupInput) error {
	kind, number, err := in.validate()
	if err != nil {
		return err
	}

	existing, err := s.stores.Accounts.FindByPhone(ctx, number, kind, store.AnyActivity)
	switch {
	case err == nil && existing.IsVerified:
		return apperror.Conflict("User already exists. Please login instead.")
	case err == nil:
		return s.issueSignupOTP(ctx, existing)
	case !errors.Is(err, store.ErrNotFound):
		return err
	}

	hash, err := auth.HashSecret(in.Password)
	if err != nil {
		return err
	}
	now := s.now()
	account := &models.Account{
		FullName:       strings.TrimSpace(in.FullName),
		PhoneNumber:    number,
		Kind:           kind,
		PasswordHash:   hash,
		Location:       models.NewPoint(in.Location.Lng(), in.Location.Lat()),
		TelegramChatID: in.TelegramChatID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	switch kind {
	case models.KindDonor:
		account.OrganizationType = in.OrganizationType
	case models.KindVolunteer:
		account.Vehicle = in.Vehicle
	}

	code, otpHash, expires, err := s.newOTP()
	if err != nil {
		return err
	}
	account.OTPHash = otpHash
	account.OTPExpiresAt = &expires

	if err := s.stores.Accounts.Create(ctx, account); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return apperror.Conflict("User already exists. Please login instead.")
		}
		return err
	}
	logging.For(logging.Auth).WithField("account", account.ID.Hex()).Info("account created, awaiting verification")
	s.send(ctx, "signup_otp", notify.SignupOTP(account, code))
	return nil
}

// newOTP returns a fresh code with its bcrypt hash and expiry.
func (s *Service) newOTP() (code, hash string, expires time.Time, err error) {
	code, err = auth.GenerateOTP(auth.OTPDigits)
	if err != nil {
		return "", "", time.Time{}, err
	}
	hash, err = auth.HashSecret(code)
	if err != nil {
		return "", "", time.Time{}, err
	}
	return code, hash, s.now().Add(s.opts.OTPTTL), nil
}

func (s *Service) issueSignupOTP(ctx context.Context, account *models.Account) error {
	code, hash, expires, err := s.newOTP()
	if err != nil {
		return err
	}
	account.OTPHash = hash
	account.OTPExpiresAt = &expires
	if err := s.stores.Accounts.Save(ctx, account); err != nil {
		return err
	}
	s.send(ctx, "signup_otp", notify.SignupOTP(account, code))
	return nil
}

func (s *Service) ResendOTP(ctx context.Context, rawPhone, rawKind string) error {
	number, err := parsePhone(rawPhone)
	if err != nil {
		return err
	}
	kind, err := parseAccountKind(rawKind)
	if err != nil {
		return err
	}
	account, err := s.stores.Accounts.FindByPhone(ctx, number, kind, store.AnyActivity)
	if err != nil || account.IsVerified {
		if err == nil || errors.Is(err, store.ErrNotFound) {
			return apperror.NotFound("No unverified account found. Please signup first.")
		}
		return err
	}
	return s.issueSignupOTP(ctx, account)
}

// VerifyOTP activates the account when code matches and has not expired.
func (s *Service) VerifyOTP(ctx context.Context, rawPhone, code, rawKind string) (*AuthResult, error) {
	if strings.TrimSpace(rawPhone) == "" || strings.TrimSpace(code) == "" {
		return nil, apperror.Validation("Phone number and OTP are required.")
	}
	kind, err := parseAccountKind(rawKind)
	if err != nil {
		return nil, err
	}
	number := phone.Normalize(rawPhone)

	account, err := s.stores.Accounts.FindByPhone(ctx, number, kind, store.AnyActivity)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperror.Authentication("Invalid credentials")
		}
		return nil, err
	}
	if account.IsVerified {
		return nil, apperror.Validation("Account is already verified. Please login.")
	}
	if account.OTPExpiresAt == nil || !s.now().Before(*account.OTPExpiresAt) ||
		!auth.CheckSecret(account.OTPHash, strings.TrimSpace(code)) {
		return nil, apperror.Authentication("Invalid credentials")
	}

	account.IsVerified = true
	account.Active = true
	account.OTPHash = ""
	account.OTPExpiresAt = nil
	if err := s.stores.Accounts.Save(ctx, account); err != nil {
		return nil, err
	}
	logging.For(logging.Auth).WithField("account", account.ID.Hex()).Info("account verified")
	return s.session(account)
}

func (s *Service) Login(ctx context.Context, rawPhone, password, rawKind string) (*AuthResult, error) {
	if strings.TrimSpace(rawPhone) == "" || password == "" {
		return nil, apperror.Validation("Please provide phone number and password")
	}
	kind, err := parseAccountKind(rawKind)
	if err != nil {
		return nil, err
	}

	account, err := s.stores.Accounts.FindByPhone(ctx, phone.Normalize(rawPhone), kind, store.AnyActivity)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if account == nil || !auth.CheckSecret(account.PasswordHash, password) {
		return nil, apperror.Authentication("Incorrect phone number or password")
	}
	if err := checkStanding(account); err != nil {
		return nil, err
	}
	return s.session(account)
}

func checkStanding(account *models.Account) error {
	if !account.IsVerified {
		return apperror.NotVerified("Please verify your phone number before logging in")
	}
	if !account.Active {
		return apperror.Inactive("This account has been deactivated")
	}
	return nil
}

func (s *Service) session(account *models.Account) (*AuthResult, error) {
	token, err := s.tokens.Issue(account.ID, account.Kind)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, Account: account}, nil
}

// Protect resolves a bearer token to an account in good standing. When kinds
// is non-empty the account must be one of them.
func (s *Service) Protect(ctx context.Context, raw string, kinds ...models.AccountKind) (*models.Account, error) {
	if raw == "" {
		return nil, apperror.Authentication("You are not logged in. Please log in to get access.")
	}
	sess, err := s.tokens.Parse(raw)
	if err != nil {
		return nil, apperror.Authentication("Invalid token. Please log in again.")
	}
	if !sess.Kind.IsAccount() {
		return nil, apperror.Forbidden("You do not have permission to perform this action")
	}

	account, err := s.stores.Accounts.FindByID(ctx, sess.PrincipalID, store.AnyActivity)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperror.Authentication("The user belonging to this token no longer exists.")
		}
		return nil, err
	}
	if account.ChangedPasswordAfter(sess.IssuedAt) {
		return nil, apperror.Authentication("Password recently changed. Please log in again.")
	}
	if err := checkStanding(account); err != nil {
		return nil, err
	}
	if len(kinds) > 0 && !hasKind(kinds, account.Kind) {
		return nil, apperror.Forbidden("You do not have permission to perform this action")
	}
	return account, nil
}

func hasKind(kinds []models.AccountKind, kind models.AccountKind) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// ForgotPassword sends a reset OTP. Unlike other notifications its delivery
// failure is returned, since the user cannot continue without the code.
func (s *Service) ForgotPassword(ctx context.Context, rawPhone, rawKind string) error {
	number, err := parsePhone(rawPhone)
	if err != nil {
		return err
	}
	kind, err := parseAccountKind(rawKind)
	if err != nil {
		return err
	}
	account, err := s.stores.Accounts.FindByPhone(ctx, number, kind, store.ActiveOnly)
	if err != nil {
		return notFound(err, "There is no user with that phone number.")
	}

	code, hash, expires, err := s.newOTP()
	if err != nil {
		return err
	}
	account.ResetOTPHash = hash
	account.ResetOTPExpiresAt = &expires
	if err := s.stores.Accounts.Save(ctx, account); err != nil {
		return err
	}

	if err := s.notifier.Notify(ctx, notify.ResetOTP(account, code)); err != nil {
		account.ResetOTPHash = ""
		account.ResetOTPExpiresAt = nil
		if saveErr := s.stores.Accounts.Save(ctx, account); saveErr != nil {
			logging.For(logging.Auth).WithError(saveErr).Error("clearing reset otp failed")
		}
		return apperror.Dependency("There was an error sending the OTP. Try again later.", err)
	}
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, in ResetInput) (*AuthResult, error) {
	number, err := parsePhone(in.Phone)
	if err != nil {
		return nil, err
	}
	kind, err := parseAccountKind(in.Kind)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.OTP) == "" {
		return nil, apperror.Validation("OTP is required")
	}
	if err := checkNewPassword(in.Password, in.PasswordConfirm); err != nil {
		return nil, err
	}

	account, err := s.stores.Accounts.FindByPhone(ctx, number, kind, store.ActiveOnly)
	if err != nil {
		return nil, notFound(err, "There is no user with that phone number.")
	}
	if account.ResetOTPExpiresAt == nil || !s.now().Before(*account.ResetOTPExpiresAt) ||
		!auth.CheckSecret(account.ResetOTPHash, strings.TrimSpace(in.OTP)) {
		return nil, apperror.Authentication("OTP is invalid or has expired")
	}

	if err := s.setPassword(account, in.Password); err != nil {
		return nil, err
	}
	account.ResetOTPHash = ""
	account.ResetOTPExpiresAt = nil
	if err := s.stores.Accounts.Save(ctx, account); err != nil {
		return nil, err
	}
	return s.session(account)
}

func (s *Service) setPassword(account *models.Account, password string) error {
	hash, err := auth.HashSecret(password)
	if err != nil {
		return err
	}
	changed := s.now().Add(-passwordClockSkew)
	account.PasswordHash = hash
	account.PasswordChangedAt = &changed
	return nil
}

func (s *Service) UpdatePassword(ctx context.Context, account *models.Account, current, password, confirm string) (*AuthResult, error) {
	if !auth.CheckSecret(account.PasswordHash, current) {
		return nil, apperror.Authentication("Your current password is wrong.")
	}
	if err := checkNewPassword(password, confirm); err != nil {
		return nil, err
	}
	if err := s.setPassword(account, password); err != nil {
		return nil, err
	}
	if err := s.stores.Accounts.Save(ctx, account); err != nil {
		return nil, err
	}
	return s.session(account)
}

func (s *Service) UpdateMe(ctx context.Context, account *models.Account, in ProfileUpdate) (*models.Account, error) {
	if in.Password != "" || in.PasswordConfirm != "" {
		return nil, apperror.Validation("This route is not for password updates. Please use /accounts/me/password.")
	}
	if in.FullName != nil {
		name := strings.TrimSpace(*in.FullName)
		if name == "" {
			return nil, apperror.Validation("Please tell us your name")
		}
		account.FullName = name
	}
	if in.Location != nil {
		if !in.Location.Valid() {
			return nil, apperror.Validation("Location is required as [longitude, latitude]")
		}
		account.Location = models.NewPoint(in.Location.Lng(), in.Location.Lat())
	}
	if in.OrganizationType != nil {
		if account.Kind != models.KindDonor || !models.ValidOrganizationType(*in.OrganizationType) {
			return nil, apperror.Validation("Invalid organization type")
		}
		account.OrganizationType = *in.OrganizationType
	}
	if in.Vehicle != nil {
		if account.Kind != models.KindVolunteer {
			return nil, apperror.Validation("Only volunteers can register a vehicle")
		}
		account.Vehicle = in.Vehicle
	}
	if in.TelegramChatID != nil {
		account.TelegramChatID = *in.TelegramChatID
	}

	if err := s.stores.Accounts.Save(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// DeleteMe deactivates the account. Accounts are never removed.
func (s *Service) DeleteMe(ctx context.Context, account *models.Account) error {
	account.Active = false
	return s.stores.Accounts.Save(ctx, account)
}
