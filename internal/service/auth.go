package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/raphaelgruber/creassist/internal/appstate"
	"github.com/raphaelgruber/creassist/internal/models"
	"github.com/raphaelgruber/creassist/internal/notify"
)

// CRM is the backend's customer-relationship store.
type CRM interface {
	CreateUser(ctx context.Context, input models.SignupInput) (string, error)
	UpdateUser(ctx context.Context, userID string, update models.UserUpdate) error
	Conversations(ctx context.Context, userID string) ([]models.Message, error)
	TagMessage(ctx context.Context, messageID, tag string) error
}

// AuthService signs users in and out and keeps the app state in step.
type AuthService struct {
	base
	crm   CRM
	state *appstate.State
	now   func() time.Time
}

// NewAuthService creates a new auth service.
func NewAuthService(crm CRM, state *appstate.State, opts ...Option) *AuthService {
	return &AuthService{
		base:  newBase(opts),
		crm:   crm,
		state: state,
		now:   time.Now,
	}
}

// Login signs in with email and password.
//
// The backend has no login endpoint yet: the user is derived locally from the
// email and the password is not checked. Real authentication belongs to an
// external identity service.
func (s *AuthService) Login(_ context.Context, email, _ string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		s.notifier.Notify(notify.Warning, "Please enter your email")
		return nil, fmt.Errorf("email: %w", ErrMissingField)
	}

	name, _, _ := strings.Cut(email, "@")
	user := models.User{
		ID:      "user_" + strconv.FormatInt(s.now().UnixMilli(), 10),
		Name:    name,
		Email:   email,
		Company: "Demo Company",
	}
	if err := s.state.SetUser(user); err != nil {
		s.fail("save profile failed", "Login failed. Please try again.", err)
		return nil, err
	}

	s.notifier.Notify(notify.Success, "Welcome back! Login successful.")
	return &user, nil
}

// Signup creates a CRM user and signs it in.
func (s *AuthService) Signup(ctx context.Context, input models.SignupInput) (*models.User, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	input.Company = strings.TrimSpace(input.Company)
	switch {
	case input.Name == "":
		s.notifier.Notify(notify.Warning, "Please enter your name")
		return nil, fmt.Errorf("name: %w", ErrMissingField)
	case input.Email == "":
		s.notifier.Notify(notify.Warning, "Please enter your email")
		return nil, fmt.Errorf("email: %w", ErrMissingField)
	}

	id, err := s.crm.CreateUser(ctx, input)
	if err != nil {
		s.fail("create user failed", "Signup failed. Please try again.", err, "email", input.Email)
		return nil, fmt.Errorf("signup: %w", err)
	}

	user := models.User{ID: id, Name: input.Name, Email: input.Email, Company: input.Company}
	if err := s.state.SetUser(user); err != nil {
		s.fail("save profile failed", "Signup failed. Please try again.", err)
		return nil, err
	}

	s.logger.Info("user signed up", "user_id", id)
	s.notifier.Notify(notify.Success, "Account created successfully! Welcome to AI CRE Assistant.")
	return &user, nil
}

// Logout clears the signed-in user and the stored profile.
func (s *AuthService) Logout() error {
	if err := s.state.Clear(); err != nil {
		s.fail("clear profile failed", "Logout failed", err)
		return err
	}
	s.notifier.Notify(notify.Info, "You have been logged out")
	return nil
}

// Current returns the signed-in user, or nil.
func (s *AuthService) Current() *models.User {
	return s.state.User()
}

// RequireUser returns the signed-in user or ErrNotLoggedIn.
func (s *AuthService) RequireUser() (*models.User, error) {
	u := s.state.User()
	if u == nil {
		return nil, ErrNotLoggedIn
	}
	return u, nil
}

// ActorID returns the signed-in user's id, or Anonymous.
func (s *AuthService) ActorID() string {
	if u := s.state.User(); u != nil {
		return u.ID
	}
	return Anonymous
}

// UpdateProfile changes the signed-in user's CRM profile and the local copy.
func (s *AuthService) UpdateProfile(ctx context.Context, update models.UserUpdate) (*models.User, error) {
	u, err := s.RequireUser()
	if err != nil {
		return nil, err
	}
	if update.Empty() {
		s.notifier.Notify(notify.Warning, "Nothing to update")
		return nil, fmt.Errorf("profile: %w", ErrMissingField)
	}

	if err := s.crm.UpdateUser(ctx, u.ID, update); err != nil {
		s.fail("update user failed", "Failed to update profile", err, "user_id", u.ID)
		return nil, fmt.Errorf("update profile: %w", err)
	}

	if update.Name != nil {
		u.Name = *update.Name
	}
	if update.Email != nil {
		u.Email = *update.Email
	}
	if update.Company != nil {
		u.Company = *update.Company
	}
	if err := s.state.SetUser(*u); err != nil {
		s.fail("save profile failed", "Failed to update profile", err)
		return nil, err
	}
	s.notifier.Notify(notify.Success, "Profile updated")
	return u, nil
}

// Conversations returns the messages the CRM logged for the signed-in user.
func (s *AuthService) Conversations(ctx context.Context) ([]models.Message, error) {
	u, err := s.RequireUser()
	if err != nil {
		return nil, err
	}
	msgs, err := s.crm.Conversations(ctx, u.ID)
	if err != nil {
		s.fail("load crm conversations failed", "Failed to load conversations", err, "user_id", u.ID)
		return nil, fmt.Errorf("crm conversations: %w", err)
	}
	return msgs, nil
}

// TagMessage labels a stored message in the CRM.
func (s *AuthService) TagMessage(ctx context.Context, messageID, tag string) error {
	messageID = strings.TrimSpace(messageID)
	tag = strings.TrimSpace(tag)
	if messageID == "" || tag == "" {
		s.notifier.Notify(notify.Warning, "Please enter a message id and a tag")
		return fmt.Errorf("tag: %w", ErrMissingField)
	}
	if err := s.crm.TagMessage(ctx, messageID, tag); err != nil {
		s.fail("tag message failed", "Failed to tag message", err, "message_id", messageID)
		return fmt.Errorf("tag message: %w", err)
	}
	s.notifier.Notify(notify.Success, "Message tagged")
	return nil
}
