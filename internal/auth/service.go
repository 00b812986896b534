package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/exalabs/exapower/internal/models"
	"github.com/exalabs/exapower/internal/session"
	"github.com/exalabs/exapower/internal/supabase"
	"github.com/sirupsen/logrus"
)

var (
	ErrPhoneRequired   = errors.New("phone is required")
	ErrAccountNotFound = errors.New("account not found")
)

const userSelect = "id,phone,invite_code,used_invite_code,public_id,created_at"

// Service resolves users by phone number. The phone alone is the
// credential; the backing schema stores no passwords.
type Service struct {
	client *supabase.Client
	store  session.Store
	log    *logrus.Logger
}

func NewService(client *supabase.Client, store session.Store, log *logrus.Logger) *Service {
	return &Service{
		client: client,
		store:  store,
		log:    log,
	}
}

type RegisterParams struct {
	Phone      string
	InviteCode string
}

// Register creates an account and stores the resulting session. A blank
// invite code must leave the field out of the payload entirely: the
// backend bootstraps the first account only when the field is absent,
// an empty string would be treated as an invalid code.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*models.UserProfile, error) {
	ph := strings.TrimSpace(params.Phone)
	if ph == "" {
		return nil, ErrPhoneRequired
	}

	payload := map[string]any{"phone": ph}
	if code := strings.TrimSpace(params.InviteCode); code != "" {
		payload["used_invite_code"] = code
	}

	body, err := s.client.Insert(ctx, "users", payload)
	if err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}

	var rows []models.UserProfile
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("unexpected signup response: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("unexpected signup response: %w", supabase.ErrEmptyResult)
	}

	user := rows[0]
	s.saveSession(user.ID, user.Phone)
	return &user, nil
}

// Login looks up an account by exact phone match and stores the session.
func (s *Service) Login(ctx context.Context, ph string) (*models.Identity, error) {
	ph = strings.TrimSpace(ph)
	if ph == "" {
		return nil, ErrPhoneRequired
	}

	user, err := s.fetchUser(ctx, "phone", ph)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrAccountNotFound
	}

	s.saveSession(user.ID, user.Phone)
	return &models.Identity{ID: user.ID, Phone: user.Phone}, nil
}

// CurrentUserID returns the stored session id, or "" when no session is
// stored or the session store is unavailable.
func (s *Service) CurrentUserID() string {
	id, err := s.store.Get()
	if err != nil {
		s.log.Warnf("failed to read session: %v", err)
		return ""
	}
	return id
}

// CurrentProfile resolves the stored session to a full profile. Returns
// nil without error when there is no session or the lookup misses.
func (s *Service) CurrentProfile(ctx context.Context) (*models.UserProfile, error) {
	id := s.CurrentUserID()
	if id == "" {
		return nil, nil
	}
	return s.fetchUser(ctx, "id", id)
}

func (s *Service) Logout() {
	if err := s.store.Clear(); err != nil {
		s.log.Warnf("failed to clear session: %v", err)
	}
}

func (s *Service) fetchUser(ctx context.Context, column, value string) (*models.UserProfile, error) {
	body, err := s.client.Resource(ctx, "users", map[string]string{
		"select": userSelect,
		column:   "eq." + value,
		"limit":  "1",
	})
	if err != nil {
		return nil, err
	}

	var rows []models.UserProfile
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode user row: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// saveSession is best-effort: a failing session store means the user just
// appears logged out, it never fails the auth call itself.
func (s *Service) saveSession(id, ph string) {
	if err := s.store.Set(id, ph); err != nil {
		s.log.Warnf("failed to persist session: %v", err)
	}
}
