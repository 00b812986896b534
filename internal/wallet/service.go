package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/exalabs/exapower/internal/models"
	"github.com/exalabs/exapower/internal/session"
	"github.com/exalabs/exapower/internal/supabase"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var ErrNoSession = errors.New("missing user session")

const (
	DefaultCurrency = "usdt"
	DefaultNetwork  = "bep20"

	depositNetwork        = "BEP20"
	depositCurrency       = "USDT"
	depositAmountUSD      = 10
	createPaymentFunction = "nowpayments-create-payment"
)

// Service exposes the wallet operations of the backend. Every call
// requires a stored session; eligibility, balances and rate limits are
// decided entirely server-side.
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

func (s *Service) userID() (string, error) {
	id, err := s.store.Get()
	if err != nil {
		s.log.Warnf("failed to read session: %v", err)
		return "", ErrNoSession
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return "", ErrNoSession
	}
	return id, nil
}

// AssetsSummary fetches the current balance snapshot. The values are
// recomputed by the backend on every call, nothing is cached.
func (s *Service) AssetsSummary(ctx context.Context) (*models.AssetsSummary, error) {
	uid, err := s.userID()
	if err != nil {
		return nil, err
	}

	raw, err := s.client.Rpc(ctx, "get_assets_summary", map[string]any{"p_user": uid})
	if err != nil {
		return nil, err
	}
	row, err := supabase.FirstRow(raw)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, supabase.ErrEmptyResult
	}

	var summary models.AssetsSummary
	if err := json.Unmarshal(row, &summary); err != nil {
		return nil, fmt.Errorf("failed to decode assets summary: %w", err)
	}
	return &summary, nil
}

// PerformEarningAction invokes the daily earning procedure. This is the
// only state-changing operation the client exposes; the backend alone
// decides whether the caller is eligible. The procedure is set-returning,
// a nil result means it returned no row.
func (s *Service) PerformEarningAction(ctx context.Context) (*models.EarningResult, error) {
	uid, err := s.userID()
	if err != nil {
		return nil, err
	}

	raw, err := s.client.Rpc(ctx, "perform_ipower_action", map[string]any{"p_user": uid})
	if err != nil {
		return nil, err
	}
	row, err := supabase.FirstRow(raw)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}

	var result models.EarningResult
	if err := json.Unmarshal(row, &result); err != nil {
		return nil, fmt.Errorf("failed to decode earning result: %w", err)
	}
	return &result, nil
}

type WithdrawalRequest struct {
	Amount   decimal.Decimal
	Currency string
	Network  string
	Address  string
}

// RequestWithdrawal passes a withdrawal through to the backend. Balance,
// address format and minimum amount checks are all backend-owned; the
// client only fills defaults and trims the address.
func (s *Service) RequestWithdrawal(ctx context.Context, req WithdrawalRequest) (json.RawMessage, error) {
	uid, err := s.userID()
	if err != nil {
		return nil, err
	}

	currency := req.Currency
	if currency == "" {
		currency = DefaultCurrency
	}
	network := req.Network
	if network == "" {
		network = DefaultNetwork
	}

	return s.client.Rpc(ctx, "request_withdrawal", map[string]any{
		"p_user":     uid,
		"p_amount":   json.Number(req.Amount.String()),
		"p_currency": currency,
		"p_network":  network,
		"p_address":  strings.TrimSpace(req.Address),
	})
}

// UserState fetches the server-derived earning-eligibility flags. Returns
// nil without error when no row exists or the lookup fails; callers treat
// an unknown state the same as no state.
func (s *Service) UserState(ctx context.Context) (*models.UserState, error) {
	uid, err := s.userID()
	if err != nil {
		return nil, err
	}

	body, err := s.client.Resource(ctx, "user_state", map[string]string{
		"select":  "current_level,is_locked,is_funded,is_activated",
		"user_id": "eq." + uid,
		"limit":   "1",
	})
	if err != nil {
		s.log.Warnf("user state lookup failed: %v", err)
		return nil, nil
	}

	var rows []models.UserState
	if err := json.Unmarshal(body, &rows); err != nil {
		s.log.Warnf("failed to decode user state: %v", err)
		return nil, nil
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// DepositAddress returns the user's deposit address, creating one through
// the payments edge function when none exists. Rows written by the old
// payment-link integration hold a URL instead of a wallet address; those
// are regenerated too.
func (s *Service) DepositAddress(ctx context.Context) (*models.DepositAddress, error) {
	uid, err := s.userID()
	if err != nil {
		return nil, err
	}

	body, err := s.client.Resource(ctx, "deposit_addresses", map[string]string{
		"select":       "pay_address,payment_id,network,pay_currency",
		"user_id":      "eq." + uid,
		"network":      "eq." + depositNetwork,
		"pay_currency": "eq." + depositCurrency,
		"limit":        "1",
	})
	if err == nil {
		var rows []models.DepositAddress
		if err := json.Unmarshal(body, &rows); err == nil && len(rows) > 0 {
			addr := strings.TrimSpace(rows[0].PayAddress)
			if addr != "" && !isPaymentLink(addr) {
				rows[0].PayAddress = addr
				return &rows[0], nil
			}
		}
	} else {
		s.log.Warnf("deposit address lookup failed: %v", err)
	}

	return s.createDepositAddress(ctx, uid)
}

func (s *Service) createDepositAddress(ctx context.Context, uid string) (*models.DepositAddress, error) {
	body, err := s.client.Function(ctx, createPaymentFunction, map[string]any{
		"user_id":      uid,
		"amount_usd":   depositAmountUSD,
		"network":      depositNetwork,
		"pay_currency": depositCurrency,
	})
	if err != nil {
		return nil, err
	}

	var addr models.DepositAddress
	if err := json.Unmarshal(body, &addr); err != nil {
		return nil, fmt.Errorf("failed to decode deposit address: %w", err)
	}
	addr.PayAddress = strings.TrimSpace(addr.PayAddress)
	if addr.PayAddress == "" {
		return nil, supabase.ErrEmptyResult
	}
	return &addr, nil
}

func isPaymentLink(addr string) bool {
	lower := strings.ToLower(addr)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

var cooldownPattern = regexp.MustCompile(`(?i)too soon|24 hours|wait`)

// IsCooldown reports whether a backend rejection means the daily earning
// action was already used. The backend sends no structured code for this,
// so the message text is the only available signal; keep the match in one
// place so a future error code lands here.
func IsCooldown(err error) bool {
	var reqErr *supabase.RequestError
	if !errors.As(err, &reqErr) {
		return false
	}
	return cooldownPattern.MatchString(reqErr.Message)
}
