package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/exalabs/exapower/internal/auth"
	"github.com/exalabs/exapower/internal/phone"
	"github.com/exalabs/exapower/internal/supabase"
	"github.com/exalabs/exapower/internal/wallet"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// API exposes the auth service and wallet facade to the static demo
// pages as a JSON API. Backend rejections keep their status and message
// so the pages can show them unchanged.
type API struct {
	auth   *auth.Service
	wallet *wallet.Service
	log    *logrus.Logger

	// runInterval is the earning-run countdown tick; tests shorten it.
	runInterval time.Duration
}

func NewAPI(authSvc *auth.Service, walletSvc *wallet.Service, log *logrus.Logger) *API {
	return &API{
		auth:        authSvc,
		wallet:      walletSvc,
		log:         log,
		runInterval: time.Second,
	}
}

type credentialsRequest struct {
	Phone      string `json:"phone"`
	Prefix     string `json:"prefix"`
	Digits     string `json:"digits"`
	InviteCode string `json:"invite_code"`
}

// fullPhone picks the explicit phone when given, otherwise joins the
// dial-code prefix with the digits the way the signup form sends them.
func (r credentialsRequest) fullPhone() string {
	if r.Phone != "" {
		return r.Phone
	}
	return phone.Normalize(r.Prefix, r.Digits)
}

func (a *API) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request format", http.StatusBadRequest)
		return
	}

	profile, err := a.auth.Register(r.Context(), auth.RegisterParams{
		Phone:      req.fullPhone(),
		InviteCode: req.InviteCode,
	})
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, a.log, profile)
}

func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request format", http.StatusBadRequest)
		return
	}

	identity, err := a.auth.Login(r.Context(), req.fullPhone())
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, a.log, identity)
}

func (a *API) Logout(w http.ResponseWriter, r *http.Request) {
	a.auth.Logout()
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) Profile(w http.ResponseWriter, r *http.Request) {
	profile, err := a.auth.CurrentProfile(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}
	if profile == nil {
		http.Error(w, "profile not found", http.StatusNotFound)
		return
	}
	writeJSON(w, a.log, profile)
}

type summaryResponse struct {
	USDTBalance   string `json:"usdt_balance"`
	TotalPersonal string `json:"total_personal"`
	TotalTeam     string `json:"total_team"`
	TodayPersonal string `json:"today_personal"`
	TodayTeam     string `json:"today_team"`
}

func (a *API) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := a.wallet.AssetsSummary(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, a.log, summaryResponse{
		USDTBalance:   summary.USDTBalance.StringFixed(2),
		TotalPersonal: summary.TotalPersonal.StringFixed(2),
		TotalTeam:     summary.TotalTeam.StringFixed(2),
		TodayPersonal: summary.TodayPersonal.StringFixed(2),
		TodayTeam:     summary.TodayTeam.StringFixed(2),
	})
}

type runResponse struct {
	Outcome       string `json:"outcome"`
	EarningAmount string `json:"earning_amount,omitempty"`
	NewBalance    string `json:"new_balance,omitempty"`
}

func (a *API) Run(w http.ResponseWriter, r *http.Request) {
	runner := wallet.NewRunner(a.wallet, a.log)
	runner.Interval = a.runInterval
	res := runner.Run(r.Context())

	switch res.Outcome {
	case wallet.RunAbandoned:
		// The page is gone, nobody is listening for the result.
		return
	case wallet.RunEligibleTomorrow:
		resp := runResponse{Outcome: res.Outcome.String()}
		if res.Earning != nil {
			resp.EarningAmount = res.Earning.EarningAmount.StringFixed(2)
			resp.NewBalance = res.Earning.NewBalance.StringFixed(2)
		}
		writeJSON(w, a.log, resp)
	default:
		a.writeError(w, res.Err)
	}
}

type withdrawRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Network  string          `json:"network"`
	Address  string          `json:"address"`
}

func (a *API) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req withdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request format", http.StatusBadRequest)
		return
	}

	result, err := a.wallet.RequestWithdrawal(r.Context(), wallet.WithdrawalRequest{
		Amount:   req.Amount,
		Currency: req.Currency,
		Network:  req.Network,
		Address:  req.Address,
	})
	if err != nil {
		a.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if len(result) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if _, err := w.Write(result); err != nil {
		a.log.Errorf("failed to write withdrawal response: %v", err)
	}
}

func (a *API) State(w http.ResponseWriter, r *http.Request) {
	state, err := a.wallet.UserState(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}
	if state == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, a.log, state)
}

func (a *API) DepositAddress(w http.ResponseWriter, r *http.Request) {
	addr, err := a.wallet.DepositAddress(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, a.log, addr)
}

func (a *API) writeError(w http.ResponseWriter, err error) {
	var reqErr *supabase.RequestError
	switch {
	case errors.Is(err, auth.ErrPhoneRequired):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, wallet.ErrNoSession):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, auth.ErrAccountNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &reqErr):
		http.Error(w, reqErr.Message, reqErr.Status)
	case errors.Is(err, supabase.ErrEmptyResult):
		http.Error(w, err.Error(), http.StatusBadGateway)
	default:
		a.log.Errorf("request failed: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, log *logrus.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}
