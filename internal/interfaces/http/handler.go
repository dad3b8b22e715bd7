package httpinterface

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/promptpage/promptpay-daemon/internal/core/application"
	"github.com/promptpage/promptpay-daemon/internal/core/domain"
	"github.com/promptpage/promptpay-daemon/pkg/explorer"
)

// userAddressHeader carries the authenticated wallet address of the caller.
// Authentication itself happens upstream, the daemon only consumes the
// resulting address.
const userAddressHeader = "X-User-Address"

const nanoErgPerErg = 1000000000

type handler struct {
	svc *application.PaymentService
}

// NewHandler returns the REST handler exposing the composition payment
// endpoints under /v1/compositions.
func NewHandler(svc *application.PaymentService) http.Handler {
	return &handler{svc: svc}
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.URL.Path, "/v1/compositions") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/compositions"), "/")
	parts := []string{}
	if rest != "" {
		parts = strings.Split(rest, "/")
	}

	switch {
	case len(parts) == 0 && r.Method == http.MethodPost:
		h.propose(w, r)
	case len(parts) == 0 && r.Method == http.MethodGet:
		h.list(w, r)
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.get(w, r, parts[0])
	case len(parts) == 2 && r.Method == http.MethodPost:
		id, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid composition id")
			return
		}
		switch parts[1] {
		case "lock":
			h.lock(w, r, id)
		case "tx":
			h.buildTx(w, r, id)
		case "submit":
			h.submit(w, r, id)
		case "pay":
			h.pay(w, r, id)
		case "confirm":
			h.confirm(w, r, id)
		default:
			writeError(w, http.StatusNotFound, "not found")
		}
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type proposeItemRequest struct {
	SnippetVersionID     int64  `json:"snippetVersionId"`
	CreatorPayoutAddress string `json:"creatorPayoutAddress"`
	PriceNanoErg         uint64 `json:"priceNanoErg"`
}

type proposeRequest struct {
	Items []proposeItemRequest `json:"items"`
}

func (h *handler) propose(w http.ResponseWriter, r *http.Request) {
	userAddress := r.Header.Get(userAddressHeader)

	req := proposeRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	items := make([]domain.CompositionItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, domain.CompositionItem{
			SnippetVersionID:     item.SnippetVersionID,
			CreatorPayoutAddress: item.CreatorPayoutAddress,
			PriceNanoErg:         item.PriceNanoErg,
		})
	}

	composition, err := h.svc.ProposeComposition(r.Context(), userAddress, items)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, compositionToResponse(composition))
}

func (h *handler) list(w http.ResponseWriter, r *http.Request) {
	userAddress := r.Header.Get(userAddressHeader)
	if userAddress == "" {
		writeError(w, http.StatusBadRequest, "missing user address")
		return
	}

	compositions, err := h.svc.ListCompositions(r.Context(), userAddress)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := make([]interface{}, 0, len(compositions))
	for _, c := range compositions {
		resp = append(resp, compositionToResponse(c))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"compositions": resp})
}

func (h *handler) get(w http.ResponseWriter, r *http.Request, rawID string) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid composition id")
		return
	}

	composition, err := h.svc.GetComposition(
		r.Context(), id, r.Header.Get(userAddressHeader),
	)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, compositionToResponse(composition))
}

func (h *handler) lock(w http.ResponseWriter, r *http.Request, id int64) {
	intent, err := h.svc.LockComposition(
		r.Context(), id, r.Header.Get(userAddressHeader),
	)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, intentToResponse(intent))
}

func (h *handler) buildTx(w http.ResponseWriter, r *http.Request, id int64) {
	result, err := h.svc.BuildTransaction(
		r.Context(), id, r.Header.Get(userAddressHeader),
	)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tx":       result.Tx,
		"totalIn":  result.TotalIn,
		"totalOut": result.TotalOut,
		"fee":      result.Fee,
		"change":   result.Change,
	})
}

type submitRequest struct {
	SignedTx json.RawMessage `json:"signedTx"`
}

func (h *handler) submit(w http.ResponseWriter, r *http.Request, id int64) {
	req := submitRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.SignedTx) == 0 {
		writeError(w, http.StatusBadRequest, "missing signed transaction")
		return
	}

	txid, err := h.svc.SubmitTransaction(
		r.Context(), id, r.Header.Get(userAddressHeader), string(req.SignedTx),
	)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"txId": txid})
}

func (h *handler) pay(w http.ResponseWriter, r *http.Request, id int64) {
	txid, err := h.svc.PayWithNodeWallet(
		r.Context(), id, r.Header.Get(userAddressHeader),
	)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"txId": txid})
}

type confirmRequest struct {
	TxID string `json:"txId"`
}

func (h *handler) confirm(w http.ResponseWriter, r *http.Request, id int64) {
	req := confirmRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.ConfirmPayment(
		r.Context(), id, r.Header.Get(userAddressHeader), req.TxID,
	)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	body := map[string]interface{}{
		"txId":                  result.TxID,
		"confirmations":         result.Confirmations,
		"requiredConfirmations": result.RequiredConfirmations,
	}
	if result.Verification != nil {
		body["verification"] = map[string]interface{}{
			"valid":               result.Verification.Valid,
			"platformOutputValid": result.Verification.PlatformOutputValid,
			"creatorOutputsValid": result.Verification.CreatorOutputsValid,
			"registersChecked":    result.Verification.RegistersChecked,
			"errors":              result.Verification.Errors,
		}
	}

	switch result.Status {
	case application.ConfirmStatusTxNotFound:
		body["status"] = "tx_not_found"
		writeJSON(w, http.StatusNotFound, body)
	case application.ConfirmStatusPending:
		body["status"] = "pending"
		writeJSON(w, http.StatusAccepted, body)
	case application.ConfirmStatusPaid:
		body["status"] = "paid"
		writeJSON(w, http.StatusOK, body)
	case application.ConfirmStatusFailed:
		body["status"] = "failed"
		writeJSON(w, http.StatusBadRequest, body)
	}
}

func compositionToResponse(c *domain.Composition) map[string]interface{} {
	items := make([]map[string]interface{}, 0, len(c.Items))
	for _, item := range c.Items {
		items = append(items, map[string]interface{}{
			"snippetVersionId":     item.SnippetVersionID,
			"creatorPayoutAddress": item.CreatorPayoutAddress,
			"priceNanoErg":         item.PriceNanoErg,
			"position":             item.Position,
		})
	}

	return map[string]interface{}{
		"id":                   c.ID,
		"userAddress":          c.UserAddress,
		"status":               c.Status.String(),
		"txId":                 c.TxID,
		"platformFeeNanoErg":   c.PlatformFeeNanoErg,
		"totalRequiredNanoErg": c.TotalRequiredNanoErg,
		"totalRequiredErg":     formatErg(c.TotalRequiredNanoErg),
		"items":                items,
	}
}

func intentToResponse(intent *domain.PaymentIntent) map[string]interface{} {
	creatorOutputs := make([]map[string]interface{}, 0, len(intent.CreatorOutputs))
	for _, out := range intent.CreatorOutputs {
		creatorOutputs = append(creatorOutputs, map[string]interface{}{
			"address":   out.Address,
			"amount":    out.Amount,
			"itemCount": out.ItemCount,
			"itemIds":   out.ItemIDs,
		})
	}

	return map[string]interface{}{
		"compositionId": intent.CompositionID,
		"platformOutput": map[string]interface{}{
			"address": intent.PlatformOutput.Address,
			"amount":  intent.PlatformOutput.Amount,
		},
		"creatorOutputs":   creatorOutputs,
		"memo":             intent.Memo,
		"totalRequired":    intent.TotalRequired,
		"totalRequiredErg": formatErg(intent.TotalRequired),
		"estimatedFee":     intent.EstimatedFee,
		"commitment":       intent.CommitmentHex,
		"protocolVersion":  intent.ProtocolVersion,
	}
}

func formatErg(nanoErg uint64) string {
	return decimal.NewFromInt(int64(nanoErg)).
		Div(decimal.NewFromInt(nanoErgPerErg)).String()
}

func writeServiceError(w http.ResponseWriter, err error) {
	var dustErr *domain.DustOutputError
	var fundsErr *domain.InsufficientFundsError

	switch {
	case errors.Is(err, domain.ErrCompositionNotFound),
		errors.Is(err, domain.ErrPaymentNotFound),
		errors.Is(err, explorer.ErrTransactionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, application.ErrNotAllowed):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrCompositionAlreadyPaid):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, application.ErrSignerUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.As(err, &fundsErr):
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":     fundsErr.Error(),
			"required":  fundsErr.Required,
			"available": fundsErr.Available,
		})
	case errors.As(err, &dustErr):
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":    dustErr.Error(),
			"address":  dustErr.Address,
			"amount":   dustErr.Amount,
			"minValue": dustErr.MinValue,
		})
	case errors.Is(err, domain.ErrCompositionIsEmpty),
		errors.Is(err, domain.ErrCompositionMustBeProposed),
		errors.Is(err, domain.ErrCompositionMustBeLocked),
		errors.Is(err, domain.ErrInvalidAddress),
		errors.Is(err, domain.ErrAmountNotPositive),
		errors.Is(err, domain.ErrDuplicateCreatorAddress),
		errors.Is(err, domain.ErrIntentInconsistent),
		errors.Is(err, domain.ErrNullTxID),
		errors.Is(err, application.ErrInvalidTxID):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.WithError(err).Error("unhandled error serving request")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Warn("writing response")
	}
}
