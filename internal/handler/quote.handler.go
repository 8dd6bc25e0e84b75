package handler

import (
	"net/http"

	"storvbox-be/internal/quote"
	"storvbox-be/internal/utils"
)

func (h *Handler) SubmitQuote(w http.ResponseWriter, r *http.Request) {
	var in quote.RequestInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, err)
		return
	}

	req, err := h.QuoteSvc.SubmitRequest(r.Context(), in)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, map[string]any{
		"success":   true,
		"requestId": req.ID,
		"number":    req.Number,
	})
}

func (h *Handler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var in quote.ContactInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, err)
		return
	}

	msg, err := h.QuoteSvc.SubmitContact(r.Context(), in)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, map[string]any{"success": true, "messageId": msg.ID})
}
