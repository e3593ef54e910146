package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"parkmate/internal/qrproof"
	"parkmate/internal/service"
)

type QRHandler struct {
	Service  *service.BookingService
	Codec    *qrproof.Codec
	validate *validator.Validate
}

func NewQRHandler(svc *service.BookingService, codec *qrproof.Codec) *QRHandler {
	return &QRHandler{Service: svc, Codec: codec, validate: validator.New()}
}

// BookingQR issues a fresh signed proof for the booking and renders it as
// a PNG QR code. Extending a booking changes the proof, so clients must
// re-fetch after an extension.
func (h *QRHandler) BookingQR(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	booking, err := h.Service.GetBooking(id)
	if err != nil {
		writeError(w, err)
		return
	}

	payload, err := h.Codec.Encode(booking, h.Service.Status(booking))
	if err != nil {
		writeError(w, err)
		return
	}
	png, err := h.Codec.PNG(payload, 256)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

// BookingProof returns the raw signed payload, for clients that render
// the QR themselves.
func (h *QRHandler) BookingProof(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	booking, err := h.Service.GetBooking(id)
	if err != nil {
		writeError(w, err)
		return
	}
	payload, err := h.Codec.Encode(booking, h.Service.Status(booking))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"payload": payload})
}

// VerifyProof checks a scanned payload: signature first, then a
// cross-check against the live booking. A proof issued before an
// extension still carries a valid signature but stale fields; that case
// is reported as a mismatch, not a verification success.
func (h *QRHandler) VerifyProof(w http.ResponseWriter, r *http.Request) {
	var req VerifyProofRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}

	snap, err := h.Codec.DecodeVerified(req.Payload)
	if err != nil {
		writeError(w, err)
		return
	}

	// Find the live booking by code; proofs carry the display code.
	mismatch := true
	for _, b := range h.Service.ListBookings("", "") {
		if b.Code != snap.ID {
			continue
		}
		mismatch = staleProof(qrproof.SnapshotOf(b, h.Service.Status(b)), *snap)
		break
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"valid":    true,
		"mismatch": mismatch,
		"booking":  snap,
	})
}

// staleProof reports whether a proof was issued before the booking was
// extended. Only fields an extension mutates are compared; status moves
// on its own as time passes and must not invalidate a proof.
func staleProof(current, snap qrproof.Snapshot) bool {
	return current.Duration != snap.Duration ||
		current.Amount != snap.Amount ||
		current.SpaceID != snap.SpaceID
}
