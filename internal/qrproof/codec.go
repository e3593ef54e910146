package qrproof

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/skip2/go-qrcode"

	"parkmate/internal/db"
	apperrors "parkmate/internal/errors"
	"parkmate/internal/utils"
)

// Snapshot is the booking subset carried inside a QR proof. Immutable once
// issued; an extended booking needs a freshly issued proof.
type Snapshot struct {
	ID             string            `json:"id"`
	UserID         string            `json:"userId"`
	UserName       string            `json:"userName"`
	SpaceID        int               `json:"spaceId"`
	Location       string            `json:"location"`
	Date           string            `json:"date"`
	Time           string            `json:"time"`
	Duration       string            `json:"duration"`
	Amount         float64           `json:"amount"`
	Status         string            `json:"status"`
	OwnerName      string            `json:"ownerName"`
	VehicleDetails db.VehicleDetails `json:"vehicleDetails"`
	Signature      string            `json:"signature"`
}

// Codec turns bookings into transportable, signed proof payloads and back.
// Read-only over booking records.
type Codec struct {
	signer Signer
}

func NewCodec(signer Signer) *Codec {
	return &Codec{signer: signer}
}

// SnapshotOf builds the unsigned proof view of a booking.
func SnapshotOf(b *db.Booking, status db.Status) Snapshot {
	return Snapshot{
		ID:             b.Code,
		UserID:         b.HolderID,
		UserName:       b.HolderName,
		SpaceID:        b.SlotID,
		Location:       b.Location,
		Date:           b.Interval.Start.Format("02/01/2006"),
		Time:           b.Interval.Start.Format("15:04"),
		Duration:       utils.FormatDuration(b.Interval.Duration()),
		Amount:         float64(b.PriceCents) / 100,
		Status:         string(status),
		OwnerName:      b.OwnerName,
		VehicleDetails: b.Vehicle,
	}
}

// Encode serializes the booking snapshot, signs the canonical bytes and
// returns the base64 payload carried by the QR code.
func (c *Codec) Encode(b *db.Booking, status db.Status) (string, error) {
	snap := SnapshotOf(b, status)
	canonical, err := canonicalBytes(snap)
	if err != nil {
		return "", err
	}
	snap.Signature = c.signer.Sign(canonical)

	raw, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("marshaling proof payload: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// Decode parses a payload back into a snapshot without checking its
// signature. Fails with ErrMalformedPayload when the payload is not
// base64 JSON of the expected shape.
func (c *Codec) Decode(payload string) (*Snapshot, error) {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrMalformedPayload, err)
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrMalformedPayload, err)
	}
	if snap.ID == "" || snap.SpaceID == 0 {
		return nil, fmt.Errorf("%w: missing booking fields", apperrors.ErrMalformedPayload)
	}
	return &snap, nil
}

// Verify recomputes the signature over the decoded fields and compares it
// to the embedded one.
func (c *Codec) Verify(snap *Snapshot) bool {
	unsigned := *snap
	unsigned.Signature = ""
	canonical, err := canonicalBytes(unsigned)
	if err != nil {
		return false
	}
	return c.signer.Check(canonical, snap.Signature)
}

// DecodeVerified decodes the payload and rejects it when the signature
// does not match.
func (c *Codec) DecodeVerified(payload string) (*Snapshot, error) {
	snap, err := c.Decode(payload)
	if err != nil {
		return nil, err
	}
	if !c.Verify(snap) {
		return nil, apperrors.ErrSignatureMismatch
	}
	return snap, nil
}

// PNG renders the payload as a QR image of the given pixel size.
func (c *Codec) PNG(payload string, size int) ([]byte, error) {
	return qrcode.Encode(payload, qrcode.Medium, size)
}

// canonicalBytes is the exact byte representation signatures are computed
// over: the snapshot JSON with an empty signature field.
func canonicalBytes(snap Snapshot) ([]byte, error) {
	snap.Signature = ""
	raw, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("marshaling canonical proof bytes: %w", err)
	}
	return raw, nil
}
