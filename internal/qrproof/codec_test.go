package qrproof

import (
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parkmate/internal/db"
	apperrors "parkmate/internal/errors"
)

func testBooking() *db.Booking {
	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	return &db.Booking{
		ID:         "8b9d2f9e-6a1c-4b3e-9a3f-0f8f4d2c1a7b",
		Code:       "PK04C1A2",
		HolderID:   "john-doe",
		HolderName: "John Doe",
		Vehicle:    db.VehicleDetails{Type: "Car", Plate: "ABC 123"},
		SlotID:     3,
		Interval:   db.Interval{Start: start, End: start.Add(2 * time.Hour)},
		PriceCents: 1000,
		Location:   "Central Parking, Downtown",
		OwnerName:  "Sarah Johnson",
	}
}

func newTestCodec() *Codec {
	return NewCodec(NewHMACSigner("test-secret"))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	codec := newTestCodec()
	b := testBooking()

	payload, err := codec.Encode(b, db.StatusActive)
	require.NoError(t, err)

	snap, err := codec.Decode(payload)
	require.NoError(t, err)

	want := SnapshotOf(b, db.StatusActive)
	assert.Equal(t, want.ID, snap.ID)
	assert.Equal(t, "john-doe", snap.UserID)
	assert.Equal(t, "John Doe", snap.UserName)
	assert.Equal(t, 3, snap.SpaceID)
	assert.Equal(t, "Central Parking, Downtown", snap.Location)
	assert.Equal(t, "10/03/2026", snap.Date)
	assert.Equal(t, "10:00", snap.Time)
	assert.Equal(t, "2 hours", snap.Duration)
	assert.Equal(t, 10.0, snap.Amount)
	assert.Equal(t, "active", snap.Status)
	assert.Equal(t, "Sarah Johnson", snap.OwnerName)
	assert.Equal(t, db.VehicleDetails{Type: "Car", Plate: "ABC 123"}, snap.VehicleDetails)
	assert.NotEmpty(t, snap.Signature)
}

func TestVerify(t *testing.T) {
	codec := newTestCodec()

	payload, err := codec.Encode(testBooking(), db.StatusUpcoming)
	require.NoError(t, err)

	snap, err := codec.DecodeVerified(payload)
	require.NoError(t, err)
	assert.True(t, codec.Verify(snap))
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	codec := newTestCodec()

	payload, err := codec.Encode(testBooking(), db.StatusUpcoming)
	require.NoError(t, err)

	snap, err := codec.Decode(payload)
	require.NoError(t, err)
	snap.Amount = 0.01

	raw, err := json.Marshal(snap)
	require.NoError(t, err)
	tampered := base64.StdEncoding.EncodeToString(raw)

	assert.False(t, codec.Verify(snap))
	_, err = codec.DecodeVerified(tampered)
	assert.ErrorIs(t, err, apperrors.ErrSignatureMismatch)
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	payload, err := NewCodec(NewHMACSigner("other-secret")).Encode(testBooking(), db.StatusUpcoming)
	require.NoError(t, err)

	_, err = newTestCodec().DecodeVerified(payload)
	assert.ErrorIs(t, err, apperrors.ErrSignatureMismatch)
}

func TestDecodeMalformed(t *testing.T) {
	codec := newTestCodec()

	tests := []struct {
		name    string
		payload string
	}{
		{"not base64", "%%%not-base64%%%"},
		{"not json", base64.StdEncoding.EncodeToString([]byte("plain text"))},
		{"wrong shape", base64.StdEncoding.EncodeToString([]byte(`{"foo": "bar"}`))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Decode(tt.payload)
			assert.ErrorIs(t, err, apperrors.ErrMalformedPayload)
		})
	}
}

func TestStaleProofAfterExtension(t *testing.T) {
	codec := newTestCodec()
	b := testBooking()

	before, err := codec.Encode(b, db.StatusActive)
	require.NoError(t, err)

	b.Interval.End = b.Interval.End.Add(time.Hour)
	b.PriceCents = 1500
	after, err := codec.Encode(b, db.StatusActive)
	require.NoError(t, err)

	assert.NotEqual(t, before, after)

	// The stale proof still verifies as a snapshot; staleness is caught
	// by comparing against the live booking.
	staleSnap, err := codec.DecodeVerified(before)
	require.NoError(t, err)
	current := SnapshotOf(b, db.StatusActive)
	assert.NotEqual(t, current.Duration, staleSnap.Duration)
	assert.NotEqual(t, current.Amount, staleSnap.Amount)
}

func TestPNGOutput(t *testing.T) {
	codec := newTestCodec()

	payload, err := codec.Encode(testBooking(), db.StatusUpcoming)
	require.NoError(t, err)

	png, err := codec.PNG(payload, 256)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), png[:4])
}
