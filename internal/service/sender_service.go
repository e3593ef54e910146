package service

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"time"

	"parkmate/internal/db"
	"parkmate/internal/entities"
)

const emailTemplate = `<html><body>
<h2>ParkMate - booking {{.Status}}</h2>
<p>Hello {{.HolderName}},</p>
<p>Your booking <strong>{{.BookingCode}}</strong> at {{.Location}} is {{.Status}}.</p>
<ul>
  <li>Slot: {{.SlotID}}</li>
  <li>Vehicle: {{.VehicleType}} ({{.VehiclePlate}})</li>
  <li>Check-in: {{.StartTimeFormatted}}</li>
  <li>Check-out: {{.EndTimeFormatted}}</li>
</ul>
<p>ParkMate {{.CurrentYear}}. All rights reserved.</p>
</body></html>`

// SenderService delivers booking notifications over email and SMS. It
// implements Notifier; sends run on their own goroutine and failures are
// only logged, never surfaced to the booking flow.
type SenderService struct {
	tmpl *template.Template
}

func NewSenderService() *SenderService {
	return &SenderService{tmpl: template.Must(template.New("booking_email").Parse(emailTemplate))}
}

func (s *SenderService) BookingCreated(b *db.Booking, status db.Status) {
	s.notify(b, "confirmed")
}

func (s *SenderService) BookingCancelled(b *db.Booking) {
	s.notify(b, "cancelled")
}

func (s *SenderService) notify(b *db.Booking, statusWord string) {
	emailData := entities.BookingEmailData{
		HolderName:         b.HolderName,
		BookingCode:        b.Code,
		SlotID:             b.SlotID,
		Location:           b.Location,
		VehicleType:        b.Vehicle.Type,
		VehiclePlate:       b.Vehicle.Plate,
		StartTimeFormatted: b.Interval.Start.Format("02 Jan 2006 15:04 MST"),
		EndTimeFormatted:   b.Interval.End.Format("02 Jan 2006 15:04 MST"),
		Status:             statusWord,
		CurrentYear:        time.Now().Year(),
	}

	subject := fmt.Sprintf("Your ParkMate booking is %s - Code: %s", statusWord, b.Code)
	plainTextBody := fmt.Sprintf(
		"Hello %s,\n\nYour booking at %s is %s.\n\n"+
			"Booking Details:\n"+
			"Booking Code: %s\n"+
			"Slot: %d\n"+
			"Vehicle: %s (Plate: %s)\n"+
			"Check-in: %s\n"+
			"Check-out: %s\n\n"+
			"Thank you for choosing ParkMate.",
		b.HolderName, b.Location, statusWord, b.Code, b.SlotID,
		b.Vehicle.Type, b.Vehicle.Plate,
		emailData.StartTimeFormatted, emailData.EndTimeFormatted,
	)

	var htmlBodyBuffer bytes.Buffer
	if err := s.tmpl.Execute(&htmlBodyBuffer, emailData); err != nil {
		log.Printf("ALERT: executing email template for booking %s: %v", b.Code, err)
	}
	htmlBody := htmlBodyBuffer.String()

	if b.HolderEmail != "" {
		go func(toEmail, toName string) {
			if err := SendEmailWithSendGrid(toEmail, toName, subject, plainTextBody, htmlBody); err != nil {
				log.Printf("ALERT (async): email for booking %s failed: %v", b.Code, err)
			}
		}(b.HolderEmail, b.HolderName)
	}

	if b.HolderPhone != "" {
		smsMessage := fmt.Sprintf("ParkMate: booking %s is %s!\nSlot %d, check-in: %s.\nMore details in your email.",
			b.Code, statusWord, b.SlotID, b.Interval.Start.Format("02/01 15:04"))
		go func(toPhone string) {
			if err := SendSMS(toPhone, smsMessage); err != nil {
				log.Printf("ALERT (async): SMS for booking %s failed: %v", b.Code, err)
			}
		}(b.HolderPhone)
	}
}
