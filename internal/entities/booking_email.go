package entities

type BookingEmailData struct {
	HolderName         string
	BookingCode        string
	SlotID             int
	Location           string
	VehicleType        string
	VehiclePlate       string
	StartTimeFormatted string
	EndTimeFormatted   string
	Status             string
	CurrentYear        int
}
