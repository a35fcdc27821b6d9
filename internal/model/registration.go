package model

import "time"

// Registration type tags used by the front desk. Type itself is free-form.
const (
	TypeCheckIn  = "CheckIn"
	TypeCheckOut = "CheckOut"
)

// Registration is a hotel registration record as exchanged with clients.
// Every field is always present in the wire encoding, including zero values,
// so a record survives an encode/decode round trip unchanged. That holds for
// strings that are valid UTF-8 and a Date in years 0 to 9999; EncodeRegistration
// rejects anything else.
type Registration struct {
	Id           int       `json:"Id"`
	Type         string    `json:"Type"`
	Date         time.Time `json:"Date"`
	CustomerId   string    `json:"CustomerId"`
	CustomerName string    `json:"CustomerName"`
	Passport     string    `json:"Passport"`
	Address      string    `json:"Address"`
	Amount       int       `json:"Amount"`
	Total        int       `json:"Total"`
	Culture      string    `json:"Culture"`
	PhoneNumber  string    `json:"PhoneNumber"`
}

// NewRegistration returns a record with every field at its zero value.
func NewRegistration() Registration {
	return Registration{}
}

// WireFields lists the keys of the wire encoding in declaration order.
var WireFields = []string{
	"Id",
	"Type",
	"Date",
	"CustomerId",
	"CustomerName",
	"Passport",
	"Address",
	"Amount",
	"Total",
	"Culture",
	"PhoneNumber",
}
