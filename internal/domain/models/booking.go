package models

import (
	"strings"

	"railway/internal/domain"
)

// ChildRequest is one child in a family booking.
type ChildRequest struct {
	Name   string `json:"name"`
	Age    int    `json:"age"`
	Gender string `json:"gender"`
}

// BookingRequest is the booking payload, either a single passenger or a
// mother travelling with up to four children.
type BookingRequest struct {
	Name                 string         `json:"name"`
	Age                  int            `json:"age"`
	Gender               string         `json:"gender"`
	IsMotherWithChildren bool           `json:"is_mother_with_children"`
	Children             []ChildRequest `json:"children"`
}

func validGender(g string) bool {
	switch g {
	case "M", "F", "O":
		return true
	}
	return false
}

func validName(n string) bool {
	n = strings.TrimSpace(n)
	return len(n) >= 2 && len(n) <= 100
}

// Validate rejects malformed requests before any transaction opens.
func (r BookingRequest) Validate() error {
	if !validName(r.Name) {
		return domain.ValidationError{Field: "name", Msg: "must be between 2 and 100 characters"}
	}
	if r.Age < 0 || r.Age > 120 {
		return domain.ValidationError{Field: "age", Msg: "must be between 0 and 120"}
	}
	if !validGender(r.Gender) {
		return domain.ValidationError{Field: "gender", Msg: "must be M, F, or O"}
	}

	if !r.IsMotherWithChildren {
		if len(r.Children) > 0 {
			return domain.ValidationError{Field: "children", Msg: "must not be provided for individual bookings"}
		}
		return nil
	}

	if r.Gender != "F" {
		return domain.ValidationError{Field: "gender", Msg: "only female passengers can book with children"}
	}
	if r.Age < 18 {
		return domain.ValidationError{Field: "age", Msg: "mother must be at least 18 years old"}
	}
	if len(r.Children) == 0 {
		return domain.ValidationError{Field: "children", Msg: "at least one child is required when booking as mother with children"}
	}
	if len(r.Children) > 4 {
		return domain.ValidationError{Field: "children", Msg: "maximum 4 children allowed"}
	}
	for _, c := range r.Children {
		if !validName(c.Name) {
			return domain.ValidationError{Field: "children.name", Msg: "must be between 2 and 100 characters"}
		}
		if c.Age < 0 || c.Age > 17 {
			return domain.ValidationError{Field: "children.age", Msg: "child must be under 18 years old"}
		}
		if !validGender(c.Gender) {
			return domain.ValidationError{Field: "children.gender", Msg: "must be M, F, or O"}
		}
		if c.Age >= r.Age {
			return domain.ValidationError{Field: "children.age", Msg: "children's age cannot be greater than or equal to the mother's age"}
		}
	}
	return nil
}
