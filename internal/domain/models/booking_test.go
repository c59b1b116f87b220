package models

import (
	"errors"
	"testing"

	"railway/internal/domain"
)

func TestBookingRequestValidate(t *testing.T) {
	cases := []struct {
		name      string
		req       BookingRequest
		wantField string
	}{
		{
			name: "valid single passenger",
			req:  BookingRequest{Name: "Asha Rao", Age: 30, Gender: "F"},
		},
		{
			name: "valid family",
			req: BookingRequest{
				Name: "Anita Desai", Age: 32, Gender: "F", IsMotherWithChildren: true,
				Children: []ChildRequest{
					{Name: "Rohan Desai", Age: 8, Gender: "M"},
					{Name: "Meera Desai", Age: 3, Gender: "F"},
				},
			},
		},
		{
			name:      "name too short",
			req:       BookingRequest{Name: "A", Age: 30, Gender: "F"},
			wantField: "name",
		},
		{
			name:      "age out of range",
			req:       BookingRequest{Name: "Asha Rao", Age: 130, Gender: "F"},
			wantField: "age",
		},
		{
			name:      "unknown gender",
			req:       BookingRequest{Name: "Asha Rao", Age: 30, Gender: "X"},
			wantField: "gender",
		},
		{
			name:      "children without family flag",
			req:       BookingRequest{Name: "Asha Rao", Age: 30, Gender: "F", Children: []ChildRequest{{Name: "Rohan Desai", Age: 8, Gender: "M"}}},
			wantField: "children",
		},
		{
			name: "male passenger with family flag",
			req: BookingRequest{
				Name: "Kiran Patel", Age: 40, Gender: "M", IsMotherWithChildren: true,
				Children: []ChildRequest{{Name: "Rohan Desai", Age: 8, Gender: "M"}},
			},
			wantField: "gender",
		},
		{
			name: "underage mother",
			req: BookingRequest{
				Name: "Anita Desai", Age: 16, Gender: "F", IsMotherWithChildren: true,
				Children: []ChildRequest{{Name: "Rohan Desai", Age: 2, Gender: "M"}},
			},
			wantField: "age",
		},
		{
			name:      "family flag without children",
			req:       BookingRequest{Name: "Anita Desai", Age: 32, Gender: "F", IsMotherWithChildren: true},
			wantField: "children",
		},
		{
			name: "too many children",
			req: BookingRequest{
				Name: "Anita Desai", Age: 32, Gender: "F", IsMotherWithChildren: true,
				Children: []ChildRequest{
					{Name: "Child One", Age: 1, Gender: "M"},
					{Name: "Child Two", Age: 2, Gender: "F"},
					{Name: "Child Three", Age: 3, Gender: "M"},
					{Name: "Child Four", Age: 4, Gender: "F"},
					{Name: "Child Five", Age: 5, Gender: "M"},
				},
			},
			wantField: "children",
		},
		{
			name: "adult child",
			req: BookingRequest{
				Name: "Anita Desai", Age: 40, Gender: "F", IsMotherWithChildren: true,
				Children: []ChildRequest{{Name: "Rohan Desai", Age: 18, Gender: "M"}},
			},
			wantField: "children.age",
		},
		{
			name: "child with bad name",
			req: BookingRequest{
				Name: "Anita Desai", Age: 32, Gender: "F", IsMotherWithChildren: true,
				Children: []ChildRequest{{Name: "R", Age: 8, Gender: "M"}},
			},
			wantField: "children.name",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate()
			if tc.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var verr domain.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if verr.Field != tc.wantField {
				t.Fatalf("field = %q, want %q", verr.Field, tc.wantField)
			}
		})
	}
}
