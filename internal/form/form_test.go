package form

import (
	"errors"
	"testing"

	"github.com/san-kum/dropsim/internal/dynamo"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		text      [NumFields]string
		want      dynamo.Params
		wantField string
	}{
		{
			name: "valid",
			text: [NumFields]string{"10", " 100 ", "981", "-4.5"},
			want: dynamo.Params{Mass: 10, DropHeight: 100, Gravity: 981, LateralVelocity: -4.5, Surface: dynamo.Water},
		},
		{
			name: "bounds are not checked here",
			text: [NumFields]string{"1e9", "900", "-3", "100"},
			want: dynamo.Params{Mass: 1e9, DropHeight: 900, Gravity: -3, LateralVelocity: 100, Surface: dynamo.Water},
		},
		{name: "empty", text: [NumFields]string{"", "100", "981", "0"}, wantField: "mass"},
		{name: "letters", text: [NumFields]string{"10", "abc", "981", "0"}, wantField: "height"},
		{name: "nan", text: [NumFields]string{"10", "100", "NaN", "0"}, wantField: "gravity"},
		{name: "inf", text: [NumFields]string{"10", "100", "981", "+Inf"}, wantField: "lateral"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Fields{Text: tt.text, Surface: dynamo.Water}.Parse()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got != tt.want {
					t.Errorf("Parse() = %+v, want %+v", got, tt.want)
				}
				return
			}

			var verr *dynamo.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("field = %q, want %q", verr.Field, tt.wantField)
			}
			if verr.Error() != InvalidNumber {
				t.Errorf("message = %q", verr.Error())
			}
		})
	}
}

func TestFromParamsRoundTrip(t *testing.T) {
	p := dynamo.Params{Mass: 12.5, DropHeight: 300, Gravity: 162, LateralVelocity: -7, Surface: dynamo.Water}
	got, err := FromParams(p).Parse()
	if err != nil {
		t.Fatal(err)
	}
	if got != p {
		t.Errorf("got %+v, want %+v", got, p)
	}
}
