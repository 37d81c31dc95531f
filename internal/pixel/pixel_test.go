package pixel

import "testing"

func TestVecRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		p    Pixel
	}{
		{"black", Pixel{0, 0, 0}},
		{"white", Pixel{255, 255, 255}},
		{"mid", Pixel{128, 64, 200}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromVec(tt.p.Vec())
			if got != tt.p {
				t.Errorf("round trip: got %+v, want %+v", got, tt.p)
			}
		})
	}
}

func TestFromVecClamps(t *testing.T) {
	tests := []struct {
		name string
		v    [3]float64
		want Pixel
	}{
		{"negative clamps to 0", [3]float64{-0.5, -1, 0}, Pixel{0, 0, 0}},
		{"over 1 clamps to 255", [3]float64{1.5, 2, 1}, Pixel{255, 255, 255}},
		{"truncates toward zero", [3]float64{0.999999 / 255 * 255, 0, 0}, Pixel{0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromVec(tt.v); got != tt.want {
				t.Errorf("FromVec(%v) = %+v, want %+v", tt.v, got, tt.want)
			}
		})
	}
}

func TestLerpEndpoints(t *testing.T) {
	a := Pixel{0, 0, 0}
	b := Pixel{255, 255, 255}
	if got := Lerp(a, b, 0); got != a {
		t.Errorf("Lerp(a,b,0) = %+v, want %+v", got, a)
	}
	if got := Lerp(a, b, 1); got != b {
		t.Errorf("Lerp(a,b,1) = %+v, want %+v", got, b)
	}
}
