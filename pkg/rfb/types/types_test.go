package types

import "testing"

func TestUpdateRequestClamp(t *testing.T) {
	const w, h = 512, 384

	tests := []struct {
		name string
		in   UpdateRequest
		want UpdateRequest
	}{
		{
			name: "in bounds untouched",
			in:   UpdateRequest{X: 10, Y: 20, Width: 100, Height: 50},
			want: UpdateRequest{X: 10, Y: 20, Width: 100, Height: 50},
		},
		{
			name: "full screen untouched",
			in:   UpdateRequest{Width: w, Height: h},
			want: UpdateRequest{Width: w, Height: h},
		},
		{
			name: "everything oversized",
			in:   UpdateRequest{X: 10000, Y: 10000, Width: 10000, Height: 10000},
			want: UpdateRequest{X: w - 1, Y: h - 1, Width: w, Height: h},
		},
		{
			name: "incremental flag preserved",
			in:   UpdateRequest{Incremental: true, X: w, Width: w + 1},
			want: UpdateRequest{Incremental: true, X: w - 1, Width: w},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Clamp(w, h)
			if got != tt.want {
				t.Fatalf("Clamp = %+v, want %+v", got, tt.want)
			}
			if got.X >= w || got.Y >= h || got.Width > w || got.Height > h {
				t.Fatalf("Clamp result %+v violates bounds %dx%d", got, w, h)
			}
		})
	}
}
