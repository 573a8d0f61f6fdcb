package faceid

import "testing"

func TestSelectBest(t *testing.T) {
	tests := []struct {
		name     string
		boxes    []Box
		imgW     int
		imgH     int
		expected int
	}{
		{
			name:     "empty list",
			boxes:    nil,
			imgW:     640,
			imgH:     480,
			expected: -1,
		},
		{
			name: "single box",
			boxes: []Box{
				{X: 10, Y: 10, W: 50, H: 50},
			},
			imgW:     640,
			imgH:     480,
			expected: 0,
		},
		{
			name: "bigger centered face wins",
			boxes: []Box{
				{X: 10, Y: 10, W: 40, H: 40},
				{X: 270, Y: 190, W: 100, H: 100}, // centered at (320, 240)
			},
			imgW:     640,
			imgH:     480,
			expected: 1,
		},
		{
			name: "large edge face loses to smaller centered one",
			boxes: []Box{
				{X: 0, Y: 0, W: 120, H: 120},     // big bystander at the corner
				{X: 260, Y: 180, W: 118, H: 118}, // slightly smaller, centered
			},
			imgW:     640,
			imgH:     480,
			expected: 1,
		},
		{
			name: "identical boxes tie broken by detector order",
			boxes: []Box{
				{X: 100, Y: 100, W: 60, H: 60},
				{X: 100, Y: 100, W: 60, H: 60},
				{X: 100, Y: 100, W: 60, H: 60},
			},
			imgW:     640,
			imgH:     480,
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelectBest(tt.boxes, tt.imgW, tt.imgH, DefaultSelectorLambda)
			if got != tt.expected {
				t.Errorf("SelectBest() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestSelectBestDeterministic(t *testing.T) {
	boxes := []Box{
		{X: 50, Y: 60, W: 80, H: 80},
		{X: 200, Y: 150, W: 90, H: 90},
		{X: 400, Y: 300, W: 85, H: 85},
	}

	first := SelectBest(boxes, 640, 480, DefaultSelectorLambda)
	for i := 0; i < 100; i++ {
		if got := SelectBest(boxes, 640, 480, DefaultSelectorLambda); got != first {
			t.Fatalf("SelectBest() not deterministic: got %d, want %d on iteration %d", got, first, i)
		}
	}
}
