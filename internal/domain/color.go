package domain

import "math/rand/v2"

// Palette holds the cursor colors handed out to participants. Colors are
// cosmetic and may repeat inside one room.
var Palette = []string{"#3b82f6", "#8b5cf6", "#ec4899", "#10b981", "#f59e0b", "#ef4444"}

func RandomColor() string {
	return Palette[rand.IntN(len(Palette))]
}
