package utility

import (
	"fmt"
	"math/rand/v2"
)

// RandomColorHex returns a #rrggbb color with each channel kept away from
// pure black and white so names stay readable on either background.
func RandomColorHex() string {
	r := rand.IntN(248) + 4
	g := rand.IntN(248) + 4
	b := rand.IntN(248) + 4
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}
