package config

import "github.com/talgya/topowall/internal/entropy"

// Randomize rerolls the seed and the noise and contour parameters:
// scale in [0.003, 0.013), octaves 3-5, persistence in [0.35, 0.65),
// contour levels 14-29. Other fields are untouched.
func (c *Config) Randomize(rng *entropy.Stream) {
	c.Seed = rng.SeedString(8)
	c.NoiseScale = 0.003 + rng.Float()*0.01
	c.Octaves = 3 + rng.Intn(3)
	c.Persistence = 0.35 + rng.Float()*0.3
	c.ContourLevels = 14 + rng.Intn(16)
}
