package util

import (
	"github.com/aquilax/go-perlin"
)

// Параметры шума по умолчанию
const (
	DefaultNoiseAlpha   = 2.0 // Сглаживание шума
	DefaultNoiseBeta    = 2.0 // Частота шума
	DefaultNoiseOctaves = 3   // Количество октав
)

// Noise2D — детерминированный двумерный когерентный шум со значениями в [-1, 1]
type Noise2D interface {
	Noise2D(x, y float64) float64
}

// PerlinNoise — шум Перлина, инициализируемый один раз на экземпляр мира
type PerlinNoise struct {
	seed   int64
	perlin *perlin.Perlin
}

// NewPerlinNoise создаёт генератор шума Перлина с указанным сидом
func NewPerlinNoise(seed int64, alpha, beta float64, octaves int32) *PerlinNoise {
	if octaves <= 0 {
		octaves = DefaultNoiseOctaves
	}
	return &PerlinNoise{
		seed:   seed,
		perlin: perlin.NewPerlin(alpha, beta, octaves, seed),
	}
}

// NewDefaultPerlinNoise создаёт генератор с параметрами по умолчанию
func NewDefaultPerlinNoise(seed int64) *PerlinNoise {
	return NewPerlinNoise(seed, DefaultNoiseAlpha, DefaultNoiseBeta, DefaultNoiseOctaves)
}

// Seed возвращает сид генератора
func (p *PerlinNoise) Seed() int64 {
	return p.seed
}

// Noise2D возвращает значение шума для указанных координат (от -1 до 1).
// Сумма октав может слегка выходить за диапазон, поэтому значение ограничивается.
func (p *PerlinNoise) Noise2D(x, y float64) float64 {
	return Clamp(p.perlin.Noise2D(x, y), -1, 1)
}

// Clamp ограничивает значение диапазоном [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
