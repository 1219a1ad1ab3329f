package main

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// walker - игрок headless-сессии: ходит по кругу, проходящему через
// столбец спавна (0, 0), чтобы мир подгружал и выгружал чанки.
type walker struct {
	pos    mgl64.Vec3
	radius float64
	speed  float64 // радиан в секунду
	angle  float64
}

func newWalker(y float64, radius, speed float64) *walker {
	return &walker{pos: mgl64.Vec3{0, y, 0}, radius: radius, speed: speed}
}

func (p *walker) Position() mgl64.Vec3 { return p.pos }

// ApplySpawnHeight ставит игрока на верхний твёрдый воксель
func (p *walker) ApplySpawnHeight(y float64) {
	p.pos[1] = y + 1
}

func (p *walker) Step(dt float64) {
	p.angle = math.Mod(p.angle+p.speed*dt, 2*math.Pi)
	p.pos[0] = p.radius*math.Cos(p.angle) - p.radius
	p.pos[2] = p.radius * math.Sin(p.angle)
}
