package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWalker_StartsAtSpawnColumn(t *testing.T) {
	p := newWalker(0, 10, 1)
	p.ApplySpawnHeight(41)

	assert.Equal(t, 0.0, p.Position().X())
	assert.Equal(t, 42.0, p.Position().Y())
	assert.Equal(t, 0.0, p.Position().Z())
}

func TestWalker_StepStaysOnCircle(t *testing.T) {
	p := newWalker(5, 10, math.Pi)
	p.Step(0.5)

	assert.InDelta(t, -10, p.Position().X(), 1e-9)
	assert.InDelta(t, 10, p.Position().Z(), 1e-9)
	assert.Equal(t, 5.0, p.Position().Y())
}
