/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package interact

import (
	"math"

	"gridwarp/internal/domain"
)

// AxisLockThreshold is the client-pixel distance a locked drag must travel
// before its axis is chosen.
const AxisLockThreshold = 5.0

// TargetKind names what a drag moves.
type TargetKind int

const (
	TargetVertex TargetKind = iota + 1
	TargetBoundary
)

func (k TargetKind) String() string {
	switch k {
	case TargetVertex:
		return "vertex"
	case TargetBoundary:
		return "boundary"
	default:
		return "none"
	}
}

// Target identifies a draggable handle: a vertex id or a boundary point index.
type Target struct {
	Kind TargetKind
	ID   int
}

// Axis is the axis a drag is constrained to.
type Axis int

const (
	AxisNone Axis = iota
	AxisX
	AxisY
)

// Update reports the new position of the dragged target. Final is set on
// release; only final updates are meant to be committed to history.
type Update struct {
	Target Target
	Pos    domain.Point
	Final  bool
}

// dragging is the state carried while a pointer holds a handle.
// A nil *dragging is the idle state.
type dragging struct {
	target      Target
	startClient domain.Point
	startPos    domain.Point
	lock        Axis
	last        domain.Point
}

// Controller runs the idle -> dragging -> idle state machine for one pointer.
type Controller struct {
	Mapper Mapper
	state  *dragging
}

// NewController returns an idle controller.
func NewController(m Mapper) *Controller { return &Controller{Mapper: m} }

// Begin captures target, the pointer's client position and the target's
// internal start position. A drag already in progress is replaced; callers
// that hold uncommitted state for it should Finish it first.
func (c *Controller) Begin(t Target, clientX, clientY float64, startPos domain.Point) {
	c.state = &dragging{
		target:      t,
		startClient: domain.Point{X: clientX, Y: clientY},
		startPos:    startPos,
		last:        startPos,
	}
}

func (c *Controller) Dragging() bool { return c.state != nil }

// Target returns the handle being dragged.
func (c *Controller) Target() (Target, bool) {
	if c.state == nil {
		return Target{}, false
	}
	return c.state.target, true
}

// Lock returns the axis decided for the current drag.
func (c *Controller) Lock() Axis {
	if c.state == nil {
		return AxisNone
	}
	return c.state.lock
}

// Move computes a non-final update. lockHeld reports whether the axis-lock
// modifier is pressed; the axis is decided at most once per drag.
func (c *Controller) Move(clientX, clientY float64, lockHeld bool) (Update, bool) {
	if c.state == nil {
		return Update{}, false
	}
	return Update{Target: c.state.target, Pos: c.advance(clientX, clientY, lockHeld)}, true
}

// End finishes the drag with a final update and returns to idle. Calling it
// while idle is a no-op.
func (c *Controller) End(clientX, clientY float64, lockHeld bool) (Update, bool) {
	if c.state == nil {
		return Update{}, false
	}
	u := Update{Target: c.state.target, Pos: c.advance(clientX, clientY, lockHeld), Final: true}
	c.state = nil
	return u, true
}

// Leave handles the pointer leaving the surface mid-drag; it commits exactly like End.
func (c *Controller) Leave(clientX, clientY float64, lockHeld bool) (Update, bool) {
	return c.End(clientX, clientY, lockHeld)
}

// Finish ends the drag at the last reported position, for hosts whose
// release event carries no coordinates.
func (c *Controller) Finish() (Update, bool) {
	if c.state == nil {
		return Update{}, false
	}
	u := Update{Target: c.state.target, Pos: c.state.last, Final: true}
	c.state = nil
	return u, true
}

func (c *Controller) advance(clientX, clientY float64, lockHeld bool) domain.Point {
	st := c.state
	dx := clientX - st.startClient.X
	dy := clientY - st.startClient.Y
	if lockHeld && st.lock == AxisNone && (math.Abs(dx) > AxisLockThreshold || math.Abs(dy) > AxisLockThreshold) {
		if math.Abs(dx) > math.Abs(dy) {
			st.lock = AxisX
		} else {
			st.lock = AxisY
		}
	}
	switch st.lock {
	case AxisX:
		dy = 0
	case AxisY:
		dx = 0
	}
	ix, iy := c.Mapper.DeltaToInternal(dx, dy)
	st.last = c.Mapper.clamp(domain.Point{X: st.startPos.X + ix, Y: st.startPos.Y + iy})
	return st.last
}
