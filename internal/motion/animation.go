package motion

import (
	"errors"
	"fmt"
	"sort"
)

// Animation errors.
var (
	ErrInvalidKeyframe   = errors.New("invalid keyframe")
	ErrKindMismatch      = errors.New("keyframe kind mismatch")
	ErrDuplicateKeyframe = errors.New("duplicate keyframe")
)

// channel is the per-name view of a track, sorted by time index.
type channel struct {
	name      string
	keyframes []*Keyframe
	last      int
}

// segment returns i such that keyframes[i] <= t < keyframes[i+1], clamped
// to the ends. The previous result is tried first so sequential playback
// avoids the binary search.
func (c *channel) segment(t float64) int {
	kf := c.keyframes
	n := len(kf)
	if t <= kf[0].TimeIndex {
		return 0
	}
	if t >= kf[n-1].TimeIndex {
		return n - 1
	}
	for _, i := range [2]int{c.last, c.last + 1} {
		if i < n-1 && kf[i].TimeIndex <= t && t < kf[i+1].TimeIndex {
			c.last = i
			return i
		}
	}
	i := sort.Search(n, func(i int) bool { return kf[i].TimeIndex > t }) - 1
	c.last = i
	return i
}

// Animation is one time-ordered track of keyframes of a single kind.
// Keyframes are unique per (TimeIndex, Name) and owned by the track.
type Animation struct {
	kind      Kind
	keyframes []*Keyframe

	channels     map[string]*channel
	channelNames []string

	current  float64
	previous float64

	targets *Targets
}

// NewAnimation creates an empty track for kind.
func NewAnimation(kind Kind) *Animation {
	return &Animation{
		kind:     kind,
		channels: make(map[string]*channel),
		targets:  &Targets{},
	}
}

// Kind returns the keyframe kind the track accepts.
func (a *Animation) Kind() Kind { return a.kind }

// Len returns the number of keyframes.
func (a *Animation) Len() int { return len(a.keyframes) }

// Keyframes returns the keyframes in order. The slice is a copy; the
// keyframes are not.
func (a *Animation) Keyframes() []*Keyframe {
	out := make([]*Keyframe, len(a.keyframes))
	copy(out, a.keyframes)
	return out
}

// ChannelNames returns the distinct keyframe names in first-seen order.
func (a *Animation) ChannelNames() []string {
	out := make([]string, len(a.channelNames))
	copy(out, a.channelNames)
	return out
}

// Bind sets the objects evaluated values are pushed to.
func (a *Animation) Bind(t Targets) {
	*a.targets = t
}

// AddKeyframe inserts k keeping the track sorted. A keyframe of another
// kind or one colliding with an existing (TimeIndex, Name) is rejected
// and the track is left unchanged.
func (a *Animation) AddKeyframe(k *Keyframe) error {
	if err := k.validate(); err != nil {
		return err
	}
	if k.Kind != a.kind {
		return fmt.Errorf("%w: %s keyframe on %s track", ErrKindMismatch, k.Kind, a.kind)
	}

	i := sort.Search(len(a.keyframes), func(i int) bool { return !a.keyframes[i].before(k) })
	if i < len(a.keyframes) {
		other := a.keyframes[i]
		if other == k || (other.TimeIndex == k.TimeIndex && other.Name == k.Name) {
			return fmt.Errorf("%w: %s %q at %v", ErrDuplicateKeyframe, a.kind, k.Name, k.TimeIndex)
		}
	}
	a.keyframes = append(a.keyframes, nil)
	copy(a.keyframes[i+1:], a.keyframes[i:])
	a.keyframes[i] = k

	c := a.channels[k.Name]
	if c == nil {
		c = &channel{name: k.Name}
		a.channels[k.Name] = c
		a.channelNames = append(a.channelNames, k.Name)
	}
	j := sort.Search(len(c.keyframes), func(j int) bool { return c.keyframes[j].TimeIndex > k.TimeIndex })
	c.keyframes = append(c.keyframes, nil)
	copy(c.keyframes[j+1:], c.keyframes[j:])
	c.keyframes[j] = k
	c.last = 0
	return nil
}

// DeleteKeyframe removes *k from the track and clears the caller's handle.
// A keyframe the track does not hold is left alone and false is returned.
func (a *Animation) DeleteKeyframe(k **Keyframe) bool {
	if k == nil || *k == nil {
		return false
	}
	target := *k
	i := a.indexOf(target)
	if i < 0 {
		return false
	}
	a.keyframes = append(a.keyframes[:i], a.keyframes[i+1:]...)

	c := a.channels[target.Name]
	for j, kf := range c.keyframes {
		if kf == target {
			c.keyframes = append(c.keyframes[:j], c.keyframes[j+1:]...)
			break
		}
	}
	c.last = 0
	if len(c.keyframes) == 0 {
		delete(a.channels, target.Name)
		for j, name := range a.channelNames {
			if name == target.Name {
				a.channelNames = append(a.channelNames[:j], a.channelNames[j+1:]...)
				break
			}
		}
	}
	*k = nil
	return true
}

func (a *Animation) indexOf(k *Keyframe) int {
	i := sort.Search(len(a.keyframes), func(i int) bool { return !a.keyframes[i].before(k) })
	for ; i < len(a.keyframes) && a.keyframes[i].TimeIndex == k.TimeIndex; i++ {
		if a.keyframes[i] == k {
			return i
		}
	}
	return -1
}

// Refresh re-sorts the track after keyframe time indices were edited in
// place. Keyframes that now collide are reported and the later one dropped.
func (a *Animation) Refresh() error {
	keyframes := a.keyframes
	sort.SliceStable(keyframes, func(i, j int) bool { return keyframes[i].before(keyframes[j]) })

	a.keyframes = nil
	a.channels = make(map[string]*channel)
	a.channelNames = nil

	var errs []error
	for _, k := range keyframes {
		if err := a.AddKeyframe(k); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// FindKeyframeIndex returns the index of the first keyframe at exactly t,
// or -1.
func (a *Animation) FindKeyframeIndex(t float64) int {
	return FindKeyframeIndex(t, a.keyframes)
}

// FindKeyframeIndex binary searches keyframes, which must be sorted by
// time index, for one at exactly t. It returns -1 on a miss.
func FindKeyframeIndex(t float64, keyframes []*Keyframe) int {
	i := sort.Search(len(keyframes), func(i int) bool { return keyframes[i].TimeIndex >= t })
	if i < len(keyframes) && keyframes[i].TimeIndex == t {
		return i
	}
	return -1
}

// FindKeyframe returns the keyframe named name at exactly t, or nil.
func (a *Animation) FindKeyframe(t float64, name string) *Keyframe {
	c := a.channels[name]
	if c == nil {
		return nil
	}
	if i := FindKeyframeIndex(t, c.keyframes); i >= 0 {
		return c.keyframes[i]
	}
	return nil
}

// MaxTimeIndex returns the time index of the last keyframe, 0 when empty.
func (a *Animation) MaxTimeIndex() float64 {
	if len(a.keyframes) == 0 {
		return 0
	}
	return a.keyframes[len(a.keyframes)-1].TimeIndex
}

// CurrentTimeIndex returns the playback cursor.
func (a *Animation) CurrentTimeIndex() float64 { return a.current }

// PreviousTimeIndex returns the cursor before the last advance or seek.
func (a *Animation) PreviousTimeIndex() float64 { return a.previous }

// IsReachedTo reports whether the cursor is at or past t.
func (a *Animation) IsReachedTo(t float64) bool { return a.current >= t }

// Advance applies the state at the current cursor, then moves the cursor
// forward by delta. Output therefore trails the cursor by one step.
func (a *Animation) Advance(delta float64) {
	a.Seek(a.current)
	a.current += delta
}

// Seek applies the state at t and moves the cursor there.
func (a *Animation) Seek(t float64) {
	a.apply(t)
	a.previous = a.current
	a.current = t
}

// Rewind wraps the cursor back to target, carrying over how far the last
// step overshot the end of the track.
func (a *Animation) Rewind(target, delta float64) {
	a.rewind(target, delta, a.MaxTimeIndex())
}

func (a *Animation) rewind(target, delta, max float64) {
	a.current = a.previous + delta - max + target
	a.previous = target
}

// Reset zeroes both cursors.
func (a *Animation) Reset() {
	a.current = 0
	a.previous = 0
	for _, c := range a.channels {
		c.last = 0
	}
}
