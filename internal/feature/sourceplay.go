package feature

import (
	"bytes"

	"github.com/rnse-control/canbridge/internal/frame"
	"github.com/rnse-control/canbridge/internal/keys"
)

// sourceByteOffset is where the active-source byte sits in the source
// status payload; short signatures are compared there.
const sourceByteOffset = 3

// SourcePlay emits a play action when the head unit switches to the
// video input and a pause action when it switches away. Strictly
// edge-triggered: repeated identical source reports emit nothing, and no
// pause is emitted before the video input has been active at least once.
type SourcePlay struct {
	emitter    keys.Emitter
	signatures [][]byte
	play       string
	pause      string

	known     bool
	active    bool
	seenVideo bool
}

// NewSourcePlay creates the controller. Empty action names suppress the
// corresponding emission.
func NewSourcePlay(emitter keys.Emitter, signatures [][]byte, play, pause string) *SourcePlay {
	return &SourcePlay{
		emitter:    emitter,
		signatures: signatures,
		play:       play,
		pause:      pause,
	}
}

// OnSource processes one source status report. Returns the emitted
// action, "" if none.
func (s *SourcePlay) OnSource(ev frame.SourceChange) (string, error) {
	video := s.matches(ev.Data)
	if s.known && video == s.active {
		return "", nil
	}
	s.known = true
	s.active = video

	if video {
		s.seenVideo = true
		return s.press(s.play)
	}
	if !s.seenVideo {
		// Startup into a non-video source; nothing to pause.
		return "", nil
	}
	return s.press(s.pause)
}

func (s *SourcePlay) press(action string) (string, error) {
	if action == "" {
		return "", nil
	}
	if err := s.emitter.Press(action); err != nil {
		return "", err
	}
	return action, nil
}

// matches reports whether the payload names the video input. Signatures
// as long as the payload compare whole-frame; shorter signatures compare
// at the source byte offset.
func (s *SourcePlay) matches(data []byte) bool {
	for _, sig := range s.signatures {
		if len(sig) == len(data) {
			if bytes.Equal(sig, data) {
				return true
			}
			continue
		}
		if len(data) >= sourceByteOffset+len(sig) &&
			bytes.Equal(data[sourceByteOffset:sourceByteOffset+len(sig)], sig) {
			return true
		}
	}
	return false
}
