// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package media

import (
	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"
)

// Stream is a composite of zero or more tracks, kept in insertion order with
// duplicates removed. A Stream is never mutated after construction; binding
// code builds a fresh one every time the track set changes.
type Stream struct {
	id     string
	tracks []Track
}

// NewStream builds a stream from the given tracks. Nil tracks and tracks that
// repeat an earlier (stream id, track id, kind) triple are skipped.
func NewStream(tracks ...Track) *Stream {
	stream := &Stream{
		id:     uuid.NewString(),
		tracks: make([]Track, 0, len(tracks)),
	}

	seen := make(map[trackKey]struct{}, len(tracks))
	for _, track := range tracks {
		if track == nil {
			continue
		}
		key := keyOf(track)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		stream.tracks = append(stream.tracks, track)
	}

	return stream
}

// StreamFromGroups builds a stream from the tracks of the given groups, in
// enumeration order.
func StreamFromGroups(groups []TrackGroup) *Stream {
	tracks := make([]Track, 0, len(groups))
	for _, group := range groups {
		tracks = append(tracks, group.Track)
	}

	return NewStream(tracks...)
}

// ID returns the unique identifier of the stream.
func (s *Stream) ID() string {
	if s == nil {
		return ""
	}

	return s.id
}

// Len returns the number of tracks. A nil stream has none.
func (s *Stream) Len() int {
	if s == nil {
		return 0
	}

	return len(s.tracks)
}

// Tracks returns a copy of all tracks.
func (s *Stream) Tracks() []Track {
	if s == nil {
		return nil
	}

	return append([]Track(nil), s.tracks...)
}

// VideoTracks returns the video tracks in order.
func (s *Stream) VideoTracks() []Track {
	return s.byKind(webrtc.RTPCodecTypeVideo)
}

// AudioTracks returns the audio tracks in order.
func (s *Stream) AudioTracks() []Track {
	return s.byKind(webrtc.RTPCodecTypeAudio)
}

// Contains reports whether a track with the same identity is part of the stream.
func (s *Stream) Contains(track Track) bool {
	if s == nil || track == nil {
		return false
	}
	key := keyOf(track)
	for _, t := range s.tracks {
		if keyOf(t) == key {
			return true
		}
	}

	return false
}

func (s *Stream) byKind(kind webrtc.RTPCodecType) []Track {
	if s == nil {
		return nil
	}
	var out []Track
	for _, t := range s.tracks {
		if t.Kind() == kind {
			out = append(out, t)
		}
	}

	return out
}
