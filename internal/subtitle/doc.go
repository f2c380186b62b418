// Package subtitle turns transcribed speech segments into SubRip (SRT)
// documents.
//
// Timestamps are derived from floating-point seconds by truncation, so a
// cue boundary never moves later than the transcription reported it. Cues
// keep the order and count of their input segments: nothing is sorted,
// merged or dropped.
package subtitle
