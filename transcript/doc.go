// Package transcript turns speech-recognition events into an append-only
// list of speaker-labelled segments plus one live interim line.
//
// Final results become immutable Segments; non-final results replace the
// interim text. Speaker labels come from a SpeakerLabeler. The default
// CadenceLabeler is a rough heuristic that switches speaker every few
// segments; it does not identify voices.
package transcript
