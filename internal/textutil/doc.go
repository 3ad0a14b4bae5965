// Package textutil provides text clean-up helpers for transcripts and
// segment lists.
//
// Transcript text coming back from speech-recognition engines is normalized
// to Unicode NFC with runs of whitespace collapsed, so the plain-text and
// segment outputs agree byte for byte on the same words.
package textutil
