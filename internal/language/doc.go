// Package language normalizes the language hint passed to the transcription
// engines.
//
// Users may type ISO 639-1 codes, ISO 639-2 codes, or English/native names;
// the engines only accept ISO 639-1, so every hint flows through ToISO2
// before it reaches a command line.
package language
