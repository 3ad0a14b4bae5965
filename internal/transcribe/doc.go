// Package transcribe implements the transcription step.
//
// A Transcriber runs a speech-recognition Engine over the extracted audio and
// always writes transcript.txt; with timestamps enabled it also writes
// transcript_segments.json. Two engines are provided: the openai-whisper CLI
// and WhisperX launched through uvx. Both write a JSON result into a scratch
// directory that the Transcriber reads back and removes.
//
// With VAD enabled the audio is first split on silence using ffmpeg's
// silencedetect filter. Each speech span is cut to a 16 kHz mono WAV,
// transcribed on its own, and its segment times are shifted back onto the
// original timeline.
package transcribe
