// Package download implements the downloader step.
//
// A Downloader retrieves one URL into the output directory through yt-dlp
// (driven by github.com/lrstanley/go-ytdlp), resolves the file it produced
// and records that path in the last_downloaded.txt marker for the next step.
// The download mode selects the yt-dlp format expression; the audio-only
// variant additionally post-processes the result to MP3 at 128 kbps.
package download
